package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/ridwanfathin/donation-invoice-service/internal/model"
)

// CookieConfig controls the attributes of cookies set by the auth handler
type CookieConfig struct {
	Secure bool
	Domain string
}

// getPathParam retrieves a path parameter and validates it's not empty
func getPathParam(c *gin.Context, paramName string) (string, error) {
	value := strings.TrimSpace(c.Param(paramName))
	if value == "" {
		return "", fmt.Errorf("%s is required", paramName)
	}
	return value, nil
}

// getQueryString retrieves a trimmed string query parameter
func getQueryString(c *gin.Context, paramName string) string {
	return strings.TrimSpace(c.Query(paramName))
}

// getQueryBool retrieves a boolean query parameter, false when absent or unparseable
func getQueryBool(c *gin.Context, paramName string) bool {
	value, err := strconv.ParseBool(c.Query(paramName))
	return err == nil && value
}

// bindJSON binds JSON request body to a struct, collecting binding tag failures per field
func bindJSON(c *gin.Context, obj interface{}) ([]model.ErrorDetail, error) {
	return bindWith(c.ShouldBindJSON(obj))
}

// bindForm binds JSON or form data depending on Content-Type
func bindForm(c *gin.Context, obj interface{}) ([]model.ErrorDetail, error) {
	return bindWith(c.ShouldBind(obj))
}

func bindWith(err error) ([]model.ErrorDetail, error) {
	if err == nil {
		return nil, nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]model.ErrorDetail, 0, len(validationErrs))
		for _, fe := range validationErrs {
			details = append(details, model.ErrorDetail{
				Field:   lowerFirst(fe.Field()),
				Message: fmt.Sprintf("failed on the '%s' rule", fe.Tag()),
			})
		}
		return details, err
	}
	return nil, fmt.Errorf("invalid request body: %v", err)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// setCookie writes an HttpOnly, SameSite=Lax cookie
func setCookie(c *gin.Context, cfg CookieConfig, name, value, path string, maxAge time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, int(maxAge.Seconds()), path, cfg.Domain, cfg.Secure, true)
}

// clearCookie expires a cookie set by setCookie
func clearCookie(c *gin.Context, cfg CookieConfig, name, path string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, path, cfg.Domain, cfg.Secure, true)
}

// attachmentDisposition builds a Content-Disposition header for a download
func attachmentDisposition(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}
