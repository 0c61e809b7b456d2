package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	redacted        = "[REDACTED]"
	maxLoggedBody   = 4 << 10
	truncatedSuffix = "... (truncated)"
)

// sensitiveFields contains patterns for fields that should be redacted
var sensitiveFields = []string{
	"password",
	"token",
	"api_key",
	"apikey",
	"api-key",
	"secret",
	"authorization",
	"auth",
	"bearer",
	"key",
	"credential",
	"access_token",
	"refresh_token",
	"session",
	"cookie",
	"verifier",
	"captcha",
	"pdfurl",
	"pdf_url",
}

// sensitiveQueryParams are OAuth callback and capability parameters
var sensitiveQueryParams = map[string]bool{
	"code":                 true,
	"state":                true,
	"x-amz-signature":      true,
	"x-amz-credential":     true,
	"x-amz-security-token": true,
}

// sensitiveHeaderPatterns contains regex patterns for sensitive headers
var sensitiveHeaderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)authorization`),
	regexp.MustCompile(`(?i)api[-_]?key`),
	regexp.MustCompile(`(?i)token`),
	regexp.MustCompile(`(?i)secret`),
	regexp.MustCompile(`(?i)password`),
	regexp.MustCompile(`(?i)bearer`),
	regexp.MustCompile(`(?i)cookie`),
	regexp.MustCompile(`(?i)session`),
}

// responseWriter captures textual response bodies; binary payloads pass straight through
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if isLoggableContentType(w.Header().Get("Content-Type")) && w.body.Len() < maxLoggedBody {
		w.body.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

// RequestResponseLogger logs one structured record per request with secrets redacted
func RequestResponseLogger(logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "http")

	return func(c *gin.Context) {
		startTime := time.Now()

		var requestBody []byte
		if c.Request.Body != nil && isLoggableContentType(c.ContentType()) {
			requestBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
		}

		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = writer

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", c.FullPath(),
			"status", status,
			"latency", time.Since(startTime).String(),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
			"headers", redactHeaders(c.Request.Header),
		}

		if requestID := c.GetString(RequestIDKey); requestID != "" {
			attrs = append(attrs, "request_id", requestID)
		}
		if query := redactQuery(c.Request.URL.Query()); len(query) > 0 {
			attrs = append(attrs, "query_params", query)
		}
		if len(requestBody) > 0 {
			attrs = append(attrs, "request_body", parseAndRedactBody(requestBody, c.ContentType()))
		}
		if writer.body.Len() > 0 {
			attrs = append(attrs, "response_body", parseAndRedactBody(writer.body.Bytes(), writer.Header().Get("Content-Type")))
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		ctx := c.Request.Context()
		switch {
		case status >= 500:
			logger.ErrorContext(ctx, "request completed", attrs...)
		case status >= 400:
			logger.WarnContext(ctx, "request completed", attrs...)
		default:
			logger.InfoContext(ctx, "request completed", attrs...)
		}
	}
}

// isLoggableContentType reports whether a body of this type is safe and useful to log
func isLoggableContentType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch {
	case mediaType == "application/json",
		mediaType == "application/x-www-form-urlencoded",
		strings.HasPrefix(mediaType, "text/"):
		return true
	default:
		return false
	}
}

// redactHeaders redacts sensitive headers
func redactHeaders(headers map[string][]string) map[string]string {
	result := make(map[string]string, len(headers))
	for key, values := range headers {
		if isSensitiveHeader(key) {
			result[key] = redacted
		} else {
			result[key] = strings.Join(values, ", ")
		}
	}
	return result
}

// isSensitiveHeader checks if a header name is sensitive
func isSensitiveHeader(headerName string) bool {
	for _, pattern := range sensitiveHeaderPatterns {
		if pattern.MatchString(headerName) {
			return true
		}
	}
	return false
}

func redactQuery(query map[string][]string) map[string]string {
	result := make(map[string]string, len(query))
	for key, values := range query {
		if sensitiveQueryParams[strings.ToLower(key)] || isSensitiveField(key) {
			result[key] = redacted
		} else {
			result[key] = strings.Join(values, ", ")
		}
	}
	return result
}

// parseAndRedactBody parses a JSON or form body and redacts sensitive fields
func parseAndRedactBody(body []byte, contentType string) any {
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") {
		if form, err := url.ParseQuery(string(body)); err == nil {
			return redactQuery(form)
		}
	}

	var jsonBody any
	if err := json.Unmarshal(body, &jsonBody); err != nil {
		bodyStr := string(body)
		if len(bodyStr) > 1000 {
			bodyStr = bodyStr[:1000] + truncatedSuffix
		}
		return bodyStr
	}

	redactSensitiveFields(jsonBody)
	return jsonBody
}

// redactSensitiveFields recursively redacts sensitive fields in JSON data
func redactSensitiveFields(data any) {
	switch v := data.(type) {
	case map[string]any:
		for key, value := range v {
			if isSensitiveField(key) {
				v[key] = redacted
			} else {
				redactSensitiveFields(value)
			}
		}
	case []any:
		for _, item := range v {
			redactSensitiveFields(item)
		}
	}
}

// isSensitiveField checks if a field name is sensitive
func isSensitiveField(fieldName string) bool {
	lowerField := strings.ToLower(fieldName)
	for _, sensitive := range sensitiveFields {
		if strings.Contains(lowerField, sensitive) {
			return true
		}
	}
	return false
}
