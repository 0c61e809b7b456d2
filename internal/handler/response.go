package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/ridwanfathin/donation-invoice-service/internal/domain"
	"github.com/ridwanfathin/donation-invoice-service/internal/model"
)

// HTTP status codes as constants for consistency
const (
	StatusOK                  = http.StatusOK
	StatusFound               = http.StatusFound
	StatusSeeOther            = http.StatusSeeOther
	StatusBadRequest          = http.StatusBadRequest
	StatusUnauthorized        = http.StatusUnauthorized
	StatusForbidden           = http.StatusForbidden
	StatusNotFound            = http.StatusNotFound
	StatusInternalServerError = http.StatusInternalServerError
)

// Common error messages
const (
	ErrInvalidInput       = "Invalid input format"
	ErrInvalidID          = "Invalid ID provided"
	ErrMissingSerial      = "serialNumber is required"
	ErrAuthRequired       = "Authentication required"
	ErrAccessDenied       = "Access denied"
	ErrResourceNotFound   = "Resource not found"
	ErrInternalServer     = "Internal server error"
	ErrDocumentGeneration = "Failed to generate invoice document"
	ErrUpstreamFailure    = "A dependent service failed, please try again"
)

// statusForKind maps the error taxonomy onto HTTP status codes
func statusForKind(kind domain.Kind) int {
	switch kind {
	case domain.KindUnauthorized:
		return StatusUnauthorized
	case domain.KindForbidden:
		return StatusForbidden
	case domain.KindNotFound:
		return StatusNotFound
	case domain.KindValidation:
		return StatusBadRequest
	default:
		return StatusInternalServerError
	}
}

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, statusCode int, kind domain.Kind, message string, details ...model.ErrorDetail) {
	c.JSON(statusCode, model.ErrorResponse{
		Status:  http.StatusText(statusCode),
		Message: message,
		Error:   kind.String(),
		Details: details,
	})
}

// respondError translates a service error into a response.
// Server-side failures are logged in full and answered with a generic message.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	kind := domain.KindOf(err)
	status := statusForKind(kind)

	switch kind {
	case domain.KindUnauthorized:
		respondWithError(c, status, kind, ErrAuthRequired)
	case domain.KindForbidden:
		respondWithError(c, status, kind, ErrAccessDenied)
	case domain.KindNotFound:
		respondWithError(c, status, kind, ErrResourceNotFound)
	case domain.KindValidation:
		respondWithError(c, status, kind, validationMessage(err), buildValidationErrors(domain.FieldsOf(err))...)
	case domain.KindDocumentGeneration:
		logError(c, logger, err)
		respondWithError(c, status, kind, ErrDocumentGeneration)
	case domain.KindUpstream:
		logError(c, logger, err)
		respondWithError(c, status, kind, ErrUpstreamFailure)
	default:
		logError(c, logger, err)
		respondWithError(c, status, kind, ErrInternalServer)
	}
}

// respondBadRequest sends a 400 Bad Request response
func respondBadRequest(c *gin.Context, message string, details ...model.ErrorDetail) {
	respondWithError(c, StatusBadRequest, domain.KindValidation, message, details...)
}

// respondOK sends a 200 OK response with data
func respondOK(c *gin.Context, data interface{}) {
	c.JSON(StatusOK, data)
}

func logError(c *gin.Context, logger *slog.Logger, err error) {
	_ = c.Error(err)
	logger.ErrorContext(c.Request.Context(), "request failed",
		"method", c.Request.Method,
		"route", c.FullPath(),
		"request_id", c.GetString("request_id"),
		"error", err,
	)
}

// validationMessage returns the validation error's own text when it carries no field details
func validationMessage(err error) string {
	if len(domain.FieldsOf(err)) > 0 {
		return ErrInvalidInput
	}
	var derr *domain.Error
	if errors.As(err, &derr) && derr.Err != nil {
		return derr.Err.Error()
	}
	return ErrInvalidInput
}

// buildValidationErrors converts field messages to an ErrorDetail slice, sorted by field
func buildValidationErrors(fields map[string]string) []model.ErrorDetail {
	details := make([]model.ErrorDetail, 0, len(fields))
	for field, message := range fields {
		details = append(details, model.ErrorDetail{
			Field:   field,
			Message: message,
		})
	}
	sort.Slice(details, func(i, j int) bool { return details[i].Field < details[j].Field })
	return details
}
