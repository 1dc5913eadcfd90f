package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	mw "github.com/tphakala/hogwarts-heroes/internal/api/middleware"
	"github.com/tphakala/hogwarts-heroes/internal/errors"
	"github.com/tphakala/hogwarts-heroes/internal/logger"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"` // Request ID of the failed call
}

// NewErrorResponse creates a new API error response
func NewErrorResponse(err error, message string, code int, correlationID string) *ErrorResponse {
	errorStr := message
	if err != nil {
		errorStr = err.Error()
	}

	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: correlationID,
	}
}

// HandleError logs err and writes it as an ErrorResponse. A zero code is
// derived from the error category.
func (s *Server) HandleError(c echo.Context, err error, message string, code int) error {
	if code == 0 {
		code = statusForError(err)
	}

	requestID := mw.RequestID(c)
	fields := []logger.Field{
		logger.Error(err),
		logger.String("path", c.Request().URL.Path),
		logger.Int("code", code),
	}
	if code >= http.StatusInternalServerError {
		s.log.WithContext(c.Request().Context()).Error(message, fields...)
		if s.metrics != nil {
			s.metrics.HTTP.RecordHTTPRequestError(c.Request().Method, c.Path(), errorType(err))
		}
	} else {
		s.log.WithContext(c.Request().Context()).Debug(message, fields...)
	}

	return c.JSON(code, NewErrorResponse(err, message, code, requestID))
}

// statusForError maps an error category to the HTTP status returned to
// API clients. Upstream failures surface as 502.
func statusForError(err error) int {
	switch {
	case err == nil:
		return http.StatusInternalServerError
	case errors.IsCategory(err, errors.CategoryValidation):
		return http.StatusBadRequest
	case errors.IsCategory(err, errors.CategoryLimit):
		return http.StatusServiceUnavailable
	case errors.IsCategory(err, errors.CategoryTimeout):
		return http.StatusGatewayTimeout
	case errors.IsCategory(err, errors.CategoryNetwork),
		errors.IsCategory(err, errors.CategoryNotFound),
		errors.IsCategory(err, errors.CategoryConfiguration),
		errors.IsCategory(err, errors.CategoryFileParsing):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorType labels err for metrics by its category.
func errorType(err error) string {
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		return ee.GetCategory()
	}
	return string(errors.CategoryGeneric)
}
