package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/lorrc/presence-stats/internal/core/errors"
)

// ErrorResponse is the standard JSON error response format
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ValidationErrorResponse includes field-level validation errors
type ValidationErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// ErrorHandler provides centralized error handling with logging
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler with the given logger
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle processes an error and writes the appropriate HTTP response.
// Validation failures get a field map; everything else is written from an
// AppError, either the one carried by err or one derived from its sentinel.
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs *apperrors.ValidationErrors
	if errors.As(err, &validationErrs) {
		h.logError(r, http.StatusUnprocessableEntity, err)
		h.writeValidationErrorResponse(w, validationErrs)
		return
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = toAppError(err)
	}

	h.logError(r, appErr.StatusCode, err)
	h.writeErrorResponse(w, appErr.StatusCode, ErrorResponse{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	})
}

// toAppError converts domain errors to their HTTP representation
func toAppError(err error) *apperrors.AppError {
	switch {
	// Collaborators
	case errors.Is(err, apperrors.ErrEventSourceUnavailable):
		return apperrors.NewUnavailableError(err)

	// Not Found errors
	case errors.Is(err, apperrors.ErrUserNotFound):
		appErr := apperrors.NewNotFoundError(err, "User not found")
		appErr.Code = "USER_NOT_FOUND"
		return appErr
	case errors.Is(err, apperrors.ErrNotFound):
		return apperrors.NewNotFoundError(err, "Resource not found")

	// Malformed input
	case errors.Is(err, apperrors.ErrInvalidUserID),
		errors.Is(err, apperrors.ErrInvalidDate),
		errors.Is(err, apperrors.ErrBadRequest):
		return apperrors.NewBadRequestError(err, err.Error())

	// Rate limiting
	case errors.Is(err, apperrors.ErrRateLimited):
		return apperrors.NewRateLimitError()

	// Default to internal server error
	default:
		return apperrors.NewInternalError(err)
	}
}

// logError logs the error with appropriate context.
// The request ID is added by the logger from the request context.
func (h *ErrorHandler) logError(r *http.Request, statusCode int, err error) {
	logAttrs := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"status_code", statusCode,
		"error", err.Error(),
	}

	// Log at different levels based on status code
	ctx := r.Context()
	switch {
	case statusCode >= 500:
		h.logger.ErrorContext(ctx, "server error", logAttrs...)
	case statusCode >= 400:
		h.logger.WarnContext(ctx, "client error", logAttrs...)
	default:
		h.logger.InfoContext(ctx, "request error", logAttrs...)
	}
}

// writeErrorResponse writes a JSON error response
func (h *ErrorHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, response ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

// writeValidationErrorResponse writes a validation error response
func (h *ErrorHandler) writeValidationErrorResponse(w http.ResponseWriter, errs *apperrors.ValidationErrors) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	_ = json.NewEncoder(w).Encode(ValidationErrorResponse{
		Error:  "Validation failed",
		Code:   "VALIDATION_ERROR",
		Fields: errs.Errors,
	})
}

// HandleError Helper function to handle errors inline in handlers
// Usage: if HandleError(w, r, err, h.errorHandler) { return }
func HandleError(w http.ResponseWriter, r *http.Request, err error, handler *ErrorHandler) bool {
	if err != nil {
		handler.Handle(w, r, err)
		return true
	}
	return false
}
