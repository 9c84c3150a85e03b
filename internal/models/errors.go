package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeConflict           = "CONFLICT"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeNotFound           = "NOT_FOUND"
	CodeForbidden          = "FORBIDDEN"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeUnavailable        = "SERVICE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// FieldErrors maps an input field (or error key) to a human readable message.
type FieldErrors map[string]string

// AppError represents a custom application error.
// When Fields is non-empty it is rendered as the response body.
type AppError struct {
	Code    string
	Message string
	Fields  FieldErrors
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

// NewFieldNotFoundError is a NOT_FOUND error rendered as {key: message}.
func NewFieldNotFoundError(key, message string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: message,
		Fields:  FieldErrors{key: message},
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewFieldValidationError wraps per-field validation messages.
func NewFieldValidationError(fields FieldErrors) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: "Validation failed",
		Fields:  fields,
	}
}

func NewConflictError(key, message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
		Fields:  FieldErrors{key: message},
	}
}

func NewInvalidCredentialsError(key, message string) *AppError {
	return &AppError{
		Code:    CodeInvalidCredentials,
		Message: message,
		Fields:  FieldErrors{key: message},
	}
}

func NewForbiddenError(key, message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
		Fields:  FieldErrors{key: message},
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewUnavailableError(message string, err error) *AppError {
	return &AppError{
		Code:    CodeUnavailable,
		Message: message,
		Err:     err,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// RespondWithError writes err as JSON with the given status. Internal
// errors never expose the wrapped cause.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if len(appErr.Fields) > 0 {
			return c.Status(status).JSON(appErr.Fields)
		}
		response := ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil && appErr.Code != CodeInternal {
			response.Details = appErr.Err.Error()
		}
		return c.Status(status).JSON(response)
	}

	msg := err.Error()
	if status >= fiber.StatusInternalServerError {
		msg = "Internal server error"
	}
	return c.Status(status).JSON(ErrorResponse{
		Error: msg,
	})
}

// HasCode reports whether err wraps an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
