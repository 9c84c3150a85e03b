package server

import (
	"errors"
	"log/slog"

	"devconnector/internal/auth"
	"devconnector/internal/middleware"
	"devconnector/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const (
	maxPaginationLimit = 100
)

// parsePagination extracts optional limit and offset query parameters.
// A missing or non-positive limit means "everything".
func parsePagination(c *fiber.Ctx) Pagination {
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		limit = 0
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case models.CodeValidation, models.CodeConflict, models.CodeInvalidCredentials:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized, models.CodeForbidden:
		return fiber.StatusUnauthorized
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request error", slog.String("error", err.Error()))
	}
	return models.RespondWithError(c, status, err)
}

// respondLookupError answers a public read with a 404 whatever went wrong.
// NOT_FOUND errors keep their own body; anything else is logged and replaced
// by {key: msg}.
func respondLookupError(c *fiber.Ctx, err error, key, msg string) error {
	if models.HasCode(err, models.CodeNotFound) {
		return models.RespondWithError(c, fiber.StatusNotFound, err)
	}
	middleware.Logger.ErrorContext(c.UserContext(), "lookup failed", slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusNotFound, models.NewFieldNotFoundError(key, msg))
}

// bindBody decodes a JSON or urlencoded body into dst. An empty body leaves
// dst untouched so the service reports the missing fields.
func bindBody(c *fiber.Ctx, dst any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(dst); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	return nil
}

// identity returns the principal stored by AuthRequired.
func identity(c *fiber.Ctx) *auth.Identity {
	id, _ := c.Locals("identity").(*auth.Identity)
	return id
}
