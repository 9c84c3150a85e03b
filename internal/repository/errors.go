// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"math"
	"strings"

	"devconnector/internal/models"
	"devconnector/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// uniqueViolation reports whether err is a unique constraint violation and,
// when it can tell, which column triggered it.
func uniqueViolation(err error) (column string, ok bool) {
	if err == nil {
		return "", false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return "", false
		}
		return columnFromConstraint(pgErr.ConstraintName), true
	}

	// SQLite: "UNIQUE constraint failed: profiles.handle"
	msg := strings.ToLower(err.Error())
	if _, rest, found := strings.Cut(msg, "unique constraint failed:"); found {
		field := strings.TrimSpace(rest)
		if i := strings.LastIndex(field, "."); i >= 0 {
			field = field[i+1:]
		}
		return field, true
	}
	if strings.Contains(msg, "duplicate key") || strings.Contains(msg, pgUniqueViolation) {
		return "", true
	}
	return "", false
}

// columnFromConstraint maps GORM's index naming (idx_<table>_<column>) back
// to the column.
func columnFromConstraint(name string) string {
	for _, col := range []string{"user_id", "handle", "email"} {
		if strings.HasSuffix(name, "_"+col) || strings.Contains(name, "_"+col+"_") {
			return col
		}
	}
	return name
}

// notFoundOr converts gorm.ErrRecordNotFound into a NOT_FOUND AppError and
// anything else into an INTERNAL_ERROR.
func notFoundOr(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

// traced starts a repository span and returns a func that ends it with the
// final error.
func traced(ctx context.Context, table, method string) (context.Context, func(error)) {
	ctx, span := observability.StartRepositorySpan(ctx, table, method)
	return ctx, func(err error) { observability.EndSpan(span, err) }
}

func paginate(db *gorm.DB, limit, offset int) *gorm.DB {
	// SQLite rejects OFFSET without LIMIT.
	if limit <= 0 && offset > 0 {
		limit = math.MaxInt32
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	if offset > 0 {
		db = db.Offset(offset)
	}
	return db
}
