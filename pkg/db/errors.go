package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolationCode = "23505"

// IsUniqueViolation reports whether err is a Postgres unique violation. When
// indexName is given the violated constraint must match it, so callers can tell
// apart multiple unique indexes on the same table.
func IsUniqueViolation(err error, indexName string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolationCode {
			return false
		}
		return indexName == "" || pgErr.ConstraintName == indexName
	}

	// sqlite (tests) and gorm's translated errors lack pg diagnostics.
	if !errors.Is(err, gorm.ErrDuplicatedKey) && !strings.Contains(err.Error(), "duplicate key value") &&
		!strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return false
	}
	return indexName == "" || errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), indexName)
}
