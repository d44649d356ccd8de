package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Errors names the domain errors a repository reports for a missing row
// and for a unique constraint violation.
type Errors struct {
	NotFound  error
	Duplicate error
}

// Map translates sql.ErrNoRows and unique violations into the domain
// errors. Anything else, nil included, is returned unchanged.
func (e Errors) Map(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return e.NotFound
	case IsUniqueViolation(err):
		return e.Duplicate
	}
	return err
}

func IsUniqueViolation(err error) bool {
	return sqlState(err) == codeUniqueViolation
}

func IsForeignKeyViolation(err error) bool {
	return sqlState(err) == codeForeignKeyViolation
}

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
