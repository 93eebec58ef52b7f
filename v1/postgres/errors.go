package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrInvalidConfig is returned for configurations that cannot be used.
	ErrInvalidConfig = errors.New("invalid postgres config")

	// ErrTableNotFound is returned when the settings table does not exist.
	ErrTableNotFound = errors.New("settings table not found")

	// ErrAccessDenied is returned when the user may not read or write the table.
	ErrAccessDenied = errors.New("access denied")
)

// PostgreSQL error codes handled by TranslateError.
const (
	codeUndefinedTable        = "42P01"
	codeInsufficientPrivilege = "42501"
	codeInvalidPassword       = "28P01"
)

// TranslateError maps PostgreSQL errors to the sentinels above.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUndefinedTable:
		return fmt.Errorf("%w: %w", ErrTableNotFound, err)
	case codeInsufficientPrivilege, codeInvalidPassword:
		return fmt.Errorf("%w: %w", ErrAccessDenied, err)
	default:
		return err
	}
}
