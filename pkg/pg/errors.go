package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrFailedToOpenDBConnection = errors.New("failed to open db connection")
	ErrEmptyConnectionString    = errors.New("empty postgres connection string, use DATABASE_URL env var")
	ErrUnavailable              = errors.New("postgres is not reachable")
	ErrFailedToParseDBConfig    = errors.New("failed to parse db config")
	ErrFailedToApplyMigrations  = errors.New("failed to apply migrations")
	ErrMigrationsNotProvided    = errors.New("migrations filesystem not provided")
)

// IsNotFoundError reports whether err is pgx.ErrNoRows.
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, pgx.ErrNoRows)
}

// IsDuplicateKeyError reports a unique constraint violation (SQLSTATE 23505).
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsInvalidTextError reports malformed input for a typed column such as a
// uuid (SQLSTATE 22P02).
func IsInvalidTextError(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
