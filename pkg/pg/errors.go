package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrFailedToOpenDBConnection = errors.New("failed to open db connection")
	ErrHealthcheckFailed        = errors.New("healthcheck failed, connection is not available")
	ErrFailedToParseDBConfig    = errors.New("failed to parse db config")
	ErrIntrospectionFailed      = errors.New("failed to introspect table")
	ErrQueryFailed              = errors.New("query failed")
	ErrDuplicateKey             = errors.New("duplicate key")
	ErrForeignKeyViolation      = errors.New("foreign key violation")
)

// IsNotFoundError detects pgx.ErrNoRows.
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, pgx.ErrNoRows)
}

// IsDuplicateKeyError detects unique constraint violations (SQLSTATE 23505).
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsForeignKeyViolationError detects referential integrity violations (SQLSTATE 23503).
func IsForeignKeyViolationError(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// wrapWriteError classifies constraint violations so callers can match them
// without importing pgconn.
func wrapWriteError(err error) error {
	switch {
	case IsDuplicateKeyError(err):
		return errors.Join(ErrDuplicateKey, err)
	case IsForeignKeyViolationError(err):
		return errors.Join(ErrForeignKeyViolation, err)
	default:
		return errors.Join(ErrQueryFailed, err)
	}
}
