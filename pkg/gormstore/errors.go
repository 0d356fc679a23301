package gormstore

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrFailedToOpenDB      = errors.New("failed to open gorm connection")
	ErrInvalidLogLevel     = errors.New("invalid gorm log level")
	ErrInvalidModel        = errors.New("invalid model")
	ErrQueryFailed         = errors.New("query failed")
	ErrInvalidValue        = errors.New("value does not fit the model field")
	ErrDuplicateKey        = errors.New("duplicate key")
	ErrForeignKeyViolation = errors.New("foreign key violation")
)

// wrapWriteError classifies errors translated by the dialector. Open enables
// gorm's TranslateError so drivers report constraint violations uniformly.
func wrapWriteError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Join(ErrDuplicateKey, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return errors.Join(ErrForeignKeyViolation, err)
	default:
		return errors.Join(ErrQueryFailed, err)
	}
}
