package gormstore

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Open connects through dialector, routes gorm logs to l and applies the
// pool limits of cfg. The connection is pinged before it is returned.
func Open(ctx context.Context, dialector gorm.Dialector, cfg Config, l *slog.Logger) (*gorm.DB, error) {
	level, err := ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 NewLogger(l, level, cfg.SlowThreshold),
		TranslateError:         true,
		SkipDefaultTransaction: true,
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   cfg.TablePrefix,
			SingularTable: cfg.SingularTable,
		},
	})
	if err != nil {
		return nil, errors.Join(ErrFailedToOpenDB, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Join(ErrFailedToOpenDB, err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, errors.Join(ErrFailedToOpenDB, err)
	}
	return db, nil
}

// Healthcheck returns a probe that pings the database behind db.
func Healthcheck(db *gorm.DB) func(context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return errors.Join(ErrQueryFailed, err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return errors.Join(ErrQueryFailed, err)
		}
		return nil
	}
}
