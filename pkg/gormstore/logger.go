package gormstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/outcome-co/validates/pkg/logger"
)

const defaultSlowThreshold = 200 * time.Millisecond

// slogAdapter routes gorm's log output to a slog.Logger.
type slogAdapter struct {
	logger        *slog.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// NewLogger returns a gorm logger writing to l at the given level.
func NewLogger(l *slog.Logger, level gormlogger.LogLevel, slowThreshold time.Duration) gormlogger.Interface {
	if l == nil {
		l = slog.Default()
	}
	if slowThreshold <= 0 {
		slowThreshold = defaultSlowThreshold
	}
	return &slogAdapter{
		logger:        l.With(logger.Component("gorm")),
		level:         level,
		slowThreshold: slowThreshold,
	}
}

func (a *slogAdapter) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *a
	clone.level = level
	return &clone
}

func (a *slogAdapter) Info(ctx context.Context, msg string, args ...any) {
	if a.level >= gormlogger.Info {
		a.logger.InfoContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (a *slogAdapter) Warn(ctx context.Context, msg string, args ...any) {
	if a.level >= gormlogger.Warn {
		a.logger.WarnContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (a *slogAdapter) Error(ctx context.Context, msg string, args ...any) {
	if a.level >= gormlogger.Error {
		a.logger.ErrorContext(ctx, fmt.Sprintf(msg, args...))
	}
}

// Trace logs failed queries at error, slow queries at warn and every other
// query at debug. Missing rows are not failures.
func (a *slogAdapter) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if a.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	attrs := []any{slog.String("sql", sql), slog.Int64("rows", max(rows, 0)), logger.Duration(elapsed)}

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && a.level >= gormlogger.Error:
		a.logger.ErrorContext(ctx, "query failed", append(attrs, logger.Error(err))...)
	case elapsed > a.slowThreshold && a.level >= gormlogger.Warn:
		a.logger.WarnContext(ctx, "slow query", attrs...)
	case a.level >= gormlogger.Info:
		a.logger.DebugContext(ctx, "query", attrs...)
	}
}

// ParseLogLevel maps silent, error, warn and info to gorm log levels.
func ParseLogLevel(s string) (gormlogger.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent":
		return gormlogger.Silent, nil
	case "error":
		return gormlogger.Error, nil
	case "warn", "warning", "":
		return gormlogger.Warn, nil
	case "info":
		return gormlogger.Info, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, s)
	}
}
