package gormstore

import "time"

type Config struct {
	LogLevel        string        `env:"GORM_LOG_LEVEL" envDefault:"warn"`         // LogLevel is one of silent, error, warn or info.
	SlowThreshold   time.Duration `env:"GORM_SLOW_THRESHOLD" envDefault:"200ms"`   // SlowThreshold marks queries logged as slow.
	SingularTable   bool          `env:"GORM_SINGULAR_TABLE" envDefault:"true"`    // SingularTable disables pluralized table names.
	TablePrefix     string        `env:"GORM_TABLE_PREFIX"`                        // TablePrefix is prepended to every table name.
	MaxOpenConns    int           `env:"GORM_MAX_OPEN_CONNS" envDefault:"10"`      // MaxOpenConns is the maximum number of open connections.
	MaxIdleConns    int           `env:"GORM_MAX_IDLE_CONNS" envDefault:"5"`       // MaxIdleConns is the maximum number of idle connections.
	ConnMaxLifetime time.Duration `env:"GORM_CONN_MAX_LIFETIME" envDefault:"30m"`  // ConnMaxLifetime is the maximum amount of time a connection may be reused.
	ConnMaxIdleTime time.Duration `env:"GORM_CONN_MAX_IDLE_TIME" envDefault:"10m"` // ConnMaxIdleTime is the maximum amount of time a connection may be idle.
}
