package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/outcome-co/validates/pkg/logger"
	"github.com/outcome-co/validates/pkg/model"
	"github.com/outcome-co/validates/pkg/validator"
)

// Settings holds the process-wide behavior of the validation engine.
type Settings struct {
	LogLevel         string `env:"VALIDATES_LOG_LEVEL" envDefault:"info"`         // LogLevel is one of debug, info, warn, error.
	LogFormat        string `env:"VALIDATES_LOG_FORMAT" envDefault:"json"`        // LogFormat is json or text.
	MessagesFile     string `env:"VALIDATES_MESSAGES_FILE"`                       // MessagesFile is a YAML map of code to message template.
	Timezone         string `env:"VALIDATES_TIMEZONE" envDefault:"UTC"`           // Timezone applies to textual dates without an offset.
	StrictReferences bool   `env:"VALIDATES_STRICT_REFERENCES" envDefault:"false"` // StrictReferences rejects reference mappings without the lookup key.
}

// Apply installs the message overrides and the timezone and returns a logger
// built from the log settings. Nothing is changed when a value is invalid.
func (s Settings) Apply() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s.LogLevel))); err != nil {
		return nil, errors.Join(ErrInvalidSettings, err)
	}
	format := logger.Format(strings.ToLower(s.LogFormat))
	if format != logger.FormatJSON && format != logger.FormatText {
		return nil, fmt.Errorf("%w: log format %q", ErrInvalidSettings, s.LogFormat)
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, errors.Join(ErrInvalidSettings, err)
	}

	if s.MessagesFile != "" {
		f, err := os.Open(s.MessagesFile)
		if err != nil {
			return nil, errors.Join(ErrInvalidSettings, err)
		}
		defer f.Close()
		if err := validator.LoadMessages(f); err != nil {
			return nil, errors.Join(ErrInvalidSettings, err)
		}
	}
	validator.SetLocation(loc)

	return logger.New(logger.WithLevel(level), logger.WithFormat(format)), nil
}

// ModelOptions returns the model.Define options implied by the settings.
func (s Settings) ModelOptions(l *slog.Logger) []model.Option {
	opts := []model.Option{model.WithLogger(l)}
	if s.StrictReferences {
		opts = append(opts, model.WithStrictReferences())
	}
	return opts
}
