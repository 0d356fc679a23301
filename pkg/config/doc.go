// Package config loads typed configuration from the environment.
//
// Load parses a struct annotated with github.com/caarlos0/env/v11 tags and
// caches the result per type, so every package asking for the same struct
// sees one parsed value. The default .env file is read once through
// github.com/joho/godotenv before the first parse; LoadEnv reads other
// files explicitly. Reload and ResetCache exist for tests and for processes
// that re-read their environment.
//
// Settings gathers the engine-wide switches:
//
//	VALIDATES_LOG_LEVEL          debug, info, warn or error (default info)
//	VALIDATES_LOG_FORMAT         json or text (default json)
//	VALIDATES_MESSAGES_FILE      YAML file of message template overrides
//	VALIDATES_TIMEZONE           zone for textual dates without an offset (default UTC)
//	VALIDATES_STRICT_REFERENCES  reject reference mappings missing the lookup key
//
// # Usage
//
//	var settings config.Settings
//	if err := config.Load(&settings); err != nil {
//	    return err
//	}
//	log, err := settings.Apply()
//	if err != nil {
//	    return err
//	}
//	def, err := model.Define(ctx, store, "person", settings.ModelOptions(log)...)
//
// # Error Handling
//
// Failures wrap ErrParsingConfig, ErrLoadingEnvFile or ErrInvalidSettings and
// can be matched with errors.Is.
package config
