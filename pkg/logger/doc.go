// Package logger builds *slog.Logger values for the validation engine and
// its stores.
//
// New takes functional options for level, format (text or json), output and
// static attributes, and wraps the handler with LogHandlerDecorator so that
// attributes stored in a context.Context are attached to every record. The
// table being validated is stored with ContextWithTable and added by default.
//
//	log := logger.New(
//	    logger.WithLevelName("debug"),
//	    logger.WithFormat(logger.FormatText),
//	)
//	ctx := logger.ContextWithTable(context.Background(), "person")
//	log.DebugContext(ctx, "validation failed", logger.ValidationErrors(errs))
//
// Attribute helpers (Table, Field, RecordID, ValidationErrors, Error, Errors)
// keep key names consistent across packages.
package logger
