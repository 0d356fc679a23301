package logger

import (
	"context"
	"log/slog"
)

type tableKey struct{}

// ContextWithTable stores the name of the table being validated or written.
func ContextWithTable(ctx context.Context, table string) context.Context {
	return context.WithValue(ctx, tableKey{}, table)
}

// TableFromContext returns the table name stored with ContextWithTable.
func TableFromContext(ctx context.Context) (string, bool) {
	table, ok := ctx.Value(tableKey{}).(string)
	return table, ok && table != ""
}

// TableExtractor adds the context table name to log records.
func TableExtractor(ctx context.Context) (slog.Attr, bool) {
	if table, ok := TableFromContext(ctx); ok {
		return Table(table), true
	}
	return slog.Attr{}, false
}
