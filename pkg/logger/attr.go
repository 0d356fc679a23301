package logger

import (
	"log/slog"
	"maps"
	"slices"
	"strconv"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Table records a table name under the key "table".
func Table(name string) slog.Attr {
	return slog.String("table", name)
}

// Field records a field name under the key "field".
func Field(name string) slog.Attr {
	return slog.String("field", name)
}

// RecordID records a primary key value under the key "record_id".
// If id is nil, it returns an empty Attr.
func RecordID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("record_id", id)
}

// ValidationErrors groups field failure messages under "validation_errors",
// fields in lexical order. An empty map gives an empty Attr.
func ValidationErrors(errs map[string]string) slog.Attr {
	if len(errs) == 0 {
		return slog.Attr{}
	}
	as := make([]slog.Attr, 0, len(errs))
	for _, field := range slices.Sorted(maps.Keys(errs)) {
		as = append(as, slog.String(field, errs[field]))
	}
	return slog.Attr{Key: "validation_errors", Value: slog.GroupValue(as...)}
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Duration records a duration under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}
