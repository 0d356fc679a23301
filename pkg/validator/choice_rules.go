package validator

import (
	"fmt"
	"strings"
)

// OneOf fails when the value is not among choices.
func OneOf(choices ...any) Func {
	return OneOfFunc(func() []any { return choices })
}

// OneOfFunc is OneOf with choices computed on every validation.
func OneOfFunc(choices func() []any) Func {
	return func(f *Field, _ map[string]any) error {
		v := f.Value()
		if v == nil {
			return nil
		}
		options := choices()
		if !containsValue(options, v) {
			return NewError(CodeOneOf, map[string]any{"choices": joinValues(options)})
		}
		return nil
	}
}

// NoneOf fails when the value is among choices.
func NoneOf(choices ...any) Func {
	return NoneOfFunc(func() []any { return choices })
}

func NoneOfFunc(choices func() []any) Func {
	return func(f *Field, _ map[string]any) error {
		v := f.Value()
		if v == nil {
			return nil
		}
		options := choices()
		if containsValue(options, v) {
			return NewError(CodeNoneOf, map[string]any{"choices": joinValues(options)})
		}
		return nil
	}
}

func containsValue(options []any, v any) bool {
	for _, o := range options {
		if valuesEqual(v, o) {
			return true
		}
	}
	return false
}

func joinValues(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
