package validator

import "strings"

// Required fails when the field has no value.
func Required() Func {
	return func(f *Field, _ map[string]any) error {
		if f.Value() == nil {
			return NewError(CodeRequired, nil)
		}
		return nil
	}
}

// NotEmpty fails for strings that are blank after trimming whitespace.
func NotEmpty() Func {
	return func(f *Field, _ map[string]any) error {
		if s, ok := f.Value().(string); ok && strings.TrimSpace(s) == "" {
			return NewError(CodeEmpty, nil)
		}
		return nil
	}
}

func MinLength(low int) Func {
	return func(f *Field, _ map[string]any) error {
		if n, ok := sizeOf(f.Value()); ok && n < low {
			return NewError(CodeLengthLow, map[string]any{"low": low})
		}
		return nil
	}
}

func MaxLength(high int) Func {
	return func(f *Field, _ map[string]any) error {
		if n, ok := sizeOf(f.Value()); ok && n > high {
			return NewError(CodeLengthHigh, map[string]any{"high": high})
		}
		return nil
	}
}

// LengthBetween checks both length bounds, inclusive.
func LengthBetween(low, high int) Func {
	return func(f *Field, _ map[string]any) error {
		if n, ok := sizeOf(f.Value()); ok && (n < low || n > high) {
			return NewError(CodeLengthBetween, map[string]any{"low": low, "high": high})
		}
		return nil
	}
}

func ExactLength(equal int) Func {
	return func(f *Field, _ map[string]any) error {
		if n, ok := sizeOf(f.Value()); ok && n != equal {
			return NewError(CodeLengthEqual, map[string]any{"equal": equal})
		}
		return nil
	}
}
