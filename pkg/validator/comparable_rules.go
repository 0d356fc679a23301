package validator

// Equal fails when the value differs from other.
func Equal(other any) Func {
	return func(f *Field, _ map[string]any) error {
		v := f.Value()
		if v == nil {
			return nil
		}
		if !valuesEqual(v, other) {
			return NewError(CodeEqual, map[string]any{"other": other})
		}
		return nil
	}
}

// Matches fails when the value differs from the input value under field. A
// declared field is compared by its coerced value.
func Matches(field string) Func {
	return func(f *Field, data map[string]any) error {
		v := f.Value()
		if v == nil {
			return nil
		}
		if !valuesEqual(v, data[field]) {
			return NewError(CodeMatches, map[string]any{"other": field})
		}
		return nil
	}
}
