package validator

// ValueRange checks inclusive bounds on ordered values (numbers, decimals,
// times, strings). A nil bound is open. Values without a common ordering with
// the bounds pass.
func ValueRange(low, high any) Func {
	return func(f *Field, _ map[string]any) error {
		v := f.Value()
		if v == nil {
			return nil
		}

		tooLow := false
		if low != nil {
			if c, ok := compareValues(v, low); ok && c < 0 {
				tooLow = true
			}
		}
		tooHigh := false
		if high != nil {
			if c, ok := compareValues(v, high); ok && c > 0 {
				tooHigh = true
			}
		}
		if !tooLow && !tooHigh {
			return nil
		}

		switch {
		case low != nil && high != nil:
			return NewError(CodeRangeBetween, map[string]any{"low": low, "high": high})
		case low != nil:
			return NewError(CodeRangeLow, map[string]any{"low": low})
		default:
			return NewError(CodeRangeHigh, map[string]any{"high": high})
		}
	}
}

// NumericRange is ValueRange for typed numeric bounds.
func NumericRange[T Numeric](low, high T) Func {
	return ValueRange(low, high)
}

func MinValue[T Numeric](low T) Func {
	return ValueRange(low, nil)
}

func MaxValue[T Numeric](high T) Func {
	return ValueRange(nil, high)
}
