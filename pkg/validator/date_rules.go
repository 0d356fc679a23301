package validator

import "time"

// TemporalRange checks inclusive time bounds. A zero bound is open.
func TemporalRange(low, high time.Time) Func {
	var lo, hi any
	if !low.IsZero() {
		lo = low
	}
	if !high.IsZero() {
		hi = high
	}
	return ValueRange(lo, hi)
}

// Before checks that the value is not after t.
func Before(t time.Time) Func {
	return ValueRange(nil, t)
}

// After checks that the value is not before t.
func After(t time.Time) Func {
	return ValueRange(t, nil)
}
