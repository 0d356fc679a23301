package validator

import (
	"cmp"
	"reflect"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// compareValues orders two native values. ok is false when the values have no
// common ordering.
func compareValues(a, b any) (int, bool) {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv), true
		}
		return 0, false
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv), true
		}
		return 0, false
	}

	ad, aDec := a.(decimal.Decimal)
	bd, bDec := b.(decimal.Decimal)
	if aDec || bDec {
		var ok bool
		if !aDec {
			if ad, ok = toDecimal(a); !ok {
				return 0, false
			}
		}
		if !bDec {
			if bd, ok = toDecimal(b); !ok {
				return 0, false
			}
		}
		return ad.Cmp(bd), true
	}

	ai, aInt := asInt64(a)
	bi, bInt := asInt64(b)
	if aInt && bInt {
		return cmp.Compare(ai, bi), true
	}

	af, aNum := asFloat64(a)
	bf, bNum := asFloat64(b)
	if aNum && bNum {
		return cmp.Compare(af, bf), true
	}
	return 0, false
}

func toDecimal(v any) (decimal.Decimal, bool) {
	if n, ok := asInt64(v); ok {
		return decimal.NewFromInt(n), true
	}
	if f, ok := asFloat64(v); ok {
		return decimal.NewFromFloat(f), true
	}
	return decimal.Decimal{}, false
}

// valuesEqual compares ordered values by order and everything else deeply.
func valuesEqual(a, b any) bool {
	if c, ok := compareValues(a, b); ok {
		return c == 0
	}
	return reflect.DeepEqual(a, b)
}

// sizeOf returns the length of strings (in runes), lists and mappings.
func sizeOf(v any) (int, bool) {
	if s, ok := v.(string); ok {
		return len([]rune(s)), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	}
	return 0, false
}
