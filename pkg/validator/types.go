package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type converts raw input into the native representation of a field.
// A *ValidationError return means the input was rejected; any other error
// aborts the whole validation.
type Type interface {
	Name() string
	Coerce(ctx context.Context, value any) (any, error)
}

// RawType accepts any value unchanged.
type RawType struct{}

func (RawType) Name() string { return "raw" }

func (RawType) Coerce(_ context.Context, value any) (any, error) {
	return value, nil
}

// StringType converts scalars to their textual form. Lists and mappings are
// left as they are.
type StringType struct{}

func (StringType) Name() string { return "string" }

func (StringType) Coerce(_ context.Context, value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}

	switch reflect.TypeOf(value).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct, reflect.Pointer:
		return value, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprint(value), nil
	}
	return nil, NewError(CodeCoerceStr, nil)
}

// BooleanType accepts booleans, 0/1 and the usual textual spellings.
type BooleanType struct{}

func (BooleanType) Name() string { return "boolean" }

func (BooleanType) Coerce(_ context.Context, value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "":
			return nil, nil
		case "true", "t", "yes", "y", "on", "1":
			return true, nil
		case "false", "f", "no", "n", "off", "0":
			return false, nil
		}
	default:
		if n, ok := asInt64(value); ok && (n == 0 || n == 1) {
			return n == 1, nil
		}
	}
	return nil, NewError(CodeCoerceBool, nil)
}

// IntegerType produces int64 values.
type IntegerType struct{}

func (IntegerType) Name() string { return "integer" }

func (IntegerType) Coerce(_ context.Context, value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case bool:
		return nil, NewError(CodeCoerceInt, nil)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		if f, err := v.Float64(); err == nil {
			if n, ok := integral(f); ok {
				return n, nil
			}
		}
	case decimal.Decimal:
		if v.IsInteger() {
			return v.IntPart(), nil
		}
	default:
		if n, ok := asInt64(value); ok {
			return n, nil
		}
		if f, ok := asFloat64(value); ok {
			if n, ok := integral(f); ok {
				return n, nil
			}
		}
	}
	return nil, NewError(CodeCoerceInt, nil)
}

// FloatType produces float64 values.
type FloatType struct{}

func (FloatType) Name() string { return "float" }

func (FloatType) Coerce(_ context.Context, value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case bool:
		return nil, NewError(CodeCoerceFloat, nil)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, nil
		}
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f, nil
		}
	case decimal.Decimal:
		return v.InexactFloat64(), nil
	default:
		if f, ok := asFloat64(value); ok {
			return f, nil
		}
	}
	return nil, NewError(CodeCoerceFloat, nil)
}

// DecimalType produces decimal.Decimal values.
type DecimalType struct{}

func (DecimalType) Name() string { return "decimal" }

func (DecimalType) Coerce(_ context.Context, value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case decimal.Decimal:
		return v, nil
	case *decimal.Decimal:
		if v == nil {
			return nil, nil
		}
		return *v, nil
	case bool:
		return nil, NewError(CodeCoerceDecimal, nil)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		if d, err := decimal.NewFromString(s); err == nil {
			return d, nil
		}
	case json.Number:
		if d, err := decimal.NewFromString(v.String()); err == nil {
			return d, nil
		}
	case float32:
		return decimal.NewFromFloat32(v), nil
	case float64:
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return decimal.NewFromFloat(v), nil
		}
	default:
		if n, ok := asInt64(value); ok {
			return decimal.NewFromInt(n), nil
		}
	}
	return nil, NewError(CodeCoerceDecimal, nil)
}

// UUIDType produces uuid.UUID values.
type UUIDType struct{}

func (UUIDType) Name() string { return "uuid" }

func (UUIDType) Coerce(_ context.Context, value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case uuid.UUID:
		return v, nil
	case [16]byte:
		return uuid.UUID(v), nil
	case []byte:
		if id, err := uuid.FromBytes(v); err == nil {
			return id, nil
		}
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		if id, err := uuid.Parse(s); err == nil {
			return id, nil
		}
	}
	return nil, NewError(CodeCoerceUUID, nil)
}

// ListType produces []any values. When Elem is set every element is coerced
// with it.
type ListType struct {
	Elem Type
}

func (t ListType) Name() string {
	if t.Elem == nil {
		return "list"
	}
	return "list<" + t.Elem.Name() + ">"
}

func (t ListType) Coerce(ctx context.Context, value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, NewError(CodeCoerceList, nil)
	}
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return nil, nil
	}

	out := make([]any, rv.Len())
	for i := range rv.Len() {
		elem := rv.Index(i).Interface()
		if t.Elem != nil {
			v, err := t.Elem.Coerce(ctx, elem)
			if err != nil {
				if IsValidationError(err) {
					return nil, NewError(CodeCoerceList, nil)
				}
				return nil, err
			}
			elem = v
		}
		out[i] = elem
	}
	return out, nil
}

// MapType produces map[string]any values.
type MapType struct{}

func (MapType) Name() string { return "map" }

func (MapType) Coerce(_ context.Context, value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return v, nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, NewError(CodeCoerceMap, nil)
	}
	if rv.IsNil() {
		return nil, nil
	}

	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, nil
}

func asInt64(value any) (int64, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	}
	return 0, false
}

func asFloat64(value any) (float64, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	if n, ok := asInt64(value); ok {
		return float64(n), true
	}
	return 0, false
}

func integral(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
