package gormstore

import (
	"context"
	"fmt"
	"reflect"

	"gorm.io/gorm/schema"

	"github.com/outcome-co/validates/pkg/model"
)

// setField assigns a validated value to the struct field behind f. Values
// are converted to the field's type first; gorm's setters are left to handle
// what remains (nil, Scanner and Valuer types).
func setField(ctx context.Context, f *schema.Field, row reflect.Value, v any) error {
	if v != nil {
		if converted, ok := convertTo(f.IndirectFieldType, reflect.ValueOf(v)); ok {
			if f.FieldType.Kind() == reflect.Pointer {
				p := reflect.New(f.IndirectFieldType)
				p.Elem().Set(converted)
				v = p.Interface()
			} else {
				v = converted.Interface()
			}
		}
	}
	if err := f.Set(ctx, row, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidValue, f.DBName, err)
	}
	return nil
}

// convertTo converts numbers to numbers, strings to strings and []any to
// typed slices. Anything else is reported as not convertible.
func convertTo(typ reflect.Type, v reflect.Value) (reflect.Value, bool) {
	if v.Type() == typ {
		return v, true
	}

	switch {
	case isNumber(typ.Kind()) && isNumber(v.Kind()),
		typ.Kind() == reflect.String && v.Kind() == reflect.String,
		typ.Kind() == reflect.Bool && v.Kind() == reflect.Bool:
		return v.Convert(typ), true
	case typ.Kind() == reflect.Slice && v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Interface:
		out := reflect.MakeSlice(typ, v.Len(), v.Len())
		for i := range v.Len() {
			elem := v.Index(i).Elem()
			if !elem.IsValid() {
				continue
			}
			converted, ok := convertTo(typ.Elem(), elem)
			if !ok {
				return reflect.Value{}, false
			}
			out.Index(i).Set(converted)
		}
		return out, true
	case typ.Kind() == reflect.Map && v.Kind() == reflect.Map && v.Type().Elem().Kind() == reflect.Interface &&
		typ.Key().Kind() == reflect.String && v.Type().Key().Kind() == reflect.String:
		out := reflect.MakeMapWithSize(typ, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			elem := reflect.Zero(typ.Elem())
			if val := iter.Value().Elem(); val.IsValid() {
				converted, ok := convertTo(typ.Elem(), val)
				if !ok {
					return reflect.Value{}, false
				}
				elem = converted
			}
			out.SetMapIndex(iter.Key().Convert(typ.Key()), elem)
		}
		return out, true
	}
	return reflect.Value{}, false
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// rowValues reads every column of row and coerces it to the value the
// validator would produce for the column, so stored rows compare equal to
// validated input. Fields are read directly since ValueOf wraps serialized
// fields.
func rowValues(ctx context.Context, sch *schema.Schema, t *model.Table, row reflect.Value) map[string]any {
	out := make(map[string]any, len(sch.DBNames))
	for _, name := range sch.DBNames {
		v := indirect(sch.FieldsByDBName[name].ReflectValueOf(ctx, row).Interface())

		col, ok := t.Column(name)
		if ok && v != nil {
			if coerced, err := model.FieldType(col).Coerce(ctx, v); err == nil {
				v = coerced
			}
		}
		out[name] = v
	}
	return out
}

func indirect(v any) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}
