package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/outcome-co/validates/pkg/model"
)

// toParam adapts a validated value to a query argument for col.
func toParam(col model.Column, v any) any {
	if v == nil {
		return nil
	}

	switch col.Type {
	case model.ColumnArray:
		if list, ok := v.([]any); ok {
			return typedList(col.ElemType, list)
		}
	case model.ColumnMap:
		if m, ok := v.(map[string]any); ok {
			h := make(pgtype.Hstore, len(m))
			for k, val := range m {
				if val == nil {
					h[k] = nil
					continue
				}
				s := fmt.Sprint(val)
				h[k] = &s
			}
			return h
		}
	case model.ColumnTime:
		if t, ok := v.(time.Time); ok {
			clock := time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second +
				time.Duration(t.Nanosecond())
			return pgtype.Time{Microseconds: clock.Microseconds(), Valid: true}
		}
	}
	return v
}

// typedList converts []any to a typed slice so pgx can pick the array codec.
func typedList(elem model.ColumnType, list []any) any {
	switch elem {
	case model.ColumnInteger:
		return convertList[int64](list)
	case model.ColumnFloat:
		return convertList[float64](list)
	case model.ColumnText:
		return convertList[string](list)
	case model.ColumnBoolean:
		return convertList[bool](list)
	case model.ColumnUUID:
		return convertList[uuid.UUID](list)
	default:
		return list
	}
}

func convertList[T any](list []any) any {
	out := make([]T, len(list))
	for i, v := range list {
		typed, ok := v.(T)
		if !ok {
			return list
		}
		out[i] = typed
	}
	return out
}

// normalizeRow maps driver values back to the native values the validator
// produces, so stored rows compare equal to validated input.
func normalizeRow(ctx context.Context, t *model.Table, row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for name, v := range row {
		v = fromDriver(v)
		col, ok := t.Column(name)
		if !ok || v == nil {
			out[name] = v
			continue
		}
		if coerced, err := model.FieldType(col).Coerce(ctx, v); err == nil {
			v = coerced
		}
		out[name] = v
	}
	return out
}

func fromDriver(v any) any {
	switch v := v.(type) {
	case pgtype.Numeric:
		if !v.Valid {
			return nil
		}
		dv, err := v.Value()
		if err != nil {
			return v
		}
		return dv
	case [16]byte:
		return uuid.UUID(v)
	case pgtype.Time:
		if !v.Valid {
			return nil
		}
		return time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(v.Microseconds) * time.Microsecond)
	case pgtype.Hstore:
		return hstoreMap(v)
	case map[string]*string:
		return hstoreMap(v)
	default:
		return v
	}
}

func hstoreMap(h map[string]*string) map[string]any {
	out := make(map[string]any, len(h))
	for k, v := range h {
		if v == nil {
			out[k] = nil
			continue
		}
		out[k] = *v
	}
	return out
}
