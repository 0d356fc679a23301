package model

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/outcome-co/validates/pkg/validator"
)

type scopeKey struct{}

type scope struct {
	store  Store
	strict bool
}

// ContextWithStore makes store available to reference fields coerced with
// ctx. Model validators do this on their own; plain validator definitions
// that declare reference fields need it.
func ContextWithStore(ctx context.Context, store Store) context.Context {
	return withScope(ctx, store, false)
}

func withScope(ctx context.Context, store Store, strict bool) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope{store: store, strict: strict})
}

func scopeFrom(ctx context.Context) (scope, error) {
	sc, ok := ctx.Value(scopeKey{}).(scope)
	if !ok || sc.store == nil {
		return scope{}, ErrNoStore
	}
	return sc, nil
}

// ReferenceType resolves its input to a single *Record of Target. Input may
// be a record, a mapping holding the lookup column, or a bare identifier.
type ReferenceType struct {
	Target string
	// Column is the lookup column; empty means the target's primary key.
	Column string
}

func (t ReferenceType) Name() string { return "reference<" + t.Target + ">" }

func (t ReferenceType) Coerce(ctx context.Context, value any) (any, error) {
	if isBlank(value) {
		return nil, nil
	}

	l, err := newLookup(ctx, t.Target, t.Column)
	if err != nil {
		return nil, err
	}

	rec, missing, err := l.resolve(ctx, value)
	if err != nil {
		return nil, err
	}
	if missing != nil {
		return nil, l.relatedError([]any{missing})
	}
	if rec == nil {
		return nil, nil
	}
	return rec, nil
}

// ManyReferenceType resolves a list (or a single element) to []*Record.
// Identifiers that match nothing are reported together.
type ManyReferenceType struct {
	Target string
	Column string
}

func (t ManyReferenceType) Name() string { return "many_reference<" + t.Target + ">" }

func (t ManyReferenceType) Coerce(ctx context.Context, value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	l, err := newLookup(ctx, t.Target, t.Column)
	if err != nil {
		return nil, err
	}

	var elems []any
	rv := reflect.ValueOf(value)
	if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
		elems = make([]any, rv.Len())
		for i := range rv.Len() {
			elems[i] = rv.Index(i).Interface()
		}
	} else {
		elems = []any{value}
	}

	out := make([]*Record, 0, len(elems))
	var missing []any
	for _, elem := range elems {
		if isBlank(elem) {
			continue
		}
		rec, miss, err := l.resolve(ctx, elem)
		if err != nil {
			return nil, err
		}
		if miss != nil {
			missing = append(missing, miss)
			continue
		}
		if rec != nil {
			out = append(out, rec)
		}
	}
	if len(missing) > 0 {
		return nil, l.relatedError(missing)
	}
	return out, nil
}

// Reference declares a field resolving to one record of target by its primary key.
func Reference(name, target string, opts ...validator.FieldOption) *validator.Field {
	return validator.New(name, ReferenceType{Target: target}, opts...)
}

// ReferenceBy declares a reference field looked up by column instead of the primary key.
func ReferenceBy(name, target, column string, opts ...validator.FieldOption) *validator.Field {
	return validator.New(name, ReferenceType{Target: target, Column: column}, opts...)
}

// ManyReference declares a field resolving to records of target by primary key.
func ManyReference(name, target string, opts ...validator.FieldOption) *validator.Field {
	return validator.New(name, ManyReferenceType{Target: target}, opts...)
}

// ManyReferenceBy declares a many-reference field looked up by column.
func ManyReferenceBy(name, target, column string, opts ...validator.FieldOption) *validator.Field {
	return validator.New(name, ManyReferenceType{Target: target, Column: column}, opts...)
}

type lookup struct {
	sc     scope
	target *Table
	column Column
}

func newLookup(ctx context.Context, target, column string) (*lookup, error) {
	sc, err := scopeFrom(ctx)
	if err != nil {
		return nil, err
	}
	table, err := sc.store.Table(ctx, target)
	if err != nil {
		return nil, err
	}
	if column == "" {
		column = table.PrimaryKey
	}
	col, ok := table.Column(column)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, target, column)
	}
	return &lookup{sc: sc, target: table, column: col}, nil
}

// resolve returns the matched record, or the raw identifier that matched
// nothing, or neither for a mapping without the lookup key.
func (l *lookup) resolve(ctx context.Context, value any) (*Record, any, error) {
	switch v := value.(type) {
	case *Record:
		if v == nil {
			return nil, nil, nil
		}
		if v.Table != l.target.Name {
			return nil, nil, fmt.Errorf("%w: %s record given for %s", ErrInvalidRecord, v.Table, l.target.Name)
		}
		return v, nil, nil
	case Record:
		return l.resolve(ctx, &v)
	}

	if m, err := (validator.MapType{}).Coerce(ctx, value); err == nil && m != nil {
		key, ok := m.(map[string]any)[l.column.Name]
		if !ok {
			if l.sc.strict {
				return nil, "{}", nil
			}
			return nil, nil, nil
		}
		value = key
	}

	id, err := FieldType(l.column).Coerce(ctx, value)
	if err != nil {
		if validator.IsValidationError(err) {
			return nil, value, nil
		}
		return nil, nil, err
	}
	if id == nil {
		return nil, nil, nil
	}

	rec, err := l.sc.store.Find(ctx, l.target.Name, l.column.Name, id)
	if errors.Is(err, ErrNotFound) {
		return nil, value, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return rec, nil, nil
}

func (l *lookup) relatedError(missing []any) error {
	values := make([]string, len(missing))
	for i, m := range missing {
		values[i] = fmt.Sprint(m)
	}
	return validator.NewError(validator.CodeRelated, map[string]any{
		"field":  l.column.Name,
		"values": strings.Join(values, ", "),
	})
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}
