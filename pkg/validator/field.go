package validator

import (
	"context"
	"fmt"
	"slices"
)

// Choice is one allowed value of a field. Label is display metadata for
// callers rendering the choices; membership checks compare Value only.
type Choice struct {
	Value any
	Label string
}

// Field is a named, typed slot of a validator. A Field holds the value of the
// validation in progress, so a single instance must not be shared between
// concurrent validations; Definition clones fields for every Validator.
type Field struct {
	name     string
	typ      Type
	required bool

	hasDefault  bool
	defaultVal  any
	defaultFunc func() any

	low, high   any
	minLength   *int
	maxLength   *int
	equalLength *int

	choices    []Choice
	validators []Func

	value any
}

// FieldOption configures a Field at declaration time.
type FieldOption func(*Field)

// IsRequired marks the field as mandatory: an absent or nil value fails with "required".
func IsRequired() FieldOption {
	return func(f *Field) { f.required = true }
}

// WithDefault sets the value used when the input has no key for the field.
func WithDefault(v any) FieldOption {
	return func(f *Field) {
		f.hasDefault = true
		f.defaultVal = v
		f.defaultFunc = nil
	}
}

// WithDefaultFunc is like WithDefault but computes the value on every validation.
func WithDefaultFunc(fn func() any) FieldOption {
	return func(f *Field) {
		if fn == nil {
			return
		}
		f.hasDefault = true
		f.defaultVal = nil
		f.defaultFunc = fn
	}
}

// WithLow sets an inclusive lower bound. The bound is coerced with the field type.
func WithLow(v any) FieldOption {
	return func(f *Field) { f.low = v }
}

// WithHigh sets an inclusive upper bound. The bound is coerced with the field type.
func WithHigh(v any) FieldOption {
	return func(f *Field) { f.high = v }
}

// WithRange sets both inclusive bounds.
func WithRange(low, high any) FieldOption {
	return func(f *Field) {
		f.low = low
		f.high = high
	}
}

// WithMinLength sets the minimum length of strings, lists and maps.
func WithMinLength(n int) FieldOption {
	return func(f *Field) { f.minLength = &n }
}

// WithMaxLength sets the maximum length of strings, lists and maps.
func WithMaxLength(n int) FieldOption {
	return func(f *Field) { f.maxLength = &n }
}

// WithLength bounds the length on both sides.
func WithLength(minLength, maxLength int) FieldOption {
	return func(f *Field) {
		f.minLength = &minLength
		f.maxLength = &maxLength
	}
}

// WithEqualLength requires an exact length. It is checked before the min and
// max lengths.
func WithEqualLength(n int) FieldOption {
	return func(f *Field) { f.equalLength = &n }
}

// WithValidators appends validator funcs, run in order after coercion.
func WithValidators(fns ...Func) FieldOption {
	return func(f *Field) {
		for _, fn := range fns {
			if fn != nil {
				f.validators = append(f.validators, fn)
			}
		}
	}
}

// WithChoices restricts values to the given choices.
func WithChoices(choices ...Choice) FieldOption {
	return func(f *Field) { f.choices = append(f.choices, choices...) }
}

// New declares a field of an arbitrary type. It panics when a bound cannot be
// coerced by typ, since that is a programming error in the declaration.
func New(name string, typ Type, opts ...FieldOption) *Field {
	if name == "" {
		panic(fmt.Errorf("%w: empty field name", ErrInvalidDeclaration))
	}
	if typ == nil {
		typ = RawType{}
	}

	f := &Field{name: name, typ: typ}
	for _, opt := range opts {
		opt(f)
	}

	f.low = f.mustCoerceBound("low", f.low)
	f.high = f.mustCoerceBound("high", f.high)
	if f.minLength != nil && f.maxLength != nil && *f.minLength > *f.maxLength {
		panic(fmt.Errorf("%w: %s: min length %d exceeds max length %d",
			ErrInvalidDeclaration, name, *f.minLength, *f.maxLength))
	}
	return f
}

// Field constructors for the built-in types.

func Raw(name string, opts ...FieldOption) *Field      { return New(name, RawType{}, opts...) }
func String(name string, opts ...FieldOption) *Field   { return New(name, StringType{}, opts...) }
func Boolean(name string, opts ...FieldOption) *Field  { return New(name, BooleanType{}, opts...) }
func Integer(name string, opts ...FieldOption) *Field  { return New(name, IntegerType{}, opts...) }
func Float(name string, opts ...FieldOption) *Field    { return New(name, FloatType{}, opts...) }
func Decimal(name string, opts ...FieldOption) *Field  { return New(name, DecimalType{}, opts...) }
func Date(name string, opts ...FieldOption) *Field     { return New(name, DateType{}, opts...) }
func Time(name string, opts ...FieldOption) *Field     { return New(name, TimeType{}, opts...) }
func DateTime(name string, opts ...FieldOption) *Field { return New(name, DateTimeType{}, opts...) }
func UUID(name string, opts ...FieldOption) *Field     { return New(name, UUIDType{}, opts...) }
func Map(name string, opts ...FieldOption) *Field      { return New(name, MapType{}, opts...) }

// List declares a list field; elem may be nil to keep elements as they are.
func List(name string, elem Type, opts ...FieldOption) *Field {
	return New(name, ListType{Elem: elem}, opts...)
}

func (f *Field) mustCoerceBound(which string, v any) any {
	if v == nil {
		return nil
	}
	out, err := f.typ.Coerce(context.Background(), v)
	if err != nil || out == nil {
		panic(fmt.Errorf("%w: %s: %s bound %v is not a valid %s",
			ErrInvalidDeclaration, f.name, which, v, f.typ.Name()))
	}
	return out
}

// Name returns the input key of the field.
func (f *Field) Name() string { return f.name }

func (f *Field) Type() Type { return f.typ }

func (f *Field) Required() bool { return f.required }

// Value returns the value of the validation in progress.
func (f *Field) Value() any { return f.value }

func (f *Field) SetValue(v any) { f.value = v }

// Choices returns a copy of the declared choices, labels included.
func (f *Field) Choices() []Choice { return slices.Clone(f.choices) }

// Default returns the default value and whether one is configured.
func (f *Field) Default() (any, bool) {
	if !f.hasDefault {
		return nil, false
	}
	if f.defaultFunc != nil {
		return f.defaultFunc(), true
	}
	return f.defaultVal, true
}

// Clone returns a copy with an empty value slot.
func (f *Field) Clone() *Field {
	c := *f
	c.value = nil
	c.choices = slices.Clone(f.choices)
	c.validators = slices.Clone(f.validators)
	return &c
}

// Coerce converts raw input with the field type and stores the result.
func (f *Field) Coerce(ctx context.Context, raw any) (any, error) {
	v, err := f.typ.Coerce(ctx, raw)
	if err != nil {
		f.value = nil
		return nil, err
	}
	f.value = v
	return v, nil
}

// Validate runs the bound, length, choice and validator checks against the
// current value. The first failure is returned.
func (f *Field) Validate(data map[string]any) error {
	if f.value == nil {
		if f.required {
			return NewError(CodeRequired, nil)
		}
		return nil
	}

	checks := make([]Func, 0, len(f.validators)+3)
	if f.low != nil || f.high != nil {
		checks = append(checks, ValueRange(f.low, f.high))
	}
	if f.minLength != nil || f.maxLength != nil || f.equalLength != nil {
		checks = append(checks, lengthCheck(f.minLength, f.maxLength, f.equalLength))
	}
	if len(f.choices) > 0 {
		values := make([]any, len(f.choices))
		for i, c := range f.choices {
			values[i] = c.Value
		}
		checks = append(checks, OneOf(values...))
	}
	checks = append(checks, f.validators...)

	for _, check := range checks {
		if err := check(f, data); err != nil {
			return err
		}
	}
	return nil
}

func lengthCheck(minLength, maxLength, equalLength *int) Func {
	switch {
	case equalLength != nil:
		exact := ExactLength(*equalLength)
		if minLength == nil && maxLength == nil {
			return exact
		}
		rest := lengthCheck(minLength, maxLength, nil)
		return func(f *Field, data map[string]any) error {
			if err := exact(f, data); err != nil {
				return err
			}
			return rest(f, data)
		}
	case minLength != nil && maxLength != nil:
		return LengthBetween(*minLength, *maxLength)
	case minLength != nil:
		return MinLength(*minLength)
	default:
		return MaxLength(*maxLength)
	}
}
