package validator

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/outcome-co/validates/pkg/logger"
)

// Validator runs one Definition against input. A Validator can be reused for
// sequential calls but not concurrently.
type Validator struct {
	def    *Definition
	fields []*Field
	byName map[string]*Field
	data   map[string]any
	errors Errors
}

type validateOptions struct {
	only    []string
	exclude []string
}

// ValidateOption adjusts a single Validate call.
type ValidateOption func(*validateOptions)

// Only restricts this call to the named fields, overriding WithOnly.
func Only(names ...string) ValidateOption {
	return func(o *validateOptions) {
		o.only = names
	}
}

// Exclude skips the named fields for this call, overriding WithExclude.
func Exclude(names ...string) ValidateOption {
	return func(o *validateOptions) {
		o.exclude = names
	}
}

// ActiveFields returns the fields a Validate call with opts would process,
// in declaration order.
func (v *Validator) ActiveFields(opts ...ValidateOption) []*Field {
	o := validateOptions{only: v.def.only, exclude: v.def.exclude}
	for _, opt := range opts {
		opt(&o)
	}

	active := make([]*Field, 0, len(v.fields))
	for _, f := range v.fields {
		if len(o.only) > 0 && !slices.Contains(o.only, f.Name()) {
			continue
		}
		if slices.Contains(o.exclude, f.Name()) {
			continue
		}
		active = append(active, f)
	}
	return active
}

// Validate coerces and checks input. It returns false with populated Errors
// when any check failed. A non-nil error means validation could not run
// (for example a store lookup failed) and the result must be discarded.
func (v *Validator) Validate(ctx context.Context, input map[string]any, opts ...ValidateOption) (bool, error) {
	v.data = make(map[string]any)
	v.errors = make(Errors)
	active := v.ActiveFields(opts...)

	for _, f := range active {
		if err := v.coerceField(ctx, f, input); err != nil {
			return false, err
		}
	}

	whole := make(map[string]any, len(input)+len(v.data))
	maps.Copy(whole, input)
	maps.Copy(whole, v.data)
	for _, f := range active {
		if v.errors.Has(f.Name()) {
			continue
		}
		if err := f.Validate(whole); err != nil {
			if rerr := v.AddError(f.Name(), err); rerr != nil {
				return false, rerr
			}
		}
	}

	for _, f := range active {
		if err := v.cleanField(ctx, f); err != nil {
			return false, err
		}
	}

	if v.errors.IsEmpty() && v.def.clean != nil {
		out, err := v.def.clean(ctx, v.data)
		if err != nil {
			if rerr := v.AddError(BaseKey, err); rerr != nil {
				return false, rerr
			}
		} else if out != nil {
			v.data = out
		}
	}

	if !v.errors.IsEmpty() {
		v.def.logger.DebugContext(ctx, "validation failed", logger.ValidationErrors(v.errors))
	}
	return v.errors.IsEmpty(), nil
}

// coerceField stores the coerced value of f in data. A key missing from
// input falls back to the field default.
func (v *Validator) coerceField(ctx context.Context, f *Field, input map[string]any) error {
	name := f.Name()
	raw, present := input[name]
	if !present {
		raw, present = f.Default()
	}

	f.SetValue(nil)
	if raw != nil {
		if _, err := f.Coerce(ctx, raw); err != nil {
			return v.AddError(name, err)
		}
	}
	if present {
		v.data[name] = f.Value()
	}
	return nil
}

func (v *Validator) cleanField(ctx context.Context, f *Field) error {
	fn, ok := v.def.cleanFields[f.Name()]
	if !ok || v.errors.Has(f.Name()) {
		return nil
	}
	value, ok := v.data[f.Name()]
	if !ok {
		return nil
	}

	out, err := fn(ctx, value)
	if err != nil {
		return v.AddError(f.Name(), err)
	}
	v.data[f.Name()] = out
	f.SetValue(out)
	return nil
}

// AddError records err against field when it is a validation failure and
// returns nil. Any other error is returned unchanged.
func (v *Validator) AddError(field string, err error) error {
	ve, ok := AsValidationError(err)
	if !ok {
		return err
	}
	v.errors[field] = v.def.Message(field, ve)
	return nil
}

// Data returns the validated values of the last Validate call.
func (v *Validator) Data() map[string]any { return v.data }

// Errors returns the failures of the last Validate call.
func (v *Validator) Errors() Errors { return v.errors }

// Err returns the failures as an error, or nil when there are none.
func (v *Validator) Err() error {
	if v.errors.IsEmpty() {
		return nil
	}
	return v.errors
}

// Field returns this validator's instance of the named field.
func (v *Validator) Field(name string) (*Field, error) {
	f, ok := v.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return f, nil
}

func (v *Validator) Definition() *Definition { return v.def }
