package validator

import (
	"context"
	"log/slog"
	"maps"
	"slices"
)

// CleanFieldFunc transforms a single validated value. Returning a
// *ValidationError records a failure against the field.
type CleanFieldFunc func(ctx context.Context, value any) (any, error)

// CleanFunc transforms the whole validated data set. Returning a
// *ValidationError records a failure under BaseKey.
type CleanFunc func(ctx context.Context, data map[string]any) (map[string]any, error)

// Definition is the immutable field registry of one kind of validator.
// It is safe for concurrent use; per-run state lives in Validator.
type Definition struct {
	fields      []*Field
	messages    map[string]string
	cleanFields map[string]CleanFieldFunc
	clean       CleanFunc
	only        []string
	exclude     []string
	logger      *slog.Logger
}

// Option configures a Definition.
type Option func(*Definition)

// WithFields declares fields. A field whose name is already declared replaces
// the earlier declaration in place; new names are appended.
func WithFields(fields ...*Field) Option {
	return func(d *Definition) {
		for _, f := range fields {
			if f == nil {
				continue
			}
			if i := d.indexOf(f.Name()); i >= 0 {
				d.fields[i] = f
				continue
			}
			d.fields = append(d.fields, f)
		}
	}
}

// WithMessages overrides message templates. Keys are "field.code" or "code".
func WithMessages(messages map[string]string) Option {
	return func(d *Definition) { maps.Copy(d.messages, messages) }
}

// WithCleanField registers a transform for one field, run after all fields
// were processed and only if that field has no error.
func WithCleanField(name string, fn CleanFieldFunc) Option {
	return func(d *Definition) {
		if fn == nil {
			delete(d.cleanFields, name)
			return
		}
		d.cleanFields[name] = fn
	}
}

// WithClean registers the whole-data transform, run when no field failed.
func WithClean(fn CleanFunc) Option {
	return func(d *Definition) { d.clean = fn }
}

// WithOnly restricts validation to the named fields unless a call says otherwise.
func WithOnly(names ...string) Option {
	return func(d *Definition) { d.only = slices.Clone(names) }
}

// WithExclude skips the named fields unless a call says otherwise.
func WithExclude(names ...string) Option {
	return func(d *Definition) { d.exclude = slices.Clone(names) }
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Definition) {
		if l != nil {
			d.logger = l
		}
	}
}

// Define builds a Definition from options.
func Define(opts ...Option) *Definition {
	d := &Definition{
		messages:    make(map[string]string),
		cleanFields: make(map[string]CleanFieldFunc),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Extend derives a new Definition. Fields keep the parent's order; fields
// redeclared under an existing name replace the parent's, new ones are
// appended. Messages merge over the parent's and hooks replace them.
func (d *Definition) Extend(opts ...Option) *Definition {
	child := &Definition{
		fields:      slices.Clone(d.fields),
		messages:    maps.Clone(d.messages),
		cleanFields: maps.Clone(d.cleanFields),
		clean:       d.clean,
		only:        slices.Clone(d.only),
		exclude:     slices.Clone(d.exclude),
		logger:      d.logger,
	}
	for _, opt := range opts {
		opt(child)
	}
	return child
}

// New returns a Validator with its own copy of every field.
func (d *Definition) New() *Validator {
	fields := make([]*Field, len(d.fields))
	byName := make(map[string]*Field, len(d.fields))
	for i, f := range d.fields {
		fields[i] = f.Clone()
		byName[f.Name()] = fields[i]
	}
	return &Validator{
		def:    d,
		fields: fields,
		byName: byName,
		data:   make(map[string]any),
		errors: make(Errors),
	}
}

// FieldNames returns declared field names in declaration order.
func (d *Definition) FieldNames() []string {
	names := make([]string, len(d.fields))
	for i, f := range d.fields {
		names[i] = f.Name()
	}
	return names
}

// Field returns a copy of the named field declaration.
func (d *Definition) Field(name string) (*Field, bool) {
	if i := d.indexOf(name); i >= 0 {
		return d.fields[i].Clone(), true
	}
	return nil, false
}

func (d *Definition) Logger() *slog.Logger { return d.logger }

// Message resolves the template for a failure on field: "field.code", then
// "code" from the definition, then the process-wide table.
func (d *Definition) Message(field string, err *ValidationError) string {
	template, ok := d.messages[field+"."+err.Code]
	if !ok {
		template, ok = d.messages[err.Code]
	}
	if !ok {
		template = DefaultMessage(err.Code)
	}
	return FormatMessage(template, err.Params)
}

func (d *Definition) indexOf(name string) int {
	return slices.IndexFunc(d.fields, func(f *Field) bool { return f.Name() == name })
}
