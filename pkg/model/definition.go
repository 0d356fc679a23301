package model

import (
	"context"
	"log/slog"
	"sync"

	"github.com/outcome-co/validates/pkg/validator"
)

// Definition is the validator registry derived from one table.
type Definition struct {
	store      Store
	table      *Table
	validation *validator.Definition
	strict     bool
	logger     *slog.Logger
}

type options struct {
	validation []validator.Option
	strict     bool
	logger     *slog.Logger
}

// Option configures Define.
type Option func(*options)

// WithValidation applies validator options on top of the derived fields.
// Fields declared here replace derived fields of the same name.
func WithValidation(opts ...validator.Option) Option {
	return func(o *options) { o.validation = append(o.validation, opts...) }
}

// WithStrictReferences makes a reference mapping without the lookup key fail
// with "related" instead of being ignored.
func WithStrictReferences() Option {
	return func(o *options) { o.strict = true }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Define introspects table through store and derives its fields:
//   - a column is required when it is not nullable and not generated
//   - generated primary keys are skipped
//   - literal defaults, choices and text max lengths carry over
//   - foreign keys become Reference fields, many-to-many associations
//     ManyReference fields
func Define(ctx context.Context, store Store, table string, opts ...Option) (*Definition, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	t, err := store.Table(ctx, table)
	if err != nil {
		return nil, err
	}

	fields := make([]*validator.Field, 0, len(t.Columns)+len(t.ManyToMany))
	for _, col := range t.Columns {
		if col.PrimaryKey && col.Generated {
			continue
		}
		fields = append(fields, columnField(col))
	}
	for _, rel := range t.ManyToMany {
		fields = append(fields, ManyReferenceBy(rel.Name, rel.Target, rel.TargetKey))
	}

	base := validator.Define(validator.WithFields(fields...), validator.WithLogger(o.logger))
	return &Definition{
		store:      store,
		table:      t,
		validation: base.Extend(o.validation...),
		strict:     o.strict,
		logger:     o.logger,
	}, nil
}

func columnField(col Column) *validator.Field {
	var opts []validator.FieldOption
	if !col.Nullable && !col.Generated {
		opts = append(opts, validator.IsRequired())
	}
	if col.HasDefault {
		if fn, ok := col.Default.(func() any); ok {
			opts = append(opts, validator.WithDefaultFunc(fn))
		} else {
			opts = append(opts, validator.WithDefault(col.Default))
		}
	}
	if col.MaxLength > 0 && col.Type == ColumnText && col.References == nil {
		opts = append(opts, validator.WithMaxLength(col.MaxLength))
	}
	if len(col.Choices) > 0 {
		choices := make([]validator.Choice, len(col.Choices))
		for i, c := range col.Choices {
			choices[i] = validator.Choice{Value: c}
		}
		opts = append(opts, validator.WithChoices(choices...))
	}

	if fk := col.References; fk != nil {
		return ReferenceBy(col.Name, fk.Table, fk.Column, opts...)
	}
	return validator.New(col.Name, FieldType(col), opts...)
}

// Table returns the metadata the definition was derived from.
func (d *Definition) Table() *Table { return d.table }

// Validation returns the underlying field registry.
func (d *Definition) Validation() *validator.Definition { return d.validation }

// New binds a validator to rec. A nil rec starts a new row.
func (d *Definition) New(rec *Record) *Validator {
	if rec == nil {
		rec = NewRecord(d.table.Name, nil)
	}
	return &Validator{def: d, record: rec, v: d.validation.New()}
}

func (d *Definition) scope(ctx context.Context, store Store) context.Context {
	return withScope(ctx, store, d.strict)
}

type cacheKey struct {
	store Store
	table string
}

var definitions sync.Map

// NewValidator binds rec to the definition derived from its table with no
// overrides. Definitions are cached per store and table.
func NewValidator(ctx context.Context, store Store, rec *Record) (*Validator, error) {
	if rec == nil || rec.Table == "" {
		return nil, ErrInvalidRecord
	}

	key := cacheKey{store: store, table: rec.Table}
	if d, ok := definitions.Load(key); ok {
		return d.(*Definition).New(rec), nil
	}

	d, err := Define(ctx, store, rec.Table)
	if err != nil {
		return nil, err
	}
	actual, _ := definitions.LoadOrStore(key, d)
	return actual.(*Definition).New(rec), nil
}
