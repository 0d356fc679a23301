package model

import (
	"context"
	"fmt"
	"maps"

	"github.com/outcome-co/validates/pkg/logger"
	"github.com/outcome-co/validates/pkg/validator"
)

// Validator validates input for one record and saves it. It is not safe for
// concurrent use.
type Validator struct {
	def       *Definition
	record    *Record
	v         *validator.Validator
	validated bool
}

// Record returns the bound record.
func (mv *Validator) Record() *Record { return mv.record }

func (mv *Validator) Data() map[string]any { return mv.v.Data() }

func (mv *Validator) Errors() validator.Errors { return mv.v.Errors() }

func (mv *Validator) Err() error { return mv.v.Err() }

// Validate fills keys missing from input with the record's current values,
// runs field validation and then checks unique columns and unique indexes
// against the store. Nothing is written.
func (mv *Validator) Validate(ctx context.Context, input map[string]any, opts ...validator.ValidateOption) (bool, error) {
	mv.validated = false
	ctx = logger.ContextWithTable(mv.def.scope(ctx, mv.def.store), mv.def.table.Name)

	merged := make(map[string]any, len(input))
	maps.Copy(merged, input)
	for _, f := range mv.v.ActiveFields(opts...) {
		if _, ok := merged[f.Name()]; ok {
			continue
		}
		if _, isColumn := mv.def.table.Column(f.Name()); !isColumn {
			continue
		}
		if value, ok := mv.record.Values[f.Name()]; ok {
			merged[f.Name()] = value
		}
	}

	ok, err := mv.v.Validate(ctx, merged, opts...)
	if err != nil || !ok {
		return false, err
	}

	if err := mv.checkUnique(ctx); err != nil {
		return false, err
	}
	if !mv.v.Errors().IsEmpty() {
		mv.def.logger.DebugContext(ctx, "uniqueness check failed", logger.ValidationErrors(mv.v.Errors()))
		return false, nil
	}

	mv.validated = true
	return true, nil
}

func (mv *Validator) checkUnique(ctx context.Context) error {
	t := mv.def.table
	data := mv.v.Data()
	excludeID := mv.record.Values[t.PrimaryKey]

	for _, col := range t.Columns {
		if !col.Unique || col.PrimaryKey {
			continue
		}
		if err := mv.checkConstraint(ctx, []string{col.Name}, validator.CodeUnique, data, excludeID); err != nil {
			return err
		}
	}

	for _, idx := range t.Indexes {
		if !idx.Unique || len(idx.Columns) == 0 {
			continue
		}
		code := validator.CodeIndex
		if len(idx.Columns) == 1 {
			code = validator.CodeUnique
		}
		if err := mv.checkConstraint(ctx, idx.Columns, code, data, excludeID); err != nil {
			return err
		}
	}
	return nil
}

// checkConstraint is skipped unless every column is present in data.
func (mv *Validator) checkConstraint(ctx context.Context, columns []string, code string, data map[string]any, excludeID any) error {
	match := make(map[string]any, len(columns))
	for _, name := range columns {
		value, ok := data[name]
		if !ok || value == nil {
			return nil
		}
		col, _ := mv.def.table.Column(name)
		match[name] = columnValue(col, value)
	}

	exists, err := mv.def.store.Exists(ctx, mv.def.table.Name, match, excludeID)
	if err != nil {
		return err
	}
	if exists {
		for _, name := range columns {
			if err := mv.v.AddError(name, validator.NewError(code, nil)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Save writes the validated data to the record and persists it, replacing
// the associations of every many-reference field present in the data. It
// runs in one store transaction and returns ErrNotValidated unless the latest
// Validate succeeded.
func (mv *Validator) Save(ctx context.Context) error {
	if !mv.validated {
		return ErrNotValidated
	}
	t := mv.def.table
	ctx = logger.ContextWithTable(mv.def.scope(ctx, mv.def.store), t.Name)
	data := mv.v.Data()
	rec := mv.record.Clone()

	err := mv.def.store.Transaction(ctx, func(ctx context.Context, tx Store) error {
		for _, col := range t.Columns {
			if value, ok := data[col.Name]; ok {
				rec.Set(col.Name, columnValue(col, value))
			}
		}
		if err := tx.Save(ctx, rec); err != nil {
			return err
		}

		ownerID := rec.Values[t.PrimaryKey]
		for _, rel := range t.ManyToMany {
			value, ok := data[rel.Name]
			if !ok {
				continue
			}
			targets, _ := value.([]*Record)
			ids := make([]any, 0, len(targets))
			for _, target := range targets {
				id := target.Get(rel.TargetKey)
				if id == nil {
					return fmt.Errorf("%w: %s record in %s", ErrNotPersisted, rel.Target, rel.Name)
				}
				ids = append(ids, id)
			}
			if err := tx.SetRelated(ctx, rel, ownerID, ids); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		mv.def.logger.ErrorContext(ctx, "save failed", logger.Error(err))
		return err
	}

	mv.record.Values = rec.Values
	mv.def.logger.DebugContext(ctx, "record saved", logger.RecordID(rec.Values[t.PrimaryKey]))
	return nil
}

// columnValue converts a validated value to what the column stores:
// references store the referenced column of the related record.
func columnValue(col Column, value any) any {
	rec, ok := value.(*Record)
	if !ok {
		return value
	}
	if rec == nil {
		return nil
	}
	key := ""
	if col.References != nil {
		key = col.References.Column
	}
	return rec.Get(key)
}
