package gormstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/outcome-co/validates/pkg/logger"
	"github.com/outcome-co/validates/pkg/model"
)

type entry struct {
	schema *schema.Schema
	table  *model.Table
}

// Store implements model.Store on gorm. Tables are described by the Go
// models passed to New; rows are read and written through those models so
// gorm's hooks, serializers and primary key backfill apply.
type Store struct {
	db      *gorm.DB
	entries map[string]entry
	logger  *slog.Logger
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New parses models with the naming strategy of db. Every model reachable
// through a relation must be registered too.
func New(db *gorm.DB, models []any, opts ...Option) (*Store, error) {
	s := &Store{db: db, entries: make(map[string]entry, len(models)), logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	cache := &sync.Map{}
	for _, m := range models {
		sch, err := schema.Parse(m, cache, db.NamingStrategy)
		if err != nil {
			return nil, errors.Join(ErrInvalidModel, err)
		}
		t, err := tableOf(sch, db.NamingStrategy)
		if err != nil {
			return nil, err
		}
		s.entries[sch.Table] = entry{schema: sch, table: t}
	}

	for name, e := range s.entries {
		for _, col := range e.table.Columns {
			if col.References != nil {
				if _, ok := s.entries[col.References.Table]; !ok {
					return nil, fmt.Errorf("%w: %s.%s references unregistered table %s", ErrInvalidModel, name, col.Name, col.References.Table)
				}
			}
		}
		for _, rel := range e.table.ManyToMany {
			if _, ok := s.entries[rel.Target]; !ok {
				return nil, fmt.Errorf("%w: %s.%s relates to unregistered table %s", ErrInvalidModel, name, rel.Name, rel.Target)
			}
		}
	}
	return s, nil
}

func (s *Store) Table(_ context.Context, name string) (*model.Table, error) {
	e, ok := s.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrUnknownTable, name)
	}
	return e.table, nil
}

func (s *Store) Find(ctx context.Context, table, column string, value any) (*model.Record, error) {
	e, err := s.entry(table)
	if err != nil {
		return nil, err
	}
	if _, ok := e.table.Column(column); !ok {
		return nil, fmt.Errorf("%w: %s.%s", model.ErrUnknownColumn, table, column)
	}

	row := reflect.New(e.schema.ModelType)
	err = s.db.WithContext(ctx).Where(eq(table, column, value)).Take(row.Interface()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return &model.Record{Table: table, Values: rowValues(ctx, e.schema, e.table, row.Elem())}, nil
}

func (s *Store) Exists(ctx context.Context, table string, match map[string]any, excludeID any) (bool, error) {
	e, err := s.entry(table)
	if err != nil {
		return false, err
	}

	q := s.db.WithContext(ctx).Model(reflect.New(e.schema.ModelType).Interface())
	for _, name := range slices.Sorted(maps.Keys(match)) {
		if _, ok := e.table.Column(name); !ok {
			return false, fmt.Errorf("%w: %s.%s", model.ErrUnknownColumn, table, name)
		}
		q = q.Where(eq(table, name, match[name]))
	}
	if excludeID != nil && e.table.PrimaryKey != "" {
		q = q.Where(clause.Neq{Column: clause.Column{Table: table, Name: e.table.PrimaryKey}, Value: excludeID})
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, errors.Join(ErrQueryFailed, err)
	}
	return n > 0, nil
}

// Save creates rec, or updates the stored row when rec carries the key of
// one. Columns missing from rec keep their stored values on update. The
// stored row, including generated values, replaces rec.Values.
func (s *Store) Save(ctx context.Context, rec *model.Record) error {
	if rec == nil {
		return model.ErrInvalidRecord
	}
	e, err := s.entry(rec.Table)
	if err != nil {
		return err
	}

	db := s.db.WithContext(ctx)
	ptr := reflect.New(e.schema.ModelType)
	row := ptr.Elem()

	stored := false
	if id := rec.Get(e.table.PrimaryKey); id != nil {
		err := db.Where(eq(rec.Table, e.table.PrimaryKey, id)).Take(ptr.Interface()).Error
		switch {
		case err == nil:
			stored = true
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return errors.Join(ErrQueryFailed, err)
		}
	}

	for _, name := range slices.Sorted(maps.Keys(rec.Values)) {
		f := e.schema.LookUpField(name)
		if f == nil || f.DBName == "" {
			continue
		}
		if err := setField(ctx, f, row, rec.Values[name]); err != nil {
			return err
		}
	}

	if stored {
		err = db.Save(ptr.Interface()).Error
	} else {
		err = db.Create(ptr.Interface()).Error
	}
	if err != nil {
		return wrapWriteError(err)
	}
	rec.Values = rowValues(ctx, e.schema, e.table, row)

	s.logger.DebugContext(ctx, "row saved", logger.Table(rec.Table), logger.RecordID(rec.Get(e.table.PrimaryKey)))
	return nil
}

func (s *Store) Related(ctx context.Context, rel model.ManyToMany, ownerID any) ([]*model.Record, error) {
	e, err := s.entry(rel.Target)
	if err != nil {
		return nil, err
	}

	rows := reflect.New(reflect.SliceOf(e.schema.ModelType))
	err = s.db.WithContext(ctx).
		Joins("JOIN ? ON ? = ?",
			clause.Table{Name: rel.JoinTable},
			clause.Column{Table: rel.JoinTable, Name: rel.TargetColumn},
			clause.Column{Table: rel.Target, Name: rel.TargetKey}).
		Where(eq(rel.JoinTable, rel.OwnerColumn, ownerID)).
		Find(rows.Interface()).Error
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}

	list := rows.Elem()
	out := make([]*model.Record, list.Len())
	for i := range list.Len() {
		out[i] = &model.Record{Table: rel.Target, Values: rowValues(ctx, e.schema, e.table, list.Index(i))}
	}
	return out, nil
}

// SetRelated replaces the join rows of ownerID. Callers wanting atomicity run
// it inside Transaction.
func (s *Store) SetRelated(ctx context.Context, rel model.ManyToMany, ownerID any, targetIDs []any) error {
	db := s.db.WithContext(ctx)

	err := db.Exec("DELETE FROM ? WHERE ? = ?",
		clause.Table{Name: rel.JoinTable}, clause.Column{Name: rel.OwnerColumn}, ownerID).Error
	if err != nil {
		return wrapWriteError(err)
	}
	if len(targetIDs) == 0 {
		return nil
	}

	links := make([]map[string]any, len(targetIDs))
	for i, id := range targetIDs {
		links[i] = map[string]any{rel.OwnerColumn: ownerID, rel.TargetColumn: id}
	}
	if err := db.Table(rel.JoinTable).Create(&links).Error; err != nil {
		return wrapWriteError(err)
	}
	return nil
}

// Transaction runs fn in a database transaction, or in a savepoint when the
// store is already bound to one.
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context, tx model.Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &Store{db: tx, entries: s.entries, logger: s.logger})
	})
	if err != nil {
		s.logger.WarnContext(ctx, "transaction rolled back", logger.Error(err))
	}
	return err
}

func (s *Store) entry(table string) (entry, error) {
	e, ok := s.entries[table]
	if !ok {
		return entry{}, fmt.Errorf("%w: %s", model.ErrUnknownTable, table)
	}
	return e, nil
}

func eq(table, column string, value any) clause.Eq {
	return clause.Eq{Column: clause.Column{Table: table, Name: column}, Value: value}
}
