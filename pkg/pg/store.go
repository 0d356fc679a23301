package pg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/outcome-co/validates/pkg/logger"
	"github.com/outcome-co/validates/pkg/model"
)

// DB is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Begin(ctx context.Context) (pgx.Tx, error)
}

// metadata is shared between a store and the stores bound to its transactions.
type metadata struct {
	schema    string
	relations map[string][]model.ManyToMany
	tables    sync.Map // table name -> *model.Table
}

// Store implements model.Store on PostgreSQL. Table metadata is read from the
// catalog on first use and cached for the lifetime of the store; many-to-many
// associations are not discoverable and must be declared with WithManyToMany.
type Store struct {
	db     DB
	meta   *metadata
	logger *slog.Logger
}

type StoreOption func(*Store)

// WithSchema sets the schema tables are looked up in. Defaults to "public".
func WithSchema(schema string) StoreOption {
	return func(s *Store) {
		if schema != "" {
			s.meta.schema = schema
		}
	}
}

// WithManyToMany declares associations owned by table. TargetKey defaults to
// the target's primary key.
func WithManyToMany(table string, rels ...model.ManyToMany) StoreOption {
	return func(s *Store) {
		s.meta.relations[table] = append(s.meta.relations[table], rels...)
	}
}

func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewStore(db DB, opts ...StoreOption) *Store {
	s := &Store{
		db:     db,
		meta:   &metadata{schema: "public", relations: make(map[string][]model.ManyToMany)},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Table(ctx context.Context, name string) (*model.Table, error) {
	if t, ok := s.meta.tables.Load(name); ok {
		return t.(*model.Table), nil
	}

	t, err := s.introspect(ctx, name)
	if err != nil {
		return nil, err
	}
	actual, _ := s.meta.tables.LoadOrStore(name, t)
	return actual.(*model.Table), nil
}

func (s *Store) Find(ctx context.Context, table, column string, value any) (*model.Record, error) {
	t, col, err := s.column(ctx, table, column)
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf("SELECT * FROM %s WHERE %s = $1 LIMIT 1", s.ident(table), quote(col.Name))
	row, err := s.queryRow(ctx, sql, toParam(col, value))
	if err != nil {
		if IsNotFoundError(err) {
			return nil, model.ErrNotFound
		}
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return &model.Record{Table: table, Values: normalizeRow(ctx, t, row)}, nil
}

func (s *Store) Exists(ctx context.Context, table string, match map[string]any, excludeID any) (bool, error) {
	t, err := s.Table(ctx, table)
	if err != nil {
		return false, err
	}

	var (
		conds []string
		args  []any
	)
	for _, name := range slices.Sorted(maps.Keys(match)) {
		col, ok := t.Column(name)
		if !ok {
			return false, fmt.Errorf("%w: %s.%s", model.ErrUnknownColumn, table, name)
		}
		args = append(args, toParam(col, match[name]))
		conds = append(conds, quote(name)+" = $"+strconv.Itoa(len(args)))
	}
	if excludeID != nil && t.PrimaryKey != "" {
		pk, _ := t.Column(t.PrimaryKey)
		args = append(args, toParam(pk, excludeID))
		conds = append(conds, quote(pk.Name)+" <> $"+strconv.Itoa(len(args)))
	}
	if len(conds) == 0 {
		conds = append(conds, "TRUE")
	}

	sql := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s)", s.ident(table), strings.Join(conds, " AND "))
	var exists bool
	if err := s.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, errors.Join(ErrQueryFailed, err)
	}
	return exists, nil
}

// Save inserts rec, or upserts it on the primary key when the key is set.
// The stored row, including generated values, replaces rec.Values.
func (s *Store) Save(ctx context.Context, rec *model.Record) error {
	if rec == nil {
		return model.ErrInvalidRecord
	}
	t, err := s.Table(ctx, rec.Table)
	if err != nil {
		return err
	}

	var (
		names []string
		marks []string
		args  []any
	)
	for _, col := range t.Columns {
		value, ok := rec.Values[col.Name]
		if !ok || (value == nil && col.Generated) {
			continue
		}
		args = append(args, toParam(col, value))
		names = append(names, quote(col.Name))
		marks = append(marks, "$"+strconv.Itoa(len(args)))
	}

	var sql string
	switch {
	case len(names) == 0:
		sql = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING *", s.ident(t.Name))
	case rec.Get(t.PrimaryKey) == nil || t.PrimaryKey == "":
		sql = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
			s.ident(t.Name), strings.Join(names, ", "), strings.Join(marks, ", "))
	default:
		sets := make([]string, len(names))
		for i, name := range names {
			sets[i] = name + " = EXCLUDED." + name
		}
		sql = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s RETURNING *",
			s.ident(t.Name), strings.Join(names, ", "), strings.Join(marks, ", "),
			quote(t.PrimaryKey), strings.Join(sets, ", "))
	}

	row, err := s.queryRow(ctx, sql, args...)
	if err != nil {
		return wrapWriteError(err)
	}
	rec.Values = normalizeRow(ctx, t, row)

	s.logger.DebugContext(ctx, "row saved", logger.Table(t.Name), logger.RecordID(rec.Get(t.PrimaryKey)))
	return nil
}

func (s *Store) Related(ctx context.Context, rel model.ManyToMany, ownerID any) ([]*model.Record, error) {
	t, err := s.Table(ctx, rel.Target)
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf("SELECT t.* FROM %s t JOIN %s j ON j.%s = t.%s WHERE j.%s = $1",
		s.ident(rel.Target), s.ident(rel.JoinTable),
		quote(rel.TargetColumn), quote(rel.TargetKey), quote(rel.OwnerColumn))
	rows, err := s.db.Query(ctx, sql, ownerID)
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}

	out := make([]*model.Record, len(found))
	for i, row := range found {
		out[i] = &model.Record{Table: rel.Target, Values: normalizeRow(ctx, t, row)}
	}
	return out, nil
}

// SetRelated replaces the join rows of ownerID in one batch. Callers wanting
// atomicity run it inside Transaction.
func (s *Store) SetRelated(ctx context.Context, rel model.ManyToMany, ownerID any, targetIDs []any) error {
	join := s.ident(rel.JoinTable)

	b := &pgx.Batch{}
	b.Queue(fmt.Sprintf("DELETE FROM %s WHERE %s = $1", join, quote(rel.OwnerColumn)), ownerID)
	insert := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES ($1, $2)", join, quote(rel.OwnerColumn), quote(rel.TargetColumn))
	for _, id := range targetIDs {
		b.Queue(insert, ownerID, id)
	}

	if err := s.db.SendBatch(ctx, b).Close(); err != nil {
		return wrapWriteError(err)
	}
	return nil
}

// Transaction runs fn in a database transaction, or in a savepoint when the
// store is already bound to one.
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context, tx model.Store) error) error {
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		return fn(ctx, &Store{db: tx, meta: s.meta, logger: s.logger})
	})
	if err != nil {
		s.logger.WarnContext(ctx, "transaction rolled back", logger.Error(err))
	}
	return err
}

func (s *Store) column(ctx context.Context, table, column string) (*model.Table, model.Column, error) {
	t, err := s.Table(ctx, table)
	if err != nil {
		return nil, model.Column{}, err
	}
	col, ok := t.Column(column)
	if !ok {
		return nil, model.Column{}, fmt.Errorf("%w: %s.%s", model.ErrUnknownColumn, table, column)
	}
	return t, col, nil
}

func (s *Store) queryRow(ctx context.Context, sql string, args ...any) (map[string]any, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectOneRow(rows, pgx.RowToMap)
}

func (s *Store) ident(table string) string {
	return pgx.Identifier{s.meta.schema, table}.Sanitize()
}

func quote(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

