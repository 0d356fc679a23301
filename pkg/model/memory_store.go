package model

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore implements Store in memory. Values are normalized through the
// column types on write, so lookups compare native values.
type MemoryStore struct {
	mu     sync.RWMutex
	txMu   sync.Mutex
	tables map[string]*Table
	rows   map[string][]map[string]any
	links  map[string][]map[string]any
	seq    map[string]int64
}

// NewMemoryStore creates a store holding the given tables.
func NewMemoryStore(tables ...*Table) *MemoryStore {
	m := &MemoryStore{
		tables: make(map[string]*Table, len(tables)),
		rows:   make(map[string][]map[string]any),
		links:  make(map[string][]map[string]any),
		seq:    make(map[string]int64),
	}
	for _, t := range tables {
		m.tables[t.Name] = t
	}
	return m
}

func (m *MemoryStore) Table(_ context.Context, name string) (*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	return t, nil
}

func (m *MemoryStore) Find(ctx context.Context, table, column string, value any) (*Record, error) {
	t, err := m.Table(ctx, table)
	if err != nil {
		return nil, err
	}
	col, ok := t.Column(column)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, column)
	}
	value = normalize(ctx, col, value)

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, row := range m.rows[table] {
		if reflect.DeepEqual(row[column], value) {
			return &Record{Table: table, Values: maps.Clone(row)}, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) Exists(ctx context.Context, table string, match map[string]any, excludeID any) (bool, error) {
	t, err := m.Table(ctx, table)
	if err != nil {
		return false, err
	}

	want := make(map[string]any, len(match))
	for name, v := range match {
		col, ok := t.Column(name)
		if !ok {
			return false, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, name)
		}
		want[name] = normalize(ctx, col, v)
	}
	if excludeID != nil {
		pk, _ := t.Column(t.PrimaryKey)
		excludeID = normalize(ctx, pk, excludeID)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, row := range m.rows[table] {
		if excludeID != nil && reflect.DeepEqual(row[t.PrimaryKey], excludeID) {
			continue
		}
		matched := true
		for name, v := range want {
			if !reflect.DeepEqual(row[name], v) {
				matched = false
				break
			}
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) Save(ctx context.Context, rec *Record) error {
	if rec == nil {
		return ErrInvalidRecord
	}
	t, err := m.Table(ctx, rec.Table)
	if err != nil {
		return err
	}

	row := make(map[string]any, len(t.Columns))
	for _, col := range t.Columns {
		if v, ok := rec.Values[col.Name]; ok {
			row[col.Name] = normalize(ctx, col, v)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if row[t.PrimaryKey] == nil {
		pk, _ := t.Column(t.PrimaryKey)
		if pk.Type == ColumnUUID {
			row[t.PrimaryKey] = uuid.New()
		} else {
			m.seq[t.Name]++
			row[t.PrimaryKey] = m.seq[t.Name]
		}
	} else if n, ok := row[t.PrimaryKey].(int64); ok && n > m.seq[t.Name] {
		m.seq[t.Name] = n
	}

	rows := m.rows[t.Name]
	i := slices.IndexFunc(rows, func(r map[string]any) bool {
		return reflect.DeepEqual(r[t.PrimaryKey], row[t.PrimaryKey])
	})
	if i >= 0 {
		merged := maps.Clone(rows[i])
		maps.Copy(merged, row)
		rows[i] = merged
		row = merged
	} else {
		m.rows[t.Name] = append(rows, row)
	}

	rec.Values = maps.Clone(row)
	return nil
}

func (m *MemoryStore) Related(ctx context.Context, rel ManyToMany, ownerID any) ([]*Record, error) {
	m.mu.RLock()
	var ids []any
	for _, link := range m.links[rel.JoinTable] {
		if reflect.DeepEqual(link[rel.OwnerColumn], ownerID) {
			ids = append(ids, link[rel.TargetColumn])
		}
	}
	m.mu.RUnlock()

	out := make([]*Record, 0, len(ids))
	for _, id := range ids {
		rec, err := m.Find(ctx, rel.Target, rel.TargetKey, id)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (m *MemoryStore) SetRelated(_ context.Context, rel ManyToMany, ownerID any, targetIDs []any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	links := slices.DeleteFunc(slices.Clone(m.links[rel.JoinTable]), func(link map[string]any) bool {
		return reflect.DeepEqual(link[rel.OwnerColumn], ownerID)
	})
	for _, id := range targetIDs {
		links = append(links, map[string]any{rel.OwnerColumn: ownerID, rel.TargetColumn: id})
	}
	m.links[rel.JoinTable] = links
	return nil
}

// Transaction runs fn with the store itself and restores the previous
// contents when fn fails. Transactions are serialized.
func (m *MemoryStore) Transaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.RLock()
	rows := make(map[string][]map[string]any, len(m.rows))
	for name, tableRows := range m.rows {
		copied := make([]map[string]any, len(tableRows))
		for i, r := range tableRows {
			copied[i] = maps.Clone(r)
		}
		rows[name] = copied
	}
	links := make(map[string][]map[string]any, len(m.links))
	for name, l := range m.links {
		links[name] = slices.Clone(l)
	}
	seq := maps.Clone(m.seq)
	m.mu.RUnlock()

	if err := fn(ctx, m); err != nil {
		m.mu.Lock()
		m.rows, m.links, m.seq = rows, links, seq
		m.mu.Unlock()
		return err
	}
	return nil
}

// normalize coerces v with the column type, keeping v when it does not coerce.
func normalize(ctx context.Context, col Column, v any) any {
	if v == nil {
		return nil
	}
	out, err := FieldType(col).Coerce(ctx, v)
	if err != nil {
		return v
	}
	return out
}
