package model

import "maps"

// Record is one row of a table. A record whose primary key value is nil has
// not been stored yet.
type Record struct {
	Table  string
	Values map[string]any
}

func NewRecord(table string, values map[string]any) *Record {
	if values == nil {
		values = make(map[string]any)
	}
	return &Record{Table: table, Values: values}
}

func (r *Record) Get(column string) any {
	if r == nil {
		return nil
	}
	return r.Values[column]
}

func (r *Record) Set(column string, value any) {
	if r.Values == nil {
		r.Values = make(map[string]any)
	}
	r.Values[column] = value
}

// Clone returns a copy with its own value map.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	return &Record{Table: r.Table, Values: maps.Clone(r.Values)}
}
