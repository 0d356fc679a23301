package model

import (
	"slices"

	"github.com/outcome-co/validates/pkg/validator"
)

// ColumnType is the storage type of a column.
type ColumnType string

const (
	ColumnText     ColumnType = "text"
	ColumnInteger  ColumnType = "integer"
	ColumnFloat    ColumnType = "float"
	ColumnDecimal  ColumnType = "decimal"
	ColumnBoolean  ColumnType = "boolean"
	ColumnDate     ColumnType = "date"
	ColumnTime     ColumnType = "time"
	ColumnDateTime ColumnType = "datetime"
	ColumnUUID     ColumnType = "uuid"
	ColumnArray    ColumnType = "array"
	ColumnJSON     ColumnType = "json"
	ColumnMap      ColumnType = "map"
	ColumnBinary   ColumnType = "binary"
)

// ForeignKey points a column at a column of another table. Both fields are
// required; stores fill Column with the target's primary key when the
// constraint does not name one.
type ForeignKey struct {
	Table  string
	Column string
}

// Column describes one stored column.
type Column struct {
	Name     string
	Type     ColumnType
	ElemType ColumnType // element type of array columns

	Nullable   bool
	PrimaryKey bool
	// Generated columns get their value from the database (sequences,
	// expression defaults) and are never required.
	Generated bool
	Unique    bool

	HasDefault bool
	// Default is a literal, or a func() any evaluated per validation.
	Default any

	MaxLength  int
	Choices    []any
	References *ForeignKey
}

// ManyToMany describes an association stored in a join table.
type ManyToMany struct {
	// Name is the field name the association is validated under.
	Name      string
	Target    string
	TargetKey string

	JoinTable    string
	OwnerColumn  string
	TargetColumn string
}

// Index is a (possibly composite) index over columns of one table.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// Table is the metadata a Store exposes for one table. Tables returned by a
// Store are shared and must be treated as read-only.
type Table struct {
	Name       string
	PrimaryKey string
	Columns    []Column
	Indexes    []Index
	ManyToMany []ManyToMany
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	i := slices.IndexFunc(t.Columns, func(c Column) bool { return c.Name == name })
	if i < 0 {
		return Column{}, false
	}
	return t.Columns[i], true
}

// Relation returns the many-to-many association validated under name.
func (t *Table) Relation(name string) (ManyToMany, bool) {
	i := slices.IndexFunc(t.ManyToMany, func(r ManyToMany) bool { return r.Name == name })
	if i < 0 {
		return ManyToMany{}, false
	}
	return t.ManyToMany[i], true
}

// FieldType maps a column to the validator type that coerces its values.
// Foreign keys are mapped by their own storage type; Define turns them into
// reference fields.
func FieldType(col Column) validator.Type {
	return typeOf(col.Type, col.ElemType)
}

func typeOf(t, elem ColumnType) validator.Type {
	switch t {
	case ColumnText:
		return validator.StringType{}
	case ColumnInteger:
		return validator.IntegerType{}
	case ColumnFloat:
		return validator.FloatType{}
	case ColumnDecimal:
		return validator.DecimalType{}
	case ColumnBoolean:
		return validator.BooleanType{}
	case ColumnDate:
		return validator.DateType{}
	case ColumnTime:
		return validator.TimeType{}
	case ColumnDateTime:
		return validator.DateTimeType{}
	case ColumnUUID:
		return validator.UUIDType{}
	case ColumnArray:
		if elem == "" || elem == ColumnArray {
			return validator.ListType{}
		}
		return validator.ListType{Elem: typeOf(elem, "")}
	case ColumnMap:
		return validator.MapType{}
	default:
		return validator.RawType{}
	}
}
