package pg

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/outcome-co/validates/pkg/model"
)

const columnsQuery = `
SELECT c.column_name::text AS name,
       c.data_type::text AS data_type,
       c.udt_name::text AS udt_name,
       c.is_nullable = 'YES' AS nullable,
       c.column_default::text AS default_expr,
       c.is_identity = 'YES' AS identity,
       c.is_generated <> 'NEVER' AS generated,
       c.character_maximum_length::int4 AS max_length,
       COALESCE((
           SELECT array_agg(e.enumlabel::text ORDER BY e.enumsortorder)
             FROM pg_type t
             JOIN pg_namespace tn ON tn.oid = t.typnamespace
             JOIN pg_enum e ON e.enumtypid = t.oid
            WHERE t.typname = c.udt_name AND tn.nspname = c.udt_schema
       ), '{}'::text[]) AS enum_labels
  FROM information_schema.columns c
 WHERE c.table_schema = $1 AND c.table_name = $2
 ORDER BY c.ordinal_position`

const indexesQuery = `
SELECT i.relname::text AS name,
       ix.indisunique AS is_unique,
       ix.indisprimary AS is_primary,
       array_agg(a.attname::text ORDER BY k.ord) AS columns
  FROM pg_index ix
  JOIN pg_class t ON t.oid = ix.indrelid
  JOIN pg_class i ON i.oid = ix.indexrelid
  JOIN pg_namespace n ON n.oid = t.relnamespace
 CROSS JOIN LATERAL unnest(ix.indkey::int2[]) WITH ORDINALITY AS k(attnum, ord)
  JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
 WHERE n.nspname = $1 AND t.relname = $2
 GROUP BY i.relname, ix.indisunique, ix.indisprimary
 ORDER BY i.relname`

const foreignKeysQuery = `
SELECT a.attname::text AS column_name,
       ft.relname::text AS target_table,
       fa.attname::text AS target_column
  FROM pg_constraint c
  JOIN pg_class t ON t.oid = c.conrelid
  JOIN pg_namespace n ON n.oid = t.relnamespace
  JOIN pg_class ft ON ft.oid = c.confrelid
  JOIN pg_attribute a ON a.attrelid = c.conrelid AND a.attnum = c.conkey[1]
  JOIN pg_attribute fa ON fa.attrelid = c.confrelid AND fa.attnum = c.confkey[1]
 WHERE c.contype = 'f' AND n.nspname = $1 AND t.relname = $2
   AND array_length(c.conkey, 1) = 1`

type columnInfo struct {
	Name       string   `db:"name"`
	DataType   string   `db:"data_type"`
	UDTName    string   `db:"udt_name"`
	Nullable   bool     `db:"nullable"`
	Default    *string  `db:"default_expr"`
	Identity   bool     `db:"identity"`
	Generated  bool     `db:"generated"`
	MaxLength  *int32   `db:"max_length"`
	EnumLabels []string `db:"enum_labels"`
}

type indexInfo struct {
	Name    string   `db:"name"`
	Unique  bool     `db:"is_unique"`
	Primary bool     `db:"is_primary"`
	Columns []string `db:"columns"`
}

type foreignKeyInfo struct {
	Column       string `db:"column_name"`
	TargetTable  string `db:"target_table"`
	TargetColumn string `db:"target_column"`
}

// introspect builds table metadata from the catalog. Single-column unique
// indexes mark their column unique; composite primary keys are kept as
// unique indexes and leave PrimaryKey empty.
func (s *Store) introspect(ctx context.Context, name string) (*model.Table, error) {
	columns, err := queryAll[columnInfo](ctx, s.db, columnsQuery, s.meta.schema, name)
	if err != nil {
		return nil, errors.Join(ErrIntrospectionFailed, err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %s.%s", model.ErrUnknownTable, s.meta.schema, name)
	}

	t := &model.Table{Name: name, Columns: make([]model.Column, 0, len(columns))}
	for _, info := range columns {
		t.Columns = append(t.Columns, columnFromInfo(info))
	}

	indexes, err := queryAll[indexInfo](ctx, s.db, indexesQuery, s.meta.schema, name)
	if err != nil {
		return nil, errors.Join(ErrIntrospectionFailed, err)
	}
	for _, idx := range indexes {
		switch {
		case idx.Primary && len(idx.Columns) == 1:
			t.PrimaryKey = idx.Columns[0]
			setColumn(t, t.PrimaryKey, func(c *model.Column) { c.PrimaryKey = true })
		case idx.Unique && len(idx.Columns) == 1:
			setColumn(t, idx.Columns[0], func(c *model.Column) { c.Unique = true })
		default:
			t.Indexes = append(t.Indexes, model.Index{Name: idx.Name, Columns: idx.Columns, Unique: idx.Unique})
		}
	}

	fks, err := queryAll[foreignKeyInfo](ctx, s.db, foreignKeysQuery, s.meta.schema, name)
	if err != nil {
		return nil, errors.Join(ErrIntrospectionFailed, err)
	}
	for _, fk := range fks {
		setColumn(t, fk.Column, func(c *model.Column) {
			c.References = &model.ForeignKey{Table: fk.TargetTable, Column: fk.TargetColumn}
		})
	}

	for _, rel := range s.meta.relations[name] {
		if rel.TargetKey == "" {
			if rel.TargetKey, err = s.primaryKey(ctx, rel.Target); err != nil {
				return nil, err
			}
		}
		t.ManyToMany = append(t.ManyToMany, rel)
	}

	return t, nil
}

func (s *Store) primaryKey(ctx context.Context, table string) (string, error) {
	indexes, err := queryAll[indexInfo](ctx, s.db, indexesQuery, s.meta.schema, table)
	if err != nil {
		return "", errors.Join(ErrIntrospectionFailed, err)
	}
	for _, idx := range indexes {
		if idx.Primary && len(idx.Columns) == 1 {
			return idx.Columns[0], nil
		}
	}
	return "", fmt.Errorf("%w: no single-column primary key on %s", ErrIntrospectionFailed, table)
}

func queryAll[T any](ctx context.Context, db DB, sql string, args ...any) ([]T, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[T])
}

func setColumn(t *model.Table, name string, fn func(*model.Column)) {
	if i := slices.IndexFunc(t.Columns, func(c model.Column) bool { return c.Name == name }); i >= 0 {
		fn(&t.Columns[i])
	}
}

func columnFromInfo(info columnInfo) model.Column {
	col := model.Column{
		Name:      info.Name,
		Nullable:  info.Nullable,
		Generated: info.Identity || info.Generated,
	}
	col.Type, col.ElemType = columnType(info.DataType, info.UDTName)
	if len(info.EnumLabels) > 0 {
		col.Type = model.ColumnText
		col.Choices = make([]any, len(info.EnumLabels))
		for i, label := range info.EnumLabels {
			col.Choices[i] = label
		}
	}
	if info.MaxLength != nil {
		col.MaxLength = int(*info.MaxLength)
	}

	if info.Default != nil {
		switch value, kind := parseDefault(*info.Default); kind {
		case defaultLiteral:
			col.HasDefault = true
			col.Default = value
		case defaultExpression:
			col.Generated = true
		}
	}
	return col
}

func columnType(dataType, udt string) (model.ColumnType, model.ColumnType) {
	if dataType == "ARRAY" {
		return model.ColumnArray, udtType(strings.TrimPrefix(udt, "_"))
	}
	return udtType(udt), ""
}

// udtType maps a catalog type name. Unmapped types are validated as raw values.
func udtType(udt string) model.ColumnType {
	switch udt {
	case "text", "varchar", "bpchar", "citext", "name":
		return model.ColumnText
	case "int2", "int4", "int8":
		return model.ColumnInteger
	case "float4", "float8":
		return model.ColumnFloat
	case "numeric":
		return model.ColumnDecimal
	case "bool":
		return model.ColumnBoolean
	case "date":
		return model.ColumnDate
	case "time", "timetz":
		return model.ColumnTime
	case "timestamp", "timestamptz":
		return model.ColumnDateTime
	case "uuid":
		return model.ColumnUUID
	case "json", "jsonb":
		return model.ColumnJSON
	case "hstore":
		return model.ColumnMap
	case "bytea":
		return model.ColumnBinary
	default:
		return model.ColumnType(udt)
	}
}

type defaultKind int

const (
	defaultNone defaultKind = iota
	defaultLiteral
	defaultExpression
)

var (
	castSuffix     = regexp.MustCompile(`::[\w\s\[\]".]+$`)
	numericLiteral = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
)

// parseDefault classifies a column_default expression. Literals are returned
// as text (or bool) and coerced by the field like any input; anything else
// (sequences, function calls) is computed by the database.
func parseDefault(expr string) (any, defaultKind) {
	e := strings.TrimSpace(expr)
	for {
		trimmed := castSuffix.ReplaceAllString(e, "")
		if trimmed == e {
			break
		}
		e = strings.TrimSpace(trimmed)
	}
	if strings.HasPrefix(e, "(") && strings.HasSuffix(e, ")") {
		e = strings.TrimSpace(e[1 : len(e)-1])
	}

	switch {
	case e == "" || strings.EqualFold(e, "null"):
		return nil, defaultNone
	case len(e) >= 2 && e[0] == '\'' && e[len(e)-1] == '\'':
		return strings.ReplaceAll(e[1:len(e)-1], "''", "'"), defaultLiteral
	case numericLiteral.MatchString(e):
		return e, defaultLiteral
	case strings.EqualFold(e, "true"):
		return true, defaultLiteral
	case strings.EqualFold(e, "false"):
		return false, defaultLiteral
	default:
		return nil, defaultExpression
	}
}
