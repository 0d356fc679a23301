package gormstore

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/schema"

	"github.com/outcome-co/validates/pkg/model"
)

var (
	decimalType = reflect.TypeFor[decimal.Decimal]()
	uuidType    = reflect.TypeFor[uuid.UUID]()
)

// tableOf derives table metadata from a parsed gorm schema.
//
// Columns are nullable unless tagged `not null`. Choices come from a
// `choices:"a,b"` struct tag. Single column unique indexes mark the column
// unique; every other index is kept as is. Belongs-to associations become
// foreign keys and many2many associations become many-to-many relations
// validated under the snake_cased field name.
func tableOf(sch *schema.Schema, namer schema.Namer) (*model.Table, error) {
	t := &model.Table{Name: sch.Table}
	if pk := sch.PrioritizedPrimaryField; pk != nil {
		t.PrimaryKey = pk.DBName
	}

	for _, name := range sch.DBNames {
		t.Columns = append(t.Columns, columnOf(sch.FieldsByDBName[name]))
	}

	for _, rel := range sch.Relationships.BelongsTo {
		for _, ref := range rel.References {
			if ref.ForeignKey == nil || ref.PrimaryKey == nil {
				continue
			}
			setColumn(t, ref.ForeignKey.DBName, func(c *model.Column) {
				c.References = &model.ForeignKey{Table: rel.FieldSchema.Table, Column: ref.PrimaryKey.DBName}
			})
		}
	}

	for _, idx := range sch.ParseIndexes() {
		unique := strings.EqualFold(idx.Class, "UNIQUE")
		cols := make([]string, 0, len(idx.Fields))
		for _, opt := range idx.Fields {
			if opt.Field != nil {
				cols = append(cols, opt.Field.DBName)
			}
		}
		if unique && len(cols) == 1 {
			setColumn(t, cols[0], func(c *model.Column) { c.Unique = true })
			continue
		}
		t.Indexes = append(t.Indexes, model.Index{Name: idx.Name, Columns: cols, Unique: unique})
	}

	for _, rel := range sch.Relationships.Many2Many {
		m2m, err := relationOf(rel, namer)
		if err != nil {
			return nil, err
		}
		t.ManyToMany = append(t.ManyToMany, m2m)
	}
	return t, nil
}

func relationOf(rel *schema.Relationship, namer schema.Namer) (model.ManyToMany, error) {
	if rel.JoinTable == nil || rel.FieldSchema == nil {
		return model.ManyToMany{}, fmt.Errorf("%w: %s.%s has no join table", ErrInvalidModel, rel.Schema.Name, rel.Name)
	}

	m2m := model.ManyToMany{
		Name:      namer.ColumnName("", rel.Name),
		Target:    rel.FieldSchema.Table,
		JoinTable: rel.JoinTable.Table,
	}
	for _, ref := range rel.References {
		if ref.ForeignKey == nil || ref.PrimaryKey == nil {
			continue
		}
		if ref.OwnPrimaryKey {
			m2m.OwnerColumn = ref.ForeignKey.DBName
		} else {
			m2m.TargetColumn = ref.ForeignKey.DBName
			m2m.TargetKey = ref.PrimaryKey.DBName
		}
	}
	if m2m.OwnerColumn == "" || m2m.TargetColumn == "" {
		return model.ManyToMany{}, fmt.Errorf("%w: %s.%s has composite join keys", ErrInvalidModel, rel.Schema.Name, rel.Name)
	}
	return m2m, nil
}

func columnOf(f *schema.Field) model.Column {
	col := model.Column{
		Name:       f.DBName,
		PrimaryKey: f.PrimaryKey,
		Nullable:   !f.NotNull && !f.PrimaryKey,
		Unique:     f.Unique,
		Generated:  f.AutoIncrement || f.AutoCreateTime > 0 || f.AutoUpdateTime > 0,
	}
	col.Type, col.ElemType = columnType(f)

	if f.HasDefaultValue && !col.Generated {
		switch {
		case f.DefaultValueInterface != nil:
			col.HasDefault = true
			col.Default = f.DefaultValueInterface
		case isExpression(f.DefaultValue):
			col.Generated = true
		case f.DefaultValue != "" && !strings.EqualFold(f.DefaultValue, "null"):
			col.HasDefault = true
			col.Default = strings.Trim(f.DefaultValue, `'"`)
		}
	}

	if col.Type == model.ColumnText && f.Size > 0 {
		col.MaxLength = f.Size
	}
	if choices := f.Tag.Get("choices"); choices != "" {
		for _, c := range strings.Split(choices, ",") {
			col.Choices = append(col.Choices, strings.TrimSpace(c))
		}
	}
	return col
}

func columnType(f *schema.Field) (model.ColumnType, model.ColumnType) {
	typ := f.IndirectFieldType
	switch {
	case typ == decimalType:
		return model.ColumnDecimal, ""
	case typ == uuidType:
		return model.ColumnUUID, ""
	case f.Serializer != nil:
		return serializedType(typ)
	}

	switch f.DataType {
	case schema.Bool:
		return model.ColumnBoolean, ""
	case schema.Int, schema.Uint:
		return model.ColumnInteger, ""
	case schema.Float:
		return model.ColumnFloat, ""
	case schema.String:
		return model.ColumnText, ""
	case schema.Bytes:
		return model.ColumnBinary, ""
	case schema.Time:
		switch strings.ToLower(f.TagSettings["TYPE"]) {
		case "date":
			return model.ColumnDate, ""
		case "time":
			return model.ColumnTime, ""
		}
		return model.ColumnDateTime, ""
	}

	return serializedType(typ)
}

// serializedType maps fields gorm stores through a serializer or a custom
// Valuer: flat slices become arrays, string maps become maps and the rest is
// treated as JSON.
func serializedType(typ reflect.Type) (model.ColumnType, model.ColumnType) {
	switch typ.Kind() {
	case reflect.Slice:
		if elem := kindType(typ.Elem()); elem != "" {
			return model.ColumnArray, elem
		}
	case reflect.Map:
		if typ.Key().Kind() == reflect.String && typ.Elem().Kind() == reflect.String {
			return model.ColumnMap, ""
		}
	}
	return model.ColumnJSON, ""
}

func kindType(typ reflect.Type) model.ColumnType {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	switch typ {
	case decimalType:
		return model.ColumnDecimal
	case uuidType:
		return model.ColumnUUID
	}
	switch typ.Kind() {
	case reflect.Bool:
		return model.ColumnBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return model.ColumnInteger
	case reflect.Float32, reflect.Float64:
		return model.ColumnFloat
	case reflect.String:
		return model.ColumnText
	}
	return ""
}

// isExpression reports defaults the database evaluates on insert.
func isExpression(def string) bool {
	if strings.Contains(def, "(") && strings.Contains(def, ")") {
		return true
	}
	switch strings.ToUpper(def) {
	case "CURRENT_TIMESTAMP", "CURRENT_DATE", "CURRENT_TIME":
		return true
	}
	return false
}

func setColumn(t *model.Table, name string, fn func(*model.Column)) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			fn(&t.Columns[i])
			return
		}
	}
}
