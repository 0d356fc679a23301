package model_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/outcome-co/validates/pkg/model"
)

func idColumn() model.Column {
	return model.Column{Name: "id", Type: model.ColumnInteger, PrimaryKey: true, Generated: true}
}

var (
	organizationTable = &model.Table{
		Name:       "organization",
		PrimaryKey: "id",
		Columns: []model.Column{
			idColumn(),
			{Name: "name", Type: model.ColumnText},
		},
	}

	payGradeTable = &model.Table{
		Name:       "pay_grade",
		PrimaryKey: "id",
		Columns: []model.Column{
			idColumn(),
			{Name: "name", Type: model.ColumnText},
		},
	}

	personTable = &model.Table{
		Name:       "person",
		PrimaryKey: "id",
		Columns: []model.Column{
			idColumn(),
			{Name: "name", Type: model.ColumnText, MaxLength: 5, Unique: true},
		},
	}

	complexPersonTable = &model.Table{
		Name:       "complex_person",
		PrimaryKey: "id",
		Columns: []model.Column{
			idColumn(),
			{Name: "name", Type: model.ColumnText, MaxLength: 5, Unique: true},
			{Name: "gender", Type: model.ColumnText, MaxLength: 1, Choices: []any{"M", "F"}},
			{Name: "organization", Type: model.ColumnInteger, References: &model.ForeignKey{Table: "organization", Column: "id"}},
			{Name: "pay_grade", Type: model.ColumnInteger, Nullable: true, References: &model.ForeignKey{Table: "pay_grade", Column: "id"}},
		},
		Indexes: []model.Index{
			{Name: "complex_person_gender_name", Columns: []string{"gender", "name"}, Unique: true},
			{Name: "complex_person_name_organization", Columns: []string{"name", "organization"}, Unique: true},
		},
	}

	basicFieldsTable = &model.Table{
		Name:       "basic_fields",
		PrimaryKey: "id",
		Columns: []model.Column{
			idColumn(),
			{Name: "field1", Type: model.ColumnText, HasDefault: true, Default: func() any { return "Tim" }},
			{Name: "field2", Type: model.ColumnText},
			{Name: "field3", Type: model.ColumnText},
		},
		Indexes: []model.Index{
			{Name: "basic_fields_field1_field2", Columns: []string{"field1", "field2"}, Unique: true},
			{Name: "basic_fields_field3", Columns: []string{"field3"}},
		},
	}

	studentTable = &model.Table{
		Name:       "student",
		PrimaryKey: "id",
		Columns: []model.Column{
			idColumn(),
			{Name: "name", Type: model.ColumnText, MaxLength: 10},
		},
		ManyToMany: []model.ManyToMany{{
			Name: "courses", Target: "course", TargetKey: "id",
			JoinTable: "course_students", OwnerColumn: "student_id", TargetColumn: "course_id",
		}},
	}

	courseTable = &model.Table{
		Name:       "course",
		PrimaryKey: "id",
		Columns: []model.Column{
			idColumn(),
			{Name: "name", Type: model.ColumnText, MaxLength: 10},
		},
		ManyToMany: []model.ManyToMany{{
			Name: "students", Target: "student", TargetKey: "id",
			JoinTable: "course_students", OwnerColumn: "course_id", TargetColumn: "student_id",
		}},
	}

	arrayTable = &model.Table{
		Name:       "array_model",
		PrimaryKey: "id",
		Columns: []model.Column{
			idColumn(),
			{Name: "items", Type: model.ColumnArray, ElemType: model.ColumnInteger},
		},
	}

	jsonTable = &model.Table{
		Name:       "json_model",
		PrimaryKey: "id",
		Columns: []model.Column{
			idColumn(),
			{Name: "doc", Type: model.ColumnJSON},
		},
	}

	mappingTable = &model.Table{
		Name:       "mapping_model",
		PrimaryKey: "id",
		Columns: []model.Column{
			idColumn(),
			{Name: "mapping", Type: model.ColumnMap},
		},
	}
)

// newStore returns a store holding every fixture table with the "main"
// organization stored under id 1.
func newStore(t *testing.T) *model.MemoryStore {
	t.Helper()

	store := model.NewMemoryStore(
		organizationTable, payGradeTable, personTable, complexPersonTable,
		basicFieldsTable, studentTable, courseTable,
		arrayTable, jsonTable, mappingTable,
	)
	create(t, store, "organization", map[string]any{"name": "main"})
	return store
}

func create(t *testing.T, store model.Store, table string, values map[string]any) *model.Record {
	t.Helper()

	rec := model.NewRecord(table, values)
	require.NoError(t, store.Save(context.Background(), rec))
	return rec
}

func bind(t *testing.T, store model.Store, rec *model.Record) *model.Validator {
	t.Helper()

	v, err := model.NewValidator(context.Background(), store, rec)
	require.NoError(t, err)
	return v
}

func validate(t *testing.T, v *model.Validator, input map[string]any) bool {
	t.Helper()

	ok, err := v.Validate(context.Background(), input)
	require.NoError(t, err)
	return ok
}
