package gormstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"github.com/outcome-co/validates/pkg/gormstore"
	"github.com/outcome-co/validates/pkg/model"
	"github.com/outcome-co/validates/pkg/validator"
)

type Organization struct {
	ID   uint
	Name string `gorm:"size:100;not null"`
}

type PayGrade struct {
	ID   uint
	Name string `gorm:"size:100;not null"`
}

type ComplexPerson struct {
	ID             uint
	Name           string `gorm:"size:5;not null;unique;uniqueIndex:idx_gender_name,priority:2;uniqueIndex:idx_name_org,priority:1"`
	Gender         string `gorm:"size:1;not null;uniqueIndex:idx_gender_name,priority:1" choices:"M,F"`
	OrganizationID uint   `gorm:"not null;uniqueIndex:idx_name_org,priority:2"`
	Organization   *Organization
	PayGradeID     *uint
	PayGrade       *PayGrade
}

type BasicFields struct {
	ID     uint
	Field1 string `gorm:"size:100;not null;default:Tim;uniqueIndex:idx_field1_field2"`
	Field2 string `gorm:"size:100;not null;uniqueIndex:idx_field1_field2"`
	Field3 string `gorm:"size:100;not null;index"`
}

type Student struct {
	ID      uint
	Name    string   `gorm:"size:10;not null"`
	Courses []Course `gorm:"many2many:course_students"`
}

type Course struct {
	ID       uint
	Name     string    `gorm:"size:10;not null"`
	Students []Student `gorm:"many2many:course_students"`
}

type Measurement struct {
	ID       uint
	Token    uuid.UUID         `gorm:"type:uuid;not null"`
	Readings []int64           `gorm:"serializer:json;not null"`
	Labels   map[string]string `gorm:"serializer:json"`
	Doc      map[string]any    `gorm:"serializer:json"`
	Amount   decimal.Decimal   `gorm:"type:decimal(10,2);not null;default:0"`
	TakenAt  time.Time         `gorm:"autoCreateTime"`
}

func models() []any {
	return []any{
		&Organization{}, &PayGrade{}, &ComplexPerson{}, &BasicFields{},
		&Student{}, &Course{}, &Measurement{},
	}
}

// newStore opens a private in-memory database holding every model, with the
// "main" organization stored under id 1.
func newStore(t *testing.T) *gormstore.Store {
	t.Helper()
	ctx := context.Background()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gormstore.Open(ctx, sqlite.Open(dsn), gormstore.Config{
		LogLevel:      "silent",
		SingularTable: true,
		MaxOpenConns:  1,
		MaxIdleConns:  1,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	require.NoError(t, db.AutoMigrate(models()...))
	store, err := gormstore.New(db, models())
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, model.NewRecord("organization", map[string]any{"name": "main"})))
	return store
}

func bind(t *testing.T, store model.Store, table string, values map[string]any) *model.Validator {
	t.Helper()

	v, err := model.NewValidator(context.Background(), store, model.NewRecord(table, values))
	require.NoError(t, err)
	return v
}

func TestNew(t *testing.T) {
	db, err := gormstore.Open(context.Background(), sqlite.Open("file:"+uuid.NewString()+"?mode=memory"), gormstore.Config{
		LogLevel:      "silent",
		SingularTable: true,
	}, nil)
	require.NoError(t, err)

	t.Run("referenced models must be registered", func(t *testing.T) {
		_, err := gormstore.New(db, []any{&ComplexPerson{}})
		assert.ErrorIs(t, err, gormstore.ErrInvalidModel)
	})

	t.Run("values that are not models are rejected", func(t *testing.T) {
		_, err := gormstore.New(db, []any{42})
		assert.ErrorIs(t, err, gormstore.ErrInvalidModel)
	})
}

func TestOpen_InvalidLogLevel(t *testing.T) {
	_, err := gormstore.Open(context.Background(), sqlite.Open("file::memory:"), gormstore.Config{LogLevel: "loud"}, nil)
	assert.ErrorIs(t, err, gormstore.ErrInvalidLogLevel)
}

func TestStore_Table(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	table, err := store.Table(ctx, "complex_person")
	require.NoError(t, err)
	assert.Equal(t, "id", table.PrimaryKey)

	id, _ := table.Column("id")
	assert.True(t, id.PrimaryKey)
	assert.True(t, id.Generated)

	name, _ := table.Column("name")
	assert.Equal(t, model.ColumnText, name.Type)
	assert.Equal(t, 5, name.MaxLength)
	assert.True(t, name.Unique)
	assert.False(t, name.Nullable)

	gender, _ := table.Column("gender")
	assert.Equal(t, []any{"M", "F"}, gender.Choices)

	org, _ := table.Column("organization_id")
	require.NotNil(t, org.References)
	assert.Equal(t, model.ForeignKey{Table: "organization", Column: "id"}, *org.References)
	assert.False(t, org.Nullable)

	payGrade, _ := table.Column("pay_grade_id")
	require.NotNil(t, payGrade.References)
	assert.True(t, payGrade.Nullable)

	require.Len(t, table.Indexes, 2)
	for _, idx := range table.Indexes {
		assert.True(t, idx.Unique)
		assert.Len(t, idx.Columns, 2)
	}

	t.Run("defaults and plain indexes", func(t *testing.T) {
		table, err := store.Table(ctx, "basic_fields")
		require.NoError(t, err)

		field1, _ := table.Column("field1")
		assert.True(t, field1.HasDefault)
		assert.Equal(t, "Tim", field1.Default)

		var plain *model.Index
		for i := range table.Indexes {
			if !table.Indexes[i].Unique {
				plain = &table.Indexes[i]
			}
		}
		require.NotNil(t, plain)
		assert.Equal(t, []string{"field3"}, plain.Columns)
	})

	t.Run("many2many associations", func(t *testing.T) {
		table, err := store.Table(ctx, "student")
		require.NoError(t, err)

		rel, ok := table.Relation("courses")
		require.True(t, ok)
		assert.Equal(t, model.ManyToMany{
			Name: "courses", Target: "course", TargetKey: "id",
			JoinTable: "course_students", OwnerColumn: "student_id", TargetColumn: "course_id",
		}, rel)
	})

	t.Run("column types", func(t *testing.T) {
		table, err := store.Table(ctx, "measurement")
		require.NoError(t, err)

		types := map[string]model.ColumnType{
			"token":    model.ColumnUUID,
			"readings": model.ColumnArray,
			"labels":   model.ColumnMap,
			"doc":      model.ColumnJSON,
			"amount":   model.ColumnDecimal,
			"taken_at": model.ColumnDateTime,
		}
		for name, typ := range types {
			col, ok := table.Column(name)
			require.True(t, ok, name)
			assert.Equal(t, typ, col.Type, name)
		}

		readings, _ := table.Column("readings")
		assert.Equal(t, model.ColumnInteger, readings.ElemType)

		takenAt, _ := table.Column("taken_at")
		assert.True(t, takenAt.Generated)

		amount, _ := table.Column("amount")
		assert.True(t, amount.HasDefault)
	})

	t.Run("unknown tables", func(t *testing.T) {
		_, err := store.Table(ctx, "nope")
		assert.ErrorIs(t, err, model.ErrUnknownTable)
	})
}

func TestStore_FindAndExists(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	rec, err := store.Find(ctx, "organization", "id", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.Get("id"))
	assert.Equal(t, "main", rec.Get("name"))

	_, err = store.Find(ctx, "organization", "id", 999)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = store.Find(ctx, "organization", "missing", 1)
	assert.ErrorIs(t, err, model.ErrUnknownColumn)

	ok, err := store.Exists(ctx, "organization", map[string]any{"name": "main"}, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, "organization", map[string]any{"name": "main"}, int64(1))
	require.NoError(t, err)
	assert.False(t, ok, "the excluded row does not count")

	_, err = store.Exists(ctx, "organization", map[string]any{"missing": 1}, nil)
	assert.ErrorIs(t, err, model.ErrUnknownColumn)
}

func TestStore_ModelValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("related and required", func(t *testing.T) {
		store := newStore(t)
		v := bind(t, store, "complex_person", map[string]any{"name": "tim", "gender": "M"})

		ok, err := v.Validate(ctx, map[string]any{"organization_id": 999})
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, "Unable to find object with id = 999.", v.Errors()["organization_id"])

		ok, err = v.Validate(ctx, map[string]any{"organization_id": "1"})
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, v.Save(ctx))

		assert.Equal(t, int64(1), v.Record().Get("id"))
		assert.Equal(t, int64(1), v.Record().Get("organization_id"))
		assert.Nil(t, v.Record().Get("pay_grade_id"))
	})

	t.Run("choices", func(t *testing.T) {
		store := newStore(t)
		v := bind(t, store, "complex_person", map[string]any{"name": "tim", "organization_id": 1})

		ok, err := v.Validate(ctx, map[string]any{"gender": "X"})
		require.NoError(t, err)
		assert.False(t, ok)
		assert.True(t, v.Errors().Has("gender"))
	})

	t.Run("unique and composite indexes", func(t *testing.T) {
		store := newStore(t)
		first := bind(t, store, "complex_person", nil)
		ok, err := first.Validate(ctx, map[string]any{"name": "tim", "gender": "M", "organization_id": 1})
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, first.Save(ctx))

		v := bind(t, store, "complex_person", map[string]any{"name": "tim", "gender": "M", "organization_id": 1})
		ok, err = v.Validate(ctx, nil)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, validator.DefaultMessage(validator.CodeIndex), v.Errors()["gender"])
		assert.Equal(t, validator.DefaultMessage(validator.CodeIndex), v.Errors()["organization_id"])
		assert.True(t, v.Errors().Has("name"))

		t.Run("the stored row is not its own duplicate", func(t *testing.T) {
			ok, err := first.Validate(ctx, nil)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	})

	t.Run("defaults", func(t *testing.T) {
		store := newStore(t)
		v := bind(t, store, "basic_fields", nil)

		ok, err := v.Validate(ctx, map[string]any{"field2": "two"})
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, "Tim", v.Data()["field1"])
		assert.Equal(t, validator.DefaultMessage(validator.CodeRequired), v.Errors()["field3"])

		ok, err = v.Validate(ctx, map[string]any{"field2": "two", "field3": "three"})
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, v.Save(ctx))
		assert.Equal(t, "Tim", v.Record().Get("field1"))
	})

	t.Run("updates keep the key", func(t *testing.T) {
		store := newStore(t)
		v := bind(t, store, "organization", nil)
		ok, err := v.Validate(ctx, map[string]any{"name": "second"})
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, v.Save(ctx))
		id := v.Record().Get("id")
		assert.Equal(t, int64(2), id)

		ok, err = v.Validate(ctx, map[string]any{"name": "renamed"})
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, v.Save(ctx))
		assert.Equal(t, id, v.Record().Get("id"))

		rec, err := store.Find(ctx, "organization", "id", id)
		require.NoError(t, err)
		assert.Equal(t, "renamed", rec.Get("name"))
	})
}

func TestStore_ManyToMany(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	c1 := model.NewRecord("course", map[string]any{"name": "course1"})
	c2 := model.NewRecord("course", map[string]any{"name": "course2"})
	require.NoError(t, store.Save(ctx, c1))
	require.NoError(t, store.Save(ctx, c2))

	rec := model.NewRecord("student", map[string]any{"name": "tim"})
	v, err := model.NewValidator(ctx, store, rec)
	require.NoError(t, err)

	ok, err := v.Validate(ctx, map[string]any{"courses": []any{c1.Get("id"), "33"}})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, v.Errors().Has("courses"))

	ok, err = v.Validate(ctx, map[string]any{"courses": []any{c1.Get("id"), map[string]any{"id": c2.Get("id")}}})
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, v.Save(ctx))

	student, _ := store.Table(ctx, "student")
	courses, _ := student.Relation("courses")
	related, err := store.Related(ctx, courses, v.Record().Get("id"))
	require.NoError(t, err)
	assert.Len(t, related, 2)

	t.Run("links are visible from the other side", func(t *testing.T) {
		course, _ := store.Table(ctx, "course")
		students, _ := course.Relation("students")
		related, err := store.Related(ctx, students, c2.Get("id"))
		require.NoError(t, err)
		require.Len(t, related, 1)
		assert.Equal(t, "tim", related[0].Get("name"))
	})

	t.Run("saving replaces the links", func(t *testing.T) {
		ok, err := v.Validate(ctx, map[string]any{"courses": []any{c2}})
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, v.Save(ctx))

		related, err := store.Related(ctx, courses, v.Record().Get("id"))
		require.NoError(t, err)
		require.Len(t, related, 1)
		assert.Equal(t, "course2", related[0].Get("name"))
	})

	t.Run("saving nothing clears the links", func(t *testing.T) {
		ok, err := v.Validate(ctx, map[string]any{"courses": []any{}})
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, v.Save(ctx))

		related, err := store.Related(ctx, courses, v.Record().Get("id"))
		require.NoError(t, err)
		assert.Empty(t, related)
	})
}

func TestStore_SerializedColumns(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	token := uuid.New()

	v := bind(t, store, "measurement", nil)
	ok, err := v.Validate(ctx, map[string]any{"token": token.String(), "readings": true})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, v.Errors().Has("readings"))

	ok, err = v.Validate(ctx, map[string]any{
		"token":    token.String(),
		"readings": []any{1, "2"},
		"labels":   map[string]any{"unit": "kg"},
		"doc":      map[string]any{"source": "scale"},
		"amount":   "12.50",
	})
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, v.Save(ctx))

	rec, err := store.Find(ctx, "measurement", "id", v.Record().Get("id"))
	require.NoError(t, err)
	assert.Equal(t, token, rec.Get("token"))
	assert.Equal(t, []any{int64(1), int64(2)}, rec.Get("readings"))
	assert.Equal(t, map[string]any{"unit": "kg"}, rec.Get("labels"))
	assert.Equal(t, map[string]any{"source": "scale"}, rec.Get("doc"))
	assert.True(t, decimal.RequireFromString("12.5").Equal(rec.Get("amount").(decimal.Decimal)))
	assert.NotNil(t, rec.Get("taken_at"))
}

func TestStore_Transaction(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	errBoom := errors.New("boom")

	err := store.Transaction(ctx, func(ctx context.Context, tx model.Store) error {
		require.NoError(t, tx.Save(ctx, model.NewRecord("organization", map[string]any{"name": "temp"})))

		inner := tx.Transaction(ctx, func(ctx context.Context, tx model.Store) error {
			require.NoError(t, tx.Save(ctx, model.NewRecord("organization", map[string]any{"name": "nested"})))
			return errBoom
		})
		assert.ErrorIs(t, inner, errBoom)

		_, err := tx.Find(ctx, "organization", "name", "nested")
		assert.ErrorIs(t, err, model.ErrNotFound, "the savepoint is rolled back")

		_, err = tx.Find(ctx, "organization", "name", "temp")
		assert.NoError(t, err)
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)

	_, err = store.Find(ctx, "organization", "name", "temp")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestStore_WriteErrors(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, model.NewRecord("complex_person", map[string]any{"name": "bob", "gender": "M", "organization_id": 1})))

	err := store.Save(ctx, model.NewRecord("complex_person", map[string]any{"name": "bob", "gender": "F", "organization_id": 1}))
	assert.ErrorIs(t, err, gormstore.ErrDuplicateKey)

	assert.ErrorIs(t, store.Save(ctx, nil), model.ErrInvalidRecord)
	assert.ErrorIs(t, store.Save(ctx, model.NewRecord("nope", nil)), model.ErrUnknownTable)
}
