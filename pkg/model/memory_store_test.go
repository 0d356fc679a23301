package model_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outcome-co/validates/pkg/model"
)

func TestMemoryStore_Save(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	t.Run("inserts assign sequential ids", func(t *testing.T) {
		a := create(t, store, "pay_grade", map[string]any{"name": "a"})
		b := create(t, store, "pay_grade", map[string]any{"name": "b"})
		assert.Equal(t, int64(1), a.Get("id"))
		assert.Equal(t, int64(2), b.Get("id"))
	})

	t.Run("updates merge into the stored row", func(t *testing.T) {
		rec := model.NewRecord("pay_grade", map[string]any{"id": 1})
		require.NoError(t, store.Save(ctx, rec))
		assert.Equal(t, "a", rec.Get("name"))

		rec.Set("name", "senior")
		require.NoError(t, store.Save(ctx, rec))

		stored, err := store.Find(ctx, "pay_grade", "id", "1")
		require.NoError(t, err)
		assert.Equal(t, "senior", stored.Get("name"))
	})

	t.Run("explicit ids advance the sequence", func(t *testing.T) {
		create(t, store, "pay_grade", map[string]any{"id": 10, "name": "x"})
		next := create(t, store, "pay_grade", map[string]any{"name": "y"})
		assert.Equal(t, int64(11), next.Get("id"))
	})

	t.Run("uuid keys are generated", func(t *testing.T) {
		tokens := model.NewMemoryStore(&model.Table{
			Name:       "token",
			PrimaryKey: "id",
			Columns: []model.Column{
				{Name: "id", Type: model.ColumnUUID, PrimaryKey: true, Generated: true},
				{Name: "label", Type: model.ColumnText},
			},
		})
		rec := create(t, tokens, "token", map[string]any{"label": "api"})
		id, ok := rec.Get("id").(uuid.UUID)
		require.True(t, ok)
		assert.NotEqual(t, uuid.Nil, id)

		found, err := tokens.Find(ctx, "token", "id", id.String())
		require.NoError(t, err)
		assert.Equal(t, "api", found.Get("label"))
	})

	t.Run("rejects nil records and unknown tables", func(t *testing.T) {
		assert.ErrorIs(t, store.Save(ctx, nil), model.ErrInvalidRecord)
		assert.ErrorIs(t, store.Save(ctx, model.NewRecord("nope", nil)), model.ErrUnknownTable)
	})
}

func TestMemoryStore_Find(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	rec, err := store.Find(ctx, "organization", "name", "main")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.Get("id"))

	t.Run("returned records are copies", func(t *testing.T) {
		rec.Set("name", "changed")
		again, err := store.Find(ctx, "organization", "id", 1)
		require.NoError(t, err)
		assert.Equal(t, "main", again.Get("name"))
	})

	t.Run("missing rows", func(t *testing.T) {
		_, err := store.Find(ctx, "organization", "name", "other")
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("unknown columns", func(t *testing.T) {
		_, err := store.Find(ctx, "organization", "nope", 1)
		assert.ErrorIs(t, err, model.ErrUnknownColumn)
	})
}

func TestMemoryStore_Exists(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	row := create(t, store, "basic_fields", map[string]any{"field1": "one", "field2": "two", "field3": "three"})

	exists, err := store.Exists(ctx, "basic_fields", map[string]any{"field1": "one", "field2": "two"}, nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.Exists(ctx, "basic_fields", map[string]any{"field1": "one", "field2": "other"}, nil)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = store.Exists(ctx, "basic_fields", map[string]any{"field1": "one"}, row.Get("id"))
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.Exists(ctx, "basic_fields", map[string]any{"nope": 1}, nil)
	assert.ErrorIs(t, err, model.ErrUnknownColumn)
}

func TestMemoryStore_Transaction(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	errBoom := errors.New("boom")

	err := store.Transaction(ctx, func(ctx context.Context, tx model.Store) error {
		require.NoError(t, tx.Save(ctx, model.NewRecord("organization", map[string]any{"name": "temp"})))
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)

	_, err = store.Find(ctx, "organization", "name", "temp")
	assert.ErrorIs(t, err, model.ErrNotFound)

	t.Run("the sequence is restored", func(t *testing.T) {
		rec := create(t, store, "organization", map[string]any{"name": "next"})
		assert.Equal(t, int64(2), rec.Get("id"))
	})

	t.Run("committed work is kept", func(t *testing.T) {
		err := store.Transaction(ctx, func(ctx context.Context, tx model.Store) error {
			return tx.Save(ctx, model.NewRecord("organization", map[string]any{"name": "kept"}))
		})
		require.NoError(t, err)

		_, err = store.Find(ctx, "organization", "name", "kept")
		assert.NoError(t, err)
	})
}

func TestMemoryStore_Related(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	tim := create(t, store, "student", map[string]any{"name": "tim"})
	c1 := create(t, store, "course", map[string]any{"name": "course1"})
	c2 := create(t, store, "course", map[string]any{"name": "course2"})

	courses, _ := studentTable.Relation("courses")
	require.NoError(t, store.SetRelated(ctx, courses, tim.Get("id"), []any{c1.Get("id"), c2.Get("id")}))

	got, err := store.Related(ctx, courses, tim.Get("id"))
	require.NoError(t, err)
	assert.Len(t, got, 2)

	t.Run("set replaces previous associations", func(t *testing.T) {
		require.NoError(t, store.SetRelated(ctx, courses, tim.Get("id"), []any{c2.Get("id")}))

		got, err := store.Related(ctx, courses, tim.Get("id"))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "course2", got[0].Get("name"))
	})

	t.Run("owners without associations", func(t *testing.T) {
		got, err := store.Related(ctx, courses, int64(99))
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
