package gormstore

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertTo(t *testing.T) {
	t.Run("numbers", func(t *testing.T) {
		out, ok := convertTo(reflect.TypeFor[uint](), reflect.ValueOf(int64(7)))
		require.True(t, ok)
		assert.Equal(t, uint(7), out.Interface())
	})

	t.Run("strings are not numbers", func(t *testing.T) {
		_, ok := convertTo(reflect.TypeFor[string](), reflect.ValueOf(int64(65)))
		assert.False(t, ok)
	})

	t.Run("lists become typed slices", func(t *testing.T) {
		out, ok := convertTo(reflect.TypeFor[[]int32](), reflect.ValueOf([]any{int64(1), nil, int64(3)}))
		require.True(t, ok)
		assert.Equal(t, []int32{1, 0, 3}, out.Interface())
	})

	t.Run("mixed lists are rejected", func(t *testing.T) {
		_, ok := convertTo(reflect.TypeFor[[]int64](), reflect.ValueOf([]any{int64(1), "x"}))
		assert.False(t, ok)
	})

	t.Run("maps become typed maps", func(t *testing.T) {
		out, ok := convertTo(reflect.TypeFor[map[string]string](), reflect.ValueOf(map[string]any{"a": "1", "b": nil}))
		require.True(t, ok)
		assert.Equal(t, map[string]string{"a": "1", "b": ""}, out.Interface())
	})
}

func TestIndirect(t *testing.T) {
	n := 5
	p := &n
	var nilPtr *int

	assert.Equal(t, 5, indirect(&p))
	assert.Nil(t, indirect(nilPtr))
	assert.Nil(t, indirect(nil))
	assert.Equal(t, "x", indirect("x"))
}

func TestIsExpression(t *testing.T) {
	assert.True(t, isExpression("now()"))
	assert.True(t, isExpression("current_timestamp"))
	assert.False(t, isExpression("Tim"))
	assert.False(t, isExpression("0"))
}
