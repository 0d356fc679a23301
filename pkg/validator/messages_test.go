package validator_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outcome-co/validates/pkg/validator"
)

func TestFormatMessage(t *testing.T) {
	assert.Equal(t, "Must be between 1 and 5.",
		validator.FormatMessage("Must be between {low} and {high}.", map[string]any{"low": 1, "high": 5}))
	assert.Equal(t, "No params {here}.", validator.FormatMessage("No params {here}.", nil))
}

func TestDefaultMessage(t *testing.T) {
	assert.Equal(t, "This field is required.", validator.DefaultMessage(validator.CodeRequired))
	assert.Equal(t, "not_a_code", validator.DefaultMessage("not_a_code"))
}

func TestLoadMessages(t *testing.T) {
	t.Cleanup(validator.ResetMessages)

	err := validator.LoadMessages(strings.NewReader("required: \"Please fill in.\"\ncoerce_int: Whole numbers only.\n"))
	require.NoError(t, err)
	assert.Equal(t, "Please fill in.", validator.DefaultMessage(validator.CodeRequired))

	v := validator.Define(validator.WithFields(
		validator.Integer("n", validator.IsRequired()),
		validator.Integer("m"),
	)).New()
	ok, err := v.Validate(context.Background(), map[string]any{"m": "x"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Please fill in.", v.Errors()["n"])
	assert.Equal(t, "Whole numbers only.", v.Errors()["m"])

	t.Run("empty document is a no-op", func(t *testing.T) {
		require.NoError(t, validator.LoadMessages(strings.NewReader("")))
	})

	t.Run("invalid document", func(t *testing.T) {
		err := validator.LoadMessages(strings.NewReader("- a\n- b\n"))
		assert.ErrorIs(t, err, validator.ErrInvalidMessages)
	})
}

func TestRegisterMessages(t *testing.T) {
	t.Cleanup(validator.ResetMessages)

	validator.RegisterMessages(map[string]string{"email": "Bad email."})
	assert.Equal(t, "Bad email.", validator.Messages()["email"])

	validator.ResetMessages()
	assert.Equal(t, "Must be a valid email address.", validator.DefaultMessage(validator.CodeEmail))
}

func TestErrors(t *testing.T) {
	errs := validator.Errors{"b": "second", "a": "first"}
	assert.Equal(t, []string{"a", "b"}, errs.Fields())
	assert.True(t, errs.Has("a"))
	assert.Equal(t, "first", errs.Get("a"))
	assert.Equal(t, "validation failed: a: first; b: second", errs.Error())
	assert.True(t, validator.Errors{}.IsEmpty())
}
