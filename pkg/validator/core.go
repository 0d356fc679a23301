package validator

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Func is a validator function. It inspects f.Value() and returns a
// *ValidationError on failure. data is the whole input, with the coerced
// value of every active field in place of its raw one, so cross-field checks
// see fields declared later and keys no field declares.
type Func func(f *Field, data map[string]any) error

// BaseKey is the Errors key used for failures that belong to the whole input
// rather than to a single field.
const BaseKey = "__base__"

// ValidationError is a single failed check. Code selects the message template,
// Params fills its placeholders.
type ValidationError struct {
	Code   string
	Params map[string]any
}

// NewError creates a validation failure with the given code and template params.
func NewError(code string, params map[string]any) *ValidationError {
	return &ValidationError{Code: code, Params: params}
}

func (e *ValidationError) Error() string {
	return FormatMessage(DefaultMessage(e.Code), e.Params)
}

// AsValidationError reports whether err carries a validation failure and returns it.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

func IsValidationError(err error) bool {
	_, ok := AsValidationError(err)
	return ok
}

// Errors maps field names to resolved error messages.
type Errors map[string]string

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}

	parts := make([]string, 0, len(e))
	for _, field := range e.Fields() {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e[field]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

func (e Errors) Get(field string) string {
	return e[field]
}

// Fields returns the names of failed fields in lexical order.
func (e Errors) Fields() []string {
	return slices.Sorted(maps.Keys(e))
}

func (e Errors) IsEmpty() bool {
	return len(e) == 0
}

// ExtractErrors returns the Errors carried by err, or nil.
func ExtractErrors(err error) Errors {
	if err == nil {
		return nil
	}

	var errs Errors
	if errors.As(err, &errs) {
		return errs
	}
	return nil
}
