package validator

import "errors"

var (
	// ErrInvalidDeclaration is raised (as a panic) when a field is declared with
	// bounds or options its type cannot hold.
	ErrInvalidDeclaration = errors.New("invalid field declaration")

	// ErrUnknownField is returned when an operation names a field that is not declared.
	ErrUnknownField = errors.New("unknown field")

	// ErrInvalidMessages is returned when a message table cannot be decoded.
	ErrInvalidMessages = errors.New("invalid message table")
)

// Error codes. Each code is also the key of its default message template.
const (
	CodeRequired = "required"
	CodeEmpty    = "empty"
	CodeUnique   = "unique"
	CodeIndex    = "index"
	CodeRelated  = "related"
	CodeOneOf    = "one_of"
	CodeNoneOf   = "none_of"
	CodeEqual    = "equal"
	CodeMatches  = "matches"
	CodeRegexp   = "regexp"
	CodeFunction = "function"
	CodeEmail    = "email"

	CodeLengthLow     = "length_low"
	CodeLengthHigh    = "length_high"
	CodeLengthBetween = "length_between"
	CodeLengthEqual   = "length_equal"

	CodeRangeLow     = "range_low"
	CodeRangeHigh    = "range_high"
	CodeRangeBetween = "range_between"

	CodeCoerceBool     = "coerce_bool"
	CodeCoerceInt      = "coerce_int"
	CodeCoerceFloat    = "coerce_float"
	CodeCoerceDecimal  = "coerce_decimal"
	CodeCoerceDate     = "coerce_date"
	CodeCoerceTime     = "coerce_time"
	CodeCoerceDatetime = "coerce_datetime"
	CodeCoerceStr      = "coerce_str"
	CodeCoerceUUID     = "coerce_uuid"
	CodeCoerceList     = "coerce_list"
	CodeCoerceMap      = "coerce_map"
)
