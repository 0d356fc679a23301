package validator

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var builtinMessages = map[string]string{
	CodeRequired: "This field is required.",
	CodeEmpty:    "This field must not be blank.",
	CodeUnique:   "Must be a unique value.",
	CodeIndex:    "Fields must be unique together.",
	CodeRelated:  "Unable to find object with {field} = {values}.",
	CodeOneOf:    "Must be one of the choices: {choices}.",
	CodeNoneOf:   "Must not be one of the choices: {choices}.",
	CodeEqual:    "Must be equal to {other}.",
	CodeMatches:  "Must match field {other}.",
	CodeRegexp:   "Must match the pattern {pattern}.",
	CodeFunction: "Failed validation for {function}.",
	CodeEmail:    "Must be a valid email address.",

	CodeLengthLow:     "Must be at least {low} characters.",
	CodeLengthHigh:    "Must be at most {high} characters.",
	CodeLengthBetween: "Must be between {low} and {high} characters.",
	CodeLengthEqual:   "Must be exactly {equal} characters.",

	CodeRangeLow:     "Must be at least {low}.",
	CodeRangeHigh:    "Must be at most {high}.",
	CodeRangeBetween: "Must be between {low} and {high}.",

	CodeCoerceBool:     "Must be a valid bool.",
	CodeCoerceInt:      "Must be a valid integer.",
	CodeCoerceFloat:    "Must be a valid float.",
	CodeCoerceDecimal:  "Must be a valid decimal.",
	CodeCoerceDate:     "Must be a valid date.",
	CodeCoerceTime:     "Must be a valid time.",
	CodeCoerceDatetime: "Must be a valid datetime.",
	CodeCoerceStr:      "Must be a valid string.",
	CodeCoerceUUID:     "Must be a valid UUID.",
	CodeCoerceList:     "Must be a list of values.",
	CodeCoerceMap:      "Must be a mapping.",
}

var messageTable = struct {
	mu       sync.RWMutex
	messages map[string]string
}{messages: maps.Clone(builtinMessages)}

// DefaultMessage returns the process-wide template for code, or code itself
// when nothing is registered.
func DefaultMessage(code string) string {
	messageTable.mu.RLock()
	defer messageTable.mu.RUnlock()

	if msg, ok := messageTable.messages[code]; ok {
		return msg
	}
	return code
}

// Messages returns a copy of the process-wide message table.
func Messages() map[string]string {
	messageTable.mu.RLock()
	defer messageTable.mu.RUnlock()
	return maps.Clone(messageTable.messages)
}

// RegisterMessages adds or replaces process-wide message templates.
func RegisterMessages(messages map[string]string) {
	messageTable.mu.Lock()
	defer messageTable.mu.Unlock()
	maps.Copy(messageTable.messages, messages)
}

// ResetMessages restores the built-in message table.
func ResetMessages() {
	messageTable.mu.Lock()
	defer messageTable.mu.Unlock()
	messageTable.messages = maps.Clone(builtinMessages)
}

// LoadMessages reads a flat YAML mapping of code to template and registers it.
//
//	required: "Please fill in this field."
//	coerce_int: "Whole numbers only."
func LoadMessages(r io.Reader) error {
	var messages map[string]string
	if err := yaml.NewDecoder(r).Decode(&messages); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.Join(ErrInvalidMessages, err)
	}
	RegisterMessages(messages)
	return nil
}

// FormatMessage substitutes {name} placeholders in template with params.
func FormatMessage(template string, params map[string]any) string {
	if len(params) == 0 || !strings.Contains(template, "{") {
		return template
	}

	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
