// Package validator validates and coerces flat, untyped input (as decoded from
// a JSON body or form values) against a declared set of typed fields.
//
// A Definition is the registry of one kind of input: an ordered list of
// fields, message overrides and clean hooks. Definitions are built once and
// shared. Each validation runs on a Validator obtained from Definition.New,
// which owns the coerced data and the per-field error messages.
//
// # Fields
//
// A Field pairs a name with a Type (String, Integer, Decimal, Date, UUID,
// List and so on). Processing a field follows a fixed order:
//
//  1. take the input value, or the default when the key is missing
//  2. coerce it to the native type (an empty string counts as absent for
//     non-string types)
//  3. fail with "required" when the field is required and the value is absent
//  4. check bounds (WithLow/WithHigh), lengths (WithMinLength/WithMaxLength),
//     choices, then each validator Func in order
//
// The first failure stops the field; other fields are still processed.
//
// # Usage
//
//	person := validator.Define(
//	    validator.WithFields(
//	        validator.String("name", validator.IsRequired(), validator.WithMaxLength(50)),
//	        validator.String("email", validator.WithValidators(validator.Email())),
//	        validator.Integer("age", validator.WithRange(0, 150)),
//	    ),
//	    validator.WithMessages(map[string]string{
//	        "name.required": "Tell us your name.",
//	    }),
//	)
//
//	v := person.New()
//	ok, err := v.Validate(ctx, input)
//	if err != nil {
//	    return err
//	}
//	if !ok {
//	    return v.Err()
//	}
//	save(v.Data())
//
// # Messages
//
// A failure is a *ValidationError with a code and template params. The message
// stored in Errors is resolved from "field.code", then "code" in the
// definition's messages, then the process-wide table, which can be extended
// with RegisterMessages or LoadMessages.
package validator
