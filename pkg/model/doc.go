// Package model derives validators from table metadata and saves validated
// data through a Store.
//
// A Store exposes tables (columns, indexes, foreign keys and many-to-many
// associations) and the few row operations validation needs. Define turns a
// table into a validator.Definition:
//
//   - non-nullable, non-generated columns are required
//   - defaults, choices and text lengths carry over
//   - foreign keys become Reference fields resolving to a *Record
//   - associations become ManyReference fields resolving to []*Record
//
// A Validator is bound to one Record. Validate fills missing keys from the
// record, runs field validation and then checks unique columns and unique
// indexes against the store. Save writes the data back in one transaction.
//
//	store := model.NewMemoryStore(tables...)
//	v, err := model.NewValidator(ctx, store, model.NewRecord("person", nil))
//	if err != nil {
//	    return err
//	}
//	ok, err := v.Validate(ctx, input)
//	if err != nil {
//	    return err
//	}
//	if !ok {
//	    return v.Err()
//	}
//	return v.Save(ctx)
//
// MemoryStore is the in-process implementation; the pg and gorm packages
// provide database-backed stores.
package model
