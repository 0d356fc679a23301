// Package gormstore implements model.Store on top of gorm.
//
// Tables are described by ordinary gorm models. New parses them with the
// naming strategy of the *gorm.DB it is given and derives the metadata the
// model validator needs:
//
//   - `not null` columns are required unless they are auto-incremented or
//     carry a default; literal defaults are applied during validation
//   - `size` limits text length and a `choices:"a,b"` tag restricts values
//   - `unique` and single column `uniqueIndex` tags are checked per column,
//     composite unique indexes per index
//   - belongs-to associations become references on the foreign key column
//   - many2many associations are validated under the snake_cased field name
//
// Example:
//
//	type Organization struct {
//		ID   uint
//		Name string `gorm:"size:100;not null"`
//	}
//
//	type Person struct {
//		ID             uint
//		Name           string `gorm:"size:5;not null;unique"`
//		OrganizationID uint   `gorm:"not null"`
//		Organization   *Organization
//	}
//
//	db, err := gormstore.Open(ctx, sqlite.Open("app.db"), cfg, log)
//	if err != nil {
//		return err
//	}
//	store, err := gormstore.New(db, []any{&Organization{}, &Person{}})
//	if err != nil {
//		return err
//	}
//
//	v, err := model.NewValidator(ctx, store, model.NewRecord("person", nil))
//	if err != nil {
//		return err
//	}
//	ok, err := v.Validate(ctx, input)
//	if err != nil {
//		return err
//	}
//	if !ok {
//		return v.Err()
//	}
//	return v.Save(ctx)
//
// Open enables gorm's error translation so constraint violations surface as
// ErrDuplicateKey and ErrForeignKeyViolation.
package gormstore
