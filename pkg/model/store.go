package model

import "context"

// Store is the capability the model validator needs from a persistence layer.
type Store interface {
	// Table returns the metadata of the named table, or ErrUnknownTable.
	Table(ctx context.Context, name string) (*Table, error)

	// Find returns the first row of table whose column equals value, or ErrNotFound.
	Find(ctx context.Context, table, column string, value any) (*Record, error)

	// Exists reports whether a row matching every column of match exists,
	// ignoring the row whose primary key equals excludeID (when non-nil).
	Exists(ctx context.Context, table string, match map[string]any, excludeID any) (bool, error)

	// Save inserts rec when its primary key is nil and updates it otherwise.
	// Generated values, including the primary key, are written back to rec.
	Save(ctx context.Context, rec *Record) error

	// Related returns the targets associated with ownerID.
	Related(ctx context.Context, rel ManyToMany, ownerID any) ([]*Record, error)

	// SetRelated replaces the targets associated with ownerID.
	SetRelated(ctx context.Context, rel ManyToMany, ownerID any, targetIDs []any) error

	// Transaction runs fn atomically. fn must use the Store it is given.
	Transaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
