package model

import "errors"

var (
	// ErrNotFound is returned by Store.Find when no row matches.
	ErrNotFound = errors.New("model.not_found")

	// ErrNotValidated is returned by Save when the latest Validate did not succeed.
	ErrNotValidated = errors.New("model.not_validated")

	// ErrUnknownTable is returned when a store has no metadata for a table.
	ErrUnknownTable = errors.New("model.unknown_table")

	// ErrUnknownColumn is returned when an operation names a column the table lacks.
	ErrUnknownColumn = errors.New("model.unknown_column")

	// ErrNoStore is returned when a reference field is coerced outside a store scope.
	ErrNoStore = errors.New("model.no_store")

	// ErrNotPersisted is returned when a related record has no key to link by.
	ErrNotPersisted = errors.New("model.not_persisted")

	// ErrInvalidRecord is returned for nil records or records of another table.
	ErrInvalidRecord = errors.New("model.invalid_record")
)
