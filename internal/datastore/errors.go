package datastore

import (
	"errors"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrRowNotFound is returned when no row exists for the given identifier.
	ErrRowNotFound = errors.New("row not found")
	// ErrEntityNotRegistered is returned when no entity was registered for the requested table.
	ErrEntityNotRegistered = errors.New("entity not registered")
	// ErrInvalidIdentifier is returned for table or column names outside the allowed pattern.
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrUnknownFieldType is returned for a field type outside the descriptor enum.
	ErrUnknownFieldType = errors.New("unknown field type")
	// ErrEmptyRow is returned when an insert or update carries no values.
	ErrEmptyRow = errors.New("row data is empty")
)
