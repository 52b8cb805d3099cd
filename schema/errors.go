package schema

import "errors"

var (
	// ErrTableNotFound is returned when a table does not exist
	ErrTableNotFound = errors.New("table not found")
	// ErrUnsupportedProvider is returned when no introspector exists for a provider
	ErrUnsupportedProvider = errors.New("unsupported database provider")
)
