package dialect

import "errors"

var (
	// ErrUnsupportedDialect is returned when a provider name has no dialect
	ErrUnsupportedDialect = errors.New("unsupported sql dialect")
)
