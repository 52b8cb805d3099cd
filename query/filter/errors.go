package filter

import "errors"

var (
	// ErrSyntax is returned when a text filter cannot be parsed
	ErrSyntax = errors.New("filter syntax error")
)
