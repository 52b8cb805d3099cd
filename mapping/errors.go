package mapping

import "errors"

var (
	// ErrMappingNotFound is returned when a feature type has no mapping
	ErrMappingNotFound = errors.New("feature type mapping not found")
	// ErrInvalidMapping is returned for inconsistent mapping documents
	ErrInvalidMapping = errors.New("invalid mapping")
	// ErrUnsupportedVersion is returned when a document's format version is not supported
	ErrUnsupportedVersion = errors.New("unsupported mapping version")
	// ErrNoSourceExpression is returned when an attribute path cannot be unrolled to a source expression
	ErrNoSourceExpression = errors.New("no source expression found")
)
