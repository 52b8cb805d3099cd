package joining

import (
	"errors"
	"fmt"

	"github.com/satishbabariya/joinsql/mapping"
	"github.com/satishbabariya/joinsql/query/encoder"
)

var (
	// ErrUnsupportedFilter is returned when a predicate cannot be translated,
	// for example a comparison between two chained attributes
	ErrUnsupportedFilter = errors.New("unsupported filter")
	// ErrNaturalOrder is returned for natural or reverse order sort keys
	ErrNaturalOrder = errors.New("natural and reverse order sorting is not supported in joining queries")
	// ErrMissingMapping is returned when a filter needs the feature type mapping but the plan has none
	ErrMissingMapping = errors.New("feature type mapping required")
	// ErrSchemaLookup wraps failures of the schema lookup
	ErrSchemaLookup = errors.New("schema lookup failed")
	// ErrNoSourceExpression is returned when a nested attribute cannot be unrolled
	ErrNoSourceExpression = mapping.ErrNoSourceExpression
)

// translationError marks generic encoder failures as unsupported filters
func translationError(err error) error {
	if errors.Is(err, ErrUnsupportedFilter) {
		return err
	}
	if errors.Is(err, encoder.ErrUnsupportedFilter) || errors.Is(err, encoder.ErrUnsupportedExpression) {
		return fmt.Errorf("%w: %w", ErrUnsupportedFilter, err)
	}
	return err
}

// failureReason labels an error for the translation failure metric
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrNaturalOrder):
		return "natural_order"
	case errors.Is(err, ErrSchemaLookup):
		return "schema_lookup"
	case errors.Is(err, ErrNoSourceExpression):
		return "no_source_expression"
	case errors.Is(err, ErrUnsupportedFilter):
		return "unsupported_filter"
	default:
		return "other"
	}
}
