package encoder

import "errors"

var (
	// ErrUnsupportedFilter is returned for filter types the encoder cannot express
	ErrUnsupportedFilter = errors.New("unsupported filter")
	// ErrUnsupportedExpression is returned for expressions that must be rewritten before encoding
	ErrUnsupportedExpression = errors.New("unsupported expression")
)
