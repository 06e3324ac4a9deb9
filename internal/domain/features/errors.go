package features

import "errors"

// Sentinel kinds for feature assembly errors.
var (
	ErrInvalidNumericInput = errors.New("invalid numeric input")
	ErrSchemaMismatch      = errors.New("feature schema mismatch")
	ErrUnknownMode         = errors.New("unknown input mode")
)
