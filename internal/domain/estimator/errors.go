package estimator

import "errors"

// Sentinel kinds for estimator errors.
var (
	ErrUnsupportedKind = errors.New("unsupported estimator kind")
	ErrMalformed       = errors.New("malformed estimator document")
	ErrFeatureCount    = errors.New("feature count mismatch")
)
