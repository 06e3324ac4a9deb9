package loadtest

import "errors"

var (
	// ErrUnhealthy is returned when the service health check fails.
	ErrUnhealthy = errors.New("service unhealthy")
	// ErrNoRequests is returned when there is nothing to submit or save.
	ErrNoRequests = errors.New("no requests")
	// ErrEmptySchema is returned when the service reports no features.
	ErrEmptySchema = errors.New("empty feature schema")
	// ErrVerification is returned when responses disagree with expectations.
	ErrVerification = errors.New("verification failed")
)
