package artifact

import (
	"errors"
	"fmt"
)

// Sentinel kinds for artifact loading.
var (
	ErrMissingArtifact = errors.New("missing artifact")
	ErrCorruptArtifact = errors.New("corrupt artifact")
	ErrResolveDir      = errors.New("resolve artifact directory")
)

// LoadError carries the artifact path alongside the failure kind.
// errors.Is matches both the kind and the underlying cause.
type LoadError struct {
	Kind error
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Path, e.Err)
}

// Unwrap exposes both the kind and the cause.
func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func missing(path string) error {
	return &LoadError{Kind: ErrMissingArtifact, Path: path}
}

func corrupt(path string, err error) error {
	return &LoadError{Kind: ErrCorruptArtifact, Path: path, Err: err}
}
