package artifact

import (
	"io/fs"

	"github.com/okian/homeval/pkg/logger"
)

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithBaseDir resolves the models directory against dir instead of the
// executable's directory.
func WithBaseDir(dir string) Option {
	return func(s *Store) {
		if dir != "" {
			s.baseDir = dir
		}
	}
}

// WithModelsDir sets the artifact directory, relative to the base unless absolute.
func WithModelsDir(dir string) Option {
	return func(s *Store) {
		if dir != "" {
			s.modelsDir = dir
		}
	}
}

// WithFiles names the estimator, schema and metric files. Empty names keep defaults.
func WithFiles(model, schema, metric string) Option {
	return func(s *Store) {
		if model != "" {
			s.modelFile = model
		}
		if schema != "" {
			s.schemaFile = schema
		}
		if metric != "" {
			s.metricFile = metric
		}
	}
}

// WithFS reads artifacts from fsys instead of the resolved directory.
func WithFS(fsys fs.FS) Option {
	return func(s *Store) {
		if fsys != nil {
			s.fsys = fsys
		}
	}
}

// WithExpectedFeatures makes Load reject schemas that do not name exactly
// these features.
func WithExpectedFeatures(names []string) Option {
	return func(s *Store) {
		s.expected = append([]string(nil), names...)
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}
