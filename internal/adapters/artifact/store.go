// Package artifact loads the estimator, its feature schema and accuracy
// label from the models directory, once per process.
package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/homeval/internal/domain/estimator"
	"github.com/okian/homeval/internal/domain/features"
	"github.com/okian/homeval/pkg/logger"
	"github.com/okian/homeval/pkg/metrics"
)

// Artifact defaults.
const (
	DefaultModelsDir  = "notebooks/models"
	DefaultModelFile  = "best_model.json"
	DefaultSchemaFile = "feature_names.json"
	DefaultMetricFile = "test_r2.txt"

	// NotAvailable is the accuracy label used when no metric file exists.
	NotAvailable = "N/A"
)

// Bundle is the loaded, read-only artifact set.
type Bundle struct {
	Estimator estimator.Estimator
	Schema    features.Schema
	Accuracy  string
	Dir       string
	LoadedAt  time.Time
}

// Store memoizes the artifact bundle. The first successful Load is cached
// until Reset; failed loads are not cached.
type Store struct {
	baseDir    string
	modelsDir  string
	modelFile  string
	schemaFile string
	metricFile string
	expected   []string

	dir    string
	fsys   fs.FS
	logger logger.Logger

	mu     sync.Mutex
	cached atomic.Pointer[Bundle]
	loads  atomic.Int64
}

// New builds a Store and resolves its directory.
func New(opts ...Option) (*Store, error) {
	s := &Store{
		modelsDir:  DefaultModelsDir,
		modelFile:  DefaultModelFile,
		schemaFile: DefaultSchemaFile,
		metricFile: DefaultMetricFile,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("artifact")
	}

	dir, err := s.resolveDir()
	if err != nil {
		return nil, err
	}
	s.dir = dir
	if s.fsys == nil {
		s.fsys = os.DirFS(dir)
	}
	return s, nil
}

// resolveDir anchors the models directory at the executable's location
// so the working directory does not matter.
func (s *Store) resolveDir() (string, error) {
	if filepath.IsAbs(s.modelsDir) {
		return filepath.Clean(s.modelsDir), nil
	}
	base := s.baseDir
	if base == "" {
		exe, err := os.Executable()
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrResolveDir, err)
		}
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		base = filepath.Dir(exe)
	}
	abs, err := filepath.Abs(filepath.Join(base, s.modelsDir))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrResolveDir, err)
	}
	return abs, nil
}

// Dir is the resolved artifact directory.
func (s *Store) Dir() string { return s.dir }

// ModelsDir is the configured, unresolved directory name.
func (s *Store) ModelsDir() string { return s.modelsDir }

// Loads reports how many times artifacts were read from disk.
func (s *Store) Loads() int64 { return s.loads.Load() }

// Load returns the cached bundle, reading the artifacts on first use.
// Concurrent first callers wait for a single read.
func (s *Store) Load(ctx context.Context) (*Bundle, error) {
	if b := s.cached.Load(); b != nil {
		return b, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if b := s.cached.Load(); b != nil {
		return b, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	b, err := s.read()
	elapsed := float64(time.Since(start).Microseconds()) / 1e3
	if err != nil {
		metrics.RecordArtifactLoad(loadOutcome(err), elapsed)
		s.logger.Error(ctx, "artifact load failed", logger.String("dir", s.dir), logger.Error(err))
		return nil, err
	}
	metrics.RecordArtifactLoad(metrics.LoadOK, elapsed)
	metrics.UpdateArtifactFeatures(b.Schema.Len())
	s.cached.Store(b)
	s.logger.Info(ctx, "artifacts loaded",
		logger.String("dir", s.dir),
		logger.String("model", b.Estimator.Describe()),
		logger.Int("features", b.Schema.Len()),
		logger.String("accuracy", b.Accuracy),
		logger.Float64("duration_ms", elapsed),
	)
	return b, nil
}

// Reset drops the cached bundle so the next Load reads from disk again.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached.Store(nil)
}

func (s *Store) read() (*Bundle, error) {
	s.loads.Add(1)

	modelPath := s.path(s.modelFile)
	if _, err := fs.Stat(s.fsys, s.modelFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, missing(modelPath)
		}
		return nil, corrupt(modelPath, err)
	}

	est, err := s.readEstimator()
	if err != nil {
		return nil, corrupt(modelPath, err)
	}

	schemaPath := s.path(s.schemaFile)
	schema, err := s.readSchema()
	if err != nil {
		return nil, corrupt(schemaPath, err)
	}
	if est.NumFeatures() != schema.Len() {
		return nil, corrupt(schemaPath, fmt.Errorf("%w: model expects %d features, schema lists %d",
			estimator.ErrFeatureCount, est.NumFeatures(), schema.Len()))
	}
	if s.expected != nil {
		if err := schema.Matches(s.expected); err != nil {
			return nil, corrupt(schemaPath, err)
		}
	}

	accuracy, err := s.readAccuracy()
	if err != nil {
		return nil, corrupt(s.path(s.metricFile), err)
	}

	return &Bundle{
		Estimator: est,
		Schema:    schema,
		Accuracy:  accuracy,
		Dir:       s.dir,
		LoadedAt:  time.Now(),
	}, nil
}

func (s *Store) readEstimator() (estimator.Estimator, error) {
	f, err := s.fsys.Open(s.modelFile)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return estimator.Decode(f)
}

func (s *Store) readSchema() (features.Schema, error) {
	data, err := fs.ReadFile(s.fsys, s.schemaFile)
	if err != nil {
		return features.Schema{}, err
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return features.Schema{}, fmt.Errorf("decode feature names: %w", err)
	}
	return features.NewSchema(names)
}

func (s *Store) readAccuracy() (string, error) {
	data, err := fs.ReadFile(s.fsys, s.metricFile)
	if errors.Is(err, fs.ErrNotExist) {
		return NotAvailable, nil
	}
	if err != nil {
		return "", err
	}
	label := strings.TrimSpace(string(data))
	if label == "" {
		return NotAvailable, nil
	}
	return label, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, filepath.FromSlash(name))
}

func loadOutcome(err error) string {
	switch {
	case errors.Is(err, ErrMissingArtifact):
		return metrics.LoadMissing
	case errors.Is(err, ErrCorruptArtifact):
		return metrics.LoadCorrupt
	default:
		return metrics.LoadError
	}
}
