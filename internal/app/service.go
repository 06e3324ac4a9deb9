// Package service wires the artifact store, input collection, feature
// building, prediction and presentation into one request pipeline.
package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/homeval/internal/adapters/artifact"
	"github.com/okian/homeval/internal/domain/features"
	"github.com/okian/homeval/internal/domain/prediction"
	"github.com/okian/homeval/internal/presenter"
	"github.com/okian/homeval/pkg/logger"
	"github.com/okian/homeval/pkg/metrics"
)

// Loader provides the cached artifact bundle.
type Loader interface {
	Load(ctx context.Context) (*artifact.Bundle, error)
	ModelsDir() string
}

// Service serves predictions for the page and the JSON API.
type Service struct {
	mu sync.RWMutex

	store     Loader
	mode      features.Mode
	fields    []features.Field
	collector *features.Collector
	invoker   *prediction.Invoker
	presenter *presenter.Presenter

	started   bool
	startedAt time.Time

	predictions   atomic.Int64
	invalidInputs atomic.Int64
	faults        atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the artifact source.
func WithStore(store Loader) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithInputMode selects free-text or bounded-widget capture.
func WithInputMode(mode features.Mode) Option {
	return func(s *Service) {
		if mode != "" {
			s.mode = mode
		}
	}
}

// WithFields replaces the form fields.
func WithFields(fields []features.Field) Option {
	return func(s *Service) {
		if len(fields) > 0 {
			s.fields = fields
		}
	}
}

// WithPresenter sets the result formatter.
func WithPresenter(p *presenter.Presenter) Option {
	return func(s *Service) {
		if p != nil {
			s.presenter = p
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a Service. Free-text mode and the eight housing fields
// are the defaults.
func New(opts ...Option) *Service {
	s := &Service{
		mode:      features.ModeFreeText,
		fields:    features.DefaultFields(),
		invoker:   prediction.NewInvoker(),
		presenter: presenter.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.collector = features.NewCollector(s.mode, s.fields)
	return s
}

// Start loads the artifacts. A load failure is returned so the caller can
// halt before serving anything.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.store == nil {
		return ErrNoStore
	}

	s.logger.Info(ctx, "starting predictor service...", logger.String("mode", string(s.mode)))
	b, err := s.store.Load(ctx)
	if err != nil {
		return err
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "predictor service started",
		logger.String("model", b.Estimator.Describe()),
		logger.String("accuracy", b.Accuracy),
		logger.Int("features", b.Schema.Len()),
	)
	return nil
}

// Stop marks the service stopped. The bundle stays cached.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "predictor service stopped")
}

// Started reports whether Start succeeded.
func (s *Service) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Mode returns the capture mode.
func (s *Service) Mode() features.Mode { return s.mode }

// Fields returns the form fields in display order.
func (s *Service) Fields() []features.Field { return s.collector.Fields() }

// Presenter returns the result formatter.
func (s *Service) Presenter() *presenter.Presenter { return s.presenter }

// Bundle returns the loaded artifacts.
func (s *Service) Bundle(ctx context.Context) (*artifact.Bundle, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.Load(ctx)
}

// Predict runs one submission through collect, build and invoke.
// The returned RawInput echoes the captured form state even on failure.
func (s *Service) Predict(ctx context.Context, lookup features.Lookup) (prediction.Result, features.RawInput, error) {
	raw := s.collector.Collect(lookup)

	b, err := s.Bundle(ctx)
	if err != nil {
		metrics.RecordPrediction(metrics.OutcomeUnavailable)
		return prediction.Result{}, raw, err
	}

	rec, err := features.Build(raw, b.Schema)
	if err != nil {
		s.recordFailure(ctx, err)
		return prediction.Result{}, raw, err
	}

	res, err := s.invoker.Predict(ctx, rec, b.Estimator)
	if err != nil {
		s.recordFailure(ctx, err)
		return prediction.Result{}, raw, err
	}

	s.predictions.Add(1)
	metrics.RecordPrediction(metrics.OutcomeOK)
	metrics.RecordPredictionLatency(float64(res.Latency.Microseconds()) / 1e3)
	metrics.RecordPredictedValue(res.Value)
	s.logger.Debug(ctx, "prediction served",
		logger.Float64("value", res.Value),
		logger.Any("features", rec),
	)
	return res, raw, nil
}

func (s *Service) recordFailure(ctx context.Context, err error) {
	switch {
	case errors.Is(err, features.ErrInvalidNumericInput):
		s.invalidInputs.Add(1)
		metrics.RecordPrediction(metrics.OutcomeInvalidInput)
		metrics.RecordInvalidInput(string(s.mode))
		s.logger.Debug(ctx, "invalid input", logger.Error(err))
	case errors.Is(err, features.ErrSchemaMismatch):
		s.faults.Add(1)
		metrics.RecordPrediction(metrics.OutcomeSchema)
		s.logger.Error(ctx, "feature schema mismatch", logger.Error(err))
	default:
		s.faults.Add(1)
		metrics.RecordPrediction(metrics.OutcomeFault)
		s.logger.Warn(ctx, "prediction failed", logger.Error(err))
	}
}

// Submission is one page request. Submitted is false for the idle page.
type Submission struct {
	Submitted bool
	Lookup    features.Lookup
	Prior     *float64
}

// Page renders the page state for a request.
func (s *Service) Page(ctx context.Context, sub Submission) presenter.View {
	in := presenter.PageInput{
		Mode:   s.mode,
		Fields: s.collector.Fields(),
		Prior:  sub.Prior,
	}
	if s.store != nil {
		in.ModelsDir = s.store.ModelsDir()
	}

	b, err := s.Bundle(ctx)
	if err != nil {
		in.Err = err
		return s.presenter.Page(in)
	}
	in.Model = b.Estimator.Describe()
	in.Accuracy = b.Accuracy

	if !sub.Submitted || sub.Lookup == nil {
		in.Raw = s.collector.Defaults()
		return s.presenter.Page(in)
	}

	res, raw, err := s.Predict(ctx, sub.Lookup)
	in.Raw = raw
	if err != nil {
		in.Err = err
		return s.presenter.Page(in)
	}
	in.Result = &res.Value
	return s.presenter.Page(in)
}

// Schema returns the loaded feature names in model order.
func (s *Service) Schema(ctx context.Context) ([]string, error) {
	b, err := s.Bundle(ctx)
	if err != nil {
		return nil, err
	}
	return b.Schema.Names(), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":       s.started,
		"mode":          string(s.mode),
		"fields":        len(s.fields),
		"predictions":   s.predictions.Load(),
		"invalidInputs": s.invalidInputs.Load(),
		"faults":        s.faults.Load(),
	}
	if s.started {
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
		if b, err := s.store.Load(context.Background()); err == nil {
			stats["model"] = b.Estimator.Describe()
			stats["accuracy"] = b.Accuracy
			stats["features"] = b.Schema.Len()
			stats["modelsDir"] = b.Dir
			stats["loadedAt"] = b.LoadedAt.UTC().Format(time.RFC3339)
		}
	}
	return stats
}
