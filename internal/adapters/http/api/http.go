// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/homeval/internal/domain/features"
	"github.com/okian/homeval/internal/domain/prediction"
	"github.com/okian/homeval/internal/presenter"
	"github.com/okian/homeval/pkg/logger"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	Predict(ctx context.Context, lookup features.Lookup) (prediction.Result, features.RawInput, error)
	Schema(ctx context.Context) ([]string, error)
	Fields() []features.Field
	Mode() features.Mode
	Presenter() *presenter.Presenter
	Started() bool
}

// Server wires HTTP routes for the JSON API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	predictHandler *PredictHandler
	schemaHandler  *SchemaHandler
	logger         logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(deps),
		statsHandler:   NewStatsHandler(statsProvider),
		predictHandler: NewPredictHandler(deps),
		schemaHandler:  NewSchemaHandler(deps),
		logger:         logger.Get().Named("http"),
	}
}

// Register attaches all API routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/healthz", s.wrap(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", MetricsHandler())
	mux.HandleFunc("/stats", s.wrap(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/v1/predict", s.wrap(s.predictHandler.HandlePredict, "predict"))
	mux.HandleFunc("/api/v1/schema", s.wrap(s.schemaHandler.HandleSchema, "schema"))
}

func (s *Server) wrap(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return RequestIDMiddleware(AccessLogMiddleware(MetricsMiddleware(next, endpoint), s.logger))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
