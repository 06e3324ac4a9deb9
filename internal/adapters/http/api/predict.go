package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/homeval/internal/adapters/artifact"
	"github.com/okian/homeval/internal/domain/features"
	"github.com/okian/homeval/internal/domain/prediction"
	"github.com/okian/homeval/internal/presenter"
)

const maxPredictBody = 64 << 10

// predictRequest carries feature values as numbers or strings. Strings go
// through the same parsing as the form.
type predictRequest struct {
	Features map[string]json.RawMessage `json:"features"`
}

func (p predictRequest) lookup(fields []features.Field) (features.Lookup, error) {
	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.Name] = true
	}
	values := make(map[string]string, len(p.Features))
	for name, raw := range p.Features {
		if !known[name] {
			return nil, fmt.Errorf("unknown feature %q", name)
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			values[name] = n.String()
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("feature %q must be a number or string", name)
		}
		values[name] = s
	}
	return features.FromMap(values), nil
}

type predictResponse struct {
	Value     float64         `json:"value"`
	Price     float64         `json:"price"`
	Formatted string          `json:"formatted"`
	Model     string          `json:"model"`
	Features  features.Record `json:"features"`
	LatencyMs float64         `json:"latency_ms"`
}

// PredictHandler handles prediction requests.
type PredictHandler struct {
	deps Dependencies
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps Dependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

// HandlePredict handles POST /api/v1/predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	var req predictRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxPredictBody))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	lookup, err := req.lookup(h.deps.Fields())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	p := h.deps.Presenter()
	res, _, err := h.deps.Predict(r.Context(), lookup)
	if err != nil {
		h.writePredictError(w, p, op, err)
		return
	}

	writeJSON(w, http.StatusOK, predictResponse{
		Value:     res.Value,
		Price:     p.Price(res.Value),
		Formatted: p.Format(res.Value),
		Model:     res.Model,
		Features:  res.Features,
		LatencyMs: float64(res.Latency.Microseconds()) / 1e3,
	})
}

func (h *PredictHandler) writePredictError(w http.ResponseWriter, p *presenter.Presenter, op string, err error) {
	msg := errors.New(p.Message(err))
	switch {
	case errors.Is(err, features.ErrInvalidNumericInput):
		writeError(w, http.StatusBadRequest, "invalid_input", WrapKind(op, ErrInvalidInput, msg))
	case errors.Is(err, artifact.ErrMissingArtifact), errors.Is(err, artifact.ErrCorruptArtifact):
		writeError(w, http.StatusServiceUnavailable, "model_unavailable", WrapKind(op, ErrUnavailable, msg))
	case errors.Is(err, features.ErrSchemaMismatch):
		writeError(w, http.StatusUnprocessableEntity, "schema_mismatch", WrapKind(op, ErrPrediction, msg))
	case errors.Is(err, prediction.ErrPredictionFault):
		writeError(w, http.StatusInternalServerError, "prediction_fault", WrapKind(op, ErrPrediction, msg))
	default:
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrPrediction, err))
	}
}

// fieldResponse describes one input for API clients.
type fieldResponse struct {
	Name    string  `json:"name"`
	Label   string  `json:"label"`
	Default float64 `json:"default"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
}

type schemaResponse struct {
	Mode     string          `json:"mode"`
	Features []string        `json:"features"`
	Fields   []fieldResponse `json:"fields"`
}

// SchemaHandler handles schema requests.
type SchemaHandler struct {
	deps Dependencies
}

// NewSchemaHandler creates a new schema handler.
func NewSchemaHandler(deps Dependencies) *SchemaHandler {
	return &SchemaHandler{deps: deps}
}

// HandleSchema handles GET /api/v1/schema requests.
func (h *SchemaHandler) HandleSchema(w http.ResponseWriter, r *http.Request) {
	const op = "api.schema"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	names, err := h.deps.Schema(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "model_unavailable", WrapKind(op, ErrUnavailable, err))
		return
	}

	mode := h.deps.Mode()
	fields := h.deps.Fields()
	resp := schemaResponse{Mode: string(mode), Features: names, Fields: make([]fieldResponse, len(fields))}
	for i, f := range fields {
		resp.Fields[i] = fieldResponse{
			Name:    f.Name,
			Label:   f.Label,
			Default: f.Default(mode),
			Min:     f.Bounds.Min,
			Max:     f.Bounds.Max,
			Step:    f.Bounds.Step,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
