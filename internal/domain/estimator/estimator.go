// Package estimator defines the regression capability the predictor calls
// and decoders for the JSON model documents exported next to it.
package estimator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Estimator maps feature rows to scalar predictions. Implementations are
// immutable after decoding and safe for concurrent use.
type Estimator interface {
	// Predict returns one scalar per row.
	Predict(rows [][]float64) ([]float64, error)
	// NumFeatures is the row width the estimator was fitted on.
	NumFeatures() int
	// Describe is a short human-readable model name.
	Describe() string
}

// Model kinds understood by Decode.
const (
	KindLinear           = "linear"
	KindDecisionTree     = "decision_tree"
	KindRandomForest     = "random_forest"
	KindGradientBoosting = "gradient_boosting"
	KindConstant         = "constant"
)

// header is the part common to every model document.
type header struct {
	Kind        string `json:"kind"`
	NFeatures   int    `json:"n_features"`
	Description string `json:"description"`
}

// Decode reads a model document and builds the estimator it describes.
func Decode(r io.Reader) (Estimator, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read model document: %w", err)
	}
	return Unmarshal(data)
}

// Unmarshal builds an estimator from a model document.
func Unmarshal(data []byte) (Estimator, error) {
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if h.NFeatures < 0 {
		return nil, fmt.Errorf("%w: negative n_features", ErrMalformed)
	}

	switch strings.ToLower(strings.TrimSpace(h.Kind)) {
	case KindLinear:
		var doc linearDoc
		if err := strictUnmarshal(data, &doc); err != nil {
			return nil, err
		}
		return newLinear(h, doc)
	case KindDecisionTree:
		var doc treeModelDoc
		if err := strictUnmarshal(data, &doc); err != nil {
			return nil, err
		}
		return newDecisionTree(h, doc)
	case KindRandomForest:
		var doc forestDoc
		if err := strictUnmarshal(data, &doc); err != nil {
			return nil, err
		}
		return newRandomForest(h, doc)
	case KindGradientBoosting:
		var doc boostingDoc
		if err := strictUnmarshal(data, &doc); err != nil {
			return nil, err
		}
		return newGradientBoosting(h, doc)
	case KindConstant:
		var doc constantDoc
		if err := strictUnmarshal(data, &doc); err != nil {
			return nil, err
		}
		return newConstant(h, doc)
	case "":
		return nil, fmt.Errorf("%w: missing kind", ErrMalformed)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, h.Kind)
	}
}

func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return nil
}

// checkRows validates every row against the fitted width.
func checkRows(rows [][]float64, width int) error {
	for i, row := range rows {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d values, model expects %d", ErrFeatureCount, i, len(row), width)
		}
	}
	return nil
}

func describe(h header, fallback string) string {
	if d := strings.TrimSpace(h.Description); d != "" {
		return d
	}
	return fallback
}
