package estimator

import (
	"fmt"
	"math"
)

type linearDoc struct {
	header
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// Linear is an ordinary least-squares style model: intercept + coef·x.
type Linear struct {
	coef        []float64
	intercept   float64
	description string
}

func newLinear(h header, doc linearDoc) (*Linear, error) {
	if len(doc.Coef) == 0 {
		return nil, fmt.Errorf("%w: linear model has no coefficients", ErrMalformed)
	}
	if h.NFeatures != 0 && h.NFeatures != len(doc.Coef) {
		return nil, fmt.Errorf("%w: n_features %d but %d coefficients", ErrMalformed, h.NFeatures, len(doc.Coef))
	}
	for _, c := range append([]float64{doc.Intercept}, doc.Coef...) {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("%w: non-finite coefficient", ErrMalformed)
		}
	}
	coef := make([]float64, len(doc.Coef))
	copy(coef, doc.Coef)
	return &Linear{coef: coef, intercept: doc.Intercept, description: describe(h, "Linear Regression model")}, nil
}

// NewLinear builds a linear model directly.
func NewLinear(coef []float64, intercept float64) (*Linear, error) {
	return newLinear(header{}, linearDoc{Coef: coef, Intercept: intercept})
}

// Predict implements Estimator.
func (m *Linear) Predict(rows [][]float64) ([]float64, error) {
	if err := checkRows(rows, len(m.coef)); err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		y := m.intercept
		for j, x := range row {
			y += m.coef[j] * x
		}
		out[i] = y
	}
	return out, nil
}

// NumFeatures implements Estimator.
func (m *Linear) NumFeatures() int { return len(m.coef) }

// Describe implements Estimator.
func (m *Linear) Describe() string { return m.description }
