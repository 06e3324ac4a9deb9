package estimator

import "fmt"

type constantDoc struct {
	header
	Constant float64 `json:"constant"`
}

// Constant predicts the same value for every row, like a baseline regressor.
type Constant struct {
	value       float64
	width       int
	description string
}

func newConstant(h header, doc constantDoc) (*Constant, error) {
	if h.NFeatures <= 0 {
		return nil, fmt.Errorf("%w: constant model must declare n_features", ErrMalformed)
	}
	return &Constant{value: doc.Constant, width: h.NFeatures, description: describe(h, "Baseline model")}, nil
}

// Predict implements Estimator.
func (m *Constant) Predict(rows [][]float64) ([]float64, error) {
	if err := checkRows(rows, m.width); err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i := range out {
		out[i] = m.value
	}
	return out, nil
}

// NumFeatures implements Estimator.
func (m *Constant) NumFeatures() int { return m.width }

// Describe implements Estimator.
func (m *Constant) Describe() string { return m.description }
