// Package prediction invokes an estimator on a single feature record.
package prediction

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/okian/homeval/internal/domain/estimator"
	"github.com/okian/homeval/internal/domain/features"
)

// Result is a single prediction in the model's native units.
type Result struct {
	Value    float64
	Features features.Record
	Model    string
	Latency  time.Duration
}

// Invoker submits one row to an estimator and extracts the scalar.
type Invoker struct{}

// NewInvoker creates an Invoker.
func NewInvoker() *Invoker {
	return &Invoker{}
}

// Predict runs the estimator on rec. Errors, panics, empty output and
// non-finite values all surface as ErrPredictionFault; nothing is retried.
func (i *Invoker) Predict(ctx context.Context, rec features.Record, est estimator.Estimator) (res Result, err error) {
	if est == nil {
		return Result{}, fmt.Errorf("%w: no estimator loaded", ErrPredictionFault)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			err = fmt.Errorf("%w: estimator panicked: %v", ErrPredictionFault, r)
		}
	}()

	out, err := est.Predict([][]float64{rec.Row()})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrPredictionFault, err)
	}
	if len(out) == 0 {
		return Result{}, fmt.Errorf("%w: estimator returned no values", ErrPredictionFault)
	}
	v := out[0]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Result{}, fmt.Errorf("%w: estimator returned %v", ErrPredictionFault, v)
	}

	return Result{
		Value:    v,
		Features: rec,
		Model:    est.Describe(),
		Latency:  time.Since(start),
	}, nil
}
