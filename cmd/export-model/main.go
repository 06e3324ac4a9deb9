package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/okian/homeval/internal/adapters/artifact"
	"github.com/okian/homeval/internal/domain/estimator"
	"github.com/okian/homeval/internal/domain/features"
	"github.com/okian/homeval/pkg/logger"
)

// Ordinary least squares fit on the California housing training split.
var (
	sampleCoef = []float64{
		0.4367, 0.00944, -0.1073, 0.6451,
		-0.00000398, -0.00379, -0.4213, -0.4345,
	}
	sampleIntercept = -36.94
)

const sampleAccuracy = "0.5758"

type linearDocument struct {
	Kind        string    `json:"kind"`
	NFeatures   int       `json:"n_features"`
	Description string    `json:"description"`
	Coef        []float64 `json:"coef"`
	Intercept   float64   `json:"intercept"`
}

func main() {
	var (
		dir      = flag.String("dir", artifact.DefaultModelsDir, "Directory to write the artifacts into")
		accuracy = flag.String("accuracy", sampleAccuracy, "Accuracy label for test_r2.txt; empty skips the file")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	log := logger.Named("export")

	sample, err := linearSample(*accuracy)
	if err != nil {
		log.Fatal(ctx, "failed to build sample", logger.Error(err))
	}
	if err := artifact.Export(*dir, sample); err != nil {
		log.Fatal(ctx, "failed to export artifacts", logger.String("dir", *dir), logger.Error(err))
	}
	log.Info(ctx, "artifacts written",
		logger.String("dir", *dir),
		logger.Int("features", len(sample.Features)),
		logger.String("accuracy", *accuracy),
	)
}

// linearSample encodes the bundled linear fit over the eight form fields.
func linearSample(accuracy string) (artifact.Sample, error) {
	names := features.FieldNames(features.DefaultFields())
	doc, err := json.Marshal(linearDocument{
		Kind:        estimator.KindLinear,
		NFeatures:   len(names),
		Description: "Linear Regression model",
		Coef:        sampleCoef,
		Intercept:   sampleIntercept,
	})
	if err != nil {
		return artifact.Sample{}, err
	}
	return artifact.Sample{Model: doc, Features: names, Accuracy: accuracy}, nil
}
