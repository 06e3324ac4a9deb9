package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/okian/homeval/internal/adapters/artifact"
	"github.com/okian/homeval/internal/domain/features"
	"github.com/okian/homeval/internal/domain/prediction"
	"github.com/okian/homeval/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestLinearSample(t *testing.T) {
	convey.Convey("Given the bundled linear sample written to disk", t, func() {
		base := t.TempDir()
		sample, err := linearSample(sampleAccuracy)
		convey.So(err, convey.ShouldBeNil)
		convey.So(artifact.Export(filepath.Join(base, artifact.DefaultModelsDir), sample), convey.ShouldBeNil)

		store, err := artifact.New(artifact.WithBaseDir(base), artifact.WithExpectedFeatures(sample.Features))
		convey.So(err, convey.ShouldBeNil)
		b, err := store.Load(context.Background())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then the default form predicts a plausible California price", func() {
			c := features.NewCollector(features.ModeFreeText, features.DefaultFields())
			rec, err := features.Build(c.Defaults(), b.Schema)
			convey.So(err, convey.ShouldBeNil)

			res, err := prediction.NewInvoker().Predict(context.Background(), rec, b.Estimator)
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.Value, convey.ShouldBeBetween, 1.0, 3.0)
			convey.So(b.Estimator.Describe(), convey.ShouldEqual, "Linear Regression model")
			convey.So(b.Accuracy, convey.ShouldEqual, sampleAccuracy)
		})
	})
}
