package presenter_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/okian/homeval/internal/adapters/artifact"
	"github.com/okian/homeval/internal/domain/features"
	"github.com/okian/homeval/internal/domain/prediction"
	"github.com/okian/homeval/internal/presenter"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFormat(t *testing.T) {
	Convey("Given the default presenter", t, func() {
		p := presenter.New()

		Convey("Then model units become grouped dollars", func() {
			So(p.Format(2.0), ShouldEqual, "$200,000")
			So(p.Format(4.52601), ShouldEqual, "$452,601")
			So(p.Format(0.14999), ShouldEqual, "$14,999")
			So(p.Format(12.5), ShouldEqual, "$1,250,000")
			So(p.Price(1.5), ShouldEqual, 150000)
		})
	})

	Convey("Given a custom symbol and multiplier", t, func() {
		p := presenter.New(presenter.WithCurrencySymbol("€"), presenter.WithMultiplier(1000), presenter.WithMultiplier(-1))

		Convey("Then both are applied and invalid multipliers ignored", func() {
			So(p.Format(2.5), ShouldEqual, "€2,500")
		})
	})
}

func TestMessage(t *testing.T) {
	Convey("Given pipeline errors", t, func() {
		p := presenter.New()

		Convey("Then each maps to its banner", func() {
			So(p.Message(nil), ShouldBeEmpty)
			So(p.Message(features.ErrInvalidNumericInput), ShouldEqual, "Please enter VALID numerical values.")

			missing := &artifact.LoadError{Kind: artifact.ErrMissingArtifact, Path: "/srv/notebooks/models/best_model.json"}
			So(p.Message(missing), ShouldEqual, "Model not found at /srv/notebooks/models/best_model.json")

			corrupt := &artifact.LoadError{Kind: artifact.ErrCorruptArtifact, Path: "/m", Err: errors.New("unexpected EOF")}
			So(p.Message(corrupt), ShouldEqual, "Failed to load model: unexpected EOF")

			fault := fmt.Errorf("%w: boom", prediction.ErrPredictionFault)
			So(p.Message(fault), ShouldEqual, "Prediction failed: prediction fault: boom")

			So(p.Message(errors.New("other")), ShouldContainSubstring, "other")
		})

		Convey("And only artifact errors are fatal", func() {
			So(presenter.IsFatal(&artifact.LoadError{Kind: artifact.ErrMissingArtifact}), ShouldBeTrue)
			So(presenter.IsFatal(&artifact.LoadError{Kind: artifact.ErrCorruptArtifact}), ShouldBeTrue)
			So(presenter.IsFatal(features.ErrInvalidNumericInput), ShouldBeFalse)
		})
	})
}

func TestPage(t *testing.T) {
	Convey("Given a page input in free-text mode", t, func() {
		p := presenter.New()
		fields := features.DefaultFields()
		in := presenter.PageInput{
			Mode:      features.ModeFreeText,
			Fields:    fields,
			Raw:       features.NewCollector(features.ModeFreeText, fields).Defaults(),
			Model:     "Linear Regression model",
			Accuracy:  "N/A",
			ModelsDir: "notebooks/models",
		}

		Convey("When idle", func() {
			v := p.Page(in)

			Convey("Then only the header, accuracy and form render", func() {
				So(v.ModelLine, ShouldEqual, "Linear Regression model (R² = N/A)")
				So(v.ButtonLabel, ShouldEqual, "Predict Price")
				So(v.Metric, ShouldBeNil)
				So(v.Last, ShouldBeEmpty)
				So(v.Fields[6].Value, ShouldEqual, "34.0")
				So(v.Fields[6].Widget, ShouldBeFalse)
			})
		})

		Convey("When a result and a prior both exist", func() {
			res, prior := 3.0, 1.0
			in.Result, in.Prior = &res, &prior
			v := p.Page(in)

			Convey("Then the new result wins", func() {
				So(v.Metric.Value, ShouldEqual, "$300,000")
				So(v.Last, ShouldEqual, "3")
			})
		})

		Convey("When loading failed", func() {
			in.Err = &artifact.LoadError{Kind: artifact.ErrMissingArtifact, Path: "/x/best_model.json"}
			v := p.Page(in)

			Convey("Then the page is fatal with no form", func() {
				So(v.Fatal, ShouldBeTrue)
				So(v.Fields, ShouldBeNil)
				So(v.ModelLine, ShouldBeEmpty)
			})
		})
	})
}

func TestParsePrior(t *testing.T) {
	Convey("Given round-tripped last values", t, func() {
		So(presenter.ParsePrior(""), ShouldBeNil)
		So(presenter.ParsePrior("abc"), ShouldBeNil)
		So(presenter.ParsePrior("NaN"), ShouldBeNil)
		So(presenter.ParsePrior("-Inf"), ShouldBeNil)
		So(*presenter.ParsePrior("2.5"), ShouldEqual, 2.5)
	})
}
