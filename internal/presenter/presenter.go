// Package presenter turns predictions and pipeline errors into what the
// page shows: a formatted price, a banner, and the form state.
package presenter

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/okian/homeval/internal/adapters/artifact"
	"github.com/okian/homeval/internal/domain/features"
	"github.com/okian/homeval/internal/domain/prediction"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Static page text.
const (
	Title       = "House Price Predictor"
	Header      = "California House Price Predictor"
	MetricLabel = "Predicted House Value"
	ButtonLabel = "Predict Price"
)

// User-facing error messages.
const (
	msgInvalidInput = "Please enter VALID numerical values."
	msgMissing      = "Model not found at %s"
	msgCorrupt      = "Failed to load model: %v"
	msgFault        = "Prediction failed: %v"
	msgUnexpected   = "Something went wrong: %v"
)

// Presenter formats results for display.
type Presenter struct {
	symbol     string
	multiplier float64
	printer    *message.Printer
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithCurrencySymbol sets the price prefix.
func WithCurrencySymbol(symbol string) Option {
	return func(p *Presenter) { p.symbol = symbol }
}

// WithMultiplier sets the factor applied to raw model output.
func WithMultiplier(m float64) Option {
	return func(p *Presenter) {
		if m > 0 {
			p.multiplier = m
		}
	}
}

// New creates a Presenter with "$" and a 100,000 multiplier.
func New(opts ...Option) *Presenter {
	p := &Presenter{
		symbol:     "$",
		multiplier: 100_000,
		printer:    message.NewPrinter(language.English),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Price scales a raw model value to currency units.
func (p *Presenter) Price(v float64) float64 {
	return v * p.multiplier
}

// Format renders a raw model value as a grouped, whole-unit price.
func (p *Presenter) Format(v float64) string {
	return p.symbol + p.printer.Sprintf("%.0f", p.Price(v))
}

// Message maps a pipeline error to the banner text.
func (p *Presenter) Message(err error) string {
	var le *artifact.LoadError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, features.ErrInvalidNumericInput):
		return msgInvalidInput
	case errors.Is(err, artifact.ErrMissingArtifact) && errors.As(err, &le):
		return fmt.Sprintf(msgMissing, le.Path)
	case errors.Is(err, artifact.ErrCorruptArtifact) && errors.As(err, &le):
		return fmt.Sprintf(msgCorrupt, le.Err)
	case errors.Is(err, artifact.ErrCorruptArtifact):
		return fmt.Sprintf(msgCorrupt, err)
	case errors.Is(err, prediction.ErrPredictionFault), errors.Is(err, features.ErrSchemaMismatch):
		return fmt.Sprintf(msgFault, err)
	default:
		return fmt.Sprintf(msgUnexpected, err)
	}
}

// IsFatal reports whether err stops the page from offering the form.
func IsFatal(err error) bool {
	return errors.Is(err, artifact.ErrMissingArtifact) || errors.Is(err, artifact.ErrCorruptArtifact)
}

// Metric is the displayed prediction.
type Metric struct {
	Label string
	Value string
	Raw   float64
}

// FieldView is one rendered input.
type FieldView struct {
	Name   string
	Label  string
	Value  string
	Widget bool
	Min    string
	Max    string
	Step   string
}

// View is everything the page template needs.
type View struct {
	Title       string
	Header      string
	ModelLine   string
	Caption     string
	ButtonLabel string
	Mode        features.Mode
	Fields      []FieldView
	Metric      *Metric
	Error       string
	// Last is the raw value of the displayed metric, round-tripped through
	// the form so a failed request keeps showing it.
	Last  string
	Fatal bool
}

// PageInput is the state of one render.
type PageInput struct {
	Mode      features.Mode
	Fields    []features.Field
	Raw       features.RawInput
	Model     string
	Accuracy  string
	ModelsDir string
	// Result is set when this request produced a prediction.
	Result *float64
	// Prior is the value shown before this request, if any.
	Prior *float64
	Err   error
}

// Page builds the view for one request.
func (p *Presenter) Page(in PageInput) View {
	v := View{
		Title:       Title,
		Header:      Header,
		ButtonLabel: ButtonLabel,
		Mode:        in.Mode,
		Error:       p.Message(in.Err),
	}
	if in.ModelsDir != "" {
		v.Caption = fmt.Sprintf("Model loaded from `%s/`", in.ModelsDir)
	}

	if in.Err != nil && IsFatal(in.Err) {
		v.Fatal = true
		return v
	}

	if in.Model != "" {
		v.ModelLine = fmt.Sprintf("%s (R² = %s)", in.Model, in.Accuracy)
	}

	v.Fields = make([]FieldView, len(in.Fields))
	for i, f := range in.Fields {
		fv := FieldView{Name: f.Name, Label: f.Label, Widget: in.Mode == features.ModeBoundedWidget}
		if raw, ok := in.Raw[f.Name]; ok {
			fv.Value = raw.Text
		} else {
			fv.Value = f.DefaultText
		}
		if fv.Widget {
			d := f.Bounds.Decimals()
			fv.Min = strconv.FormatFloat(f.Bounds.Min, 'f', d, 64)
			fv.Max = strconv.FormatFloat(f.Bounds.Max, 'f', d, 64)
			fv.Step = strconv.FormatFloat(f.Bounds.Step, 'f', -1, 64)
		}
		v.Fields[i] = fv
	}

	shown := in.Result
	if shown == nil {
		shown = in.Prior
	}
	if shown != nil {
		v.Metric = &Metric{Label: MetricLabel, Value: p.Format(*shown), Raw: *shown}
		v.Last = strconv.FormatFloat(*shown, 'g', -1, 64)
	}
	return v
}

// ParsePrior reads the round-tripped last value; anything unusable means none.
func ParsePrior(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
