// Package features turns form input into ordered feature records.
package features

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Mode selects how form inputs are captured.
type Mode string

const (
	// ModeFreeText captures raw strings; parsing is deferred to Build.
	ModeFreeText Mode = "free_text"
	// ModeBoundedWidget captures clamped numbers; capture cannot fail.
	ModeBoundedWidget Mode = "bounded_widget"
)

// ParseMode parses a configured mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeFreeText:
		return ModeFreeText, nil
	case ModeBoundedWidget:
		return ModeBoundedWidget, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Bounds is the {min, max, step} triple of a widget input.
type Bounds struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// Clamp pins v to [Min, Max] and snaps it onto the step grid anchored at Min.
func (b Bounds) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return b.Min
	}
	v = math.Max(b.Min, math.Min(b.Max, v))
	if b.Step <= 0 {
		return v
	}
	scale := math.Pow(10, float64(b.Decimals()))
	steps := math.Round((v - b.Min) / b.Step)
	snapped := math.Round((b.Min+steps*b.Step)*scale) / scale
	if snapped > b.Max {
		// Max is off the grid; fall back to the last step below it.
		snapped = math.Round((snapped-b.Step)*scale) / scale
	}
	return snapped
}

// Decimals is the number of fractional digits in Step.
func (b Bounds) Decimals() int {
	s := strconv.FormatFloat(b.Step, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}

// Field describes one form input.
type Field struct {
	Name        string
	Label       string
	DefaultText string
	Bounds      Bounds
}

// Default returns the field's default for the given mode.
func (f Field) Default(mode Mode) float64 {
	v, err := strconv.ParseFloat(f.DefaultText, 64)
	if err != nil {
		v = f.Bounds.Min
	}
	if mode == ModeBoundedWidget {
		return f.Bounds.Clamp(v)
	}
	return v
}

// DefaultFields returns the eight housing inputs in display order.
func DefaultFields() []Field {
	return []Field{
		{Name: "MedInc", Label: "Median Income (× $10k)", DefaultText: "3.0", Bounds: Bounds{Min: 0.5, Max: 15.0, Step: 0.1}},
		{Name: "HouseAge", Label: "House Age (years)", DefaultText: "20", Bounds: Bounds{Min: 1, Max: 52, Step: 1}},
		{Name: "AveRooms", Label: "Avg Rooms", DefaultText: "5.5", Bounds: Bounds{Min: 2.0, Max: 15.0, Step: 0.5}},
		{Name: "AveBedrms", Label: "Avg Bedrooms", DefaultText: "1.2", Bounds: Bounds{Min: 1.0, Max: 5.0, Step: 0.1}},
		{Name: "Population", Label: "Population", DefaultText: "1425", Bounds: Bounds{Min: 100, Max: 10000, Step: 100}},
		{Name: "AveOccup", Label: "Avg Occupancy", DefaultText: "3.0", Bounds: Bounds{Min: 1.0, Max: 6.0, Step: 0.1}},
		{Name: "Latitude", Label: "Latitude", DefaultText: "34.0", Bounds: Bounds{Min: 32.0, Max: 42.0, Step: 0.1}},
		{Name: "Longitude", Label: "Longitude", DefaultText: "-118.0", Bounds: Bounds{Min: -124.5, Max: -114.0, Step: 0.1}},
	}
}

// FieldNames returns the names of fields in order.
func FieldNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}
