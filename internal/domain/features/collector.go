package features

import (
	"net/url"
	"strconv"
	"strings"
)

// Value is one captured input. Free-text captures keep Text only;
// widget captures are Numeric and also carry the canonical Text.
type Value struct {
	Text    string
	Number  float64
	Numeric bool
}

// RawInput maps field names to captured values.
type RawInput map[string]Value

// Lookup returns the submitted text for a field and whether it was present.
type Lookup func(name string) (string, bool)

// FromValues adapts submitted form values.
func FromValues(v url.Values) Lookup {
	return func(name string) (string, bool) {
		if !v.Has(name) {
			return "", false
		}
		return v.Get(name), true
	}
}

// FromMap adapts a plain map.
func FromMap(m map[string]string) Lookup {
	return func(name string) (string, bool) {
		s, ok := m[name]
		return s, ok
	}
}

// Collector captures the form fields according to the input mode.
type Collector struct {
	mode   Mode
	fields []Field
}

// NewCollector builds a collector for the given mode and fields.
func NewCollector(mode Mode, fields []Field) *Collector {
	fs := make([]Field, len(fields))
	copy(fs, fields)
	return &Collector{mode: mode, fields: fs}
}

// Mode returns the capture mode.
func (c *Collector) Mode() Mode { return c.mode }

// Fields returns the fields in display order.
func (c *Collector) Fields() []Field {
	out := make([]Field, len(c.fields))
	copy(out, c.fields)
	return out
}

// Names returns the field names in display order.
func (c *Collector) Names() []string { return FieldNames(c.fields) }

// Defaults returns the idle form state.
func (c *Collector) Defaults() RawInput {
	return c.Collect(func(string) (string, bool) { return "", false })
}

// Collect captures every field. Absent fields keep their defaults.
// In widget mode capture never fails: bad text falls back to the default
// and numbers are clamped to the field bounds.
func (c *Collector) Collect(lookup Lookup) RawInput {
	raw := make(RawInput, len(c.fields))
	for _, f := range c.fields {
		text, ok := lookup(f.Name)
		switch c.mode {
		case ModeBoundedWidget:
			n := f.Default(ModeBoundedWidget)
			if ok {
				if v, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
					n = f.Bounds.Clamp(v)
				}
			}
			raw[f.Name] = Value{
				Text:    strconv.FormatFloat(n, 'f', f.Bounds.Decimals(), 64),
				Number:  n,
				Numeric: true,
			}
		default:
			if !ok {
				text = f.DefaultText
			}
			raw[f.Name] = Value{Text: text}
		}
	}
	return raw
}
