package features

import (
	"bytes"
	"encoding/json"
)

// Record is a single row of feature values in schema order.
type Record struct {
	names  []string
	values []float64
}

// Len is the number of features in the record.
func (r Record) Len() int { return len(r.names) }

// Names returns the feature names in order.
func (r Record) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Row returns the values in schema order.
func (r Record) Row() []float64 {
	out := make([]float64, len(r.values))
	copy(out, r.values)
	return out
}

// Value looks up a feature by name.
func (r Record) Value(name string) (float64, bool) {
	for i, n := range r.names {
		if n == name {
			return r.values[i], true
		}
	}
	return 0, false
}

// MarshalJSON encodes the record as an object whose keys keep schema order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, n := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(n)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
