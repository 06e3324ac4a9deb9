package features

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Build converts captured values into a record ordered by schema.
// Any unparsable free-text value fails the whole build with
// ErrInvalidNumericInput. Values the schema does not name, and schema
// names without a value, fail with ErrSchemaMismatch.
func Build(raw RawInput, schema Schema) (Record, error) {
	parsed := make(map[string]float64, len(raw))
	for name, v := range raw {
		if v.Numeric {
			parsed[name] = v.Number
			continue
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return Record{}, ErrInvalidNumericInput
		}
		parsed[name] = n
	}

	var extra []string
	for name := range parsed {
		if schema.Index(name) < 0 {
			extra = append(extra, name)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return Record{}, fmt.Errorf("%w: unexpected [%s]", ErrSchemaMismatch, strings.Join(extra, ", "))
	}

	rec := Record{
		names:  schema.Names(),
		values: make([]float64, schema.Len()),
	}
	for i, name := range rec.names {
		n, ok := parsed[name]
		if !ok {
			return Record{}, fmt.Errorf("%w: missing %q", ErrSchemaMismatch, name)
		}
		rec.values[i] = n
	}
	return rec, nil
}
