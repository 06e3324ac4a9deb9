package features

import (
	"fmt"
	"strings"
)

// Schema is the ordered list of feature names an estimator expects.
type Schema struct {
	names []string
	index map[string]int
}

// NewSchema validates names and builds a Schema.
func NewSchema(names []string) (Schema, error) {
	if len(names) == 0 {
		return Schema{}, fmt.Errorf("%w: empty feature list", ErrSchemaMismatch)
	}
	s := Schema{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
	}
	for i, n := range names {
		if strings.TrimSpace(n) == "" {
			return Schema{}, fmt.Errorf("%w: blank feature name at position %d", ErrSchemaMismatch, i)
		}
		if _, dup := s.index[n]; dup {
			return Schema{}, fmt.Errorf("%w: duplicate feature %q", ErrSchemaMismatch, n)
		}
		s.names[i] = n
		s.index[n] = i
	}
	return s, nil
}

// Names returns a copy of the ordered feature names.
func (s Schema) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len is the number of features.
func (s Schema) Len() int { return len(s.names) }

// Index returns the position of name, or -1.
func (s Schema) Index(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

// Matches checks that the schema names exactly the given set, in any order.
func (s Schema) Matches(expected []string) error {
	var missing, extra []string
	want := make(map[string]struct{}, len(expected))
	for _, n := range expected {
		want[n] = struct{}{}
		if s.Index(n) < 0 {
			missing = append(missing, n)
		}
	}
	for _, n := range s.names {
		if _, ok := want[n]; !ok {
			extra = append(extra, n)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	return fmt.Errorf("%w: missing [%s] unexpected [%s]", ErrSchemaMismatch,
		strings.Join(missing, ", "), strings.Join(extra, ", "))
}
