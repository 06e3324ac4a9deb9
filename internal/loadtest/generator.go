package loadtest

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/okian/homeval/pkg/logger"
)

// generateRequests builds cfg.Requests request bodies with every feature
// drawn uniformly from its widget bounds and snapped to the step grid. A
// cfg.InvalidRatio share replaces one random feature with non-numeric text.
func generateRequests(ctx context.Context, cfg *Config, schema *Schema, stats *Stats) ([]Request, error) {
	if cfg.Requests <= 0 {
		return nil, ErrNoRequests
	}
	if len(schema.Fields) == 0 {
		return nil, ErrEmptySchema
	}

	reqs := make([]Request, cfg.Requests)
	for i := range reqs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during request generation: %w", err)
		}
		reqs[i] = generateSingleRequest(schema.Fields, getRandomFloat() < cfg.InvalidRatio)
	}

	stats.Generated = len(reqs)
	logger.Get().Info(ctx, "generated requests", logger.Int("count", len(reqs)))
	return reqs, nil
}

// generateSingleRequest draws one feature vector.
func generateSingleRequest(fields []SchemaField, invalid bool) Request {
	values := make(map[string]any, len(fields))
	for _, f := range fields {
		b := f.Bounds()
		values[f.Name] = b.Clamp(b.Min + getRandomFloat()*(b.Max-b.Min))
	}
	if invalid {
		values[fields[randomIndex(len(fields))].Name] = invalidText
	}
	return Request{ID: uuid.NewString(), Features: values, Invalid: invalid}
}

// getRandomFloat returns a uniformly distributed float in [0, 1).
func getRandomFloat() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	return float64(binary.BigEndian.Uint64(buf[:])>>11) / (1 << 53)
}

// randomIndex returns a uniformly distributed index in [0, n).
func randomIndex(n int) int {
	i := int(math.Floor(getRandomFloat() * float64(n)))
	if i >= n {
		i = n - 1
	}
	return i
}
