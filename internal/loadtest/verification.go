package loadtest

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/okian/homeval/internal/domain/features"
	"github.com/okian/homeval/pkg/logger"
)

const invalidInputCode = "invalid_input"

// verifyOutcomes tallies outcomes into stats and checks each against what
// the service must answer. Non-numeric input is rejected with 400 in free
// text mode; widget mode falls back to defaults and still predicts.
func verifyOutcomes(ctx context.Context, cfg *Config, schema *Schema, outcomes []Outcome, stats *Stats) error {
	widget := features.Mode(schema.Mode) == features.ModeBoundedWidget
	log := logger.Get()

	for i := range outcomes {
		o := &outcomes[i]
		if o.Status != 0 {
			stats.Submitted++
		}
		if o.Err != "" || o.Status == 0 {
			stats.Failed++
			if cfg.Verbose {
				log.Warn(ctx, "request failed", logger.String("id", o.Request.ID), logger.String("error", o.Err))
			}
			continue
		}

		if o.Request.Invalid && !widget {
			if o.Status == http.StatusBadRequest && o.Error != nil && o.Error.Code == invalidInputCode {
				stats.Rejected++
				continue
			}
			stats.Mismatched++
			log.Warn(ctx, "invalid input was not rejected",
				logger.String("id", o.Request.ID), logger.Int("status", o.Status))
			continue
		}

		switch {
		case o.Status == http.StatusOK && o.Response != nil:
			if err := checkResponse(o.Response); err != nil {
				stats.Mismatched++
				log.Warn(ctx, "malformed prediction", logger.String("id", o.Request.ID), logger.Error(err))
				continue
			}
			stats.observePrice(o.Response.Price)
		case o.Status == http.StatusBadRequest:
			stats.Mismatched++
			log.Warn(ctx, "valid input was rejected", logger.String("id", o.Request.ID))
		default:
			stats.Failed++
			if cfg.Verbose && o.Error != nil {
				log.Warn(ctx, "prediction failed",
					logger.String("id", o.Request.ID),
					logger.Int("status", o.Status),
					logger.String("code", o.Error.Code),
					logger.String("message", o.Error.Message))
			}
		}
	}

	if stats.Mismatched > 0 {
		return fmt.Errorf("%w: %d of %d responses disagree", ErrVerification, stats.Mismatched, len(outcomes))
	}
	return nil
}

// checkResponse validates a success body.
func checkResponse(r *Response) error {
	if math.IsNaN(r.Price) || math.IsInf(r.Price, 0) {
		return fmt.Errorf("non-finite price %v", r.Price)
	}
	if !strings.HasPrefix(r.Formatted, "$") {
		return fmt.Errorf("formatted price %q has no currency symbol", r.Formatted)
	}
	return nil
}

// verifyReplay resubmits the first successful request and requires the
// exact same value back, since the cached estimator is read-only.
func verifyReplay(ctx context.Context, cfg *Config, outcomes []Outcome) error {
	for _, o := range outcomes {
		if o.Response == nil || o.Request.Invalid {
			continue
		}
		client := newHTTPClient(cfg.Timeout)
		again := submitSingleRequest(ctx, client, cfg.BaseURL+predictPath, o.Request)
		if again.Response == nil {
			return fmt.Errorf("%w: replay of %s returned status %d", ErrVerification, o.Request.ID, again.Status)
		}
		if again.Response.Value != o.Response.Value {
			return fmt.Errorf("%w: replay of %s returned %v, first run %v",
				ErrVerification, o.Request.ID, again.Response.Value, o.Response.Value)
		}
		logger.Get().Info(ctx, "replay verified", logger.String("id", o.Request.ID))
		return nil
	}
	return nil
}
