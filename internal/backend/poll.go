// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package backend

import (
	"context"
	"errors"

	"github.com/ManuGH/locflow/internal/domain/workflow/ports"
	"github.com/ManuGH/locflow/internal/log"
)

// WaitLocalization polls the job until it completes, fails, or the poll
// budget is spent. Transient status errors consume an attempt; other errors
// end the wait immediately.
func (c *Client) WaitLocalization(ctx context.Context, jobID string) (ports.LocalizeResult, error) {
	logger := log.WithComponentFromContext(ctx, "backend")
	attempts := 0
	defer func() { pollAttempts.Observe(float64(attempts)) }()

	for attempt := 0; attempt < c.pollRetries; attempt++ {
		attempts++
		res, err := c.LocalizationStatus(ctx, jobID)
		switch {
		case err != nil && !countsAgainstBreaker(err) && !errors.Is(err, ErrNotFound):
			return ports.LocalizeResult{}, err
		case err != nil:
			logger.Debug().Err(err).Str(log.FieldJobID, jobID).Int("attempt", attempts).Msg("localization status unavailable")
		case res.Done():
			return res, nil
		case res.Status == ports.LocalizeFailed:
			return res, &APIError{Sentinel: ErrJobFailed, Operation: "localization_status", Body: jobID}
		}

		if attempt == c.pollRetries-1 {
			break
		}
		if err := sleepWithContext(ctx, c.capped(c.pollInterval, c.pollMax, attempt)); err != nil {
			return ports.LocalizeResult{}, wrapError("localization_status", err, 0, nil)
		}
	}
	return ports.LocalizeResult{}, &APIError{Sentinel: ErrPollExhausted, Operation: "localization_status", Body: jobID}
}
