package core

import (
	"context"
	"fmt"
)

// Sweep selects failed records still inside the retry window and under the
// attempt ceiling, increments their attempt counters, and re-runs the
// worker. Records past the ceiling or older than the window are left failed
// permanently; they simply stop matching the selection.
//
// Sweep re-reads each record before retrying so one moved to delivered by a
// concurrent invocation is skipped. The increment itself takes no row lock;
// a rare double-increment under concurrent sweeps is an accepted race.
func (s *Service) Sweep(ctx context.Context) (SweepStats, error) {
	if s == nil || s.store == nil {
		return SweepStats{}, fmt.Errorf("core: sweeper requires a delivery store")
	}
	startedAt := s.now()
	stats := SweepStats{}

	cfg, err := s.currentConfig(ctx)
	if err != nil {
		return stats, s.mapError(err)
	}
	if !cfg.Endpoint.Configured() {
		return stats, nil
	}

	candidates, err := s.store.ListRetryable(ctx, RetryFilter{
		MaxAttempts: cfg.Retry.MaxAttempts,
		Since:       s.now().Add(-cfg.Retry.Window),
		Limit:       cfg.Retry.BatchSize,
	})
	if err != nil {
		return stats, s.mapError(NewLogUnavailableError(err))
	}

	var sweepErr error
	for _, candidate := range candidates {
		current, found, err := s.store.Get(ctx, candidate.ID)
		if err != nil {
			sweepErr = joinErrors(sweepErr, err)
			continue
		}
		if !found || current.Status != DeliveryStatusFailed {
			continue
		}
		if current.Attempts >= cfg.Retry.MaxAttempts {
			continue
		}
		if _, err := s.store.IncrementAttempts(ctx, current.ID); err != nil {
			sweepErr = joinErrors(sweepErr, err)
			continue
		}
		stats.Selected++

		delivered, err := s.Deliver(ctx, current.ID)
		if err != nil {
			sweepErr = joinErrors(sweepErr, err)
			stats.Failed++
			continue
		}
		if delivered.Status == DeliveryStatusDelivered {
			stats.Delivered++
		} else {
			stats.Failed++
		}
	}

	s.observeOperation(ctx, startedAt, "sweep", sweepErr, map[string]any{
		"selected":  stats.Selected,
		"delivered": stats.Delivered,
		"failed":    stats.Failed,
	})
	if sweepErr != nil {
		return stats, s.mapError(sweepErr)
	}
	return stats, nil
}

func joinErrors(existing error, next error) error {
	if existing == nil {
		return next
	}
	if next == nil {
		return existing
	}
	return fmt.Errorf("%w; %v", existing, next)
}
