package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

const defaultScheduleTimeout = time.Minute

// MemoryScheduler runs each scheduled delivery on its own goroutine. The
// originating request never blocks on network I/O: ScheduleDelivery returns
// as soon as the work is handed off, and the delivery runs on a context
// detached from the caller's cancellation.
type MemoryScheduler struct {
	deliver DeliverFunc
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewMemoryScheduler(deliver DeliverFunc) *MemoryScheduler {
	return &MemoryScheduler{
		deliver: deliver,
		timeout: defaultScheduleTimeout,
	}
}

func (s *MemoryScheduler) ScheduleDelivery(ctx context.Context, deliveryID string) error {
	if s == nil || s.deliver == nil {
		return fmt.Errorf("core: scheduler is not configured")
	}
	deliveryID = strings.TrimSpace(deliveryID)
	if deliveryID == "" {
		return fmt.Errorf("core: delivery id is required")
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.scheduleTimeout())
		defer cancel()
		_, _ = s.deliver(runCtx, deliveryID)
	}()
	return nil
}

// Wait blocks until all in-flight deliveries finish. Intended for shutdown
// hooks and tests.
func (s *MemoryScheduler) Wait() {
	if s == nil {
		return
	}
	s.wg.Wait()
}

func (s *MemoryScheduler) scheduleTimeout() time.Duration {
	if s != nil && s.timeout > 0 {
		return s.timeout
	}
	return defaultScheduleTimeout
}

var _ Scheduler = (*MemoryScheduler)(nil)
