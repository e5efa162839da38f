package gojob

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-outbound/core"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
)

const (
	JobIDDeliver = "webhooks.deliver"
	JobIDSweep   = "webhooks.sweep"
)

const deliveryIDParameter = "delivery_id"

// NewDeliveryMessage builds the queue message for a single webhook send. The
// delivery id doubles as the idempotency key so a re-enqueued id collapses to
// one pending job.
func NewDeliveryMessage(deliveryID string) (*core.JobExecutionMessage, error) {
	deliveryID = strings.TrimSpace(deliveryID)
	if deliveryID == "" {
		return nil, fmt.Errorf("gojob: delivery id is required")
	}
	return &core.JobExecutionMessage{
		JobID:          JobIDDeliver,
		Parameters:     map[string]any{deliveryIDParameter: deliveryID},
		IdempotencyKey: deliveryID,
	}, nil
}

// NewSweepMessage builds the queue message for a retry sweep cycle.
func NewSweepMessage() *core.JobExecutionMessage {
	return &core.JobExecutionMessage{
		JobID:      JobIDSweep,
		Parameters: map[string]any{},
	}
}

// DeliveryIDFromParameters extracts the delivery id a deliver job carries.
func DeliveryIDFromParameters(parameters map[string]any) (string, error) {
	raw, ok := parameters[deliveryIDParameter]
	if !ok {
		return "", fmt.Errorf("gojob: %s parameter is required", deliveryIDParameter)
	}
	id, ok := raw.(string)
	if !ok || strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("gojob: %s parameter must be a non-empty string", deliveryIDParameter)
	}
	return strings.TrimSpace(id), nil
}

// ToExecutionMessage maps an outbound runtime message to go-job.
func ToExecutionMessage(msg *core.JobExecutionMessage) *job.ExecutionMessage {
	if msg == nil {
		return nil
	}
	return &job.ExecutionMessage{
		JobID:          strings.TrimSpace(msg.JobID),
		Parameters:     copyAnyMap(msg.Parameters),
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		DedupPolicy:    job.DeduplicationPolicy(strings.TrimSpace(msg.DedupPolicy)),
	}
}

// FromExecutionMessage maps a go-job message into the outbound contract.
func FromExecutionMessage(msg *job.ExecutionMessage) *core.JobExecutionMessage {
	if msg == nil {
		return nil
	}
	return &core.JobExecutionMessage{
		JobID:          strings.TrimSpace(msg.JobID),
		Parameters:     copyAnyMap(msg.Parameters),
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		DedupPolicy:    strings.TrimSpace(string(msg.DedupPolicy)),
	}
}

type EnqueuerAdapter struct {
	enqueuer queue.Enqueuer
}

func NewEnqueuerAdapter(enqueuer queue.Enqueuer) *EnqueuerAdapter {
	return &EnqueuerAdapter{enqueuer: enqueuer}
}

func (a *EnqueuerAdapter) Enqueue(ctx context.Context, msg *core.JobExecutionMessage) error {
	if a == nil || a.enqueuer == nil {
		return fmt.Errorf("gojob: enqueuer is not configured")
	}
	if msg == nil {
		return fmt.Errorf("gojob: execution message is required")
	}
	_, err := a.enqueuer.Enqueue(ctx, ToExecutionMessage(msg))
	return err
}

// QueueScheduler satisfies the dispatcher's scheduler contract by enqueueing
// deliver jobs instead of spawning goroutines, so sends survive process
// restarts when the queue is durable.
type QueueScheduler struct {
	enqueuer core.JobEnqueuer
}

func NewQueueScheduler(enqueuer core.JobEnqueuer) (*QueueScheduler, error) {
	if enqueuer == nil {
		return nil, fmt.Errorf("gojob: job enqueuer is required")
	}
	return &QueueScheduler{enqueuer: enqueuer}, nil
}

func (s *QueueScheduler) ScheduleDelivery(ctx context.Context, deliveryID string) error {
	if s == nil || s.enqueuer == nil {
		return fmt.Errorf("gojob: queue scheduler is not configured")
	}
	msg, err := NewDeliveryMessage(deliveryID)
	if err != nil {
		return err
	}
	return s.enqueuer.Enqueue(ctx, msg)
}

// ScheduleSweep enqueues one retry sweep cycle. Hosts typically call this
// from a cron-style ticker.
func (s *QueueScheduler) ScheduleSweep(ctx context.Context) error {
	if s == nil || s.enqueuer == nil {
		return fmt.Errorf("gojob: queue scheduler is not configured")
	}
	return s.enqueuer.Enqueue(ctx, NewSweepMessage())
}

// WebhookRunner is the slice of the outbound service the worker executor
// needs: one-shot sends and sweep cycles.
type WebhookRunner interface {
	Deliver(ctx context.Context, deliveryID string) (core.Delivery, error)
	Sweep(ctx context.Context) (core.SweepStats, error)
}

// Executor runs dequeued webhook jobs on the worker side, routing by job id.
type Executor struct {
	runner WebhookRunner
}

func NewExecutor(runner WebhookRunner) (*Executor, error) {
	if runner == nil {
		return nil, fmt.Errorf("gojob: webhook runner is required")
	}
	return &Executor{runner: runner}, nil
}

func (e *Executor) Execute(ctx context.Context, msg *job.ExecutionMessage) error {
	if e == nil || e.runner == nil {
		return fmt.Errorf("gojob: executor is not configured")
	}
	if msg == nil {
		return fmt.Errorf("gojob: execution message is required")
	}

	switch strings.TrimSpace(msg.JobID) {
	case JobIDDeliver:
		deliveryID, err := DeliveryIDFromParameters(msg.Parameters)
		if err != nil {
			return err
		}
		// A failed attempt is recorded, not retried here; the sweeper owns
		// retry cadence. Only infrastructure errors bubble to the queue.
		_, err = e.runner.Deliver(ctx, deliveryID)
		return err
	case JobIDSweep:
		_, err := e.runner.Sweep(ctx)
		return err
	default:
		return fmt.Errorf("gojob: unknown job id %q", msg.JobID)
	}
}

func copyAnyMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

var (
	_ core.JobEnqueuer = (*EnqueuerAdapter)(nil)
	_ core.Scheduler   = (*QueueScheduler)(nil)
)
