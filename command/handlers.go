package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-outbound/core"
)

type MutatingService interface {
	Dispatch(ctx context.Context, req core.DispatchRequest) (string, error)
	SendTest(ctx context.Context, data map[string]any) (bool, error)
	Sweep(ctx context.Context) (core.SweepStats, error)
	Deliver(ctx context.Context, deliveryID string) (core.Delivery, error)
}

type DispatchEventCommand struct {
	service MutatingService
}

func NewDispatchEventCommand(service MutatingService) *DispatchEventCommand {
	return &DispatchEventCommand{service: service}
}

func (c *DispatchEventCommand) Execute(ctx context.Context, msg DispatchEventMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: dispatch service is required")
	}
	out, err := c.service.Dispatch(ctx, core.DispatchRequest{
		EventType: msg.EventType,
		Data:      msg.Data,
		Async:     msg.Async,
	})
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SendTestCommand struct {
	service MutatingService
}

func NewSendTestCommand(service MutatingService) *SendTestCommand {
	return &SendTestCommand{service: service}
}

func (c *SendTestCommand) Execute(ctx context.Context, msg SendTestMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: test delivery service is required")
	}
	out, err := c.service.SendTest(ctx, msg.Data)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SweepRetriesCommand struct {
	service MutatingService
}

func NewSweepRetriesCommand(service MutatingService) *SweepRetriesCommand {
	return &SweepRetriesCommand{service: service}
}

func (c *SweepRetriesCommand) Execute(ctx context.Context, msg SweepRetriesMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: sweep service is required")
	}
	out, err := c.service.Sweep(ctx)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RedeliverCommand struct {
	service MutatingService
}

func NewRedeliverCommand(service MutatingService) *RedeliverCommand {
	return &RedeliverCommand{service: service}
}

func (c *RedeliverCommand) Execute(ctx context.Context, msg RedeliverMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: redeliver service is required")
	}
	out, err := c.service.Deliver(ctx, msg.DeliveryID)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
