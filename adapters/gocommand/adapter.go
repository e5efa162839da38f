// Package gocommand wires the webhook command and query handlers into a
// go-command registry and the process-wide dispatcher. Hosts that already run
// a command bus register the delivery operations here instead of constructing
// handlers by hand.
package gocommand

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	outboundcommand "github.com/goliatone/go-outbound/command"
	outboundquery "github.com/goliatone/go-outbound/query"
)

// ValidateMessageContract enforces the Type() plus optional Validate()
// contract every webhook message in this module follows.
func ValidateMessageContract(msg any) error {
	if err := command.ValidateMessage(msg); err != nil {
		return err
	}
	m, ok := msg.(command.Message)
	if !ok {
		return fmt.Errorf("gocommand: message must implement Type() string")
	}
	if strings.TrimSpace(m.Type()) == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	return nil
}

// RegistryAdapter narrows the go-command registry to what the webhook
// handlers need: command and query registration plus resolver hooks used to
// mirror delivery commands into a job queue.
type RegistryAdapter struct {
	registry *command.Registry
}

func NewRegistryAdapter(registry *command.Registry) *RegistryAdapter {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) Registry() *command.Registry {
	if a == nil {
		return nil
	}
	return a.registry
}

func (a *RegistryAdapter) RegisterCommand(cmd any) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.RegisterCommand(cmd)
}

func (a *RegistryAdapter) RegisterQuery(qry any) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.RegisterCommand(qry)
}

func (a *RegistryAdapter) AddResolver(key string, resolver command.Resolver) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.AddResolver(strings.TrimSpace(key), resolver)
}

// AddQueueResolver mirrors registered commands into a go-job queue registry,
// which is how async webhook deliveries reach the queue worker.
func (a *RegistryAdapter) AddQueueResolver(key string, queueRegistry *jobqueuecommand.Registry) error {
	if queueRegistry == nil {
		return fmt.Errorf("gocommand: queue registry is required")
	}
	return a.AddResolver(key, jobqueuecommand.QueueResolver(queueRegistry))
}

func (a *RegistryAdapter) HasResolver(key string) bool {
	if a == nil || a.registry == nil {
		return false
	}
	return a.registry.HasResolver(strings.TrimSpace(key))
}

func (a *RegistryAdapter) Initialize() error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.Initialize()
}

func SubscribeCommand[T any](cmd command.Commander[T], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
}

func SubscribeQuery[T any, R any](qry command.Querier[T, R], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeQuery(qry, runnerOpts...)
}

func Dispatch[T any](ctx context.Context, msg T) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	return commanddispatcher.Query[T, R](ctx, msg)
}

func RegisterAndSubscribe[T any](
	adapter *RegistryAdapter,
	cmd command.Commander[T],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if cmd == nil {
		return nil, fmt.Errorf("gocommand: command is required")
	}
	subscription := SubscribeCommand(cmd, runnerOpts...)
	if err := adapter.RegisterCommand(cmd); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

func RegisterAndSubscribeQuery[T any, R any](
	adapter *RegistryAdapter,
	qry command.Querier[T, R],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if qry == nil {
		return nil, fmt.Errorf("gocommand: query is required")
	}
	subscription := SubscribeQuery(qry, runnerOpts...)
	if err := adapter.RegisterQuery(qry); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

// RegisterWebhookCommands registers and subscribes the four delivery
// mutations (dispatch, send test, sweep, redeliver) against one service.
// On a partial failure every subscription created so far is released.
func RegisterWebhookCommands(
	adapter *RegistryAdapter,
	service outboundcommand.MutatingService,
	runnerOpts ...runner.Option,
) ([]commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if service == nil {
		return nil, fmt.Errorf("gocommand: webhook service is required")
	}

	var subscriptions []commanddispatcher.Subscription
	release := func() {
		for _, subscription := range subscriptions {
			if subscription != nil {
				subscription.Unsubscribe()
			}
		}
	}

	dispatchSub, err := RegisterAndSubscribe(adapter, outboundcommand.NewDispatchEventCommand(service), runnerOpts...)
	if err != nil {
		return nil, err
	}
	subscriptions = append(subscriptions, dispatchSub)

	testSub, err := RegisterAndSubscribe(adapter, outboundcommand.NewSendTestCommand(service), runnerOpts...)
	if err != nil {
		release()
		return nil, err
	}
	subscriptions = append(subscriptions, testSub)

	sweepSub, err := RegisterAndSubscribe(adapter, outboundcommand.NewSweepRetriesCommand(service), runnerOpts...)
	if err != nil {
		release()
		return nil, err
	}
	subscriptions = append(subscriptions, sweepSub)

	redeliverSub, err := RegisterAndSubscribe(adapter, outboundcommand.NewRedeliverCommand(service), runnerOpts...)
	if err != nil {
		release()
		return nil, err
	}
	subscriptions = append(subscriptions, redeliverSub)

	return subscriptions, nil
}

// RegisterWebhookQueries registers and subscribes the delivery log reads
// (get by id, paginated list) against one reader.
func RegisterWebhookQueries(
	adapter *RegistryAdapter,
	reader outboundquery.DeliveryReader,
	runnerOpts ...runner.Option,
) ([]commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if reader == nil {
		return nil, fmt.Errorf("gocommand: delivery reader is required")
	}

	getSub, err := RegisterAndSubscribeQuery(adapter, outboundquery.NewGetDeliveryQuery(reader), runnerOpts...)
	if err != nil {
		return nil, err
	}
	listSub, err := RegisterAndSubscribeQuery(adapter, outboundquery.NewListDeliveriesQuery(reader), runnerOpts...)
	if err != nil {
		if getSub != nil {
			getSub.Unsubscribe()
		}
		return nil, err
	}
	return []commanddispatcher.Subscription{getSub, listSub}, nil
}
