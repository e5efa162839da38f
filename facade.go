package outbound

import (
	"fmt"

	outboundcommand "github.com/goliatone/go-outbound/command"
	outboundquery "github.com/goliatone/go-outbound/query"
)

// CommandQueryService is the full surface the facade wires handlers around:
// the mutating dispatch/deliver/sweep operations plus the delivery log reads.
type CommandQueryService interface {
	outboundcommand.MutatingService
	outboundquery.DeliveryReader
}

type Commands struct {
	DispatchEvent *outboundcommand.DispatchEventCommand
	SendTest      *outboundcommand.SendTestCommand
	SweepRetries  *outboundcommand.SweepRetriesCommand
	Redeliver     *outboundcommand.RedeliverCommand
}

type Queries struct {
	GetDelivery    *outboundquery.GetDeliveryQuery
	ListDeliveries *outboundquery.ListDeliveriesQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	deliveryReader outboundquery.DeliveryReader
}

// WithDeliveryReader overrides the read side, for hosts that serve log reads
// from a replica or a cached store.
func WithDeliveryReader(reader outboundquery.DeliveryReader) FacadeOption {
	return func(options *facadeOptions) {
		options.deliveryReader = reader
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("outbound: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	reader := cfg.deliveryReader
	if reader == nil {
		reader = service
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		DispatchEvent: outboundcommand.NewDispatchEventCommand(service),
		SendTest:      outboundcommand.NewSendTestCommand(service),
		SweepRetries:  outboundcommand.NewSweepRetriesCommand(service),
		Redeliver:     outboundcommand.NewRedeliverCommand(service),
	}
	facade.queries = Queries{
		GetDelivery:    outboundquery.NewGetDeliveryQuery(reader),
		ListDeliveries: outboundquery.NewListDeliveriesQuery(reader),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}
