package outbound

import "github.com/goliatone/go-outbound/core"

type Config = core.Config

type EndpointConfig = core.EndpointConfig
type RetryConfig = core.RetryConfig
type IdentityConfig = core.IdentityConfig

type Option = core.Option

type Service = core.Service

type Delivery = core.Delivery
type DeliveryStatus = core.DeliveryStatus
type DeliveryOutcome = core.DeliveryOutcome
type DeliveryFilter = core.DeliveryFilter
type DeliveryPage = core.DeliveryPage
type DispatchRequest = core.DispatchRequest
type RetryFilter = core.RetryFilter
type SweepStats = core.SweepStats

type DeliveryStore = core.DeliveryStore
type Scheduler = core.Scheduler
type ConfigSource = core.ConfigSource
type Signer = core.Signer
type MetricsRecorder = core.MetricsRecorder

const (
	DeliveryStatusPending   = core.DeliveryStatusPending
	DeliveryStatusDelivered = core.DeliveryStatusDelivered
	DeliveryStatusFailed    = core.DeliveryStatusFailed
)

var (
	WithLogger          = core.WithLogger
	WithLoggerProvider  = core.WithLoggerProvider
	WithMetricsRecorder = core.WithMetricsRecorder
	WithErrorMapper     = core.WithErrorMapper
	WithConfigProvider  = core.WithConfigProvider
	WithOptionsResolver = core.WithOptionsResolver
	WithConfigSource    = core.WithConfigSource
	WithDeliveryStore   = core.WithDeliveryStore
	WithScheduler       = core.WithScheduler
	WithHTTPClient      = core.WithHTTPClient
	WithSigner          = core.WithSigner
	WithClock           = core.WithClock
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

// Setup builds a service and wraps it in a facade with command and query
// handlers ready to register on a dispatcher.
func Setup(cfg Config, opts ...Option) (*Facade, error) {
	service, err := core.NewService(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return NewFacade(service)
}
