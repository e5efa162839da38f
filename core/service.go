package core

import (
	"context"
	"net/http"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// Service orchestrates the dispatch/deliver/sweep lifecycle against the
// injected delivery store and scheduler. All configuration is injected
// explicitly; nothing reads ambient global state.
type Service struct {
	config          Config
	configSource    ConfigSource
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorMapper     ErrorMapper
	store           DeliveryStore
	scheduler       Scheduler
	httpClient      HTTPDoer
	signer          Signer
	now             func() time.Time
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("outbound", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("outbound"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.now == nil {
		builder.now = func() time.Time {
			return time.Now().UTC()
		}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if builder.store == nil {
		builder.store = NewMemoryDeliveryStore()
	}
	if builder.httpClient == nil {
		builder.httpClient = &http.Client{Timeout: finalConfig.RequestTimeout}
	}

	service := &Service{
		config:          finalConfig,
		configSource:    builder.configSource,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorMapper:     builder.errorMapper,
		store:           builder.store,
		scheduler:       builder.scheduler,
		httpClient:      builder.httpClient,
		signer:          builder.signer,
		now:             builder.now,
	}
	if service.scheduler == nil {
		service.scheduler = NewMemoryScheduler(service.Deliver)
	}
	return service, nil
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

// currentConfig consults the host-backed source when one is installed, so
// endpoint changes take effect on the next dispatch or delivery.
func (s *Service) currentConfig(ctx context.Context) (Config, error) {
	if s == nil {
		return Config{}, goerrors.New("core: service is nil", goerrors.CategoryInternal)
	}
	if s.configSource == nil {
		return s.config, nil
	}
	cfg, err := s.configSource.Current(ctx)
	if err != nil {
		return Config{}, err
	}
	if cfg.Retry.MaxAttempts < 1 {
		cfg.Retry = s.config.Retry
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = s.config.RequestTimeout
	}
	if cfg.ResponseBodyCap < 1 {
		cfg.ResponseBodyCap = s.config.ResponseBodyCap
	}
	return cfg, nil
}

func (s *Service) signerFor(cfg Config) Signer {
	if s != nil && s.signer != nil {
		return s.signer
	}
	return HMACSigner{Secret: cfg.Endpoint.Secret}
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	if mapped := s.errorMapper(err); mapped != nil {
		return mapped
	}
	return err
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper != nil {
		if mapped := mapper(err); mapped != nil {
			return mapped
		}
	}
	return err
}
