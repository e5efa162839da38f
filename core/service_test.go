package core

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func testConfig(url string) Config {
	cfg := DefaultConfig()
	cfg.Endpoint = EndpointConfig{
		URL:    url,
		Secret: "test-secret",
		Events: []string{"invoice.paid", "user.created"},
	}
	cfg.Identity = IdentityConfig{Name: "acme", URL: "https://acme.example.com"}
	return cfg
}

func newTestService(t *testing.T, cfg Config, options ...Option) *Service {
	t.Helper()
	service, err := NewService(cfg, options...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return service
}

// doerFunc lets tests fake the HTTP endpoint without a listener.
type doerFunc func(req *http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time {
		return at
	}
}

func jsonResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

type staticConfigSource struct {
	cfg Config
	err error
}

func (s staticConfigSource) Current(context.Context) (Config, error) {
	if s.err != nil {
		return Config{}, s.err
	}
	return s.cfg, nil
}

func TestNewService_DefaultsMemoryStoreAndScheduler(t *testing.T) {
	service := newTestService(t, testConfig("https://hooks.example.com/webhook"))
	if service.store == nil {
		t.Fatalf("expected memory store default")
	}
	if _, ok := service.store.(*MemoryDeliveryStore); !ok {
		t.Fatalf("expected memory delivery store, got %T", service.store)
	}
	if service.scheduler == nil {
		t.Fatalf("expected memory scheduler default")
	}
	if service.httpClient == nil {
		t.Fatalf("expected default http client")
	}
}

func TestNewService_RuntimeConfigWinsOverDefaults(t *testing.T) {
	cfg := testConfig("https://hooks.example.com/webhook")
	cfg.Retry.MaxAttempts = 3
	cfg.RequestTimeout = 5 * time.Second

	service := newTestService(t, cfg)
	resolved := service.Config()
	if resolved.Retry.MaxAttempts != 3 {
		t.Fatalf("expected runtime max attempts 3, got %d", resolved.Retry.MaxAttempts)
	}
	if resolved.RequestTimeout != 5*time.Second {
		t.Fatalf("expected runtime timeout 5s, got %s", resolved.RequestTimeout)
	}
	if resolved.Retry.BatchSize != defaultSweepBatchSize {
		t.Fatalf("expected default batch size fill, got %d", resolved.Retry.BatchSize)
	}
	if resolved.Endpoint.URL != "https://hooks.example.com/webhook" {
		t.Fatalf("expected endpoint url, got %q", resolved.Endpoint.URL)
	}
}

func TestCurrentConfig_BackfillsFromBuiltConfig(t *testing.T) {
	base := testConfig("https://hooks.example.com/webhook")
	fresh := Config{
		Endpoint: EndpointConfig{
			URL:    "https://hooks.example.com/v2",
			Secret: "rotated",
			Events: []string{"invoice.paid"},
		},
	}
	service := newTestService(t, base, WithConfigSource(staticConfigSource{cfg: fresh}))

	cfg, err := service.currentConfig(context.Background())
	if err != nil {
		t.Fatalf("current config: %v", err)
	}
	if cfg.Endpoint.URL != "https://hooks.example.com/v2" {
		t.Fatalf("expected fresh endpoint, got %q", cfg.Endpoint.URL)
	}
	if cfg.Retry.MaxAttempts != defaultMaxAttempts {
		t.Fatalf("expected retry backfill, got %d", cfg.Retry.MaxAttempts)
	}
	if cfg.RequestTimeout != defaultRequestTimeout {
		t.Fatalf("expected timeout backfill, got %s", cfg.RequestTimeout)
	}
	if cfg.ResponseBodyCap != defaultResponseBodyCap {
		t.Fatalf("expected body cap backfill, got %d", cfg.ResponseBodyCap)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	invalid := cfg
	invalid.Retry.MaxAttempts = 0
	if err := invalid.Validate(); err == nil {
		t.Fatalf("expected max attempts validation error")
	}

	invalid = cfg
	invalid.RequestTimeout = 0
	if err := invalid.Validate(); err == nil {
		t.Fatalf("expected timeout validation error")
	}

	invalid = cfg
	invalid.ServiceName = "  "
	if err := invalid.Validate(); err == nil {
		t.Fatalf("expected service name validation error")
	}
}

func TestEndpointConfig_EnabledMatchesCaseInsensitive(t *testing.T) {
	endpoint := EndpointConfig{
		URL:    "https://hooks.example.com/webhook",
		Events: []string{"Invoice.Paid", " user.created "},
	}
	if !endpoint.Enabled("invoice.paid") {
		t.Fatalf("expected case-insensitive event match")
	}
	if !endpoint.Enabled("user.created") {
		t.Fatalf("expected trimmed event match")
	}
	if endpoint.Enabled("invoice.voided") {
		t.Fatalf("expected unknown event to be disabled")
	}
	if endpoint.Enabled("") {
		t.Fatalf("expected empty event to be disabled")
	}
}

func TestDeliveryStatusLifecycle(t *testing.T) {
	if err := DeliveryStatus("retrying").Validate(); err == nil {
		t.Fatalf("expected unknown status to fail validation")
	}
	if !DeliveryStatusPending.CanTransitionTo(DeliveryStatusDelivered) {
		t.Fatalf("expected pending -> delivered")
	}
	if !DeliveryStatusFailed.CanTransitionTo(DeliveryStatusDelivered) {
		t.Fatalf("expected failed -> delivered")
	}
	if !DeliveryStatusFailed.CanTransitionTo(DeliveryStatusFailed) {
		t.Fatalf("expected failed -> failed for repeated attempts")
	}
	if DeliveryStatusDelivered.CanTransitionTo(DeliveryStatusFailed) {
		t.Fatalf("delivered must be terminal")
	}
	if DeliveryStatusDelivered.CanTransitionTo(DeliveryStatusDelivered) {
		t.Fatalf("delivered must be terminal even for delivered writes")
	}
}

func TestWebhookErrorMapper_Envelopes(t *testing.T) {
	mapped := webhookErrorMapper(ErrDeliveryNotFound)
	if mapped == nil {
		t.Fatalf("expected mapped error")
	}
	if mapped.TextCode != WebhookErrorNotFound {
		t.Fatalf("expected not found text code, got %q", mapped.TextCode)
	}
	if mapped.Code != http.StatusNotFound {
		t.Fatalf("expected 404 code, got %d", mapped.Code)
	}

	unavailable := webhookErrorMapper(NewLogUnavailableError(context.DeadlineExceeded))
	if unavailable.TextCode != WebhookErrorLogUnavailable {
		t.Fatalf("expected log unavailable text code, got %q", unavailable.TextCode)
	}
	if unavailable.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 code, got %d", unavailable.Code)
	}
	if !IsLogUnavailable(unavailable) {
		t.Fatalf("expected IsLogUnavailable to match")
	}
	if !strings.Contains(unavailable.Error(), "delivery log unavailable") {
		t.Fatalf("expected wrapped message, got %q", unavailable.Error())
	}
}
