package sqlstore

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-outbound/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

type stubBaseDeliveryStore struct {
	mu          sync.Mutex
	record      core.Delivery
	getCalls    int
	markCalls   int
	bumpCalls   int
	createCalls int
	getErr      error
}

func (s *stubBaseDeliveryStore) Create(_ context.Context, in core.CreateDeliveryInput) (core.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	s.record = core.Delivery{
		ID:        "delivery-1",
		EventType: in.EventType,
		Payload:   append([]byte(nil), in.Payload...),
		Status:    core.DeliveryStatusPending,
		Attempts:  1,
		CreatedAt: time.Now().UTC(),
	}
	return s.record, nil
}

func (s *stubBaseDeliveryStore) Get(_ context.Context, id string) (core.Delivery, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	if s.getErr != nil {
		return core.Delivery{}, false, s.getErr
	}
	if s.record.ID != id {
		return core.Delivery{}, false, nil
	}
	return s.record, true, nil
}

func (s *stubBaseDeliveryStore) MarkOutcome(_ context.Context, id string, outcome core.DeliveryOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markCalls++
	if s.record.ID != id {
		return core.ErrDeliveryNotFound
	}
	s.record.Status = outcome.Status
	s.record.ResponseCode = outcome.ResponseCode
	s.record.ResponseBody = outcome.ResponseBody
	sentAt := outcome.SentAt.UTC()
	s.record.SentAt = &sentAt
	return nil
}

func (s *stubBaseDeliveryStore) IncrementAttempts(_ context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bumpCalls++
	if s.record.ID != id {
		return 0, core.ErrDeliveryNotFound
	}
	s.record.Attempts++
	return s.record.Attempts, nil
}

func (s *stubBaseDeliveryStore) ListRetryable(context.Context, core.RetryFilter) ([]core.Delivery, error) {
	return nil, nil
}

func (s *stubBaseDeliveryStore) List(context.Context, core.DeliveryFilter) (core.DeliveryPage, error) {
	return core.DeliveryPage{}, nil
}

func newTestDeliveryCacheService(t *testing.T) repositorycache.CacheService {
	t.Helper()
	config := repositorycache.DefaultConfig()
	config.TTL = time.Minute
	service, err := repositorycache.NewCacheService(config)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	return service
}

func newCachedStore(t *testing.T, base *stubBaseDeliveryStore) *CachedDeliveryStore {
	t.Helper()
	store, err := NewCachedDeliveryStore(base, newTestDeliveryCacheService(t))
	if err != nil {
		t.Fatalf("new cached delivery store: %v", err)
	}
	return store
}

func TestCachedDeliveryStore_Get_MissFetchThenHit(t *testing.T) {
	base := &stubBaseDeliveryStore{record: core.Delivery{
		ID:        "delivery-1",
		EventType: "invoice.paid",
		Status:    core.DeliveryStatusPending,
		Attempts:  1,
	}}
	store := newCachedStore(t, base)

	if _, found, err := store.Get(context.Background(), "delivery-1"); err != nil || !found {
		t.Fatalf("first get: found=%v err=%v", found, err)
	}
	if base.getCalls != 1 {
		t.Fatalf("expected first get to fetch base store once, got %d", base.getCalls)
	}

	if _, found, err := store.Get(context.Background(), "delivery-1"); err != nil || !found {
		t.Fatalf("second get: found=%v err=%v", found, err)
	}
	if base.getCalls != 1 {
		t.Fatalf("expected second get to be cache hit, base get calls=%d", base.getCalls)
	}
}

func TestCachedDeliveryStore_WritesInvalidateCachedRecord(t *testing.T) {
	base := &stubBaseDeliveryStore{record: core.Delivery{
		ID:        "delivery-1",
		EventType: "invoice.paid",
		Status:    core.DeliveryStatusPending,
		Attempts:  1,
	}}
	store := newCachedStore(t, base)

	if _, _, err := store.Get(context.Background(), "delivery-1"); err != nil {
		t.Fatalf("prime cache: %v", err)
	}
	if err := store.MarkOutcome(context.Background(), "delivery-1", core.DeliveryOutcome{
		Status:       core.DeliveryStatusDelivered,
		ResponseCode: http.StatusOK,
		SentAt:       time.Now().UTC(),
	}); err != nil {
		t.Fatalf("mark outcome: %v", err)
	}
	if base.markCalls != 1 {
		t.Fatalf("expected one base write, got %d", base.markCalls)
	}

	record, _, err := store.Get(context.Background(), "delivery-1")
	if err != nil {
		t.Fatalf("get after invalidation: %v", err)
	}
	if base.getCalls != 2 {
		t.Fatalf("expected invalidated key to force second base read, got %d", base.getCalls)
	}
	if record.Status != core.DeliveryStatusDelivered {
		t.Fatalf("expected refreshed status delivered, got %q", record.Status)
	}

	if _, err := store.IncrementAttempts(context.Background(), "delivery-1"); err != nil {
		t.Fatalf("increment attempts: %v", err)
	}
	refreshed, _, err := store.Get(context.Background(), "delivery-1")
	if err != nil {
		t.Fatalf("get after increment: %v", err)
	}
	if base.getCalls != 3 {
		t.Fatalf("expected increment to invalidate cache, base get calls=%d", base.getCalls)
	}
	if refreshed.Attempts != 2 {
		t.Fatalf("expected refreshed attempts=2, got %d", refreshed.Attempts)
	}
}

func TestDeliveryCacheKey_Contract(t *testing.T) {
	key, err := DeliveryCacheKey("  delivery/one two  ")
	if err != nil {
		t.Fatalf("build cache key: %v", err)
	}
	const expected = "go-outbound::delivery::v1::delivery%2Fone%20two"
	if key != expected {
		t.Fatalf("unexpected cache key contract: got %q want %q", key, expected)
	}
	if _, err := DeliveryCacheKey("   "); err == nil {
		t.Fatalf("expected blank id rejection")
	}
}

func TestCachedDeliveryStore_PropagatesBaseErrors(t *testing.T) {
	want := errors.New("store offline")
	base := &stubBaseDeliveryStore{getErr: want}
	store := newCachedStore(t, base)

	_, _, err := store.Get(context.Background(), "delivery-1")
	if !errors.Is(err, want) {
		t.Fatalf("expected base error propagation, got %v", err)
	}
}
