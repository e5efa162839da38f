package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-outbound/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const deliveryCacheKeyPrefix = "go-outbound::delivery::v1"

// CachedDeliveryStore fronts delivery reads with a cache for the admin log
// view. Every write path invalidates the cached record, so a Get after an
// outcome always reflects the latest attempt.
type CachedDeliveryStore struct {
	base  core.DeliveryStore
	cache repositorycache.CacheService
}

func NewCachedDeliveryStore(
	base core.DeliveryStore,
	cacheService repositorycache.CacheService,
) (*CachedDeliveryStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base delivery store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: delivery cache service is required")
	}
	return &CachedDeliveryStore{base: base, cache: cacheService}, nil
}

// DeliveryCacheKey returns the deterministic cache key contract for delivery
// reads: go-outbound::delivery::v1::<id> with the id URL-path escaped.
func DeliveryCacheKey(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("sqlstore: delivery id is required")
	}
	return deliveryCacheKeyPrefix + "::" + url.PathEscape(id), nil
}

func (s *CachedDeliveryStore) Create(ctx context.Context, in core.CreateDeliveryInput) (core.Delivery, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Delivery{}, fmt.Errorf("sqlstore: cached delivery store is not configured")
	}
	record, err := s.base.Create(ctx, in)
	if err != nil {
		return core.Delivery{}, err
	}
	if err := s.invalidate(ctx, record.ID); err != nil {
		return core.Delivery{}, err
	}
	return record, nil
}

func (s *CachedDeliveryStore) Get(ctx context.Context, id string) (core.Delivery, bool, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Delivery{}, false, fmt.Errorf("sqlstore: cached delivery store is not configured")
	}
	cacheKey, err := DeliveryCacheKey(id)
	if err != nil {
		return core.Delivery{}, false, err
	}

	type cachedDelivery struct {
		Record core.Delivery
		Found  bool
	}
	cached, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (cachedDelivery, error) {
		record, found, fetchErr := s.base.Get(ctx, id)
		if fetchErr != nil {
			return cachedDelivery{}, fetchErr
		}
		return cachedDelivery{Record: record, Found: found}, nil
	})
	if err != nil {
		return core.Delivery{}, false, err
	}
	return cached.Record, cached.Found, nil
}

func (s *CachedDeliveryStore) MarkOutcome(ctx context.Context, id string, outcome core.DeliveryOutcome) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached delivery store is not configured")
	}
	if err := s.base.MarkOutcome(ctx, id, outcome); err != nil {
		return err
	}
	return s.invalidate(ctx, id)
}

func (s *CachedDeliveryStore) IncrementAttempts(ctx context.Context, id string) (int, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return 0, fmt.Errorf("sqlstore: cached delivery store is not configured")
	}
	attempts, err := s.base.IncrementAttempts(ctx, id)
	if err != nil {
		return 0, err
	}
	if err := s.invalidate(ctx, id); err != nil {
		return 0, err
	}
	return attempts, nil
}

func (s *CachedDeliveryStore) ListRetryable(ctx context.Context, filter core.RetryFilter) ([]core.Delivery, error) {
	if s == nil || s.base == nil {
		return nil, fmt.Errorf("sqlstore: cached delivery store is not configured")
	}
	return s.base.ListRetryable(ctx, filter)
}

func (s *CachedDeliveryStore) List(ctx context.Context, filter core.DeliveryFilter) (core.DeliveryPage, error) {
	if s == nil || s.base == nil {
		return core.DeliveryPage{}, fmt.Errorf("sqlstore: cached delivery store is not configured")
	}
	return s.base.List(ctx, filter)
}

func (s *CachedDeliveryStore) invalidate(ctx context.Context, id string) error {
	cacheKey, err := DeliveryCacheKey(id)
	if err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}

var _ core.DeliveryStore = (*CachedDeliveryStore)(nil)
