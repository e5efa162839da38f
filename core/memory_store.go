package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryDeliveryStore is the in-process fallback delivery log. Ids are
// assigned from a monotonically increasing counter.
type MemoryDeliveryStore struct {
	mu      sync.Mutex
	nextID  int
	records map[string]Delivery
	order   []string
}

func NewMemoryDeliveryStore() *MemoryDeliveryStore {
	return &MemoryDeliveryStore{
		records: map[string]Delivery{},
	}
}

func (s *MemoryDeliveryStore) Create(_ context.Context, in CreateDeliveryInput) (Delivery, error) {
	if s == nil {
		return Delivery{}, fmt.Errorf("core: delivery store is not configured")
	}
	if err := in.Validate(); err != nil {
		return Delivery{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	record := Delivery{
		ID:        fmt.Sprintf("delivery-%d", s.nextID),
		EventType: strings.TrimSpace(in.EventType),
		Payload:   append([]byte(nil), in.Payload...),
		Status:    DeliveryStatusPending,
		Attempts:  1,
		CreatedAt: time.Now().UTC(),
	}
	s.records[record.ID] = record
	s.order = append(s.order, record.ID)
	return cloneDelivery(record), nil
}

func (s *MemoryDeliveryStore) Get(_ context.Context, id string) (Delivery, bool, error) {
	if s == nil {
		return Delivery{}, false, fmt.Errorf("core: delivery store is not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[strings.TrimSpace(id)]
	if !ok {
		return Delivery{}, false, nil
	}
	return cloneDelivery(record), true, nil
}

func (s *MemoryDeliveryStore) MarkOutcome(_ context.Context, id string, outcome DeliveryOutcome) error {
	if s == nil {
		return fmt.Errorf("core: delivery store is not configured")
	}
	if err := outcome.Status.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[strings.TrimSpace(id)]
	if !ok {
		return fmt.Errorf("%w: id %q", ErrDeliveryNotFound, id)
	}
	// A delivered record is terminal; a racing late failure must not
	// overwrite it.
	if !record.Status.CanTransitionTo(outcome.Status) {
		return nil
	}
	record.Status = outcome.Status
	record.ResponseCode = outcome.ResponseCode
	record.ResponseBody = outcome.ResponseBody
	sentAt := outcome.SentAt.UTC()
	record.SentAt = &sentAt
	s.records[record.ID] = record
	return nil
}

func (s *MemoryDeliveryStore) IncrementAttempts(_ context.Context, id string) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("core: delivery store is not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[strings.TrimSpace(id)]
	if !ok {
		return 0, fmt.Errorf("%w: id %q", ErrDeliveryNotFound, id)
	}
	record.Attempts++
	s.records[record.ID] = record
	return record.Attempts, nil
}

func (s *MemoryDeliveryStore) ListRetryable(_ context.Context, filter RetryFilter) ([]Delivery, error) {
	if s == nil {
		return nil, fmt.Errorf("core: delivery store is not configured")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultSweepBatchSize
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Delivery, 0, limit)
	for _, id := range s.order {
		record := s.records[id]
		if record.Status != DeliveryStatusFailed {
			continue
		}
		if filter.MaxAttempts > 0 && record.Attempts >= filter.MaxAttempts {
			continue
		}
		if !filter.Since.IsZero() && record.CreatedAt.Before(filter.Since) {
			continue
		}
		out = append(out, cloneDelivery(record))
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryDeliveryStore) List(_ context.Context, filter DeliveryFilter) (DeliveryPage, error) {
	if s == nil {
		return DeliveryPage{}, fmt.Errorf("core: delivery store is not configured")
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 25
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	matched := make([]Delivery, 0, len(s.order))
	for _, id := range s.order {
		record := s.records[id]
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		if eventType := strings.TrimSpace(filter.EventType); eventType != "" &&
			!strings.EqualFold(record.EventType, eventType) {
			continue
		}
		matched = append(matched, cloneDelivery(record))
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	offset := (page - 1) * perPage
	if offset > total {
		offset = total
	}
	end := offset + perPage
	if end > total {
		end = total
	}
	return DeliveryPage{
		Items:   matched[offset:end],
		Page:    page,
		PerPage: perPage,
		Total:   total,
		HasNext: end < total,
	}, nil
}

func cloneDelivery(record Delivery) Delivery {
	out := record
	out.Payload = append([]byte(nil), record.Payload...)
	if record.SentAt != nil {
		sentAt := *record.SentAt
		out.SentAt = &sentAt
	}
	return out
}

var _ DeliveryStore = (*MemoryDeliveryStore)(nil)
