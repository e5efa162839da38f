package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-outbound/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type DeliveryStore struct {
	db   *bun.DB
	repo repository.Repository[*deliveryRecord]
}

func NewDeliveryStore(db *bun.DB) (*DeliveryStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*deliveryRecord](db, deliveryHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid delivery repository wiring: %w", err)
		}
	}
	return &DeliveryStore{db: db, repo: repo}, nil
}

func (s *DeliveryStore) Create(ctx context.Context, in core.CreateDeliveryInput) (core.Delivery, error) {
	if s == nil || s.repo == nil {
		return core.Delivery{}, fmt.Errorf("sqlstore: delivery store is not configured")
	}
	if err := in.Validate(); err != nil {
		return core.Delivery{}, err
	}

	// Time-ordered ids keep the delivery log in insertion order without a
	// separate sequence.
	id, err := uuid.NewV7()
	if err != nil {
		return core.Delivery{}, fmt.Errorf("sqlstore: generate delivery id: %w", err)
	}
	record := &deliveryRecord{
		ID:        id.String(),
		EventType: strings.TrimSpace(in.EventType),
		Payload:   append([]byte(nil), in.Payload...),
		Status:    string(core.DeliveryStatusPending),
		Attempts:  1,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.repo.Create(ctx, record); err != nil {
		return core.Delivery{}, err
	}
	return deliveryToDomain(record), nil
}

func (s *DeliveryStore) Get(ctx context.Context, id string) (core.Delivery, bool, error) {
	if s == nil || s.db == nil {
		return core.Delivery{}, false, fmt.Errorf("sqlstore: delivery store is not configured")
	}
	record := &deliveryRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", strings.TrimSpace(id)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.Delivery{}, false, nil
		}
		return core.Delivery{}, false, err
	}
	return deliveryToDomain(record), true, nil
}

func (s *DeliveryStore) MarkOutcome(ctx context.Context, id string, outcome core.DeliveryOutcome) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: delivery store is not configured")
	}
	if err := outcome.Status.Validate(); err != nil {
		return err
	}
	query := s.db.NewUpdate().
		Model((*deliveryRecord)(nil)).
		Set("status = ?", string(outcome.Status)).
		Set("response_code = ?", outcome.ResponseCode).
		Set("response_body = ?", outcome.ResponseBody).
		Set("sent_at = ?", outcome.SentAt.UTC()).
		Where("id = ?", strings.TrimSpace(id))
	// delivered is terminal: a racing late failure must not overwrite it.
	if outcome.Status != core.DeliveryStatusDelivered {
		query = query.Where("status <> ?", string(core.DeliveryStatusDelivered))
	}
	_, err := query.Exec(ctx)
	return err
}

// IncrementAttempts re-reads the current counter before writing; it takes no
// row lock, so concurrent sweeps can double-increment in rare cases. That
// matches the sweeper's accepted-race contract.
func (s *DeliveryStore) IncrementAttempts(ctx context.Context, id string) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: delivery store is not configured")
	}
	record, found, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("%w: id %q", core.ErrDeliveryNotFound, id)
	}
	next := record.Attempts + 1
	if _, err := s.db.NewUpdate().
		Model((*deliveryRecord)(nil)).
		Set("attempts = ?", next).
		Where("id = ?", strings.TrimSpace(id)).
		Exec(ctx); err != nil {
		return 0, err
	}
	return next, nil
}

func (s *DeliveryStore) ListRetryable(ctx context.Context, filter core.RetryFilter) ([]core.Delivery, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: delivery store is not configured")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 1
	}

	var records []deliveryRecord
	query := s.db.NewSelect().
		Model(&records).
		Where("?TableAlias.status = ?", string(core.DeliveryStatusFailed)).
		OrderExpr("?TableAlias.created_at ASC").
		Limit(limit)
	if filter.MaxAttempts > 0 {
		query = query.Where("?TableAlias.attempts < ?", filter.MaxAttempts)
	}
	if !filter.Since.IsZero() {
		query = query.Where("?TableAlias.created_at >= ?", filter.Since.UTC())
	}
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}

	out := make([]core.Delivery, 0, len(records))
	for i := range records {
		out = append(out, deliveryToDomain(&records[i]))
	}
	return out, nil
}

func (s *DeliveryStore) List(ctx context.Context, filter core.DeliveryFilter) (core.DeliveryPage, error) {
	if s == nil || s.repo == nil {
		return core.DeliveryPage{}, fmt.Errorf("sqlstore: delivery store is not configured")
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 25
	}
	offset := (page - 1) * perPage

	selectors := []repository.SelectCriteria{
		repository.OrderBy("created_at DESC"),
		repository.SelectPaginate(perPage, offset),
	}
	if status := strings.TrimSpace(string(filter.Status)); status != "" {
		selectors = append(selectors, repository.SelectBy("status", "=", status))
	}
	if eventType := strings.TrimSpace(filter.EventType); eventType != "" {
		selectors = append(selectors, repository.SelectBy("event_type", "=", eventType))
	}

	records, total, err := s.repo.List(ctx, selectors...)
	if err != nil {
		return core.DeliveryPage{}, err
	}
	items := make([]core.Delivery, 0, len(records))
	for _, record := range records {
		items = append(items, deliveryToDomain(record))
	}
	return core.DeliveryPage{
		Items:   items,
		Page:    page,
		PerPage: perPage,
		Total:   total,
		HasNext: offset+len(items) < total,
	}, nil
}

func deliveryToDomain(record *deliveryRecord) core.Delivery {
	if record == nil {
		return core.Delivery{}
	}
	out := core.Delivery{
		ID:           record.ID,
		EventType:    record.EventType,
		Payload:      append([]byte(nil), record.Payload...),
		Status:       core.DeliveryStatus(record.Status),
		ResponseCode: record.ResponseCode,
		ResponseBody: record.ResponseBody,
		Attempts:     record.Attempts,
		CreatedAt:    record.CreatedAt,
	}
	if record.SentAt != nil {
		sentAt := *record.SentAt
		out.SentAt = &sentAt
	}
	return out
}

var _ core.DeliveryStore = (*DeliveryStore)(nil)
