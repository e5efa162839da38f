package core

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Get reads one delivery record from the log. An unknown id reports
// found=false without an error so callers can distinguish absence from a
// store outage.
func (s *Service) Get(ctx context.Context, id string) (Delivery, bool, error) {
	if s == nil || s.store == nil {
		return Delivery{}, false, goerrors.New("core: delivery store is not configured", goerrors.CategoryExternal).
			WithTextCode(WebhookErrorLogUnavailable)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Delivery{}, false, nil
	}
	record, found, err := s.store.Get(ctx, id)
	if err != nil {
		return Delivery{}, false, s.mapError(NewLogUnavailableError(err))
	}
	return record, found, nil
}

// List pages through the delivery log, newest first.
func (s *Service) List(ctx context.Context, filter DeliveryFilter) (DeliveryPage, error) {
	if s == nil || s.store == nil {
		return DeliveryPage{}, goerrors.New("core: delivery store is not configured", goerrors.CategoryExternal).
			WithTextCode(WebhookErrorLogUnavailable)
	}
	page, err := s.store.List(ctx, filter)
	if err != nil {
		return DeliveryPage{}, s.mapError(NewLogUnavailableError(err))
	}
	return page, nil
}
