package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Dispatch turns a host event into a pending delivery record and hands it to
// the scheduler (or the worker directly when Async is false). It returns the
// delivery id, or "" when the dispatch was a configuration no-op: webhooks
// are optional, so a missing endpoint or a disabled event type is not an
// error. Unknown event types land in the disabled branch and are silently
// ignored.
func (s *Service) Dispatch(ctx context.Context, req DispatchRequest) (string, error) {
	if s == nil || s.store == nil {
		return "", fmt.Errorf("core: dispatcher requires a delivery store")
	}
	startedAt := s.now()
	eventType := strings.TrimSpace(req.EventType)
	if eventType == "" {
		return "", s.mapError(fmt.Errorf("core: event type is required"))
	}

	cfg, err := s.currentConfig(ctx)
	if err != nil {
		return "", s.mapError(err)
	}
	if !cfg.Endpoint.Configured() {
		return "", nil
	}
	if !cfg.Endpoint.Enabled(eventType) {
		return "", nil
	}
	// Fail closed: never send unsigned payloads.
	if strings.TrimSpace(cfg.Endpoint.Secret) == "" {
		return "", s.mapError(fmt.Errorf("core: signing secret is required to dispatch webhooks"))
	}

	payload, err := s.envelope(cfg, eventType, req.Data)
	if err != nil {
		return "", s.mapError(err)
	}

	delivery, err := s.store.Create(ctx, CreateDeliveryInput{
		EventType: eventType,
		Payload:   payload,
	})
	if err != nil {
		// No record, no send: losing the audit trail is equivalent to not
		// having dispatched.
		err = s.mapError(NewLogUnavailableError(err))
		s.observeOperation(ctx, startedAt, "dispatch", err, map[string]any{
			"webhook_event": eventType,
			"async":         req.Async,
		})
		return "", err
	}

	fields := map[string]any{
		"webhook_event": eventType,
		"delivery_id":   delivery.ID,
		"async":         req.Async,
	}

	if req.Async {
		if err := s.scheduler.ScheduleDelivery(ctx, delivery.ID); err != nil {
			err = s.mapError(err)
			s.observeOperation(ctx, startedAt, "dispatch", err, fields)
			return delivery.ID, err
		}
		s.observeOperation(ctx, startedAt, "dispatch", nil, fields)
		return delivery.ID, nil
	}

	if _, err := s.Deliver(ctx, delivery.ID); err != nil {
		s.observeOperation(ctx, startedAt, "dispatch", err, fields)
		return delivery.ID, err
	}
	s.observeOperation(ctx, startedAt, "dispatch", nil, fields)
	return delivery.ID, nil
}

// SendTest dispatches a synthetic "test" event synchronously and reports
// whether the endpoint accepted it. Admin UIs surface the boolean directly.
func (s *Service) SendTest(ctx context.Context, data map[string]any) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("core: service is nil")
	}
	cfg, err := s.currentConfig(ctx)
	if err != nil {
		return false, s.mapError(err)
	}
	if !cfg.Endpoint.Configured() {
		return false, s.mapError(fmt.Errorf("core: webhook endpoint is not configured"))
	}
	if strings.TrimSpace(cfg.Endpoint.Secret) == "" {
		return false, s.mapError(fmt.Errorf("core: signing secret is required to dispatch webhooks"))
	}

	payload, err := s.envelope(cfg, EventTypeTest, data)
	if err != nil {
		return false, s.mapError(err)
	}
	delivery, err := s.store.Create(ctx, CreateDeliveryInput{
		EventType: EventTypeTest,
		Payload:   payload,
	})
	if err != nil {
		return false, s.mapError(NewLogUnavailableError(err))
	}
	result, err := s.Deliver(ctx, delivery.ID)
	if err != nil {
		return false, err
	}
	return result.Status == DeliveryStatusDelivered, nil
}

// EventTypeTest is the reserved event type for admin-triggered test
// deliveries. It is not subject to the enabled-event gate.
const EventTypeTest = "test"

// envelope merges event data with the standard fields. Standard fields win
// on key collisions so a payload cannot spoof the event name or timestamp.
func (s *Service) envelope(cfg Config, eventType string, data map[string]any) ([]byte, error) {
	body := make(map[string]any, len(data)+4)
	for key, value := range data {
		body[key] = value
	}
	body["event"] = eventType
	body["timestamp"] = s.now().UTC().Format(time.RFC3339)
	if name := strings.TrimSpace(cfg.Identity.Name); name != "" {
		body["source"] = name
	}
	if siteURL := strings.TrimSpace(cfg.Identity.URL); siteURL != "" {
		body["source_url"] = siteURL
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("core: serialize envelope: %w", err)
	}
	return payload, nil
}
