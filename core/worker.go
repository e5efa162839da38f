package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	HeaderSignature  = "X-Webhook-Signature"
	HeaderEvent      = "X-Webhook-Event"
	HeaderDeliveryID = "X-Webhook-Delivery"
)

// Deliver performs one HTTP attempt for the record and unconditionally
// persists the outcome. Failures inside the attempt never escape as errors;
// they become a recorded failed outcome. Only delivery-log failures
// propagate, since without the log there is no safe way to proceed.
//
// An unknown delivery id is a no-op: the record was already handled or never
// existed, and either way there is nothing to send.
func (s *Service) Deliver(ctx context.Context, deliveryID string) (Delivery, error) {
	if s == nil || s.store == nil {
		return Delivery{}, fmt.Errorf("core: worker requires a delivery store")
	}
	startedAt := s.now()
	deliveryID = strings.TrimSpace(deliveryID)
	if deliveryID == "" {
		return Delivery{}, s.mapError(fmt.Errorf("core: delivery id is required"))
	}

	record, found, err := s.store.Get(ctx, deliveryID)
	if err != nil {
		return Delivery{}, s.mapError(NewLogUnavailableError(err))
	}
	if !found {
		return Delivery{}, nil
	}

	cfg, err := s.currentConfig(ctx)
	if err != nil {
		return Delivery{}, s.mapError(err)
	}

	outcome := s.attempt(ctx, cfg, record)
	if err := s.store.MarkOutcome(ctx, record.ID, outcome); err != nil {
		return Delivery{}, s.mapError(NewLogUnavailableError(err))
	}

	record.Status = outcome.Status
	record.ResponseCode = outcome.ResponseCode
	record.ResponseBody = outcome.ResponseBody
	sentAt := outcome.SentAt
	record.SentAt = &sentAt

	s.observeOperation(ctx, startedAt, "deliver", nil, map[string]any{
		"delivery_id":   record.ID,
		"webhook_event": record.EventType,
		"status":        string(record.Status),
		"response_code": record.ResponseCode,
		"attempts":      record.Attempts,
	})
	return record, nil
}

// attempt issues the signed POST and classifies the response. Any status in
// [200,300) is delivered; every other response and every transport error is
// failed, with TransportErrorCode standing in when no response arrived.
func (s *Service) attempt(ctx context.Context, cfg Config, record Delivery) DeliveryOutcome {
	outcome := DeliveryOutcome{
		Status:       DeliveryStatusFailed,
		ResponseCode: TransportErrorCode,
		SentAt:       s.now(),
	}
	bodyCap := cfg.ResponseBodyCap

	signature, err := s.signerFor(cfg).Signature(record.Payload)
	if err != nil {
		outcome.ResponseBody = truncateBody(err.Error(), bodyCap)
		return outcome
	}

	attemptCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(
		attemptCtx,
		http.MethodPost,
		strings.TrimSpace(cfg.Endpoint.URL),
		bytes.NewReader(record.Payload),
	)
	if err != nil {
		outcome.ResponseBody = truncateBody(err.Error(), bodyCap)
		return outcome
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderSignature, signature)
	req.Header.Set(HeaderEvent, record.EventType)
	req.Header.Set(HeaderDeliveryID, record.ID)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		outcome.ResponseBody = truncateBody(err.Error(), bodyCap)
		return outcome
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, int64(bodyCap)))
	outcome.ResponseCode = resp.StatusCode
	outcome.ResponseBody = string(body)
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		outcome.Status = DeliveryStatusDelivered
	}
	return outcome
}

func truncateBody(body string, limit int) string {
	if limit < 1 {
		limit = defaultResponseBodyCap
	}
	if len(body) <= limit {
		return body
	}
	return body[:limit]
}
