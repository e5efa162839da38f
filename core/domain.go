package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidDeliveryStatusTransition = errors.New("core: invalid delivery status transition")
	ErrDeliveryNotFound                = errors.New("core: delivery not found")
)

type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusFailed    DeliveryStatus = "failed"
)

func (s DeliveryStatus) Validate() error {
	switch s {
	case DeliveryStatusPending, DeliveryStatusDelivered, DeliveryStatusFailed:
		return nil
	}
	return fmt.Errorf("core: invalid delivery status %q", string(s))
}

// CanTransitionTo enforces the one-way delivery lifecycle: a delivered
// record is terminal, while pending and failed records may still move.
func (s DeliveryStatus) CanTransitionTo(next DeliveryStatus) bool {
	if next.Validate() != nil {
		return false
	}
	switch s {
	case DeliveryStatusPending, DeliveryStatusFailed:
		return next == DeliveryStatusDelivered || next == DeliveryStatusFailed
	case DeliveryStatusDelivered:
		return false
	}
	return false
}

// Delivery is one logical attempt sequence for a single event. Payload holds
// the exact serialized bytes sent over the wire; it is never rewritten after
// the record is created, so the signature always verifies against what was
// stored.
type Delivery struct {
	ID           string
	EventType    string
	Payload      []byte
	Status       DeliveryStatus
	ResponseCode int
	ResponseBody string
	Attempts     int
	CreatedAt    time.Time
	SentAt       *time.Time
}

type CreateDeliveryInput struct {
	EventType string
	Payload   []byte
}

func (in CreateDeliveryInput) Validate() error {
	if strings.TrimSpace(in.EventType) == "" {
		return fmt.Errorf("core: event type is required")
	}
	if len(in.Payload) == 0 {
		return fmt.Errorf("core: payload is required")
	}
	return nil
}

// DeliveryOutcome is the full overwrite a worker invocation applies to a
// record. Last writer wins; the record always ends in a valid terminal state
// for that attempt.
type DeliveryOutcome struct {
	Status       DeliveryStatus
	ResponseCode int
	ResponseBody string
	SentAt       time.Time
}

// TransportErrorCode is recorded as the response code when the attempt never
// produced an HTTP response (DNS, TLS, timeout, connection refused).
const TransportErrorCode = 0

type DispatchRequest struct {
	EventType string
	Data      map[string]any
	Async     bool
}

type RetryFilter struct {
	MaxAttempts int
	Since       time.Time
	Limit       int
}

type DeliveryFilter struct {
	Status    DeliveryStatus
	EventType string
	Page      int
	PerPage   int
}

type DeliveryPage struct {
	Items   []Delivery
	Page    int
	PerPage int
	Total   int
	HasNext bool
}

type SweepStats struct {
	Selected  int
	Delivered int
	Failed    int
}
