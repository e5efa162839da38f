package command

import (
	"fmt"
	"strings"
)

const (
	TypeDispatchEvent = "outbound.command.dispatch"
	TypeSendTest      = "outbound.command.send_test"
	TypeSweepRetries  = "outbound.command.sweep"
	TypeRedeliver     = "outbound.command.redeliver"
)

type DispatchEventMessage struct {
	EventType string
	Data      map[string]any
	Async     bool
}

func (DispatchEventMessage) Type() string { return TypeDispatchEvent }

func (m DispatchEventMessage) Validate() error {
	if strings.TrimSpace(m.EventType) == "" {
		return fmt.Errorf("command: event type is required")
	}
	return nil
}

type SendTestMessage struct {
	Data map[string]any
}

func (SendTestMessage) Type() string { return TypeSendTest }

func (SendTestMessage) Validate() error { return nil }

type SweepRetriesMessage struct{}

func (SweepRetriesMessage) Type() string { return TypeSweepRetries }

func (SweepRetriesMessage) Validate() error { return nil }

type RedeliverMessage struct {
	DeliveryID string
}

func (RedeliverMessage) Type() string { return TypeRedeliver }

func (m RedeliverMessage) Validate() error {
	if strings.TrimSpace(m.DeliveryID) == "" {
		return fmt.Errorf("command: delivery id is required")
	}
	return nil
}
