package query

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-outbound/core"
)

const (
	TypeGetDelivery    = "outbound.query.delivery.get"
	TypeListDeliveries = "outbound.query.delivery.list"
)

type GetDeliveryMessage struct {
	DeliveryID string
}

func (GetDeliveryMessage) Type() string { return TypeGetDelivery }

func (m GetDeliveryMessage) Validate() error {
	if strings.TrimSpace(m.DeliveryID) == "" {
		return fmt.Errorf("query: delivery id is required")
	}
	return nil
}

type ListDeliveriesMessage struct {
	Filter core.DeliveryFilter
}

func (ListDeliveriesMessage) Type() string { return TypeListDeliveries }

func (m ListDeliveriesMessage) Validate() error {
	if m.Filter.Page < 0 {
		return fmt.Errorf("query: page must be >= 0")
	}
	if m.Filter.PerPage < 0 {
		return fmt.Errorf("query: per_page must be >= 0")
	}
	if m.Filter.Status != "" {
		if err := m.Filter.Status.Validate(); err != nil {
			return fmt.Errorf("query: %w", err)
		}
	}
	return nil
}
