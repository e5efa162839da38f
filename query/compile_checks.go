package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-outbound/core"
)

var (
	_ gocmd.Querier[GetDeliveryMessage, core.Delivery]        = (*GetDeliveryQuery)(nil)
	_ gocmd.Querier[ListDeliveriesMessage, core.DeliveryPage] = (*ListDeliveriesQuery)(nil)
)
