package query

import (
	"context"
	"strings"

	"github.com/goliatone/go-outbound/core"
)

type DeliveryReader interface {
	Get(ctx context.Context, id string) (core.Delivery, bool, error)
	List(ctx context.Context, filter core.DeliveryFilter) (core.DeliveryPage, error)
}

type GetDeliveryQuery struct {
	reader DeliveryReader
}

func NewGetDeliveryQuery(reader DeliveryReader) *GetDeliveryQuery {
	return &GetDeliveryQuery{reader: reader}
}

func (q *GetDeliveryQuery) Query(ctx context.Context, msg GetDeliveryMessage) (core.Delivery, error) {
	if q == nil || q.reader == nil {
		return core.Delivery{}, queryDependencyError("query: delivery reader is required")
	}
	delivery, found, err := q.reader.Get(ctx, strings.TrimSpace(msg.DeliveryID))
	if err != nil {
		return core.Delivery{}, err
	}
	if !found {
		return core.Delivery{}, queryNotFoundError(msg.DeliveryID)
	}
	return delivery, nil
}

type ListDeliveriesQuery struct {
	reader DeliveryReader
}

func NewListDeliveriesQuery(reader DeliveryReader) *ListDeliveriesQuery {
	return &ListDeliveriesQuery{reader: reader}
}

func (q *ListDeliveriesQuery) Query(
	ctx context.Context,
	msg ListDeliveriesMessage,
) (core.DeliveryPage, error) {
	if q == nil || q.reader == nil {
		return core.DeliveryPage{}, queryDependencyError("query: delivery reader is required")
	}
	return q.reader.List(ctx, msg.Filter)
}
