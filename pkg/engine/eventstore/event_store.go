package eventstore

import "github.com/joripage/matching-engine/pkg/engine/model"

type EventStore interface {
	AddEvent(ev *model.OrderEvent)
	Events(orderID string) []*model.OrderEvent
	LatestStatus(orderID string) (model.OrderStatus, bool)
}
