package engine

import (
	"context"

	"github.com/joripage/matching-engine/pkg/engine/model"
)

// OrderGateway is the engine's edge toward order-entry clients:
// execution reports flow out through it. Transports (FIX, HTTP, ...)
// live behind this interface and are out of the engine's scope.
type OrderGateway interface {
	Start(ctx context.Context) error

	// engine to client
	OnOrderReport(ctx context.Context, order model.Order)
}

// NopGateway discards reports. Used by tests and the replay
// benchmark.
type NopGateway struct{}

func (NopGateway) Start(context.Context) error                 { return nil }
func (NopGateway) OnOrderReport(context.Context, model.Order) {}
