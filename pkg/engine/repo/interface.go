package repo

import (
	"context"

	"github.com/joripage/matching-engine/pkg/engine/model"
)

type ITrade interface {
	Create(ctx context.Context, trade *model.TradeEvent) error
	BulkCreate(ctx context.Context, trades []model.TradeEvent) error
	ListBySymbol(ctx context.Context, symbol string, limit int) ([]model.TradeEvent, error)
}

type IOrderEvent interface {
	Create(ctx context.Context, ev *model.OrderEvent) error
	BulkCreate(ctx context.Context, evs []*model.OrderEvent) error
}
