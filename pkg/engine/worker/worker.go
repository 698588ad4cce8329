package worker

import (
	"context"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/joripage/matching-engine/pkg/engine/model"
	"github.com/joripage/matching-engine/pkg/engine/repo"
	"github.com/joripage/matching-engine/pkg/tradefeed"
)

// Worker drains the trade feed into postgres. It is the durable tail
// of the trade log; the matching path never waits for it.
type Worker struct {
	trades repo.ITrade
}

func NewWorker(r repo.IRepo) *Worker {
	return &Worker{
		trades: r.Trade(),
	}
}

// StartConsumer blocks consuming trade batches until ctx is done.
func (w *Worker) StartConsumer(ctx context.Context, consumer *tradefeed.Consumer) error {
	return consumer.Run(ctx, func(ctx context.Context, trades []model.TradeEvent) error {
		if err := w.trades.BulkCreate(ctx, trades); err != nil {
			zap.S().Errorf("persist %d trades: %v", len(trades), err)
			return err
		}
		return nil
	})
}
