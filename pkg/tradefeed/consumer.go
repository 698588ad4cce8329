package tradefeed

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	kafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/joripage/matching-engine/pkg/engine/model"
)

type ConsumerConfig struct {
	Brokers []string
	GroupID string
	Topic   string

	// Batch options: a handler call gets at most BatchSize trades,
	// flushed no later than BatchTimeout after the first one.
	BatchSize    int
	BatchTimeout time.Duration

	MaxRetries int
	BackoffMin time.Duration
	BackoffMax time.Duration
}

// Consumer reads the trade feed in batches for durable downstream
// processing. Offsets are committed only after the handler succeeds,
// so handlers must tolerate redelivery.
type Consumer struct {
	r   *kafka.Reader
	cfg ConsumerConfig
}

func NewConsumer(cfg ConsumerConfig) *Consumer {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 50
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 200 * time.Millisecond
	}
	if cfg.BackoffMin == 0 {
		cfg.BackoffMin = 100 * time.Millisecond
	}
	if cfg.BackoffMax == 0 {
		cfg.BackoffMax = 10 * time.Second
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		StartOffset: kafka.FirstOffset,
		MaxWait:     cfg.BatchTimeout,
		MinBytes:    1,
		MaxBytes:    10 << 20,
	})
	return &Consumer{r: r, cfg: cfg}
}

func (c *Consumer) Close() error {
	if c == nil || c.r == nil {
		return nil
	}
	return c.r.Close()
}

// Run fetches, batches and hands trades to the handler until the
// context is cancelled.
func (c *Consumer) Run(ctx context.Context, handler func(context.Context, []model.TradeEvent) error) error {
	if c == nil || c.r == nil {
		return errors.New("consumer not initialized")
	}

	var msgs []kafka.Message
	var trades []model.TradeEvent
	var deadline time.Time

	flush := func() error {
		if len(msgs) == 0 {
			return nil
		}
		if len(trades) > 0 {
			if err := c.deliver(ctx, handler, trades); err != nil {
				return err
			}
		}
		if err := c.r.CommitMessages(ctx, msgs...); err != nil {
			return err
		}
		msgs = msgs[:0]
		trades = trades[:0]
		deadline = time.Time{}
		return nil
	}

	for {
		fetchCtx, cancel := ctx, context.CancelFunc(func() {})
		if !deadline.IsZero() {
			fetchCtx, cancel = context.WithDeadline(ctx, deadline)
		}

		m, err := c.r.FetchMessage(fetchCtx)
		cancel()
		switch {
		case err == nil:
			var t model.TradeEvent
			if uerr := json.Unmarshal(m.Value, &t); uerr != nil {
				// A malformed message is skipped, not retried.
				zap.S().Warnf("tradefeed: drop malformed message at offset %d: %v", m.Offset, uerr)
				msgs = append(msgs, m)
				if deadline.IsZero() {
					deadline = time.Now().Add(c.cfg.BatchTimeout)
				}
				break
			}
			msgs = append(msgs, m)
			trades = append(trades, t)
			if deadline.IsZero() {
				deadline = time.Now().Add(c.cfg.BatchTimeout)
			}
			if len(trades) >= c.cfg.BatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
			// Batch timer fired.
			if err := flush(); err != nil {
				return err
			}
		case errors.Is(err, context.Canceled):
			return ctx.Err()
		default:
			zap.S().Errorf("tradefeed: fetch: %v", err)
			time.Sleep(200 * time.Millisecond)
		}
	}
}

// deliver retries the handler with exponential backoff before giving
// up and returning the last error.
func (c *Consumer) deliver(ctx context.Context, handler func(context.Context, []model.TradeEvent) error, trades []model.TradeEvent) error {
	wait := c.cfg.BackoffMin
	var err error
	for attempt := 0; ; attempt++ {
		err = handler(ctx, trades)
		if err == nil {
			return nil
		}
		if attempt >= c.cfg.MaxRetries {
			return err
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
		wait *= 2
		if wait > c.cfg.BackoffMax {
			wait = c.cfg.BackoffMax
		}
	}
}
