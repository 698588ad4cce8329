// Package tradefeed moves executed trades over kafka to downstream
// consumers: the settlement ledger and market-data publishers. The
// feed is strictly append-only; messages are keyed by symbol so one
// symbol's trades stay ordered within a partition.
package tradefeed

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	kafka "github.com/segmentio/kafka-go"

	"github.com/joripage/matching-engine/pkg/engine/model"
)

type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
}

type Producer struct {
	w     *kafka.Writer
	topic string
}

func NewProducer(cfg ProducerConfig) *Producer {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
	}
	return &Producer{w: w, topic: cfg.Topic}
}

// PublishTrades writes one message per trade, keyed by symbol.
func (p *Producer) PublishTrades(ctx context.Context, symbol string, trades []model.TradeEvent) error {
	if p == nil || p.w == nil {
		return errors.New("producer not initialized")
	}
	if len(trades) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(trades))
	for _, t := range trades {
		value, err := json.Marshal(t)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Topic: p.topic,
			Key:   []byte(symbol),
			Value: value,
			Time:  t.ExecutedAt,
		})
	}
	return p.w.WriteMessages(ctx, msgs...)
}

func (p *Producer) Close() error {
	if p == nil || p.w == nil {
		return nil
	}
	return p.w.Close()
}
