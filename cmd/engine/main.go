package main

import (
	"context"
	"flag"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/joripage/matching-engine/config"
	"github.com/joripage/matching-engine/pkg/engine"
	"github.com/joripage/matching-engine/pkg/engine/model"
	redis_wrapper "github.com/joripage/matching-engine/pkg/infra/redis"
	"github.com/joripage/matching-engine/pkg/logging"
	"github.com/joripage/matching-engine/pkg/snapshot"
	"github.com/joripage/matching-engine/pkg/tradefeed"
)

// logGateway reports executions to the log until a real order-entry
// transport is plugged in.
type logGateway struct{}

func (logGateway) Start(context.Context) error { return nil }

func (logGateway) OnOrderReport(_ context.Context, order model.Order) {
	zap.S().Infow("order report",
		"order_id", order.OrderID,
		"symbol", order.Symbol,
		"status", order.Status,
		"exec_type", order.ExecType,
		"cum_qty", order.CumQuantity,
		"leaves_qty", order.LeavesQuantity,
	)
}

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	logging.NewLogger(logging.INFO)

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	go func() {
		http.ListenAndServe("localhost:6060", nil) // nolint
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	eng := engine.NewEngine(&engine.Config{PriceScale: cfg.PriceScale}, logGateway{})

	store, err := newSnapshotStore(cfg)
	if err != nil {
		zap.S().Fatalf("init snapshot store: %v", err)
	}
	if store != nil {
		eng.SetSnapshotStore(store)
		if err := eng.Recover(ctx, cfg.Symbols); err != nil {
			zap.S().Fatalf("recover books: %v", err)
		}
	}

	var feed *tradefeed.Producer
	if cfg.TradeFeed != nil {
		feed = tradefeed.NewProducer(tradefeed.ProducerConfig{
			Brokers: cfg.TradeFeed.Brokers,
			Topic:   cfg.TradeFeed.Topic,
		})
		eng.SetTradeFeed(feed)
		defer feed.Close()
	}

	if err := eng.Start(ctx); err != nil {
		zap.S().Fatalf("start engine: %v", err)
	}

	if store != nil && cfg.Snapshot.IntervalSeconds > 0 {
		go snapshotLoop(ctx, eng, time.Duration(cfg.Snapshot.IntervalSeconds)*time.Second)
	}

	zap.S().Infof("%s started, press Ctrl+C to exit", cfg.ServiceName)

	<-sigs
	zap.S().Info("shutting down...")
	cancel()

	if store != nil {
		if err := eng.SnapshotAll(context.Background()); err != nil {
			zap.S().Errorf("final snapshot: %v", err)
		}
	}
	zap.S().Info("exited cleanly")
}

func newSnapshotStore(cfg *config.AppConfig) (snapshot.Store, error) {
	if cfg.Snapshot == nil {
		return nil, nil
	}
	switch cfg.Snapshot.Backend {
	case "file":
		return snapshot.NewFileStore(cfg.Snapshot.Dir)
	case "pebble":
		return snapshot.NewPebbleStore(cfg.Snapshot.PebblePath)
	case "redis":
		client, err := redis_wrapper.InitRedis(cfg.Redis)
		if err != nil {
			return nil, err
		}
		return snapshot.NewRedisStore(client, ""), nil
	default:
		return nil, nil
	}
}

func snapshotLoop(ctx context.Context, eng *engine.Engine, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := eng.SnapshotAll(ctx); err != nil {
				zap.S().Errorf("periodic snapshot: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
