package main

import (
	"context"
	"flag"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/joripage/matching-engine/config"
	"github.com/joripage/matching-engine/pkg/engine/repo"
	"github.com/joripage/matching-engine/pkg/engine/worker"
	postgres_wrapper "github.com/joripage/matching-engine/pkg/infra/postgres"
	"github.com/joripage/matching-engine/pkg/logging"
	"github.com/joripage/matching-engine/pkg/tradefeed"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	logging.NewLogger(logging.INFO)

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()

	db, err := postgres_wrapper.InitPostgres(cfg.EngineDB)
	if err != nil {
		zap.S().Errorf("init db fail with err: %v", err)
		panic(err)
	}

	sqlRepo := repo.NewRepo(db)

	consumer := tradefeed.NewConsumer(tradefeed.ConsumerConfig{
		Brokers:    cfg.TradeFeed.Brokers,
		GroupID:    cfg.TradeFeed.GroupID,
		Topic:      cfg.TradeFeed.Topic,
		MaxRetries: 5,
	})
	defer consumer.Close()

	w := worker.NewWorker(sqlRepo)
	if err := w.StartConsumer(ctx, consumer); err != nil {
		zap.S().Fatalf("consumer stopped: %v", err)
	}
}
