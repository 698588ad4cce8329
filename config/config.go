package config

import (
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	postgres_wrapper "github.com/joripage/matching-engine/pkg/infra/postgres"
	redis_wrapper "github.com/joripage/matching-engine/pkg/infra/redis"
)

type AppConfig struct {
	ServiceName string `yaml:"service_name"`

	// PriceScale is the number of decimal places per price tick.
	PriceScale int32 `yaml:"price_scale"`

	// Symbols to recover and serve at startup.
	Symbols []string `yaml:"symbols"`

	EngineDB  *postgres_wrapper.PostgresConfig `yaml:"engine_db"`
	Redis     *redis_wrapper.RedisConfig       `yaml:"redis"`
	Snapshot  *SnapshotConfig                  `yaml:"snapshot"`
	TradeFeed *TradeFeedConfig                 `yaml:"trade_feed"`
}

type SnapshotConfig struct {
	// Backend selects the store: "file", "pebble" or "redis".
	Backend         string `yaml:"backend"`
	Dir             string `yaml:"dir"`
	PebblePath      string `yaml:"pebble_path"`
	IntervalSeconds int    `yaml:"interval_seconds"`
}

type TradeFeedConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"group_id"`
}

// Load reads config from file and environment variables.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	sugar := zap.S().With("func", "config.Load", "filePath", filePath)
	sugar.Debug("Load config...")

	configBytes, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("Failed to load config file")
		return nil, err
	}
	configBytes = []byte(os.ExpandEnv(string(configBytes)))

	cfg := &AppConfig{}

	err = yaml.Unmarshal(configBytes, cfg)
	if err != nil {
		sugar.Error("Failed to parse config file")
		return nil, err
	}

	zap.S().Debugf("config: %+v", cfg)

	return cfg, nil
}
