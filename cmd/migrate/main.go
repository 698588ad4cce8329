package main

import (
	"flag"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/joripage/matching-engine/config"
	"github.com/joripage/matching-engine/pkg/infra"
	"github.com/joripage/matching-engine/pkg/logging"
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

	zap.S().Debugf("load config %+v", cfg)

	mgTool := infra.GetMigrateTool()
	mgTool.Migrate("file://migration/sql", cfg.EngineDB.MigrationConnURL)
}
