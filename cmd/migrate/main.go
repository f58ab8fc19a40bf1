package main

import (
	"context"

	"chiringuito/internal/config"
	"chiringuito/internal/logging"
	"chiringuito/internal/migrate"
	"go.uber.org/zap"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	logger = logger.Named("migrate")
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	if err := migrate.Apply(ctx, cfg.DBConnString); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	version, dirty, err := migrate.Version(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("read schema version", zap.Error(err))
	}
	logger.Info("migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
}
