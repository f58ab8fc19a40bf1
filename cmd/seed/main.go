package main

import (
	"context"
	"flag"
	"os"

	"chiringuito/internal/config"
	"chiringuito/internal/db"
	"chiringuito/internal/logging"
	menurepo "chiringuito/internal/repository/menu"
	"chiringuito/internal/seed"
	menusvc "chiringuito/internal/service/menu"
	"go.uber.org/zap"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "TOML menu file (defaults to the built-in menu)")
	flag.Parse()

	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	logger = logger.Named("seed")
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	menu := menusvc.New(menurepo.NewPostgres(pool, logger), nil, logger)

	var count int
	if filePath == "" {
		count, err = seed.Apply(ctx, menu)
	} else {
		var doc []byte
		doc, err = os.ReadFile(filePath)
		if err != nil {
			logger.Fatal("read menu file", zap.String("file", filePath), zap.Error(err))
		}
		count, err = seed.ApplyTOML(ctx, menu, string(doc))
	}
	if err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}

	logger.Info("seed applied", zap.Int("items", count))
}
