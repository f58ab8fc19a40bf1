package main

import (
	"context"
	"flag"
	"os"
	"time"

	"chiringuito/internal/config"
	"chiringuito/internal/db"
	"chiringuito/internal/importer"
	"chiringuito/internal/logging"
	menurepo "chiringuito/internal/repository/menu"
	"go.uber.org/zap"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to menu CSV (name,description,price,imageUrl,available)")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	logger = logger.Named("importer")
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatal("open file", zap.String("file", filePath), zap.Error(err))
	}
	defer f.Close()

	// Import all rows or none.
	var count int
	start := time.Now()
	err = db.NewTransactor(pool).WithinTx(ctx, func(ctx context.Context) error {
		var err error
		count, err = importer.NewCSVImporter(f, menurepo.NewPostgres(pool, logger)).Run(ctx)
		return err
	})
	if err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}

	logger.Info("menu imported",
		zap.Int("items", count),
		zap.String("file", filePath),
		zap.Duration("took", time.Since(start).Truncate(time.Millisecond)),
	)
}
