package main

import (
	"context"

	"go.uber.org/zap"

	"strawbeary/internal/config"
	"strawbeary/internal/db"
	"strawbeary/internal/logger"
	menurepo "strawbeary/internal/repository/menu"
	"strawbeary/internal/seed"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: cfg.LogOutput}, "seed")
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, db.PoolOptions{MaxConns: cfg.DBMaxConns})
	if err != nil {
		log.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	items, err := seed.Apply(ctx, menurepo.NewPostgres(pool, log))
	if err != nil {
		log.Fatal("seed apply", zap.Error(err))
	}

	for _, item := range items {
		log.Info("seeded dish", zap.String("name", item.Name), zap.Stringer("price", item.Price))
	}
	log.Info("seed applied", zap.Int("dishes", len(items)))
}
