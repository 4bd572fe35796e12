package main

import (
	"context"
	"flag"

	"go.uber.org/zap"

	"strawbeary/internal/config"
	"strawbeary/internal/db"
	"strawbeary/internal/logger"
	"strawbeary/internal/migrate"
)

func main() {
	var down int
	flag.IntVar(&down, "down", 0, "roll back this many migrations instead of applying")
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: cfg.LogOutput}, "migrate")
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, db.PoolOptions{MaxConns: cfg.DBMaxConns})
	if err != nil {
		log.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	runner, err := migrate.Open(ctx, pool)
	if err != nil {
		log.Fatal("open migrations", zap.Error(err))
	}
	defer runner.Close()

	if down > 0 {
		version, err := runner.Down(down)
		if err != nil {
			log.Fatal("roll back migrations", zap.Error(err))
		}
		log.Info("migrations rolled back", zap.Int("steps", down), zap.Uint("version", version))
		return
	}

	version, err := runner.Up()
	if err != nil {
		log.Fatal("apply migrations", zap.Error(err))
	}
	log.Info("migrations applied", zap.Uint("version", version))
}
