package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"strawbeary/internal/config"
	"strawbeary/internal/db"
	"strawbeary/internal/httpserver"
	"strawbeary/internal/logger"
	cartrepo "strawbeary/internal/repository/cart"
	idempotencyrepo "strawbeary/internal/repository/idempotency"
	menurepo "strawbeary/internal/repository/menu"
	orderrepo "strawbeary/internal/repository/order"
	cartsvc "strawbeary/internal/service/cart"
	menusvc "strawbeary/internal/service/menu"
	ordersvc "strawbeary/internal/service/order"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: cfg.LogOutput}, "api")
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, db.PoolOptions{MaxConns: cfg.DBMaxConns})
	if err != nil {
		log.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	readiness := map[string]httpserver.Pinger{"postgres": dbpool}

	var rdb *redis.Client
	if cfg.UsesRedis() {
		rdb, err = db.ConnectRedis(ctx, db.RedisOptions{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			log.Fatal("connect to redis", zap.Error(err))
		}
		defer rdb.Close()
		readiness["redis"] = httpserver.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	var cartStore cartrepo.Store
	switch cfg.CartStore {
	case config.CartStoreRedis:
		cartStore = cartrepo.NewRedis(rdb, "", log)
	case config.CartStoreMemory:
		log.Warn("cart store is in-process memory; carts are lost on restart")
		cartStore = cartrepo.NewMemory()
	default:
		cartStore = cartrepo.NewPostgres(dbpool, log)
	}

	var keys idempotencyrepo.Store = idempotencyrepo.NewMemory()
	if rdb != nil {
		keys = idempotencyrepo.NewRedis(rdb, "")
	}

	menuRepo := menurepo.NewPostgres(dbpool, log)
	orderRepo := orderrepo.NewPostgres(dbpool, log)

	srv, err := httpserver.New(cfg.HTTPAddr, log, httpserver.Deps{
		CartSvc:     cartsvc.New(cartStore),
		OrderSvc:    ordersvc.New(orderRepo, keys, cfg.IdempotencyTTL, log),
		MenuSvc:     menusvc.New(menuRepo),
		Readiness:   readiness,
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		log.Fatal("init server", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("storefront api configured", zap.String("cart_store", cfg.CartStore), zap.String("env", cfg.Env))
	if err := srv.Run(ctx, cfg.ShutdownTimeout); err != nil {
		log.Error("api stopped with error", zap.Error(err))
	}
}
