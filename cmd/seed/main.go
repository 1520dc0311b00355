package main

import (
	"context"

	"detailing-booking/internal/config"
	"detailing-booking/internal/db"
	"detailing-booking/internal/seed"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.FromEnv()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString,
		db.WithLogger(logger), db.WithMaxConns(cfg.DBMaxConns), db.WithSlowQueryThreshold(cfg.DBSlowQuery))
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	n, err := seed.Apply(ctx, pool, logger)
	if err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}

	logger.Info("seed applied", zap.Int("bookings", n))
}
