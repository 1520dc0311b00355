package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"detailing-booking/internal/cart"
	"detailing-booking/internal/cli"
	"detailing-booking/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.ClientFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.New(os.Stdout, cfg, storageOpener(cfg), cli.WithLogger(logger))
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		logger.Sync()
		os.Exit(1)
	}
}

// storageOpener keeps the cart in Redis when CART_REDIS_ADDR is set and in a
// local SQLite file otherwise.
func storageOpener(cfg config.ClientConfig) cli.StorageOpener {
	if cfg.CartRedisAddr != "" {
		return func(ctx context.Context) (cart.Storage, func(), error) {
			client := redis.NewClient(&redis.Options{Addr: cfg.CartRedisAddr})
			if err := client.Ping(ctx).Err(); err != nil {
				client.Close()
				return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.CartRedisAddr, err)
			}
			return cart.NewRedisStorage(client, "detailctl"), func() { client.Close() }, nil
		}
	}
	return func(ctx context.Context) (cart.Storage, func(), error) {
		s, err := cart.OpenSQLite(ctx, cfg.CartDBPath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	}
}
