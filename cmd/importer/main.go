package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"detailing-booking/internal/config"
	"detailing-booking/internal/db"
	"detailing-booking/internal/importer"
	bookingrepo "detailing-booking/internal/repository/booking"
	"go.uber.org/zap"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to legacy bookings CSV export")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

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

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatal("open file", zap.String("file", filePath), zap.Error(err))
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, bookingrepo.NewPostgres(pool, logger), logger)

	start := time.Now()
	res, err := imp.Run(ctx)
	if err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}

	fmt.Printf("Imported %d bookings (%d already present) in %s\n",
		res.Imported, res.Skipped, time.Since(start).Truncate(time.Millisecond))
}
