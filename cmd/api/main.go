package main

import (
	"context"
	"os/signal"
	"syscall"

	"detailing-booking/internal/config"
	"detailing-booking/internal/db"
	"detailing-booking/internal/httpserver"
	"detailing-booking/internal/notify"
	bookingrepo "detailing-booking/internal/repository/booking"
	customerrepo "detailing-booking/internal/repository/customer"
	bookingsvc "detailing-booking/internal/service/booking"
	customersvc "detailing-booking/internal/service/customer"
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
	dbpool, err := db.Connect(ctx, cfg.DBConnString,
		db.WithLogger(logger), db.WithMaxConns(cfg.DBMaxConns), db.WithSlowQueryThreshold(cfg.DBSlowQuery))
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	customerRepo := customerrepo.NewPostgres(dbpool, logger)
	customerService := customersvc.New(customerRepo)
	bookingRepo := bookingrepo.NewPostgres(dbpool, logger)
	bookingService := bookingsvc.New(bookingRepo,
		bookingsvc.WithMailer(notify.New(cfg.SendGridAPIKey, cfg.MailFrom, logger)),
		bookingsvc.WithLogger(logger),
	)

	srv := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		BookingSvc:  bookingService,
		CustomerSvc: customerService,
	}, cfg.CORSAllowedOrigins)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(runCtx, cfg.ShutdownTimeout); err != nil {
		logger.Error("http server stopped with error", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}
