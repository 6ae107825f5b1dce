package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/avdeeva/beautybook/pkg/logger"
	"github.com/avdeeva/beautybook/pkg/messaging/redis"
	"github.com/avdeeva/beautybook/pkg/metrics"

	"github.com/avdeeva/beautybook/internal/config"
	"github.com/avdeeva/beautybook/internal/repository/postgres"
	"github.com/avdeeva/beautybook/internal/service/notifier"
	reminderService "github.com/avdeeva/beautybook/internal/service/reminder"
	"github.com/avdeeva/beautybook/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	l := logger.NewLogger(nil)

	loc, err := cfg.Schedule.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid timezone")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &l.ZL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	registry := prometheus.NewRegistry()
	m := metrics.NewWith("beautybook_worker", registry)

	bookingRepo := postgres.NewBookingRepository(db, loc)
	settingsRepo := postgres.NewSettingsRepository(db)
	notifySvc := notifier.NewService(broker, cfg.Notifier, cfg.Admin.ID, m, l)
	reminderSvc := reminderService.NewService(bookingRepo, settingsRepo, notifySvc, m, l)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := worker.NewReminderWorker(reminderSvc, cfg.Reminder.SweepInterval(), l)
	go w.Start(ctx)

	// Metrics endpoint for the worker process.
	go func() {
		http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		addr := fmt.Sprintf(":%d", cfg.Server.Port+1)
		if err := http.ListenAndServe(addr, nil); err != nil {
			l.ZL.Error().Err(err).Msg("metrics server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	l.ZL.Info().Msg("shutting down worker...")
	cancel()
}
