package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/avdeeva/beautybook/pkg/auth"
	"github.com/avdeeva/beautybook/pkg/logger"
	"github.com/avdeeva/beautybook/pkg/messaging/redis"
	"github.com/avdeeva/beautybook/pkg/metrics"

	"github.com/avdeeva/beautybook/internal/config"
	adminHandler "github.com/avdeeva/beautybook/internal/handler/admin"
	authHandler "github.com/avdeeva/beautybook/internal/handler/auth"
	bookingHandler "github.com/avdeeva/beautybook/internal/handler/booking"
	"github.com/avdeeva/beautybook/internal/handler/health"
	promHandler "github.com/avdeeva/beautybook/internal/handler/prometheus"
	slotHandler "github.com/avdeeva/beautybook/internal/handler/slot"
	"github.com/avdeeva/beautybook/internal/middleware"
	"github.com/avdeeva/beautybook/internal/repository/postgres"
	"github.com/avdeeva/beautybook/internal/router"
	bookingService "github.com/avdeeva/beautybook/internal/service/booking"
	"github.com/avdeeva/beautybook/internal/service/notifier"
	reminderService "github.com/avdeeva/beautybook/internal/service/reminder"
	"github.com/avdeeva/beautybook/internal/service/session"
	slotService "github.com/avdeeva/beautybook/internal/service/slot"
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

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.NewWith("beautybook", registry)

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

	// Repositories
	slotRepo := postgres.NewSlotRepository(db)
	bookingRepo := postgres.NewBookingRepository(db, loc)
	userRepo := postgres.NewUserRepository(db)
	settingsRepo := postgres.NewSettingsRepository(db)

	// Services
	notifySvc := notifier.NewService(broker, cfg.Notifier, cfg.Admin.ID, m, l)
	sessionSvc := session.NewService()
	slotSvc := slotService.NewService(slotRepo, notifySvc, cfg.Schedule.DefaultSlots, loc, m, l)
	bookingSvc := bookingService.NewService(bookingRepo, userRepo, sessionSvc, notifySvc, loc, m, l)
	reminderSvc := reminderService.NewService(bookingRepo, settingsRepo, notifySvc, m, l)

	// HTTP layer
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	r := router.NewRouter(
		authMiddleware,
		health.NewHandler(db),
		authHandler.NewHandler(jwtSvc, cfg.Admin),
		slotHandler.NewHandler(slotSvc),
		bookingHandler.NewHandler(bookingSvc),
		adminHandler.NewHandler(slotSvc, bookingSvc, reminderSvc),
		promHandler.New(registry),
		l,
		router.Config{RateLimit: rate.Limit(10), RateBurst: 20},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		l.ZL.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	l.ZL.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	l.ZL.Info().Msg("server exited properly")
}
