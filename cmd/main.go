package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/maintenance-tracker/internal/auth"
	"github.com/ukydev/maintenance-tracker/internal/config"
	"github.com/ukydev/maintenance-tracker/internal/db"
	"github.com/ukydev/maintenance-tracker/internal/events"
	"github.com/ukydev/maintenance-tracker/internal/handlers"
	"github.com/ukydev/maintenance-tracker/internal/middleware"
	"github.com/ukydev/maintenance-tracker/internal/summary"
	"github.com/ukydev/maintenance-tracker/internal/tracker"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 15 * time.Second

// buildPublisher always writes the activity log and adds the MQTT and Redis
// publishers that are configured. A broker that cannot be reached is
// skipped with a warning.
func buildPublisher(cfg *config.Config, activity db.ActivityStore) (events.Multi, []func()) {
	publishers := events.Multi{&events.ActivityPublisher{Store: activity}}
	var closers []func()

	if cfg.MQTT.Broker != "" {
		p, err := events.NewMQTTPublisher(cfg.MQTT)
		if err != nil {
			log.WithError(err).WithField("broker", cfg.MQTT.Broker).Warn("MQTT publishing disabled")
		} else {
			publishers = append(publishers, p)
			closers = append(closers, p.Close)
			log.WithField("broker", cfg.MQTT.Broker).Info("Publishing events to MQTT")
		}
	}
	if cfg.Redis.URL != "" {
		p, err := events.NewRedisPublisher(cfg.Redis.URL, cfg.Redis.Channel)
		if err != nil {
			log.WithError(err).Warn("Redis publishing disabled")
		} else {
			publishers = append(publishers, p)
			closers = append(closers, func() {
				if err := p.Close(); err != nil {
					log.WithError(err).Warn("Failed to close Redis client")
				}
			})
			log.WithField("channel", cfg.Redis.Channel).Info("Publishing events to Redis")
		}
	}
	return publishers, closers
}

// newHandler builds the router behind the middleware chain: request id,
// access log, rate limit, authentication.
func newHandler(cfg *config.Config, authService *auth.Service, users db.UserCollection, svc handlers.Tracker) http.Handler {
	authMiddleware := middleware.NewAuthMiddleware(authService)
	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.PerSecond), cfg.RateLimit.Burst)
	mux := handlers.Routes(
		handlers.NewAuthHandler(authService, users),
		handlers.NewTrackerHandler(svc),
		authMiddleware,
	)
	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.AccessLog,
		limiter.RateLimit,
		authMiddleware.Authenticate,
	)
}

func main() {
	cfg := config.Load()
	cfg.SetupLogging()

	client, err := db.ConnectMongo(cfg.Mongo.URI)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	store := db.NewStore(client, cfg.Mongo.Database)
	log.WithField("database", cfg.Mongo.Database).Info("Connected to MongoDB")

	indexCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.EnsureIndexes(indexCtx); err != nil {
		cancel()
		log.WithError(err).Fatal("Failed to create indexes")
	}
	cancel()

	publisher, closers := buildPublisher(cfg, store.Activity)
	svc := tracker.NewFromStore(store, publisher, summary.New(cfg.Summary), cfg.StatsTTL)
	authService := auth.NewService(cfg.Auth)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newHandler(cfg, authService, store.Users, svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}
	for _, closeFn := range closers {
		closeFn()
	}
	if err := store.Disconnect(shutdownCtx); err != nil {
		log.WithError(err).Error("Failed to disconnect from MongoDB")
	}
}
