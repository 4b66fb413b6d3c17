package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cinebun/internal/observability"
	"cinebun/registry"
	"cinebun/registry/application"
	"cinebun/registry/domain"
	"cinebun/registry/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := readConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("config error")
	}

	logger := observability.InitLogger(observability.LoggerOptions{
		App:    "cinebund",
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	metrics := observability.NewMetrics()

	reg := infra.NewRegistry(infra.WithCapacity(cfg.Capacity))

	var events domain.EventSink
	if cfg.EventsRedisEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.EventsRedisAddr,
			Password: cfg.EventsRedisPassword,
			DB:       cfg.EventsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.EventsRedisAddr).Msg("redis events ping error")
		}

		events = infra.NewRedisEventSink(
			rdb,
			infra.WithEventPrefix(cfg.EventsPrefix),
			infra.WithEventTTL(cfg.EventsTTL),
			infra.WithEventBucket(cfg.EventsBucket),
			infra.WithEventTrackSlots(cfg.EventsTrackSlots),
		)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc := application.Service{
		Registry: reg,
		Events:   events,
		Metrics:  metrics,
		Logger:   logger.With().Str("component", "registry").Logger(),
	}

	opts := registry.RouterOptions{
		Service:        svc,
		Logger:         logger,
		HTTPRecorder:   metrics,
		MetricsHandler: metrics.Handler(),
		Admission: registry.AdmissionOptions{
			Max:            cfg.ConcurrencyMax,
			AcquireTimeout: cfg.ConcurrencyTimeout,
			Recorder:       metrics,
			Logger:         logger,
		},
	}
	if cfg.RateEnabled {
		limiters := infra.NewLimiterStore(cfg.RateRPS, cfg.RateBurst)
		limiters.StartJanitor(ctx)
		opts.RateLimit = &registry.RateLimitOptions{
			Store:               limiters,
			Recorder:            metrics,
			Logger:              logger,
			KeyHeader:           cfg.KeyHeader,
			TrustXForwardedFor:  cfg.TrustXFF,
			RetryAfter:          cfg.RetryAfter,
			AddRateLimitHeaders: cfg.AddHeaders,
		}
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           registry.NewRouter(opts),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().
		Str("addr", cfg.ListenAddr).
		Str("symbol", domain.Symbol).
		Int("capacity", reg.Capacity()).
		Str("fingerprint", reg.Fingerprint()).
		Msg("cinebund listening")
	logger.Info().
		Bool("enabled", cfg.RateEnabled).
		Float64("rps", cfg.RateRPS).
		Int("burst", cfg.RateBurst).
		Str("key_header", cfg.KeyHeader).
		Bool("trust_xff", cfg.TrustXFF).
		Msg("rate limit")
	logger.Info().
		Bool("enabled", cfg.EventsRedisEnabled).
		Str("redis_addr", cfg.EventsRedisAddr).
		Str("bucket", cfg.EventsBucket).
		Dur("ttl", cfg.EventsTTL).
		Bool("track_slots", cfg.EventsTrackSlots).
		Msg("registration events")
	logger.Info().
		Int("max", cfg.ConcurrencyMax).
		Dur("acquire_timeout", cfg.ConcurrencyTimeout).
		Msg("admission")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
}
