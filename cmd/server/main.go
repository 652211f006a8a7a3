// Command server runs the repair-shop backend for Les Cycles Larivière:
// vendor intake with the diagnostic checklist, the technician workboard and
// work reports, admin catalog management, email notifications, and the
// realtime change-cue stream.
//
// Configuration comes from environment variables (a local .env file is loaded
// when present); see internal/config for the full list and defaults.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/likerotech-cyber/Check-Lariviere/internal/config"
	httpapi "github.com/likerotech-cyber/Check-Lariviere/internal/http"
	"github.com/likerotech-cyber/Check-Lariviere/internal/notify"
	"github.com/likerotech-cyber/Check-Lariviere/internal/observability"
	"github.com/likerotech-cyber/Check-Lariviere/internal/realtime"
	"github.com/likerotech-cyber/Check-Lariviere/internal/repo"
	"github.com/likerotech-cyber/Check-Lariviere/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Tracing first so DB and HTTP instrumentation attach to a real provider.
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if cfg.OTEL.Enabled {
		if err := repo.EnableTracing(db); err != nil {
			log.Warn().Err(err).Msg("gorm tracing plugin")
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}
	if _, err := repo.SeedSettings(ctx, db, decimal.NewFromFloat(cfg.HourlyRate)); err != nil {
		log.Fatal().Err(err).Msg("seed settings")
	}

	// Realtime change cues: MQTT when configured, in-process hub otherwise.
	var feed realtime.Feed
	if cfg.MQTT.Enabled {
		mq, err := realtime.NewMQTTFeed(cfg.MQTT, log.With().Str("component", "mqtt").Logger())
		if err != nil {
			log.Fatal().Err(err).Str("broker", cfg.MQTT.BrokerURL).Msg("mqtt connect")
		}
		feed = mq
	} else {
		feed = realtime.NewHub()
	}
	defer feed.Close()

	// Outbound email: the notification function when enabled, a logging
	// no-op otherwise (dev and test).
	var mailer notify.Mailer
	if cfg.Mail.Enabled {
		mailer = notify.NewFuncMailer(cfg.Mail, log.With().Str("component", "mailer").Logger())
	} else {
		mailer = notify.NopMailer{Log: log.With().Str("component", "mailer").Logger()}
	}

	engine := gin.New()
	httpapi.RegisterRoutes(engine, db, feed, mailer, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
