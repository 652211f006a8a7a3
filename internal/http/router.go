// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/likerotech-cyber/Check-Lariviere/internal/config"
	"github.com/likerotech-cyber/Check-Lariviere/internal/http/handlers"
	"github.com/likerotech-cyber/Check-Lariviere/internal/http/middleware"
	"github.com/likerotech-cyber/Check-Lariviere/internal/notify"
	"github.com/likerotech-cyber/Check-Lariviere/internal/realtime"
	"github.com/likerotech-cyber/Check-Lariviere/internal/repo"
	"github.com/likerotech-cyber/Check-Lariviere/internal/services"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip (SSE and metrics excluded)
//  7. Metrics
//  8. Idempotency validator (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per user/IP, bypass on replay)
//  10. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, feed realtime.Feed, mailer notify.Mailer, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			middleware.HeaderIdempotencyKey, // may be derived from client PII
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB); intake payloads stay well under this
	r.Use(limitBody(1 << 20))

	// 6) Compression. The SSE stream must not be buffered by gzip, and
	// Prometheus scrapes negotiate their own encoding.
	r.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPathsRegexs([]string{`.*/events$`, `^/metrics$`}),
	))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Dependency injection: services ← db/mailer/feed. Built before the
	// remaining middleware because the idempotency validator needs the
	// token verifier.
	authSvc := &services.AuthService{
		DB:       db,
		Secret:   []byte(cfg.Auth.JWTSecret),
		TokenTTL: cfg.Auth.TokenTTL,
	}
	intakeSvc := &services.IntakeService{
		DB:                 db,
		Feed:               feed,
		DetailedQuoteFee:   decimal.NewFromFloat(cfg.DetailedQuoteFee),
		FallbackHourlyRate: decimal.NewFromFloat(cfg.HourlyRate),
	}
	repairSvc := &services.RepairService{
		DB:           db,
		Mailer:       mailer,
		Feed:         feed,
		Log:          log.With().Str("component", "repair_service").Logger(),
		BillingEmail: cfg.Mail.BillingEmail,
	}
	catalogSvc := &services.CatalogService{DB: db, Feed: feed}
	settingsSvc := &services.SettingsService{DB: db, Feed: feed}

	h := handlers.New(intakeSvc, repairSvc, catalogSvc, settingsSvc, authSvc, db, cfg.IdempotencyTTL)

	// 8) Idempotency validation (before rate limiting). Runs ahead of the
	// group-level auth middleware, so the replay lookup resolves the user
	// from the bearer token itself; records written by the intake handler
	// are keyed by that same user.
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
			User: func(c *gin.Context) string {
				header := c.GetHeader("Authorization")
				if token, found := strings.CutPrefix(header, "Bearer "); found {
					if uid, err := authSvc.VerifyToken(strings.TrimSpace(token)); err == nil && uid != "" {
						return uid
					}
				}
				return ""
			},
		},
		func(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, userID, scope, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 9) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 10) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (opt-in)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Auth (no token required)
		api.POST("/auth/signup", h.Signup)
		api.POST("/auth/login", h.Login)
	}

	authed := api.Group("")
	authed.Use(middleware.RequireAuth(authSvc.VerifyToken))
	{
		authed.GET("/auth/me", h.Me)

		// Catalog reads (vendor intake screen)
		authed.GET("/checklist-items", h.ListChecklistItems)
		authed.GET("/templates", h.ListTemplates)

		// Repairs
		authed.POST("/repairs", h.CreateRepair)
		authed.GET("/repairs", h.ListRepairs)
		authed.GET("/repairs/:id", h.GetRepair)
		authed.PATCH("/repairs/:id/status", h.UpdateRepairStatus)
		authed.PUT("/repairs/:id/report", h.SaveWorkReport)
		authed.POST("/repairs/:id/quote-email", h.SendQuoteEmail)

		// Change-cue stream
		authed.GET("/events", h.StreamEvents(feed))

		// Admin
		admin := authed.Group("/admin")
		{
			admin.GET("/settings", h.GetSettings)
			admin.PUT("/settings", h.UpdateSettings)

			admin.POST("/checklist-items", h.CreateChecklistItem)
			admin.PUT("/checklist-items/:id", h.UpdateChecklistItem)
			admin.DELETE("/checklist-items/:id", h.DeleteChecklistItem)

			admin.POST("/templates", h.CreateTemplate)
			admin.PUT("/templates/:id", h.UpdateTemplate)
			admin.DELETE("/templates/:id", h.DeleteTemplate)
		}
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
