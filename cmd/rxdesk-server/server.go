package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/rxdesk/rxdesk/internal/config"
	"github.com/rxdesk/rxdesk/internal/domain/analytics"
	"github.com/rxdesk/rxdesk/internal/domain/catalog"
	"github.com/rxdesk/rxdesk/internal/domain/ledger"
	"github.com/rxdesk/rxdesk/internal/platform/auth"
	"github.com/rxdesk/rxdesk/internal/platform/clinicalai"
	"github.com/rxdesk/rxdesk/internal/platform/db"
	"github.com/rxdesk/rxdesk/internal/platform/kv"
	"github.com/rxdesk/rxdesk/internal/platform/medsearch"
	"github.com/rxdesk/rxdesk/internal/platform/middleware"
)

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// deps are the outside-world collaborators of the HTTP server.
type deps struct {
	store     kv.Store
	pool      *pgxpool.Pool
	generator clinicalai.Generator
	cache     *middleware.InMemoryCacheStore
}

func newServer(cfg *config.Config, logger zerolog.Logger, d deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader, "X-Cache"},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit, cfg.UploadBodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	jwtCfg := auth.JWTConfig{Issuer: cfg.AuthIssuer, SigningKey: cfg.SigningKey(), Skipper: auth.AuthSkipper}
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware(jwtCfg))
	} else {
		e.Use(auth.JWTMiddleware(jwtCfg))
	}
	e.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/store", db.HealthHandler(cfg.StoreBackend, d.store, d.pool))

	api := e.Group("/api/v1")

	auth.NewIssuer(cfg.AuthIssuer, cfg.SigningKey(), auth.DefaultTokenTTL).RegisterRoutes(api)

	ledgerSvc := ledger.NewService(ledger.NewKVRepo(d.store))
	ledger.NewHandler(ledgerSvc).RegisterRoutes(api)
	analytics.NewHandler(analytics.NewService(ledgerSvc)).RegisterRoutes(api)
	catalog.NewHandler().RegisterRoutes(api, middleware.ETagMiddleware(5*time.Minute))

	search := medsearch.NewClient(logger.With().Str("component", "medsearch").Logger(),
		medsearch.WithBaseURL(cfg.RxTermsURL))
	var cache middleware.CacheStore
	if d.cache != nil {
		cache = d.cache
	}
	medsearch.NewHandler(search, cache).RegisterRoutes(api)

	ai := clinicalai.NewService(d.generator, logger.With().Str("component", "clinicalai").Logger())
	clinicalai.NewHandler(ai).RegisterRoutes(api)

	return e
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return err
	}
	if cfg.IsDev() {
		logger.Warn().Msg("ENV=development: requests without a token act as the demo doctor")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, pool, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Str("backend", cfg.StoreBackend).Msg("failed to open store")
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Warn().Err(err).Msg("store close failed")
		}
	}()

	d := deps{store: store, pool: pool, cache: middleware.NewInMemoryCacheStore()}
	d.cache.StartCleanup(ctx, time.Minute)

	if cfg.GeminiAPIKey != "" {
		gen, err := clinicalai.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error().Err(err).Msg("failed to create gemini client")
			return err
		}
		d.generator = gen
	} else {
		logger.Warn().Msg("GEMINI_API_KEY not set; AI validation and analysis are disabled")
	}

	e := newServer(cfg, logger, d)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("backend", cfg.StoreBackend).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
