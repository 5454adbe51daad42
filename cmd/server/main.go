// Command server is the HTTP entrypoint for the music recognition backend.
//
// Startup order:
//  1. Load .env (best effort) and the typed configuration.
//  2. Configure the root zerolog logger.
//  3. Open the database, run migrations, and verify connectivity.
//  4. Initialize the optional audio classifier (model artifacts are fetched
//     into the local cache when missing).
//  5. Configure OpenTelemetry tracing (opt-in).
//  6. Build the Gin engine and serve until SIGINT/SIGTERM, then drain.
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

	"github.com/melo-app/go-music-backend/internal/classifier"
	"github.com/melo-app/go-music-backend/internal/config"
	httpapi "github.com/melo-app/go-music-backend/internal/http"
	"github.com/melo-app/go-music-backend/internal/observability"
	"github.com/melo-app/go-music-backend/internal/repo"
	"github.com/melo-app/go-music-backend/internal/services"
	"github.com/melo-app/go-music-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		// Not an error in containerized deployments.
		log.Debug().Msg("no .env file found, using process environment")
	}

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	log.Logger = zerolog.New(sysutil.LogWriter(cfg.LogPretty)).With().Timestamp().Logger()

	gin.SetMode(cfg.GinMode)

	db, err := repo.Open(cfg.DBDSN, cfg.OTEL.Enabled)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}
	if err := repo.Ping(db); err != nil {
		log.Fatal().Err(err).Msg("database ping failed")
	}
	log.Info().Str("dsn", cfg.DBDSN).Msg("database ready")

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("create upload dir")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional classifier. Startup proceeds without it; recognition then
	// serves empty prediction lists.
	var cls services.AudioClassifier
	if cfg.Classifier.Enabled {
		svc, err := classifier.New(ctx, classifier.Options{
			RunnerCmd:   cfg.Classifier.RunnerCmd,
			ModelURL:    cfg.Classifier.ModelURL,
			ClassMapURL: cfg.Classifier.ClassMapURL,
			CacheDir:    cfg.Classifier.CacheDir,
		})
		if err != nil {
			log.Warn().Err(err).Msg("classifier unavailable, predictions disabled")
		} else {
			cls = svc
			log.Info().Str("runner", cfg.Classifier.RunnerCmd).Msg("classifier ready")
		}
	}

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("setup tracing")
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(flushCtx); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown")
		}
	}()

	r := gin.New()
	httpapi.RegisterRoutes(r, db, cls, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
		return
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		_ = srv.Close()
	}
	log.Info().Msg("server stopped")
}
