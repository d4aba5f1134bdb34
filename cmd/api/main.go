package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	jwtauth "visitasegura/internal/adapters/auth/jwt"
	pg "visitasegura/internal/adapters/storage/postgres"
	"visitasegura/internal/platform/config"
	"visitasegura/internal/platform/logger"
	"visitasegura/internal/platform/metrics"
	"visitasegura/internal/ports/auth"
	"visitasegura/internal/router"

	"golang.org/x/sync/errgroup"
)

// @title visitasegura API
// @version 1.0
// @description Registro de ingresos y salidas de visitas por RUT.
// @BasePath /
func main() {
	envFile := flag.String("env", ".env", "archivo de variables de entorno (opcional)")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	log := logger.NewFromEnv()

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func run(cfg config.Config, log logger.Logger) error {
	var db *pg.DB
	if cfg.DBDSN != "" {
		if cfg.DBAutoMigrate {
			if err := pg.Migrate(cfg.DBDSN); err != nil {
				return err
			}
			log.Info("migrations applied", nil)
		}

		var err error
		if db, err = pg.Open(cfg.DBDSN); err != nil {
			return err
		}
		defer db.Close()
	} else {
		log.Warn("DB_DSN vacío, usando repos en memoria", map[string]any{"seed": cfg.SeedDevData})
	}

	var verifier auth.AuthVerifier // sin verifier para modo dev
	if cfg.JWTSecret != "" {
		verifier = jwtauth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	} else {
		log.Warn("JWT_SECRET vacío, modo dev con X-Debug-User-ID", nil)
	}

	r := router.NewRouter(router.Options{
		AuthVerifier:      verifier,
		DB:                db,
		Logger:            log,
		Metrics:           metrics.New(),
		Location:          cfg.Location,
		DefaultFirstPlace: cfg.ScanDefaultFirstPlace,
		CORSOrigins:       cfg.CORSOrigins,
		SeedDevData:       cfg.SeedDevData,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      20 * time.Second,
		ErrorLog:          slog.NewLogLogger(log.Slog().Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting server", map[string]any{"addr": cfg.HTTPAddr, "tz": cfg.Location.String()})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
