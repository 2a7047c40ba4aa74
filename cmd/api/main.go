package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medtracker/internal/adapters/druginfo/openfda"
	pg "medtracker/internal/adapters/storage/postgres"
	"medtracker/internal/config"
	"medtracker/internal/platform/logger"
	"medtracker/internal/platform/metrics"
	"medtracker/internal/platform/tracing"
	"medtracker/internal/router"

	"github.com/spf13/cobra"
)

// @title medtracker API
// @version 1.0
// @description Seguimiento de medicamentos, tomas y notas con cálculo de adherencia.
// @BasePath /
func main() {
	rootCmd := &cobra.Command{
		Use:   "medtracker",
		Short: "Medication tracker API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations (requires DB_DSN)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.UsesPostgres() {
				return errors.New("DB_DSN is required to run migrations")
			}

			db, err := pg.Open(cmd.Context(), cfg.DBDSN, cfg.DBMaxConns)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := pg.Migrate(cmd.Context(), db)
			if err != nil {
				return err
			}
			fmt.Printf("applied %d migration(s)\n", n)
			return nil
		},
	}
}

func runServer(cfg *config.Config) error {
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
	if s, ok := log.(interface{ Sync() error }); ok {
		defer func() { _ = s.Sync() }()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.Init(ctx, tracing.Config{
		ServiceName:  cfg.AppName,
		Environment:  cfg.Env,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SampleRate:   1,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(sctx)
	}()

	m := metrics.New()

	drugs, err := openfda.NewClient(openfda.Config{
		BaseURL:        cfg.OpenFDABaseURL,
		Timeout:        cfg.OpenFDATimeout,
		BreakerEnabled: cfg.OpenFDABreakerEnabled,
		Metrics:        m,
		Logger:         log,
	})
	if err != nil {
		return fmt.Errorf("openfda client: %w", err)
	}

	opts := router.Options{
		DrugInfo:    drugs,
		Logger:      log,
		Metrics:     m,
		Location:    cfg.Location(),
		ServiceName: cfg.AppName,
	}

	if cfg.UsesPostgres() {
		db, err := pg.Open(ctx, cfg.DBDSN, cfg.DBMaxConns)
		if err != nil {
			return err
		}
		defer db.Close()

		// En dev aplicamos migraciones al arrancar; en otros entornos va por `migrate`.
		if cfg.IsDev() {
			if n, err := pg.Migrate(ctx, db); err != nil {
				return err
			} else if n > 0 {
				log.Info("migrations applied", map[string]any{"count": n})
			}
		}
		opts.DB = db
	} else {
		log.Warn("DB_DSN not set, using in-memory store", nil)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.NewRouter(opts),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{
			"addr":     srv.Addr,
			"env":      cfg.Env,
			"postgres": cfg.UsesPostgres(),
			"tracing":  tp.Enabled(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}
