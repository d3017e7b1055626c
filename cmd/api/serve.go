package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Marga-Ghale/ora-committee-backend/internal/api"
	"github.com/Marga-Ghale/ora-committee-backend/internal/cron"
	"github.com/Marga-Ghale/ora-committee-backend/internal/metrics"
	"github.com/Marga-Ghale/ora-committee-backend/internal/seed"
	"github.com/Marga-Ghale/ora-committee-backend/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type serveOptions struct {
	migrate bool
	seed    bool
}

func (a *app) serveCommand() *cobra.Command {
	opts := serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the vote resolution sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.migrate, "migrate", true, "apply pending Postgres migrations before serving")
	cmd.Flags().BoolVar(&opts.seed, "seed", false, "create demo data when the store is empty (ignored in production)")
	return cmd
}

func (a *app) serve(ctx context.Context, opts serveOptions) error {
	cfg, logger := a.cfg, a.logger
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := a.openStorage(ctx, opts.migrate)
	if err != nil {
		return err
	}
	defer store.close()

	// ============================================
	// Initialize Redis (optional)
	// ============================================
	var locker cron.Locker
	if redisDB := a.openRedis(ctx); redisDB != nil {
		defer redisDB.Close()
		locker = redisDB
		store.checks["cache"] = redisDB.Ping
	}

	// ============================================
	// Initialize All Services
	// ============================================
	m := metrics.New()
	services := service.NewServices(&service.ServiceDeps{
		Config:  cfg,
		Repos:   store.repos,
		Logger:  logger,
		Metrics: m,
	})

	if opts.seed && !cfg.IsProduction() {
		if err := seed.SeedData(ctx, services, store.repos.UserRepo, logger.Named("seed")); err != nil {
			return err
		}
	}

	// ============================================
	// Initialize Cron Scheduler
	// ============================================
	scheduler := cron.NewScheduler(cfg.ResolveSchedule, services.Vote, locker, m, logger.Named("cron"))
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer scheduler.Stop()

	router := api.NewRouter(api.RouterDeps{
		Config:   cfg,
		Services: services,
		Metrics:  m,
		Logger:   logger,
		Checks:   store.checks,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("port", cfg.Port),
			zap.String("storage", cfg.StorageDriver),
			zap.String("environment", cfg.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server exited")
	return nil
}
