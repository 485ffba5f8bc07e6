// serve.go implements "notifier serve": HTTP trigger, daily cron and the
// optional operator bot in one process.
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

	"absence_notifier/internal/app"
	"absence_notifier/internal/infra/config"
	"absence_notifier/internal/infra/httpapi"
	"absence_notifier/internal/infra/logger"
	"absence_notifier/internal/infra/metrics"
	"absence_notifier/internal/infra/scheduler"
	"absence_notifier/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the job trigger and run the job daily",
	Args:  cobra.NoArgs,
	RunE:  serve,
}

const shutdownTimeout = 15 * time.Second

func serve(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("could not load application configuration: %w", err)
	}
	logger.Init(cfg)
	metrics.Init()
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"environment":  cfg.Environment,
		"store_driver": cfg.StoreDriver,
		"telegram":     cfg.TelegramEnabled(),
	}).Info("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApplication(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	jobScheduler := scheduler.NewJobScheduler(a.service, logger.Component("scheduler"), cfg.CronSpec, cfg.JobTimeout)
	if err := jobScheduler.Start(); err != nil {
		return err
	}
	defer jobScheduler.Stop()

	if a.bot != nil {
		ops := app.NewOperatorService(a.service, a.service, cfg.AdminTelegramID)
		botLogger := logger.Component("telegram")
		telegram.RegisterBotCommands(a.bot, ops, botLogger)
		telegram.RegisterAdminHandlers(ctx, a.bot, ops, cfg.JobTimeout, botLogger)
		go a.bot.Start()
		defer a.bot.Stop()
		mainLogger.Info("Operator bot started")
	}

	router := httpapi.NewRouter(
		httpapi.NewJobHandler(a.service, a.service, logger.Component("http")),
		httpapi.NewHealthHandler(a.store, logger.Component("health")),
		app.NewTriggerAuth(cfg.JobSecret),
		logger.Component("http"),
		cfg.JobTimeout,
	)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if cfg.JobSecret == "" {
		mainLogger.Warn("JOB_SECRET is not set: the job trigger accepts unauthenticated requests")
	}

	serveErr := make(chan error, 1)
	go func() {
		mainLogger.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		mainLogger.Info("Shutting down application...")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		mainLogger.WithError(err).Warn("HTTP server did not shut down cleanly")
	}
	mainLogger.Info("Application shut down gracefully")
	return nil
}
