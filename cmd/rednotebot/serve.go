package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdulachik/rednotebot/internal/app"
	"github.com/abdulachik/rednotebot/internal/config"
	"github.com/abdulachik/rednotebot/internal/dashboard"
	"github.com/abdulachik/rednotebot/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard and the daily scheduler",
	Long: `Run the dashboard HTTP API and, unless disabled, a cron scheduler that
generates a batch for every account on SCHEDULE_SPEC.`,
	RunE: runServe,
}

var (
	serveAddr        string
	serveNoScheduler bool
)

const shutdownTimeout = 10 * time.Second

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: HTTP_ADDR)")
	serveCmd.Flags().BoolVar(&serveNoScheduler, "no-scheduler", false, "Serve the dashboard only")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if serveAddr != "" {
		cfg.HTTPAddr = serveAddr
	}

	if err := cfg.ValidateForServe(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}
	defer a.Close()

	health := scheduler.NewHealth()
	errCh := make(chan error, 2)

	if !serveNoScheduler {
		sched, err := scheduler.New(scheduler.Config{
			Spec:      cfg.ScheduleSpec,
			Mode:      a.DefaultMode(),
			Generator: a,
			Health:    health,
		})
		if err != nil {
			return err
		}
		go func() {
			errCh <- sched.Run(ctx)
		}()
	}

	srv := dashboard.New(a, health)
	go func() {
		errCh <- srv.Listen(cfg.HTTPAddr)
	}()

	slog.Info("starting RedNoteBot",
		"addr", cfg.HTTPAddr,
		"deploy_mode", cfg.DeployMode,
		"generation_mode", a.DefaultMode(),
		"schedule", cfg.ScheduleSpec,
		"scheduler", !serveNoScheduler,
	)

	// Wait for shutdown signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		slog.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			runErr = fmt.Errorf("server error: %w", err)
		}
	}

	slog.Info("shutting down...")
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("dashboard shutdown failed", "error", err)
	}

	return runErr
}
