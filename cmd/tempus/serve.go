package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/amaumene/tempus/internal/api"
	"github.com/amaumene/tempus/internal/scheduler"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with cache warmup and scheduled backups",
		Args:  cobra.NoArgs,
		RunE: withApp(func(_ context.Context, a *app, args []string) error {
			if port != "" {
				a.cfg.ServerPort = port
			}
			logger := a.logger
			logger.WithField("version", version).Info("Starting Tempus")

			// 1. Initialize scheduler
			sched := scheduler.NewScheduler(a.browse, a.backups, a.cfg.WarmupSchedule, a.cfg.BackupSchedule, a.cfg.BackupFile, logger)
			if err := sched.Start(); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}
			defer sched.Stop()

			// 2. Initialize HTTP server
			server := api.NewServer(a.cfg, api.Controllers{
				Browse:    a.browse,
				Watchlist: a.watchlists,
				Swipe:     a.swipe,
				Settings:  a.settings,
				Cache:     a.client,
			}, logger)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			serverErrChan := make(chan error, 1)
			go func() {
				if err := server.Start(ctx); err != nil {
					serverErrChan <- err
				}
			}()

			// 3. Wait for shutdown signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			logger.Info("Tempus is running")

			select {
			case err := <-serverErrChan:
				return fmt.Errorf("server error: %w", err)
			case sig := <-sigChan:
				logger.WithField("signal", sig).Info("Received shutdown signal")
				cancel()
				if err := server.Shutdown(context.Background()); err != nil {
					logger.WithError(err).Error("Error during server shutdown")
				}
			}

			logger.Info("Tempus stopped")
			return nil
		}),
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (default SERVER_PORT)")
	return cmd
}
