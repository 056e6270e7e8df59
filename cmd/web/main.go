package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"invertebratorium/internal/adapters/storage/postgres"
	"invertebratorium/internal/config"
	"invertebratorium/internal/platform/logger"
	"invertebratorium/internal/router"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "invertebratorium",
		Short:         "Inventory site for live invertebrates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to TOML config file")

	root.AddCommand(serveCmd(&configPath))
	root.AddCommand(migrateCmd(&configPath))
	return root
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			log := logger.New(logger.Options{
				Level:  logger.ParseLevel(cfg.Log.Level),
				Format: logger.ParseFormat(cfg.Log.Format),
			})

			h, err := router.New(router.Options{Config: cfg, Logger: log})
			if err != nil {
				return err
			}

			// WriteTimeout generoso: los uploads de imagen pueden tardar
			srv := &http.Server{
				Addr:         cfg.Addr,
				Handler:      h,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 60 * time.Second,
				IdleTimeout:  120 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("starting server", map[string]any{"addr": cfg.Addr, "env": cfg.Env})
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-stop:
				log.Info("shutting down", map[string]any{"signal": sig.String()})
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Database.Type != "postgres" {
				return fmt.Errorf("migrate only applies to database.type=postgres (got %q)", cfg.Database.Type)
			}

			db, err := postgres.Open(cfg.Database.DSN)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.Migrate(db); err != nil {
				return err
			}
			fmt.Println("migrations applied")
			return nil
		},
	}
}
