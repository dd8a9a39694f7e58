package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Tyrowin/goarena/internal/game"
	"github.com/Tyrowin/goarena/internal/server"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath string
		port       string
	)

	cmd := &cobra.Command{
		Use:          "arena-server",
		Short:        "Authoritative real-time arena server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := server.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a config file (default: ./arena.yaml if present)")
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen address, e.g. :8080 (overrides config)")
	return cmd
}

func run(ctx context.Context, cfg *server.Config) error {
	fmt.Println("Starting Arena Server...")

	world, err := game.NewWorld(cfg.Game.Arena())
	if err != nil {
		return fmt.Errorf("create world: %w", err)
	}

	var metrics *server.Metrics
	if cfg.Metrics.Enabled {
		metrics = server.NewMetrics()
	}

	hub := server.NewHub(world, *cfg, metrics)
	hub.Start()

	httpServer := server.CreateServer(cfg.Port, server.SetupRoutes(hub))

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.StartServer(httpServer)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = hub.Shutdown(cfg.ShutdownTimeout)
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Println("Shutdown signal received")
	}

	if err := server.ShutdownServer(httpServer, cfg.ShutdownTimeout); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	return hub.Shutdown(cfg.ShutdownTimeout)
}
