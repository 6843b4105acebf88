package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ptzhub/internal/config"
	"ptzhub/internal/server"
	"ptzhub/internal/store"
)

var (
	flagConfig    string
	flagListen    string
	flagDataDir   string
	flagLogLevel  string
	flagLogFormat string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ptzhub",
		Short: "Protocol-agnostic PTZ camera control hub",
		Long: `ptzhub exposes a unified HTTP and WebSocket control plane for PTZ
cameras speaking VISCA-over-IP, Panasonic AW, or BirdDog REST, with an
in-memory simulator for development.`,
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "path to config file")
	rootCmd.Flags().StringVar(&flagListen, "listen", "", "listen address (overrides config)")
	rootCmd.Flags().StringVar(&flagDataDir, "data-dir", "", "data directory (overrides config)")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&flagLogFormat, "log-format", "", "log format: text, json")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagListen != "" {
		cfg.Server.ListenAddr = flagListen
	}
	if flagDataDir != "" {
		cfg.Storage.DataDir = flagDataDir
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}
	if flagLogFormat != "" {
		cfg.Logging.Format = flagLogFormat
	}

	log := config.NewLogger(cfg.Logging)

	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	endpoints := store.LoadEndpoints(cfg.Storage.DataDir)
	profiles := store.LoadProfiles(cfg.Storage.DataDir)
	settings := store.LoadSettings(cfg.Storage.DataDir)
	if err := profiles.EnsureDefault(); err != nil {
		return fmt.Errorf("initializing profiles: %w", err)
	}

	srv := server.New(server.Config{ListenAddr: cfg.Server.ListenAddr}, log, endpoints, profiles, settings)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting ptzhub", "data_dir", cfg.Storage.DataDir)
	if err := srv.Run(ctx); err != nil {
		return err
	}
	log.Info("shutdown complete")
	return nil
}
