package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/nikolayk812/checkoutpay/internal/config"
	"github.com/nikolayk812/checkoutpay/internal/telemetry"
	"github.com/spf13/cobra"
)

var (
	configPath string

	cfg    *config.Config
	logger *slog.Logger

	rootCmd = &cobra.Command{
		Use:   "checkout",
		Short: "Checkout pricing and payment reconciliation service",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error

			cfg, err = config.Load(configPath)
			if err != nil {
				return fmt.Errorf("config.Load: %w", err)
			}

			logger, err = telemetry.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return fmt.Errorf("telemetry.NewLogger: %w", err)
			}
			slog.SetDefault(logger)

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
}

func Execute(version string) error {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(ordersCmd)

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
