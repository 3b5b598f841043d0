package main

import (
	"errors"
	"fmt"

	"github.com/nikolayk812/checkoutpay/internal/repository"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.Database.URL == "" {
			return errors.New("database.url is empty")
		}

		if err := repository.Migrate(cfg.Database.URL); err != nil {
			return fmt.Errorf("repository.Migrate: %w", err)
		}

		logger.Info("migrations applied")
		return nil
	},
}
