package main

import (
	"errors"
	"fmt"

	"github.com/nikolayk812/checkoutpay/internal/repository"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the product catalog",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Upsert products from a YAML file into the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Database.URL == "" {
			return errors.New("database.url is empty")
		}

		products, err := repository.LoadCatalogFile(args[0])
		if err != nil {
			return fmt.Errorf("repository.LoadCatalogFile: %w", err)
		}

		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return fmt.Errorf("newApp: %w", err)
		}
		defer a.Close()

		if err := repository.NewCatalog(a.pool).UpsertProducts(cmd.Context(), products); err != nil {
			return fmt.Errorf("UpsertProducts: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "imported %d products\n", len(products))
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogImportCmd)
}
