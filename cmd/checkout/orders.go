package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkoutpay/internal/domain"
	"github.com/nikolayk812/checkoutpay/internal/service"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	olderThan time.Duration

	newOrderID    string
	newOrderEmail string
	newOrderTotal string
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Inspect orders",
}

var ordersAbandonedCmd = &cobra.Command{
	Use:   "abandoned",
	Short: "List orders still waiting for a payment outcome",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return fmt.Errorf("newApp: %w", err)
		}
		defer a.Close()

		cutoff := time.Now().UTC().Add(-olderThan)

		orders, err := a.orders.SearchOrders(cmd.Context(), domain.AbandonedFilter(cutoff))
		if err != nil {
			return fmt.Errorf("SearchOrders: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ORDER\tSTATE\tTOTAL\tEMAIL\tUPDATED")
		for _, o := range orders {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", o.ID, o.PaymentState, o.Total, o.CustomerEmail, o.UpdatedAt.Format(time.RFC3339))
		}
		return w.Flush()
	},
}

var ordersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register an order that will be paid through a payment intent",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.Database.URL == "" {
			return errors.New("database.url is empty, a running server keeps in-memory orders: use POST /api/v1/orders")
		}

		storeCurrency, err := domain.ParseCurrency(cfg.Checkout.Currency)
		if err != nil {
			return fmt.Errorf("domain.ParseCurrency: %w", err)
		}

		orderID, err := uuid.Parse(newOrderID)
		if err != nil {
			return fmt.Errorf("id[%s]: %w", newOrderID, err)
		}

		total, err := decimal.NewFromString(newOrderTotal)
		if err != nil {
			return fmt.Errorf("total[%s]: %w", newOrderTotal, err)
		}

		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return fmt.Errorf("newApp: %w", err)
		}
		defer a.Close()

		order, err := service.NewOrderRegistry(a.orders, storeCurrency, logger).Register(cmd.Context(), domain.Order{
			ID:            orderID,
			CustomerEmail: newOrderEmail,
			Total:         domain.Money{Amount: total, Currency: storeCurrency},
		})
		if err != nil {
			return fmt.Errorf("Register: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "registered order %s (%s, %s)\n", order.ID, order.Total, order.PaymentState)
		return nil
	},
}

func init() {
	ordersAbandonedCmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "only orders not updated for this long")

	ordersCreateCmd.Flags().StringVar(&newOrderID, "id", "", "order id (uuid) used as order_context.order_id of the intent")
	ordersCreateCmd.Flags().StringVar(&newOrderEmail, "email", "", "customer email")
	ordersCreateCmd.Flags().StringVar(&newOrderTotal, "total", "", "order total in major units, e.g. 118.80")
	_ = ordersCreateCmd.MarkFlagRequired("id")
	_ = ordersCreateCmd.MarkFlagRequired("total")

	ordersCmd.AddCommand(ordersAbandonedCmd, ordersCreateCmd)
}
