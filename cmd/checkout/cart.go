package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkoutpay/internal/domain"
	"github.com/nikolayk812/checkoutpay/internal/service"
	"github.com/spf13/cobra"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Inspect and change a cart from the terminal",
}

// cartAction runs fn against the configured snapshot store and prints the resulting cart.
func cartAction(use, short string, args cobra.PositionalArgs, fn func(cmd *cobra.Command, svc *service.CartService, args []string) (domain.Cart, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("newApp: %w", err)
			}
			defer a.Close()

			cart, err := fn(cmd, service.NewCartService(a.snapshots, a.catalog, logger), args)
			if err != nil {
				return err
			}

			return printCart(cmd.OutOrStdout(), cart)
		},
	}
}

func init() {
	cartCmd.AddCommand(
		cartAction("show <cart-id>", "Print a cart", cobra.ExactArgs(1),
			func(cmd *cobra.Command, svc *service.CartService, args []string) (domain.Cart, error) {
				return svc.Get(cmd.Context(), args[0])
			}),
		cartAction("add <cart-id> <product-id> [quantity]", "Add a product", cobra.RangeArgs(2, 3),
			func(cmd *cobra.Command, svc *service.CartService, args []string) (domain.Cart, error) {
				productID, err := uuid.Parse(args[1])
				if err != nil {
					return domain.Cart{}, fmt.Errorf("product id[%s]: %w", args[1], err)
				}

				quantity := 1
				if len(args) == 3 {
					if quantity, err = strconv.Atoi(args[2]); err != nil {
						return domain.Cart{}, fmt.Errorf("quantity[%s]: %w", args[2], err)
					}
				}

				return svc.AddProduct(cmd.Context(), args[0], productID, quantity)
			}),
		cartAction("set <cart-id> <product-id> <quantity>", "Set the quantity of a line, 0 removes it", cobra.ExactArgs(3),
			func(cmd *cobra.Command, svc *service.CartService, args []string) (domain.Cart, error) {
				productID, err := uuid.Parse(args[1])
				if err != nil {
					return domain.Cart{}, fmt.Errorf("product id[%s]: %w", args[1], err)
				}

				quantity, err := strconv.Atoi(args[2])
				if err != nil {
					return domain.Cart{}, fmt.Errorf("quantity[%s]: %w", args[2], err)
				}

				return svc.UpdateQuantity(cmd.Context(), args[0], productID, quantity)
			}),
		cartAction("remove <cart-id> <product-id>", "Remove a line", cobra.ExactArgs(2),
			func(cmd *cobra.Command, svc *service.CartService, args []string) (domain.Cart, error) {
				productID, err := uuid.Parse(args[1])
				if err != nil {
					return domain.Cart{}, fmt.Errorf("product id[%s]: %w", args[1], err)
				}

				return svc.RemoveProduct(cmd.Context(), args[0], productID)
			}),
		cartAction("clear <cart-id>", "Remove all lines", cobra.ExactArgs(1),
			func(cmd *cobra.Command, svc *service.CartService, args []string) (domain.Cart, error) {
				return svc.Clear(cmd.Context(), args[0])
			}),
		cartAction("toggle <cart-id>", "Flip the cart visibility flag", cobra.ExactArgs(1),
			func(cmd *cobra.Command, svc *service.CartService, args []string) (domain.Cart, error) {
				return svc.ToggleOpen(cmd.Context(), args[0])
			}),
	)
}

func printCart(out io.Writer, cart domain.Cart) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "PRODUCT\tNAME\tPRICE\tQTY\tLINE TOTAL")
	for _, l := range cart.Lines {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", l.ProductID, l.Name, l.UnitPrice.StringFixed(2), l.Quantity, l.LineTotal().StringFixed(2))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "subtotal\t%s\n", cart.Subtotal.StringFixed(2))
	fmt.Fprintf(w, "shipping\t%s\n", cart.Shipping.StringFixed(2))
	fmt.Fprintf(w, "tax\t%s\n", cart.Tax.StringFixed(2))
	fmt.Fprintf(w, "total\t%s\n", cart.Total.StringFixed(2))
	fmt.Fprintf(w, "open\t%t\n", cart.IsOpen)

	return w.Flush()
}
