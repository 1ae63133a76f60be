package cli

import (
	"github.com/spf13/cobra"
)

// NewCheckoutCommand creates the checkout command. Checkout requires
// connectivity: the order is accepted by the service before it is
// committed locally, and any failure leaves the cart untouched.
func NewCheckoutCommand(rootOpts *RootOptions) *cobra.Command {
	var payment string

	cmd := &cobra.Command{
		Use:           "checkout",
		Short:         "Convert the cart into an order (requires connectivity)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return out.Fail(err)
			}
			defer app.Close()

			if _, err := app.requireIdentity(); err != nil {
				return out.Fail(err)
			}
			order, err := app.Session.Checkout(cmd.Context(), payment)
			if err != nil {
				return out.Fail(err)
			}

			products, err := app.Store.ListProducts(cmd.Context(), true)
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(renderReceipt(order, productTitles(products)), order)
		},
	}

	cmd.Flags().StringVar(&payment, "payment", "cash", "payment method (cash|card)")
	return cmd
}
