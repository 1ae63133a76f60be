package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satchel-app/satchel/internal/store"
)

// NewOrdersCommand creates the orders command group.
func NewOrdersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "View and manage order history",
	}
	cmd.AddCommand(newOrdersListCommand(rootOpts))
	cmd.AddCommand(newOrdersShowCommand(rootOpts))
	cmd.AddCommand(newOrdersRefreshCommand(rootOpts))
	cmd.AddCommand(newOrdersStatusCommand(rootOpts))
	cmd.AddCommand(newOrdersAnnotateCommand(rootOpts))
	return cmd
}

func newOrdersListCommand(rootOpts *RootOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List mirrored orders",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return out.Fail(err)
			}
			defer app.Close()

			ident, err := app.requireIdentity()
			if err != nil {
				return out.Fail(err)
			}

			var orders []store.Order
			if all {
				if _, err := app.requireAdmin(); err != nil {
					return out.Fail(err)
				}
				orders, err = app.Syncer.AllOrders(cmd.Context())
			} else {
				orders, err = app.Syncer.Orders(cmd.Context(), ident.UserID)
			}
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(renderOrders(orders), orders)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "list every user's orders (administrator)")
	return cmd
}

func newOrdersShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <order-id>",
		Short:         "Show one order as a receipt",
		Args:          cobra.ExactArgs(1),
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
			view, err := app.Syncer.Order(cmd.Context(), args[0])
			if err != nil {
				return out.Fail(err)
			}
			products, err := app.Store.ListProducts(cmd.Context(), true)
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(renderReceipt(view.Order, productTitles(products)), view)
		},
	}
}

func newOrdersRefreshCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "refresh",
		Short:         "Pull the authoritative history from the service (requires connectivity)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return out.Fail(err)
			}
			defer app.Close()

			ident, err := app.requireIdentity()
			if err != nil {
				return out.Fail(err)
			}
			if err := app.Syncer.RefreshOrders(cmd.Context(), ident.UserID); err != nil {
				return out.Fail(err)
			}
			return out.Success("Order history refreshed.", nil)
		},
	}
}

func newOrdersStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "status <order-id> <pending|in_progress|completed|cancelled>",
		Short:         "Advance an order's status (administrator, requires connectivity)",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return out.Fail(err)
			}
			defer app.Close()

			if _, err := app.requireAdmin(); err != nil {
				return out.Fail(err)
			}
			status := store.OrderStatus(args[1])
			if err := app.Syncer.UpdateOrderStatus(cmd.Context(), args[0], status); err != nil {
				return out.Fail(err)
			}
			return out.Success(fmt.Sprintf("Order %s is now %s.", args[0], status), nil)
		},
	}
}

func newOrdersAnnotateCommand(rootOpts *RootOptions) *cobra.Command {
	var deliveryTime, notes string

	cmd := &cobra.Command{
		Use:           "annotate <order-id>",
		Short:         "Set delivery time and notes (allowed on terminal orders)",
		Args:          cobra.ExactArgs(1),
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
			if err := app.Syncer.AnnotateOrder(cmd.Context(), args[0], deliveryTime, notes); err != nil {
				return out.Fail(err)
			}
			return out.Success(fmt.Sprintf("Order %s annotated.", args[0]), nil)
		},
	}

	cmd.Flags().StringVar(&deliveryTime, "delivery-time", "", "requested delivery time")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	return cmd
}
