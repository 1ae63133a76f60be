package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewCartCommand creates the cart command group. All cart operations are
// local-only and behave identically with or without connectivity.
func NewCartCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the local cart",
	}
	cmd.AddCommand(newCartShowCommand(rootOpts))
	cmd.AddCommand(newCartAddCommand(rootOpts))
	cmd.AddCommand(newCartSetCommand(rootOpts))
	cmd.AddCommand(newCartRemoveCommand(rootOpts))
	cmd.AddCommand(newCartClearCommand(rootOpts))
	return cmd
}

func newCartShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show",
		Short:         "Show the priced cart",
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
			cart, err := app.Session.Cart(cmd.Context())
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(renderCart(cart), cart)
		},
	}
}

func newCartAddCommand(rootOpts *RootOptions) *cobra.Command {
	var qty int64

	cmd := &cobra.Command{
		Use:           "add <product-id>",
		Short:         "Add a product (merges into an existing line)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			productID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return out.Fail(WrapExitError(ExitCommandError, "invalid product id", err))
			}
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return out.Fail(err)
			}
			defer app.Close()

			if _, err := app.requireIdentity(); err != nil {
				return out.Fail(err)
			}
			if err := app.Session.AddToCart(cmd.Context(), productID, qty); err != nil {
				return out.Fail(err)
			}
			return out.Success(fmt.Sprintf("Added %d x product %d. Cart has %d lines.",
				qty, productID, app.Session.State().CartCount), nil)
		},
	}

	cmd.Flags().Int64Var(&qty, "qty", 1, "quantity to add")
	return cmd
}

func newCartSetCommand(rootOpts *RootOptions) *cobra.Command {
	var qty int64

	cmd := &cobra.Command{
		Use:           "set <product-id>",
		Short:         "Overwrite a line's quantity",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			productID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return out.Fail(WrapExitError(ExitCommandError, "invalid product id", err))
			}
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return out.Fail(err)
			}
			defer app.Close()

			if _, err := app.requireIdentity(); err != nil {
				return out.Fail(err)
			}
			if err := app.Session.SetCartQuantity(cmd.Context(), productID, qty); err != nil {
				return out.Fail(err)
			}
			return out.Success(fmt.Sprintf("Set product %d to %d.", productID, qty), nil)
		},
	}

	cmd.Flags().Int64Var(&qty, "qty", 1, "new quantity")
	cmd.MarkFlagRequired("qty")
	return cmd
}

func newCartRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <product-id>",
		Short:         "Remove a line",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			productID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return out.Fail(WrapExitError(ExitCommandError, "invalid product id", err))
			}
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return out.Fail(err)
			}
			defer app.Close()

			if _, err := app.requireIdentity(); err != nil {
				return out.Fail(err)
			}
			if err := app.Session.RemoveFromCart(cmd.Context(), productID); err != nil {
				return out.Fail(err)
			}
			return out.Success(fmt.Sprintf("Removed product %d.", productID), nil)
		},
	}
}

func newCartClearCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "clear",
		Short:         "Empty the cart",
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
			if err := app.Syncer.ClearCart(cmd.Context(), ident.UserID); err != nil {
				return out.Fail(err)
			}
			return out.Success("Cart cleared.", nil)
		},
	}
}
