package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/satchel-app/satchel/internal/store"
)

// NewPromoCommand creates the promo command group. Promotions are
// local-owned: edits commit locally and publish upstream on a
// best-effort basis.
func NewPromoCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "promo",
		Short: "Manage promotions",
	}
	cmd.AddCommand(newPromoListCommand(rootOpts))
	cmd.AddCommand(newPromoSetCommand(rootOpts))
	cmd.AddCommand(newPromoDeleteCommand(rootOpts))
	return cmd
}

func newPromoListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List promotions active today",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return out.Fail(err)
			}
			defer app.Close()

			promos, err := app.Syncer.ActivePromotions(cmd.Context())
			if err != nil {
				return out.Fail(err)
			}
			products, err := app.Store.ListProducts(cmd.Context(), true)
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(renderPromotions(promos, productTitles(products)), promos)
		},
	}
}

func newPromoSetCommand(rootOpts *RootOptions) *cobra.Command {
	var priceCents int64
	var from, to string
	var hidden bool

	cmd := &cobra.Command{
		Use:           "set <product-id>",
		Short:         "Create or replace a product's promotion (administrator)",
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

			if _, err := app.requireAdmin(); err != nil {
				return out.Fail(err)
			}
			err = app.Syncer.UpsertPromotion(cmd.Context(), store.Promotion{
				ProductID:  productID,
				PriceCents: priceCents,
				StartDate:  from,
				EndDate:    to,
				Visible:    !hidden,
			})
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(fmt.Sprintf("Promotion set: product %d at %s from %s to %s.",
				productID, store.FormatCents(priceCents), from, to), nil)
		},
	}

	cmd.Flags().Int64Var(&priceCents, "price-cents", 0, "promotional price in cents")
	cmd.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVar(&to, "to", "", "last day (YYYY-MM-DD, inclusive)")
	cmd.Flags().BoolVar(&hidden, "hidden", false, "create the promotion hidden")
	cmd.MarkFlagRequired("price-cents")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	return cmd
}

func newPromoDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <product-id>",
		Short:         "Remove a product's promotion (administrator)",
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

			if _, err := app.requireAdmin(); err != nil {
				return out.Fail(err)
			}
			if err := app.Syncer.DeletePromotion(cmd.Context(), productID); err != nil {
				return out.Fail(err)
			}
			return out.Success(fmt.Sprintf("Promotion removed for product %d.", productID), nil)
		},
	}
}
