package cli

import (
	"github.com/spf13/cobra"

	"github.com/satchel-app/satchel/internal/remote"
)

// NewCardsCommand creates the cards command group. Cards are
// server-owned; the local rows are a read-through mirror that only ever
// holds masked numbers.
func NewCardsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Manage stored payment cards",
	}
	cmd.AddCommand(newCardsListCommand(rootOpts))
	cmd.AddCommand(newCardsRefreshCommand(rootOpts))
	cmd.AddCommand(newCardsAddCommand(rootOpts))
	cmd.AddCommand(newCardsRemoveCommand(rootOpts))
	return cmd
}

func newCardsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List the mirrored cards",
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
			cards, err := app.Syncer.Cards(cmd.Context(), ident.UserID)
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(renderCards(cards), cards)
		},
	}
}

func newCardsRefreshCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "refresh",
		Short:         "Pull the card list from the service (requires connectivity)",
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
			if err := app.Syncer.RefreshCards(cmd.Context(), ident.UserID); err != nil {
				return out.Fail(err)
			}
			return out.Success("Cards refreshed.", nil)
		},
	}
}

func newCardsAddCommand(rootOpts *RootOptions) *cobra.Command {
	var number, holder, expiry, brand string

	cmd := &cobra.Command{
		Use:           "add",
		Short:         "Store a card (requires connectivity; the full number is never kept locally)",
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
			card, err := app.Syncer.AddCard(cmd.Context(), ident.UserID, remote.AddCardRequest{
				Number: number,
				Holder: holder,
				Expiry: expiry,
				Brand:  brand,
			})
			if err != nil {
				return out.Fail(err)
			}
			return out.Success("Stored card ending "+card.Last4, card)
		},
	}

	cmd.Flags().StringVar(&number, "number", "", "card number")
	cmd.Flags().StringVar(&holder, "holder", "", "cardholder name")
	cmd.Flags().StringVar(&expiry, "expiry", "", "expiry (MM/YY)")
	cmd.Flags().StringVar(&brand, "brand", "", "card brand")
	cmd.MarkFlagRequired("number")
	cmd.MarkFlagRequired("holder")
	cmd.MarkFlagRequired("expiry")
	return cmd
}

func newCardsRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <card-id>",
		Short:         "Delete a stored card (requires connectivity)",
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

			ident, err := app.requireIdentity()
			if err != nil {
				return out.Fail(err)
			}
			if err := app.Syncer.RemoveCard(cmd.Context(), ident.UserID, args[0]); err != nil {
				return out.Fail(err)
			}
			return out.Success("Card removed.", nil)
		},
	}
}
