package cli

import (
	"github.com/spf13/cobra"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "seed",
		Short:         "Load demo data into an empty local store",
		Long:          "Load demo accounts, products and historical orders. A no-op when the store already has users.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return out.Fail(err)
			}
			defer app.Close()

			if err := app.Store.Seed(cmd.Context()); err != nil {
				return out.Fail(err)
			}
			return out.Success("Demo data loaded (admin@satchel.app / demo@satchel.app).", nil)
		},
	}
}
