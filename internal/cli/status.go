package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satchel-app/satchel/internal/metrics"
)

// NewStatusCommand creates the status command: connectivity, session and
// mirror freshness at a glance.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "status",
		Short:         "Show connectivity, session and local mirror summary",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return out.Fail(err)
			}
			defer app.Close()

			ctx := cmd.Context()
			online := app.Probe.Online(ctx)

			state := app.Session.State()
			products, err := app.Store.ListProducts(ctx, false)
			if err != nil {
				return out.Fail(err)
			}
			counters, err := metrics.Snapshot()
			if err != nil {
				return out.Fail(err)
			}

			var b strings.Builder
			if online {
				fmt.Fprintf(&b, "Service: reachable (%s)\n", app.Config.API.BaseURL)
			} else {
				fmt.Fprintf(&b, "Service: unreachable (%s)\n", app.Config.API.BaseURL)
			}
			if state.SignedIn {
				mode := "online session"
				if state.Identity.Offline {
					mode = "offline session"
				}
				fmt.Fprintf(&b, "Signed in: %s (%s)\n", state.Identity.Email, mode)
				fmt.Fprintf(&b, "Cart: %d lines\n", state.CartCount)
			} else {
				fmt.Fprintln(&b, "Signed in: no")
			}
			fmt.Fprintf(&b, "Catalog: %d products mirrored\n", len(products))
			if len(counters) > 0 {
				fmt.Fprintln(&b, "Counters:")
				keys := make([]string, 0, len(counters))
				for k := range counters {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Fprintf(&b, "  %s = %g\n", k, counters[k])
				}
			}

			return out.Success(b.String(), map[string]any{
				"online":    online,
				"signed_in": state.SignedIn,
				"offline":   state.Identity.Offline,
				"cart":      state.CartCount,
				"products":  len(products),
				"metrics":   counters,
			})
		},
	}
}
