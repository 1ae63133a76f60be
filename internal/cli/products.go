package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/satchel-app/satchel/internal/store"
)

// NewProductsCommand creates the products command group.
func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse and manage the catalog",
	}
	cmd.AddCommand(newProductsListCommand(rootOpts))
	cmd.AddCommand(newProductsShowCommand(rootOpts))
	cmd.AddCommand(newProductsRefreshCommand(rootOpts))
	cmd.AddCommand(newProductsCreateCommand(rootOpts))
	cmd.AddCommand(newProductsUpdateCommand(rootOpts))
	cmd.AddCommand(newProductsDeleteCommand(rootOpts))
	cmd.AddCommand(newProductsImageCommand(rootOpts))
	return cmd
}

func newProductsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List the mirrored catalog with today's effective prices",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return out.Fail(err)
			}
			defer app.Close()

			views, err := app.Syncer.Products(cmd.Context())
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(renderCatalog(views), views)
		},
	}
}

func newProductsShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <product-id>",
		Short:         "Show one product",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return out.Fail(WrapExitError(ExitCommandError, "invalid product id", err))
			}
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return out.Fail(err)
			}
			defer app.Close()

			view, err := app.Syncer.Product(cmd.Context(), id)
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(renderProduct(view), view)
		},
	}
}

func newProductsRefreshCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "refresh",
		Short:         "Pull the catalog from the service (requires connectivity)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return out.Fail(err)
			}
			defer app.Close()

			if err := app.Syncer.RefreshCatalog(cmd.Context()); err != nil {
				return out.Fail(err)
			}
			return out.Success("Catalog refreshed.", nil)
		},
	}
}

// productFlags binds the editable product fields to flags.
type productFlags struct {
	title, subtitle, description, category string
	priceCents                             int64
	hidden                                 bool
}

func (pf *productFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&pf.title, "title", "", "product title")
	cmd.Flags().StringVar(&pf.subtitle, "subtitle", "", "product subtitle")
	cmd.Flags().StringVar(&pf.description, "description", "", "long description")
	cmd.Flags().StringVar(&pf.category, "category", "", "category (defaults to General)")
	cmd.Flags().Int64Var(&pf.priceCents, "price-cents", 0, "base price in cents")
	cmd.Flags().BoolVar(&pf.hidden, "hidden", false, "hide from the listing")
}

func newProductsCreateCommand(rootOpts *RootOptions) *cobra.Command {
	pf := &productFlags{}

	cmd := &cobra.Command{
		Use:           "create",
		Short:         "Publish a catalog entry (administrator)",
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
			created, err := app.Syncer.CreateProduct(cmd.Context(), store.Product{
				Title:       pf.title,
				Subtitle:    pf.subtitle,
				PriceCents:  pf.priceCents,
				Description: pf.description,
				Category:    pf.category,
				Visible:     !pf.hidden,
			})
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(fmt.Sprintf("Created product %d: %s", created.ID, created.Title), created)
		},
	}

	pf.register(cmd)
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("price-cents")
	return cmd
}

func newProductsUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	pf := &productFlags{}

	cmd := &cobra.Command{
		Use:           "update <product-id>",
		Short:         "Edit a catalog entry (administrator)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			id, err := strconv.ParseInt(args[0], 10, 64)
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
			current, err := app.Store.ProductByID(cmd.Context(), id)
			if err != nil {
				return out.Fail(err)
			}

			applyIfSet(cmd, "title", &current.Title, pf.title)
			applyIfSet(cmd, "subtitle", &current.Subtitle, pf.subtitle)
			applyIfSet(cmd, "description", &current.Description, pf.description)
			applyIfSet(cmd, "category", &current.Category, pf.category)
			if cmd.Flags().Changed("price-cents") {
				current.PriceCents = pf.priceCents
			}
			if cmd.Flags().Changed("hidden") {
				current.Visible = !pf.hidden
			}

			if err := app.Syncer.UpdateProduct(cmd.Context(), current); err != nil {
				return out.Fail(err)
			}
			return out.Success(fmt.Sprintf("Updated product %d.", id), nil)
		},
	}

	pf.register(cmd)
	return cmd
}

func newProductsDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <product-id>",
		Short:         "Remove a catalog entry (administrator)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			id, err := strconv.ParseInt(args[0], 10, 64)
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
			if err := app.Syncer.DeleteProduct(cmd.Context(), id); err != nil {
				return out.Fail(err)
			}
			return out.Success(fmt.Sprintf("Deleted product %d.", id), nil)
		},
	}
}

func newProductsImageCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "image <product-id> <file>",
		Short:         "Upload a product image (administrator)",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return out.Fail(WrapExitError(ExitCommandError, "invalid product id", err))
			}
			file, err := os.Open(args[1])
			if err != nil {
				return out.Fail(WrapExitError(ExitCommandError, "opening image file", err))
			}
			defer file.Close()

			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return out.Fail(err)
			}
			defer app.Close()

			if _, err := app.requireAdmin(); err != nil {
				return out.Fail(err)
			}
			ref, err := app.Syncer.UploadProductImage(cmd.Context(), id, file.Name(), file)
			if err != nil {
				return out.Fail(err)
			}
			return out.Success("Image uploaded: "+ref, map[string]string{"image_ref": ref})
		},
	}
}
