package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/shopsync/internal/catalog"
	"github.com/roach88/shopsync/internal/identity"
	"github.com/roach88/shopsync/internal/money"
	"github.com/roach88/shopsync/internal/storefront"
)

// NewCatalogCommand creates the catalog command group: shipper submissions,
// manager promotions and removals from either side.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Move products from the warehouse into stores",
	}
	cmd.AddCommand(newCatalogSubmitCommand(rootOpts))
	cmd.AddCommand(newCatalogPromoteCommand(rootOpts))
	cmd.AddCommand(newCatalogRemoveCommand(rootOpts))
	cmd.AddCommand(newCatalogRenameCommand(rootOpts))
	cmd.AddCommand(newCatalogListCommand(rootOpts))
	return cmd
}

func newCatalogSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	var sub catalog.Submission
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Upload a product to the warehouse (shipper)",
		Example: `  shopsync catalog submit --name Lamp --price 50 --category home --commission 10 \
      --description "Desk lamp" --image https://example.com/lamp.jpg`,
		Args: cobra.NoArgs,
		RunE: withApp(rootOpts, func(cmd *cobra.Command, a *app, _ []string) error {
			return a.dispatch(cmd.Context(), storefront.Intent{Kind: storefront.KindSubmitProduct, Submission: sub})
		}),
	}
	cmd.Flags().StringVar(&sub.Name, "name", "", "product name")
	cmd.Flags().Float64Var(&sub.Price, "price", 0, "warehouse price")
	cmd.Flags().StringVar(&sub.Category, "category", "", "category")
	cmd.Flags().Float64Var(&sub.CommissionPercent, "commission", 0, "commission percent (0-100)")
	cmd.Flags().StringVar(&sub.Description, "description", "", "description")
	cmd.Flags().StringVar(&sub.Image, "image", "", "image URL")
	return cmd
}

func newCatalogPromoteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "promote <warehouse-id>",
		Short: "List a warehouse product in your store at markup (manager)",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(rootOpts, func(cmd *cobra.Command, a *app, args []string) error {
			return a.dispatch(cmd.Context(), storefront.Intent{
				Kind: storefront.KindPromoteProduct,
				ID:   identity.Normalize(args[0]),
			})
		}),
	}
}

func newCatalogRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	var scope string
	cmd := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a warehouse product (shipper) or a store listing (manager)",
		Long: `Remove a product.

With --scope warehouse the product and every store listing made from it
are removed. With --scope store only the listing goes.`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(rootOpts, func(cmd *cobra.Command, a *app, args []string) error {
			return a.dispatch(cmd.Context(), storefront.Intent{
				Kind:  storefront.KindRemoveProduct,
				ID:    identity.Normalize(args[0]),
				Scope: catalog.Scope(strings.ToLower(scope)),
			})
		}),
	}
	cmd.Flags().StringVar(&scope, "scope", string(catalog.ScopeStore), "warehouse|store")
	return cmd
}

func newCatalogRenameCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <store-name>",
		Short: "Rename your store and its listings (manager)",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(rootOpts, func(cmd *cobra.Command, a *app, args []string) error {
			return a.dispatch(cmd.Context(), storefront.Intent{Kind: storefront.KindRenameStore, StoreName: args[0]})
		}),
	}
}

func newCatalogListCommand(rootOpts *RootOptions) *cobra.Command {
	var scope string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List warehouse products or store listings",
		Args:  cobra.NoArgs,
		RunE: withApp(rootOpts, func(cmd *cobra.Command, a *app, _ []string) error {
			ctx := cmd.Context()
			switch catalog.Scope(strings.ToLower(scope)) {
			case catalog.ScopeWarehouse:
				items, err := a.page.Catalog().Warehouse(ctx)
				if err != nil {
					return a.failErr(err)
				}
				return a.out.Render(items, func(w io.Writer) {
					for _, p := range items {
						fmt.Fprintf(w, "%-38s %-24s %10s %5.1f%%  %s\n",
							p.ID, p.Name, money.Format(money.FromFloat(p.Price)), p.CommissionPercent, p.ShipperName)
					}
				})
			case catalog.ScopeStore:
				items, err := a.page.Catalog().StoreProducts(ctx)
				if err != nil {
					return a.failErr(err)
				}
				return a.out.Render(items, func(w io.Writer) {
					for _, p := range items {
						fmt.Fprintf(w, "%-38s %-24s %10s  %s\n",
							p.ID, p.Name, money.Format(money.FromFloat(p.Price)), p.StoreName)
					}
				})
			default:
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid scope %q: must be warehouse or store", scope))
			}
		}),
	}
	cmd.Flags().StringVar(&scope, "scope", string(catalog.ScopeStore), "warehouse|store")
	return cmd
}
