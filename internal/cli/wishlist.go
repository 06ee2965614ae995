package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/shopsync/internal/identity"
	"github.com/roach88/shopsync/internal/storefront"
)

// NewWishlistCommand creates the wishlist command group.
func NewWishlistCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Save products for later",
	}
	cmd.AddCommand(newWishlistToggleCommand(rootOpts))
	cmd.AddCommand(newWishlistIDCommand(rootOpts, "remove", "Remove a product from the wishlist", storefront.KindRemoveFromWishlist))
	cmd.AddCommand(newWishlistIDCommand(rootOpts, "to-cart", "Add a saved product to the cart", storefront.KindWishlistToCart))
	cmd.AddCommand(newWishlistListCommand(rootOpts))
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Empty the wishlist",
		Args:  cobra.NoArgs,
		RunE: withApp(rootOpts, func(cmd *cobra.Command, a *app, _ []string) error {
			return a.dispatch(cmd.Context(), storefront.Intent{Kind: storefront.KindClearWishlist})
		}),
	})
	return cmd
}

func newWishlistToggleCommand(rootOpts *RootOptions) *cobra.Command {
	var product ProductFlags
	cmd := &cobra.Command{
		Use:   "toggle <product-id>",
		Short: "Add a product to the wishlist, or remove it if already saved",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(rootOpts, func(cmd *cobra.Command, a *app, args []string) error {
			ref, err := productRef(cmd.Context(), a.store, args[0], product)
			if err != nil {
				return a.failErr(err)
			}
			return a.dispatch(cmd.Context(), storefront.Intent{Kind: storefront.KindToggleWishlist, Product: ref})
		}),
	}
	cmd.Flags().StringVar(&product.Name, "name", "", "product name")
	cmd.Flags().Float64Var(&product.Price, "price", 0, "unit price")
	cmd.Flags().StringVar(&product.Image, "image", "", "image URL")
	cmd.Flags().StringVar(&product.Category, "category", "", "category")
	cmd.Flags().StringVar(&product.Store, "store", "", "store label")
	return cmd
}

func newWishlistIDCommand(rootOpts *RootOptions, use, short string, kind storefront.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <product-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withApp(rootOpts, func(cmd *cobra.Command, a *app, args []string) error {
			return a.dispatch(cmd.Context(), storefront.Intent{Kind: kind, ID: identity.Normalize(args[0])})
		}),
	}
}

func newWishlistListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved products",
		Args:  cobra.NoArgs,
		RunE: withApp(rootOpts, func(cmd *cobra.Command, a *app, _ []string) error {
			items, err := a.page.Wishlist().List(cmd.Context())
			if err != nil {
				return a.failErr(err)
			}
			return a.out.Render(items, func(w io.Writer) {
				if len(items) == 0 {
					fmt.Fprintln(w, "Your wishlist is empty.")
					return
				}
				for _, it := range items {
					fmt.Fprintf(w, "%-10s %-28s %-12s %s\n", it.ID, it.Name, it.Category, it.Store)
				}
			})
		}),
	}
}
