package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/shopsync/internal/identity"
	"github.com/roach88/shopsync/internal/model"
	"github.com/roach88/shopsync/internal/money"
	"github.com/roach88/shopsync/internal/storefront"
)

// CartView is the cart as printed by "cart show".
type CartView struct {
	Lines []model.CartEntry `json:"lines"`
	Count int               `json:"count"`
	Total string            `json:"total"`
}

// NewCartCommand creates the cart command group.
func NewCartCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Add, adjust and check out cart lines",
	}
	cmd.AddCommand(newCartAddCommand(rootOpts))
	cmd.AddCommand(newCartAdjustCommand(rootOpts))
	cmd.AddCommand(newCartRemoveCommand(rootOpts))
	cmd.AddCommand(newCartShowCommand(rootOpts))
	cmd.AddCommand(newCartCheckoutCommand(rootOpts))
	return cmd
}

func newCartAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		product  ProductFlags
		quantity int
	)
	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Long: `Add a product to the cart, merging with an existing line for the same id.

The product card is looked up by id; flags override or supply its fields.

Examples:
  shopsync cart add 1
  shopsync cart add 7 --name Lamp --price 30 --quantity 2`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(rootOpts, func(cmd *cobra.Command, a *app, args []string) error {
			ref, err := productRef(cmd.Context(), a.store, args[0], product)
			if err != nil {
				return a.failErr(err)
			}
			ref.Quantity = quantity
			return a.dispatch(cmd.Context(), storefront.Intent{Kind: storefront.KindAddToCart, Product: ref})
		}),
	}
	cmd.Flags().StringVar(&product.Name, "name", "", "product name")
	cmd.Flags().Float64Var(&product.Price, "price", 0, "unit price")
	cmd.Flags().StringVar(&product.Image, "image", "", "image URL")
	cmd.Flags().IntVar(&quantity, "quantity", 1, "quantity to add")
	return cmd
}

func newCartAdjustCommand(rootOpts *RootOptions) *cobra.Command {
	var delta int
	cmd := &cobra.Command{
		Use:   "adjust <product-id>",
		Short: "Change a line's quantity (never below 1)",
		Example: `  shopsync cart adjust 1 --by 2
  shopsync cart adjust 1 --by -1`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(rootOpts, func(cmd *cobra.Command, a *app, args []string) error {
			return a.dispatch(cmd.Context(), storefront.Intent{
				Kind:  storefront.KindAdjustQuantity,
				ID:    identity.Normalize(args[0]),
				Delta: delta,
			})
		}),
	}
	cmd.Flags().IntVar(&delta, "by", 1, "quantity delta")
	return cmd
}

func newCartRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(rootOpts, func(cmd *cobra.Command, a *app, args []string) error {
			return a.dispatch(cmd.Context(), storefront.Intent{
				Kind: storefront.KindRemoveFromCart,
				ID:   identity.Normalize(args[0]),
			})
		}),
	}
}

func newCartShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List cart lines and the total",
		Args:  cobra.NoArgs,
		RunE: withApp(rootOpts, func(cmd *cobra.Command, a *app, _ []string) error {
			ctx := cmd.Context()
			lines, err := a.page.Cart().Lines(ctx)
			if err != nil {
				return a.failErr(err)
			}
			total, err := a.page.Cart().Total(ctx)
			if err != nil {
				return a.failErr(err)
			}
			count, err := a.page.Cart().Count(ctx)
			if err != nil {
				return a.failErr(err)
			}
			view := CartView{Lines: lines, Count: count, Total: money.Format(total)}
			return a.out.Render(view, func(w io.Writer) {
				if len(lines) == 0 {
					fmt.Fprintln(w, "Your cart is empty.")
					return
				}
				for _, l := range lines {
					fmt.Fprintf(w, "%-10s %-28s x%-3d %10s\n", l.ID, l.Name, l.Quantity, money.Format(money.LineTotal(l.Price, l.Quantity)))
				}
				fmt.Fprintf(w, "%d items, total %s\n", view.Count, view.Total)
			})
		}),
	}
}

func newCartCheckoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Begin checkout with the current cart",
		Args:  cobra.NoArgs,
		RunE: withApp(rootOpts, func(cmd *cobra.Command, a *app, _ []string) error {
			return a.dispatch(cmd.Context(), storefront.Intent{Kind: storefront.KindCheckout})
		}),
	}
}
