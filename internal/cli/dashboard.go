package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/shopsync/internal/dashboard"
	"github.com/roach88/shopsync/internal/money"
)

// NewDashboardCommand creates the dashboard command.
func NewDashboardCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard for the logged-in role",
		Args:  cobra.NoArgs,
		RunE: withApp(rootOpts, func(cmd *cobra.Command, a *app, _ []string) error {
			ctx := cmd.Context()
			u, err := a.page.Sessions().Require(ctx)
			if err != nil {
				return a.failErr(err)
			}
			d, err := a.page.Dashboards().For(ctx, u)
			if err != nil {
				return a.failErr(err)
			}
			return a.out.Render(d, func(w io.Writer) { printDashboard(w, d) })
		}),
	}
}

func printDashboard(w io.Writer, d dashboard.Dashboard) {
	switch {
	case d.Customer != nil:
		c := d.Customer
		fmt.Fprintf(w, "Welcome back, %s\n", c.User.Name)
		fmt.Fprintf(w, "Orders (%d)\n", len(c.Orders))
		for _, o := range c.Orders {
			date := "-"
			if !o.Date.IsZero() {
				date = o.Date.Format("2006-01-02")
			}
			fmt.Fprintf(w, "  %s  %-10s  %10s  %s\n", o.ShortID, date, money.Format(money.FromFloat(o.Total)), o.Status)
		}
		fmt.Fprintln(w, "Recommended")
		for _, p := range c.Recommended {
			fmt.Fprintf(w, "  %-24s %10s  %s\n", p.Name, money.Format(money.FromFloat(p.Price)), p.StoreName)
		}
	case d.Manager != nil:
		m := d.Manager
		fmt.Fprintf(w, "%s (%d products)\n", m.StoreName, m.ProductCount)
		fmt.Fprintln(w, "Your listings")
		for _, p := range m.Listings {
			fmt.Fprintf(w, "  %-24s %10s  from %s\n", p.Name, money.Format(money.FromFloat(p.Price)), money.Format(money.FromFloat(p.OriginalPrice)))
		}
		fmt.Fprintf(w, "Warehouse (%d)\n", len(m.Warehouse))
		for _, p := range m.Warehouse {
			fmt.Fprintf(w, "  %-38s %-24s %10s\n", p.ID, p.Name, money.Format(money.FromFloat(p.Price)))
		}
	case d.Shipper != nil:
		s := d.Shipper
		fmt.Fprintf(w, "%s: %d products, commission earned %s\n", s.User.Name, s.ProductCount, money.Format(s.TotalCommission))
		for _, p := range s.Products {
			fmt.Fprintf(w, "  %-24s sold %-4d earned %s\n", p.Name, p.Sold, money.Format(p.Earned))
		}
	}
}

// NewFeaturedCommand creates the featured command: the homepage cards.
func NewFeaturedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "featured",
		Short: "Show the homepage product cards",
		Args:  cobra.NoArgs,
		RunE: withApp(rootOpts, func(cmd *cobra.Command, a *app, _ []string) error {
			cards, err := a.page.Dashboards().Featured(cmd.Context())
			if err != nil {
				return a.failErr(err)
			}
			return a.out.Render(cards, func(w io.Writer) {
				for _, c := range cards {
					fmt.Fprintf(w, "%-10s %-24s %10s  %s\n", c.ID, c.Name, money.Format(money.FromFloat(c.Price)), c.Store)
				}
			})
		}),
	}
}
