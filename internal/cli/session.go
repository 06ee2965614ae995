package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/shopsync/internal/identity"
	"github.com/roach88/shopsync/internal/model"
	"github.com/roach88/shopsync/internal/storefront"
)

// LoginOptions holds flags for the login command.
type LoginOptions struct {
	*RootOptions
	Role      string
	ID        string
	StoreID   string
	StoreName string
}

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoginOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "login <name>",
		Short: "Start a session",
		Long: `Log in as a customer, store manager or shipper.

Managers get a store id when none is given; the store name defaults to
"<name>'s Store".

Examples:
  shopsync login Ada
  shopsync login Mia --role manager
  shopsync login Sam --role shipper --id s1`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(rootOpts, func(cmd *cobra.Command, a *app, args []string) error {
			return a.dispatch(cmd.Context(), storefront.Intent{
				Kind: storefront.KindLogin,
				User: storefront.Login{
					ID:        identity.Normalize(opts.ID),
					Name:      args[0],
					Role:      model.Role(opts.Role),
					StoreID:   identity.Normalize(opts.StoreID),
					StoreName: opts.StoreName,
				},
			})
		}),
	}

	cmd.Flags().StringVar(&opts.Role, "role", string(model.RoleCustomer), "customer|manager|shipper")
	cmd.Flags().StringVar(&opts.ID, "id", "", "user id (generated when empty)")
	cmd.Flags().StringVar(&opts.StoreID, "store-id", "", "manager store id (generated when empty)")
	cmd.Flags().StringVar(&opts.StoreName, "store-name", "", "manager store name")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: withApp(rootOpts, func(cmd *cobra.Command, a *app, _ []string) error {
			return a.dispatch(cmd.Context(), storefront.Intent{Kind: storefront.KindLogout})
		}),
	}
}

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: withApp(rootOpts, func(cmd *cobra.Command, a *app, _ []string) error {
			u, err := a.page.Sessions().Require(cmd.Context())
			if err != nil {
				return a.failErr(err)
			}
			return a.out.Render(u, func(w io.Writer) {
				fmt.Fprintf(w, "%s (%s) id=%s\n", u.Name, u.Role, u.ID)
				if u.Role == model.RoleManager {
					fmt.Fprintf(w, "store: %s id=%s\n", u.StoreLabel(), u.StoreID)
				}
			})
		}),
	}
}
