package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Driver and DB override SHOPSYNC_DRIVER and SHOPSYNC_DB when set.
	Driver string
	DB     string

	// MetricsTextfile, when set, receives the intent metrics after each
	// command in Prometheus text format.
	MetricsTextfile string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the shopsync CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "shopsync",
		Short: "shopsync - shared cart, wishlist and catalog state",
		Long: `Drive the storefront from the command line.

Every command opens the configured collection store, applies one intent
the way a page would, prints the resulting notification and badges, and
closes the store again. Several shells pointed at one database behave
like several tabs of the same site.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "storage driver (memory|sqlite|sqlite-pure|postgres)")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "database path or DSN")
	cmd.PersistentFlags().StringVar(&opts.MetricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file after the command")

	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewWhoamiCommand(opts))
	cmd.AddCommand(NewCartCommand(opts))
	cmd.AddCommand(NewWishlistCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewDashboardCommand(opts))
	cmd.AddCommand(NewFeaturedCommand(opts))
	cmd.AddCommand(NewSnapshotCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
