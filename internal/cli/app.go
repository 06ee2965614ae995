package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/shopsync/internal/apperr"
	"github.com/roach88/shopsync/internal/config"
	"github.com/roach88/shopsync/internal/metrics"
	"github.com/roach88/shopsync/internal/obs"
	"github.com/roach88/shopsync/internal/store"
	"github.com/roach88/shopsync/internal/storefront"
)

// app is everything one command invocation runs against.
type app struct {
	opts    *RootOptions
	cfg     config.Config
	log     *zap.Logger
	store   *store.Store
	page    *storefront.Page
	metrics *metrics.Recorder
	out     *OutputFormatter
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(opts *RootOptions) config.Config {
	cfg := config.Load()
	if opts.Driver != "" {
		cfg.Driver = opts.Driver
	}
	if opts.DB != "" {
		cfg.DSN = opts.DB
	}
	return cfg
}

func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

func openApp(cmd *cobra.Command, opts *RootOptions) (*app, error) {
	cfg := loadConfig(opts)
	log := obs.NewLoggerTo(cmd.ErrOrStderr(), obs.ParseLevel(cfg.LogLevel, opts.Verbose))

	medium, err := config.OpenMedium(cmd.Context(), cfg)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open storage", err)
	}
	st := store.New(medium, store.WithLogger(log.Named("store")))
	rec := metrics.New()

	page, err := storefront.New(storefront.Deps{
		Store:   st,
		Logger:  log.Named("page"),
		Metrics: rec,
	})
	if err != nil {
		_ = st.Close()
		return nil, WrapExitError(ExitCommandError, "build page", err)
	}

	a := &app{
		opts:    opts,
		cfg:     cfg,
		log:     log,
		store:   st,
		page:    page,
		metrics: rec,
		out:     newFormatter(cmd, opts),
	}
	a.out.VerboseLog("storage: %s %s", cfg.Driver, cfg.DSN)
	return a, nil
}

// Close writes the metrics textfile when requested and releases the store.
func (a *app) Close() error {
	var errs []error
	if a.opts.MetricsTextfile != "" {
		errs = append(errs, a.metrics.WriteTextfile(a.opts.MetricsTextfile))
	}
	errs = append(errs, a.store.Close())
	_ = a.log.Sync()
	return errors.Join(errs...)
}

// withApp opens the app for a command body and closes it afterwards.
func withApp(opts *RootOptions, fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		a, err := openApp(cmd, opts)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := a.Close(); cerr != nil && err == nil {
				err = WrapExitError(ExitCommandError, "close storage", cerr)
			}
		}()
		return fn(cmd, a, args)
	}
}

// dispatch applies one intent and prints what the page would show.
func (a *app) dispatch(ctx context.Context, in storefront.Intent) error {
	out, err := a.page.Dispatch(ctx, in)
	if err != nil || !out.OK() {
		return a.fail(out.Code, out.Message, err)
	}
	return a.out.Render(out, func(w io.Writer) {
		if out.Message != "" {
			fmt.Fprintln(w, out.Message)
		}
		printBadges(w, out.Badges)
	})
}

// fail prints a rejection or failure and returns the matching exit error.
func (a *app) fail(code apperr.Code, message string, err error) error {
	if code == "" {
		code = "ERROR"
	}
	var details any
	if fields := apperr.FieldsOf(err); len(fields) > 0 {
		details = fields
	}
	if werr := a.out.Error(string(code), message, details); werr != nil {
		return werr
	}
	return &ExitError{Code: ExitFailure, Message: message, Err: err, Reported: true}
}

// failErr prints err the way Dispatch would have reported it.
func (a *app) failErr(err error) error {
	return a.fail(apperr.CodeOf(err), apperr.UserMessage(err), err)
}

func printBadges(w io.Writer, b storefront.Badges) {
	fmt.Fprintf(w, "cart: %d  wishlist: %d\n", b.Cart, b.Wishlist)
}
