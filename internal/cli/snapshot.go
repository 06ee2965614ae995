package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/shopsync/internal/blob"
	"github.com/roach88/shopsync/internal/snapshot"
)

// SnapshotOptions holds flags shared by the snapshot commands. Empty values
// fall back to the SHOPSYNC_BLOB_* environment.
type SnapshotOptions struct {
	*RootOptions
	BlobDriver string
	BlobRoot   string
	Bucket     string
}

// SnapshotResult is printed by export and import.
type SnapshotResult struct {
	Key         string   `json:"key"`
	Driver      string   `json:"driver"`
	Size        int64    `json:"size_bytes,omitempty"`
	Collections []string `json:"collections"`
}

// NewSnapshotCommand creates the snapshot command group.
func NewSnapshotCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SnapshotOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Export or import every collection as one JSON document",
		Long: `Copy the whole store to a blob store and back.

Snapshots are written under "snapshots/" on the local filesystem or an S3
bucket. Import replaces every collection in a single batch.

Examples:
  shopsync snapshot export
  shopsync snapshot list --blob-driver s3 --bucket shop-backups
  shopsync snapshot import snapshots/20240101T120000Z.json`,
	}
	cmd.PersistentFlags().StringVar(&opts.BlobDriver, "blob-driver", "", "fs|s3|memory")
	cmd.PersistentFlags().StringVar(&opts.BlobRoot, "blob-root", "", "filesystem root for the fs driver")
	cmd.PersistentFlags().StringVar(&opts.Bucket, "bucket", "", "bucket for the s3 driver")

	cmd.AddCommand(newSnapshotExportCommand(opts))
	cmd.AddCommand(newSnapshotImportCommand(opts))
	cmd.AddCommand(newSnapshotListCommand(opts))
	return cmd
}

func (o *SnapshotOptions) blobConfig(base blob.Config) blob.Config {
	if o.BlobDriver != "" {
		base.Driver = blob.Driver(strings.ToLower(o.BlobDriver))
	}
	if o.BlobRoot != "" {
		base.FSRoot = o.BlobRoot
	}
	if o.Bucket != "" {
		base.S3.Bucket = o.Bucket
	}
	if base.Driver == "" {
		base.Driver = blob.DriverFilesystem
	}
	return base
}

// withSnapshots opens the app and the snapshot service over the configured
// blob store.
func withSnapshots(opts *SnapshotOptions, fn func(cmd *cobra.Command, a *app, svc *snapshot.Service, args []string) error) func(*cobra.Command, []string) error {
	return withApp(opts.RootOptions, func(cmd *cobra.Command, a *app, args []string) error {
		blobs, err := blob.Open(cmd.Context(), opts.blobConfig(a.cfg.Blob))
		if err != nil {
			return WrapExitError(ExitCommandError, "open blob store", err)
		}
		svc, err := snapshot.New(snapshot.Deps{Store: a.store, Blobs: blobs, Logger: a.log.Named("snapshot")})
		if err != nil {
			return WrapExitError(ExitCommandError, "build snapshot service", err)
		}
		return fn(cmd, a, svc, args)
	})
}

func collectionNames(doc snapshot.Document) []string {
	return slices.Sorted(maps.Keys(doc.Collections))
}

func newSnapshotExportCommand(opts *SnapshotOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export [key]",
		Short: "Write the store to a snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: withSnapshots(opts, func(cmd *cobra.Command, a *app, svc *snapshot.Service, args []string) error {
			var key string
			if len(args) == 1 {
				key = args[0]
			}
			info, doc, err := svc.Export(cmd.Context(), key)
			if err != nil {
				return a.failErr(err)
			}
			res := SnapshotResult{Key: info.Key, Driver: string(opts.blobConfig(a.cfg.Blob).Driver), Size: info.Size, Collections: collectionNames(doc)}
			return a.out.Render(res, func(w io.Writer) {
				fmt.Fprintf(w, "Exported %d collections to %s (%d bytes)\n", len(res.Collections), res.Key, res.Size)
			})
		}),
	}
}

func newSnapshotImportCommand(opts *SnapshotOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <key>",
		Short: "Replace the store with a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: withSnapshots(opts, func(cmd *cobra.Command, a *app, svc *snapshot.Service, args []string) error {
			doc, err := svc.Import(cmd.Context(), args[0])
			if err != nil {
				return a.failErr(err)
			}
			badges, err := a.page.Badges(cmd.Context())
			if err != nil {
				return a.failErr(err)
			}
			res := SnapshotResult{Key: args[0], Driver: string(opts.blobConfig(a.cfg.Blob).Driver), Collections: collectionNames(doc)}
			return a.out.Render(res, func(w io.Writer) {
				fmt.Fprintf(w, "Imported %d collections from %s\n", len(res.Collections), res.Key)
				printBadges(w, badges)
			})
		}),
	}
}

func newSnapshotListCommand(opts *SnapshotOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		Args:  cobra.NoArgs,
		RunE: withSnapshots(opts, func(cmd *cobra.Command, a *app, svc *snapshot.Service, _ []string) error {
			infos, err := svc.List(cmd.Context())
			if err != nil {
				return a.failErr(err)
			}
			return a.out.Render(infos, func(w io.Writer) {
				if len(infos) == 0 {
					fmt.Fprintln(w, "No snapshots found.")
					return
				}
				for _, in := range infos {
					fmt.Fprintf(w, "%-44s %8d  %s\n", in.Key, in.Size, in.LastModified.UTC().Format("2006-01-02T15:04:05Z"))
				}
			})
		}),
	}
}
