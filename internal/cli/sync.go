package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mlei/skuforge/internal/config"
	"github.com/mlei/skuforge/internal/ledger"
	"github.com/mlei/skuforge/internal/sheets"
)

// SyncOptions holds flags for the sync command.
type SyncOptions struct {
	*RootOptions
	Overwrite bool
	Yes       bool

	// Client overrides the remote spreadsheet client (for testing).
	Client sheets.Client
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	return newSyncCommand(&SyncOptions{RootOptions: rootOpts})
}

func newSyncCommand(opts *SyncOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Merge the CSV ledger into the remote spreadsheet",
		Long: `Merge every ledger row whose SKU is not already present into the
configured spreadsheet. The merge is additive and re-reads the remote
sheet on every run, so rows added by other people are never duplicated
or disturbed.

--overwrite replaces the whole worksheet with the local ledger instead.
It is destructive to remote-only rows and therefore requires --yes.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Overwrite, "overwrite", false, "replace the worksheet with the local ledger")
	cmd.Flags().BoolVar(&opts.Yes, "yes", false, "confirm a destructive overwrite")

	return cmd
}

func runSync(opts *SyncOptions, cmd *cobra.Command) error {
	logger := configureLogging(opts.Verbose)
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	if opts.Overwrite && !opts.Yes {
		return NewExitError(ExitCommandError, "--overwrite replaces remote rows; pass --yes to confirm")
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}

	rows, err := ledger.New(cfg.LedgerPath).ReadAll()
	if err != nil {
		return WrapExitError(ExitCommandError, "read ledger", err)
	}
	logger.Debug("ledger read", "rows", len(rows))

	client := opts.Client
	if client == nil {
		gc, err := sheets.NewGoogleClient(cmd.Context(), cfg.Drive.CredentialsFile)
		if err != nil {
			return WrapExitError(ExitCommandError, "connect to Google APIs", err)
		}
		client = gc
	}

	mirror := &sheets.Mirror{
		Client:      client,
		Spreadsheet: cfg.Sheet.Spreadsheet,
		Worksheet:   cfg.Sheet.Worksheet,
		SKUColumn:   cfg.Sheet.SKUColumn,
	}

	var res *sheets.MergeResult
	if opts.Overwrite {
		res, err = mirror.Overwrite(cmd.Context(), rows)
	} else {
		res, err = mirror.Merge(cmd.Context(), rows)
	}
	if err != nil {
		var ambig *sheets.AmbiguousSchemaError
		if errors.As(err, &ambig) {
			_ = formatter.Error(CodeAmbiguous, err.Error(), ambig.Candidates)
			return NewExitError(ExitFailure, err.Error())
		}
		return WrapExitError(ExitCommandError, "sync failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(res)
	}

	w := cmd.OutOrStdout()
	if opts.Overwrite {
		fmt.Fprintf(w, "✓ Overwrote %q with %d row(s)\n", res.Spreadsheet, res.Appended)
	} else {
		fmt.Fprintf(w, "✓ Merged into %q: %d appended, %d already present\n", res.Spreadsheet, res.Appended, res.Skipped)
	}
	if res.URL != "" {
		fmt.Fprintf(w, "  %s\n", res.URL)
	}
	return nil
}
