package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mlei/skuforge/internal/audit"
	"github.com/mlei/skuforge/internal/config"
	"github.com/mlei/skuforge/internal/ledger"
	"github.com/mlei/skuforge/internal/pipeline"
	"github.com/mlei/skuforge/internal/sheets"
	"github.com/mlei/skuforge/internal/vision"
)

// RemoteClient is the combined surface needed when a command talks to
// both the spreadsheet and the file store.
type RemoteClient interface {
	sheets.Client
	sheets.DriveClient
}

// ProcessOptions holds flags for the process command.
type ProcessOptions struct {
	*RootOptions
	Reference  string
	Notes      string
	Hints      string
	Tags       []string
	LedgerPath string
	OutDir     string
	Sync       bool
	Upload     bool

	// Analyzer overrides the vision analyzer (for testing). If nil, a
	// Gemini client is built from the configured API key.
	Analyzer vision.Analyzer

	// Remote overrides the remote client (for testing). If nil and
	// --sync or --upload is set, a Google client is built from the
	// configured credentials.
	Remote RemoteClient
}

// NewProcessCommand creates the process command.
func NewProcessCommand(rootOpts *RootOptions) *cobra.Command {
	return newProcessCommand(&ProcessOptions{RootOptions: rootOpts})
}

func newProcessCommand(opts *ProcessOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <image>...",
		Short: "Catalogue one product from its photographs",
		Long: `Analyze product photographs, synthesize a SKU, and append the product
to the CSV ledger. Accepted products get a local asset bundle (the
photos plus the structured description); duplicates are rejected and
the ledger is left untouched.

Example:
  skuforge process --ref REF001 front.jpg back.jpg
  skuforge process --ref REF002 --notes "consignment lot 4" --sync bag.jpg`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Reference, "ref", "", "reference number for the product (required)")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "operator notes stored on the ledger row")
	cmd.Flags().StringVar(&opts.Hints, "hints", "", "extra context forwarded to the analyzer")
	cmd.Flags().StringSliceVar(&opts.Tags, "tags", nil, "role tag per image, positional (front,back,...)")
	cmd.Flags().StringVar(&opts.LedgerPath, "ledger", "", "override the configured ledger file")
	cmd.Flags().StringVar(&opts.OutDir, "out-dir", "", "override the configured asset directory")
	cmd.Flags().BoolVar(&opts.Sync, "sync", false, "merge the ledger into the remote sheet afterwards")
	cmd.Flags().BoolVar(&opts.Upload, "upload", false, "mirror the asset bundle to the remote drive")
	_ = cmd.MarkFlagRequired("ref")

	return cmd
}

func runProcess(opts *ProcessOptions, imagePaths []string, cmd *cobra.Command) error {
	logger := configureLogging(opts.Verbose)
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}
	if opts.LedgerPath != "" {
		cfg.LedgerPath = opts.LedgerPath
	}
	if opts.OutDir != "" {
		cfg.AssetDir = opts.OutDir
	}

	images := make([][]byte, 0, len(imagePaths))
	for _, path := range imagePaths {
		data, err := os.ReadFile(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "read image", err)
		}
		images = append(images, data)
	}
	logger.Debug("images loaded", "count", len(images))

	p, cleanup, err := buildPipeline(cmd.Context(), opts, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := p.Process(cmd.Context(), pipeline.Input{
		Reference: opts.Reference,
		Images:    images,
		Hints:     opts.Hints,
		Notes:     opts.Notes,
		Tags:      opts.Tags,
		Sync:      opts.Sync,
		Upload:    opts.Upload,
	})
	if err != nil {
		var ambig *sheets.AmbiguousSchemaError
		if errors.As(err, &ambig) {
			_ = formatter.Error(CodeAmbiguous, err.Error(), ambig.Candidates)
			return NewExitError(ExitFailure, err.Error())
		}
		return WrapExitError(ExitCommandError, "process failed", err)
	}

	if !res.Accepted {
		_ = formatter.Error(CodeDuplicate, fmt.Sprintf("rejected: %s; choose a new reference number", res.RejectReason), res.Conflict)
		return NewExitError(ExitFailure, fmt.Sprintf("duplicate product: %s", res.RejectReason))
	}

	if opts.Format == "json" {
		return formatter.Success(res)
	}

	w := cmd.OutOrStdout()
	if res.ExtractionFailed {
		fmt.Fprintln(w, "! Extraction failed; row tagged for review")
	}
	fmt.Fprintf(w, "✓ Added %s\n", res.SKU)
	if res.Archive != nil {
		fmt.Fprintf(w, "  bundle: %s (%d images)\n", res.Archive.FolderPath, len(res.Archive.ImageFiles))
	}
	if res.Merge != nil {
		fmt.Fprintf(w, "  sheet: %d appended, %d skipped\n", res.Merge.Appended, res.Merge.Skipped)
	}
	if res.Upload != nil {
		fmt.Fprintf(w, "  drive: %d files uploaded\n", len(res.Upload.Files))
	}
	return nil
}

// buildPipeline assembles the collaborators the flags call for. The
// returned cleanup closes whatever was opened and is always safe to call.
func buildPipeline(ctx context.Context, opts *ProcessOptions, cfg config.Config, logger *slog.Logger) (*pipeline.Pipeline, func(), error) {
	cleanup := func() {}

	analyzer := opts.Analyzer
	if analyzer == nil {
		if cfg.Vision.APIKey == "" {
			return nil, cleanup, NewExitError(ExitCommandError, "GEMINI_API_KEY is not set")
		}
		analyzer = &vision.Gemini{APIKey: cfg.Vision.APIKey, Model: cfg.Vision.Model}
	}

	assetDir, err := cfg.EnsureAssetDir()
	if err != nil {
		return nil, cleanup, WrapExitError(ExitCommandError, "prepare asset dir", err)
	}

	p := &pipeline.Pipeline{
		Vision:   analyzer,
		Ledger:   ledger.New(cfg.LedgerPath),
		AssetDir: assetDir,
		Log:      logger,
	}

	if store, err := audit.Open(cfg.AuditPath); err != nil {
		// The audit trail is advisory; a broken database never blocks intake.
		logger.Warn("audit log unavailable", "path", cfg.AuditPath, "error", err)
	} else {
		p.Audit = store
		cleanup = func() {
			if err := store.Close(); err != nil {
				logger.Error("close audit log", "error", err)
			}
		}
	}

	if opts.Sync || opts.Upload {
		remote := opts.Remote
		if remote == nil {
			client, err := sheets.NewGoogleClient(ctx, cfg.Drive.CredentialsFile)
			if err != nil {
				cleanup()
				return nil, func() {}, WrapExitError(ExitCommandError, "connect to Google APIs", err)
			}
			remote = client
		}
		if opts.Sync {
			p.Mirror = &sheets.Mirror{
				Client:      remote,
				Spreadsheet: cfg.Sheet.Spreadsheet,
				Worksheet:   cfg.Sheet.Worksheet,
				SKUColumn:   cfg.Sheet.SKUColumn,
			}
		}
		if opts.Upload {
			p.Uploader = &sheets.Uploader{Drive: remote, RootFolder: cfg.Drive.RootFolder}
		}
	}

	return p, cleanup, nil
}
