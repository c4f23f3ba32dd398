package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mlei/skuforge/internal/audit"
	"github.com/mlei/skuforge/internal/config"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "history",
		Short:         "Show recent pipeline activity from the audit log",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of events to show")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}

	store, err := audit.Open(cfg.AuditPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "open audit log", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("close audit log", "error", err)
		}
	}()

	events, err := store.Recent(cmd.Context(), opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "read audit log", err)
	}

	if opts.Format == "json" {
		return formatter.Success(events)
	}

	w := cmd.OutOrStdout()
	if len(events) == 0 {
		fmt.Fprintln(w, "No recorded activity.")
		return nil
	}
	for _, ev := range events {
		line := fmt.Sprintf("%s  %-9s", ev.CreatedAt.Format("2006-01-02 15:04:05"), ev.Kind)
		if ev.SKU != "" {
			line += "  " + ev.SKU
		}
		if ev.Detail != "" {
			line += "  (" + ev.Detail + ")"
		}
		fmt.Fprintln(w, line)
	}
	return nil
}
