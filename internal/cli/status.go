package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mlei/skuforge/internal/config"
	"github.com/mlei/skuforge/internal/ledger"
)

// StatusResult summarizes the local ledger.
type StatusResult struct {
	LedgerPath string         `json:"ledger_path"`
	Products   int            `json:"products"`
	Tagged     int            `json:"tagged,omitempty"` // rows carrying the error-marked SKU
	LastAdded  string         `json:"last_added,omitempty"`
	Categories map[string]int `json:"categories,omitempty"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "status",
		Short:         "Summarize the local inventory ledger",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, cmd)
		},
	}
	return cmd
}

func runStatus(opts *RootOptions, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}

	rows, err := ledger.New(cfg.LedgerPath).ReadAll()
	if err != nil {
		return WrapExitError(ExitCommandError, "read ledger", err)
	}

	res := StatusResult{
		LedgerPath: cfg.LedgerPath,
		Products:   len(rows),
		Categories: map[string]int{},
	}
	for _, row := range rows {
		if row.Category != "" {
			res.Categories[row.Category]++
		}
		if row.DateAdded > res.LastAdded {
			res.LastAdded = row.DateAdded
		}
		if len(row.SKU) >= 6 && row.SKU[:6] == "error-" {
			res.Tagged++
		}
	}

	if opts.Format == "json" {
		return formatter.Success(res)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Ledger: %s\n", res.LedgerPath)
	fmt.Fprintf(w, "Products: %d\n", res.Products)
	if res.Tagged > 0 {
		fmt.Fprintf(w, "Tagged for review: %d\n", res.Tagged)
	}
	if res.LastAdded != "" {
		fmt.Fprintf(w, "Last added: %s\n", res.LastAdded)
	}
	if len(res.Categories) > 0 {
		names := make([]string, 0, len(res.Categories))
		for name := range res.Categories {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintln(w, "By category:")
		for _, name := range names {
			fmt.Fprintf(w, "  %s: %d\n", name, res.Categories[name])
		}
	}
	return nil
}
