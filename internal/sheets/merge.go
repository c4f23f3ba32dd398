package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mlei/skuforge/internal/catalog"
)

// DefaultWorksheet is the tab rows are mirrored into.
const DefaultWorksheet = "Inventory"

// AmbiguousSchemaError reports a worksheet whose existing data offers no
// usable SKU column, or more than one candidate. The merge refuses to
// guess and performs no writes; the remote store is left untouched.
type AmbiguousSchemaError struct {
	Candidates []string // matching column names, empty when none matched
}

func (e *AmbiguousSchemaError) Error() string {
	if len(e.Candidates) == 0 {
		return "remote worksheet has data but no recognizable SKU column"
	}
	return fmt.Sprintf("remote worksheet has %d SKU-like columns (%s); configure the exact column name",
		len(e.Candidates), strings.Join(e.Candidates, ", "))
}

// MergeResult reports the outcome of one merge or overwrite call.
type MergeResult struct {
	Appended    int    `json:"appended"`
	Skipped     int    `json:"skipped"`
	Spreadsheet string `json:"spreadsheet"`
	URL         string `json:"url,omitempty"`
}

// Mirror merges local ledger rows into one named remote spreadsheet.
type Mirror struct {
	Client      Client
	Spreadsheet string
	Worksheet   string // defaults to DefaultWorksheet
	SKUColumn   string // exact header name checked before the fuzzy fallback
}

func (m *Mirror) worksheet() string {
	if m.Worksheet == "" {
		return DefaultWorksheet
	}
	return m.Worksheet
}

// Merge appends every local row whose SKU is not already present
// remotely. Rows already present are counted as skipped and never
// rewritten; pre-existing remote rows are never cleared or reordered.
// Running Merge twice with the same local rows makes the second call a
// no-op, which is what makes a failed call safe to retry wholesale.
func (m *Mirror) Merge(ctx context.Context, rows []catalog.Record) (*MergeResult, error) {
	ref, remote, err := m.resolve(ctx)
	if err != nil {
		return nil, err
	}
	res := &MergeResult{Spreadsheet: m.Spreadsheet, URL: ref.URL}

	remoteSKUs := map[string]struct{}{}
	if len(remote) > 0 {
		col, err := m.skuColumn(remote[0])
		if err != nil {
			return nil, err
		}
		for _, row := range remote[1:] {
			if col < len(row) {
				if v := strings.TrimSpace(row[col]); v != "" {
					remoteSKUs[v] = struct{}{}
				}
			}
		}
	}

	var staged [][]string
	for i := range rows {
		if _, seen := remoteSKUs[strings.TrimSpace(rows[i].SKU)]; seen {
			res.Skipped++
			continue
		}
		staged = append(staged, recordValues(rows[i]))
		res.Appended++
	}

	if len(staged) == 0 {
		slog.Debug("merge staged nothing", "spreadsheet", m.Spreadsheet, "skipped", res.Skipped)
		return res, nil
	}

	if len(remote) == 0 {
		staged = append([][]string{catalog.Header()}, staged...)
	}
	if err := m.Client.AppendRows(ctx, ref, m.worksheet(), staged); err != nil {
		return nil, fmt.Errorf("append rows: %w", err)
	}
	slog.Info("merged rows to remote sheet",
		"spreadsheet", m.Spreadsheet, "appended", res.Appended, "skipped", res.Skipped)
	return res, nil
}

// Overwrite clears the worksheet and rewrites the entire local row set,
// header first. Remote-only rows are lost, so callers gate this behind
// an explicit confirmation.
func (m *Mirror) Overwrite(ctx context.Context, rows []catalog.Record) (*MergeResult, error) {
	ref, _, err := m.resolve(ctx)
	if err != nil {
		return nil, err
	}

	if err := m.Client.Clear(ctx, ref, m.worksheet()); err != nil {
		return nil, fmt.Errorf("clear worksheet: %w", err)
	}

	out := make([][]string, 0, len(rows)+1)
	out = append(out, catalog.Header())
	for i := range rows {
		out = append(out, recordValues(rows[i]))
	}
	if err := m.Client.AppendRows(ctx, ref, m.worksheet(), out); err != nil {
		return nil, fmt.Errorf("rewrite rows: %w", err)
	}

	slog.Info("overwrote remote sheet", "spreadsheet", m.Spreadsheet, "rows", len(rows))
	return &MergeResult{Appended: len(rows), Spreadsheet: m.Spreadsheet, URL: ref.URL}, nil
}

// resolve ensures the spreadsheet and worksheet exist and reads the
// current remote rows. Read-before-write happens on every invocation;
// remote state is never cached across calls.
func (m *Mirror) resolve(ctx context.Context) (SpreadsheetRef, [][]string, error) {
	ref, err := m.Client.EnsureSpreadsheet(ctx, m.Spreadsheet)
	if err != nil {
		return SpreadsheetRef{}, nil, fmt.Errorf("resolve spreadsheet %q: %w", m.Spreadsheet, err)
	}
	if err := m.Client.EnsureWorksheet(ctx, ref, m.worksheet()); err != nil {
		return SpreadsheetRef{}, nil, fmt.Errorf("resolve worksheet %q: %w", m.worksheet(), err)
	}
	remote, err := m.Client.ReadRows(ctx, ref, m.worksheet())
	if err != nil {
		return SpreadsheetRef{}, nil, fmt.Errorf("read remote rows: %w", err)
	}
	return ref, remote, nil
}

// skuColumn locates the dedup key column in the remote header. The
// exact configured name wins; otherwise any header containing "sku"
// case-insensitively matches, but only if exactly one does.
func (m *Mirror) skuColumn(header []string) (int, error) {
	if m.SKUColumn != "" {
		for i, name := range header {
			if name == m.SKUColumn {
				return i, nil
			}
		}
	}

	var candidates []int
	for i, name := range header {
		if strings.Contains(strings.ToLower(name), "sku") {
			candidates = append(candidates, i)
		}
	}
	switch len(candidates) {
	case 1:
		return candidates[0], nil
	case 0:
		return 0, &AmbiguousSchemaError{}
	default:
		names := make([]string, len(candidates))
		for i, c := range candidates {
			names[i] = header[c]
		}
		return 0, &AmbiguousSchemaError{Candidates: names}
	}
}

// recordValues flattens a record into sheet cells, in the same order as
// catalog.Header.
func recordValues(rec catalog.Record) []string {
	return []string{
		rec.SKU, rec.ReferenceNumber, rec.Brand, rec.Model, rec.Material,
		rec.Color, rec.Size, rec.Category, rec.SubCategory,
		rec.ConditionGrade, rec.ConditionDescription, rec.Accessories,
		rec.EstimatedPriceRange, rec.RecommendedSellingPrice,
		rec.Height, rec.Width, rec.Depth, rec.SerialNumber,
		rec.YearOfProduction, rec.SourceURLs, rec.Notes, rec.ImageCount,
		rec.FolderPath, rec.DateAdded, rec.DescriptionFile,
	}
}
