package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mlei/skuforge/internal/sheets"
	"github.com/mlei/skuforge/internal/vision"
)

// writeTestConfig writes a config file whose paths all live under dir
// and returns its path.
func writeTestConfig(t *testing.T, dir string) string {
	t.Helper()
	cfg := fmt.Sprintf(`ledger_path: %s
asset_dir: %s
audit_path: %s
sheet:
  spreadsheet: Test_Inventory
  sku_column: SKU
`,
		filepath.Join(dir, "inventory.csv"),
		filepath.Join(dir, "skus"),
		filepath.Join(dir, "audit.db"),
	)
	path := filepath.Join(dir, "skuforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

// writeTestImage writes a minimal JPEG payload and returns its path.
func writeTestImage(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}, 0o644))
	return path
}

type stubAnalyzer struct {
	desc map[string]any
	err  error
}

func (s *stubAnalyzer) Analyze(context.Context, vision.Request) (map[string]any, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.desc, nil
}

var stubDesc = map[string]any{
	"brand":        "Chanel",
	"model":        "Le Boy",
	"material":     "Lambskin",
	"color":        "Black",
	"category":     "Handbag",
	"sub_category": "Flap Bag",
}

// memRemote is an in-memory RemoteClient for sync and upload paths.
type memRemote struct {
	rows    [][]string
	uploads []string
}

func (m *memRemote) EnsureSpreadsheet(context.Context, string) (sheets.SpreadsheetRef, error) {
	return sheets.SpreadsheetRef{ID: "s1", URL: "https://example.test/s1"}, nil
}

func (m *memRemote) EnsureWorksheet(context.Context, sheets.SpreadsheetRef, string) error {
	return nil
}

func (m *memRemote) ReadRows(context.Context, sheets.SpreadsheetRef, string) ([][]string, error) {
	return m.rows, nil
}

func (m *memRemote) AppendRows(_ context.Context, _ sheets.SpreadsheetRef, _ string, rows [][]string) error {
	m.rows = append(m.rows, rows...)
	return nil
}

func (m *memRemote) Clear(context.Context, sheets.SpreadsheetRef, string) error {
	m.rows = nil
	return nil
}

func (m *memRemote) EnsureFolder(_ context.Context, name, _ string) (string, error) {
	return "folder-" + name, nil
}

func (m *memRemote) UploadFile(_ context.Context, folderID, name string, _ []byte) (string, error) {
	m.uploads = append(m.uploads, folderID+"/"+name)
	return "file-1", nil
}
