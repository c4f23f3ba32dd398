package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlei/skuforge/internal/catalog"
	"github.com/mlei/skuforge/internal/ledger"
)

func syncCmd(t *testing.T, opts *SyncOptions, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := newSyncCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func seedLedger(t *testing.T, dir string, skus ...string) {
	t.Helper()
	store := ledger.New(filepath.Join(dir, "inventory.csv"))
	for _, s := range skus {
		res, err := store.AppendIfNew(catalog.Record{SKU: s, ReferenceNumber: s})
		require.NoError(t, err)
		require.True(t, res.Accepted)
	}
}

func TestSyncMergesNewRows(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)
	seedLedger(t, dir, "sku-one", "sku-two")
	remote := &memRemote{}

	opts := &SyncOptions{
		RootOptions: &RootOptions{Format: "text", ConfigPath: cfgPath},
		Client:      remote,
	}
	buf, err := syncCmd(t, opts)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "2 appended")
	require.Len(t, remote.rows, 3, "header plus two data rows")
}

func TestSyncSecondRunIsNoOp(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)
	seedLedger(t, dir, "sku-one")
	remote := &memRemote{}

	opts := &SyncOptions{RootOptions: &RootOptions{Format: "text", ConfigPath: cfgPath}, Client: remote}
	_, err := syncCmd(t, opts)
	require.NoError(t, err)

	opts = &SyncOptions{RootOptions: &RootOptions{Format: "text", ConfigPath: cfgPath}, Client: remote}
	buf, err := syncCmd(t, opts)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "0 appended")
	assert.Contains(t, buf.String(), "1 already present")
	require.Len(t, remote.rows, 2)
}

func TestSyncOverwriteRequiresYes(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)
	seedLedger(t, dir, "sku-one")

	opts := &SyncOptions{
		RootOptions: &RootOptions{Format: "text", ConfigPath: cfgPath},
		Client:      &memRemote{},
	}
	_, err := syncCmd(t, opts, "--overwrite")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "--yes")
}

func TestSyncOverwriteReplacesRemote(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)
	seedLedger(t, dir, "sku-one")
	remote := &memRemote{rows: [][]string{{"SKU"}, {"remote-only"}}}

	opts := &SyncOptions{
		RootOptions: &RootOptions{Format: "text", ConfigPath: cfgPath},
		Client:      remote,
	}
	buf, err := syncCmd(t, opts, "--overwrite", "--yes")
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Overwrote")
	require.Len(t, remote.rows, 2)
	assert.Equal(t, "sku-one", remote.rows[1][0])
}

func TestSyncAmbiguousSchemaJSON(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)
	seedLedger(t, dir, "sku-one")
	// Remote header has no SKU-like column; merge must refuse to guess.
	remote := &memRemote{rows: [][]string{{"Name", "Price"}, {"thing", "10"}}}

	opts := &SyncOptions{
		RootOptions: &RootOptions{Format: "json", ConfigPath: cfgPath},
		Client:      remote,
	}
	buf, err := syncCmd(t, opts)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeAmbiguous, resp.Error.Code)

	// Nothing was written remotely.
	require.Len(t, remote.rows, 2)
}

func TestSyncEmptyLedger(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)
	remote := &memRemote{}

	opts := &SyncOptions{
		RootOptions: &RootOptions{Format: "text", ConfigPath: cfgPath},
		Client:      remote,
	}
	_, err := syncCmd(t, opts)
	require.NoError(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "inventory.csv"))
	assert.True(t, os.IsNotExist(statErr), "sync must not create the ledger")
}
