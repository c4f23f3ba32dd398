// Package sheets reconciles ledger rows against a remote spreadsheet.
//
// The remote store is shared: other processes and humans edit it between
// runs. Every merge therefore reads the remote state before writing and
// never caches it across calls. The default merge is strictly additive;
// the destructive full rewrite lives behind an explicitly named Overwrite.
package sheets

import "context"

// SpreadsheetRef identifies a resolved remote spreadsheet.
type SpreadsheetRef struct {
	ID  string
	URL string
}

// Client is the narrow surface the mirror needs from a remote tabular
// store. Implementations may fail any call with a transport-level error;
// the mirror surfaces those untranslated and stays safe to retry.
type Client interface {
	// EnsureSpreadsheet resolves the named spreadsheet, creating it if
	// absent. A brand-new sheet is never an error.
	EnsureSpreadsheet(ctx context.Context, name string) (SpreadsheetRef, error)

	// EnsureWorksheet resolves the named worksheet tab within ref,
	// creating it if absent.
	EnsureWorksheet(ctx context.Context, ref SpreadsheetRef, title string) error

	// ReadRows returns all rows currently in the worksheet, header
	// included, in sheet order. An empty worksheet reads as nil.
	ReadRows(ctx context.Context, ref SpreadsheetRef, title string) ([][]string, error)

	// AppendRows appends rows after the last existing row in one batch.
	AppendRows(ctx context.Context, ref SpreadsheetRef, title string, rows [][]string) error

	// Clear removes every row in the worksheet. Used only by Overwrite.
	Clear(ctx context.Context, ref SpreadsheetRef, title string) error
}

// DriveClient is the surface needed to mirror archived asset folders to
// a remote file store.
type DriveClient interface {
	// EnsureFolder resolves a folder by name under parentID (empty for
	// the drive root), creating it if absent. Returns the folder ID.
	EnsureFolder(ctx context.Context, name, parentID string) (string, error)

	// UploadFile uploads data as name into folderID and returns the
	// remote file ID.
	UploadFile(ctx context.Context, folderID, name string, data []byte) (string, error)
}
