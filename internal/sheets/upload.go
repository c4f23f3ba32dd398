package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// DefaultRootFolder is the remote folder asset bundles are mirrored under.
const DefaultRootFolder = "SKU_Generator"

// UploadResult reports what one bundle upload wrote.
type UploadResult struct {
	FolderID string   `json:"folder_id"`
	Files    []string `json:"files"`
}

// Uploader mirrors archived per-SKU asset folders to a remote file store.
type Uploader struct {
	Drive      DriveClient
	RootFolder string // defaults to DefaultRootFolder
}

// UploadBundle uploads every regular file in the local per-SKU folder
// into <RootFolder>/<sku> remotely. Both folders are resolved with
// create-if-absent semantics; re-uploading after a failure reuses the
// existing remote folders.
func (u *Uploader) UploadBundle(ctx context.Context, skuID, localDir string) (*UploadResult, error) {
	root := u.RootFolder
	if root == "" {
		root = DefaultRootFolder
	}

	rootID, err := u.Drive.EnsureFolder(ctx, root, "")
	if err != nil {
		return nil, fmt.Errorf("resolve root folder %q: %w", root, err)
	}
	folderID, err := u.Drive.EnsureFolder(ctx, skuID, rootID)
	if err != nil {
		return nil, fmt.Errorf("resolve sku folder %q: %w", skuID, err)
	}

	entries, err := os.ReadDir(localDir)
	if err != nil {
		return nil, fmt.Errorf("read asset folder: %w", err)
	}

	res := &UploadResult{FolderID: folderID}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(localDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read asset %q: %w", entry.Name(), err)
		}
		if _, err := u.Drive.UploadFile(ctx, folderID, entry.Name(), data); err != nil {
			return nil, err
		}
		res.Files = append(res.Files, entry.Name())
	}

	slog.Info("uploaded asset bundle", "sku", skuID, "files", len(res.Files))
	return res, nil
}
