// Package archive persists the asset bundle for one product: the original
// image bytes and a structured description file, stored under a per-SKU
// directory with deterministic names.
//
// The archiver does not enforce the "already archived" invariant. The
// ledger rejects duplicate identities upstream; archiving runs only after
// a successful ledger append.
package archive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mlei/skuforge/internal/catalog"
)

// Result reports what was written for one bundle.
type Result struct {
	FolderPath      string   `json:"folder_path"`
	DescriptionFile string   `json:"description_file"`
	ImageFiles      []string `json:"image_files"`
}

// Save writes the asset bundle for sku under baseDir. The per-SKU folder
// is created idempotently (an existing folder is reused). The record is
// written as <sku>_description.json, and each image as
// <sku>_<n>[_<tag>].<ext> with a 1-based sequence number and the file
// extension sniffed from the payload's leading bytes. Naming is stable
// for a given (sku, sequence, tag) triple, so re-archiving identical
// input reproduces identical names.
//
// tags supplies an optional human-assigned role per image ("front",
// "hardware", ...); a missing or empty tag leaves the name untagged.
func Save(baseDir, sku string, images [][]byte, rec catalog.Record, tags []string) (*Result, error) {
	folder := filepath.Join(baseDir, strings.ToLower(sku))
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, fmt.Errorf("create asset folder: %w", err)
	}

	res := &Result{FolderPath: folder}

	descName := fmt.Sprintf("%s_description.json", strings.ToLower(sku))
	descData, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode description: %w", err)
	}
	if err := os.WriteFile(filepath.Join(folder, descName), descData, 0o644); err != nil {
		return nil, fmt.Errorf("write description: %w", err)
	}
	res.DescriptionFile = descName

	for i, img := range images {
		name := imageName(strings.ToLower(sku), i+1, tagAt(tags, i)) + DetectExt(img)
		if err := os.WriteFile(filepath.Join(folder, name), img, 0o644); err != nil {
			return nil, fmt.Errorf("write image %d: %w", i+1, err)
		}
		res.ImageFiles = append(res.ImageFiles, name)
	}

	return res, nil
}

// imageName builds the stem <sku>_<n>[_<tag>]; Save appends the sniffed
// extension.
func imageName(sku string, n int, tag string) string {
	if tag != "" {
		return fmt.Sprintf("%s_%d_%s", sku, n, tag)
	}
	return fmt.Sprintf("%s_%d", sku, n)
}

func tagAt(tags []string, i int) string {
	if i < len(tags) {
		return strings.TrimSpace(tags[i])
	}
	return ""
}

// DetectExt infers an image file extension from the payload's leading
// bytes. Recognized containers: JPEG, PNG, BMP, TIFF (both byte orders)
// and WebP. Anything else defaults to .jpg, matching how the rest of the
// pipeline treats unidentified images.
func DetectExt(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return ".jpg"
	case bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G'}):
		return ".png"
	case bytes.HasPrefix(data, []byte("BM")):
		return ".bmp"
	case bytes.HasPrefix(data, []byte("II")), bytes.HasPrefix(data, []byte("MM")):
		return ".tiff"
	case len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return ".webp"
	default:
		return ".jpg"
	}
}
