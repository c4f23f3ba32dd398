package archive

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mlei/skuforge/internal/catalog"
)

var (
	jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	pngBytes  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	bmpBytes  = []byte{'B', 'M', 0x36, 0x00}
	tiffLE    = []byte{'I', 'I', 0x2A, 0x00}
	tiffBE    = []byte{'M', 'M', 0x00, 0x2A}
	webpBytes = []byte{'R', 'I', 'F', 'F', 0x24, 0x00, 0x00, 0x00, 'W', 'E', 'B', 'P'}
)

func TestDetectExt(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg", jpegBytes, ".jpg"},
		{"png", pngBytes, ".png"},
		{"bmp", bmpBytes, ".bmp"},
		{"tiff little endian", tiffLE, ".tiff"},
		{"tiff big endian", tiffBE, ".tiff"},
		{"webp", webpBytes, ".webp"},
		{"unknown defaults to jpg", []byte{0x00, 0x01, 0x02, 0x03}, ".jpg"},
		{"empty defaults to jpg", nil, ".jpg"},
		{"riff but not webp", []byte("RIFF....WAVE"), ".jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectExt(tt.data); got != tt.want {
				t.Errorf("DetectExt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSave_NamingWithoutTags(t *testing.T) {
	dir := t.TempDir()

	res, err := Save(dir, "abc-123", [][]byte{jpegBytes, pngBytes}, catalog.Record{SKU: "abc-123"}, nil)
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	if res.FolderPath != filepath.Join(dir, "abc-123") {
		t.Errorf("FolderPath = %q", res.FolderPath)
	}
	want := []string{"abc-123_1.jpg", "abc-123_2.png"}
	if len(res.ImageFiles) != len(want) {
		t.Fatalf("ImageFiles = %v, want %v", res.ImageFiles, want)
	}
	for i, name := range want {
		if res.ImageFiles[i] != name {
			t.Errorf("image %d = %q, want %q", i, res.ImageFiles[i], name)
		}
		if _, err := os.Stat(filepath.Join(res.FolderPath, name)); err != nil {
			t.Errorf("image file %s not written: %v", name, err)
		}
	}
}

func TestSave_NamingWithRoleTags(t *testing.T) {
	dir := t.TempDir()

	res, err := Save(dir, "abc-123", [][]byte{jpegBytes, pngBytes, bmpBytes}, catalog.Record{SKU: "abc-123"}, []string{"front", "", "hardware"})
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	want := []string{"abc-123_1_front.jpg", "abc-123_2.png", "abc-123_3_hardware.bmp"}
	for i, name := range want {
		if res.ImageFiles[i] != name {
			t.Errorf("image %d = %q, want %q", i, res.ImageFiles[i], name)
		}
	}
}

func TestSave_DescriptionFile(t *testing.T) {
	dir := t.TempDir()

	rec := catalog.Record{SKU: "abc-123", ReferenceNumber: "REF001", Brand: "Chanel"}
	res, err := Save(dir, "ABC-123", nil, rec, nil)
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	// SKU casing is normalized for the folder and file names.
	if res.DescriptionFile != "abc-123_description.json" {
		t.Errorf("DescriptionFile = %q", res.DescriptionFile)
	}

	data, err := os.ReadFile(filepath.Join(res.FolderPath, res.DescriptionFile))
	if err != nil {
		t.Fatalf("read description: %v", err)
	}
	var got catalog.Record
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("description is not valid JSON: %v", err)
	}
	if got.Brand != "Chanel" || got.ReferenceNumber != "REF001" {
		t.Errorf("description round-trip = %+v", got)
	}
}

func TestSave_ReuseExistingFolder(t *testing.T) {
	dir := t.TempDir()

	if _, err := Save(dir, "abc-123", [][]byte{jpegBytes}, catalog.Record{SKU: "abc-123"}, nil); err != nil {
		t.Fatalf("first Save() failed: %v", err)
	}
	// Second save into the same folder must not error and must produce
	// identical names. Duplicate prevention is the ledger's job, not ours.
	res, err := Save(dir, "abc-123", [][]byte{jpegBytes}, catalog.Record{SKU: "abc-123"}, nil)
	if err != nil {
		t.Fatalf("second Save() failed: %v", err)
	}
	if res.ImageFiles[0] != "abc-123_1.jpg" {
		t.Errorf("re-archive produced %q, want stable name", res.ImageFiles[0])
	}
}
