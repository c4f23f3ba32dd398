// Package ledger persists inventory records to an append-only CSV file
// with duplicate detection against two independent keys: the synthesized
// SKU and the operator-supplied reference number.
//
// The read-then-write duplicate check is not protected by a lock.
// Concurrent writers against the same ledger file can both pass the check
// before either appends; this is an accepted limitation of a
// single-operator tool.
package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jszwec/csvutil"

	"github.com/mlei/skuforge/internal/catalog"
	"github.com/mlei/skuforge/internal/sku"
)

// RejectReason categorizes why an append was refused.
type RejectReason string

const (
	// ReasonDuplicateSKU means the row's SKU already exists in the ledger.
	ReasonDuplicateSKU RejectReason = "duplicate SKU"

	// ReasonDuplicateReference means the row's reference number already
	// exists in the ledger under a different SKU.
	ReasonDuplicateReference RejectReason = "duplicate reference number"
)

// Result reports the outcome of an append attempt. A rejection is an
// expected condition, not an error: the operator corrects the reference
// number and retries.
type Result struct {
	Accepted bool
	Reason   RejectReason    // set when Accepted is false
	Conflict *catalog.Record // the existing row that caused the rejection
}

// Store reads and appends one ledger file.
type Store struct {
	path string
}

// New returns a Store for the ledger at path. The file is created lazily
// on the first successful append.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the ledger file location.
func (s *Store) Path() string {
	return s.path
}

// AppendIfNew appends rec to the ledger unless its SKU or reference
// number is already present.
//
// The ledger file is created with the fixed header on first use. The
// full existing row set is read on every call (no cached membership);
// on rejection no write of any kind occurs, so the file is byte-identical
// to its state before the call. On acceptance exactly one data line is
// appended; existing content is never truncated or reordered.
//
// A record with an empty SKU is tagged with the unknown-prefixed fallback
// identity rather than appended with no identity at all.
func (s *Store) AppendIfNew(rec catalog.Record) (*Result, error) {
	if rec.SKU == "" {
		rec.SKU = sku.Fallback(rec.ReferenceNumber)
	}

	existing, err := s.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	for i := range existing {
		if existing[i].SKU == rec.SKU {
			return &Result{Reason: ReasonDuplicateSKU, Conflict: &existing[i]}, nil
		}
	}
	for i := range existing {
		if rec.ReferenceNumber != "" && existing[i].ReferenceNumber == rec.ReferenceNumber {
			return &Result{Reason: ReasonDuplicateReference, Conflict: &existing[i]}, nil
		}
	}

	if err := s.append(rec); err != nil {
		return nil, err
	}
	return &Result{Accepted: true}, nil
}

// ReadAll returns every data row currently in the ledger, in file order.
// A missing ledger file reads as empty.
func (s *Store) ReadAll() ([]catalog.Record, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := csvutil.NewDecoder(csv.NewReader(f))
	if err != nil {
		if errors.Is(err, io.EOF) {
			// Zero-byte file: treated the same as a missing one.
			return nil, nil
		}
		return nil, fmt.Errorf("decode header: %w", err)
	}

	var rows []catalog.Record
	for {
		var rec catalog.Record
		if err := dec.Decode(&rec); errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("decode row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// append writes rec as a single trailing line, creating the file with its
// header first if needed.
func (s *Store) append(rec catalog.Record) error {
	if err := s.ensureHeader(); err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger for append: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)
	enc.AutoHeader = false
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("encode row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	return nil
}

// ensureHeader creates the ledger file with the fixed header row if it
// does not exist yet. A zero-byte file left behind by an interrupted run
// gets its header written too.
func (s *Store) ensureHeader() error {
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("create ledger: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat ledger: %w", err)
	}
	if info.Size() > 0 {
		return nil
	}

	w := csv.NewWriter(f)
	if err := w.Write(catalog.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}
