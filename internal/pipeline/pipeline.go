// Package pipeline orchestrates one product intake end to end: analyze
// the photos, normalize the description, synthesize the SKU, append to
// the ledger, archive the asset bundle, and optionally mirror remotely.
//
// The ledger append is the gate. A duplicate identity stops the run
// before any asset is written locally or remotely, so a rejected intake
// leaves everything exactly as it was.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mlei/skuforge/internal/archive"
	"github.com/mlei/skuforge/internal/audit"
	"github.com/mlei/skuforge/internal/catalog"
	"github.com/mlei/skuforge/internal/ledger"
	"github.com/mlei/skuforge/internal/sheets"
	"github.com/mlei/skuforge/internal/sku"
	"github.com/mlei/skuforge/internal/vision"
)

// Input is one product intake: the operator's reference number, the
// photo payloads, and per-run options.
type Input struct {
	Reference string
	Images    [][]byte
	Hints     string   // free-text context forwarded to the analyzer
	Notes     string   // operator notes stored on the ledger row
	Tags      []string // optional per-image role tags, positional
	Sync      bool     // merge the ledger into the remote sheet afterwards
	Upload    bool     // mirror the asset bundle to the remote file store
}

// Result reports what one intake did.
type Result struct {
	SKU              string               `json:"sku"`
	Reference        string               `json:"reference"`
	Accepted         bool                 `json:"accepted"`
	RejectReason     ledger.RejectReason  `json:"reject_reason,omitempty"`
	Conflict         *catalog.Record      `json:"conflict,omitempty"`
	ExtractionFailed bool                 `json:"extraction_failed,omitempty"`
	Archive          *archive.Result      `json:"archive,omitempty"`
	Merge            *sheets.MergeResult  `json:"merge,omitempty"`
	Upload           *sheets.UploadResult `json:"upload,omitempty"`
}

// Pipeline wires the collaborators for product intake. Mirror, Uploader,
// and Audit are optional; a nil collaborator disables its step.
type Pipeline struct {
	Vision   vision.Analyzer
	Ledger   *ledger.Store
	AssetDir string
	Mirror   *sheets.Mirror
	Uploader *sheets.Uploader
	Audit    *audit.Store
	Log      *slog.Logger
	Now      func() time.Time // defaults to time.Now
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Pipeline) log() *slog.Logger {
	if p.Log != nil {
		return p.Log
	}
	return slog.Default()
}

// Process runs one intake. An extraction failure is not fatal: the row
// is still appended, tagged with the error-marked SKU, so the reference
// number stays accounted for in the ledger. Any other analyzer error
// aborts the run with nothing written.
func (p *Pipeline) Process(ctx context.Context, in Input) (*Result, error) {
	if strings.TrimSpace(in.Reference) == "" {
		return nil, errors.New("reference number is required")
	}
	if len(in.Images) == 0 {
		return nil, errors.New("at least one image is required")
	}

	rec, failed, err := p.describe(ctx, in)
	if err != nil {
		return nil, err
	}

	res := &Result{SKU: rec.SKU, Reference: in.Reference, ExtractionFailed: failed}
	if failed {
		p.record(ctx, audit.KindFailed, rec.SKU, in.Reference, "extraction failed, row tagged")
	}

	// Bookkeeping columns are filled before the append so the ledger row
	// names the bundle it will own. Folder naming mirrors archive.Save.
	folder := filepath.Join(p.AssetDir, strings.ToLower(rec.SKU))
	rec.Notes = in.Notes
	rec.ImageCount = strconv.Itoa(len(in.Images))
	rec.FolderPath = folder
	rec.DateAdded = p.now().Format("2006-01-02")
	rec.DescriptionFile = strings.ToLower(rec.SKU) + "_description.json"

	lres, err := p.Ledger.AppendIfNew(rec)
	if err != nil {
		return nil, fmt.Errorf("append to ledger: %w", err)
	}
	if !lres.Accepted {
		res.RejectReason = lres.Reason
		res.Conflict = lres.Conflict
		p.record(ctx, audit.KindRejected, rec.SKU, in.Reference, string(lres.Reason))
		p.log().Warn("intake rejected", "sku", rec.SKU, "reference", in.Reference, "reason", lres.Reason)
		return res, nil
	}
	res.Accepted = true
	p.record(ctx, audit.KindAppended, rec.SKU, in.Reference, "")
	p.log().Info("row appended", "sku", rec.SKU, "reference", in.Reference)

	arch, err := archive.Save(p.AssetDir, rec.SKU, in.Images, rec, in.Tags)
	if err != nil {
		return res, fmt.Errorf("archive assets: %w", err)
	}
	res.Archive = arch
	p.record(ctx, audit.KindArchived, rec.SKU, in.Reference, arch.FolderPath)

	if in.Sync && p.Mirror != nil {
		merge, err := p.Sync(ctx)
		if err != nil {
			return res, err
		}
		res.Merge = merge
	}

	if in.Upload && p.Uploader != nil {
		up, err := p.Uploader.UploadBundle(ctx, rec.SKU, arch.FolderPath)
		if err != nil {
			return res, fmt.Errorf("upload bundle: %w", err)
		}
		res.Upload = up
		p.record(ctx, audit.KindUploaded, rec.SKU, in.Reference, up.FolderID)
	}

	return res, nil
}

// Sync merges the full local ledger into the remote sheet.
func (p *Pipeline) Sync(ctx context.Context) (*sheets.MergeResult, error) {
	if p.Mirror == nil {
		return nil, errors.New("no remote sheet configured")
	}
	rows, err := p.Ledger.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	merge, err := p.Mirror.Merge(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("merge to sheet: %w", err)
	}
	p.record(ctx, audit.KindMerged, "", "", fmt.Sprintf("appended %d, skipped %d", merge.Appended, merge.Skipped))
	p.log().Info("sheet merged", "appended", merge.Appended, "skipped", merge.Skipped)
	return merge, nil
}

// describe runs the analyzer and normalizes its output into a ledger
// record with the synthesized SKU. An *ExtractionError yields an empty
// record carrying the error-marked SKU and failed=true.
func (p *Pipeline) describe(ctx context.Context, in Input) (catalog.Record, bool, error) {
	desc, err := p.Vision.Analyze(ctx, vision.Request{
		ReferenceNumber: in.Reference,
		Images:          in.Images,
		Hints:           in.Hints,
	})
	if err != nil {
		var extErr *vision.ExtractionError
		if errors.As(err, &extErr) {
			p.log().Warn("extraction failed", "reference", in.Reference, "reason", extErr.Reason)
			rec := catalog.Record{
				SKU:             sku.ErrorSKU(in.Reference),
				ReferenceNumber: in.Reference,
			}
			return rec, true, nil
		}
		return catalog.Record{}, false, fmt.Errorf("analyze images: %w", err)
	}

	rec := catalog.Normalize(desc)
	rec.ReferenceNumber = in.Reference
	rec.SKU = sku.Synthesize(sku.Attributes{
		Color:       rec.Color,
		Material:    rec.Material,
		Model:       rec.Model,
		Brand:       rec.Brand,
		SubCategory: rec.SubCategory,
	}, in.Reference)
	return rec, false, nil
}

// record writes an audit event. Auditing is advisory: a failure is
// logged and the run continues.
func (p *Pipeline) record(ctx context.Context, kind audit.Kind, skuID, reference, detail string) {
	if p.Audit == nil {
		return
	}
	ev := audit.Event{Kind: kind, SKU: skuID, Reference: reference, Detail: detail, CreatedAt: p.now()}
	if err := p.Audit.Record(ctx, ev); err != nil {
		p.log().Warn("audit write failed", "kind", kind, "error", err)
	}
}
