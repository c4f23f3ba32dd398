// Package vision is the boundary to the multimodal model that turns
// product photographs into a structured description. The model call is an
// opaque collaborator; everything this package guarantees is about the
// request it builds and the response it decodes, not about the model.
package vision

import (
	"context"
	"fmt"
)

// Request carries one product's inputs to the model.
type Request struct {
	// ReferenceNumber is the operator's identifier, echoed into the
	// prompt so the model can include it in its analysis.
	ReferenceNumber string

	// Images are the raw photo payloads, in operator-chosen order.
	Images [][]byte

	// Hints is free-text context supplied by the operator (condition
	// notes, provenance, a description in another language).
	Hints string
}

// Analyzer produces a structured product description from images.
//
// A failed extraction is reported as an *ExtractionError so the pipeline
// can tag the row with the error-marked SKU instead of dropping it.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (map[string]any, error)
}

// ExtractionError means the model responded but no usable structured data
// could be recovered from the response.
type ExtractionError struct {
	Reason string
	Raw    string // the raw model response, for the operator to inspect
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed: %s", e.Reason)
}
