// Package sku derives deterministic product identifiers from descriptive
// attributes and an operator-supplied reference number.
//
// The synthesized SKU is the primary identity of a ledger row. Determinism
// matters: identical attributes and reference number must always produce a
// byte-identical SKU, because the ledger's duplicate check keys on it.
package sku

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// unknownToken fills an attribute slot that is absent or empty. A SKU slot
// is never rendered as the empty string - a human scanning the ledger can
// spot "unknown" at a glance.
const unknownToken = "unknown"

// errorToken marks a SKU whose description came from a failed extraction.
const errorToken = "error"

// Attributes are the five descriptive inputs to synthesis, already
// normalized by the catalog layer. Any field may be empty.
type Attributes struct {
	Color       string
	Material    string
	Model       string
	Brand       string
	SubCategory string
}

// foldDiacritics strips combining marks after NFD decomposition, so
// "Hermès" cleans to "hermes" rather than losing the letter entirely.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Synthesize builds the SKU for the given attributes and reference number.
// The fixed slot order is color-material-model-brand-subcategory-reference.
// Attribute slots are cleaned (lower-cased, whitespace collapsed to a
// separator, every other non-alphanumeric character stripped); the model
// slot separates words with an underscore, all others with a hyphen. The
// reference number is appended verbatim so the SKU stays traceable to the
// operator's own numbering, and the joined result is lower-cased as a whole.
//
// Synthesize never fails. If cleaning leaves nothing usable in a slot it
// degrades to "unknown", and a fully unusable attribute set yields
// Fallback(reference).
func Synthesize(attrs Attributes, reference string) string {
	parts := []string{
		clean(attrs.Color, '-'),
		clean(attrs.Material, '-'),
		clean(attrs.Model, '_'),
		clean(attrs.Brand, '-'),
		clean(attrs.SubCategory, '-'),
		reference,
	}
	return strings.ToLower(strings.Join(parts, "-"))
}

// Fallback is the SKU used when no attributes could be determined at all.
// The row is still tagged and surfaced to a human reviewer instead of
// being silently dropped.
func Fallback(reference string) string {
	return strings.ToLower(strings.Join([]string{
		unknownToken, unknownToken, unknownToken, unknownToken, unknownToken, reference,
	}, "-"))
}

// ErrorSKU flags a row whose extraction failed outright. The error-prefixed
// identity makes the failure visible in the ledger.
func ErrorSKU(reference string) string {
	return strings.ToLower(strings.Join([]string{
		errorToken, errorToken, errorToken, errorToken, errorToken, reference,
	}, "-"))
}

// clean lower-cases an attribute value, folds diacritics, collapses runs
// of whitespace into a single separator, and drops every remaining
// character that is not alphanumeric, a hyphen, or the separator itself.
func clean(value string, sep rune) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return unknownToken
	}

	if folded, _, err := transform.String(foldDiacritics, value); err == nil {
		value = folded
	}
	value = strings.ToLower(value)

	var b strings.Builder
	b.Grow(len(value))
	inSpace := false
	for _, r := range value {
		switch {
		case unicode.IsSpace(r):
			inSpace = true
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == sep:
			if inSpace && b.Len() > 0 {
				b.WriteRune(sep)
			}
			inSpace = false
			b.WriteRune(r)
		}
		// Anything else is stripped.
	}

	cleaned := strings.Trim(b.String(), string(sep)+"-")
	if cleaned == "" {
		return unknownToken
	}
	return cleaned
}
