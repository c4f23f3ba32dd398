package vision

import (
	"encoding/json"
	"strings"
)

// DecodeResponse turns a raw model response into a description mapping.
//
// The primary path expects a JSON object, possibly wrapped in markdown
// code fences. When no JSON can be recovered, a best-effort prefix scan
// over "Field: value" lines salvages what it can from free-text output;
// that legacy path is a fallback, not a contract. If neither path yields
// any fields, an *ExtractionError is returned.
//
// Decoded mappings are validated against the response schema; a mapping
// that decodes but violates the schema is an extraction failure too,
// reported with the validator's positioned message.
func DecodeResponse(raw string) (map[string]any, error) {
	text := stripFences(raw)

	if desc, ok := decodeJSON(text); ok {
		if err := ValidateDescription(desc); err != nil {
			return nil, &ExtractionError{Reason: err.Error(), Raw: raw}
		}
		return desc, nil
	}

	if desc := scanFreeText(text); len(desc) > 0 {
		return desc, nil
	}

	return nil, &ExtractionError{Reason: "response contains no decodable product data", Raw: raw}
}

// stripFences removes a surrounding markdown code fence, with or without
// a language tag, and trims whitespace.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		// Drop the language tag line ("json", "JSON", or empty).
		first := strings.TrimSpace(s[:i])
		if first == "" || strings.EqualFold(first, "json") {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// decodeJSON attempts to parse text as a JSON object. Models sometimes
// prepend prose despite instructions, so as a second attempt the region
// between the first '{' and the last '}' is tried as well.
func decodeJSON(text string) (map[string]any, bool) {
	var desc map[string]any
	if err := json.Unmarshal([]byte(text), &desc); err == nil {
		return dropNulls(desc), true
	}

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &desc); err == nil {
			return dropNulls(desc), true
		}
	}
	return nil, false
}

// dropNulls removes explicit JSON nulls; an absent field and a null field
// mean the same thing to the normalizer.
func dropNulls(desc map[string]any) map[string]any {
	for k, v := range desc {
		if v == nil {
			delete(desc, k)
		}
	}
	return desc
}

// freeTextFields maps the legacy "Field:" line prefixes to schema keys.
// Longer prefixes are listed before shorter ones that share a stem so
// "Condition Description:" is not consumed by "Condition".
var freeTextFields = []struct {
	prefix string
	key    string
}{
	{"Sub-category:", "sub_category"},
	{"Category:", "category"},
	{"Brand:", "brand"},
	{"Model:", "model"},
	{"Material:", "material"},
	{"Color:", "color"},
	{"Size:", "size"},
	{"Serial Number:", "serial_number"},
	{"Year of Production:", "year_of_production"},
	{"Condition Grade:", "condition_grade"},
	{"Condition Description:", "condition_description"},
	{"Accessories:", "accessories"},
	{"Estimated Price Range:", "estimated_price_range"},
	{"Recommended Selling Price:", "recommended_selling_price"},
}

// scanFreeText recovers fields from legacy "Field: value" formatted
// output. Best effort only: lines that match no known prefix are ignored.
func scanFreeText(text string) map[string]any {
	desc := map[string]any{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		for _, f := range freeTextFields {
			if strings.HasPrefix(line, f.prefix) {
				value := strings.TrimSpace(strings.TrimPrefix(line, f.prefix))
				if value != "" {
					desc[f.key] = value
				}
				break
			}
		}
	}
	return desc
}
