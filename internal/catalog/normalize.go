package catalog

import (
	"fmt"
	"strconv"
)

// ErrorKey marks a description as an extraction failure. A description
// carrying this key normalizes to an all-empty record; the pipeline then
// tags it with the error-prefixed SKU so the failure is visible in the
// ledger instead of being dropped.
const ErrorKey = "error"

// Normalize maps a sparse ProductDescription onto the full Record schema.
// Absent fields become the empty string, list values are rendered with
// FormatList, and unknown extra keys are dropped. The function is pure
// and total - any shape of input yields a usable Record.
//
// Identity fields (SKU, ReferenceNumber) and bookkeeping fields
// (ImageCount, FolderPath, DateAdded, DescriptionFile, Notes) are left
// empty; the pipeline fills those in.
func Normalize(desc ProductDescription) Record {
	if desc == nil {
		return Record{}
	}
	if _, failed := desc[ErrorKey]; failed {
		return Record{}
	}

	return Record{
		Brand:                   stringField(desc, "brand"),
		Model:                   stringField(desc, "model"),
		Material:                stringField(desc, "material"),
		Color:                   stringField(desc, "color"),
		Size:                    stringField(desc, "size"),
		Category:                stringField(desc, "category"),
		SubCategory:             stringField(desc, "sub_category"),
		ConditionGrade:          stringField(desc, "condition_grade"),
		ConditionDescription:    stringField(desc, "condition_description"),
		Accessories:             listField(desc, "accessories"),
		EstimatedPriceRange:     stringField(desc, "estimated_price_range"),
		RecommendedSellingPrice: stringField(desc, "recommended_selling_price"),
		Height:                  stringField(desc, "height"),
		Width:                   stringField(desc, "width"),
		Depth:                   stringField(desc, "depth"),
		SerialNumber:            stringField(desc, "serial_number"),
		YearOfProduction:        stringField(desc, "year_of_production"),
		SourceURLs:              listField(desc, "urls"),
	}
}

// stringField extracts a scalar value as text. Numbers are rendered
// without a trailing ".0" when they are whole, since the model sometimes
// returns years and grades as JSON numbers.
func stringField(desc ProductDescription, key string) string {
	v, ok := desc[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// listField extracts a list value and renders it with FormatList.
// A scalar under a list key is treated as a one-element list.
func listField(desc ProductDescription, key string) string {
	v, ok := desc[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case []string:
		return FormatList(val)
	case []any:
		items := make([]string, 0, len(val))
		for _, item := range val {
			if item == nil {
				continue
			}
			if s, ok := item.(string); ok {
				items = append(items, s)
			} else {
				items = append(items, fmt.Sprintf("%v", item))
			}
		}
		return FormatList(items)
	case string:
		if val == "" {
			return ""
		}
		return FormatList([]string{val})
	default:
		return FormatList([]string{fmt.Sprintf("%v", val)})
	}
}
