package catalog

import (
	"fmt"
	"strings"

	"github.com/jszwec/csvutil"
)

// ProductDescription is the loosely-structured mapping produced by the
// vision collaborator. No field is guaranteed present; values may be
// strings, numbers, or lists. Identity (SKU, reference number) is
// assigned downstream, never by the collaborator.
type ProductDescription map[string]any

// Record is the canonical fixed-schema inventory row. SKU is the primary
// identity, ReferenceNumber the secondary one; both are enforced unique
// by the ledger. Once appended a record is immutable - the ledger offers
// no update path, only append or reject.
//
// The csv tags define the ledger's header names and column order.
type Record struct {
	SKU                     string `csv:"SKU"`
	ReferenceNumber         string `csv:"Reference_Number"`
	Brand                   string `csv:"Brand"`
	Model                   string `csv:"Model"`
	Material                string `csv:"Material"`
	Color                   string `csv:"Color"`
	Size                    string `csv:"Size"`
	Category                string `csv:"Category"`
	SubCategory             string `csv:"Sub_Category"`
	ConditionGrade          string `csv:"Condition_Grade"`
	ConditionDescription    string `csv:"Condition_Description"`
	Accessories             string `csv:"Accessories"`
	EstimatedPriceRange     string `csv:"Estimated_Price_Range"`
	RecommendedSellingPrice string `csv:"Recommended_Selling_Price"`
	Height                  string `csv:"Height"`
	Width                   string `csv:"Width"`
	Depth                   string `csv:"Depth"`
	SerialNumber            string `csv:"Serial_Number"`
	YearOfProduction        string `csv:"Year_Of_Production"`
	SourceURLs              string `csv:"Source_URLs"`
	Notes                   string `csv:"Notes"`
	ImageCount              string `csv:"Image_Count"`
	FolderPath              string `csv:"Folder_Path"`
	DateAdded               string `csv:"Date_Added"`
	DescriptionFile         string `csv:"Description_File"`
}

// Header returns the ledger column names in their stable order,
// derived from the Record csv tags.
func Header() []string {
	h, err := csvutil.Header(Record{}, "csv")
	if err != nil {
		// Record is a flat struct of strings; csvutil.Header cannot
		// fail on it. Reaching this means the schema itself is broken.
		panic(fmt.Sprintf("catalog: invalid record schema: %v", err))
	}
	return h
}

// FormatList renders a list value for flat-file storage as a bracketed,
// comma-separated form, e.g. [strap, dust bag]. The format is a display
// and audit form for humans; it is not required to round-trip.
func FormatList(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return "[" + strings.Join(values, ", ") + "]"
}
