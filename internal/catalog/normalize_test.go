package catalog

import (
	"testing"
)

func TestNormalize_FullDescription(t *testing.T) {
	desc := ProductDescription{
		"brand":                     "Chanel",
		"model":                     "Le Boy",
		"material":                  "Lambskin",
		"color":                     "Black",
		"size":                      "small",
		"category":                  "bag",
		"sub_category":              "Flap Bag",
		"condition_grade":           "90%",
		"condition_description":     "Light wear on corners",
		"accessories":               []any{"dust bag", "authenticity card"},
		"estimated_price_range":     "3000-4000 GBP",
		"recommended_selling_price": "3500",
		"height":                    "9.8",
		"width":                     "14.5",
		"depth":                     "5.5",
		"serial_number":             "25xxxxxx",
		"year_of_production":        float64(2018),
		"urls":                      []any{"https://example.com/a", "https://example.com/b"},
	}

	rec := Normalize(desc)

	if rec.Brand != "Chanel" {
		t.Errorf("Brand = %q, want %q", rec.Brand, "Chanel")
	}
	if rec.SubCategory != "Flap Bag" {
		t.Errorf("SubCategory = %q, want %q", rec.SubCategory, "Flap Bag")
	}
	if rec.Accessories != "[dust bag, authenticity card]" {
		t.Errorf("Accessories = %q", rec.Accessories)
	}
	if rec.SourceURLs != "[https://example.com/a, https://example.com/b]" {
		t.Errorf("SourceURLs = %q", rec.SourceURLs)
	}
	if rec.YearOfProduction != "2018" {
		t.Errorf("YearOfProduction = %q, want %q", rec.YearOfProduction, "2018")
	}
	if rec.SKU != "" {
		t.Errorf("SKU should be left empty for the pipeline, got %q", rec.SKU)
	}
}

func TestNormalize_SparseDescription(t *testing.T) {
	rec := Normalize(ProductDescription{"brand": "Gucci"})

	if rec.Brand != "Gucci" {
		t.Errorf("Brand = %q, want %q", rec.Brand, "Gucci")
	}
	// Every other schema field is the empty string, not a null token.
	if rec.Model != "" || rec.Material != "" || rec.Accessories != "" {
		t.Errorf("missing fields should normalize to empty strings: %+v", rec)
	}
}

func TestNormalize_UnknownKeysDropped(t *testing.T) {
	rec := Normalize(ProductDescription{
		"brand":          "Hermes",
		"something_else": "ignored",
		"confidence":     0.92,
	})
	if rec.Brand != "Hermes" {
		t.Errorf("Brand = %q, want %q", rec.Brand, "Hermes")
	}
	if rec != (Record{Brand: "Hermes"}) {
		t.Errorf("unknown keys must not leak into the record: %+v", rec)
	}
}

func TestNormalize_ErrorShapedInput(t *testing.T) {
	rec := Normalize(ProductDescription{
		ErrorKey: "model refused to answer",
		"brand":  "should not survive",
	})
	if rec != (Record{}) {
		t.Errorf("error-shaped input must normalize to an all-empty record: %+v", rec)
	}
}

func TestNormalize_NilAndEmpty(t *testing.T) {
	if Normalize(nil) != (Record{}) {
		t.Error("nil description must normalize to the zero record")
	}
	if Normalize(ProductDescription{}) != (Record{}) {
		t.Error("empty description must normalize to the zero record")
	}
}

func TestNormalize_ScalarUnderListKey(t *testing.T) {
	rec := Normalize(ProductDescription{"accessories": "dust bag"})
	if rec.Accessories != "[dust bag]" {
		t.Errorf("Accessories = %q, want %q", rec.Accessories, "[dust bag]")
	}
}

func TestFormatList(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want string
	}{
		{"empty", nil, ""},
		{"single", []string{"strap"}, "[strap]"},
		{"multiple", []string{"strap", "dust bag", "box"}, "[strap, dust bag, box]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatList(tt.in); got != tt.want {
				t.Errorf("FormatList(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHeader_StableOrder(t *testing.T) {
	h := Header()
	if len(h) != 25 {
		t.Fatalf("header has %d columns, want 25", len(h))
	}
	if h[0] != "SKU" || h[1] != "Reference_Number" {
		t.Errorf("identity columns must lead the header, got %v", h[:2])
	}
	if h[len(h)-1] != "Description_File" {
		t.Errorf("last column = %q, want Description_File", h[len(h)-1])
	}
}
