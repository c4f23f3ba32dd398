package sku

import "testing"

func TestSynthesize_EndToEnd(t *testing.T) {
	attrs := Attributes{
		Color:       "Black",
		Material:    "Lambskin",
		Model:       "Le Boy",
		Brand:       "Chanel",
		SubCategory: "Flap Bag",
	}

	got := Synthesize(attrs, "REF001")
	want := "black-lambskin-le_boy-chanel-flap-bag-ref001"
	if got != want {
		t.Errorf("Synthesize() = %q, want %q", got, want)
	}
}

func TestSynthesize_Deterministic(t *testing.T) {
	attrs := Attributes{
		Color:       "Navy Blue",
		Material:    "Caviar Leather",
		Model:       "Classic Flap",
		Brand:       "Chanel",
		SubCategory: "Shoulder Bag",
	}

	first := Synthesize(attrs, "JK01450072402")
	for i := 0; i < 100; i++ {
		if got := Synthesize(attrs, "JK01450072402"); got != first {
			t.Fatalf("call %d produced %q, first call produced %q", i, got, first)
		}
	}
}

func TestSynthesize_MissingSlots(t *testing.T) {
	tests := []struct {
		name  string
		attrs Attributes
		want  string
	}{
		{
			name:  "all missing",
			attrs: Attributes{},
			want:  "unknown-unknown-unknown-unknown-unknown-r1",
		},
		{
			name:  "only brand",
			attrs: Attributes{Brand: "Gucci"},
			want:  "unknown-unknown-unknown-gucci-unknown-r1",
		},
		{
			name:  "whitespace only is missing",
			attrs: Attributes{Color: "   ", Brand: "Dior"},
			want:  "unknown-unknown-unknown-dior-unknown-r1",
		},
		{
			name:  "punctuation only degrades to unknown",
			attrs: Attributes{Material: "???", Brand: "Dior"},
			want:  "unknown-unknown-unknown-dior-unknown-r1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Synthesize(tt.attrs, "R1"); got != tt.want {
				t.Errorf("Synthesize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSynthesize_Cleaning(t *testing.T) {
	tests := []struct {
		name  string
		attrs Attributes
		ref   string
		want  string
	}{
		{
			name:  "punctuation stripped",
			attrs: Attributes{Color: "Black/White", Material: "P.V.C.", Model: "2.55", Brand: "Chanel!", SubCategory: "Mini (Flap)"},
			ref:   "r2",
			want:  "blackwhite-pvc-255-chanel-mini-flap-r2",
		},
		{
			name:  "diacritics folded",
			attrs: Attributes{Color: "Rouge", Material: "Togo", Model: "Birkin", Brand: "Hermès", SubCategory: "Tote"},
			ref:   "r3",
			want:  "rouge-togo-birkin-hermes-tote-r3",
		},
		{
			name:  "model spaces become underscores",
			attrs: Attributes{Color: "Brown", Material: "Canvas", Model: "Speedy Nano 20", Brand: "Louis Vuitton", SubCategory: "Hand Bag"},
			ref:   "r4",
			want:  "brown-canvas-speedy_nano_20-louis-vuitton-hand-bag-r4",
		},
		{
			name:  "whitespace runs collapse",
			attrs: Attributes{Color: "Light   Pink", Material: "Lambskin", Model: "WOC", Brand: "Chanel", SubCategory: "Wallet"},
			ref:   "r5",
			want:  "light-pink-lambskin-woc-chanel-wallet-r5",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Synthesize(tt.attrs, tt.ref); got != tt.want {
				t.Errorf("Synthesize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSynthesize_ReferenceVerbatim(t *testing.T) {
	// The reference number is never cleaned, only lower-cased with the
	// whole SKU, so odd operator numbering survives intact.
	got := Synthesize(Attributes{}, "JK_0145.007/2402")
	want := "unknown-unknown-unknown-unknown-unknown-jk_0145.007/2402"
	if got != want {
		t.Errorf("Synthesize() = %q, want %q", got, want)
	}
}

func TestFallback(t *testing.T) {
	got := Fallback("REF009")
	want := "unknown-unknown-unknown-unknown-unknown-ref009"
	if got != want {
		t.Errorf("Fallback() = %q, want %q", got, want)
	}
}

func TestErrorSKU(t *testing.T) {
	got := ErrorSKU("REF010")
	want := "error-error-error-error-error-ref010"
	if got != want {
		t.Errorf("ErrorSKU() = %q, want %q", got, want)
	}
}
