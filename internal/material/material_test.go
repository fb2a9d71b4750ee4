package material

import (
	"errors"
	"math"
	"testing"
)

func TestIndexAtDecreasesWithWavelength(t *testing.T) {
	for _, m := range []Material{Glass, ExaggeratedGlass, Water} {
		prev := math.Inf(1)
		for w := 380.0; w <= 780; w += 10 {
			n := m.IndexAt(w)
			if n >= prev {
				t.Fatalf("%s: index not decreasing at %v nm (%v >= %v)", m.ID, w, n, prev)
			}
			prev = n
		}
		if far := m.IndexAt(1e9); math.Abs(far-m.A) > 1e-12 {
			t.Fatalf("%s: index at infinity = %v, want %v", m.ID, far, m.A)
		}
	}
}

func TestLookup(t *testing.T) {
	m, err := Lookup("water")
	if err != nil || m != Water {
		t.Fatalf("Lookup(water) = %+v, %v", m, err)
	}
	if _, err := Lookup("unobtainium"); !errors.Is(err, ErrUnknownMaterial) {
		t.Fatalf("Lookup(unknown) err = %v", err)
	}
}

func TestEffective(t *testing.T) {
	custom := Material{ID: "custom", A: 1.52, Overlaps: true}
	tests := []struct {
		name    string
		entered []Material
		want    Coefficients
	}{
		{"empty is air", nil, Coefficients{A: Air.A}},
		{"single", []Material{custom}, Coefficients{A: 1.52}},
		{"overlapping sum", []Material{Glass, Glass}, Coefficients{A: 2 * Glass.A, B: 2 * Glass.B}},
		{"exclusive keeps last", []Material{Water, Vacuum}, Coefficients{A: 1}},
		{"exclusive plus overlapping", []Material{Water, Glass}, Coefficients{A: Water.A + Glass.A, B: Water.B + Glass.B}},
		{"mirror falls back", []Material{Mirror}, Coefficients{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Effective(tt.entered)
			if math.Abs(got.A-tt.want.A) > 1e-12 || math.Abs(got.B-tt.want.B) > 1e-12 {
				t.Errorf("Effective = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestWavelengthToRGB(t *testing.T) {
	tests := []struct {
		nm   float64
		want RGB
	}{
		{300, RGB{}},
		{380, RGB{R: 77, G: 0, B: 77}},
		{440, RGB{R: 0, G: 0, B: 255}},
		{465, RGB{R: 0, G: 128, B: 255}},
		{500, RGB{R: 0, G: 255, B: 128}},
		{580, RGB{R: 255, G: 255, B: 0}},
		{645, RGB{R: 255, G: 0, B: 0}},
		{700, RGB{R: 255, G: 0, B: 0}},
		{780, RGB{R: 77, G: 0, B: 0}},
		{800, RGB{}},
	}
	for _, tt := range tests {
		if got := WavelengthToRGB(tt.nm); got != tt.want {
			t.Errorf("WavelengthToRGB(%v) = %+v, want %+v", tt.nm, got, tt.want)
		}
	}
}

func TestRGBFormatting(t *testing.T) {
	c := RGB{R: 10, G: 20, B: 30}
	if got := c.CSS(0.5); got != "rgba(10,20,30,0.5)" {
		t.Fatalf("CSS = %q", got)
	}
	if got := c.RGBA(2); got.A != 255 {
		t.Fatalf("RGBA clamps opacity, got A=%d", got.A)
	}
}

func TestParseCSS(t *testing.T) {
	for _, m := range All() {
		if _, err := ParseCSS(m.StrokeColor); err != nil {
			t.Errorf("%s stroke: %v", m.ID, err)
		}
		if _, err := ParseCSS(m.FillColor); err != nil {
			t.Errorf("%s fill: %v", m.ID, err)
		}
	}
	c, err := ParseCSS("rgba(64,164,223,0.2)")
	if err != nil {
		t.Fatal(err)
	}
	if c.R != 64 || c.G != 164 || c.B != 223 || c.A != 51 {
		t.Errorf("got %+v", c)
	}
	if _, err := ParseCSS("#ffffff"); err == nil {
		t.Error("expected error for hex colour")
	}
}
