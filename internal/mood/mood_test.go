package mood

import (
	"math"
	"strings"
	"testing"
)

func TestParseLabel(t *testing.T) {
	tests := []struct {
		in   string
		want Label
	}{
		{"joy", Joy},
		{"  Joy ", Joy},
		{"ANGER", Anger},
		{"neutral", Neutral},
		{"remorse", Unknown},
		{"", Unknown},
	}

	for _, tt := range tests {
		if got := ParseLabel(tt.in); got != tt.want {
			t.Errorf("ParseLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUnknownLabelUsesFallback(t *testing.T) {
	if got := Unknown.Color(); got != Fallback {
		t.Errorf("Unknown.Color() = %+v, want %+v", got, Fallback)
	}
	if got := BaseColor("definitely-not-a-mood"); got != Fallback {
		t.Errorf("BaseColor(unmapped) = %+v, want %+v", got, Fallback)
	}
	if Unknown.Known() {
		t.Error("Unknown.Known() should be false")
	}
}

func TestPaletteCoversEveryLabel(t *testing.T) {
	swatches, fallback := Palette()
	if len(swatches) != 15 {
		t.Fatalf("len(Palette()) = %d, want 15", len(swatches))
	}
	for _, sw := range swatches {
		if !sw.Label.Known() {
			t.Errorf("label %q should be known", sw.Label)
		}
		if sw.CSS == "" {
			t.Errorf("label %q has empty CSS", sw.Label)
		}
	}
	if fallback.Color != Fallback {
		t.Errorf("fallback swatch = %+v, want %+v", fallback.Color, Fallback)
	}
}

func TestHSLCSS(t *testing.T) {
	if got := Fallback.CSS(); got != "hsl(210 8% 60%)" {
		t.Errorf("Fallback.CSS() = %q", got)
	}
}

func TestBlend_Empty(t *testing.T) {
	if got := Blend(nil, DefaultTopK); got != Fallback {
		t.Errorf("Blend(nil) = %+v, want %+v", got, Fallback)
	}
	if got := Blend([]Mood{{Label: "joy", Score: 0}}, DefaultTopK); got != Fallback {
		t.Errorf("Blend(zero score) = %+v, want %+v", got, Fallback)
	}
}

func TestBlend_SingletonIsBaseColor(t *testing.T) {
	for _, l := range Labels {
		got := Blend([]Mood{{Label: string(l), Score: 1.0}}, DefaultTopK)
		want := l.Color()
		if got != want {
			t.Errorf("Blend(%s=1.0) = %+v, want %+v", l, got, want)
		}
	}
}

func TestBlend_WeightedMix(t *testing.T) {
	moods := []Mood{
		{Label: "joy", Score: 0.6},
		{Label: "sadness", Score: 0.25},
		{Label: "anger", Score: 0.15},
	}
	got := Blend(moods, DefaultTopK)
	want := HSL{H: 41, S: 70, L: 50}
	if got != want {
		t.Errorf("Blend() = %+v, want %+v", got, want)
	}
}

func TestBlend_CircularHue(t *testing.T) {
	// 345° and 10° straddle zero; an arithmetic mean would land near 261°.
	moods := []Mood{
		{Label: "love", Score: 0.75},
		{Label: "anger", Score: 0.25},
	}
	got := Blend(moods, DefaultTopK)
	if got.H != 351 {
		t.Errorf("Blend() hue = %v, want 351", got.H)
	}
}

func TestBlend_PermutationInvariant(t *testing.T) {
	a := []Mood{
		{Label: "joy", Score: 0.6},
		{Label: "sadness", Score: 0.25},
		{Label: "anger", Score: 0.15},
	}
	b := []Mood{a[2], a[0], a[1]}
	c := []Mood{a[1], a[2], a[0]}

	want := Blend(a, DefaultTopK)
	for i, moods := range [][]Mood{b, c} {
		if got := Blend(moods, DefaultTopK); got != want {
			t.Errorf("permutation %d: Blend() = %+v, want %+v", i, got, want)
		}
	}
}

func TestBlend_UsesCallerOrderForTruncation(t *testing.T) {
	moods := []Mood{
		{Label: "joy", Score: 0.4},
		{Label: "joy", Score: 0.3},
		{Label: "joy", Score: 0.2},
		{Label: "sadness", Score: 0.9}, // beyond top 3, must be ignored
	}
	if got := Blend(moods, DefaultTopK); got != Joy.Color() {
		t.Errorf("Blend() = %+v, want joy %+v", got, Joy.Color())
	}
}

func TestCircularHue(t *testing.T) {
	tests := []struct {
		name string
		x, y float64
		want float64
	}{
		{"cancelled vectors", 0, 0, 210},
		{"near zero", 1e-12, -1e-12, 210},
		{"east", 1, 0, 0},
		{"north", 0, 1, 90},
		{"west", -1, 0, 180},
		{"south", 0, -1, 270},
		{"just below 360", math.Cos(-0.2 * math.Pi / 180), math.Sin(-0.2 * math.Pi / 180), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := circularHue(tt.x, tt.y); got != tt.want {
				t.Errorf("circularHue(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestBlend_NaNScoreFallsBack(t *testing.T) {
	got := Blend([]Mood{{Label: "joy", Score: math.NaN()}}, DefaultTopK)
	if got != Fallback {
		t.Errorf("Blend(NaN) = %+v, want %+v", got, Fallback)
	}
}

func TestBlend_Ranges(t *testing.T) {
	for i, a := range Labels {
		for j, b := range Labels {
			c := Labels[(i+j)%len(Labels)]
			moods := []Mood{
				{Label: string(a), Score: 0.5},
				{Label: string(b), Score: 0.3},
				{Label: string(c), Score: 0.1},
			}
			got := Blend(moods, DefaultTopK)
			if got.H < 0 || got.H >= 360 {
				t.Fatalf("Blend(%v) hue %v out of [0,360)", moods, got.H)
			}
			if got.S < 8 || got.S > 95 {
				t.Fatalf("Blend(%v) saturation %v out of [8,95]", moods, got.S)
			}
			if got.L < 6 || got.L > 92 {
				t.Fatalf("Blend(%v) lightness %v out of [6,92]", moods, got.L)
			}
		}
	}
}

func TestRender_DominantMoodIsSolid(t *testing.T) {
	moods := []Mood{
		{Label: "joy", Score: 0.7},
		{Label: "sadness", Score: 0.2},
		{Label: "anger", Score: 0.1},
	}
	r := Render(moods, Options{})
	if r.Fill.Kind != FillSolid {
		t.Fatalf("Fill.Kind = %q, want %q", r.Fill.Kind, FillSolid)
	}
	if r.Fill.Solid == nil || *r.Fill.Solid != r.Color {
		t.Errorf("solid fill = %+v, want blended %+v", r.Fill.Solid, r.Color)
	}
	if r.CSS != r.Color.CSS() {
		t.Errorf("CSS = %q, want %q", r.CSS, r.Color.CSS())
	}
}

func TestRender_ThresholdIsExclusive(t *testing.T) {
	moods := []Mood{
		{Label: "joy", Score: 0.6},
		{Label: "sadness", Score: 0.4},
	}
	if r := Render(moods, Options{}); r.Fill.Kind != FillGradient {
		t.Errorf("top score equal to threshold should not be solid, got %q", r.Fill.Kind)
	}
}

func TestRender_SpreadMoodsAreBanded(t *testing.T) {
	moods := []Mood{
		{Label: "joy", Score: 0.5},
		{Label: "sadness", Score: 0.3},
		{Label: "anger", Score: 0.2},
	}
	r := Render(moods, Options{})
	if r.Fill.Kind != FillGradient {
		t.Fatalf("Fill.Kind = %q, want %q", r.Fill.Kind, FillGradient)
	}
	if len(r.Fill.Bands) != 3 {
		t.Fatalf("len(Bands) = %d, want 3", len(r.Fill.Bands))
	}

	wantWidths := []float64{50, 30, 20}
	var total float64
	prevEnd := 0.0
	for i, b := range r.Fill.Bands {
		if math.Abs(b.Start-prevEnd) > 1e-9 {
			t.Errorf("band %d starts at %v, want %v", i, b.Start, prevEnd)
		}
		if math.Abs(b.Width()-wantWidths[i]) > 1e-9 {
			t.Errorf("band %d width = %v, want %v", i, b.Width(), wantWidths[i])
		}
		if b.Color != BaseColor(moods[i].Label) {
			t.Errorf("band %d color = %+v, want base %+v", i, b.Color, BaseColor(moods[i].Label))
		}
		total += b.Width()
		prevEnd = b.End
	}
	if math.Abs(total-100) > 1e-9 {
		t.Errorf("band widths sum to %v, want 100", total)
	}
	if r.Fill.Bands[2].End != 100 {
		t.Errorf("last band ends at %v, want 100", r.Fill.Bands[2].End)
	}

	wantCSS := "linear-gradient(to right, " +
		"hsl(48 85% 55%) 0%, hsl(48 85% 55%) 50%, " +
		"hsl(220 30% 42%) 50%, hsl(220 30% 42%) 80%, " +
		"hsl(10 75% 45%) 80%, hsl(10 75% 45%) 100%)"
	if r.CSS != wantCSS {
		t.Errorf("CSS = %q\nwant %q", r.CSS, wantCSS)
	}
	if r.Foreground != ForegroundFor(r.Color) {
		t.Errorf("Foreground = %q, should follow the blended color", r.Foreground)
	}
}

func TestRender_CustomOptions(t *testing.T) {
	moods := []Mood{
		{Label: "joy", Score: 0.5},
		{Label: "sadness", Score: 0.3},
		{Label: "anger", Score: 0.2},
	}
	r := Render(moods, Options{DominanceThreshold: 0.4, Direction: "to bottom"})
	if r.Fill.Kind != FillSolid {
		t.Errorf("Fill.Kind = %q with lower threshold, want solid", r.Fill.Kind)
	}

	r = Render(moods, Options{TopK: 2, Direction: "to bottom"})
	if len(r.Fill.Bands) != 2 {
		t.Fatalf("len(Bands) = %d, want 2", len(r.Fill.Bands))
	}
	if !strings.HasPrefix(r.CSS, "linear-gradient(to bottom, ") {
		t.Errorf("CSS = %q, want to bottom direction", r.CSS)
	}
}

func TestRender_Empty(t *testing.T) {
	r := Render(nil, Options{})
	if r.Fill.Kind != FillSolid || r.Color != Fallback {
		t.Errorf("Render(nil) = %+v, want solid fallback", r)
	}
}

func TestHSLToRGB(t *testing.T) {
	tests := []struct {
		in   HSL
		want RGB
	}{
		{HSL{0, 0, 0}, RGB{0, 0, 0}},
		{HSL{0, 0, 100}, RGB{255, 255, 255}},
		{HSL{0, 100, 50}, RGB{255, 0, 0}},
		{HSL{120, 100, 50}, RGB{0, 255, 0}},
		{HSL{240, 100, 50}, RGB{0, 0, 255}},
		{HSL{210, 8, 60}, RGB{145, 153, 161}},
		{HSL{220, 30, 42}, RGB{75, 96, 139}},
	}

	for _, tt := range tests {
		if got := HSLToRGB(tt.in); got != tt.want {
			t.Errorf("HSLToRGB(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestForegroundForLuminance_Boundary(t *testing.T) {
	tests := []struct {
		lum  float64
		want Foreground
	}{
		{0.30, Black},
		{0.20, White},
		{0.25, White},
		{0.2500001, Black},
		{0, White},
		{1, Black},
	}

	for _, tt := range tests {
		if got := ForegroundForLuminance(tt.lum); got != tt.want {
			t.Errorf("ForegroundForLuminance(%v) = %q, want %q", tt.lum, got, tt.want)
		}
	}
}

func TestForegroundFor(t *testing.T) {
	tests := []struct {
		name string
		in   HSL
		want Foreground
	}{
		{"white background", HSL{0, 0, 100}, Black},
		{"black background", HSL{0, 0, 0}, White},
		{"neutral grey", Neutral.Color(), Black},
		{"sadness", Sadness.Color(), White},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ForegroundFor(tt.in); got != tt.want {
				t.Errorf("ForegroundFor(%+v) = %q, want %q (luminance %.3f)",
					tt.in, got, tt.want, RelativeLuminance(HSLToRGB(tt.in)))
			}
		})
	}
}
