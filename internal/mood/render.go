package mood

import (
	"math"
	"strings"
)

// DefaultDominanceThreshold is the top score above which one mood dominates
// and the fill becomes a single solid color.
const DefaultDominanceThreshold = 0.6

// DefaultDirection is the CSS gradient axis used when none is given.
const DefaultDirection = "to right"

// FillKind tells the display whether to paint a solid color or a gradient.
type FillKind string

const (
	FillSolid    FillKind = "solid"
	FillGradient FillKind = "gradient"
)

// Band is one hard-edged gradient segment, positioned in percent along the axis.
type Band struct {
	Label string  `json:"label"`
	Color HSL     `json:"color"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Width is the share of the axis covered by the band, in percent.
func (b Band) Width() float64 { return b.End - b.Start }

// Fill is either a solid color or an ordered list of bands.
type Fill struct {
	Kind      FillKind `json:"kind"`
	Solid     *HSL     `json:"solid,omitempty"`
	Bands     []Band   `json:"bands,omitempty"`
	Direction string   `json:"direction,omitempty"`
}

// CSS renders the fill as a CSS background value.
func (f Fill) CSS() string {
	if f.Kind != FillGradient || len(f.Bands) == 0 {
		if f.Solid != nil {
			return f.Solid.CSS()
		}
		return Fallback.CSS()
	}
	stops := make([]string, 0, len(f.Bands)*2)
	for _, b := range f.Bands {
		color := b.Color.CSS()
		// two stops per color give each mood a hard edge instead of a wash
		stops = append(stops,
			color+" "+formatNum(math.Round(b.Start))+"%",
			color+" "+formatNum(math.Round(b.End))+"%",
		)
	}
	return "linear-gradient(" + f.Direction + ", " + strings.Join(stops, ", ") + ")"
}

// Options tune Render. Zero values select the defaults.
type Options struct {
	DominanceThreshold float64
	TopK               int
	Direction          string
}

func (o Options) withDefaults() Options {
	if o.DominanceThreshold <= 0 {
		o.DominanceThreshold = DefaultDominanceThreshold
	}
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if strings.TrimSpace(o.Direction) == "" {
		o.Direction = DefaultDirection
	}
	return o
}

// Rendering is everything the display needs to paint a mood.
type Rendering struct {
	Color      HSL        `json:"color"`
	Fill       Fill       `json:"fill"`
	Foreground Foreground `json:"foreground"`
	CSS        string     `json:"css"`
}

// Render picks a fill for the ranked moods and a foreground that reads on it.
//
// If the top mood scores above the dominance threshold, the fill is the solid
// blended color. Otherwise each of the top moods gets a band proportional to
// its normalized score. The foreground always follows the blended color, not
// the gradient.
func Render(moods []Mood, opts Options) Rendering {
	opts = opts.withDefaults()

	blended := Blend(moods, opts.TopK)
	r := Rendering{
		Color:      blended,
		Foreground: ForegroundFor(blended),
	}

	top := Top(moods, opts.TopK)
	if len(top) < 2 || top[0].Score > opts.DominanceThreshold {
		r.Fill = solid(blended)
	} else if bands := Bands(top); bands == nil {
		r.Fill = solid(blended)
	} else {
		r.Fill = Fill{Kind: FillGradient, Bands: bands, Direction: opts.Direction}
	}
	r.CSS = r.Fill.CSS()
	return r
}

func solid(c HSL) Fill {
	return Fill{Kind: FillSolid, Solid: &c}
}

// Bands lays out contiguous bands for the given moods, each as wide as its
// share of the total score. The last band always ends at exactly 100.
// It returns nil when the total score is not positive.
func Bands(moods []Mood) []Band {
	var sum float64
	for _, m := range moods {
		sum += m.Score
	}
	if !(sum > 0) {
		return nil
	}

	bands := make([]Band, 0, len(moods))
	var acc float64
	for i, m := range moods {
		start := acc * 100
		acc += m.Score / sum
		end := acc * 100
		if i == len(moods)-1 {
			end = 100
		}
		bands = append(bands, Band{
			Label: m.Label,
			Color: BaseColor(m.Label),
			Start: start,
			End:   end,
		})
	}
	return bands
}
