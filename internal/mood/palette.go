// Package mood turns ranked emotion scores into colors: a fixed palette of
// base colors per label, a weighted circular blend of the top moods, and a
// solid or banded gradient fill with a readable foreground color.
package mood

import (
	"strconv"
	"strings"
)

// Mood is a single (label, score) classification output. Lists of moods are
// ordered descending by score by whoever produced them.
type Mood struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// HSL is a color sample: hue in [0,360), saturation and lightness in [0,100].
type HSL struct {
	H float64 `json:"h" yaml:"h"`
	S float64 `json:"s" yaml:"s"`
	L float64 `json:"l" yaml:"l"`
}

// CSS renders the sample using the space-separated CSS syntax, e.g. "hsl(210 8% 60%)".
func (c HSL) CSS() string {
	return "hsl(" + formatNum(c.H) + " " + formatNum(c.S) + "% " + formatNum(c.L) + "%)"
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Fallback is the neutral grey used for unknown labels and degenerate input.
var Fallback = HSL{H: 210, S: 8, L: 60}

// Label is a palette entry. Labels outside the palette resolve to Unknown.
type Label string

const (
	Unknown    Label = ""
	Desire     Label = "desire"
	Love       Label = "love"
	Joy        Label = "joy"
	Optimism   Label = "optimism"
	Excitement Label = "excitement"
	Curiosity  Label = "curiosity"
	Neutral    Label = "neutral"
	Sadness    Label = "sadness"
	Anger      Label = "anger"
	Fear       Label = "fear"
	Caring     Label = "caring"
	Gratitude  Label = "gratitude"
	Surprise   Label = "surprise"
	Approval   Label = "approval"
	Annoyance  Label = "annoyance"
)

// Labels lists the palette in a stable order.
var Labels = []Label{
	Desire, Love, Joy, Optimism, Excitement, Curiosity, Neutral, Sadness,
	Anger, Fear, Caring, Gratitude, Surprise, Approval, Annoyance,
}

// ParseLabel maps a classifier label onto the palette. Matching ignores case
// and surrounding whitespace; anything else is Unknown.
func ParseLabel(s string) Label {
	l := Label(strings.ToLower(strings.TrimSpace(s)))
	switch l {
	case Desire, Love, Joy, Optimism, Excitement, Curiosity, Neutral, Sadness,
		Anger, Fear, Caring, Gratitude, Surprise, Approval, Annoyance:
		return l
	default:
		return Unknown
	}
}

// Known reports whether the label has its own palette color.
func (l Label) Known() bool {
	return l != Unknown && ParseLabel(string(l)) == l
}

// Color returns the base color for the label. Unknown returns Fallback.
func (l Label) Color() HSL {
	switch l {
	case Desire:
		return HSL{330, 70, 55}
	case Love:
		return HSL{345, 75, 58}
	case Joy:
		return HSL{48, 85, 55}
	case Optimism:
		return HSL{50, 90, 55}
	case Excitement:
		return HSL{18, 85, 55}
	case Curiosity:
		return HSL{260, 60, 55}
	case Neutral:
		return HSL{210, 8, 60}
	case Sadness:
		return HSL{220, 30, 42}
	case Anger:
		return HSL{10, 75, 45}
	case Fear:
		return HSL{260, 30, 40}
	case Caring:
		return HSL{160, 55, 50}
	case Gratitude:
		return HSL{160, 65, 55}
	case Surprise:
		return HSL{200, 70, 60}
	case Approval:
		return HSL{140, 50, 50}
	case Annoyance:
		return HSL{25, 40, 45}
	default:
		return Fallback
	}
}

// BaseColor looks up the palette color for a raw classifier label.
func BaseColor(label string) HSL {
	return ParseLabel(label).Color()
}

// Swatch is one palette row, used when the palette is served to clients.
type Swatch struct {
	Label Label  `json:"label"`
	Color HSL    `json:"color"`
	CSS   string `json:"css"`
}

// Palette returns every known label with its base color, plus the fallback.
func Palette() (swatches []Swatch, fallback Swatch) {
	swatches = make([]Swatch, 0, len(Labels))
	for _, l := range Labels {
		c := l.Color()
		swatches = append(swatches, Swatch{Label: l, Color: c, CSS: c.CSS()})
	}
	return swatches, Swatch{Label: Unknown, Color: Fallback, CSS: Fallback.CSS()}
}
