package mood

import "math"

// Foreground is the text color painted over a mood fill.
type Foreground string

const (
	Black Foreground = "black"
	White Foreground = "white"
)

// luminanceCut separates light backgrounds (black text) from dark ones.
// It is a coarse heuristic, not a WCAG contrast ratio.
const luminanceCut = 0.25

// RGB is an 8-bit color.
type RGB struct {
	R, G, B uint8
}

// HSLToRGB converts a sample to 8-bit RGB, rounding each channel.
func HSLToRGB(c HSL) RGB {
	s := c.S / 100
	l := c.L / 100
	a := s * math.Min(l, 1-l)
	k := func(n float64) float64 {
		return math.Mod(n+c.H/30, 12)
	}
	f := func(n float64) float64 {
		kn := k(n)
		return l - a*math.Max(-1, math.Min(kn-3, math.Min(9-kn, 1)))
	}
	return RGB{
		R: channel(f(0)),
		G: channel(f(8)),
		B: channel(f(4)),
	}
}

func channel(v float64) uint8 {
	return uint8(clamp(math.Round(255*v), 0, 255))
}

// linearize expands an sRGB channel in [0,1] to linear light.
func linearize(v float64) float64 {
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// RelativeLuminance returns 0.2126 R + 0.7152 G + 0.0722 B over linear-light channels.
func RelativeLuminance(c RGB) float64 {
	r := linearize(float64(c.R) / 255)
	g := linearize(float64(c.G) / 255)
	b := linearize(float64(c.B) / 255)
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// ForegroundForLuminance returns black text strictly above the cut, white otherwise.
func ForegroundForLuminance(lum float64) Foreground {
	if lum > luminanceCut {
		return Black
	}
	return White
}

// ForegroundFor picks black or white text for a background color.
func ForegroundFor(c HSL) Foreground {
	return ForegroundForLuminance(RelativeLuminance(HSLToRGB(c)))
}
