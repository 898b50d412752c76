package mood

import "math"

// DefaultTopK is how many of the highest ranked moods take part in a blend.
const DefaultTopK = 3

const (
	minSaturation = 8
	maxSaturation = 95
	minLightness  = 6
	maxLightness  = 92
)

// Top returns the first k moods in the caller's order. k <= 0 means DefaultTopK.
func Top(moods []Mood, k int) []Mood {
	if k <= 0 {
		k = DefaultTopK
	}
	if len(moods) < k {
		k = len(moods)
	}
	return moods[:k]
}

// Blend mixes the base colors of the top k moods into a single sample.
//
// Hue is a circular mean: each hue becomes a unit vector scaled by its
// normalized weight and the vectors are summed, so 350° and 10° average to 0°
// rather than 180°. Saturation and lightness are plain weighted means, rounded
// and clamped. The input is never re-sorted; it must already be ranked.
func Blend(moods []Mood, k int) HSL {
	top := Top(moods, k)

	var sum float64
	for _, m := range top {
		sum += m.Score
	}
	if !(sum > 0) {
		return Fallback
	}

	var x, y, sAcc, lAcc float64
	for _, m := range top {
		w := m.Score / sum
		base := BaseColor(m.Label)
		rad := base.H * math.Pi / 180
		x += math.Cos(rad) * w
		y += math.Sin(rad) * w
		sAcc += base.S * w
		lAcc += base.L * w
	}

	return HSL{
		H: circularHue(x, y),
		S: clamp(math.Round(sAcc), minSaturation, maxSaturation),
		L: clamp(math.Round(lAcc), minLightness, maxLightness),
	}
}

// circularHue converts a summed hue vector back into whole degrees in [0,360).
func circularHue(x, y float64) float64 {
	// Opposite hues with equal weight cancel out and leave no direction.
	if math.Hypot(x, y) < 1e-9 {
		return Fallback.H
	}
	hue := math.Atan2(y, x) * 180 / math.Pi
	if math.IsNaN(hue) {
		return Fallback.H
	}
	hue = math.Round(hue)
	if hue < 0 {
		hue += 360
	}
	if hue >= 360 {
		hue -= 360
	}
	return hue
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
