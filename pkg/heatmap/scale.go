package heatmap

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// rdBu are the 11 ColorBrewer RdBu stops, red to blue.
var rdBu = mustHexes(
	"#67001f", "#b2182b", "#d6604d", "#f4a582", "#fddbc7",
	"#f7f7f7",
	"#d1e5f0", "#92c5de", "#4393c3", "#2166ac", "#053061",
)

func mustHexes(hexes ...string) []colorful.Color {
	out := make([]colorful.Color, len(hexes))

	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(err)
		}

		out[i] = c
	}

	return out
}

// Color maps an impact score in [0,1] onto reversed RdBu: 1 is dark red,
// 0 is dark blue and 0.5 is the neutral midpoint. Out-of-range values clamp.
func Color(v float64) string {
	if math.IsNaN(v) {
		v = 0.5
	}

	v = math.Max(0, math.Min(1, v))

	// RdBu runs red to blue, so high scores sample near its start.
	u := (1 - v) * float64(len(rdBu)-1)

	i := int(math.Floor(u))
	if i >= len(rdBu)-1 {
		return rdBu[len(rdBu)-1].Hex()
	}

	frac := u - float64(i)
	if frac == 0 {
		return rdBu[i].Hex()
	}

	return rdBu[i].BlendLab(rdBu[i+1], frac).Clamped().Hex()
}
