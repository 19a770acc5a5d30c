package chart

import "math"

// Transform is a horizontal zoom: screen x = X + K*x. K is clamped to
// [1, maxK] and X so the zoomed plot always covers [0, width].
type Transform struct {
	K float64 `json:"k"`
	X float64 `json:"x"`
}

// Identity is the unzoomed transform.
var Identity = Transform{K: 1}

// Clamp bounds the transform to the plotting area of the given width.
func (t Transform) Clamp(width, maxK float64) Transform {
	if maxK < 1 {
		maxK = 1
	}

	k := t.K
	if math.IsNaN(k) || k < 1 {
		k = 1
	}

	if k > maxK {
		k = maxK
	}

	x := t.X
	if math.IsNaN(x) {
		x = 0
	}

	minX := width * (1 - k)
	x = math.Max(minX, math.Min(0, x))

	return Transform{K: k, X: x}
}

// Apply maps an untransformed plot coordinate to the screen.
func (t Transform) Apply(px float64) float64 {
	return t.X + t.K*px
}

// Invert maps a screen coordinate back to the untransformed plot.
func (t Transform) Invert(px float64) float64 {
	return (px - t.X) / t.K
}

// ZoomAt scales by factor keeping the screen point anchor fixed.
func (t Transform) ZoomAt(anchor, factor, width, maxK float64) Transform {
	cur := t.Clamp(width, maxK)
	next := Transform{K: cur.K * factor}.Clamp(width, maxK)

	next.X = anchor - (anchor-cur.X)*next.K/cur.K

	return next.Clamp(width, maxK)
}

// PanBy shifts by dx screen pixels.
func (t Transform) PanBy(dx, width, maxK float64) Transform {
	return Transform{K: t.K, X: t.X + dx}.Clamp(width, maxK)
}

// Rescale returns the index scale as seen through the transform.
func (t Transform) Rescale(s Linear) Linear {
	return Linear{
		D0: s.Invert(t.Invert(s.R0)),
		D1: s.Invert(t.Invert(s.R1)),
		R0: s.R0,
		R1: s.R1,
	}
}
