package chart

import (
	"math"
	"slices"

	"github.com/carverauto/pemfcradar/pkg/heatmap"
)

// overlayPalette is the category palette for impact features, assigned by
// the feature's position in its group.
var overlayPalette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Overlay is one impact-mask feature drawn over the signal on its own
// value scale.
type Overlay struct {
	Feature string  `json:"feature"`
	Color   string  `json:"color"`
	Points  []Point `json:"points"`
}

// FeatureColor returns the palette color of a feature in its group.
func FeatureColor(features []string, name string) string {
	i := slices.Index(features, name)
	if i < 0 {
		return forecastColor
	}

	return overlayPalette[i%len(overlayPalette)]
}

// MaskOverlays lays out the selected features of g against s. The newest
// mask step lines up with the last historical sample; steps that would
// fall before the first sample are dropped. Features the grid does not
// track are ignored.
func MaskOverlays(s *Series, g *heatmap.Grid, selected []string) []Overlay {
	if g.Empty() || len(selected) == 0 {
		return nil
	}

	offset := s.LastHistoryIndex() - (g.Steps - 1)
	out := make([]Overlay, 0, len(selected))

	for _, name := range selected {
		f := slices.Index(g.Features, name)
		if f < 0 {
			continue
		}

		ov := Overlay{Feature: name, Color: FeatureColor(g.Features, name)}

		for _, c := range g.Cells {
			if c.Feature != f || offset+c.Step < 0 {
				continue
			}

			ov.Points = append(ov.Points, Point{Index: offset + c.Step, Value: c.Value, Valid: true})
		}

		out = append(out, ov)
	}

	return out
}

// Extent returns the min and max of the overlay's values.
func (o *Overlay) Extent() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)

	for _, p := range o.Points {
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}

	return lo, hi, lo <= hi
}
