package chart

import (
	"fmt"
	"math"
	"strconv"

	"github.com/carverauto/pemfcradar/pkg/models"
)

// samplePeriod is the spacing of history samples, one per second.
const samplePeriod = 1

// Crosshair is what the hover overlay shows for one pointer position.
type Crosshair struct {
	Index    int          `json:"index"`
	Value    float64      `json:"value"`
	Valid    bool         `json:"valid"`
	State    models.State `json:"state"`
	Forecast bool         `json:"forecast"`
	Offset   string       `json:"offset"`
	Label    string       `json:"label"`
	X        float64      `json:"x"`
}

// Inspect maps a plot-relative pointer x to the sample under it. The index
// is the rounded inverse of the zoomed scale, clamped to the series.
func Inspect(s *Series, xScale Linear, t Transform, px float64) (*Crosshair, error) {
	if s.Len() == 0 {
		return nil, errEmptySeries
	}

	zoomed := t.Rescale(xScale)

	last := float64(s.Len() - 1)

	pos := zoomed.Invert(px)
	if math.IsNaN(pos) {
		pos = 0
	}

	// clamp before converting so huge or infinite x cannot overflow
	idx := int(math.Round(math.Max(0, math.Min(last, pos))))

	p, _ := s.At(idx)
	offset := OffsetLabel(idx - s.LastHistoryIndex())

	ch := &Crosshair{
		Index:    idx,
		Value:    p.Value,
		Valid:    p.Valid,
		State:    p.State,
		Forecast: idx > s.LastHistoryIndex(),
		Offset:   offset,
		X:        zoomed.Map(float64(idx)),
	}

	if p.Valid {
		ch.Label = fmt.Sprintf("%s%s (%s)", strconv.FormatFloat(p.Value, 'f', 4, 64), s.Signal.Unit, offset)
	} else {
		ch.Label = "n/a (" + offset + ")"
	}

	return ch, nil
}

// OffsetLabel renders a sample offset from now as "-Ns", "+Ns" or "0s".
func OffsetLabel(steps int) string {
	secs := steps * samplePeriod

	switch {
	case secs < 0:
		return strconv.Itoa(secs) + "s"
	case secs > 0:
		return "+" + strconv.Itoa(secs) + "s"
	}

	return "0s"
}
