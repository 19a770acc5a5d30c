package chart

import "math"

// Linear maps a numeric domain onto a pixel range.
type Linear struct {
	D0, D1 float64
	R0, R1 float64
}

func NewLinear(d0, d1, r0, r1 float64) Linear {
	return Linear{D0: d0, D1: d1, R0: r0, R1: r1}
}

func (s Linear) Map(v float64) float64 {
	if s.D1 == s.D0 {
		return (s.R0 + s.R1) / 2
	}

	return s.R0 + (v-s.D0)/(s.D1-s.D0)*(s.R1-s.R0)
}

func (s Linear) Invert(px float64) float64 {
	if s.R1 == s.R0 {
		return s.D0
	}

	return s.D0 + (px-s.R0)/(s.R1-s.R0)*(s.D1-s.D0)
}

// Nice widens the domain to round tick boundaries.
func (s Linear) Nice(count int) Linear {
	lo, hi := s.D0, s.D1
	reversed := lo > hi

	if reversed {
		lo, hi = hi, lo
	}

	step := tickStep(lo, hi, count)
	if step <= 0 || math.IsInf(step, 0) || math.IsNaN(step) {
		return s
	}

	lo = math.Floor(lo/step) * step
	hi = math.Ceil(hi/step) * step

	if reversed {
		lo, hi = hi, lo
	}

	return Linear{D0: lo, D1: hi, R0: s.R0, R1: s.R1}
}

// Ticks returns roughly count round values inside the domain.
func (s Linear) Ticks(count int) []float64 {
	lo, hi := math.Min(s.D0, s.D1), math.Max(s.D0, s.D1)

	step := tickStep(lo, hi, count)
	if step <= 0 || math.IsInf(step, 0) || math.IsNaN(step) {
		return []float64{lo}
	}

	first := math.Ceil(lo/step - 1e-9)
	last := math.Floor(hi/step + 1e-9)

	ticks := make([]float64, 0, int(last-first)+1)
	for i := first; i <= last; i++ {
		ticks = append(ticks, i*step)
	}

	return ticks
}

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

func tickStep(lo, hi float64, count int) float64 {
	if count <= 0 || hi <= lo {
		return 0
	}

	raw := (hi - lo) / float64(count)
	step := math.Pow(10, math.Floor(math.Log10(raw)))
	ratio := raw / step

	switch {
	case ratio >= e10:
		step *= 10
	case ratio >= e5:
		step *= 5
	case ratio >= e2:
		step *= 2
	}

	return step
}
