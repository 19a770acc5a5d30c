package chart

import (
	"fmt"
	"io"
	"math"
	"strconv"

	svg "github.com/ajstarks/svgo"
)

// Chart canvas layout in pixels.
const (
	Width  = 800
	Height = 320

	marginTop    = 28
	marginRight  = 24
	marginBottom = 36
	marginLeft   = 60

	PlotWidth  = Width - marginLeft - marginRight
	PlotHeight = Height - marginTop - marginBottom

	yTickCount = 5
	xTickCount = 8

	forecastColor = "#999999"
	gridColor     = "#e5e5e5"
	axisColor     = "#333333"
	clipID        = "plot-clip"
)

// RenderOptions controls one SVG render.
type RenderOptions struct {
	Transform Transform
	MaxZoom   float64
	Crosshair *Crosshair
	Overlays  []Overlay
}

// PlotOrigin is the top-left corner of the plotting area on the canvas.
// Pointer coordinates sent back by the page are relative to it.
func PlotOrigin() (x, y int) {
	return marginLeft, marginTop
}

// XScale is the unzoomed index scale for a series.
func XScale(s *Series) Linear {
	return NewLinear(0, float64(max(s.Len()-1, 0)), 0, PlotWidth)
}

// YScale is the niced value scale for a series.
func YScale(s *Series) Linear {
	return valueScale(s.Extent())
}

func valueScale(lo, hi float64, ok bool) Linear {
	if !ok {
		lo, hi = 0, 1
	}

	if lo == hi {
		pad := math.Max(math.Abs(lo)*0.05, 1)
		lo, hi = lo-pad, hi+pad
	}

	return NewLinear(lo, hi, PlotHeight, 0).Nice(yTickCount)
}

// Render writes the chart as SVG.
func Render(w io.Writer, s *Series, opts RenderOptions) error {
	canvas := svg.New(w)
	canvas.Start(Width, Height, fmt.Sprintf(`viewBox="0 0 %d %d"`, Width, Height),
		`font-family="sans-serif"`, `font-size="11"`)
	canvas.Title(s.Signal.Label + " trend")

	canvas.Def()
	canvas.ClipPath(`id="` + clipID + `"`)
	canvas.Rect(0, 0, PlotWidth, PlotHeight)
	canvas.ClipEnd()
	canvas.DefEnd()

	canvas.Gtransform(fmt.Sprintf("translate(%d,%d)", marginLeft, marginTop))

	renderLegend(canvas, s)

	if s.Len() == 0 {
		renderAxes(canvas)
		canvas.Text(PlotWidth/2, PlotHeight/2, "No data", "text-anchor:middle;fill:#888")
		canvas.Gend()
		canvas.End()

		return nil
	}

	t := opts.Transform.Clamp(PlotWidth, opts.MaxZoom)
	xs := t.Rescale(XScale(s))
	ys := YScale(s)

	renderYGrid(canvas, ys)
	renderXGrid(canvas, s, xs)

	canvas.Group(`clip-path="url(#` + clipID + `)"`)
	renderBands(canvas, s, xs, t)

	for i := range opts.Overlays {
		ov := &opts.Overlays[i]
		renderLine(canvas, ov.Points, xs, valueScale(ov.Extent()),
			"fill:none;stroke:"+ov.Color+";stroke-width:1.5;stroke-opacity:0.8")
	}

	renderLine(canvas, s.History, xs, ys, "fill:none;stroke:"+s.Signal.Color+";stroke-width:1.5")
	renderLine(canvas, s.ForecastLine(), xs, ys,
		"fill:none;stroke:"+forecastColor+";stroke-width:1.5;stroke-dasharray:5,4")
	canvas.Gend()

	renderAxes(canvas)
	renderOverlayLegend(canvas, opts.Overlays)

	if opts.Crosshair != nil {
		renderCrosshair(canvas, opts.Crosshair, ys)
	}

	canvas.Gend()
	canvas.End()

	return nil
}

func renderLegend(canvas *svg.SVG, s *Series) {
	title := s.Signal.Label
	if s.Signal.Unit != "" {
		title += " (" + s.Signal.Unit + ")"
	}

	canvas.Text(0, -10, title, "font-weight:bold;fill:"+axisColor)

	if len(s.Forecast) > 0 {
		x := PlotWidth - 150
		canvas.Line(x, -14, x+24, -14, "stroke:"+s.Signal.Color+";stroke-width:2")
		canvas.Text(x+28, -10, "history", "fill:#555")
		canvas.Line(x+80, -14, x+104, -14, "stroke:"+forecastColor+";stroke-width:2;stroke-dasharray:5,4")
		canvas.Text(x+108, -10, "forecast", "fill:#555")
	}
}

// renderOverlayLegend names the overlaid features under the x axis. Each
// overlay has its own value scale, so only the signal's axis is labelled.
func renderOverlayLegend(canvas *svg.SVG, overlays []Overlay) {
	const step = 80

	for i, ov := range overlays {
		x := i * step
		if x+step > PlotWidth {
			break
		}

		canvas.Rect(x, PlotHeight+24, 10, 3, "fill:"+ov.Color)
		canvas.Text(x+14, PlotHeight+30, ov.Feature, "font-size:10px;fill:#555")
	}
}

func renderAxes(canvas *svg.SVG) {
	canvas.Line(0, PlotHeight, PlotWidth, PlotHeight, "stroke:"+axisColor)
	canvas.Line(0, 0, 0, PlotHeight, "stroke:"+axisColor)
}

func renderYGrid(canvas *svg.SVG, ys Linear) {
	ticks := ys.Ticks(yTickCount)
	decimals := tickDecimals(ticks)

	for _, v := range ticks {
		y := px(ys.Map(v))
		canvas.Line(0, y, PlotWidth, y, "stroke:"+gridColor)
		canvas.Text(-8, y+4, strconv.FormatFloat(v, 'f', decimals, 64), "text-anchor:end;fill:#555")
	}
}

func renderXGrid(canvas *svg.SVG, s *Series, xs Linear) {
	last := s.LastHistoryIndex()

	for _, v := range xs.Ticks(xTickCount) {
		if v != math.Trunc(v) {
			continue
		}

		x := px(xs.Map(v))
		canvas.Line(x, 0, x, PlotHeight, "stroke:"+gridColor)
		canvas.Text(x, PlotHeight+16, OffsetLabel(int(v)-last), "text-anchor:middle;fill:#555")
	}

	if last >= 0 && len(s.Forecast) > 0 {
		x := px(xs.Map(float64(last)))
		canvas.Line(x, 0, x, PlotHeight, "stroke:#bbbbbb;stroke-dasharray:2,2")
	}
}

func renderBands(canvas *svg.SVG, s *Series, xs Linear, t Transform) {
	step := float64(PlotWidth) * t.K
	if n := s.Len(); n > 1 {
		step /= float64(n - 1)
	}

	width := max(1, int(math.Ceil(step)))

	for _, b := range s.Bands() {
		cx := xs.Map(float64(b.Index))
		if cx+step/2 < 0 || cx-step/2 > PlotWidth {
			continue
		}

		canvas.Rect(px(cx-step/2), 0, width, PlotHeight,
			fmt.Sprintf("fill:%s;fill-opacity:%.2f", b.Color, b.Opacity))
	}
}

func renderLine(canvas *svg.SVG, points []Point, xs, ys Linear, style string) {
	xPts := make([]int, 0, len(points))
	yPts := make([]int, 0, len(points))

	for _, p := range points {
		if !p.Valid {
			continue
		}

		xPts = append(xPts, px(xs.Map(float64(p.Index))))
		yPts = append(yPts, px(ys.Map(p.Value)))
	}

	if len(xPts) < 2 {
		return
	}

	canvas.Polyline(xPts, yPts, style)
}

func renderCrosshair(canvas *svg.SVG, ch *Crosshair, ys Linear) {
	x := px(ch.X)
	canvas.Line(x, 0, x, PlotHeight, "stroke:#555555;stroke-dasharray:3,3")

	if ch.Valid {
		canvas.Circle(x, px(ys.Map(ch.Value)), 4, "fill:"+ch.State.Color()+";stroke:#333")
	}

	anchor := "start"
	tx := x + 6

	if x > PlotWidth-160 {
		anchor = "end"
		tx = x - 6
	}

	canvas.Text(tx, 14, ch.Label, "text-anchor:"+anchor+";fill:#222")
}

func tickDecimals(ticks []float64) int {
	if len(ticks) < 2 {
		return 2
	}

	step := math.Abs(ticks[1] - ticks[0])
	if step == 0 {
		return 2
	}

	return max(0, int(-math.Floor(math.Log10(step))))
}

func px(v float64) int {
	return int(math.Round(v))
}
