/*-
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package heatmap renders the feature-impact (dynamask) heatmap of a device.
package heatmap

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/carverauto/pemfcradar/pkg/models"
)

// Placeholder is shown instead of an empty grid.
const Placeholder = "No impact mask: no anomaly detected"

const (
	width        = 800
	rowHeight    = 40
	marginTop    = 20
	marginRight  = 20
	marginBottom = 30
	marginLeft   = 110
	plotWidth    = width - marginLeft - marginRight
	rowPadding   = 2
	xTicks       = 6
)

// Cell is one (time step, feature) square.
type Cell struct {
	Step    int     `json:"step"`
	Feature int     `json:"feature"`
	Value   float64 `json:"value"`
	Color   string  `json:"color"`
}

// Grid is the laid-out heatmap. Step 0 is the oldest time step, so the
// most recent one is rightmost.
type Grid struct {
	Features []string `json:"features"`
	Steps    int      `json:"steps"`
	Cells    []Cell   `json:"cells"`
}

// Empty reports whether there is nothing to draw.
func (g *Grid) Empty() bool {
	return g == nil || g.Steps == 0 || len(g.Cells) == 0
}

// Build lays out a mask whose rows arrive most recent first. Columns beyond
// the feature list are ignored and short rows leave their cells blank.
func Build(mask *models.ImpactMask, features []string) *Grid {
	g := &Grid{Features: features}

	if mask.Empty() {
		return g
	}

	rows := mask.Value
	g.Steps = len(rows)

	for step := range rows {
		row := rows[len(rows)-1-step]

		for f := 0; f < len(features) && f < len(row); f++ {
			v := row[f]
			if math.IsNaN(v) {
				continue
			}

			v = math.Max(0, math.Min(1, v))
			g.Cells = append(g.Cells, Cell{Step: step, Feature: f, Value: v, Color: Color(v)})
		}
	}

	return g
}

// Height is the SVG height for n feature rows.
func Height(n int) int {
	return marginTop + marginBottom + rowHeight*max(n, 1)
}

// Render writes the heatmap as SVG, or the placeholder when g is empty.
func Render(w io.Writer, title string, g *Grid) error {
	if g.Empty() {
		return RenderPlaceholder(w, title)
	}

	h := Height(len(g.Features))

	canvas := svg.New(w)
	canvas.Start(width, h, fmt.Sprintf(`viewBox="0 0 %d %d"`, width, h), `font-family="sans-serif"`)
	canvas.Title(title)
	canvas.Gtransform(fmt.Sprintf("translate(%d,%d)", marginLeft, marginTop))

	cellW := float64(plotWidth) / float64(g.Steps)

	for _, c := range g.Cells {
		x0 := int(math.Round(float64(c.Step) * cellW))
		x1 := int(math.Round(float64(c.Step+1) * cellW))
		y := c.Feature*rowHeight + rowPadding

		canvas.Rect(x0, y, max(1, x1-x0), rowHeight-2*rowPadding, "fill:"+c.Color)
	}

	for i, name := range g.Features {
		canvas.Text(-8, i*rowHeight+rowHeight/2+4, name, "text-anchor:end;font-size:12px;fill:#333")
	}

	plotH := rowHeight * len(g.Features)
	canvas.Line(0, plotH, plotWidth, plotH, "stroke:#333")

	step := max(1, g.Steps/xTicks)
	for s := 0; s <= g.Steps; s += step {
		x := int(math.Round(float64(s) * cellW))
		canvas.Line(x, plotH, x, plotH+4, "stroke:#333")
		canvas.Text(x, plotH+16, fmt.Sprint(s), "text-anchor:middle;font-size:10px;fill:#555")
	}

	canvas.Gend()
	canvas.End()

	return nil
}

// RenderPlaceholder writes an SVG carrying only the placeholder message.
func RenderPlaceholder(w io.Writer, title string) error {
	h := Height(1)

	canvas := svg.New(w)
	canvas.Start(width, h, fmt.Sprintf(`viewBox="0 0 %d %d"`, width, h), `font-family="sans-serif"`)
	canvas.Title(title)
	canvas.Rect(0, 0, width, h, "fill:#fafafa;stroke:#dddddd")
	canvas.Text(width/2, h/2+5, Placeholder, "text-anchor:middle;font-size:14px;fill:#777")
	canvas.End()

	return nil
}

// Title is the heading for a signal's heatmap.
func Title(sig models.Signal) string {
	return sig.Label + " feature impact"
}
