package chart

import (
	"fmt"
	"io"
	"strconv"

	svg "github.com/ajstarks/svgo"
	"github.com/carverauto/pemfcradar/pkg/models"
)

// Status grid layout: the last StatusCells records as a Cols x Rows tile grid.
const (
	StatusCols  = 6
	StatusRows  = 5
	StatusCells = StatusCols * StatusRows

	statusWidth   = 420
	statusHeight  = 240
	statusMargin  = 10
	statusPadding = 5
)

// StatusCell is one tile of the status grid.
type StatusCell struct {
	Row       int          `json:"row"`
	Col       int          `json:"col"`
	Timestamp string       `json:"timestamp"`
	Value     float64      `json:"value"`
	Valid     bool         `json:"valid"`
	State     models.State `json:"state"`
	Color     string       `json:"color"`
}

// StatusGrid lays out the most recent records of sig, oldest first, row by row.
func StatusGrid(sig models.Signal, records []models.SensorRecord) []StatusCell {
	if len(records) > StatusCells {
		records = records[len(records)-StatusCells:]
	}

	cells := make([]StatusCell, 0, len(records))

	for i := range records {
		v, ok := records[i].Value(sig.Key)
		state := records[i].StateOf(sig.Key)

		cells = append(cells, StatusCell{
			Row:       i / StatusCols,
			Col:       i % StatusCols,
			Timestamp: records[i].Timestamp,
			Value:     v,
			Valid:     ok,
			State:     state,
			Color:     state.Color(),
		})
	}

	return cells
}

// RenderStatus writes the grid as SVG.
func RenderStatus(w io.Writer, sig models.Signal, cells []StatusCell) error {
	inner := statusWidth - 2*statusMargin
	innerH := statusHeight - 2*statusMargin
	boxW := inner/StatusCols - statusPadding
	boxH := innerH/StatusRows - statusPadding

	canvas := svg.New(w)
	canvas.Start(statusWidth, statusHeight,
		fmt.Sprintf(`viewBox="0 0 %d %d"`, statusWidth, statusHeight), `font-family="sans-serif"`)
	canvas.Title(sig.Label + " status")
	canvas.Gtransform(fmt.Sprintf("translate(%d,%d)", statusMargin, statusMargin))

	if len(cells) == 0 {
		canvas.Text(inner/2, innerH/2, "No records", "text-anchor:middle;fill:#888;font-size:12px")
	}

	for _, c := range cells {
		x := c.Col * (boxW + statusPadding)
		y := c.Row * (boxH + statusPadding)

		canvas.Roundrect(x, y, boxW, boxH, 6, 6, "fill:"+c.Color)

		label := "-"
		if c.Valid {
			label = strconv.FormatFloat(c.Value, 'f', 4, 64)
		}

		canvas.Text(x+boxW/2, y+boxH/2+4, label, "text-anchor:middle;fill:#fff;font-size:9px")
	}

	canvas.Gend()
	canvas.End()

	return nil
}
