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

// Package chart builds and renders the time-series trend chart: recent
// history, an optional dashed forecast, per-sample state bands, impact
// feature overlays, a crosshair and horizontal zoom.
package chart

import (
	"math"

	"github.com/carverauto/pemfcradar/pkg/models"
)

// Point is one sample in the combined history+forecast index space.
type Point struct {
	Index int          `json:"index"`
	Value float64      `json:"value"`
	Valid bool         `json:"valid"`
	State models.State `json:"state"`
}

// Series is the chart geometry for one signal. History occupies indices
// 0..N-1 and the forecast N..N+M-1. The forecast line is drawn from the last
// historical point so the two lines connect.
type Series struct {
	Signal     models.Signal `json:"signal"`
	History    []Point       `json:"history"`
	Forecast   []Point       `json:"forecast"`
	Timestamps []string      `json:"timestamps"`
}

// Build lays out history records and forecast points for sig.
func Build(sig models.Signal, records []models.SensorRecord, predictions []models.PredictionPoint) *Series {
	s := &Series{
		Signal:     sig,
		History:    make([]Point, len(records)),
		Forecast:   make([]Point, len(predictions)),
		Timestamps: make([]string, len(records)),
	}

	for i := range records {
		v, ok := records[i].Value(sig.Key)
		s.History[i] = Point{
			Index: i,
			Value: v,
			Valid: ok && !math.IsNaN(v) && !math.IsInf(v, 0),
			State: records[i].StateOf(sig.Key),
		}
		s.Timestamps[i] = records[i].Timestamp
	}

	n := len(records)

	for i, p := range predictions {
		s.Forecast[i] = Point{
			Index: n + i,
			Value: p.Value,
			Valid: !math.IsNaN(p.Value) && !math.IsInf(p.Value, 0),
			State: p.State,
		}
	}

	return s
}

// Len is the size of the combined index space.
func (s *Series) Len() int {
	return len(s.History) + len(s.Forecast)
}

// LastHistoryIndex is the "now" index, or -1 with no history.
func (s *Series) LastHistoryIndex() int {
	return len(s.History) - 1
}

// At returns the point at a combined index.
func (s *Series) At(i int) (Point, bool) {
	switch {
	case i < 0:
		return Point{}, false
	case i < len(s.History):
		return s.History[i], true
	case i < s.Len():
		return s.Forecast[i-len(s.History)], true
	}

	return Point{}, false
}

// ForecastLine is the dashed polyline: the last historical point followed
// by the forecast points.
func (s *Series) ForecastLine() []Point {
	if len(s.Forecast) == 0 {
		return nil
	}

	line := make([]Point, 0, len(s.Forecast)+1)

	if n := len(s.History); n > 0 {
		line = append(line, s.History[n-1])
	}

	return append(line, s.Forecast...)
}

// Extent returns the min and max of every valid value.
func (s *Series) Extent() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)

	visit := func(points []Point) {
		for _, p := range points {
			if !p.Valid {
				continue
			}

			lo = math.Min(lo, p.Value)
			hi = math.Max(hi, p.Value)
		}
	}

	visit(s.History)
	visit(s.Forecast)

	return lo, hi, lo <= hi
}

// Band is one state-colored vertical strip behind a sample.
type Band struct {
	Index   int          `json:"index"`
	State   models.State `json:"state"`
	Color   string       `json:"color"`
	Opacity float64      `json:"opacity"`
}

const (
	bandOpacityCalm  = 0.15
	bandOpacityAlert = 0.35
)

// Bands returns one band per sample, history and forecast alike.
func (s *Series) Bands() []Band {
	bands := make([]Band, 0, s.Len())

	add := func(points []Point) {
		for _, p := range points {
			opacity := bandOpacityCalm
			if p.State.Alerting() {
				opacity = bandOpacityAlert
			}

			bands = append(bands, Band{Index: p.Index, State: p.State, Color: p.State.Color(), Opacity: opacity})
		}
	}

	add(s.History)
	add(s.Forecast)

	return bands
}
