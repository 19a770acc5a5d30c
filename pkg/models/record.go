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

package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// fieldAliases maps renamed upstream keys onto the canonical schema.
var fieldAliases = map[string]string{
	"U_TOTV": SignalVoltage,
	"PW":     SignalPower,
	"T_3":    SignalTemperature,
}

var stateFields = map[string]string{
	"powerState":       SignalPower,
	"voltageState":     SignalVoltage,
	"temperatureState": SignalTemperature,
}

// SensorRecord is one timestamped measurement row. Values holds every numeric
// field keyed by its canonical name; States holds the per-signal labels.
type SensorRecord struct {
	Timestamp string
	Values    map[string]float64
	States    map[string]State
}

// Value returns the measurement for a key, if present.
func (r *SensorRecord) Value(key string) (float64, bool) {
	v, ok := r.Values[key]

	return v, ok
}

// StateOf returns the label recorded for a signal.
func (r *SensorRecord) StateOf(signalKey string) State {
	if s, ok := r.States[signalKey]; ok {
		return s
	}

	return StateUnknown
}

func (r *SensorRecord) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	r.Values = make(map[string]float64, len(raw))
	r.States = make(map[string]State, len(stateFields))

	var combined State

	for key, msg := range raw {
		switch {
		case key == "timestamp":
			r.Timestamp = decodeTimestamp(msg)
		case key == "powerVoltageState":
			_ = json.Unmarshal(msg, &combined)
		case stateFields[key] != "":
			var s State
			if err := json.Unmarshal(msg, &s); err == nil {
				r.States[stateFields[key]] = s
			}
		default:
			var f *float64
			if err := json.Unmarshal(msg, &f); err != nil || f == nil {
				continue
			}

			if canonical, ok := fieldAliases[key]; ok {
				// the canonical key wins when both are present
				if _, seen := r.Values[canonical]; seen {
					continue
				}

				key = canonical
			}

			r.Values[key] = *f
		}
	}

	if combined != "" {
		for _, key := range []string{SignalPower, SignalVoltage} {
			if _, ok := r.States[key]; !ok {
				r.States[key] = combined
			}
		}
	}

	return nil
}

func (r SensorRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Values)+len(r.States)+1)

	for k, v := range r.Values {
		out[k] = v
	}

	for field, key := range stateFields {
		if s, ok := r.States[key]; ok {
			out[field] = s
		}
	}

	if r.Timestamp != "" {
		out["timestamp"] = r.Timestamp
	}

	return json.Marshal(out)
}

func decodeTimestamp(msg json.RawMessage) string {
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		return s
	}

	var n json.Number
	if err := json.Unmarshal(msg, &n); err == nil {
		return n.String()
	}

	return ""
}

// Reverse returns a copy of records in the opposite order.
func Reverse(records []SensorRecord) []SensorRecord {
	out := make([]SensorRecord, len(records))

	for i := range records {
		out[len(records)-1-i] = records[i]
	}

	return out
}

// PredictionPoint is one forecast step for a signal.
type PredictionPoint struct {
	Value float64 `json:"value"`
	State State   `json:"state"`
}

func (p *PredictionPoint) UnmarshalJSON(b []byte) error {
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*p = PredictionPoint{Value: n, State: StateUnknown}

		return nil
	}

	var aux struct {
		Value      *float64 `json:"value"`
		Prediction *float64 `json:"prediction"`
		State      State    `json:"state"`
	}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	switch {
	case aux.Value != nil:
		p.Value = *aux.Value
	case aux.Prediction != nil:
		p.Value = *aux.Prediction
	default:
		return fmt.Errorf("%w: prediction without value", ErrInvalidRecord)
	}

	p.State = aux.State
	if p.State == "" {
		p.State = StateUnknown
	}

	return nil
}

// ImpactMask holds time steps x features dynamask scores in [0,1].
type ImpactMask struct {
	Value [][]float64 `json:"value"`
}

// Empty reports whether no mask was generated.
func (m *ImpactMask) Empty() bool {
	return m == nil || len(m.Value) == 0
}

// RankEntry is one row of the precomputed error-rate ranking.
type RankEntry struct {
	Pemfc      Device  `json:"pemfc"`
	TotalCount int64   `json:"totalCount"`
	ErrorCount int64   `json:"errorCount"`
	ErrorRate  float64 `json:"errorRate"`
}

// FormatValue renders a measurement the way the dashboard cards show it.
func FormatValue(v float64, unit string) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + unit
}
