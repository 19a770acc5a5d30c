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

import "fmt"

const (
	SignalPower       = "pw"
	SignalVoltage     = "u_totV"
	SignalTemperature = "t_3"
)

const (
	GroupVoltagePower = "voltagepower"
	GroupTemperature  = "temperature"
)

// Signal describes one plotted measurement and where its related data lives
// on the upstream API.
type Signal struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Unit       string `json:"unit"`
	StateField string `json:"state_field"`
	MaskGroup  string `json:"mask_group"`
	Path       string `json:"path"` // rank and prediction path segment
	Color      string `json:"color"`
}

// Signals lists the plotted signals in display order.
var Signals = []Signal{
	{
		Key:        SignalPower,
		Label:      "Power",
		Unit:       "W",
		StateField: "powerState",
		MaskGroup:  GroupVoltagePower,
		Path:       "power",
		Color:      "#66c2a5",
	},
	{
		Key:        SignalVoltage,
		Label:      "Voltage",
		Unit:       "V",
		StateField: "voltageState",
		MaskGroup:  GroupVoltagePower,
		Path:       "voltage",
		Color:      "#fc8d62",
	},
	{
		Key:        SignalTemperature,
		Label:      "Temperature",
		Unit:       "°C",
		StateField: "temperatureState",
		MaskGroup:  GroupTemperature,
		Path:       "temperature",
		Color:      "#8da0cb",
	},
}

// FeatureGroups maps a mask group to the model input features it tracks, in
// the column order of the mask array.
var FeatureGroups = map[string][]string{
	GroupVoltagePower: {
		"iA", "iA_diff", "P_H2_supply", "P_H2_inlet",
		"P_Air_supply", "P_Air_inlet", "m_Air_write", "m_H2_write", "T_Stack_inlet",
	},
	GroupTemperature: {
		"P_H2_inlet", "P_Air_inlet", "T_Heater", "T_Stack_inlet",
	},
}

// LookupSignal resolves a signal by key (pw) or path name (power).
func LookupSignal(name string) (Signal, error) {
	for _, sig := range Signals {
		if sig.Key == name || sig.Path == name {
			return sig, nil
		}
	}

	return Signal{}, fmt.Errorf("%w: %q", ErrUnknownSignal, name)
}

// Features returns the tracked feature names for the signal's mask group.
func (s Signal) Features() []string {
	return FeatureGroups[s.MaskGroup]
}
