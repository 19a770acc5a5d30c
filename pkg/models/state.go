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

// Package models pkg/models/state.go
package models

import (
	"encoding/json"
	"strings"
)

// State is the three-level health classification reported per subsystem.
type State string

const (
	StateNormal  State = "NORMAL"
	StateWarning State = "WARNING"
	StateError   State = "ERROR"
	StateUnknown State = "UNKNOWN"
)

const (
	ColorNormal  = "#14ca74"
	ColorWarning = "#f0ad4e"
	ColorError   = "#d9534f"
	ColorUnknown = "#cccccc"
)

// ParseState normalizes a raw state label. DANGER is the legacy spelling of ERROR.
func ParseState(raw string) State {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "NORMAL":
		return StateNormal
	case "WARNING":
		return StateWarning
	case "ERROR", "DANGER":
		return StateError
	default:
		return StateUnknown
	}
}

// Severity orders states for max-reduction. Unknown never raises severity.
func (s State) Severity() int {
	switch ParseState(string(s)) {
	case StateNormal:
		return 1
	case StateWarning:
		return 2
	case StateError:
		return 3
	case StateUnknown:
		return 0
	}

	return 0
}

// Color returns the badge color for a state label.
func (s State) Color() string {
	switch ParseState(string(s)) {
	case StateNormal:
		return ColorNormal
	case StateWarning:
		return ColorWarning
	case StateError:
		return ColorError
	case StateUnknown:
		return ColorUnknown
	}

	return ColorUnknown
}

// Label returns a human readable name for the state.
func (s State) Label() string {
	switch ParseState(string(s)) {
	case StateNormal:
		return "Normal"
	case StateWarning:
		return "Warning"
	case StateError:
		return "Error"
	case StateUnknown:
		return "Unknown"
	}

	return "Unknown"
}

// Alerting reports whether the state should be drawn with emphasis.
func (s State) Alerting() bool {
	return s.Severity() >= StateWarning.Severity()
}

// Overall folds subsystem states into one: ERROR if any is ERROR, else WARNING
// if any is WARNING, else NORMAL.
func Overall(states ...State) State {
	worst := StateNormal

	for _, s := range states {
		if s.Severity() > worst.Severity() {
			worst = ParseState(string(s))
		}
	}

	return worst
}

func (s *State) UnmarshalJSON(b []byte) error {
	var raw *string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	if raw == nil {
		*s = StateUnknown

		return nil
	}

	*s = ParseState(*raw)

	return nil
}
