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
	"math"
	"strconv"
	"strings"
	"time"
)

// Coordinate is a latitude or longitude that may arrive as a number, a numeric
// string, null, or garbage.
type Coordinate struct {
	Value float64
	Valid bool
}

// NewCoordinate returns a valid coordinate when v is finite.
func NewCoordinate(v float64) Coordinate {
	return Coordinate{Value: v, Valid: !math.IsNaN(v) && !math.IsInf(v, 0)}
}

func (c *Coordinate) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*c = NewCoordinate(value)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			*c = Coordinate{}

			return nil
		}

		*c = NewCoordinate(f)
	default:
		*c = Coordinate{}
	}

	return nil
}

func (c Coordinate) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}

	return json.Marshal(c.Value)
}

// Device is one registered PEMFC instance.
type Device struct {
	ID               int64      `json:"id"`
	ClientID         int64      `json:"clientId"`
	ModelName        string     `json:"modelName"`
	ManufacturedDate string     `json:"manufacturedDate"`
	Lat              Coordinate `json:"lat"`
	Lng              Coordinate `json:"lng"`
	PowerState       State      `json:"powerState"`
	VoltageState     State      `json:"voltageState"`
	TemperatureState State      `json:"temperatureState"`
}

type deviceAlias Device

// State derives the overall device state from its three subsystems.
func (d *Device) State() State {
	return Overall(d.PowerState, d.VoltageState, d.TemperatureState)
}

// HasLocation reports whether the device can be placed on the map.
func (d *Device) HasLocation() bool {
	return d.Lat.Valid && d.Lng.Valid
}

// SubsystemState returns the state field a signal is classified by.
func (d *Device) SubsystemState(sig Signal) State {
	switch sig.Key {
	case SignalPower:
		return d.PowerState
	case SignalVoltage:
		return d.VoltageState
	case SignalTemperature:
		return d.TemperatureState
	}

	return StateUnknown
}

func (d *Device) UnmarshalJSON(b []byte) error {
	aux := &struct {
		*deviceAlias
		PowerVoltageState State `json:"powerVoltageState"`
	}{
		deviceAlias: (*deviceAlias)(d),
	}

	if err := json.Unmarshal(b, aux); err != nil {
		return err
	}

	// older payloads carried one combined power/voltage label
	if aux.PowerVoltageState != "" {
		if d.PowerState == "" {
			d.PowerState = aux.PowerVoltageState
		}

		if d.VoltageState == "" {
			d.VoltageState = aux.PowerVoltageState
		}
	}

	return nil
}

func (d Device) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		deviceAlias
		State State `json:"state"`
	}{
		deviceAlias: deviceAlias(d),
		State:       d.State(),
	})
}

// RegistrationRequest is the payload for registering a new device.
type RegistrationRequest struct {
	ModelName        string  `json:"modelName"`
	ClientID         int64   `json:"clientId"`
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	ManufacturedDate string  `json:"manufacturedDate"`
}

// Validate checks the registration form before it is sent upstream.
func (r *RegistrationRequest) Validate() error {
	if strings.TrimSpace(r.ModelName) == "" {
		return fmt.Errorf("%w: model name is required", ErrInvalidRegistration)
	}

	if r.ClientID <= 0 {
		return fmt.Errorf("%w: client id must be positive", ErrInvalidRegistration)
	}

	if !NewCoordinate(r.Lat).Valid || r.Lat < -90 || r.Lat > 90 {
		return fmt.Errorf("%w: latitude out of range", ErrInvalidRegistration)
	}

	if !NewCoordinate(r.Lng).Valid || r.Lng < -180 || r.Lng > 180 {
		return fmt.Errorf("%w: longitude out of range", ErrInvalidRegistration)
	}

	if _, err := time.Parse(time.DateOnly, r.ManufacturedDate); err != nil {
		return fmt.Errorf("%w: manufactured date must be YYYY-MM-DD", ErrInvalidRegistration)
	}

	return nil
}
