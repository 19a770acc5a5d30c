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

// Package config pkg/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	errInvalidDuration = fmt.Errorf("invalid duration")
	errInvalidConfig   = errors.New("invalid config")
	errInvalidEnv      = errors.New("invalid environment override")
)

const (
	EnvAPIBaseURL = "PEMFC_API_BASE"
	EnvListenAddr = "PEMFC_LISTEN_ADDR"
	EnvClientID   = "PEMFC_CLIENT_ID"
	EnvLogLevel   = "PEMFC_LOG_LEVEL"
)

// LoadFile is a generic helper that loads a JSON file from path into
// the struct pointed to by dst.
func LoadFile(path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file '%s': %w", path, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to unmarshal JSON from '%s': %w", path, err)
	}

	return nil
}

// ValidateConfig validates a configuration if it implements Validator.
func ValidateConfig(cfg interface{}) error {
	if v, ok := cfg.(Validator); ok {
		return v.Validate()
	}

	return nil
}

// Load builds the dashboard configuration: defaults, then the JSON file at
// path (skipped when path is empty or missing), then .env and environment
// overrides, then validation.
func Load(path string) (*DashboardConfig, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := LoadFile(path, cfg); err != nil {
				return nil, err
			}
		}
	}

	// .env is optional
	_ = godotenv.Load()

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnv(cfg *DashboardConfig) error {
	if v := os.Getenv(EnvAPIBaseURL); v != "" {
		cfg.APIBaseURL = v
	}

	if v := os.Getenv(EnvListenAddr); v != "" {
		cfg.ListenAddr = v
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}

	if v := os.Getenv(EnvClientID); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", errInvalidEnv, EnvClientID, v)
		}

		cfg.ClientID = id
	}

	return nil
}
