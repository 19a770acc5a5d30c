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

package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		// parse numeric as nanoseconds
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

const (
	defaultListenAddr     = ":8090"
	defaultAPIBaseURL     = "http://localhost:8080"
	defaultClientID       = 1
	defaultPollInterval   = 5 * time.Second
	defaultRequestTimeout = 10 * time.Second
	defaultRecentRecords  = 600
	defaultForecastWindow = 20
	defaultMaxZoom        = 10
	defaultRateLimit      = 20
	defaultRateBurst      = 40
	defaultIdleTimeout    = 30 * time.Second
	defaultLogLevel       = "info"
	minPollInterval       = time.Second
)

// DashboardConfig represents the configuration for the dashboard service.
type DashboardConfig struct {
	ListenAddr           string   `json:"listen_addr"`            // e.g., :8090
	APIBaseURL           string   `json:"api_base_url"`           // upstream PEMFC API
	ClientID             int64    `json:"client_id"`              // registry owner
	PollInterval         Duration `json:"poll_interval"`          // live widget refresh
	RequestTimeout       Duration `json:"request_timeout"`        // per upstream call
	RecentRecords        int      `json:"recent_records"`         // history points per chart
	ForecastWindow       int      `json:"forecast_window"`        // prediction points per chart
	MaxZoom              float64  `json:"max_zoom"`               // horizontal zoom ceiling
	DisableZoom          bool     `json:"disable_zoom"`           // pin charts to the full extent
	RateLimit            float64  `json:"rate_limit"`             // upstream requests per second
	RateBurst            int      `json:"rate_burst"`             // upstream burst
	DashboardIdleTimeout Duration `json:"dashboard_idle_timeout"` // poller grace after last viewer
	LogLevel             string   `json:"log_level"`
}

// Default returns a configuration with every field populated.
func Default() *DashboardConfig {
	return &DashboardConfig{
		ListenAddr:           defaultListenAddr,
		APIBaseURL:           defaultAPIBaseURL,
		ClientID:             defaultClientID,
		PollInterval:         Duration(defaultPollInterval),
		RequestTimeout:       Duration(defaultRequestTimeout),
		RecentRecords:        defaultRecentRecords,
		ForecastWindow:       defaultForecastWindow,
		MaxZoom:              defaultMaxZoom,
		RateLimit:            defaultRateLimit,
		RateBurst:            defaultRateBurst,
		DashboardIdleTimeout: Duration(defaultIdleTimeout),
		LogLevel:             defaultLogLevel,
	}
}

// Validate implements config.Validator. Zero values fall back to defaults.
func (c *DashboardConfig) Validate() error {
	def := Default()

	if c.ListenAddr == "" {
		c.ListenAddr = def.ListenAddr
	}

	if c.APIBaseURL == "" {
		return fmt.Errorf("%w: api_base_url is required", errInvalidConfig)
	}

	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: api_base_url %q is not an absolute URL", errInvalidConfig, c.APIBaseURL)
	}

	if c.ClientID <= 0 {
		return fmt.Errorf("%w: client_id must be positive", errInvalidConfig)
	}

	if c.PollInterval == 0 {
		c.PollInterval = def.PollInterval
	}

	if time.Duration(c.PollInterval) < minPollInterval {
		return fmt.Errorf("%w: poll_interval should be >= %v", errInvalidConfig, minPollInterval)
	}

	if c.RequestTimeout == 0 {
		c.RequestTimeout = def.RequestTimeout
	}

	if c.RecentRecords <= 0 {
		c.RecentRecords = def.RecentRecords
	}

	if c.ForecastWindow <= 0 {
		c.ForecastWindow = def.ForecastWindow
	}

	if c.MaxZoom == 0 {
		c.MaxZoom = def.MaxZoom
	}

	if c.MaxZoom < 1 {
		return fmt.Errorf("%w: max_zoom must be >= 1", errInvalidConfig)
	}

	if c.RateLimit <= 0 {
		c.RateLimit = def.RateLimit
	}

	if c.RateBurst <= 0 {
		c.RateBurst = def.RateBurst
	}

	if c.DashboardIdleTimeout == 0 {
		c.DashboardIdleTimeout = def.DashboardIdleTimeout
	}

	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}

	return nil
}
