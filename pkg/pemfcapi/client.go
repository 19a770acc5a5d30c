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

// Package pemfcapi is the HTTP client for the remote PEMFC API.
package pemfcapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/carverauto/pemfcradar/pkg/logger"
	"github.com/carverauto/pemfcradar/pkg/models"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 10 * time.Second
	maxErrorBodySize = 512
)

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	RateBurst int
	Logger    logger.Logger
	// HTTPClient overrides the default client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client talks to the PEMFC API. It is safe for concurrent use.
type Client struct {
	base       *url.URL
	client     *http.Client
	limiter    *rate.Limiter
	log        logger.Logger
	bufferPool sync.Pool
}

var _ Service = (*Client)(nil)

// NewClient validates the base URL and returns a ready client.
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", errInvalidBaseURL, opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}

		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}

		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		base:    base,
		client:  httpClient,
		limiter: limiter,
		log:     logger.OrNop(opts.Logger).With("component", "pemfcapi"),
		bufferPool: sync.Pool{
			New: func() interface{} {
				return new(bytes.Buffer)
			},
		},
	}, nil
}

func (c *Client) ListClientDevices(ctx context.Context, clientID int64) ([]models.Device, error) {
	var devices []models.Device

	if err := c.getJSON(ctx, &devices, "api", "client", id(clientID), "pemfc", "all"); err != nil {
		return nil, err
	}

	return devices, nil
}

// ClientName accepts a bare JSON string, an object with a name field, or
// plain text.
func (c *Client) ClientName(ctx context.Context, clientID int64) (string, error) {
	body, err := c.getBytes(ctx, "api", "client", id(clientID), "name")
	if err != nil {
		return "", err
	}

	trimmed := bytes.TrimSpace(body)

	var name string
	if err := json.Unmarshal(trimmed, &name); err == nil {
		return name, nil
	}

	var obj struct {
		Name string `json:"name"`
	}

	if err := json.Unmarshal(trimmed, &obj); err == nil {
		return obj.Name, nil
	}

	return string(trimmed), nil
}

func (c *Client) GetDevice(ctx context.Context, deviceID int64) (*models.Device, error) {
	var device models.Device

	if err := c.getJSON(ctx, &device, "api", "pemfc", id(deviceID)); err != nil {
		return nil, err
	}

	return &device, nil
}

func (c *Client) AllRecords(ctx context.Context, deviceID int64) ([]models.SensorRecord, error) {
	var records []models.SensorRecord

	if err := c.getJSON(ctx, &records, "api", "pemfc", id(deviceID), "record", "all"); err != nil {
		return nil, err
	}

	return records, nil
}

// RecentRecords reverses the upstream most-recent-first order.
func (c *Client) RecentRecords(ctx context.Context, deviceID int64) ([]models.SensorRecord, error) {
	var records []models.SensorRecord

	if err := c.getJSON(ctx, &records, "api", "pemfc", id(deviceID), "record", "recent600"); err != nil {
		return nil, err
	}

	return models.Reverse(records), nil
}

func (c *Client) Predictions(
	ctx context.Context, deviceID int64, signalPath string, window int) ([]models.PredictionPoint, error) {
	if signalPath == "" || window <= 0 {
		return nil, fmt.Errorf("%w: signal %q window %d", ErrInvalidArgument, signalPath, window)
	}

	var points []models.PredictionPoint

	err := c.getJSON(ctx, &points, "api", "pemfc", id(deviceID), "predictions", signalPath, strconv.Itoa(window))
	if err != nil {
		return nil, err
	}

	return points, nil
}

func (c *Client) ImpactMask(ctx context.Context, deviceID int64, group string) (*models.ImpactMask, error) {
	body, err := c.getBytes(ctx, "api", "pemfc", id(deviceID), "dynamask", group, "recent")

	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		return &models.ImpactMask{}, nil
	default:
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return &models.ImpactMask{}, nil
	}

	var mask models.ImpactMask
	if err := json.Unmarshal(trimmed, &mask); err != nil {
		return nil, fmt.Errorf("%w: dynamask: %w", errMalformedBody, err)
	}

	return &mask, nil
}

func (c *Client) Rank(ctx context.Context, group string) ([]models.RankEntry, error) {
	var entries []models.RankEntry

	if err := c.getJSON(ctx, &entries, "api", "rank", group); err != nil {
		return nil, err
	}

	return entries, nil
}

func (c *Client) CreateDevice(ctx context.Context, reg *models.RegistrationRequest) error {
	if err := reg.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("failed to marshal registration: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, bytes.NewReader(payload), "api", "pemfc")
	if err != nil {
		return err
	}

	c.closeBody(resp.Body)

	return nil
}

func (c *Client) DeleteDevice(ctx context.Context, deviceID int64) error {
	resp, err := c.do(ctx, http.MethodDelete, nil, "api", "pemfc", id(deviceID), "delete")
	if err != nil {
		return err
	}

	c.closeBody(resp.Body)

	return nil
}

func (c *Client) ExportCSV(ctx context.Context, deviceID int64) (io.ReadCloser, error) {
	resp, err := c.do(ctx, http.MethodGet, nil, "api", "pemfc", id(deviceID), "csv")
	if err != nil {
		return nil, err
	}

	return resp.Body, nil
}

func (c *Client) getJSON(ctx context.Context, dst interface{}, segments ...string) error {
	body, err := c.getBytes(ctx, segments...)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %s: %w", errMalformedBody, strings.Join(segments, "/"), err)
	}

	return nil
}

func (c *Client) getBytes(ctx context.Context, segments ...string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, nil, segments...)
	if err != nil {
		return nil, err
	}
	defer c.closeBody(resp.Body)

	buf := c.bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer c.bufferPool.Put(buf)

	if _, err := io.Copy(buf, resp.Body); err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", errRequestFailed, err)
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out, nil
}

// do returns the response only for 2xx codes; the caller owns the body.
func (c *Client) do(ctx context.Context, method string, body io.Reader, segments ...string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", errRateLimited, err)
	}

	endpoint := c.base.JoinPath(segments...).String()

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()

	resp, err := c.client.Do(req) //nolint:bodyclose // closed by caller
	if err != nil {
		c.log.Errorf("%s %s failed: %v", method, endpoint, err)

		return nil, fmt.Errorf("%w: %s %s: %w", errRequestFailed, method, endpoint, err)
	}

	c.log.Debugf("%s %s -> %d in %v", method, endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusNoContent && method == http.MethodGet {
		c.closeBody(resp.Body)

		return nil, fmt.Errorf("%w: %s", ErrNotFound, endpoint)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer c.closeBody(resp.Body)

		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))

		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, endpoint)
		}

		return nil, fmt.Errorf("%w: %s %s returned %d: %s",
			errUnexpectedCode, method, endpoint, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	return resp, nil
}

func (c *Client) closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		c.log.Warnf("failed to close response body: %v", err)
	}
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}
