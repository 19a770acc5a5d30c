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

// Package dashboard polls the latest state and values of one device and
// derives the badge colors shown on its dashboard page.
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/carverauto/pemfcradar/pkg/logger"
	"github.com/carverauto/pemfcradar/pkg/models"
	"github.com/carverauto/pemfcradar/pkg/pemfcapi"
	"github.com/carverauto/pemfcradar/pkg/poller"
	"golang.org/x/sync/errgroup"
)

// Badge is one colored status indicator.
type Badge struct {
	Key   string       `json:"key"`
	Label string       `json:"label"`
	State models.State `json:"state"`
	Color string       `json:"color"`
	Value string       `json:"value,omitempty"`
}

// Snapshot is the dashboard state produced by one poll tick.
type Snapshot struct {
	DeviceID  int64                `json:"deviceId"`
	Device    models.Device        `json:"device"`
	Latest    *models.SensorRecord `json:"latest,omitempty"`
	Badges    []Badge              `json:"badges"`
	Overall   Badge                `json:"overall"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// UpdateFunc receives every committed snapshot.
type UpdateFunc func(snap *Snapshot)

// View holds the latest dashboard snapshot for one device.
type View struct {
	id       int64
	api      pemfcapi.Service
	log      logger.Logger
	now      func() time.Time
	onUpdate UpdateFunc

	seq  poller.Sequence
	mu   sync.RWMutex
	snap *Snapshot
	done bool
}

func NewView(id int64, api pemfcapi.Service, log logger.Logger, onUpdate UpdateFunc) *View {
	return &View{
		id:       id,
		api:      api,
		log:      logger.OrNop(log).With("component", "dashboard", "device", id),
		now:      time.Now,
		onUpdate: onUpdate,
	}
}

func (v *View) ID() int64 {
	return v.id
}

// Snapshot returns the latest snapshot, or nil before the first success.
func (v *View) Snapshot() *Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.snap
}

// Refresh fetches device state and records in parallel and replaces the
// snapshot only when both succeed and no newer refresh has started.
func (v *View) Refresh(ctx context.Context) error {
	gen := v.seq.Next()

	var (
		device  *models.Device
		records []models.SensorRecord
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		d, err := v.api.GetDevice(gctx, v.id)
		if err != nil {
			return fmt.Errorf("device: %w", err)
		}

		device = d

		return nil
	})

	g.Go(func() error {
		r, err := v.api.AllRecords(gctx, v.id)
		if err != nil {
			return fmt.Errorf("records: %w", err)
		}

		records = r

		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: %w", errRefreshFailed, err)
	}

	snap := BuildSnapshot(device, records, v.now())

	committed := v.seq.Commit(gen, func() {
		v.mu.Lock()
		defer v.mu.Unlock()

		if !v.done {
			v.snap = snap
		}
	})

	if !committed || v.isDone() {
		v.log.Debugf("Dropping stale dashboard refresh %d", gen)

		return nil
	}

	if v.onUpdate != nil {
		v.onUpdate(snap)
	}

	return nil
}

// discard invalidates in-flight refreshes. Responses after this are dropped.
func (v *View) discard() {
	v.seq.Next()

	v.mu.Lock()
	v.done = true
	v.mu.Unlock()
}

func (v *View) isDone() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.done
}

// BuildSnapshot derives badges from the device's subsystem states and the
// last record of the batch.
func BuildSnapshot(device *models.Device, records []models.SensorRecord, now time.Time) *Snapshot {
	snap := &Snapshot{
		DeviceID:  device.ID,
		Device:    *device,
		Badges:    make([]Badge, 0, len(models.Signals)),
		UpdatedAt: now,
	}

	if len(records) > 0 {
		latest := records[len(records)-1]
		snap.Latest = &latest
	}

	for _, sig := range models.Signals {
		state := device.SubsystemState(sig)

		badge := Badge{
			Key:   sig.Key,
			Label: sig.Label,
			State: state,
			Color: state.Color(),
		}

		if snap.Latest != nil {
			if val, ok := snap.Latest.Value(sig.Key); ok {
				badge.Value = models.FormatValue(val, sig.Unit)
			}
		}

		snap.Badges = append(snap.Badges, badge)
	}

	overall := device.State()
	snap.Overall = Badge{
		Key:   "overall",
		Label: "Overall",
		State: overall,
		Color: overall.Color(),
	}

	return snap
}
