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

// Package registry holds the device-registry view: every device of one
// client with its overall state, the status counters and the map markers.
package registry

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

const deleteConcurrency = 4

// Registry owns the latest registry snapshot for one client.
type Registry struct {
	api      pemfcapi.Service
	clientID int64
	log      logger.Logger
	now      func() time.Time

	seq  poller.Sequence
	mu   sync.RWMutex
	snap *Snapshot
}

func New(api pemfcapi.Service, clientID int64, log logger.Logger) *Registry {
	return &Registry{
		api:      api,
		clientID: clientID,
		log:      logger.OrNop(log).With("component", "registry", "client", clientID),
		now:      time.Now,
	}
}

func (r *Registry) ClientID() int64 {
	return r.clientID
}

// Snapshot returns the latest loaded snapshot, or nil before the first
// successful load.
func (r *Registry) Snapshot() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.snap
}

// Load fetches the device list and client name and replaces the snapshot.
// On failure the previous snapshot is kept and the error returned.
func (r *Registry) Load(ctx context.Context) (*Snapshot, error) {
	gen := r.seq.Next()

	devices, err := r.api.ListClientDevices(ctx, r.clientID)
	if err != nil {
		r.log.Errorf("Failed to load devices: %v", err)

		return r.Snapshot(), fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	name, err := r.api.ClientName(ctx, r.clientID)
	if err != nil {
		r.log.Warnf("Failed to load client name: %v", err)

		name = r.currentClientName()
	}

	snap := BuildSnapshot(r.clientID, name, devices, r.now())

	if !r.seq.Commit(gen, func() { r.set(snap) }) {
		r.log.Debugf("Dropping stale registry load %d", gen)

		return r.Snapshot(), nil
	}

	r.log.Infof("Loaded %d devices (%d normal, %d warning, %d error)",
		snap.Counts.Total, snap.Counts.Normal, snap.Counts.Warning, snap.Counts.Error)

	return snap, nil
}

// Reload re-fetches and replaces the whole snapshot.
func (r *Registry) Reload(ctx context.Context) (*Snapshot, error) {
	return r.Load(ctx)
}

// Register validates and submits a new device, then reloads.
func (r *Registry) Register(ctx context.Context, req *models.RegistrationRequest) (*Snapshot, error) {
	if req.ClientID == 0 {
		req.ClientID = r.clientID
	}

	if err := req.Validate(); err != nil {
		return r.Snapshot(), err
	}

	if err := r.api.CreateDevice(ctx, req); err != nil {
		r.log.Errorf("Failed to register device %q: %v", req.ModelName, err)

		return r.Snapshot(), fmt.Errorf("%w: %w", ErrRegisterFailed, err)
	}

	r.log.Infof("Registered device %q", req.ModelName)

	return r.Reload(ctx)
}

// Delete removes one device upstream and, if that succeeded, from the view.
func (r *Registry) Delete(ctx context.Context, id int64) *DeleteReport {
	return r.deleteIDs(ctx, []int64{id})
}

// DeleteAll deletes every device in the current snapshot. Partial failure
// is tolerated; only the devices deleted upstream leave the view.
func (r *Registry) DeleteAll(ctx context.Context) *DeleteReport {
	snap := r.Snapshot()
	if snap == nil {
		return &DeleteReport{}
	}

	ids := make([]int64, 0, len(snap.Rows))
	for i := range snap.Rows {
		ids = append(ids, snap.Rows[i].Device.ID)
	}

	return r.deleteIDs(ctx, ids)
}

func (r *Registry) deleteIDs(ctx context.Context, ids []int64) *DeleteReport {
	results := make([]error, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(deleteConcurrency)

	for i, id := range ids {
		g.Go(func() error {
			results[i] = r.api.DeleteDevice(gctx, id)

			// failures are collected, not propagated, so siblings keep going
			return nil
		})
	}

	_ = g.Wait()

	report := &DeleteReport{Requested: len(ids)}
	deleted := make(map[int64]struct{}, len(ids))

	for i, err := range results {
		if err != nil {
			r.log.Errorf("Failed to delete device %d: %v", ids[i], err)
			report.Failed = append(report.Failed, DeleteFailure{ID: ids[i], Reason: err.Error()})

			continue
		}

		report.Succeeded = append(report.Succeeded, ids[i])
		deleted[ids[i]] = struct{}{}
	}

	if len(deleted) > 0 {
		gen := r.seq.Next()
		r.seq.Commit(gen, func() {
			r.mu.Lock()
			defer r.mu.Unlock()

			if r.snap != nil {
				r.snap = r.snap.without(deleted, r.now())
			}
		})
	}

	r.log.Infof("Deleted %d of %d devices", len(report.Succeeded), report.Requested)

	return report
}

func (r *Registry) set(snap *Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snap = snap
}

func (r *Registry) currentClientName() string {
	if snap := r.Snapshot(); snap != nil {
		return snap.ClientName
	}

	return ""
}
