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

// Package rank orders devices by error rate for the registry page.
package rank

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/carverauto/pemfcradar/pkg/logger"
	"github.com/carverauto/pemfcradar/pkg/models"
	"github.com/carverauto/pemfcradar/pkg/pemfcapi"
	"github.com/carverauto/pemfcradar/pkg/poller"
)

// TopN is the number of ranked devices shown.
const TopN = 3

// Row is one ranked line.
type Row struct {
	Rank       int          `json:"rank"`
	DeviceID   int64        `json:"deviceId"`
	ModelName  string       `json:"modelName"`
	State      models.State `json:"state"`
	StateLabel string       `json:"stateLabel"`
	Color      string       `json:"color"`
	ErrorCount int64        `json:"errorCount"`
	TotalCount int64        `json:"totalCount"`
	ErrorRate  float64      `json:"errorRate"`
	Percent    string       `json:"percent"`
}

// Board is the ranking for one group.
type Board struct {
	Group     string    `json:"group"`
	Rows      []Row     `json:"rows"`
	Demo      bool      `json:"demo"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Group maps a signal key or path to its rank endpoint. Unknown names fall
// back to voltage.
func Group(name string) string {
	sig, err := models.LookupSignal(name)
	if err != nil {
		return "voltage"
	}

	return sig.Path
}

// Top sorts a copy of entries by error rate, highest first, keeping response
// order for ties, and returns at most n.
func Top(entries []models.RankEntry, n int) []models.RankEntry {
	sorted := make([]models.RankEntry, len(entries))
	copy(sorted, entries)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ErrorRate > sorted[j].ErrorRate
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}

	return sorted
}

// BuildBoard ranks entries for group. An empty list is replaced by the
// illustrative dataset when one exists for the group.
func BuildBoard(group string, entries []models.RankEntry, now time.Time) *Board {
	board := &Board{Group: group, UpdatedAt: now}

	if len(entries) == 0 {
		if demo := DemoEntries(group); len(demo) > 0 {
			entries = demo
			board.Demo = true
		}
	}

	top := Top(entries, TopN)
	board.Rows = make([]Row, 0, len(top))

	for i := range top {
		e := top[i]
		state := groupState(group, &e.Pemfc)

		board.Rows = append(board.Rows, Row{
			Rank:       i + 1,
			DeviceID:   e.Pemfc.ID,
			ModelName:  e.Pemfc.ModelName,
			State:      state,
			StateLabel: state.Label(),
			Color:      state.Color(),
			ErrorCount: e.ErrorCount,
			TotalCount: e.TotalCount,
			ErrorRate:  e.ErrorRate,
			Percent:    strconv.FormatFloat(e.ErrorRate*100, 'f', 1, 64) + "%",
		})
	}

	return board
}

func groupState(group string, d *models.Device) models.State {
	sig, err := models.LookupSignal(group)
	if err != nil {
		return d.State()
	}

	return d.SubsystemState(sig)
}

// Service loads rankings and keeps the latest good board per group.
type Service struct {
	api pemfcapi.Service
	log logger.Logger
	seq *poller.Sequencer
	now func() time.Time

	mu     sync.RWMutex
	boards map[string]*Board
}

func NewService(api pemfcapi.Service, log logger.Logger) *Service {
	return &Service{
		api:    api,
		log:    logger.OrNop(log).With("component", "rank"),
		seq:    poller.NewSequencer(),
		now:    time.Now,
		boards: make(map[string]*Board),
	}
}

// Load fetches and ranks the list for the signal's group. On failure the
// previous board, if any, is returned with the error.
func (s *Service) Load(ctx context.Context, signal string) (*Board, error) {
	group := Group(signal)
	gen := s.seq.Next(group)

	entries, err := s.api.Rank(ctx, group)
	if err != nil {
		s.log.Errorf("Rank %s failed: %v", group, err)

		return s.latest(group), fmt.Errorf("%w: %w", errLoadFailed, err)
	}

	board := BuildBoard(group, entries, s.now())

	if !s.seq.Commit(group, gen, func() {
		s.mu.Lock()
		s.boards[group] = board
		s.mu.Unlock()
	}) {
		if latest := s.latest(group); latest != nil {
			return latest, nil
		}
	}

	return board, nil
}

func (s *Service) latest(group string) *Board {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.boards[group]
}
