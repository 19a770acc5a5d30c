package heatmap

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/carverauto/pemfcradar/pkg/logger"
	"github.com/carverauto/pemfcradar/pkg/models"
	"github.com/carverauto/pemfcradar/pkg/pemfcapi"
	"github.com/carverauto/pemfcradar/pkg/poller"
)

// Service fetches impact masks and keeps the latest good grid per widget.
type Service struct {
	api pemfcapi.Service
	log logger.Logger
	seq *poller.Sequencer

	mu    sync.RWMutex
	grids map[string]*Grid
}

func NewService(api pemfcapi.Service, log logger.Logger) *Service {
	return &Service{
		api:   api,
		log:   logger.OrNop(log).With("component", "heatmap"),
		seq:   poller.NewSequencer(),
		grids: make(map[string]*Grid),
	}
}

// Load fetches the mask for the signal's group. An absent mask is a valid,
// empty grid. On failure the previous grid, if any, is returned with the error.
func (s *Service) Load(ctx context.Context, deviceID int64, sig models.Signal) (*Grid, error) {
	key := gridKey(deviceID, sig)
	gen := s.seq.Next(key)

	mask, err := s.api.ImpactMask(ctx, deviceID, sig.MaskGroup)
	if err != nil {
		s.log.Errorf("Impact mask %s failed: %v", key, err)

		return s.latest(key), fmt.Errorf("%w: %w", errLoadFailed, err)
	}

	grid := Build(mask, sig.Features())

	if !s.seq.Commit(key, gen, func() {
		s.mu.Lock()
		s.grids[key] = grid
		s.mu.Unlock()
	}) {
		if latest := s.latest(key); latest != nil {
			return latest, nil
		}
	}

	return grid, nil
}

// Grid returns the latest good grid for the signal's group without going
// upstream.
func (s *Service) Grid(deviceID int64, sig models.Signal) (*Grid, bool) {
	g := s.latest(gridKey(deviceID, sig))

	return g, g != nil
}

func gridKey(deviceID int64, sig models.Signal) string {
	return strconv.FormatInt(deviceID, 10) + "/" + sig.MaskGroup
}

func (s *Service) latest(key string) *Grid {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.grids[key]
}
