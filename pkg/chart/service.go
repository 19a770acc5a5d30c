package chart

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

// Options selects the chart features for one refresh.
type Options struct {
	Forecast bool
	Window   int
}

// Frame is the latest good chart for a (device, signal) pair.
type Frame struct {
	DeviceID  int64     `json:"deviceId"`
	Series    *Series   `json:"series"`
	Records   int       `json:"records"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ServiceOptions configures a Service.
type ServiceOptions struct {
	RecentRecords  int
	ForecastWindow int
	Logger         logger.Logger
}

// Service refreshes chart frames. Each widget key holds only its latest
// good frame; a failed refresh leaves it in place.
type Service struct {
	api  pemfcapi.Service
	opts ServiceOptions
	log  logger.Logger
	seq  *poller.Sequencer
	now  func() time.Time

	mu     sync.RWMutex
	frames map[string]*Frame
}

func NewService(api pemfcapi.Service, opts ServiceOptions) *Service {
	return &Service{
		api:    api,
		opts:   opts,
		log:    logger.OrNop(opts.Logger).With("component", "chart"),
		seq:    poller.NewSequencer(),
		now:    time.Now,
		frames: make(map[string]*Frame),
	}
}

// Key identifies a widget.
func Key(deviceID int64, sig models.Signal, forecast bool) string {
	return fmt.Sprintf("%d/%s/%t", deviceID, sig.Key, forecast)
}

// Frame returns the latest good frame for a widget, if any.
func (s *Service) Frame(deviceID int64, sig models.Signal, forecast bool) (*Frame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.frames[Key(deviceID, sig, forecast)]

	return f, ok
}

// Refresh fetches recent records and, when enabled, the forecast in
// parallel. The frame is replaced only when both succeed and no newer
// refresh for the same widget has been issued. On failure the last good
// frame is returned alongside the error.
func (s *Service) Refresh(ctx context.Context, deviceID int64, sig models.Signal, opts Options) (*Frame, error) {
	key := Key(deviceID, sig, opts.Forecast)
	gen := s.seq.Next(key)

	window := opts.Window
	if window <= 0 {
		window = s.opts.ForecastWindow
	}

	var (
		records     []models.SensorRecord
		predictions []models.PredictionPoint
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r, err := s.api.RecentRecords(gctx, deviceID)
		if err != nil {
			return fmt.Errorf("records: %w", err)
		}

		records = r

		return nil
	})

	if opts.Forecast {
		g.Go(func() error {
			p, err := s.api.Predictions(gctx, deviceID, sig.Path, window)
			if err != nil {
				return fmt.Errorf("predictions: %w", err)
			}

			predictions = p

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.log.Errorf("Chart refresh %s failed: %v", key, err)

		prev, _ := s.Frame(deviceID, sig, opts.Forecast)

		return prev, fmt.Errorf("%w: %w", errRefreshFailed, err)
	}

	if limit := s.opts.RecentRecords; limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}

	frame := &Frame{
		DeviceID:  deviceID,
		Series:    Build(sig, records, predictions),
		Records:   len(records),
		UpdatedAt: s.now(),
	}

	if !s.seq.Commit(key, gen, func() { s.store(key, frame) }) {
		s.log.Debugf("Dropping stale chart refresh %s gen %d", key, gen)

		latest, _ := s.Frame(deviceID, sig, opts.Forecast)
		if latest == nil {
			return frame, nil
		}

		return latest, nil
	}

	return frame, nil
}

// Status returns the status grid of sig from the full record history.
func (s *Service) Status(ctx context.Context, deviceID int64, sig models.Signal) ([]StatusCell, error) {
	records, err := s.api.AllRecords(ctx, deviceID)
	if err != nil {
		s.log.Errorf("Status grid for device %d failed: %v", deviceID, err)

		return nil, fmt.Errorf("%w: %w", errRefreshFailed, err)
	}

	return StatusGrid(sig, records), nil
}

func (s *Service) store(key string, f *Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frames[key] = f
}
