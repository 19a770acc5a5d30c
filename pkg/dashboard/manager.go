package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/carverauto/pemfcradar/pkg/logger"
	"github.com/carverauto/pemfcradar/pkg/pemfcapi"
	"github.com/carverauto/pemfcradar/pkg/poller"
)

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	PollInterval time.Duration
	IdleTimeout  time.Duration
	OnUpdate     func(id int64, snap *Snapshot)
	Logger       logger.Logger
}

type entry struct {
	view   *View
	poller *poller.Poller
	refs   int
	idle   *time.Timer
}

// Manager starts one polling View per device on first use and stops it
// once the last subscriber has been gone for the idle timeout.
type Manager struct {
	api  pemfcapi.Service
	opts ManagerOptions
	log  logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	entries map[int64]*entry
	closed  bool
	wg      sync.WaitGroup
}

func NewManager(api pemfcapi.Service, opts ManagerOptions) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		api:     api,
		opts:    opts,
		log:     logger.OrNop(opts.Logger).With("component", "dashboard-manager"),
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[int64]*entry),
	}
}

// Acquire returns the running view for id, starting its poller if needed.
// Every Acquire must be paired with a Release.
func (m *Manager) Acquire(id int64) (*View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}

	if e, ok := m.entries[id]; ok {
		e.refs++

		if e.idle != nil {
			e.idle.Stop()
			e.idle = nil
		}

		return e.view, nil
	}

	var onUpdate UpdateFunc
	if m.opts.OnUpdate != nil {
		onUpdate = func(snap *Snapshot) { m.opts.OnUpdate(id, snap) }
	}

	view := NewView(id, m.api, m.opts.Logger, onUpdate)

	p, err := poller.New(fmt.Sprintf("dashboard-%d", id), m.opts.PollInterval, view.Refresh, m.opts.Logger)
	if err != nil {
		return nil, err
	}

	m.entries[id] = &entry{view: view, poller: p, refs: 1}

	m.wg.Add(1)

	go func() {
		defer m.wg.Done()

		if err := p.Start(m.ctx); err != nil {
			m.log.Errorf("Dashboard poller for device %d exited: %v", id, err)
		}
	}()

	m.log.Infof("Started dashboard view for device %d", id)

	return view, nil
}

// Release drops one reference. The view stops after IdleTimeout with no
// references.
func (m *Manager) Release(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok || m.closed {
		return
	}

	if e.refs > 0 {
		e.refs--
	}

	if e.refs > 0 || e.idle != nil {
		return
	}

	if m.opts.IdleTimeout <= 0 {
		m.stopLocked(id, e)

		return
	}

	e.idle = time.AfterFunc(m.opts.IdleTimeout, func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		// re-acquired or already stopped while the timer was pending
		if cur, ok := m.entries[id]; !ok || cur != e || e.refs > 0 {
			return
		}

		m.stopLocked(id, e)
	})
}

// Active reports the number of running views.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries)
}

func (m *Manager) stopLocked(id int64, e *entry) {
	delete(m.entries, id)
	e.view.discard()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		if err := e.poller.Stop(ctx); err != nil {
			m.log.Warnf("Dashboard poller for device %d did not stop cleanly: %v", id, err)
		}
	}()

	m.log.Infof("Stopped dashboard view for device %d", id)
}

// Start implements lifecycle.Service. Views are started on demand, so this
// only blocks until ctx is done.
func (m *Manager) Start(ctx context.Context) error {
	select {
	case <-ctx.Done():
	case <-m.ctx.Done():
	}

	return nil
}

// Stop stops every view and waits for their pollers to exit.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()

	if m.closed {
		m.mu.Unlock()

		return nil
	}

	m.closed = true

	for id, e := range m.entries {
		if e.idle != nil {
			e.idle.Stop()
		}

		e.view.discard()
		delete(m.entries, id)
	}

	m.mu.Unlock()

	m.cancel()

	done := make(chan struct{})

	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
