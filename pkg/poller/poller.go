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

// Package poller runs fixed-interval refresh loops and guards their
// results against out-of-order completion.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/carverauto/pemfcradar/pkg/logger"
)

// Task is one poll cycle. Errors are logged and the loop continues.
type Task func(ctx context.Context) error

// Poller represents a single refresh loop.
type Poller struct {
	name     string
	interval time.Duration
	task     Task
	log      logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
	stopped bool
}

// New returns a poller that runs task every interval.
func New(name string, interval time.Duration, task Task, log logger.Logger) (*Poller, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: %v", errInvalidInterval, interval)
	}

	if task == nil {
		return nil, errNilTask
	}

	return &Poller{
		name:     name,
		interval: interval,
		task:     task,
		log:      logger.OrNop(log).With("poller", name),
		done:     make(chan struct{}),
	}, nil
}

// Start begins the polling loop and blocks until ctx is done or Stop is called.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()

	if p.started {
		p.mu.Unlock()

		return errAlreadyStarted
	}

	if p.stopped {
		p.mu.Unlock()

		return errStopped
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.started = true
	p.mu.Unlock()

	defer close(p.done)
	defer cancel()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.Debugf("Starting poller with interval %v", p.interval)

	// Do an initial poll immediately
	p.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			p.log.Debugf("Poller stopped")

			return nil
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	if err := p.task(ctx); err != nil && ctx.Err() == nil {
		p.log.Errorf("Error during poll: %v", err)
	}
}

// Stop cancels the loop and waits for the current cycle to return or ctx to
// expire. Calling Stop more than once is safe.
func (p *Poller) Stop(ctx context.Context) error {
	p.mu.Lock()

	if p.stopped {
		p.mu.Unlock()

		return nil
	}

	p.stopped = true
	started := p.started
	cancel := p.cancel
	p.mu.Unlock()

	if !started {
		return nil
	}

	cancel()

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stopped reports whether Stop has been called.
func (p *Poller) Stopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.stopped
}
