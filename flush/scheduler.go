// Copyright (c) 2026 The Umbracoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package flush implements the wallet persistence core's periodic
// checkpoint scheduler: a single-runner guard that observes each
// registered database's update counter and flushes it once it has been
// quiet for a short grace period.
package flush

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lightningnetwork/lnd/clock"

	"github.com/umbracoin/store"
	"github.com/umbracoin/errors"
)

// QuietPeriod is the duration a database's update counter must stay
// unchanged before the scheduler considers it worth flushing.
const QuietPeriod = 2 * time.Second

type watched struct {
	db             *store.DB
	lastCounter    uint64
	lastUpdateTime time.Time
	lastFlushed    uint64
}

// Scheduler runs the process-wide cooperative checkpoint. Unlike a
// translation-unit-local static atomic flag, the guard here is an owned
// struct field: a named runtime capability rather than free-standing
// global state, safe to construct per-process or per-test.
type Scheduler struct {
	clock   clock.Clock
	mu      sync.Mutex
	dbs     []*watched
	running atomic.Bool
}

// New returns a Scheduler using clk as its time source. Pass
// clock.NewDefaultClock() in production; tests inject a mock clock to
// exercise the quiet-period logic without real sleeps.
func New(clk clock.Clock) *Scheduler {
	return &Scheduler{clock: clk}
}

// Watch registers db with the scheduler. It takes the same lock as Run, so
// a database registered during a pass is first observed by the next pass.
func (s *Scheduler) Watch(db *store.DB) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dbs = append(s.dbs, &watched{db: db, lastUpdateTime: s.clock.Now()})
}

// Run performs one scheduler pass over every watched database. If another
// Run is already in progress on this Scheduler, it returns immediately.
func (s *Scheduler) Run() error {
	const op errors.Op = "flush.Scheduler.Run"

	if !s.running.CompareAndSwap(false, true) {
		return nil
	}
	defer s.running.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	var firstErr error
	for _, w := range s.dbs {
		counter := w.db.UpdateCounter()
		if counter != w.lastCounter {
			w.lastCounter = counter
			w.lastUpdateTime = now
		}
		if counter == w.lastFlushed {
			continue
		}
		if now.Sub(w.lastUpdateTime) < QuietPeriod {
			continue
		}
		if err := w.db.FlushDB(); err != nil {
			log.Warnf("flush: checkpoint failed: %v", err)
			if firstErr == nil {
				firstErr = errors.E(op, errors.IO, err)
			}
			continue
		}
		w.lastFlushed = counter
	}
	return firstErr
}
