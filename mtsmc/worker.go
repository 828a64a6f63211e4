/*
 * worker.go, part of sire-go.
 *
 *
 * Copyright 2026 The sire-go Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

// Package mtsmc implements multiple time step Monte Carlo: blocks of cheap
// "fast" moves are run on a private copy of the system, and the whole block
// is then accepted or rejected on an expensive "slow" energy component.
//
// A block runs on its own goroutine, in a Worker. The worker owns the system
// copy and the moves it was given. The caller only sees the state at the end
// of a block, after Wait returns.
package mtsmc

import (
	"context"
	"errors"
	"sync"

	sire "github.com/chrys-athome/sire-sub022"
	"github.com/chrys-athome/sire-sub022/moves"
	"github.com/chrys-athome/sire-sub022/system"
)

// ErrStopped is returned by Wait if the block was stopped before it finished.
var ErrStopped = errors.New("mtsmc: block stopped")

// Result is the outcome of one block of fast moves.
type Result struct {
	// Start is the state the block started from.
	Start system.CheckPoint
	// End is the state after the block.
	End system.CheckPoint
	// Steps is the number of passes over the fast moves that completed.
	Steps int
	Stats map[string]moves.Stats
}

// Worker runs one block of moves at a time on a goroutine of its own.
type Worker struct {
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	res     Result
	err     error
}

func NewWorker() *Worker { return &Worker{} }

// Start runs n passes of fast on a system made from ckpt. The worker takes
// ownership of fast: the caller must not use those moves until Wait returns.
// It fails with a sire.InvalidArg error if a block is already running.
func (w *Worker) Start(ckpt system.CheckPoint, fast moves.Sequence, n int) error {
	if ckpt.IsNull() {
		return sire.Errorf(sire.InvalidArg, "Worker.Start", "null checkpoint")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return sire.Errorf(sire.InvalidArg, "Worker.Start", "a block is already running")
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.running = true
	w.cancel = cancel
	w.res, w.err = Result{}, nil
	w.wg.Add(1)
	go w.run(ctx, ckpt, fast, n)
	return nil
}

func (w *Worker) run(ctx context.Context, ckpt system.CheckPoint, fast moves.Sequence, n int) {
	defer w.wg.Done()
	sys := system.FromCheckPoint(ckpt)
	res := Result{Start: ckpt}
	var err error
	for res.Steps < n {
		if ctx.Err() != nil {
			err = ErrStopped
			break
		}
		if err = fast.Run(sys, 1); err != nil {
			break
		}
		res.Steps++
	}
	res.End = sys.CheckPoint()
	res.Stats = fast.Statistics()
	w.mu.Lock()
	w.res, w.err = res, err
	w.mu.Unlock()
}

// Wait blocks until the running block ends and returns its result. If no
// block was started it returns at once with an empty result.
func (w *Worker) Wait() (Result, error) {
	w.wg.Wait()
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		w.running = false
		w.cancel()
	}
	return w.res, w.err
}

// Stop asks the running block to end after the current pass, and waits for it.
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.running {
		w.cancel()
	}
	w.mu.Unlock()
	w.Wait()
}

// Running reports whether a block has been started and not yet waited for.
func (w *Worker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
