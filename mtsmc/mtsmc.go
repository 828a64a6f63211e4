/*
 * mtsmc.go, part of sire-go.
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

package mtsmc

import (
	"math/rand"

	sire "github.com/chrys-athome/sire-sub022"
	"github.com/chrys-athome/sire-sub022/ff"
	"github.com/chrys-athome/sire-sub022/monitor"
	"github.com/chrys-athome/sire-sub022/moves"
	"github.com/chrys-athome/sire-sub022/system"
)

// MTSMC is a move made of a block of fast moves. The fast moves sample the
// system on the fast energy component; the block as a whole is accepted with
// the Metropolis criterion on the difference between the slow and fast
// components.
type MTSMC struct {
	name        string
	fast        moves.Sequence
	nfast       int
	slow        ff.Component
	fastC       ff.Component
	temperature float64
	parallel    bool
	rng         *rand.Rand
	stats       moves.Stats
	worker      *Worker
}

// Option configures an MTSMC move.
type Option func(*MTSMC)

// Parallel makes the move start the next block from the proposed state while
// it decides whether to accept the current one. A rejection then costs the
// speculative block, which is stopped and started again from the old state.
func Parallel(p bool) Option { return func(m *MTSMC) { m.parallel = p } }

// New returns a move running nfast passes of fast per block. slow is the
// component the system is sampled on, fastC the one the fast moves use.
func New(name string, fast moves.Sequence, nfast int, slow, fastC ff.Component, temperature float64, seed int64, opts ...Option) (*MTSMC, error) {
	if len(fast) == 0 || nfast <= 0 {
		return nil, sire.Errorf(sire.InvalidArg, "mtsmc.New", "need fast moves and a positive block size")
	}
	if temperature <= 0 {
		return nil, sire.Errorf(sire.InvalidArg, "mtsmc.New", "non-positive temperature %v", temperature)
	}
	m := &MTSMC{
		name:        name,
		fast:        fast,
		nfast:       nfast,
		slow:        slow,
		fastC:       fastC,
		temperature: temperature,
		rng:         rand.New(rand.NewSource(seed)),
		worker:      NewWorker(),
	}
	for _, o := range opts {
		o(m)
	}
	return m, nil
}

func (m *MTSMC) Name() string { return m.name }

// Statistics counts the blocks attempted and accepted.
func (m *MTSMC) Statistics() moves.Stats { return m.stats }

// FastStatistics returns the statistics of the fast moves, by name.
// It must not be called while a block is running.
func (m *MTSMC) FastStatistics() map[string]moves.Stats { return m.fast.Statistics() }

func (m *MTSMC) Clone() moves.Move {
	c := *m
	c.fast = m.fast.Clone()
	c.rng = rand.New(rand.NewSource(m.rng.Int63()))
	c.stats = moves.Stats{}
	c.worker = NewWorker()
	return &c
}

// deltaE returns the energy change the block is accepted on.
func (m *MTSMC) deltaE(res Result) (float64, error) {
	var e [4]float64
	var err error
	for i, q := range []struct {
		s system.QuerySystem
		c ff.Component
	}{{res.Start.System(), m.slow}, {res.End.System(), m.slow}, {res.Start.System(), m.fastC}, {res.End.System(), m.fastC}} {
		if e[i], err = q.s.Energy(q.c); err != nil {
			return 0, err
		}
	}
	return (e[1] - e[0]) - (e[3] - e[2]), nil
}

// unmonitored returns the state of q without its monitors. Blocks run on it,
// so the fast moves never sample the monitors of the system.
func unmonitored(q system.QuerySystem) system.CheckPoint {
	return q.WithMonitors(monitor.Monitors{}).CheckPoint()
}

// Move attempts n blocks. Accepted blocks become the state of sys and are
// committed once, so the monitors of sys see one sample per accepted
// block. If an error is returned, sys is in the state of the last accepted
// block.
func (m *MTSMC) Move(sys *system.SimSystem, n int) error {
	pending := false
	defer func() {
		if pending {
			m.worker.Stop()
		}
	}()
	for i := 0; i < n; i++ {
		if !pending {
			if err := m.worker.Start(unmonitored(sys.QuerySystem), m.fast, m.nfast); err != nil {
				return sire.ErrDecorate(err, "MTSMC.Move")
			}
		}
		res, err := m.worker.Wait()
		pending = false
		if err != nil {
			return sire.ErrDecorate(err, "MTSMC.Move")
		}
		if m.parallel && i+1 < n {
			if err := m.worker.Start(res.End, m.fast, m.nfast); err != nil {
				return sire.ErrDecorate(err, "MTSMC.Move")
			}
			pending = true
		}
		dE, err := m.deltaE(res)
		if err != nil {
			return sire.ErrDecorate(err, "MTSMC.Move")
		}
		m.stats.Attempted++
		if !moves.Metropolis(dE, m.temperature, m.rng.Float64) {
			if pending {
				m.worker.Stop()
				pending = false
				sire.Log().Debugf("mtsmc: block %d rejected, speculative block discarded", i)
			}
			continue
		}
		accepted := system.FromCheckPoint(res.End.System().WithMonitors(sys.Monitors()).CheckPoint())
		if err := accepted.Commit(); err != nil {
			return sire.ErrDecorate(err, "MTSMC.Move")
		}
		if err := sys.SetSystem(accepted.QuerySystem); err != nil {
			return sire.ErrDecorate(err, "MTSMC.Move")
		}
		m.stats.Accepted++
	}
	return nil
}

var _ moves.Move = (*MTSMC)(nil)
