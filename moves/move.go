/*
 * move.go, part of sire-go.
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

// Package moves holds the Monte Carlo moves that drive a system. A move
// changes a SimSystem through its mutating methods, and uses a CheckPoint
// taken before the change to undo it if the change is rejected or fails.
package moves

import (
	"fmt"

	"github.com/chrys-athome/sire-sub022/system"
)

// Move is one kind of Monte Carlo move.
type Move interface {
	Name() string
	// Move attempts n moves on sys, committing sys once for every accepted
	// attempt. If it returns an error, sys is left as it was before the
	// failed attempt.
	Move(sys *system.SimSystem, n int) error
	// Clone returns an independent copy of the move, with its own random
	// numbers, to be used from another goroutine.
	Clone() Move
	Statistics() Stats
}

// Stats counts the attempts of a move.
type Stats struct {
	Attempted int
	Accepted  int
}

// Rejected returns the number of attempts that were rolled back.
func (s Stats) Rejected() int { return s.Attempted - s.Accepted }

// Ratio returns the acceptance ratio, 0 if there were no attempts.
func (s Stats) Ratio() float64 {
	if s.Attempted == 0 {
		return 0
	}
	return float64(s.Accepted) / float64(s.Attempted)
}

// Add returns the sum of both counts.
func (s Stats) Add(o Stats) Stats {
	return Stats{Attempted: s.Attempted + o.Attempted, Accepted: s.Accepted + o.Accepted}
}

func (s Stats) String() string {
	return fmt.Sprintf("%d/%d accepted (%.1f%%)", s.Accepted, s.Attempted, 100*s.Ratio())
}

// Sequence runs its moves one after the other.
type Sequence []Move

// Run makes n passes over the moves, each move attempted once per pass.
func (seq Sequence) Run(sys *system.SimSystem, n int) error {
	for i := 0; i < n; i++ {
		for _, m := range seq {
			if err := m.Move(sys, 1); err != nil {
				return fmt.Errorf("move %s: %w", m.Name(), err)
			}
		}
	}
	return nil
}

// Clone clones every move of the sequence.
func (seq Sequence) Clone() Sequence {
	ret := make(Sequence, len(seq))
	for i, m := range seq {
		ret[i] = m.Clone()
	}
	return ret
}

// Statistics returns the statistics of every move, by name.
func (seq Sequence) Statistics() map[string]Stats {
	ret := make(map[string]Stats, len(seq))
	for _, m := range seq {
		ret[m.Name()] = ret[m.Name()].Add(m.Statistics())
	}
	return ret
}
