/*
 * incremint.go, part of sire-go.
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

package sire

import "sync/atomic"

// Incremint is a process-wide incrementing counter used to issue the
// numeric identifiers (molecule, group, forcefield and system numbers).
// The numbers are unique for one run of the program only; they mean
// something across restarts only because loading advances the counter
// past every number found in the loaded data.
type Incremint struct {
	v atomic.Uint64
}

// Increment returns the next number. The first number issued is 1.
func (i *Incremint) Increment() uint64 {
	return i.v.Add(1)
}

// Current returns the last number issued.
func (i *Incremint) Current() uint64 {
	return i.v.Load()
}

// Advance makes sure every later Increment returns a number larger than past.
func (i *Incremint) Advance(past uint64) {
	for {
		cur := i.v.Load()
		if cur >= past {
			return
		}
		if i.v.CompareAndSwap(cur, past) {
			return
		}
	}
}
