/*
 * version.go, part of sire-go.
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

import (
	"fmt"
	"sync"
)

// Version is a (major, minor) pair. The major number changes when the set
// of contained objects changes, the minor number when only their content does.
type Version struct {
	Major uint64
	Minor uint64
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Less reports whether v was issued before o.
func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	return v.Minor < o.Minor
}

// majMinCounter hands out version numbers. It is shared by every copy of
// one MajMin, so two histories forked from the same checkpoint never
// reuse a number.
type majMinCounter struct {
	mu    sync.Mutex
	major uint64
	minor map[uint64]uint64
}

func newMajMinCounter(v Version) *majMinCounter {
	return &majMinCounter{major: v.Major, minor: map[uint64]uint64{v.Major: v.Minor}}
}

func (c *majMinCounter) nextMajor() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.major++
	return c.major
}

func (c *majMinCounter) nextMinor(major uint64) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.minor[major]++
	return c.minor[major]
}

// MajMin tracks the version of one versioned object. Copying a MajMin
// is cheap and the copy keeps drawing numbers from the same counters.
type MajMin struct {
	v Version
	c *majMinCounter
}

// NewMajMin returns a tracker at version 0.0.
func NewMajMin() MajMin {
	return MajMin{c: newMajMinCounter(Version{})}
}

// RestoreMajMin returns a tracker at version v whose next increments follow v.
// It is used when loading saved objects.
func RestoreMajMin(v Version) MajMin {
	return MajMin{v: v, c: newMajMinCounter(v)}
}

// Version returns the current version.
func (m MajMin) Version() Version {
	return m.v
}

func (m *MajMin) counter() *majMinCounter {
	if m.c == nil {
		m.c = newMajMinCounter(m.v)
	}
	return m.c
}

// IncrementMajor moves to a new major version, with minor version 0.
func (m *MajMin) IncrementMajor() {
	m.v = Version{Major: m.counter().nextMajor()}
}

// IncrementMinor moves to a new minor version of the current major version.
func (m *MajMin) IncrementMinor() {
	m.v.Minor = m.counter().nextMinor(m.v.Major)
}

func (c *majMinCounter) advance(v Version) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v.Major > c.major {
		c.major = v.Major
	}
	if v.Minor > c.minor[v.Major] {
		c.minor[v.Major] = v.Minor
	}
}

// Restore returns a tracker at version v that shares m's counters, and
// makes sure those counters never issue v, or anything before it, again.
// Loaders use it so that every loaded version of one object draws from
// a single set of counters.
func (m MajMin) Restore(v Version) MajMin {
	if m.c == nil {
		return RestoreMajMin(v)
	}
	m.c.advance(v)
	return MajMin{v: v, c: m.c}
}

// Versions keeps one set of counters per numbered object for the whole
// process. Every tracker made or restored through it for the same number
// shares those counters, so a copy loaded while the original is still
// alive never reissues a version the original has used.
// The zero value is ready to use.
type Versions struct {
	mu sync.Mutex
	m  map[uint64]*majMinCounter
}

func (vs *Versions) get(n uint64) *majMinCounter {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	if vs.m == nil {
		vs.m = make(map[uint64]*majMinCounter)
	}
	c, ok := vs.m[n]
	if !ok {
		c = newMajMinCounter(Version{})
		vs.m[n] = c
	}
	return c
}

// New returns a tracker at version 0.0 for the object numbered n.
func (vs *Versions) New(n uint64) MajMin {
	return MajMin{c: vs.get(n)}
}

// Restore returns a tracker at version v for the object numbered n. The
// counters of n will not issue v, or anything before it, again.
func (vs *Versions) Restore(n uint64, v Version) MajMin {
	c := vs.get(n)
	c.advance(v)
	return MajMin{v: v, c: c}
}
