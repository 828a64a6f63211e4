/*
 * monitor.go, part of sire-go.
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

// Package monitor implements the monitors that collect statistics from a
// simulation each time a configuration is committed.
//
// Monitors are immutable values: Update returns a new monitor, and the
// one it was called on stays as it was. A checkpoint of a system can
// therefore capture its monitors by copying them, and a rollback
// restores the statistics exactly.
package monitor

import (
	"bytes"
	"slices"
	"sync"

	sire "github.com/chrys-athome/sire-sub022"
	"github.com/chrys-athome/sire-sub022/ff"
	"github.com/chrys-athome/sire-sub022/stream"
)

// Source is the read-only view of a system monitors sample from.
type Source interface {
	Energy(c ff.Component) (float64, error)
	Version() sire.Version
	NMolecules() int
}

// Monitor collects statistics of a system.
type Monitor interface {
	Name() string
	// Kind names the monitor type, for saving.
	Kind() string
	// Update returns the monitor after sampling src.
	Update(src Source) (Monitor, error)
	// Samples returns the number of samples collected.
	Samples() int
	Save(w *stream.Writer)
}

// Loader reads a monitor written by its Save method.
type Loader func(r *stream.Reader, name string) (Monitor, error)

var (
	loadersMu sync.RWMutex
	loaders   = map[string]Loader{}
)

// Register makes the monitors of the given kind loadable.
func Register(kind string, l Loader) {
	loadersMu.Lock()
	defer loadersMu.Unlock()
	if _, dup := loaders[kind]; dup {
		panic("monitor: Register called twice for " + kind)
	}
	loaders[kind] = l
}

func init() {
	Register(AverageKind, loadAverage)
	Register(HistogramKind, loadHistogram)
}

// Monitors is an ordered set of monitors with unique names.
type Monitors struct {
	ms []Monitor
}

func (s Monitors) Len() int { return len(s.ms) }

// Names returns the names of the monitors in the order they were added.
func (s Monitors) Names() []string {
	ret := make([]string, len(s.ms))
	for i, m := range s.ms {
		ret[i] = m.Name()
	}
	return ret
}

func (s Monitors) index(name string) int {
	return slices.IndexFunc(s.ms, func(m Monitor) bool { return m.Name() == name })
}

// Get returns the monitor called name, or a sire.MissingMonitor error.
func (s Monitors) Get(name string) (Monitor, error) {
	i := s.index(name)
	if i < 0 {
		return nil, sire.Errorf(sire.MissingMonitor, "Monitors.Get", "no monitor called %q", name)
	}
	return s.ms[i], nil
}

// Add adds m. It fails with sire.DuplicateMonitor if there is a monitor
// with the same name.
func (s *Monitors) Add(m Monitor) error {
	if s.index(m.Name()) >= 0 {
		return sire.Errorf(sire.DuplicateMonitor, "Monitors.Add", "there is already a monitor called %q", m.Name())
	}
	s.ms = append(slices.Clip(s.ms), m)
	return nil
}

// Remove removes the monitor called name.
func (s *Monitors) Remove(name string) error {
	i := s.index(name)
	if i < 0 {
		return sire.Errorf(sire.MissingMonitor, "Monitors.Remove", "no monitor called %q", name)
	}
	s.ms = slices.Delete(slices.Clone(s.ms), i, i+1)
	return nil
}

// Update samples src with every monitor. If any monitor fails, none is updated.
func (s *Monitors) Update(src Source) error {
	ms := make([]Monitor, len(s.ms))
	for i, m := range s.ms {
		u, err := m.Update(src)
		if err != nil {
			return sire.ErrDecorate(err, "Monitors.Update")
		}
		ms[i] = u
	}
	s.ms = ms
	return nil
}

// Equal reports whether both sets hold the same monitors, in the same
// order, with the same statistics. Monitors are compared by what Save
// writes for them.
func (s Monitors) Equal(o Monitors) bool {
	if len(s.ms) != len(o.ms) {
		return false
	}
	var a, b bytes.Buffer
	wa, wb := stream.NewWriter(&a), stream.NewWriter(&b)
	Save(wa, s)
	Save(wb, o)
	if wa.Err() != nil || wb.Err() != nil {
		return false
	}
	return bytes.Equal(a.Bytes(), b.Bytes())
}

const monitorsMagic uint32 = 0x4d4f4e53 // "MONS"

// Save writes every monitor of s.
func Save(w *stream.Writer, s Monitors) {
	w.Magic(monitorsMagic, 1)
	w.Int(len(s.ms))
	for _, m := range s.ms {
		w.String(m.Kind())
		w.String(m.Name())
		m.Save(w)
	}
}

// Load reads a set written by Save.
func Load(r *stream.Reader) (Monitors, error) {
	r.Magic(monitorsMagic, 1)
	n := r.Len()
	var s Monitors
	for i := 0; i < n && r.Err() == nil; i++ {
		kind, name := r.String(), r.String()
		if r.Err() != nil {
			break
		}
		loadersMu.RLock()
		l, ok := loaders[kind]
		loadersMu.RUnlock()
		if !ok {
			return Monitors{}, sire.Errorf(sire.VersionError, "monitor.Load", "no monitor of kind %q is registered", kind)
		}
		m, err := l(r, name)
		if err != nil {
			return Monitors{}, sire.ErrDecorate(err, "monitor.Load")
		}
		if err := s.Add(m); err != nil {
			return Monitors{}, sire.ErrDecorate(err, "monitor.Load")
		}
	}
	if err := r.Err(); err != nil {
		return Monitors{}, sire.ErrDecorate(err, "monitor.Load")
	}
	return s, nil
}
