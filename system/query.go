/*
 * query.go, part of sire-go.
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

package system

import (
	"slices"

	"github.com/SierraSoftworks/connor"
	"github.com/google/uuid"

	sire "github.com/chrys-athome/sire-sub022"
	"github.com/chrys-athome/sire-sub022/ff"
	"github.com/chrys-athome/sire-sub022/mol"
	"github.com/chrys-athome/sire-sub022/molgroup"
	"github.com/chrys-athome/sire-sub022/monitor"
	"github.com/chrys-athome/sire-sub022/space"
)

// QuerySystem is a read-only view of a complete system: its groups and space,
// its forcefields and its monitors. It is a value: copying it is cheap, and a
// copy never sees later changes to the system it came from.
type QuerySystem struct {
	data     SystemData
	ffs      ff.ForceFields
	monitors monitor.Monitors
}

// NewQuerySystem returns an empty system called name.
func NewQuerySystem(name string) QuerySystem {
	return QuerySystem{data: NewSystemData(name), ffs: ff.NewForceFields()}
}

func (q QuerySystem) IsNull() bool { return q.data.IsNull() }

func (q QuerySystem) ID() SystemID { return q.data.ID() }

func (q QuerySystem) UID() uuid.UUID { return q.data.UID() }

func (q QuerySystem) Name() string { return q.data.Name() }

// Version is the version of the system. Every change made through a SimSystem,
// to the groups, the forcefields or the monitors, increments it.
func (q QuerySystem) Version() sire.Version { return q.data.Version() }

func (q QuerySystem) Space() space.Space { return q.data.Space() }

// Data returns the groups and space of the system.
func (q QuerySystem) Data() SystemData { return q.data }

func (q QuerySystem) Groups() molgroup.MolGroups { return q.data.Groups() }

func (q QuerySystem) Group(id molgroup.MGID) (molgroup.MoleculeGroup, error) {
	g, err := q.data.Group(id)
	return g, sire.ErrDecorate(err, "QuerySystem.Group")
}

// Contains reports whether any group or forcefield holds the molecule n.
func (q QuerySystem) Contains(n mol.MolNum) bool {
	return q.data.Contains(n) || q.ffs.Contains(n)
}

// Molecule returns the data of the molecule n. Groups and forcefields always
// agree on it.
func (q QuerySystem) Molecule(n mol.MolNum) (mol.Molecule, error) {
	if m, err := q.data.Molecule(n); err == nil {
		return m, nil
	}
	m, err := q.ffs.Molecule(n)
	if err != nil {
		return mol.Molecule{}, sire.Errorf(sire.MissingMolecule, "QuerySystem.Molecule", "no molecule %v in system %q", n, q.Name())
	}
	return m, nil
}

// MolNums returns, sorted, the numbers of every molecule in the system.
func (q QuerySystem) MolNums() []mol.MolNum {
	seen := map[mol.MolNum]bool{}
	var ret []mol.MolNum
	for _, n := range q.data.MolNums() {
		seen[n] = true
		ret = append(ret, n)
	}
	for _, n := range q.ffs.MolNums() {
		if !seen[n] {
			ret = append(ret, n)
		}
	}
	slices.Sort(ret)
	return ret
}

func (q QuerySystem) NMolecules() int { return len(q.MolNums()) }

func (q QuerySystem) ForceFields() ff.ForceFields { return q.ffs }

// ForceField returns the forcefield called name.
func (q QuerySystem) ForceField(name string) (ff.G1FF, error) {
	f, err := q.ffs.Get(name)
	return f, sire.ErrDecorate(err, "QuerySystem.ForceField")
}

// Energy returns the energy of the component c, or a sire.MissingComponent error.
func (q QuerySystem) Energy(c ff.Component) (float64, error) {
	e, err := q.ffs.Energy(c)
	return e, sire.ErrDecorate(err, "QuerySystem.Energy")
}

func (q QuerySystem) Energies() map[ff.Component]float64 { return q.ffs.Energies() }

func (q QuerySystem) TotalEnergy() float64 { return q.ffs.Total() }

func (q QuerySystem) Monitors() monitor.Monitors { return q.monitors }

// Monitor returns the monitor called name, or a sire.MissingMonitor error.
func (q QuerySystem) Monitor(name string) (monitor.Monitor, error) {
	m, err := q.monitors.Get(name)
	return m, sire.ErrDecorate(err, "QuerySystem.Monitor")
}

// Search returns, sorted, the numbers of the molecules whose record, as
// returned by mol.Record, matches filter. Filters use the connor syntax, so
// {"name": "WAT"} and {"natoms": {"$gt": 2}} are both valid.
func (q QuerySystem) Search(filter map[string]any) ([]mol.MolNum, error) {
	var ret []mol.MolNum
	for _, n := range q.MolNums() {
		m, err := q.Molecule(n)
		if err != nil {
			return nil, sire.ErrDecorate(err, "QuerySystem.Search")
		}
		ok, err := connor.Match(filter, mol.Record(m))
		if err != nil {
			return nil, sire.Errorf(sire.InvalidArg, "QuerySystem.Search", "bad filter: %v", err)
		}
		if ok {
			ret = append(ret, n)
		}
	}
	return ret, nil
}

// CheckPoint returns a snapshot of the system. Taking it copies nothing.
func (q QuerySystem) CheckPoint() CheckPoint {
	return CheckPoint{q: q}
}

// Equal reports whether both systems are the same system at the same version,
// with equal groups, forcefields and monitors.
func (q QuerySystem) Equal(o QuerySystem) bool {
	return q.data.Equal(o.data) && q.ffs.Equal(o.ffs) && q.monitors.Equal(o.monitors)
}

// WithMonitors returns a copy of q whose monitors are ms. The copy keeps the
// identity and version of q.
func (q QuerySystem) WithMonitors(ms monitor.Monitors) QuerySystem {
	q.monitors = ms
	return q
}
