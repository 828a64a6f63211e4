/*
 * sim.go, part of sire-go.
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
	sire "github.com/chrys-athome/sire-sub022"
	"github.com/chrys-athome/sire-sub022/ff"
	"github.com/chrys-athome/sire-sub022/mol"
	"github.com/chrys-athome/sire-sub022/molgroup"
	"github.com/chrys-athome/sire-sub022/monitor"
	"github.com/chrys-athome/sire-sub022/space"
)

// SimSystem is a system that can be changed. Every mutating method works on a
// copy of the whole system and only replaces the current state if it succeeds,
// so a method that returns an error leaves the system exactly as it was.
//
// A SimSystem is not safe for concurrent mutation. Readers that need a stable
// view while the system changes should take a CheckPoint.
type SimSystem struct {
	QuerySystem
}

// NewSimSystem returns an empty system called name.
func NewSimSystem(name string) *SimSystem {
	return &SimSystem{NewQuerySystem(name)}
}

// FromCheckPoint returns a system in the state of c. Changes to it never
// affect c.
func FromCheckPoint(c CheckPoint) *SimSystem {
	return &SimSystem{c.q}
}

// canonical returns the system's data for m, if the system holds it, or m
// mapped into the space.
func (q QuerySystem) canonical(m mol.Molecule) (mol.Molecule, error) {
	if c, err := q.Molecule(m.Number()); err == nil {
		return c, nil
	}
	return q.data.Space().Map(m)
}

// AddGroup adds g and its molecules to the system.
func (s *SimSystem) AddGroup(g molgroup.MoleculeGroup) error {
	nq := s.QuerySystem
	var known []mol.Molecule
	for _, n := range g.MolNums() {
		if !nq.data.Contains(n) && nq.ffs.Contains(n) {
			m, _ := nq.ffs.Molecule(n)
			known = append(known, m)
		}
	}
	g.Update(known...)
	if err := nq.data.AddGroup(g); err != nil {
		return sire.ErrDecorate(err, "SimSystem.AddGroup")
	}
	s.QuerySystem = nq
	return nil
}

// RemoveGroup removes every group identified by id. Molecules that are left
// in other groups or forcefields stay in the system.
func (s *SimSystem) RemoveGroup(id molgroup.MGID) error {
	nq := s.QuerySystem
	if err := nq.data.RemoveGroup(id); err != nil {
		return sire.ErrDecorate(err, "SimSystem.RemoveGroup")
	}
	s.QuerySystem = nq
	return nil
}

// AddForceField adds f. Molecules of f already in the system take the
// system's data, the others are mapped into the space.
func (s *SimSystem) AddForceField(f ff.G1FF) error {
	nq := s.QuerySystem
	var ms []mol.Molecule
	for _, n := range f.Group().MolNums() {
		m, _ := f.Molecule(n)
		c, err := nq.canonical(m)
		if err != nil {
			return sire.ErrDecorate(err, "SimSystem.AddForceField")
		}
		ms = append(ms, c)
	}
	if _, err := f.Change(ms...); err != nil {
		return sire.ErrDecorate(err, "SimSystem.AddForceField")
	}
	if err := nq.ffs.Add(f); err != nil {
		return sire.ErrDecorate(err, "SimSystem.AddForceField")
	}
	nq.data.bump(true)
	s.QuerySystem = nq
	return nil
}

// RemoveForceField removes the forcefield called name.
func (s *SimSystem) RemoveForceField(name string) error {
	nq := s.QuerySystem
	if err := nq.ffs.Remove(name); err != nil {
		return sire.ErrDecorate(err, "SimSystem.RemoveForceField")
	}
	nq.data.bump(true)
	s.QuerySystem = nq
	return nil
}

// targets resolves ids to the system groups and the forcefields they identify.
// An id may match both. It fails if an id matches neither.
func (q QuerySystem) targets(ids []molgroup.MGID) ([]molgroup.MGID, []string, error) {
	if len(ids) == 0 {
		return nil, nil, sire.Errorf(sire.MissingGroup, "SimSystem.targets", "no groups given")
	}
	var groups []molgroup.MGID
	var names []string
	seenG := map[molgroup.MGNum]bool{}
	seenF := map[string]bool{}
	for _, id := range ids {
		nums, gerr := q.data.Groups().Map(id)
		fnames, ferr := q.ffs.Map(id)
		if gerr != nil && ferr != nil {
			return nil, nil, gerr
		}
		for _, n := range nums {
			if !seenG[n] {
				seenG[n] = true
				groups = append(groups, n)
			}
		}
		for _, n := range fnames {
			if !seenF[n] {
				seenF[n] = true
				names = append(names, n)
			}
		}
	}
	return groups, names, nil
}

// changeAll maps the molecules into the space and gives the result to every
// group and forcefield that holds them. It returns the mapped molecules.
func (q *QuerySystem) changeAll(ms *mol.Molecules) (*mol.Molecules, error) {
	before := q.data.Version()
	mapped, err := q.data.ChangeAll(ms)
	if err != nil {
		return nil, err
	}
	var list []mol.Molecule
	for _, vm := range mapped.All() {
		list = append(list, vm.Mol)
	}
	changed, err := q.ffs.Change(list...)
	if err != nil {
		return nil, err
	}
	if changed && q.data.Version() == before {
		q.data.bump(false)
	}
	return mapped, nil
}

// Add adds the views to every group and forcefield identified by ids. A
// molecule already in the system with different data is changed to the new
// data everywhere in the same call. If any target does not exist nothing
// is added, and the error is sire.MissingGroup. A view whose selection
// doesn't fit its molecule is a sire.Incompatible error. Adding nothing
// new keeps the version.
func (s *SimSystem) Add(ms *mol.Molecules, ids ...molgroup.MGID) error {
	nq := s.QuerySystem
	groups, names, err := nq.targets(ids)
	if err != nil {
		return sire.ErrDecorate(err, "SimSystem.Add")
	}
	if err := ms.Check("SimSystem.Add"); err != nil {
		return err
	}
	mapped, err := nq.changeAll(ms)
	if err != nil {
		return sire.ErrDecorate(err, "SimSystem.Add")
	}
	before, ffBefore := nq.data.Version(), nq.ffs.Version()
	if len(groups) > 0 {
		if err := nq.data.Add(mapped, groups...); err != nil {
			return sire.ErrDecorate(err, "SimSystem.Add")
		}
	}
	if len(names) > 0 {
		var views []mol.View
		for _, vm := range mapped.All() {
			views = append(views, vm.Views()...)
		}
		for _, n := range names {
			if err := nq.ffs.AddViews(molgroup.MGName(n), nil, views...); err != nil {
				return sire.ErrDecorate(err, "SimSystem.Add")
			}
		}
	}
	if nq.ffs.Version().Major != ffBefore.Major && nq.data.Version().Major == before.Major {
		nq.data.bump(true)
	}
	s.QuerySystem = nq
	return nil
}

// AddView adds a single view, as Add.
func (s *SimSystem) AddView(v mol.View, ids ...molgroup.MGID) error {
	return s.Add(mol.NewMolecules(v), ids...)
}

// Remove removes the molecule n from the groups and forcefields identified by
// ids, or from the whole system if there are none. It fails with
// sire.MissingMolecule if the system doesn't hold n.
func (s *SimSystem) Remove(n mol.MolNum, ids ...molgroup.MGID) (bool, error) {
	if !s.Contains(n) {
		return false, sire.Errorf(sire.MissingMolecule, "SimSystem.Remove", "no molecule %v in system %q", n, s.Name())
	}
	nq := s.QuerySystem
	before := nq.data.Version()
	changed := false
	if len(ids) == 0 {
		if nq.data.Contains(n) {
			if _, err := nq.data.Remove(n); err != nil {
				return false, sire.ErrDecorate(err, "SimSystem.Remove")
			}
			changed = true
		}
		changed = nq.ffs.RemoveMolecule(n) || changed
	} else {
		groups, names, err := nq.targets(ids)
		if err != nil {
			return false, sire.ErrDecorate(err, "SimSystem.Remove")
		}
		if len(groups) > 0 && nq.data.Contains(n) {
			c, err := nq.data.Remove(n, groups...)
			if err != nil {
				return false, sire.ErrDecorate(err, "SimSystem.Remove")
			}
			changed = c
		}
		for _, name := range names {
			f, _ := nq.ffs.Get(name)
			if !f.RemoveAll(n) {
				continue
			}
			if err := nq.ffs.Replace(f); err != nil {
				return false, sire.ErrDecorate(err, "SimSystem.Remove")
			}
			changed = true
		}
	}
	if !changed {
		return false, nil
	}
	if nq.data.Version() == before {
		nq.data.bump(true)
	}
	s.QuerySystem = nq
	return true, nil
}

// Change gives the new data of m to every group and forcefield holding it,
// after mapping it into the space, and returns the mapped molecule.
// Molecules not in the system are mapped but otherwise ignored.
func (s *SimSystem) Change(m mol.Molecule) (mol.Molecule, error) {
	mapped, err := s.ChangeAll(mol.NewMolecules(mol.Whole(m)))
	if err != nil {
		return mol.Molecule{}, sire.ErrDecorate(err, "SimSystem.Change")
	}
	vm, _ := mapped.Get(m.Number())
	return vm.Mol, nil
}

// ChangeAll is Change for many molecules.
func (s *SimSystem) ChangeAll(ms *mol.Molecules) (*mol.Molecules, error) {
	nq := s.QuerySystem
	mapped, err := nq.changeAll(ms)
	if err != nil {
		return nil, sire.ErrDecorate(err, "SimSystem.ChangeAll")
	}
	s.QuerySystem = nq
	return mapped, nil
}

// SetSpace makes sp the space of the system, mapping every molecule into it.
func (s *SimSystem) SetSpace(sp space.Space) error {
	nq := s.QuerySystem
	changed, err := nq.data.SetSpace(sp)
	if err != nil {
		return sire.ErrDecorate(err, "SimSystem.SetSpace")
	}
	for _, n := range nq.ffs.MolNums() {
		if nq.data.Contains(n) {
			continue
		}
		m, _ := nq.ffs.Molecule(n)
		mm, err := sp.Map(m)
		if err != nil {
			return sire.ErrDecorate(err, "SimSystem.SetSpace")
		}
		changed.AddMolecule(mm)
	}
	var list []mol.Molecule
	for _, vm := range changed.All() {
		list = append(list, vm.Mol)
	}
	if _, err := nq.ffs.Change(list...); err != nil {
		return sire.ErrDecorate(err, "SimSystem.SetSpace")
	}
	s.QuerySystem = nq
	return nil
}

// SpaceProperty is the name of the system property holding the space.
const SpaceProperty = "space"

// SetProperty sets a property of the system. SpaceProperty takes a
// space.Space; every other name is passed to the forcefields, and fails
// with sire.MissingProperty if none of them has it.
func (s *SimSystem) SetProperty(name string, value any) error {
	if name == SpaceProperty {
		sp, ok := value.(space.Space)
		if !ok {
			return sire.Errorf(sire.InvalidArg, "SimSystem.SetProperty", "%q needs a space, not %T", name, value)
		}
		return sire.ErrDecorate(s.SetSpace(sp), "SimSystem.SetProperty")
	}
	nq := s.QuerySystem
	if err := nq.ffs.SetProperty(name, value); err != nil {
		return sire.ErrDecorate(err, "SimSystem.SetProperty")
	}
	nq.data.bump(false)
	s.QuerySystem = nq
	return nil
}

// SetSystem replaces the state of the system with q, which must be a state
// of the same system.
func (s *SimSystem) SetSystem(q QuerySystem) error {
	if q.IsNull() || q.ID() != s.ID() {
		return sire.Errorf(sire.Incompatible, "SimSystem.SetSystem", "cannot set system %v from system %v", s.ID(), q.ID())
	}
	s.QuerySystem = q
	return nil
}

// AddMonitor adds m.
func (s *SimSystem) AddMonitor(m monitor.Monitor) error {
	nq := s.QuerySystem
	if err := nq.monitors.Add(m); err != nil {
		return sire.ErrDecorate(err, "SimSystem.AddMonitor")
	}
	nq.data.bump(false)
	s.QuerySystem = nq
	return nil
}

// RemoveMonitor removes the monitor called name.
func (s *SimSystem) RemoveMonitor(name string) error {
	nq := s.QuerySystem
	if err := nq.monitors.Remove(name); err != nil {
		return sire.ErrDecorate(err, "SimSystem.RemoveMonitor")
	}
	nq.data.bump(false)
	s.QuerySystem = nq
	return nil
}

// Commit records the end of a simulation step: every monitor samples the
// system, then the version is incremented.
func (s *SimSystem) Commit() error {
	nq := s.QuerySystem
	if err := nq.monitors.Update(nq); err != nil {
		return sire.ErrDecorate(err, "SimSystem.Commit")
	}
	nq.data.bump(false)
	s.QuerySystem = nq
	return nil
}

// RollBack returns the system to the state of c. It can't fail, and rolling
// back twice to the same checkpoint is the same as doing it once.
func (s *SimSystem) RollBack(c CheckPoint) {
	if c.q.IsNull() {
		return
	}
	if c.q.ID() != s.ID() {
		sire.Log().Warnf("system %v rolled back to a checkpoint of system %v", s.ID(), c.q.ID())
	}
	s.QuerySystem = c.q
}
