/*
 * data.go, part of sire-go.
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
	"github.com/google/uuid"

	sire "github.com/chrys-athome/sire-sub022"
	"github.com/chrys-athome/sire-sub022/mol"
	"github.com/chrys-athome/sire-sub022/molgroup"
	"github.com/chrys-athome/sire-sub022/space"
)

// SystemID is the process-unique number of a system.
type SystemID uint64

var systemIDs sire.Incremint

var versions sire.Versions

// NewSystemID issues a new system number.
func NewSystemID() SystemID { return SystemID(systemIDs.Increment()) }

// AdvanceSystemIDs makes sure numbers issued from now on are larger than n.
func AdvanceSystemIDs(n SystemID) { systemIDs.Advance(uint64(n)) }

// SystemData holds the groups of a system and the space their molecules live in.
// Every molecule in a group has already been mapped into the space.
//
// The major version changes when the groups, or the molecules in them,
// change. The minor version changes when only the data of the molecules do.
type SystemData struct {
	d *sysData
}

type sysData struct {
	id      SystemID
	uid     uuid.UUID
	name    string
	groups  molgroup.MolGroups
	space   space.Space
	version sire.MajMin
}

// NewSystemData returns an empty system in cartesian space.
func NewSystemData(name string) SystemData {
	id := NewSystemID()
	d := &sysData{
		id:      id,
		uid:     uuid.New(),
		name:    name,
		groups:  molgroup.NewMolGroups(),
		space:   space.Cartesian{},
		version: versions.New(uint64(id)),
	}
	d.version.IncrementMajor()
	return SystemData{d}
}

func (sd SystemData) IsNull() bool { return sd.d == nil }

func (sd SystemData) ID() SystemID { return sd.d.id }

// UID is a universally unique identifier of the simulation, kept across
// restarts. The restart archive files checkpoints under it.
func (sd SystemData) UID() uuid.UUID { return sd.d.uid }

func (sd SystemData) Name() string { return sd.d.name }

func (sd SystemData) Version() sire.Version { return sd.d.version.Version() }

func (sd SystemData) Space() space.Space { return sd.d.space }

// Groups returns the registry of the system's groups.
func (sd SystemData) Groups() molgroup.MolGroups { return sd.d.groups }

// Group returns the one group identified by id.
func (sd SystemData) Group(id molgroup.MGID) (molgroup.MoleculeGroup, error) {
	g, err := sd.d.groups.Group(id)
	return g, sire.ErrDecorate(err, "SystemData.Group")
}

func (sd SystemData) Contains(n mol.MolNum) bool { return sd.d.groups.Contains(n) }

func (sd SystemData) NMolecules() int { return sd.d.groups.NMolecules() }

func (sd SystemData) MolNums() []mol.MolNum { return sd.d.groups.MolNums() }

// Molecule returns the current data of the molecule n.
func (sd SystemData) Molecule(n mol.MolNum) (mol.Molecule, error) {
	m, err := sd.d.groups.Molecule(n)
	return m, sire.ErrDecorate(err, "SystemData.Molecule")
}

func (sd SystemData) detach() *sysData {
	nd := *sd.d
	return &nd
}

func (sd *SystemData) commit(nd *sysData, major bool) {
	if major {
		nd.version.IncrementMajor()
	} else {
		nd.version.IncrementMinor()
	}
	sd.d = nd
}

// AddGroup adds g to the system. Its molecules are mapped into the space, or,
// if already in the system, take the system's data. Adding a group that is
// already in the system does nothing.
func (sd *SystemData) AddGroup(g molgroup.MoleculeGroup) error {
	if sd.d.groups.ContainsGroup(g.Number()) {
		return nil
	}
	nd := sd.detach()
	var mapped []mol.Molecule
	for _, n := range g.MolNums() {
		if nd.groups.Contains(n) {
			continue
		}
		m, _ := g.Molecule(n)
		mm, err := nd.space.Map(m)
		if err != nil {
			return sire.ErrDecorate(err, "SystemData.AddGroup")
		}
		mapped = append(mapped, mm)
	}
	g.Update(mapped...)
	nd.groups.Add(g)
	sd.commit(nd, true)
	return nil
}

// RemoveGroup removes every group identified by id.
func (sd *SystemData) RemoveGroup(id molgroup.MGID) error {
	nd := sd.detach()
	if err := nd.groups.Remove(id); err != nil {
		return sire.ErrDecorate(err, "SystemData.RemoveGroup")
	}
	sd.commit(nd, true)
	return nil
}

// Change maps m into the space and gives its data to every group holding it.
// It returns the mapped molecule, which is now the system's data for it. The
// minor version is incremented if anything changed. Molecules that are not in
// the system are mapped, but otherwise ignored.
func (sd *SystemData) Change(m mol.Molecule) (mol.Molecule, error) {
	mm, err := sd.d.space.Map(m)
	if err != nil {
		return mol.Molecule{}, sire.ErrDecorate(err, "SystemData.Change")
	}
	nd := sd.detach()
	if nd.groups.Update(mm) {
		sd.commit(nd, false)
	}
	return mm, nil
}

// ChangeAll is Change for many molecules at once.
func (sd *SystemData) ChangeAll(ms *mol.Molecules) (*mol.Molecules, error) {
	if ms.Len() == 1 {
		vm := ms.All()[0]
		mm, err := sd.Change(vm.Mol)
		if err != nil {
			return nil, err
		}
		vm.Mol = mm
		ret := mol.NewMolecules()
		ret.Set(vm)
		return ret, nil
	}
	mapped, err := sd.mapAll(ms)
	if err != nil {
		return nil, sire.ErrDecorate(err, "SystemData.ChangeAll")
	}
	nd := sd.detach()
	if nd.groups.UpdateAll(mapped) {
		sd.commit(nd, false)
	}
	return mapped, nil
}

func (sd SystemData) mapAll(ms *mol.Molecules) (*mol.Molecules, error) {
	ret := mol.NewMolecules()
	for _, vm := range ms.All() {
		mm, err := sd.d.space.Map(vm.Mol)
		if err != nil {
			return nil, err
		}
		vm.Mol = mm
		ret.Set(vm)
	}
	return ret, nil
}

// resolve maps every id to group numbers. It fails if any of them
// matches no group, or if there are no ids at all.
func (sd SystemData) resolve(ids []molgroup.MGID) ([]molgroup.MGNum, error) {
	if len(ids) == 0 {
		return nil, sire.Errorf(sire.MissingGroup, "SystemData.resolve", "no groups given")
	}
	var ret []molgroup.MGNum
	seen := map[molgroup.MGNum]bool{}
	for _, id := range ids {
		nums, err := sd.d.groups.Map(id)
		if err != nil {
			return nil, err
		}
		for _, n := range nums {
			if !seen[n] {
				seen[n] = true
				ret = append(ret, n)
			}
		}
	}
	return ret, nil
}

// Add adds the views in ms to every group identified by ids. The molecules are
// mapped into the space first. A molecule that is already in the system with
// different data is changed everywhere to the new data in the same call.
// It fails with sire.MissingGroup, and changes nothing, if any of the groups
// doesn't exist, and with sire.Incompatible if a view doesn't fit its
// molecule. The version is kept if nothing was added or changed.
func (sd *SystemData) Add(ms *mol.Molecules, ids ...molgroup.MGID) error {
	nums, err := sd.resolve(ids)
	if err != nil {
		return sire.ErrDecorate(err, "SystemData.Add")
	}
	if err := ms.Check("SystemData.Add"); err != nil {
		return err
	}
	mapped, err := sd.mapAll(ms)
	if err != nil {
		return sire.ErrDecorate(err, "SystemData.Add")
	}
	nd := sd.detach()
	before := nd.groups.Version()
	nd.groups.UpdateAll(mapped)
	var views []mol.View
	for _, vm := range mapped.All() {
		views = append(views, vm.Views()...)
	}
	for _, n := range nums {
		if err := nd.groups.AddViews(n, views...); err != nil {
			return sire.ErrDecorate(err, "SystemData.Add")
		}
	}
	after := nd.groups.Version()
	if after == before {
		return nil
	}
	sd.commit(nd, after.Major != before.Major)
	return nil
}

// AddView adds a single view, as Add.
func (sd *SystemData) AddView(v mol.View, ids ...molgroup.MGID) error {
	return sd.Add(mol.NewMolecules(v), ids...)
}

// Remove removes every view of the molecule n from the groups identified by
// ids, or from every group if no ids are given. It fails with
// sire.MissingMolecule if the system doesn't hold n.
func (sd *SystemData) Remove(n mol.MolNum, ids ...molgroup.MGID) (bool, error) {
	if !sd.d.groups.Contains(n) {
		return false, sire.Errorf(sire.MissingMolecule, "SystemData.Remove", "no molecule %v in system %q", n, sd.d.name)
	}
	var nums []molgroup.MGNum
	if len(ids) == 0 {
		nums = sd.d.groups.GroupsContaining(n)
	} else {
		var err error
		if nums, err = sd.resolve(ids); err != nil {
			return false, sire.ErrDecorate(err, "SystemData.Remove")
		}
	}
	nd := sd.detach()
	changed := false
	for _, g := range nums {
		c, err := nd.groups.RemoveMolecule(n, g)
		if err != nil {
			return false, sire.ErrDecorate(err, "SystemData.Remove")
		}
		changed = changed || c
	}
	if !changed {
		return false, nil
	}
	sd.commit(nd, true)
	return true, nil
}

// SetSpace makes s the space of the system and maps every molecule into it.
// It returns the molecules whose data changed.
func (sd *SystemData) SetSpace(s space.Space) (*mol.Molecules, error) {
	if s == nil {
		return nil, sire.Errorf(sire.InvalidArg, "SystemData.SetSpace", "nil space")
	}
	if s.Equal(sd.d.space) {
		return mol.NewMolecules(), nil
	}
	nd := sd.detach()
	nd.space = s
	changed := mol.NewMolecules()
	for _, n := range nd.groups.MolNums() {
		m, _ := nd.groups.Molecule(n)
		mm, err := s.Map(m)
		if err != nil {
			return nil, sire.ErrDecorate(err, "SystemData.SetSpace")
		}
		if !mm.Same(m) {
			changed.AddMolecule(mm)
		}
	}
	nd.groups.UpdateAll(changed)
	sd.commit(nd, false)
	return changed, nil
}

// bump records a change made outside the groups, to the forcefields or monitors.
func (sd *SystemData) bump(major bool) {
	sd.commit(sd.detach(), major)
}

// Equal reports whether both systems have the same identity, version, space and groups.
func (sd SystemData) Equal(o SystemData) bool {
	if sd.d == o.d {
		return true
	}
	return sd.d.id == o.d.id && sd.d.uid == o.d.uid && sd.d.name == o.d.name &&
		sd.Version() == o.Version() && sd.d.space.Equal(o.d.space) && sd.d.groups.Equal(o.d.groups)
}
