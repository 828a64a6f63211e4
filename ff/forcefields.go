/*
 * forcefields.go, part of sire-go.
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

package ff

import (
	"slices"
	"sort"

	sire "github.com/chrys-athome/sire-sub022"
	"github.com/chrys-athome/sire-sub022/mol"
	"github.com/chrys-athome/sire-sub022/molgroup"
)

// ForceFields is an ordered set of forcefields with unique names. Like the
// forcefields themselves, it is a copy-on-write value, and its mutating
// methods either succeed, or fail leaving it unchanged. As with
// molgroup.MolGroups, a loaded set restarts its version counters from the
// saved version.
type ForceFields struct {
	d *ffsData
}

type ffsData struct {
	ffs     []G1FF
	version sire.MajMin
}

func NewForceFields() ForceFields {
	d := &ffsData{version: sire.NewMajMin()}
	d.version.IncrementMajor()
	return ForceFields{d}
}

func (fs ForceFields) Version() sire.Version { return fs.d.version.Version() }

func (fs ForceFields) Len() int { return len(fs.d.ffs) }

// All returns the forcefields, in the order they were added.
func (fs ForceFields) All() []G1FF { return slices.Clone(fs.d.ffs) }

// Names returns the names of the forcefields, in the order they were added.
func (fs ForceFields) Names() []string {
	ret := make([]string, len(fs.d.ffs))
	for i, f := range fs.d.ffs {
		ret[i] = f.Name()
	}
	return ret
}

func (fs ForceFields) index(name string) int {
	return slices.IndexFunc(fs.d.ffs, func(f G1FF) bool { return f.Name() == name })
}

// Has reports whether there is a forcefield called name.
func (fs ForceFields) Has(name string) bool { return fs.index(name) >= 0 }

// Get returns the forcefield called name, or a sire.MissingForceField error.
func (fs ForceFields) Get(name string) (G1FF, error) {
	i := fs.index(name)
	if i < 0 {
		return G1FF{}, sire.Errorf(sire.MissingForceField, "ForceFields.Get", "no forcefield called %q", name)
	}
	return fs.d.ffs[i], nil
}

// Map returns the names of the forcefields whose groups are identified by id.
// It fails with sire.MissingGroup if there are none.
func (fs ForceFields) Map(id molgroup.MGID) ([]string, error) {
	var ret []string
	switch id := id.(type) {
	case molgroup.MGNum:
		for _, f := range fs.d.ffs {
			if f.Number() == id {
				ret = append(ret, f.Name())
			}
		}
	case molgroup.MGName:
		if fs.Has(string(id)) {
			ret = append(ret, string(id))
		}
	case molgroup.MGIdx:
		i := int(id)
		if i < 0 {
			i += len(fs.d.ffs)
		}
		if i < 0 || i >= len(fs.d.ffs) {
			return nil, sire.Errorf(sire.InvalidIndex, "ForceFields.Map", "index %d out of range for %d forcefields", int(id), len(fs.d.ffs))
		}
		ret = append(ret, fs.d.ffs[i].Name())
	case molgroup.MGAll:
		ret = fs.Names()
	}
	if len(ret) == 0 {
		return nil, sire.Errorf(sire.MissingGroup, "ForceFields.Map", "no forcefield group %v", id)
	}
	return ret, nil
}

// ByGroup returns the one forcefield whose group is identified by id.
func (fs ForceFields) ByGroup(id molgroup.MGID) (G1FF, error) {
	names, err := fs.Map(id)
	if err != nil {
		return G1FF{}, sire.ErrDecorate(err, "ForceFields.ByGroup")
	}
	if len(names) > 1 {
		return G1FF{}, sire.Errorf(sire.DuplicateGroup, "ForceFields.ByGroup", "%v matches %d forcefields", id, len(names))
	}
	return fs.Get(names[0])
}

// Components returns the energy components of every forcefield, sorted, followed by Total.
func (fs ForceFields) Components() []Component {
	var ret []Component
	for _, f := range fs.d.ffs {
		ret = append(ret, f.Components()...)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i] < ret[j] })
	return append(ret, Total)
}

// Energy returns the energy of the component c, or a sire.MissingComponent
// error if no forcefield provides it.
func (fs ForceFields) Energy(c Component) (float64, error) {
	if c == Total {
		return fs.Total(), nil
	}
	for _, f := range fs.d.ffs {
		if e, err := f.EnergyOf(c); err == nil {
			return e, nil
		}
	}
	return 0, sire.Errorf(sire.MissingComponent, "ForceFields.Energy", "no forcefield provides %s", c)
}

// Energies returns every component, Total included, with its energy.
func (fs ForceFields) Energies() map[Component]float64 {
	ret := map[Component]float64{Total: fs.Total()}
	for _, f := range fs.d.ffs {
		for c, e := range f.Energies() {
			ret[c] = e
		}
	}
	return ret
}

// Total returns the sum of the energies of every forcefield.
func (fs ForceFields) Total() float64 {
	var t float64
	for _, f := range fs.d.ffs {
		t += f.Energy()
	}
	return t
}

// Contains reports whether any forcefield holds the molecule n.
func (fs ForceFields) Contains(n mol.MolNum) bool {
	for _, f := range fs.d.ffs {
		if f.Contains(n) {
			return true
		}
	}
	return false
}

// Molecule returns the data of the molecule n from the first forcefield
// holding it. Every forcefield holds the same data.
func (fs ForceFields) Molecule(n mol.MolNum) (mol.Molecule, error) {
	for _, f := range fs.d.ffs {
		if f.Contains(n) {
			return f.Molecule(n)
		}
	}
	return mol.Molecule{}, sire.Errorf(sire.MissingMolecule, "ForceFields.Molecule", "no forcefield holds molecule %v", n)
}

// MolNums returns, sorted, the numbers of the molecules in any forcefield.
func (fs ForceFields) MolNums() []mol.MolNum {
	seen := map[mol.MolNum]bool{}
	var ret []mol.MolNum
	for _, f := range fs.d.ffs {
		for _, n := range f.Group().MolNums() {
			if !seen[n] {
				seen[n] = true
				ret = append(ret, n)
			}
		}
	}
	slices.Sort(ret)
	return ret
}

func (fs ForceFields) detach() *ffsData {
	nd := *fs.d
	nd.ffs = slices.Clone(fs.d.ffs)
	return &nd
}

func (fs *ForceFields) commit(nd *ffsData, major bool) {
	if major {
		nd.version.IncrementMajor()
	} else {
		nd.version.IncrementMinor()
	}
	fs.d = nd
}

// Add adds f. It fails with sire.DuplicateForceField if there is already a
// forcefield with the same name or group number.
func (fs *ForceFields) Add(f G1FF) error {
	for _, o := range fs.d.ffs {
		if o.Name() == f.Name() || o.Number() == f.Number() {
			return sire.Errorf(sire.DuplicateForceField, "ForceFields.Add", "there is already a forcefield %q (%v)", o.Name(), o.Number())
		}
	}
	nd := fs.detach()
	nd.ffs = append(nd.ffs, f)
	fs.commit(nd, true)
	return nil
}

// Remove removes the forcefield called name.
func (fs *ForceFields) Remove(name string) error {
	i := fs.index(name)
	if i < 0 {
		return sire.Errorf(sire.MissingForceField, "ForceFields.Remove", "no forcefield called %q", name)
	}
	nd := fs.detach()
	nd.ffs = slices.Delete(nd.ffs, i, i+1)
	fs.commit(nd, true)
	return nil
}

// Replace stores f in place of the forcefield with the same name.
func (fs *ForceFields) Replace(f G1FF) error {
	i := fs.index(f.Name())
	if i < 0 {
		return sire.Errorf(sire.MissingForceField, "ForceFields.Replace", "no forcefield called %q", f.Name())
	}
	old := fs.d.ffs[i]
	if old.d == f.d {
		return nil
	}
	nd := fs.detach()
	nd.ffs[i] = f
	fs.commit(nd, old.Version().Major != f.Version().Major)
	return nil
}

// each runs f on a copy of every forcefield, in order, and commits the
// ones that changed. f reports whether the forcefield's membership changed.
func (fs *ForceFields) each(caller string, f func(g *G1FF) (changed, major bool, err error)) (bool, error) {
	nd := fs.detach()
	changed, major := false, false
	for i := range nd.ffs {
		c, m, err := f(&nd.ffs[i])
		if err != nil {
			return false, sire.ErrDecorate(err, caller)
		}
		changed = changed || c
		major = major || m
	}
	if !changed {
		return false, nil
	}
	fs.commit(nd, major)
	return true, nil
}

// Change gives every forcefield holding them the new data of the molecules.
func (fs *ForceFields) Change(ms ...mol.Molecule) (bool, error) {
	return fs.each("ForceFields.Change", func(f *G1FF) (bool, bool, error) {
		c, err := f.Change(ms...)
		return c, false, err
	})
}

// RemoveMolecule removes the molecule n from every forcefield.
func (fs *ForceFields) RemoveMolecule(n mol.MolNum) bool {
	c, _ := fs.each("ForceFields.RemoveMolecule", func(f *G1FF) (bool, bool, error) {
		c := f.RemoveAll(n)
		return c, c, nil
	})
	return c
}

// AddViews adds the views to the forcefields whose groups are identified by id.
func (fs *ForceFields) AddViews(id molgroup.MGID, pm mol.PropertyMap, views ...mol.View) error {
	names, err := fs.Map(id)
	if err != nil {
		return sire.ErrDecorate(err, "ForceFields.AddViews")
	}
	_, err = fs.each("ForceFields.AddViews", func(f *G1FF) (bool, bool, error) {
		if !slices.Contains(names, f.Name()) {
			return false, false, nil
		}
		before := f.Version()
		if err := f.Add(pm, views...); err != nil {
			return false, false, err
		}
		return f.Version() != before, true, nil
	})
	return err
}

// RemoveViews removes one copy of each view from the forcefields identified by id.
func (fs *ForceFields) RemoveViews(id molgroup.MGID, views ...mol.View) (bool, error) {
	names, err := fs.Map(id)
	if err != nil {
		return false, sire.ErrDecorate(err, "ForceFields.RemoveViews")
	}
	return fs.each("ForceFields.RemoveViews", func(f *G1FF) (bool, bool, error) {
		if !slices.Contains(names, f.Name()) {
			return false, false, nil
		}
		c, err := f.Remove(views...)
		return c, c, err
	})
}

// SetProperty sets the property on every forcefield that has it. It fails with
// sire.MissingProperty if none does.
func (fs *ForceFields) SetProperty(name string, value any) error {
	accepted := false
	_, err := fs.each("ForceFields.SetProperty", func(f *G1FF) (bool, bool, error) {
		before := f.Version()
		ok, err := f.SetProperty(name, value)
		accepted = accepted || ok
		return f.Version() != before, false, err
	})
	if err != nil {
		return err
	}
	if !accepted {
		return sire.Errorf(sire.MissingProperty, "ForceFields.SetProperty", "no forcefield has a property %q", name)
	}
	return nil
}

// Equal reports whether both sets hold the same forcefields, at the same versions.
func (fs ForceFields) Equal(o ForceFields) bool {
	if fs.Version() != o.Version() || len(fs.d.ffs) != len(o.d.ffs) {
		return false
	}
	for i, f := range fs.d.ffs {
		g := o.d.ffs[i]
		if f.Name() != g.Name() || f.Number() != g.Number() || f.Version() != g.Version() || f.Energy() != g.Energy() {
			return false
		}
	}
	return true
}
