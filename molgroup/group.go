/*
 * group.go, part of sire-go.
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

package molgroup

import (
	"slices"
	"sync"

	"github.com/google/btree"

	sire "github.com/chrys-athome/sire-sub022"
	"github.com/chrys-athome/sire-sub022/mol"
)

const degree = 16

// cloneMu serializes btree clones. Cloning writes to the cloned tree's
// copy-on-write context, and one snapshot may be cloned from several goroutines
// (for instance by the mtsmc worker and by the main simulation).
var cloneMu sync.Mutex

func cloneTree[T any](t *btree.BTreeG[T]) *btree.BTreeG[T] {
	cloneMu.Lock()
	defer cloneMu.Unlock()
	return t.Clone()
}

type entry struct {
	num mol.MolNum
	vm  mol.ViewsOfMol
}

func entryLess(a, b entry) bool { return a.num < b.num }

// MoleculeGroup is an ordered collection of molecule views with a number, a
// name and a version. The major version changes when the views in the group
// change, the minor version when only the molecule data does.
type MoleculeGroup struct {
	d *groupData
}

type groupData struct {
	num     MGNum
	name    MGName
	version sire.MajMin
	mols    *btree.BTreeG[entry]
	order   []mol.MolNum
	nviews  int
}

// New returns an empty group with a new number.
func New(name MGName) MoleculeGroup {
	num := NewMGNum()
	d := &groupData{
		num:     num,
		name:    name,
		version: versions.New(uint64(num)),
		mols:    btree.NewG(degree, entryLess),
	}
	d.version.IncrementMajor()
	return MoleculeGroup{d}
}

// NewWith returns a group with a new number and the given views.
func NewWith(name MGName, views ...mol.View) MoleculeGroup {
	g := New(name)
	g.Add(views...)
	return g
}

// IsNull reports whether g is the zero MoleculeGroup.
func (g MoleculeGroup) IsNull() bool { return g.d == nil }

func (g MoleculeGroup) Number() MGNum { return g.d.num }

func (g MoleculeGroup) Name() MGName { return g.d.name }

func (g MoleculeGroup) Version() sire.Version { return g.d.version.Version() }

// NMolecules returns the number of different molecules in the group.
func (g MoleculeGroup) NMolecules() int { return len(g.d.order) }

// NViews returns the number of views in the group, duplicates included.
func (g MoleculeGroup) NViews() int { return g.d.nviews }

func (g MoleculeGroup) IsEmpty() bool { return len(g.d.order) == 0 }

// MolNums returns the numbers of the molecules in the order they were added.
func (g MoleculeGroup) MolNums() []mol.MolNum {
	return slices.Clone(g.d.order)
}

// Contains reports whether the group holds at least one view of the molecule n.
func (g MoleculeGroup) Contains(n mol.MolNum) bool {
	return g.d.mols.Has(entry{num: n})
}

// ContainsView reports whether the group holds a view with exactly the atoms of v.
func (g MoleculeGroup) ContainsView(v mol.View) bool {
	e, ok := g.d.mols.Get(entry{num: v.Number()})
	return ok && e.vm.Contains(v.Sel)
}

// Intersects reports whether any atom of v is already in the group.
func (g MoleculeGroup) Intersects(v mol.View) bool {
	e, ok := g.d.mols.Get(entry{num: v.Number()})
	return ok && e.vm.Intersects(v.Sel)
}

// At returns the views of the molecule n. It fails with sire.MissingMolecule
// if the group has none.
func (g MoleculeGroup) At(n mol.MolNum) (mol.ViewsOfMol, error) {
	e, ok := g.d.mols.Get(entry{num: n})
	if !ok {
		return mol.ViewsOfMol{}, sire.Errorf(sire.MissingMolecule, "MoleculeGroup.At", "no molecule %v in group %q (%v)", n, g.d.name, g.d.num)
	}
	return e.vm, nil
}

// Molecule returns the data of the molecule n as held by the group.
func (g MoleculeGroup) Molecule(n mol.MolNum) (mol.Molecule, error) {
	vm, err := g.At(n)
	if err != nil {
		return mol.Molecule{}, sire.ErrDecorate(err, "MoleculeGroup.Molecule")
	}
	return vm.Mol, nil
}

// MoleculeAt returns the ith molecule of the group, in insertion order.
func (g MoleculeGroup) MoleculeAt(i int) (mol.ViewsOfMol, error) {
	if i < 0 || i >= len(g.d.order) {
		return mol.ViewsOfMol{}, sire.Errorf(sire.InvalidIndex, "MoleculeGroup.MoleculeAt", "index %d out of range for group %q with %d molecules", i, g.d.name, len(g.d.order))
	}
	e, _ := g.d.mols.Get(entry{num: g.d.order[i]})
	return e.vm, nil
}

// Molecules returns the contents of the group, in insertion order.
func (g MoleculeGroup) Molecules() *mol.Molecules {
	ms := mol.NewMolecules()
	for _, n := range g.d.order {
		e, _ := g.d.mols.Get(entry{num: n})
		ms.Set(e.vm)
	}
	return ms
}

// Each calls f for the views of every molecule, in insertion order, until f returns false.
func (g MoleculeGroup) Each(f func(mol.ViewsOfMol) bool) {
	for _, n := range g.d.order {
		e, _ := g.d.mols.Get(entry{num: n})
		if !f(e.vm) {
			return
		}
	}
}

// detach returns a private copy of the group data.
func (g MoleculeGroup) detach() *groupData {
	nd := *g.d
	nd.mols = cloneTree(g.d.mols)
	nd.order = slices.Clone(g.d.order)
	return &nd
}

func (d *groupData) add(v mol.View) {
	e, ok := d.mols.Get(entry{num: v.Number()})
	if !ok {
		d.order = append(d.order, v.Number())
		e = entry{num: v.Number()}
	}
	e.vm.Mol = v.Mol
	e.vm = e.vm.With(v.Sel)
	d.mols.ReplaceOrInsert(e)
	d.nviews++
}

func (d *groupData) removeMol(n mol.MolNum) bool {
	e, ok := d.mols.Delete(entry{num: n})
	if !ok {
		return false
	}
	d.nviews -= e.vm.NViews()
	d.order = slices.DeleteFunc(d.order, func(m mol.MolNum) bool { return m == n })
	return true
}

// Add adds the views to the group. Views of a molecule already in the group
// are appended to its views and its data is replaced by the data in the view.
// Empty views, and views whose selection doesn't fit their molecule, are
// ignored. It returns whether anything was added.
func (g *MoleculeGroup) Add(views ...mol.View) bool {
	var nd *groupData
	for _, v := range views {
		if v.Sel.IsEmpty() || !v.Fits() {
			continue
		}
		if nd == nil {
			nd = g.detach()
		}
		nd.add(v)
	}
	if nd == nil {
		return false
	}
	nd.version.IncrementMajor()
	g.d = nd
	return true
}

// AddIfUnique adds only the views that have no atom in common with what the
// group (or an earlier view in the same call) already holds for their
// molecule, and returns the views that were added.
func (g *MoleculeGroup) AddIfUnique(views ...mol.View) []mol.View {
	var nd *groupData
	var added []mol.View
	for _, v := range views {
		if v.Sel.IsEmpty() || !v.Fits() {
			continue
		}
		cur := g.d
		if nd != nil {
			cur = nd
		}
		if e, ok := cur.mols.Get(entry{num: v.Number()}); ok && e.vm.Intersects(v.Sel) {
			continue
		}
		if nd == nil {
			nd = g.detach()
		}
		nd.add(v)
		added = append(added, v)
	}
	if nd == nil {
		return nil
	}
	nd.version.IncrementMajor()
	g.d = nd
	return added
}

// Remove removes one copy of each of the given views. It returns the
// number of views removed.
func (g *MoleculeGroup) Remove(views ...mol.View) int {
	var nd *groupData
	removed := 0
	for _, v := range views {
		cur := g.d
		if nd != nil {
			cur = nd
		}
		e, ok := cur.mols.Get(entry{num: v.Number()})
		if !ok {
			continue
		}
		vm, found := e.vm.Without(v.Sel)
		if !found {
			continue
		}
		if nd == nil {
			nd = g.detach()
		}
		if vm.NViews() == 0 {
			nd.removeMol(v.Number())
		} else {
			nd.mols.ReplaceOrInsert(entry{num: v.Number(), vm: vm})
			nd.nviews--
		}
		removed++
	}
	if nd == nil {
		return 0
	}
	nd.version.IncrementMajor()
	g.d = nd
	return removed
}

// RemoveAll removes every view of the given molecules and returns whether
// the group changed.
func (g *MoleculeGroup) RemoveAll(nums ...mol.MolNum) bool {
	var nd *groupData
	for _, n := range nums {
		if !g.Contains(n) && (nd == nil || !nd.mols.Has(entry{num: n})) {
			continue
		}
		if nd == nil {
			nd = g.detach()
		}
		nd.removeMol(n)
	}
	if nd == nil {
		return false
	}
	nd.version.IncrementMajor()
	g.d = nd
	return true
}

// Clear removes everything from the group.
func (g *MoleculeGroup) Clear() bool {
	if len(g.d.order) == 0 {
		return false
	}
	nd := *g.d
	nd.mols = btree.NewG(degree, entryLess)
	nd.order = nil
	nd.nviews = 0
	nd.version.IncrementMajor()
	g.d = &nd
	return true
}

// Update replaces the data of the molecule m, if the group contains it and
// holds a different version. Only the minor version changes.
func (g *MoleculeGroup) Update(ms ...mol.Molecule) bool {
	var nd *groupData
	for _, m := range ms {
		cur := g.d
		if nd != nil {
			cur = nd
		}
		e, ok := cur.mols.Get(entry{num: m.Number()})
		if !ok || e.vm.Mol.Same(m) {
			continue
		}
		if nd == nil {
			nd = g.detach()
		}
		e.vm.Mol = m
		nd.mols.ReplaceOrInsert(e)
	}
	if nd == nil {
		return false
	}
	nd.version.IncrementMinor()
	g.d = nd
	return true
}

// SetContents makes ms the contents of the group. Nothing happens if the
// group already holds exactly those views and molecule versions. If only the
// molecule data differ, the change is a minor one.
func (g *MoleculeGroup) SetContents(ms *mol.Molecules) bool {
	all := ms.All()
	sameViews, sameData := len(all) == len(g.d.order), true
	if sameViews {
		for i, vm := range all {
			if g.d.order[i] != vm.Number() {
				sameViews = false
				break
			}
			e, _ := g.d.mols.Get(entry{num: vm.Number()})
			if !sameSelections(e.vm.Sels, vm.Sels) {
				sameViews = false
				break
			}
			if !e.vm.Mol.Same(vm.Mol) {
				sameData = false
			}
		}
	}
	if sameViews && sameData {
		return false
	}
	nd := *g.d
	nd.mols = btree.NewG(degree, entryLess)
	nd.order = make([]mol.MolNum, 0, len(all))
	nd.nviews = 0
	for _, vm := range all {
		for _, s := range vm.Sels {
			if v := (mol.View{Mol: vm.Mol, Sel: s}); !s.IsEmpty() && v.Fits() {
				nd.add(v)
			}
		}
	}
	if sameViews {
		nd.version.IncrementMinor()
	} else {
		nd.version.IncrementMajor()
	}
	g.d = &nd
	return true
}

func sameSelections(a, b []mol.Selection) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
