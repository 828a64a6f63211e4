/*
 * view.go, part of sire-go.
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

package mol

import (
	sire "github.com/chrys-athome/sire-sub022"
)

// View is a molecule seen through a selection of its atoms (a partial molecule).
type View struct {
	Mol Molecule
	Sel Selection
}

// Whole returns a view of all the atoms of m.
func Whole(m Molecule) View {
	return View{Mol: m, Sel: SelectAll(m.NAtoms())}
}

// NewView returns a view of the atoms of m in sel. It fails with sire.Incompatible
// if sel was not made for a molecule with as many atoms as m.
func NewView(m Molecule, sel Selection) (View, error) {
	v := View{Mol: m, Sel: sel}
	if err := v.Check("mol.NewView"); err != nil {
		return View{}, err
	}
	return v, nil
}

// Number returns the number of the viewed molecule.
func (v View) Number() MolNum { return v.Mol.Number() }

// Fits reports whether the selection was made for a molecule with as many
// atoms as the viewed one.
func (v View) Fits() bool { return v.Sel.NAtoms() == v.Mol.NAtoms() }

// Check returns a sire.Incompatible error, from caller, if v doesn't fit.
func (v View) Check(caller string) error {
	if v.Fits() {
		return nil
	}
	return sire.Errorf(sire.Incompatible, caller, "selection for %d atoms used on molecule %v with %d", v.Sel.NAtoms(), v.Number(), v.Mol.NAtoms())
}

// CheckViews is Check on every view. It returns the first error.
func CheckViews(caller string, views ...View) error {
	for _, v := range views {
		if err := v.Check(caller); err != nil {
			return err
		}
	}
	return nil
}

// ViewsOfMol holds all the views of one molecule in a container. The same
// selection may appear more than once; multiplicity matters.
type ViewsOfMol struct {
	Mol  Molecule
	Sels []Selection
}

func (vm ViewsOfMol) Number() MolNum { return vm.Mol.Number() }

func (vm ViewsOfMol) NViews() int { return len(vm.Sels) }

// Views returns the views one by one.
func (vm ViewsOfMol) Views() []View {
	ret := make([]View, len(vm.Sels))
	for i, s := range vm.Sels {
		ret[i] = View{Mol: vm.Mol, Sel: s}
	}
	return ret
}

// Union returns the selection of every atom present in at least one view.
func (vm ViewsOfMol) Union() Selection {
	u := SelectNone(vm.Mol.NAtoms())
	for _, s := range vm.Sels {
		u = u.Union(s)
	}
	return u
}

// Contains reports whether one of the views has exactly the selection sel.
func (vm ViewsOfMol) Contains(sel Selection) bool {
	for _, s := range vm.Sels {
		if s.Equal(sel) {
			return true
		}
	}
	return false
}

// Intersects reports whether any atom of sel is already in one of the views.
func (vm ViewsOfMol) Intersects(sel Selection) bool {
	for _, s := range vm.Sels {
		if s.Intersects(sel) {
			return true
		}
	}
	return false
}

// With returns a copy of vm with one more view.
func (vm ViewsOfMol) With(sel Selection) ViewsOfMol {
	sels := make([]Selection, len(vm.Sels), len(vm.Sels)+1)
	copy(sels, vm.Sels)
	return ViewsOfMol{Mol: vm.Mol, Sels: append(sels, sel)}
}

// Without returns a copy of vm without the first view equal to sel,
// and whether such a view was found.
func (vm ViewsOfMol) Without(sel Selection) (ViewsOfMol, bool) {
	for i, s := range vm.Sels {
		if s.Equal(sel) {
			sels := make([]Selection, 0, len(vm.Sels)-1)
			sels = append(sels, vm.Sels[:i]...)
			sels = append(sels, vm.Sels[i+1:]...)
			return ViewsOfMol{Mol: vm.Mol, Sels: sels}, true
		}
	}
	return vm, false
}

// Molecules is an ordered collection of views, grouped by molecule.
// It is the batch type used to add or change many molecules at once.
// Unlike the library containers it is a plain, mutable container owned by its user.
type Molecules struct {
	order []MolNum
	m     map[MolNum]ViewsOfMol
}

// NewMolecules returns a collection with the given views.
func NewMolecules(views ...View) *Molecules {
	ms := &Molecules{m: map[MolNum]ViewsOfMol{}}
	for _, v := range views {
		ms.Add(v)
	}
	return ms
}

// Add adds a view. If the molecule is already present, its data is replaced by
// the data in v and the view appended.
func (ms *Molecules) Add(v View) {
	if ms.m == nil {
		ms.m = map[MolNum]ViewsOfMol{}
	}
	vm, ok := ms.m[v.Number()]
	if !ok {
		ms.order = append(ms.order, v.Number())
	}
	vm.Mol = v.Mol
	ms.m[v.Number()] = vm.With(v.Sel)
}

// AddMolecule adds a whole view of m.
func (ms *Molecules) AddMolecule(m Molecule) {
	ms.Add(Whole(m))
}

// Set stores vm, replacing whatever the collection had for that molecule.
func (ms *Molecules) Set(vm ViewsOfMol) {
	if ms.m == nil {
		ms.m = map[MolNum]ViewsOfMol{}
	}
	if _, ok := ms.m[vm.Number()]; !ok {
		ms.order = append(ms.order, vm.Number())
	}
	ms.m[vm.Number()] = vm
}

// Check is View.Check on every view in the collection.
func (ms *Molecules) Check(caller string) error {
	for _, vm := range ms.All() {
		if err := CheckViews(caller, vm.Views()...); err != nil {
			return err
		}
	}
	return nil
}

func (ms *Molecules) Len() int {
	if ms == nil {
		return 0
	}
	return len(ms.order)
}

// Numbers returns the molecule numbers, in insertion order.
func (ms *Molecules) Numbers() []MolNum {
	if ms == nil {
		return nil
	}
	return append([]MolNum(nil), ms.order...)
}

func (ms *Molecules) Get(n MolNum) (ViewsOfMol, bool) {
	if ms == nil {
		return ViewsOfMol{}, false
	}
	vm, ok := ms.m[n]
	return vm, ok
}

// All returns the ViewsOfMol in insertion order.
func (ms *Molecules) All() []ViewsOfMol {
	if ms == nil {
		return nil
	}
	ret := make([]ViewsOfMol, len(ms.order))
	for i, n := range ms.order {
		ret[i] = ms.m[n]
	}
	return ret
}

// PropertyMap maps the abstract property names a forcefield asks for
// (e.g. "charge") to the property actually read from the molecules.
type PropertyMap map[string]string

// Source returns the name of the property to read for name.
func (pm PropertyMap) Source(name string) string {
	if s, ok := pm[name]; ok {
		return s
	}
	return name
}

// Equal reports whether both maps select the same sources.
func (pm PropertyMap) Equal(o PropertyMap) bool {
	if len(pm) != len(o) {
		return false
	}
	for k, v := range pm {
		if o[k] != v {
			return false
		}
	}
	return true
}

// Record returns the searchable form of a molecule: its number, name,
// number of atoms, property names and metadata.
func Record(m Molecule) map[string]any {
	r := map[string]any{
		"number": float64(m.Number()),
		"name":   string(m.Name()),
		"natoms": float64(m.NAtoms()),
	}
	props := make([]any, 0)
	for _, p := range m.PropertyNames() {
		props = append(props, p)
	}
	r["properties"] = props
	for _, k := range m.MetaKeys() {
		if _, reserved := r[k]; reserved {
			continue
		}
		v, _ := m.Meta(k)
		r[k] = v
	}
	return r
}
