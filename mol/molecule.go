/*
 * molecule.go, part of sire-go.
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
	"slices"
	"sort"

	sire "github.com/chrys-athome/sire-sub022"
	v3 "github.com/chrys-athome/sire-sub022/v3"
)

// Molecule is an immutable snapshot of one molecule: its atoms, coordinates,
// per-atom float properties and molecule-level metadata. Copying a Molecule
// copies a handle; the content is shared and never changes.
type Molecule struct {
	d *molData
}

type molData struct {
	num     MolNum
	name    MolName
	version sire.MajMin
	atoms   []Atom
	coords  *v3.Matrix
	props   map[string][]float64
	meta    map[string]any
}

// New returns a new molecule, with a new MolNum, from its atoms and coordinates.
// It fails with sire.Incompatible if the number of coordinates doesn't match
// the number of atoms.
func New(name MolName, atoms []Atom, coords *v3.Matrix) (Molecule, error) {
	if coords == nil {
		coords = v3.Zeros(0)
	}
	if coords.NVecs() != len(atoms) {
		return Molecule{}, sire.Errorf(sire.Incompatible, "mol.New", "%d coordinates given for %d atoms", coords.NVecs(), len(atoms))
	}
	num := NewMolNum()
	d := &molData{
		num:     num,
		name:    name,
		version: versions.New(uint64(num)),
		atoms:   make([]Atom, len(atoms)),
		coords:  coords.Clone(),
		props:   map[string][]float64{},
		meta:    map[string]any{},
	}
	for i, at := range atoms {
		at.Index = AtomIdx(i)
		d.atoms[i] = at
	}
	d.version.IncrementMajor()
	return Molecule{d}, nil
}

// IsNull reports whether m is the zero Molecule.
func (m Molecule) IsNull() bool { return m.d == nil }

func (m Molecule) Number() MolNum {
	if m.d == nil {
		return 0
	}
	return m.d.num
}

func (m Molecule) Name() MolName {
	if m.d == nil {
		return ""
	}
	return m.d.name
}

// Version returns the version of the molecule. Two Molecules with the same
// number and version have the same content.
func (m Molecule) Version() sire.Version {
	if m.d == nil {
		return sire.Version{}
	}
	return m.d.version.Version()
}

// Same reports whether m and o are the same version of the same molecule.
func (m Molecule) Same(o Molecule) bool {
	return m.Number() == o.Number() && m.Version() == o.Version()
}

func (m Molecule) NAtoms() int {
	if m.d == nil {
		return 0
	}
	return len(m.d.atoms)
}

// Atom returns the ith atom. Panics if out of range.
func (m Molecule) Atom(i int) Atom {
	return m.d.atoms[i]
}

// Coords returns a copy of the coordinates of the molecule.
func (m Molecule) Coords() *v3.Matrix {
	if m.d == nil {
		return v3.Zeros(0)
	}
	return m.d.coords.Clone()
}

// Coord returns the coordinates of the ith atom. Panics if out of range.
func (m Molecule) Coord(i int) [3]float64 {
	return m.d.coords.Vec(i)
}

// Centroid returns the geometric center of the atoms of the molecule.
func (m Molecule) Centroid() [3]float64 {
	if m.d == nil {
		return [3]float64{}
	}
	return m.d.coords.Centroid()
}

// Property returns a copy of the per-atom property name.
func (m Molecule) Property(name string) ([]float64, bool) {
	if m.d == nil {
		return nil, false
	}
	p, ok := m.d.props[name]
	if !ok {
		return nil, false
	}
	return slices.Clone(p), true
}

// PropertyNames returns the names of the per-atom properties, sorted.
func (m Molecule) PropertyNames() []string {
	if m.d == nil {
		return nil
	}
	ret := make([]string, 0, len(m.d.props))
	for k := range m.d.props {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// Meta returns the molecule-level value stored under key.
func (m Molecule) Meta(key string) (any, bool) {
	if m.d == nil {
		return nil, false
	}
	v, ok := m.d.meta[key]
	return v, ok
}

// MetaKeys returns the metadata keys, sorted.
func (m Molecule) MetaKeys() []string {
	if m.d == nil {
		return nil
	}
	ret := make([]string, 0, len(m.d.meta))
	for k := range m.d.meta {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// Edit returns an Editor working on a private copy of m.
func (m Molecule) Edit() *Editor {
	if m.d == nil {
		panic("mol: editing a null molecule")
	}
	d := *m.d
	d.coords = m.d.coords.Clone()
	d.props = make(map[string][]float64, len(m.d.props))
	for k, v := range m.d.props {
		d.props[k] = v
	}
	d.meta = make(map[string]any, len(m.d.meta))
	for k, v := range m.d.meta {
		d.meta[k] = v
	}
	return &Editor{d: &d}
}

// Editor changes a copy of a Molecule. Nothing is visible until Commit.
type Editor struct {
	d            *molData
	dirty        bool
	propsChanged bool
}

// SetName renames the molecule.
func (e *Editor) SetName(name MolName) *Editor {
	e.d.name = name
	e.dirty = true
	return e
}

// SetCoords replaces all the coordinates. It fails with sire.Incompatible
// if the number of coordinates is not the number of atoms.
func (e *Editor) SetCoords(c *v3.Matrix) error {
	if c.NVecs() != len(e.d.atoms) {
		return sire.Errorf(sire.Incompatible, "Editor.SetCoords", "%d coordinates given for %d atoms", c.NVecs(), len(e.d.atoms))
	}
	e.d.coords = c.Clone()
	e.dirty = true
	return nil
}

// SetAtomCoord sets the coordinates of the atom i.
func (e *Editor) SetAtomCoord(i int, c [3]float64) error {
	if i < 0 || i >= len(e.d.atoms) {
		return sire.Errorf(sire.InvalidIndex, "Editor.SetAtomCoord", "atom %d out of range (%d atoms)", i, len(e.d.atoms))
	}
	e.d.coords.SetVec(i, c)
	e.dirty = true
	return nil
}

// Translate moves every atom by d.
func (e *Editor) Translate(d [3]float64) *Editor {
	e.d.coords.Translate(d)
	e.dirty = true
	return e
}

// TranslateSelection moves the selected atoms by d.
func (e *Editor) TranslateSelection(sel Selection, d [3]float64) error {
	if sel.NAtoms() != len(e.d.atoms) {
		return sire.Errorf(sire.Incompatible, "Editor.TranslateSelection", "selection for %d atoms used on a molecule with %d", sel.NAtoms(), len(e.d.atoms))
	}
	for _, i := range sel.Indices() {
		c := e.d.coords.Vec(i)
		e.d.coords.SetVec(i, [3]float64{c[0] + d[0], c[1] + d[1], c[2] + d[2]})
	}
	e.dirty = true
	return nil
}

// SetProperty sets the per-atom property name. values must have one
// element per atom, otherwise sire.Incompatible is returned.
func (e *Editor) SetProperty(name string, values []float64) error {
	if len(values) != len(e.d.atoms) {
		return sire.Errorf(sire.Incompatible, "Editor.SetProperty", "property %q has %d values for %d atoms", name, len(values), len(e.d.atoms))
	}
	if _, ok := e.d.props[name]; !ok {
		e.propsChanged = true
	}
	e.d.props[name] = slices.Clone(values)
	e.dirty = true
	return nil
}

// RemoveProperty deletes the per-atom property name, if present.
func (e *Editor) RemoveProperty(name string) *Editor {
	if _, ok := e.d.props[name]; ok {
		delete(e.d.props, name)
		e.propsChanged = true
		e.dirty = true
	}
	return e
}

// SetMeta stores a molecule-level value. Only strings, bools and numbers
// are accepted (numbers are kept as float64), so that the metadata can be
// saved and searched.
func (e *Editor) SetMeta(key string, value any) error {
	switch v := value.(type) {
	case string, bool, float64:
	case int:
		value = float64(v)
	case int64:
		value = float64(v)
	case float32:
		value = float64(v)
	default:
		return sire.Errorf(sire.InvalidArg, "Editor.SetMeta", "unsupported metadata type %T for %q", value, key)
	}
	e.d.meta[key] = value
	e.dirty = true
	return nil
}

// Commit returns the edited molecule. Adding or removing properties gives
// a new major version, any other change a new minor version. Committing
// without changes returns the original version.
func (e *Editor) Commit() Molecule {
	d := *e.d
	//The editor may keep being used, so the committed data gets its own containers.
	d.coords = e.d.coords.Clone()
	d.props = make(map[string][]float64, len(e.d.props))
	for k, v := range e.d.props {
		d.props[k] = v
	}
	d.meta = make(map[string]any, len(e.d.meta))
	for k, v := range e.d.meta {
		d.meta[k] = v
	}
	if e.propsChanged {
		d.version.IncrementMajor()
	} else if e.dirty {
		d.version.IncrementMinor()
	}
	e.d.version = d.version
	e.dirty, e.propsChanged = false, false
	return Molecule{&d}
}
