/*
 * save.go, part of sire-go.
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
	"math/bits"

	sire "github.com/chrys-athome/sire-sub022"
	"github.com/chrys-athome/sire-sub022/stream"
	v3 "github.com/chrys-athome/sire-sub022/v3"
)

const (
	moleculeMagic  uint32 = 0x4d4f4c45 // "MOLE"
	selectionMagic uint32 = 0x53454c45 // "SELE"
)

type molKey struct {
	num MolNum
	v   sire.Version
}

// Saver writes molecules to a stream. A molecule version already written
// by the same Saver is written as a reference, so a molecule that is in many
// groups is stored only once.
type Saver struct {
	seen map[molKey]bool
}

func NewSaver() *Saver {
	return &Saver{seen: map[molKey]bool{}}
}

const (
	metaString byte = iota
	metaFloat
	metaBool
)

// Save writes m.
func (s *Saver) Save(w *stream.Writer, m Molecule) {
	w.Magic(moleculeMagic, 1)
	key := molKey{m.Number(), m.Version()}
	w.Bool(s.seen[key])
	w.Uint64(uint64(key.num))
	w.Version(key.v)
	if s.seen[key] {
		return
	}
	s.seen[key] = true
	d := m.d
	w.String(string(d.name))
	w.Int(len(d.atoms))
	for _, at := range d.atoms {
		w.String(at.Name)
		w.String(at.Element.Symbol)
	}
	w.Float64s(d.coords.RawVecs())
	names := m.PropertyNames()
	w.Int(len(names))
	for _, n := range names {
		w.String(n)
		w.Float64s(d.props[n])
	}
	keys := m.MetaKeys()
	w.Int(len(keys))
	for _, k := range keys {
		w.String(k)
		switch v := d.meta[k].(type) {
		case string:
			w.Int(int(metaString))
			w.String(v)
		case float64:
			w.Int(int(metaFloat))
			w.Float64(v)
		case bool:
			w.Int(int(metaBool))
			w.Bool(v)
		}
	}
}

// Loader reads molecules written by a Saver. A loaded molecule shares the
// version counters of every other copy of it in the process, and the
// molecule number counter is advanced past every loaded number.
type Loader struct {
	mols map[molKey]Molecule
}

func NewLoader() *Loader {
	return &Loader{mols: map[molKey]Molecule{}}
}

// Load reads a molecule. Errors are recorded in r.
func (l *Loader) Load(r *stream.Reader) Molecule {
	r.Magic(moleculeMagic, 1)
	ref := r.Bool()
	key := molKey{MolNum(r.Uint64()), r.Version()}
	if r.Err() != nil {
		return Molecule{}
	}
	if ref {
		m, ok := l.mols[key]
		if !ok {
			r.Fail(sire.Errorf(sire.MissingMolecule, "Loader.Load", "reference to %v version %v, which was not loaded", key.num, key.v))
		}
		return m
	}
	d := &molData{num: key.num, name: MolName(r.String()), props: map[string][]float64{}, meta: map[string]any{}}
	nat := r.Len()
	d.atoms = make([]Atom, nat)
	for i := range d.atoms {
		d.atoms[i] = Atom{Name: r.String(), Index: AtomIdx(i), Element: Element{Symbol: r.String()}}
	}
	c, err := v3.NewMatrix(r.Float64s())
	if err == nil && c.NVecs() != nat {
		err = sire.Errorf(sire.Incompatible, "Loader.Load", "%d coordinates for %d atoms", c.NVecs(), nat)
	}
	if err != nil {
		r.Fail(err)
		return Molecule{}
	}
	d.coords = c
	np := r.Len()
	for i := 0; i < np; i++ {
		name, vals := r.String(), r.Float64s()
		if r.Err() == nil && len(vals) != nat {
			r.Fail(sire.Errorf(sire.Incompatible, "Loader.Load", "property %q has %d values for %d atoms", name, len(vals), nat))
		}
		d.props[name] = vals
	}
	nm := r.Len()
	for i := 0; i < nm; i++ {
		k := r.String()
		switch byte(r.Int()) {
		case metaString:
			d.meta[k] = r.String()
		case metaFloat:
			d.meta[k] = r.Float64()
		case metaBool:
			d.meta[k] = r.Bool()
		default:
			r.Fail(sire.Errorf(sire.VersionError, "Loader.Load", "unknown metadata type for %q", k))
		}
	}
	if r.Err() != nil {
		return Molecule{}
	}
	d.version = versions.Restore(uint64(key.num), key.v)
	AdvanceMolNums(key.num)
	m := Molecule{d}
	l.mols[key] = m
	return m
}

// SaveSelection writes a selection.
func SaveSelection(w *stream.Writer, s Selection) {
	w.Magic(selectionMagic, 1)
	w.Int(s.n)
	w.Uint64s(s.bits)
}

// LoadSelection reads a selection written by SaveSelection.
func LoadSelection(r *stream.Reader) Selection {
	r.Magic(selectionMagic, 1)
	n := r.Len()
	b := r.Uint64s()
	if r.Err() != nil {
		return Selection{}
	}
	if len(b) != nwords(n) {
		r.Fail(sire.Errorf(sire.Incompatible, "mol.LoadSelection", "%d words for %d atoms", len(b), n))
		return Selection{}
	}
	s := Selection{n: n, bits: b}
	if b == nil {
		s.bits = []uint64{}
	}
	for i, w := range s.bits {
		if i == len(s.bits)-1 && n%64 != 0 && w>>uint(n%64) != 0 {
			r.Fail(sire.Errorf(sire.InvalidIndex, "mol.LoadSelection", "atoms beyond %d selected", n))
			return Selection{}
		}
		s.count += bits.OnesCount64(w)
	}
	return s
}

// SaveMolecules writes a Molecules collection.
func (s *Saver) SaveMolecules(w *stream.Writer, ms *Molecules) {
	all := ms.All()
	w.Int(len(all))
	for _, vm := range all {
		s.Save(w, vm.Mol)
		w.Int(len(vm.Sels))
		for _, sel := range vm.Sels {
			SaveSelection(w, sel)
		}
	}
}

// LoadMolecules reads a collection written by SaveMolecules.
func (l *Loader) LoadMolecules(r *stream.Reader) *Molecules {
	ms := NewMolecules()
	n := r.Len()
	for i := 0; i < n && r.Err() == nil; i++ {
		m := l.Load(r)
		ns := r.Len()
		vm := ViewsOfMol{Mol: m, Sels: make([]Selection, 0, ns)}
		for j := 0; j < ns; j++ {
			vm.Sels = append(vm.Sels, LoadSelection(r))
		}
		if r.Err() == nil {
			r.Fail(CheckViews("Loader.LoadMolecules", vm.Views()...))
		}
		if r.Err() == nil {
			ms.Set(vm)
		}
	}
	return ms
}
