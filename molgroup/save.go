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

package molgroup

import (
	"slices"

	"github.com/google/btree"

	sire "github.com/chrys-athome/sire-sub022"
	"github.com/chrys-athome/sire-sub022/mol"
	"github.com/chrys-athome/sire-sub022/stream"
)

const (
	groupMagic     uint32 = 0x4d475250 // "MGRP"
	molGroupsMagic uint32 = 0x4d475053 // "MGPS"
)

// SaveGroup writes g. Molecules go through s, so each molecule version is
// written once per stream.
func SaveGroup(w *stream.Writer, s *mol.Saver, g MoleculeGroup) {
	w.Magic(groupMagic, 1)
	w.Uint64(uint64(g.d.num))
	w.String(string(g.d.name))
	w.Version(g.Version())
	w.Int(len(g.d.order))
	for _, n := range g.d.order {
		e, _ := g.d.mols.Get(entry{num: n})
		s.Save(w, e.vm.Mol)
		w.Int(len(e.vm.Sels))
		for _, sel := range e.vm.Sels {
			mol.SaveSelection(w, sel)
		}
	}
}

// LoadGroup reads a group written by SaveGroup, with the same number and version.
func LoadGroup(r *stream.Reader, l *mol.Loader) (MoleculeGroup, error) {
	r.Magic(groupMagic, 1)
	d := &groupData{
		num:  MGNum(r.Uint64()),
		name: MGName(r.String()),
		mols: btree.NewG(degree, entryLess),
	}
	v := r.Version()
	n := r.Len()
	for i := 0; i < n && r.Err() == nil; i++ {
		m := l.Load(r)
		ns := r.Len()
		for j := 0; j < ns && r.Err() == nil; j++ {
			sel := mol.LoadSelection(r)
			if r.Err() == nil && sel.NAtoms() != m.NAtoms() {
				r.Fail(sire.Errorf(sire.Incompatible, "molgroup.LoadGroup", "selection for %d atoms on molecule %v with %d", sel.NAtoms(), m.Number(), m.NAtoms()))
			}
			if r.Err() == nil {
				d.add(mol.View{Mol: m, Sel: sel})
			}
		}
	}
	if err := r.Err(); err != nil {
		return MoleculeGroup{}, sire.ErrDecorate(err, "molgroup.LoadGroup")
	}
	d.version = versions.Restore(uint64(d.num), v)
	AdvanceMGNums(d.num)
	return MoleculeGroup{d}, nil
}

// SaveMolGroups writes the registry and every group in it.
func SaveMolGroups(w *stream.Writer, s *mol.Saver, gs MolGroups) {
	w.Magic(molGroupsMagic, 1)
	w.Version(gs.Version())
	w.Int(len(gs.d.order))
	for _, g := range gs.Groups() {
		SaveGroup(w, s, g)
	}
}

// LoadMolGroups reads a registry written by SaveMolGroups. The indexes are
// rebuilt and checked, so the loaded registry answers every query the saved one did.
func LoadMolGroups(r *stream.Reader, l *mol.Loader) (MolGroups, error) {
	r.Magic(molGroupsMagic, 1)
	v := r.Version()
	n := r.Len()
	if err := r.Err(); err != nil {
		return MolGroups{}, sire.ErrDecorate(err, "molgroup.LoadMolGroups")
	}
	gs := NewMolGroups()
	d := gs.d
	for i := 0; i < n; i++ {
		g, err := LoadGroup(r, l)
		if err != nil {
			return MolGroups{}, sire.ErrDecorate(err, "molgroup.LoadMolGroups")
		}
		if d.groups.Has(groupEntry{num: g.Number()}) {
			return MolGroups{}, sire.Errorf(sire.DuplicateGroup, "molgroup.LoadMolGroups", "group %v saved twice", g.Number())
		}
		d.groups.ReplaceOrInsert(groupEntry{num: g.Number(), g: g})
		d.order = append(d.order, g.Number())
		d.names[g.Name()] = append(d.names[g.Name()], g.Number())
		for _, m := range g.d.order {
			d.indexAdd(m, g.Number())
		}
	}
	d.version = sire.RestoreMajMin(v)
	if err := gs.CheckConsistency(); err != nil {
		return MolGroups{}, sire.ErrDecorate(err, "molgroup.LoadMolGroups")
	}
	return gs, nil
}

// Equal reports whether both registries have the same version, the same
// groups in the same order, and the same contents and versions in every group.
func (gs MolGroups) Equal(o MolGroups) bool {
	if gs.Version() != o.Version() || !slices.Equal(gs.d.order, o.d.order) {
		return false
	}
	for _, n := range gs.d.order {
		if !gs.d.at(n).Equal(o.d.at(n)) {
			return false
		}
	}
	return true
}

// Equal reports whether both groups have the same number, name, version
// and views, and hold the same molecule versions.
func (g MoleculeGroup) Equal(o MoleculeGroup) bool {
	if g.d == o.d {
		return true
	}
	if g.IsNull() || o.IsNull() {
		return false
	}
	if g.d.num != o.d.num || g.d.name != o.d.name || g.Version() != o.Version() || !slices.Equal(g.d.order, o.d.order) {
		return false
	}
	for _, n := range g.d.order {
		a, _ := g.d.mols.Get(entry{num: n})
		b, _ := o.d.mols.Get(entry{num: n})
		if !a.vm.Mol.Same(b.vm.Mol) || !sameSelections(a.vm.Sels, b.vm.Sels) {
			return false
		}
	}
	return true
}
