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

package ff

import (
	"slices"

	"github.com/google/btree"

	sire "github.com/chrys-athome/sire-sub022"
	"github.com/chrys-athome/sire-sub022/mol"
	"github.com/chrys-athome/sire-sub022/molgroup"
	"github.com/chrys-athome/sire-sub022/stream"
)

const (
	g1ffMagic        uint32 = 0x47314646 // "G1FF"
	forceFieldsMagic uint32 = 0x46464453 // "FFDS"
)

func savePropertyMap(w *stream.Writer, pm mol.PropertyMap) {
	keys := make([]string, 0, len(pm))
	for k := range pm {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	w.Int(len(keys))
	for _, k := range keys {
		w.String(k)
		w.String(pm[k])
	}
}

func loadPropertyMap(r *stream.Reader) mol.PropertyMap {
	n := r.Len()
	pm := make(mol.PropertyMap, n)
	for i := 0; i < n && r.Err() == nil; i++ {
		k := r.String()
		pm[k] = r.String()
	}
	return pm
}

// Save writes f. Only the molecules, the property maps and the kernel are
// written: parameters and energies are computed again on load.
func Save(w *stream.Writer, s *mol.Saver, f G1FF) {
	w.Magic(g1ffMagic, 1)
	w.Version(f.Version())
	w.String(f.d.kernel.Kind())
	f.d.kernel.Save(w)
	w.Bool(f.d.allowOverlap)
	savePropertyMap(w, f.d.pm)
	molgroup.SaveGroup(w, s, f.d.group)
	for _, n := range f.d.group.MolNums() {
		c, _ := f.d.cache.Get(cached{num: n})
		savePropertyMap(w, c.pm)
	}
}

// Load reads a forcefield written by Save.
func Load(r *stream.Reader, l *mol.Loader) (G1FF, error) {
	r.Magic(g1ffMagic, 1)
	v := r.Version()
	kind := r.String()
	if err := r.Err(); err != nil {
		return G1FF{}, sire.ErrDecorate(err, "ff.Load")
	}
	k, err := loadKernel(kind, r)
	if err != nil {
		return G1FF{}, sire.ErrDecorate(err, "ff.Load")
	}
	d := &g1ffData{kernel: k, allowOverlap: r.Bool(), pm: loadPropertyMap(r), cache: btree.NewG(16, cachedLess)}
	if err := r.Err(); err != nil {
		return G1FF{}, sire.ErrDecorate(err, "ff.Load")
	}
	if d.group, err = molgroup.LoadGroup(r, l); err != nil {
		return G1FF{}, sire.ErrDecorate(err, "ff.Load")
	}
	for _, n := range d.group.MolNums() {
		pm := loadPropertyMap(r)
		if err := r.Err(); err != nil {
			return G1FF{}, sire.ErrDecorate(err, "ff.Load")
		}
		if err := d.recompute(n, pm, true); err != nil {
			return G1FF{}, sire.ErrDecorate(err, "ff.Load")
		}
	}
	d.sum()
	d.version = versions.Restore(uint64(d.group.Number()), v)
	return G1FF{d}, nil
}

// SaveForceFields writes every forcefield of fs.
func SaveForceFields(w *stream.Writer, s *mol.Saver, fs ForceFields) {
	w.Magic(forceFieldsMagic, 1)
	w.Version(fs.Version())
	w.Int(len(fs.d.ffs))
	for _, f := range fs.d.ffs {
		Save(w, s, f)
	}
}

// LoadForceFields reads a set written by SaveForceFields.
func LoadForceFields(r *stream.Reader, l *mol.Loader) (ForceFields, error) {
	r.Magic(forceFieldsMagic, 1)
	v := r.Version()
	n := r.Len()
	if err := r.Err(); err != nil {
		return ForceFields{}, sire.ErrDecorate(err, "ff.LoadForceFields")
	}
	fs := NewForceFields()
	for i := 0; i < n; i++ {
		f, err := Load(r, l)
		if err != nil {
			return ForceFields{}, sire.ErrDecorate(err, "ff.LoadForceFields")
		}
		if err := fs.Add(f); err != nil {
			return ForceFields{}, sire.ErrDecorate(err, "ff.LoadForceFields")
		}
	}
	fs.d.version = sire.RestoreMajMin(v)
	return fs, nil
}
