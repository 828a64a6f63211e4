/*
 * g1ff.go, part of sire-go.
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
	"fmt"
	"maps"
	"sync"

	"github.com/google/btree"

	sire "github.com/chrys-athome/sire-sub022"
	"github.com/chrys-athome/sire-sub022/mol"
	"github.com/chrys-athome/sire-sub022/molgroup"
)

// Component is the symbol of an energy component.
type Component string

// Total is the sum of every component of a set of forcefields.
const Total Component = "E_total"

// ComponentOf returns the symbol of the energy of the forcefield name
// with a kernel of the given kind.
func ComponentOf(kind, name string) Component {
	return Component(fmt.Sprintf("E_%s(%s)", kind, name))
}

// AllowOverlap is the name of the forcefield property that, when true, lets
// the same atom be added to a forcefield more than once.
const AllowOverlap = "allow_overlap_of_atoms"

// cached is what a forcefield remembers about one of its molecules.
type cached struct {
	num    mol.MolNum
	mol    mol.Molecule
	pm     mol.PropertyMap
	params Params
	energy float64
}

func cachedLess(a, b cached) bool { return a.num < b.num }

// G1FF is a forcefield over a single group of molecules. It mirrors its
// molecules in an internal MoleculeGroup, with the same number and name as
// the forcefield, and caches the parameters and energy of each molecule.
// Only the molecules a call touches are parameterised or evaluated again.
//
// Like the groups, a G1FF is a copy-on-write value. A call that fails
// leaves the forcefield as it was, and a call that succeeds increments the
// version once: the major number if the molecules in the forcefield changed,
// the minor number otherwise.
type G1FF struct {
	d *g1ffData
}

type g1ffData struct {
	group        molgroup.MoleculeGroup
	kernel       Kernel
	pm           mol.PropertyMap
	allowOverlap bool
	cache        *btree.BTreeG[cached]
	energy       float64
	version      sire.MajMin
}

// versions holds the version counters of every forcefield, by the number
// of its group.
var versions sire.Versions

// Option configures a new forcefield.
type Option func(*g1ffData)

// WithOverlap sets whether atoms may be added more than once.
func WithOverlap(allow bool) Option {
	return func(d *g1ffData) { d.allowOverlap = allow }
}

// WithPropertyMap sets the property map used for molecules added without one.
func WithPropertyMap(pm mol.PropertyMap) Option {
	return func(d *g1ffData) { d.pm = maps.Clone(pm) }
}

// New returns an empty forcefield called name, with the kernel k.
func New(name string, k Kernel, opts ...Option) G1FF {
	g := molgroup.New(molgroup.MGName(name))
	d := &g1ffData{
		group:   g,
		kernel:  k,
		pm:      mol.PropertyMap{},
		cache:   btree.NewG(16, cachedLess),
		version: versions.New(uint64(g.Number())),
	}
	for _, o := range opts {
		o(d)
	}
	d.version.IncrementMajor()
	return G1FF{d}
}

func (f G1FF) IsNull() bool { return f.d == nil }

func (f G1FF) Name() string { return string(f.d.group.Name()) }

// Number returns the number of the forcefield's group.
func (f G1FF) Number() molgroup.MGNum { return f.d.group.Number() }

// Group returns the molecules of the forcefield.
func (f G1FF) Group() molgroup.MoleculeGroup { return f.d.group }

func (f G1FF) Kernel() Kernel { return f.d.kernel }

func (f G1FF) Version() sire.Version { return f.d.version.Version() }

func (f G1FF) OverlapAllowed() bool { return f.d.allowOverlap }

// Component returns the symbol of the energy of the forcefield.
func (f G1FF) Component() Component { return ComponentOf(f.d.kernel.Kind(), f.Name()) }

// Components returns the symbols of every component the forcefield provides.
func (f G1FF) Components() []Component { return []Component{f.Component()} }

// Energy returns the energy of the forcefield.
func (f G1FF) Energy() float64 { return f.d.energy }

// EnergyOf returns the energy of the component c, failing with
// sire.MissingComponent if the forcefield doesn't provide it.
func (f G1FF) EnergyOf(c Component) (float64, error) {
	if c != f.Component() {
		return 0, sire.Errorf(sire.MissingComponent, "G1FF.EnergyOf", "forcefield %q has no component %s", f.Name(), c)
	}
	return f.d.energy, nil
}

// Energies returns every component of the forcefield with its energy.
func (f G1FF) Energies() map[Component]float64 {
	return map[Component]float64{f.Component(): f.d.energy}
}

// MoleculeEnergy returns the cached energy of the molecule n.
func (f G1FF) MoleculeEnergy(n mol.MolNum) (float64, error) {
	c, ok := f.d.cache.Get(cached{num: n})
	if !ok {
		return 0, sire.Errorf(sire.MissingMolecule, "G1FF.MoleculeEnergy", "no molecule %v in forcefield %q", n, f.Name())
	}
	return c.energy, nil
}

// Contains reports whether the forcefield holds any view of the molecule n.
func (f G1FF) Contains(n mol.MolNum) bool { return f.d.group.Contains(n) }

// Molecule returns the data of the molecule n held by the forcefield.
func (f G1FF) Molecule(n mol.MolNum) (mol.Molecule, error) {
	m, err := f.d.group.Molecule(n)
	return m, sire.ErrDecorate(err, "G1FF.Molecule")
}

// PropertyMap returns the property map the molecule n was parameterised with.
func (f G1FF) PropertyMap(n mol.MolNum) (mol.PropertyMap, error) {
	c, ok := f.d.cache.Get(cached{num: n})
	if !ok {
		return nil, sire.Errorf(sire.MissingMolecule, "G1FF.PropertyMap", "no molecule %v in forcefield %q", n, f.Name())
	}
	return maps.Clone(c.pm), nil
}

// Property returns the value of a forcefield or kernel property.
func (f G1FF) Property(name string) (any, bool) {
	if name == AllowOverlap {
		return f.d.allowOverlap, true
	}
	return f.d.kernel.Property(name)
}

// cloneMu serializes clones of the caches, which write to the cloned tree.
var cloneMu sync.Mutex

func (f G1FF) detach() *g1ffData {
	nd := *f.d
	cloneMu.Lock()
	nd.cache = f.d.cache.Clone()
	cloneMu.Unlock()
	return &nd
}

func (d *g1ffData) mapFor(pm mol.PropertyMap) mol.PropertyMap {
	if pm == nil {
		return d.pm
	}
	return maps.Clone(pm)
}

// recompute parameterises, if needed, and evaluates the molecule n from
// the group's current views. It is the hook run for every molecule that was
// added, removed or changed.
func (d *g1ffData) recompute(n mol.MolNum, pm mol.PropertyMap, reparam bool) error {
	vm, err := d.group.At(n)
	if err != nil {
		//removed
		d.cache.Delete(cached{num: n})
		return nil
	}
	c, ok := d.cache.Get(cached{num: n})
	if !ok {
		c = cached{num: n}
		reparam = true
	}
	if pm != nil {
		if !c.pm.Equal(pm) {
			reparam = true
		}
		c.pm = pm
	}
	if !c.mol.Same(vm.Mol) {
		reparam = true
	}
	if reparam {
		p, err := d.kernel.Parameterise(mol.Whole(vm.Mol), c.pm)
		if err != nil {
			return sire.ErrDecorate(err, "G1FF.recompute")
		}
		c.params = p
	}
	c.mol = vm.Mol
	c.energy = 0
	for _, v := range vm.Views() {
		e, err := d.kernel.Energy(v, c.params)
		if err != nil {
			return sire.ErrDecorate(err, "G1FF.recompute")
		}
		c.energy += e
	}
	d.cache.ReplaceOrInsert(c)
	return nil
}

func (d *g1ffData) sum() {
	d.energy = 0
	d.cache.Ascend(func(c cached) bool {
		d.energy += c.energy
		return true
	})
}

func (f *G1FF) commit(nd *g1ffData, major bool) {
	nd.sum()
	if major {
		nd.version.IncrementMajor()
	} else {
		nd.version.IncrementMinor()
	}
	f.d = nd
}

// checkOverlap fails with sire.DuplicateAtom if any view has an atom already in
// g, or in an earlier view of the list. A nil g is an empty group.
func checkOverlap(caller string, g *molgroup.MoleculeGroup, views []mol.View) error {
	seen := map[mol.MolNum]mol.Selection{}
	for _, v := range views {
		if v.Sel.IsEmpty() {
			continue
		}
		if g != nil && g.Intersects(v) {
			return sire.Errorf(sire.DuplicateAtom, caller, "atoms %v of molecule %v are already in %q", v.Sel, v.Number(), g.Name())
		}
		if s, ok := seen[v.Number()]; ok {
			if s.Intersects(v.Sel) {
				return sire.Errorf(sire.DuplicateAtom, caller, "atoms %v of molecule %v are added twice", v.Sel, v.Number())
			}
			seen[v.Number()] = s.Union(v.Sel)
		} else {
			seen[v.Number()] = v.Sel
		}
	}
	return nil
}

// Add adds the views to the forcefield, parameterising their molecules with pm,
// or with the forcefield's default map if pm is nil. Unless overlaps are
// allowed, it fails with sire.DuplicateAtom if an atom would be added twice.
// A view that doesn't fit its molecule is a sire.Incompatible error.
func (f *G1FF) Add(pm mol.PropertyMap, views ...mol.View) error {
	if err := mol.CheckViews("G1FF.Add", views...); err != nil {
		return err
	}
	if !f.d.allowOverlap {
		if err := checkOverlap("G1FF.Add", &f.d.group, views); err != nil {
			return err
		}
	}
	nd := f.detach()
	if !nd.group.Add(views...) {
		return nil
	}
	pm = nd.mapFor(pm)
	done := map[mol.MolNum]bool{}
	for _, v := range views {
		if done[v.Number()] || v.Sel.IsEmpty() {
			continue
		}
		done[v.Number()] = true
		if err := nd.recompute(v.Number(), pm, false); err != nil {
			return sire.ErrDecorate(err, "G1FF.Add")
		}
	}
	f.commit(nd, true)
	return nil
}

// Remove removes one copy of each view.
func (f *G1FF) Remove(views ...mol.View) (bool, error) {
	nd := f.detach()
	if nd.group.Remove(views...) == 0 {
		return false, nil
	}
	for _, v := range views {
		if err := nd.recompute(v.Number(), nil, false); err != nil {
			return false, sire.ErrDecorate(err, "G1FF.Remove")
		}
	}
	f.commit(nd, true)
	return true, nil
}

// RemoveAll removes every view of the given molecules.
func (f *G1FF) RemoveAll(nums ...mol.MolNum) bool {
	nd := f.detach()
	if !nd.group.RemoveAll(nums...) {
		return false
	}
	for _, n := range nums {
		nd.cache.Delete(cached{num: n})
	}
	f.commit(nd, true)
	return true
}

// Clear removes every molecule.
func (f *G1FF) Clear() bool {
	nd := f.detach()
	if !nd.group.Clear() {
		return false
	}
	nd.cache.Clear(false)
	f.commit(nd, true)
	return true
}

// Change gives the forcefield new data for molecules it holds. Molecules
// the forcefield doesn't hold, and versions it already has, are ignored.
func (f *G1FF) Change(ms ...mol.Molecule) (bool, error) {
	nd := f.detach()
	if !nd.group.Update(ms...) {
		return false, nil
	}
	for _, m := range ms {
		if !nd.group.Contains(m.Number()) {
			continue
		}
		if err := nd.recompute(m.Number(), nil, false); err != nil {
			return false, sire.ErrDecorate(err, "G1FF.Change")
		}
	}
	f.commit(nd, false)
	return true, nil
}

// SetContents makes ms the contents of the forcefield, parameterised with pm
// (or the default map, if nil). Nothing is recomputed, and the version is
// kept, if the forcefield already holds exactly these views and molecule
// versions with the same property maps.
func (f *G1FF) SetContents(ms *mol.Molecules, pm mol.PropertyMap) (bool, error) {
	if err := ms.Check("G1FF.SetContents"); err != nil {
		return false, err
	}
	nd := f.detach()
	pm = nd.mapFor(pm)
	before := nd.group.Version()
	changed := nd.group.SetContents(ms)
	if !changed {
		same := true
		nd.cache.Ascend(func(c cached) bool {
			same = c.pm.Equal(pm)
			return same
		})
		if same {
			return false, nil
		}
	}
	if !nd.allowOverlap {
		var views []mol.View
		for _, vm := range ms.All() {
			views = append(views, vm.Views()...)
		}
		if err := checkOverlap("G1FF.SetContents", nil, views); err != nil {
			return false, err
		}
	}
	nd.cache = btree.NewG(16, cachedLess)
	for _, n := range nd.group.MolNums() {
		if err := nd.recompute(n, pm, true); err != nil {
			return false, sire.ErrDecorate(err, "G1FF.SetContents")
		}
	}
	f.commit(nd, nd.group.Version().Major != before.Major)
	return true, nil
}

// SetProperty sets a property of the forcefield or of its kernel, and reports
// whether the forcefield has such a property. Changing a kernel property
// evaluates every molecule again.
func (f *G1FF) SetProperty(name string, value any) (bool, error) {
	nd := f.detach()
	if name == AllowOverlap {
		allow, ok := value.(bool)
		if !ok {
			return true, sire.Errorf(sire.InvalidArg, "G1FF.SetProperty", "%s wants a bool, not %T", AllowOverlap, value)
		}
		if allow == nd.allowOverlap {
			return true, nil
		}
		if !allow {
			var views []mol.View
			nd.group.Each(func(vm mol.ViewsOfMol) bool {
				views = append(views, vm.Views()...)
				return true
			})
			if err := checkOverlap("G1FF.SetProperty", nil, views); err != nil {
				return true, err
			}
		}
		nd.allowOverlap = allow
		f.commit(nd, false)
		return true, nil
	}
	k, ok, err := nd.kernel.SetProperty(name, value)
	if !ok || err != nil {
		return ok, sire.ErrDecorate(err, "G1FF.SetProperty")
	}
	nd.kernel = k
	for _, n := range nd.group.MolNums() {
		if err := nd.recompute(n, nil, true); err != nil {
			return true, sire.ErrDecorate(err, "G1FF.SetProperty")
		}
	}
	f.commit(nd, false)
	return true, nil
}
