/*
 * molgroups.go, part of sire-go.
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
	"maps"
	"slices"

	"github.com/google/btree"

	sire "github.com/chrys-athome/sire-sub022"
	"github.com/chrys-athome/sire-sub022/mol"
)

type groupEntry struct {
	num MGNum
	g   MoleculeGroup
}

func groupLess(a, b groupEntry) bool { return a.num < b.num }

// indexEntry lists, sorted, the groups holding one molecule. The slice is
// never modified in place.
type indexEntry struct {
	num    mol.MolNum
	groups []MGNum
}

func indexLess(a, b indexEntry) bool { return a.num < b.num }

// MolGroups is a registry of molecule groups. Besides the groups, it keeps the
// position of each group, the groups under each name and the groups holding
// each molecule. The three indexes are updated together with the groups, and
// a failed call leaves the registry as it was.
//
// A registry has no number of its own, so a loaded registry restarts its
// version counters from the saved version. Its versions only order the
// history of the one system that holds it.
//
// The zero MolGroups is not usable, use NewMolGroups.
type MolGroups struct {
	d *registry
}

type registry struct {
	version sire.MajMin
	groups  *btree.BTreeG[groupEntry]
	order   []MGNum
	names   map[MGName][]MGNum
	index   *btree.BTreeG[indexEntry]
}

// NewMolGroups returns an empty registry.
func NewMolGroups() MolGroups {
	return MolGroups{&registry{
		version: sire.NewMajMin(),
		groups:  btree.NewG(degree, groupLess),
		names:   map[MGName][]MGNum{},
		index:   btree.NewG(degree, indexLess),
	}}
}

func (gs MolGroups) Version() sire.Version { return gs.d.version.Version() }

func (gs MolGroups) NGroups() int { return len(gs.d.order) }

// MGNums returns the numbers of the groups in registry order.
func (gs MolGroups) MGNums() []MGNum { return slices.Clone(gs.d.order) }

// ContainsGroup reports whether the group n is in the registry.
func (gs MolGroups) ContainsGroup(n MGNum) bool {
	return gs.d.groups.Has(groupEntry{num: n})
}

// At returns the group n, or a sire.MissingGroup error.
func (gs MolGroups) At(n MGNum) (MoleculeGroup, error) {
	e, ok := gs.d.groups.Get(groupEntry{num: n})
	if !ok {
		return MoleculeGroup{}, sire.Errorf(sire.MissingGroup, "MolGroups.At", "no group %v", n)
	}
	return e.g, nil
}

func (d *registry) at(n MGNum) MoleculeGroup {
	e, _ := d.groups.Get(groupEntry{num: n})
	return e.g
}

// Groups returns the groups in registry order.
func (gs MolGroups) Groups() []MoleculeGroup {
	ret := make([]MoleculeGroup, len(gs.d.order))
	for i, n := range gs.d.order {
		ret[i] = gs.d.at(n)
	}
	return ret
}

// Map resolves id to the numbers of the groups it identifies. It never
// returns an empty slice without an error: an id that matches nothing fails
// with sire.MissingGroup, an index out of range with sire.InvalidIndex. A name
// can match several groups.
func (gs MolGroups) Map(id MGID) ([]MGNum, error) {
	d := gs.d
	switch id := id.(type) {
	case MGNum:
		if !d.groups.Has(groupEntry{num: id}) {
			return nil, sire.Errorf(sire.MissingGroup, "MolGroups.Map", "no group %v", id)
		}
		return []MGNum{id}, nil
	case MGName:
		nums := d.names[id]
		if len(nums) == 0 {
			return nil, sire.Errorf(sire.MissingGroup, "MolGroups.Map", "no group called %q", string(id))
		}
		return slices.Clone(nums), nil
	case MGIdx:
		i := int(id)
		if i < 0 {
			i += len(d.order)
		}
		if i < 0 || i >= len(d.order) {
			return nil, sire.Errorf(sire.InvalidIndex, "MolGroups.Map", "index %d out of range for %d groups", int(id), len(d.order))
		}
		return []MGNum{d.order[i]}, nil
	case MGAll:
		if len(d.order) == 0 {
			return nil, sire.Errorf(sire.MissingGroup, "MolGroups.Map", "the registry has no groups")
		}
		return slices.Clone(d.order), nil
	}
	return nil, sire.Errorf(sire.InvalidArg, "MolGroups.Map", "unknown group identifier %v", id)
}

// GroupNumber resolves id to exactly one group number. An id matching
// more than one group fails with sire.DuplicateGroup.
func (gs MolGroups) GroupNumber(id MGID) (MGNum, error) {
	nums, err := gs.Map(id)
	if err != nil {
		return 0, sire.ErrDecorate(err, "MolGroups.GroupNumber")
	}
	if len(nums) > 1 {
		return 0, sire.Errorf(sire.DuplicateGroup, "MolGroups.GroupNumber", "%v matches %d groups", id, len(nums))
	}
	return nums[0], nil
}

// Group returns the one group identified by id, following the rules of GroupNumber.
func (gs MolGroups) Group(id MGID) (MoleculeGroup, error) {
	n, err := gs.GroupNumber(id)
	if err != nil {
		return MoleculeGroup{}, sire.ErrDecorate(err, "MolGroups.Group")
	}
	return gs.d.at(n), nil
}

// GroupsContaining returns, sorted, the numbers of the groups holding the molecule n.
func (gs MolGroups) GroupsContaining(n mol.MolNum) []MGNum {
	e, ok := gs.d.index.Get(indexEntry{num: n})
	if !ok {
		return nil
	}
	return slices.Clone(e.groups)
}

// Contains reports whether any group holds the molecule n.
func (gs MolGroups) Contains(n mol.MolNum) bool {
	return gs.d.index.Has(indexEntry{num: n})
}

// MolNums returns, sorted, the numbers of every molecule in the registry.
func (gs MolGroups) MolNums() []mol.MolNum {
	ret := make([]mol.MolNum, 0, gs.d.index.Len())
	gs.d.index.Ascend(func(e indexEntry) bool {
		ret = append(ret, e.num)
		return true
	})
	return ret
}

// NMolecules returns the number of different molecules in the registry.
func (gs MolGroups) NMolecules() int { return gs.d.index.Len() }

// Molecule returns the current data of the molecule n. All the groups
// holding n hold the same data.
func (gs MolGroups) Molecule(n mol.MolNum) (mol.Molecule, error) {
	e, ok := gs.d.index.Get(indexEntry{num: n})
	if !ok {
		return mol.Molecule{}, sire.Errorf(sire.MissingMolecule, "MolGroups.Molecule", "no molecule %v in any group", n)
	}
	return gs.d.at(e.groups[0]).Molecule(n)
}

// Views returns every view of the molecule n, by group.
func (gs MolGroups) Views(n mol.MolNum) (map[MGNum]mol.ViewsOfMol, error) {
	e, ok := gs.d.index.Get(indexEntry{num: n})
	if !ok {
		return nil, sire.Errorf(sire.MissingMolecule, "MolGroups.Views", "no molecule %v in any group", n)
	}
	ret := make(map[MGNum]mol.ViewsOfMol, len(e.groups))
	for _, g := range e.groups {
		vm, _ := gs.d.at(g).At(n)
		ret[g] = vm
	}
	return ret, nil
}

// MolNumbers returns, sorted, the numbers of the molecules called name.
func (gs MolGroups) MolNumbers(name mol.MolName) []mol.MolNum {
	var ret []mol.MolNum
	gs.d.index.Ascend(func(e indexEntry) bool {
		m, _ := gs.d.at(e.groups[0]).Molecule(e.num)
		if m.Name() == name {
			ret = append(ret, e.num)
		}
		return true
	})
	return ret
}

// MolNumber returns the number of the only molecule called name. It fails with
// sire.MissingMolecule if there is none and with sire.DuplicateMolecule if
// there is more than one.
func (gs MolGroups) MolNumber(name mol.MolName) (mol.MolNum, error) {
	nums := gs.MolNumbers(name)
	switch len(nums) {
	case 0:
		return 0, sire.Errorf(sire.MissingMolecule, "MolGroups.MolNumber", "no molecule called %q", string(name))
	case 1:
		return nums[0], nil
	}
	return 0, sire.Errorf(sire.DuplicateMolecule, "MolGroups.MolNumber", "%d molecules are called %q", len(nums), string(name))
}

// detach returns a private copy of the registry data. Groups are values,
// so only the containers need copying.
func (gs MolGroups) detach() *registry {
	nd := *gs.d
	nd.groups = cloneTree(gs.d.groups)
	nd.index = cloneTree(gs.d.index)
	nd.order = slices.Clone(gs.d.order)
	nd.names = maps.Clone(gs.d.names)
	return &nd
}

// indexAdd records that group g holds the molecule n.
func (d *registry) indexAdd(n mol.MolNum, g MGNum) {
	e, _ := d.index.Get(indexEntry{num: n})
	i, found := slices.BinarySearch(e.groups, g)
	if found {
		return
	}
	e.num = n
	e.groups = slices.Insert(slices.Clone(e.groups), i, g)
	d.index.ReplaceOrInsert(e)
}

func (d *registry) indexRemove(n mol.MolNum, g MGNum) {
	e, ok := d.index.Get(indexEntry{num: n})
	if !ok {
		return
	}
	i, found := slices.BinarySearch(e.groups, g)
	if !found {
		return
	}
	if len(e.groups) == 1 {
		d.index.Delete(e)
		return
	}
	e.groups = slices.Delete(slices.Clone(e.groups), i, i+1)
	d.index.ReplaceOrInsert(e)
}

// set stores the new state of a group already in the registry and brings the
// reverse index up to date with its membership.
func (d *registry) set(ng MoleculeGroup) {
	old := d.at(ng.Number())
	for _, n := range old.d.order {
		if !ng.Contains(n) {
			d.indexRemove(n, ng.Number())
		}
	}
	for _, n := range ng.d.order {
		if !old.Contains(n) {
			d.indexAdd(n, ng.Number())
		}
	}
	d.groups.ReplaceOrInsert(groupEntry{num: ng.Number(), g: ng})
}

// canonical returns the registry's data for the molecule of v, if it has any.
func (d *registry) canonical(n mol.MolNum) (mol.Molecule, bool) {
	e, ok := d.index.Get(indexEntry{num: n})
	if !ok {
		return mol.Molecule{}, false
	}
	m, err := d.at(e.groups[0]).Molecule(n)
	return m, err == nil
}

// bump increments the major version if the membership changed, the minor one otherwise.
func (d *registry) bump(major bool) {
	if major {
		d.version.IncrementMajor()
	} else {
		d.version.IncrementMinor()
	}
}

// Add inserts g in the registry. Molecules of g that the registry already holds
// take the registry's data, so a molecule never has two different contents.
// Adding a group that is already in the registry does nothing and returns false.
func (gs *MolGroups) Add(g MoleculeGroup) bool {
	if g.IsNull() || gs.ContainsGroup(g.Number()) {
		return false
	}
	nd := gs.detach()
	var stale []mol.Molecule
	for _, n := range g.d.order {
		if m, ok := nd.canonical(n); ok {
			stale = append(stale, m)
		}
	}
	g.Update(stale...)
	nd.groups.ReplaceOrInsert(groupEntry{num: g.Number(), g: g})
	nd.order = append(nd.order, g.Number())
	nd.names[g.Name()] = append(slices.Clone(nd.names[g.Name()]), g.Number())
	for _, n := range g.d.order {
		nd.indexAdd(n, g.Number())
	}
	nd.version.IncrementMajor()
	gs.d = nd
	return true
}

// Remove removes every group identified by id.
func (gs *MolGroups) Remove(id MGID) error {
	nums, err := gs.Map(id)
	if err != nil {
		return sire.ErrDecorate(err, "MolGroups.Remove")
	}
	nd := gs.detach()
	for _, num := range nums {
		g := nd.at(num)
		for _, n := range g.d.order {
			nd.indexRemove(n, num)
		}
		nd.groups.Delete(groupEntry{num: num})
		nd.order = slices.DeleteFunc(nd.order, func(x MGNum) bool { return x == num })
		named := slices.DeleteFunc(slices.Clone(nd.names[g.Name()]), func(x MGNum) bool { return x == num })
		if len(named) == 0 {
			delete(nd.names, g.Name())
		} else {
			nd.names[g.Name()] = named
		}
	}
	nd.version.IncrementMajor()
	gs.d = nd
	return nil
}

// Update pushes m into every group holding its molecule. It returns whether
// anything changed.
func (gs *MolGroups) Update(m mol.Molecule) bool {
	return gs.UpdateAll(mol.NewMolecules(mol.Whole(m)))
}

// UpdateAll pushes the data of every molecule in ms into the groups holding it.
// Molecules that are not in the registry are ignored.
func (gs *MolGroups) UpdateAll(ms *mol.Molecules) bool {
	var nd *registry
	for _, vm := range ms.All() {
		cur := gs.d
		if nd != nil {
			cur = nd
		}
		e, ok := cur.index.Get(indexEntry{num: vm.Number()})
		if !ok {
			continue
		}
		if c, _ := cur.canonical(vm.Number()); c.Same(vm.Mol) {
			continue
		}
		if nd == nil {
			nd = gs.detach()
		}
		for _, num := range e.groups {
			g := nd.at(num)
			g.Update(vm.Mol)
			nd.groups.ReplaceOrInsert(groupEntry{num: num, g: g})
		}
	}
	if nd == nil {
		return false
	}
	nd.version.IncrementMinor()
	gs.d = nd
	return true
}

// harmonize gives every view the registry's data for its molecule.
func (d *registry) harmonize(views []mol.View) []mol.View {
	ret := make([]mol.View, len(views))
	for i, v := range views {
		if c, ok := d.canonical(v.Number()); ok && !c.Same(v.Mol) {
			v.Mol = c
		}
		ret[i] = v
	}
	return ret
}

// modify runs f on a copy of each group identified by id, and commits if
// any of them changed. f reports whether the group's membership changed.
func (gs *MolGroups) modify(caller string, id MGID, f func(g *MoleculeGroup) (changed, major bool)) (bool, error) {
	nums, err := gs.Map(id)
	if err != nil {
		return false, sire.ErrDecorate(err, caller)
	}
	nd := gs.detach()
	changed, major := false, false
	for _, num := range nums {
		g := nd.at(num)
		c, m := f(&g)
		if !c {
			continue
		}
		changed = true
		major = major || m
		nd.set(g)
	}
	if !changed {
		return false, nil
	}
	nd.bump(major)
	gs.d = nd
	return true, nil
}

// AddViews adds the views to every group identified by id. Molecules
// the registry already holds keep the registry's data. It fails with
// sire.Incompatible, adding nothing, if a view doesn't fit its molecule.
func (gs *MolGroups) AddViews(id MGID, views ...mol.View) error {
	if err := mol.CheckViews("MolGroups.AddViews", views...); err != nil {
		return err
	}
	views = gs.d.harmonize(views)
	_, err := gs.modify("MolGroups.AddViews", id, func(g *MoleculeGroup) (bool, bool) {
		c := g.Add(views...)
		return c, c
	})
	return err
}

// AddIfUnique adds, to each group identified by id, the views with no atom
// already in that group. It returns, by group, the views actually added.
func (gs *MolGroups) AddIfUnique(id MGID, views ...mol.View) (map[MGNum][]mol.View, error) {
	if err := mol.CheckViews("MolGroups.AddIfUnique", views...); err != nil {
		return nil, err
	}
	views = gs.d.harmonize(views)
	added := map[MGNum][]mol.View{}
	_, err := gs.modify("MolGroups.AddIfUnique", id, func(g *MoleculeGroup) (bool, bool) {
		a := g.AddIfUnique(views...)
		if len(a) == 0 {
			return false, false
		}
		added[g.Number()] = a
		return true, true
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// RemoveViews removes one copy of each view from every group identified by id.
func (gs *MolGroups) RemoveViews(id MGID, views ...mol.View) (bool, error) {
	return gs.modify("MolGroups.RemoveViews", id, func(g *MoleculeGroup) (bool, bool) {
		c := g.Remove(views...) > 0
		return c, c
	})
}

// RemoveAll empties every group identified by id.
func (gs *MolGroups) RemoveAll(id MGID) (bool, error) {
	return gs.modify("MolGroups.RemoveAll", id, func(g *MoleculeGroup) (bool, bool) {
		c := g.Clear()
		return c, c
	})
}

// RemoveMolecule removes every view of the molecule n from the groups identified by id.
func (gs *MolGroups) RemoveMolecule(n mol.MolNum, id MGID) (bool, error) {
	return gs.modify("MolGroups.RemoveMolecule", id, func(g *MoleculeGroup) (bool, bool) {
		c := g.RemoveAll(n)
		return c, c
	})
}

// SetContents makes ms the contents of every group identified by id.
func (gs *MolGroups) SetContents(id MGID, ms *mol.Molecules) (bool, error) {
	if err := ms.Check("MolGroups.SetContents"); err != nil {
		return false, err
	}
	h := mol.NewMolecules()
	for _, vm := range ms.All() {
		if c, ok := gs.d.canonical(vm.Number()); ok {
			vm.Mol = c
		}
		h.Set(vm)
	}
	return gs.modify("MolGroups.SetContents", id, func(g *MoleculeGroup) (bool, bool) {
		before := g.Version().Major
		c := g.SetContents(h)
		return c, c && g.Version().Major != before
	})
}

// CheckConsistency verifies that the position, name and molecule indexes
// agree with the groups. It returns a sire.Incompatible error describing
// the first disagreement found.
func (gs MolGroups) CheckConsistency() error {
	d := gs.d
	const caller = "MolGroups.CheckConsistency"
	if len(d.order) != d.groups.Len() {
		return sire.Errorf(sire.Incompatible, caller, "%d groups in order but %d stored", len(d.order), d.groups.Len())
	}
	named := 0
	for name, nums := range d.names {
		for _, n := range nums {
			e, ok := d.groups.Get(groupEntry{num: n})
			if !ok || e.g.Name() != name {
				return sire.Errorf(sire.Incompatible, caller, "name %q lists group %v", name, n)
			}
		}
		named += len(nums)
	}
	if named != len(d.order) {
		return sire.Errorf(sire.Incompatible, caller, "%d named groups, %d groups", named, len(d.order))
	}
	claimed := map[mol.MolNum][]MGNum{}
	for _, num := range d.order {
		e, ok := d.groups.Get(groupEntry{num: num})
		if !ok {
			return sire.Errorf(sire.Incompatible, caller, "group %v is in order but not stored", num)
		}
		for _, n := range e.g.d.order {
			claimed[n] = append(claimed[n], num)
		}
	}
	if len(claimed) != d.index.Len() {
		return sire.Errorf(sire.Incompatible, caller, "groups hold %d molecules, index has %d", len(claimed), d.index.Len())
	}
	var err error
	d.index.Ascend(func(e indexEntry) bool {
		want := claimed[e.num]
		slices.Sort(want)
		if !slices.Equal(want, e.groups) {
			err = sire.Errorf(sire.Incompatible, caller, "molecule %v is in groups %v, index says %v", e.num, want, e.groups)
			return false
		}
		var first mol.Molecule
		for i, num := range e.groups {
			m, _ := d.at(num).Molecule(e.num)
			if i == 0 {
				first = m
			} else if !first.Same(m) {
				err = sire.Errorf(sire.Incompatible, caller, "molecule %v has version %v in group %v and %v in group %v", e.num, first.Version(), e.groups[0], m.Version(), num)
				return false
			}
		}
		return true
	})
	return err
}
