/*
 * ff_test.go, part of sire-go.
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
	"bytes"
	"errors"
	"fmt"
	"math"
	"testing"

	sire "github.com/chrys-athome/sire-sub022"
	"github.com/chrys-athome/sire-sub022/mol"
	"github.com/chrys-athome/sire-sub022/molgroup"
	"github.com/chrys-athome/sire-sub022/stream"
	v3 "github.com/chrys-athome/sire-sub022/v3"
)

// spring returns a molecule with n atoms at x = 1, 2, ..., n, every one with k = 1
// and a property "energy" of 0.5.
func spring(Te *testing.T, n int) mol.Molecule {
	c := v3.Zeros(n)
	atoms := make([]mol.Atom, n)
	k := make([]float64, n)
	half := make([]float64, n)
	for i := range atoms {
		atoms[i] = mol.NewAtom(fmt.Sprintf("C%d", i+1), "C")
		c.SetVec(i, [3]float64{float64(i + 1), 0, 0})
		k[i] = 1
		half[i] = 0.5
	}
	m, err := mol.New("SPR", atoms, c)
	if err != nil {
		Te.Fatal(err)
	}
	e := m.Edit()
	if err := e.SetProperty("k", k); err != nil {
		Te.Fatal(err)
	}
	if err := e.SetProperty("energy", half); err != nil {
		Te.Fatal(err)
	}
	return e.Commit()
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestHarmonicEnergy(Te *testing.T) {
	fmt.Println("Harmonic forcefield test!")
	m := spring(Te, 2)
	f := New("rest", NewHarmonic([3]float64{}))
	if err := f.Add(nil, mol.Whole(m)); err != nil {
		Te.Fatal(err)
	}
	//1*1 + 1*4
	if !near(f.Energy(), 5) {
		Te.Errorf("Expected 5, got %v", f.Energy())
	}
	if f.Component() != "E_harmonic(rest)" {
		Te.Errorf("Bad component %s", f.Component())
	}
	if _, err := f.EnergyOf("E_clj(rest)"); !errors.Is(err, sire.MissingComponent) {
		Te.Errorf("Expected MissingComponent, got %v", err)
	}
	v := f.Version()
	moved := m.Edit().Translate([3]float64{1, 0, 0}).Commit()
	if ok, err := f.Change(moved); !ok || err != nil {
		Te.Fatalf("Change failed: %v %v", ok, err)
	}
	//4 + 9
	if !near(f.Energy(), 13) {
		Te.Errorf("Expected 13, got %v", f.Energy())
	}
	if f.Version().Major != v.Major || f.Version().Minor != v.Minor+1 {
		Te.Errorf("A change should be one minor bump: %v -> %v", v, f.Version())
	}
	if ok, _ := f.Change(moved); ok {
		Te.Error("Changing to the same version should do nothing")
	}
	if ok, err := f.SetProperty("centre", [3]float64{2, 0, 0}); !ok || err != nil {
		Te.Fatalf("SetProperty failed: %v %v", ok, err)
	}
	if !near(f.Energy(), 1) {
		Te.Errorf("Expected 1 after moving the centre, got %v", f.Energy())
	}
	if ok, _ := f.SetProperty("cutoff", 10.0); ok {
		Te.Error("The harmonic kernel has no cutoff")
	}
}

func TestMissingProperty(Te *testing.T) {
	c := v3.Zeros(1)
	m, _ := mol.New("BARE", []mol.Atom{mol.NewAtom("X", "C")}, c)
	f := New("rest", NewHarmonic([3]float64{}))
	v := f.Version()
	if err := f.Add(nil, mol.Whole(m)); !errors.Is(err, sire.MissingProperty) {
		Te.Errorf("Expected MissingProperty, got %v", err)
	}
	if f.Version() != v || f.Group().NMolecules() != 0 {
		Te.Error("A failed add changed the forcefield")
	}
	s := spring(Te, 1)
	if err := f.Add(mol.PropertyMap{"k": "energy"}, mol.Whole(s)); err != nil {
		Te.Fatal(err)
	}
	//k is read from "energy" = 0.5, r = 1
	if !near(f.Energy(), 0.5) {
		Te.Errorf("Property map ignored, energy %v", f.Energy())
	}
	if pm, _ := f.PropertyMap(s.Number()); pm.Source("k") != "energy" {
		Te.Errorf("Bad property map %v", pm)
	}
}

func TestOverlap(Te *testing.T) {
	fmt.Println("Forcefield overlap test!")
	m := spring(Te, 4)
	f := New("sum", NewPropertySum())
	if err := f.Add(nil, mol.View{Mol: m, Sel: mol.MustSelect(4, 0, 1)}); err != nil {
		Te.Fatal(err)
	}
	n, v, e := f.Group().NMolecules(), f.Version(), f.Energy()
	err := f.Add(nil, mol.View{Mol: m, Sel: mol.MustSelect(4, 3)}, mol.View{Mol: m, Sel: mol.MustSelect(4, 1, 2)})
	if !errors.Is(err, sire.DuplicateAtom) {
		Te.Errorf("Expected DuplicateAtom, got %v", err)
	}
	if f.Group().NMolecules() != n || f.Version() != v || f.Energy() != e || f.Group().NViews() != 1 {
		Te.Error("A rejected add changed the forcefield")
	}
	if err := f.Add(nil, mol.View{Mol: m, Sel: mol.MustSelect(4, 2)}, mol.View{Mol: m, Sel: mol.MustSelect(4, 2)}); !errors.Is(err, sire.DuplicateAtom) {
		Te.Errorf("Expected DuplicateAtom within one call, got %v", err)
	}
	o := New("sum2", NewPropertySum(), WithOverlap(true))
	if err := o.Add(nil, mol.Whole(m), mol.Whole(m)); err != nil {
		Te.Fatal(err)
	}
	//Duplicate views count twice
	if !near(o.Energy(), 4) {
		Te.Errorf("Expected 4, got %v", o.Energy())
	}
	if _, err := o.SetProperty(AllowOverlap, false); !errors.Is(err, sire.DuplicateAtom) {
		Te.Errorf("Expected DuplicateAtom when forbidding overlaps, got %v", err)
	}
	if !o.OverlapAllowed() {
		Te.Error("Failed SetProperty changed the forcefield")
	}
}

func TestSetContents(Te *testing.T) {
	a, b := spring(Te, 1), spring(Te, 2)
	f := New("sum", NewPropertySum())
	ms := mol.NewMolecules(mol.Whole(a), mol.Whole(b))
	if ok, err := f.SetContents(ms, nil); !ok || err != nil {
		Te.Fatal(ok, err)
	}
	v := f.Version()
	if ok, _ := f.SetContents(ms, nil); ok || f.Version() != v {
		Te.Error("Setting the same contents should do nothing")
	}
	if ok, _ := f.SetContents(ms, mol.PropertyMap{"energy": "k"}); !ok || f.Version().Major != v.Major {
		Te.Errorf("A new property map should rebuild as a minor change: %v", f.Version())
	}
	if !near(f.Energy(), 3) {
		Te.Errorf("Expected 3, got %v", f.Energy())
	}
	if ok, _ := f.SetContents(mol.NewMolecules(mol.Whole(a)), nil); !ok || f.Version().Major == v.Major {
		Te.Error("Dropping a molecule should be a major change")
	}
}

func TestForceFields(Te *testing.T) {
	fmt.Println("ForceFields test!")
	m := spring(Te, 2)
	h := New("rest", NewHarmonic([3]float64{}))
	s := New("sum", NewPropertySum())
	fs := NewForceFields()
	if err := fs.Add(h); err != nil {
		Te.Fatal(err)
	}
	if err := fs.Add(s); err != nil {
		Te.Fatal(err)
	}
	if err := fs.Add(New("rest", NewPropertySum())); !errors.Is(err, sire.DuplicateForceField) {
		Te.Errorf("Expected DuplicateForceField, got %v", err)
	}
	if err := fs.AddViews(molgroup.MGAll{}, nil, mol.Whole(m)); err != nil {
		Te.Fatal(err)
	}
	if e, _ := fs.Energy(Total); !near(e, 6) {
		Te.Errorf("Expected a total of 6, got %v", e)
	}
	if _, err := fs.Energy("E_nope(x)"); !errors.Is(err, sire.MissingComponent) {
		Te.Errorf("Expected MissingComponent, got %v", err)
	}
	if len(fs.Components()) != 3 || len(fs.Energies()) != 3 {
		Te.Errorf("Bad components %v", fs.Components())
	}
	if f, err := fs.ByGroup(s.Number()); err != nil || f.Name() != "sum" {
		Te.Errorf("ByGroup failed: %v", err)
	}
	before := fs
	err := fs.SetProperty("centre", "the middle")
	if !errors.Is(err, sire.InvalidArg) || !fs.Equal(before) {
		Te.Errorf("A failed SetProperty should leave everything as it was: %v", err)
	}
	if err := fs.SetProperty("colour", 1); !errors.Is(err, sire.MissingProperty) {
		Te.Errorf("Expected MissingProperty, got %v", err)
	}
	if err := fs.SetProperty("scale", 2.0); err != nil {
		Te.Fatal(err)
	}
	if !near(fs.Total(), 12) {
		Te.Errorf("Both kernels should be scaled: %v", fs.Total())
	}
	if !fs.RemoveMolecule(m.Number()) || fs.Contains(m.Number()) || fs.Total() != 0 {
		Te.Error("RemoveMolecule failed")
	}
	if err := fs.Remove("nope"); !errors.Is(err, sire.MissingForceField) {
		Te.Errorf("Expected MissingForceField, got %v", err)
	}
}

func TestSaveLoad(Te *testing.T) {
	m := spring(Te, 3)
	fs := NewForceFields()
	h := New("rest", NewHarmonic([3]float64{1, 1, 0}), WithOverlap(true))
	h.Add(mol.PropertyMap{"k": "energy"}, mol.Whole(m), mol.View{Mol: m, Sel: mol.MustSelect(3, 2)})
	s := New("sum", NewPropertySum())
	s.Add(nil, mol.Whole(m))
	fs.Add(h)
	fs.Add(s)
	var buf bytes.Buffer
	w := stream.NewWriter(&buf)
	SaveForceFields(w, mol.NewSaver(), fs)
	if w.Err() != nil {
		Te.Fatal(w.Err())
	}
	got, err := LoadForceFields(stream.NewReader(&buf), mol.NewLoader())
	if err != nil {
		Te.Fatal(err)
	}
	if !got.Equal(fs) {
		Te.Errorf("Loaded forcefields differ: %v %v", got.Energies(), fs.Energies())
	}
	gh, _ := got.Get("rest")
	if !gh.OverlapAllowed() || gh.Group().NViews() != 2 {
		Te.Error("Forcefield options or views not restored")
	}
	if pm, _ := gh.PropertyMap(m.Number()); pm["k"] != "energy" {
		Te.Errorf("Property map not restored: %v", pm)
	}
}
