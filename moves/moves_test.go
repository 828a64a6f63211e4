/*
 * moves_test.go, part of sire-go.
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

package moves

import (
	"errors"
	"fmt"
	"testing"

	sire "github.com/chrys-athome/sire-sub022"
	"github.com/chrys-athome/sire-sub022/ff"
	"github.com/chrys-athome/sire-sub022/mol"
	"github.com/chrys-athome/sire-sub022/molgroup"
	"github.com/chrys-athome/sire-sub022/monitor"
	"github.com/chrys-athome/sire-sub022/system"
	v3 "github.com/chrys-athome/sire-sub022/v3"
)

// trapped returns a system of n one-atom molecules in a harmonic well
// around the origin, all in the group "free" and the forcefield "well".
func trapped(Te *testing.T, n int) *system.SimSystem {
	sys := system.NewSimSystem("trap")
	if err := sys.AddGroup(molgroup.New("free")); err != nil {
		Te.Fatal(err)
	}
	if err := sys.AddForceField(ff.New("well", ff.NewHarmonic([3]float64{}))); err != nil {
		Te.Fatal(err)
	}
	ms := mol.NewMolecules()
	for i := 0; i < n; i++ {
		c := v3.Zeros(1)
		c.SetVec(0, [3]float64{float64(i + 1), 0, 0})
		m, err := mol.New("AR", []mol.Atom{mol.NewAtom("AR", "Ar")}, c)
		if err != nil {
			Te.Fatal(err)
		}
		e := m.Edit()
		e.SetProperty("k", []float64{1})
		ms.AddMolecule(e.Commit())
	}
	if err := sys.Add(ms, molgroup.MGName("free"), molgroup.MGName("well")); err != nil {
		Te.Fatal(err)
	}
	return sys
}

func TestMetropolis(Te *testing.T) {
	fmt.Println("Metropolis test!")
	never := func() float64 { return 1 }
	always := func() float64 { return 0 }
	if !Metropolis(-1, 300, never) {
		Te.Error("A decrease must always be accepted")
	}
	if Metropolis(1, 300, never) {
		Te.Error("An increase can't be accepted with random 1")
	}
	if !Metropolis(1, 300, always) {
		Te.Error("An increase is accepted with random 0")
	}
	if Metropolis(100, 300, func() float64 { return 1e-10 }) {
		Te.Error("exp(-100/kT) is far below 1e-10")
	}
}

func TestRigidTranslation(Te *testing.T) {
	fmt.Println("Rigid translation test!")
	sys := trapped(Te, 4)
	var c ff.Component = "E_harmonic(well)"
	e0, err := sys.Energy(c)
	if err != nil {
		Te.Fatal(err)
	}
	//At very low temperature only downhill moves are accepted
	t, err := NewRigidTranslation("translate", molgroup.MGName("free"), c, 0.5, 1e-6, 7)
	if err != nil {
		Te.Fatal(err)
	}
	if err := sys.AddMonitor(monitor.NewAverage("mean", c)); err != nil {
		Te.Fatal(err)
	}
	if err := t.Move(sys, 200); err != nil {
		Te.Fatal(err)
	}
	s := t.Statistics()
	if s.Attempted != 200 || s.Accepted == 0 || s.Rejected() == 0 {
		Te.Errorf("Unexpected statistics %v", s)
	}
	//One sample per accepted configuration
	if m, _ := sys.Monitor("mean"); m.Samples() != s.Accepted {
		Te.Errorf("%d samples for %d accepted moves", m.Samples(), s.Accepted)
	}
	e1, _ := sys.Energy(c)
	if e1 >= e0 {
		Te.Errorf("Energy should go down at low temperature: %v -> %v", e0, e1)
	}
	g, _ := sys.Group(molgroup.MGName("free"))
	f, _ := sys.ForceField("well")
	for _, n := range g.MolNums() {
		gm, _ := g.Molecule(n)
		fm, _ := f.Molecule(n)
		if !gm.Same(fm) {
			Te.Errorf("Group and forcefield disagree on %v", n)
		}
	}
	cl := t.Clone()
	if cl.Statistics().Attempted != 0 || cl.Name() != t.Name() {
		Te.Error("Clone should keep the settings and reset the statistics")
	}
}

func TestMoveErrors(Te *testing.T) {
	sys := trapped(Te, 2)
	ck := sys.CheckPoint()
	t, _ := NewRigidTranslation("bad", molgroup.MGName("free"), "E_nope(x)", 0.5, 300, 1)
	if err := t.Move(sys, 3); !errors.Is(err, sire.MissingComponent) {
		Te.Errorf("Expected MissingComponent, got %v", err)
	}
	if sys.Version() != ck.Version() {
		Te.Error("A failed move changed the system")
	}
	t, _ = NewRigidTranslation("lost", molgroup.MGName("nope"), "E_harmonic(well)", 0.5, 300, 1)
	if err := (Sequence{t}).Run(sys, 1); !errors.Is(err, sire.MissingGroup) {
		Te.Errorf("Expected MissingGroup, got %v", err)
	}
	if _, err := NewRigidTranslation("neg", molgroup.MGName("free"), "E_harmonic(well)", -1, 300, 1); !errors.Is(err, sire.InvalidArg) {
		Te.Errorf("Expected InvalidArg, got %v", err)
	}
}

func TestSequence(Te *testing.T) {
	sys := trapped(Te, 3)
	a, _ := NewRigidTranslation("a", molgroup.MGName("free"), ff.Total, 0.2, 300, 1)
	b, _ := NewRigidTranslation("b", molgroup.MGName("free"), ff.Total, 0.2, 300, 2)
	seq := Sequence{a, b}
	if err := seq.Run(sys, 5); err != nil {
		Te.Fatal(err)
	}
	st := seq.Statistics()
	if st["a"].Attempted != 5 || st["b"].Attempted != 5 {
		Te.Errorf("Each move should run once per pass: %v", st)
	}
	cl := seq.Clone()
	if len(cl) != 2 || cl[0] == seq[0] {
		Te.Error("Clone should copy every move")
	}
}
