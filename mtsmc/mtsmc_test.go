/*
 * mtsmc_test.go, part of sire-go.
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

package mtsmc

import (
	"errors"
	"fmt"
	"testing"

	sire "github.com/chrys-athome/sire-sub022"
	"github.com/chrys-athome/sire-sub022/ff"
	"github.com/chrys-athome/sire-sub022/mol"
	"github.com/chrys-athome/sire-sub022/molgroup"
	"github.com/chrys-athome/sire-sub022/monitor"
	"github.com/chrys-athome/sire-sub022/moves"
	"github.com/chrys-athome/sire-sub022/system"
	v3 "github.com/chrys-athome/sire-sub022/v3"
)

const (
	well ff.Component = "E_harmonic(well)"
	flat ff.Component = "E_propertysum(flat)"
)

// setup returns a system of three atoms in the group "free", in a harmonic
// well and in a flat forcefield, and a fast move that only sees the flat one.
func setup(Te *testing.T) (*system.SimSystem, moves.Sequence) {
	sys := system.NewSimSystem("mts")
	sys.AddGroup(molgroup.New("free"))
	sys.AddForceField(ff.New("well", ff.NewHarmonic([3]float64{})))
	sys.AddForceField(ff.New("flat", ff.NewPropertySum()))
	ms := mol.NewMolecules()
	for i := 0; i < 3; i++ {
		c := v3.Zeros(1)
		c.SetVec(0, [3]float64{float64(i + 1), 0, 0})
		m, err := mol.New("AR", []mol.Atom{mol.NewAtom("AR", "Ar")}, c)
		if err != nil {
			Te.Fatal(err)
		}
		e := m.Edit()
		e.SetProperty("k", []float64{1})
		e.SetProperty("energy", []float64{0.1})
		ms.AddMolecule(e.Commit())
	}
	if err := sys.Add(ms, molgroup.MGAll{}); err != nil {
		Te.Fatal(err)
	}
	t, err := moves.NewRigidTranslation("walk", molgroup.MGName("free"), flat, 0.3, 300, 11)
	if err != nil {
		Te.Fatal(err)
	}
	return sys, moves.Sequence{t}
}

func TestWorker(Te *testing.T) {
	fmt.Println("MTSMC worker test!")
	sys, fast := setup(Te)
	c := sys.CheckPoint()
	w := NewWorker()
	if err := w.Start(c, fast, 10); err != nil {
		Te.Fatal(err)
	}
	if err := w.Start(c, fast, 10); !errors.Is(err, sire.InvalidArg) {
		Te.Errorf("Expected InvalidArg starting a busy worker, got %v", err)
	}
	res, err := w.Wait()
	if err != nil {
		Te.Fatal(err)
	}
	if res.Steps != 10 || res.Stats["walk"].Attempted != 10 {
		Te.Errorf("Bad result: %d steps, %v", res.Steps, res.Stats)
	}
	if res.Start.Version() != c.Version() || sys.Version() != c.Version() {
		Te.Error("The block changed the primary system")
	}
	if res.End.ID() != sys.ID() || res.End.Version() == c.Version() {
		Te.Error("The block should have moved the copy of the same system")
	}
	if w.Running() {
		Te.Error("Worker still running after Wait")
	}
}

func TestWorkerStop(Te *testing.T) {
	sys, fast := setup(Te)
	w := NewWorker()
	const n = 50000000
	if err := w.Start(sys.CheckPoint(), fast, n); err != nil {
		Te.Fatal(err)
	}
	w.Stop()
	res, err := w.Wait()
	if !errors.Is(err, ErrStopped) {
		Te.Errorf("Expected ErrStopped, got %v", err)
	}
	if res.Steps >= n || res.End.IsNull() {
		Te.Errorf("Stopped block should end early with a state, %d steps", res.Steps)
	}
	//The worker can be used again
	if err := w.Start(sys.CheckPoint(), fast, 1); err != nil {
		Te.Fatal(err)
	}
	if _, err := w.Wait(); err != nil {
		Te.Fatal(err)
	}
}

func testMTSMC(Te *testing.T, parallel bool) {
	sys, fast := setup(Te)
	e0, _ := sys.Energy(well)
	id := sys.ID()
	//Blocks only pass if the well energy doesn't go up
	m, err := New("mts", fast, 5, well, flat, 1e-6, 3, Parallel(parallel))
	if err != nil {
		Te.Fatal(err)
	}
	if err := sys.AddMonitor(monitor.NewAverage("mean", well)); err != nil {
		Te.Fatal(err)
	}
	if err := m.Move(sys, 20); err != nil {
		Te.Fatal(err)
	}
	s := m.Statistics()
	if s.Attempted != 20 || s.Accepted == 0 {
		Te.Errorf("Unexpected statistics %v", s)
	}
	//The fast moves don't sample the monitors, accepted blocks do once.
	if mon, _ := sys.Monitor("mean"); mon.Samples() != s.Accepted {
		Te.Errorf("%d samples for %d accepted blocks", mon.Samples(), s.Accepted)
	}
	e1, _ := sys.Energy(well)
	if e1 > e0+1e-9 {
		Te.Errorf("Energy went up: %v -> %v", e0, e1)
	}
	if sys.ID() != id {
		Te.Error("The system changed identity")
	}
	if err := sys.Groups().CheckConsistency(); err != nil {
		Te.Error(err)
	}
	if m.worker.Running() {
		Te.Error("A block was left running")
	}
	if m.FastStatistics()["walk"].Attempted < 5*s.Attempted {
		Te.Errorf("Too few fast moves: %v", m.FastStatistics())
	}
}

func TestMTSMC(Te *testing.T) {
	fmt.Println("MTSMC test!")
	testMTSMC(Te, false)
}

func TestMTSMCParallel(Te *testing.T) {
	fmt.Println("Parallel MTSMC test!")
	testMTSMC(Te, true)
}

func TestMTSMCErrors(Te *testing.T) {
	sys, fast := setup(Te)
	if _, err := New("bad", nil, 5, well, flat, 300, 1); !errors.Is(err, sire.InvalidArg) {
		Te.Errorf("Expected InvalidArg, got %v", err)
	}
	m, _ := New("mts", fast, 2, "E_nope(x)", flat, 300, 1)
	v := sys.Version()
	if err := m.Move(sys, 3); !errors.Is(err, sire.MissingComponent) {
		Te.Errorf("Expected MissingComponent, got %v", err)
	}
	if sys.Version() != v {
		Te.Error("A failed block changed the system")
	}
	c := m.Clone().(*MTSMC)
	if c.worker == m.worker || c.fast[0] == m.fast[0] {
		Te.Error("Clone shares state with the original")
	}
}
