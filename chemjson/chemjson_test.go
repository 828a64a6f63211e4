/*
 * chemjson_test.go, part of sire-go.
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

package chemjson

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"

	sire "github.com/chrys-athome/sire-sub022"
	"github.com/chrys-athome/sire-sub022/ff"
	"github.com/chrys-athome/sire-sub022/mol"
	"github.com/chrys-athome/sire-sub022/molgroup"
	"github.com/chrys-athome/sire-sub022/monitor"
	"github.com/chrys-athome/sire-sub022/space"
	"github.com/chrys-athome/sire-sub022/system"
	v3 "github.com/chrys-athome/sire-sub022/v3"
)

func sample(Te *testing.T) *system.SimSystem {
	sys := system.NewSimSystem("report")
	sys.AddGroup(molgroup.New("solvent"))
	sys.AddForceField(ff.New("well", ff.NewHarmonic([3]float64{})))
	c := v3.Zeros(2)
	c.SetVec(0, [3]float64{1, 0, 0})
	c.SetVec(1, [3]float64{3, 0, 0})
	m, err := mol.New("WAT", []mol.Atom{mol.NewAtom("O", "O"), mol.NewAtom("H", "H")}, c)
	if err != nil {
		Te.Fatal(err)
	}
	e := m.Edit()
	e.SetProperty("k", []float64{1, 1})
	if err := sys.AddView(mol.Whole(e.Commit()), molgroup.MGAll{}); err != nil {
		Te.Fatal(err)
	}
	if err := sys.AddMonitor(monitor.NewAverage("mean", "E_harmonic(well)")); err != nil {
		Te.Fatal(err)
	}
	if err := sys.Commit(); err != nil {
		Te.Fatal(err)
	}
	return sys
}

func TestSendRead(Te *testing.T) {
	fmt.Println("JSON report test!")
	sys := sample(Te)
	var buf bytes.Buffer
	if err := NewSystem(sys.QuerySystem, true).Send(&buf); err != nil {
		Te.Fatal(err)
	}
	s, err := ReadSystem(&buf)
	if err != nil {
		Te.Fatal(err)
	}
	if s.Name != "report" || s.UID != sys.UID().String() || s.Version != sys.Version().String() {
		Te.Errorf("Bad identity in %+v", s)
	}
	if s.Volume != nil || s.Space != "cartesian" {
		Te.Errorf("Infinite space reported as %s %v", s.Space, s.Volume)
	}
	if len(s.Groups) != 1 || s.Groups[0].Name != "solvent" || len(s.Groups[0].Molecules) != 1 {
		Te.Errorf("Bad groups %+v", s.Groups)
	}
	if len(s.Molecules) != 1 || s.Molecules[0].NAtoms != 2 || len(s.Molecules[0].Coords) != 6 {
		Te.Fatalf("Bad molecules %+v", s.Molecules)
	}
	if s.Molecules[0].Centroid != [3]float64{2, 0, 0} {
		Te.Errorf("Bad centroid %v", s.Molecules[0].Centroid)
	}
	e, ok := s.Energy("E_harmonic(well)")
	if !ok || math.Abs(e-10) > 1e-9 {
		Te.Errorf("Bad energy %v %v", e, ok)
	}
	if len(s.Monitors) != 1 || s.Monitors[0].Samples != 1 || s.Monitors[0].Kind != monitor.AverageKind {
		Te.Errorf("Bad monitors %+v", s.Monitors)
	}
	if s.Error != nil {
		Te.Error(s.Error)
	}
}

func TestNoCoords(Te *testing.T) {
	sys := sample(Te)
	b, err := space.NewPeriodicBox([3]float64{10, 10, 10})
	if err != nil {
		Te.Fatal(err)
	}
	if err := sys.SetSpace(b); err != nil {
		Te.Fatal(err)
	}
	var buf bytes.Buffer
	if err := NewSystem(sys.QuerySystem, false).Send(&buf); err != nil {
		Te.Fatal(err)
	}
	if strings.Contains(buf.String(), "coords") {
		Te.Error("Coordinates sent without being asked for")
	}
	s, err := ReadSystem(&buf)
	if err != nil {
		Te.Fatal(err)
	}
	if s.Volume == nil || *s.Volume != 1000 {
		Te.Errorf("Bad volume %v", s.Volume)
	}
}

func TestError(Te *testing.T) {
	err := sire.Errorf(sire.MissingGroup, "Lookup", "no group %q", "x")
	j := NewError("TestError", err)
	if j.Kind != sire.MissingGroup.String() || j.Function != "TestError" {
		Te.Errorf("Bad error %+v", j)
	}
	if !strings.Contains(string(j.Marshal()), `"function":"TestError"`) {
		Te.Errorf("Bad serialization %s", j.Marshal())
	}
	if _, err := ReadSystem(strings.NewReader("{not json")); err == nil {
		Te.Error("Expected an error reading garbage")
	}
}
