/*
 * main_test.go, part of sire-go.
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

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/chrys-athome/sire-sub022/chemjson"
	"github.com/chrys-athome/sire-sub022/molgroup"
	"github.com/chrys-athome/sire-sub022/restart"
	"github.com/chrys-athome/sire-sub022/stream"
)

const water = `
name = "water"
box = [20.0, 20.0, 20.0]
temperature = 300.0
seed = 7

[[group]]
name = "solvent"

[[forcefield]]
name = "well"
kernel = "harmonic"
centre = [10.0, 10.0, 10.0]
scale = 0.01

[[forcefield]]
name = "flat"
kernel = "propertysum"

[[molecule]]
name = "WAT"
count = 8
spacing = 3.0
origin = [5.0, 5.0, 5.0]
elements = ["O", "H", "H"]
sites = [[0.0, 0.0, 0.0], [0.96, 0.0, 0.0], [-0.24, 0.93, 0.0]]
k = [1.0, 0.5, 0.5]
energy = [0.1, 0.1, 0.1]
targets = ["solvent", "well", "flat"]

[[monitor]]
name = "mean"
kind = "average"
component = "E_harmonic(well)"

[[monitor]]
name = "spread"
kind = "histogram"
component = "E_total"
dividers = [0.0, 2.0, 4.0, 6.0, 8.0, 10.0, 15.0, 20.0, 40.0]

[[move]]
name = "slide"
group = "solvent"
component = "E_harmonic(well)"
max_delta = 0.3

[[move]]
name = "jiggle"
group = "solvent"
component = "E_propertysum(flat)"
max_delta = 0.2

[mtsmc]
fast = ["jiggle"]
nfast = 3
slow = "E_harmonic(well)"
fast_component = "E_propertysum(flat)"
parallel = true
`

func TestInput(Te *testing.T) {
	fmt.Println("TOML input test!")
	in, err := ReadInput(strings.NewReader(water))
	if err != nil {
		Te.Fatal(err)
	}
	sys, seq, err := in.Build()
	if err != nil {
		Te.Fatal(err)
	}
	if sys.NMolecules() != 8 || sys.Space().Type() != "periodicbox" {
		Te.Errorf("Bad system: %d molecules in %s", sys.NMolecules(), sys.Space().Type())
	}
	if g, err := sys.Group(molgroup.MGName("solvent")); err != nil || g.NMolecules() != 8 {
		Te.Errorf("Bad group: %v", err)
	}
	if cs := sys.ForceFields().Components(); len(cs) != 3 || cs[len(cs)-1] != "E_total" {
		Te.Errorf("Bad components %v", cs)
	}
	if e, _ := sys.Energy("E_propertysum(flat)"); e < 2.4-1e-9 || e > 2.4+1e-9 {
		Te.Errorf("Flat energy should be 24*0.1, not %v", e)
	}
	if len(seq) != 2 || seq[0].Name() != "slide" || seq[1].Name() != "mtsmc" {
		Te.Errorf("Bad moves %v", seq.Statistics())
	}
}

func TestBadInput(Te *testing.T) {
	bad := map[string]string{
		"no temperature": `name = "x"`,
		"unknown kernel": "temperature = 1.0\n[[forcefield]]\nname = \"f\"\nkernel = \"lj\"",
		"bad sites":      "temperature = 1.0\n[[group]]\nname = \"g\"\n[[molecule]]\nname = \"M\"\nelements = [\"C\"]\ntargets = [\"g\"]",
		"no fast move":   "temperature = 1.0\n[mtsmc]\nfast = [\"nope\"]",
		"bad box":        "temperature = 1.0\nbox = [1.0, 2.0]",
	}
	for name, text := range bad {
		in, err := ReadInput(strings.NewReader(text))
		if err == nil {
			_, _, err = in.Build()
		}
		if err == nil {
			Te.Errorf("%s: expected an error", name)
		}
	}
}

func TestRun(Te *testing.T) {
	fmt.Println("sireenv run test!")
	dir := Te.TempDir()
	c := Default()
	c.Input = filepath.Join(dir, "water.toml")
	c.Archive = filepath.Join(dir, "ckpt.db")
	c.Restart = filepath.Join(dir, "water.rst.gz")
	c.Steps = 6
	c.Every = 2
	c.Keep = 2
	c.Plot = filepath.Join(dir, "plots")
	if err := os.WriteFile(c.Input, []byte(water), 0o644); err != nil {
		Te.Fatal(err)
	}
	var out bytes.Buffer
	if err := run(c, &out); err != nil {
		Te.Fatal(err)
	}
	first, err := chemjson.ReadSystem(&out)
	if err != nil {
		Te.Fatal(err)
	}
	if first.Name != "water" || len(first.Molecules) != 8 || len(first.Monitors) != 2 {
		Te.Fatalf("Bad report %+v", first)
	}
	//At most one accepted slide and one accepted block per step
	if first.Monitors[0].Samples > 2*c.Steps {
		Te.Errorf("More samples than accepted moves: %d", first.Monitors[0].Samples)
	}
	for _, name := range []string{"energies.png", "spread.png"} {
		if st, err := os.Stat(filepath.Join(c.Plot, name)); err != nil || st.Size() == 0 {
			Te.Errorf("Plot %s not written: %v", name, err)
		}
	}
	uid, err := uuid.Parse(first.UID)
	if err != nil {
		Te.Fatal(err)
	}
	a, err := restart.OpenSQLite(c.Archive, stream.Zstd)
	if err != nil {
		Te.Fatal(err)
	}
	recs, err := a.List(uid)
	a.Close()
	if err != nil || len(recs) != 2 || recs[1].Label != "step 6" {
		Te.Fatalf("Bad archive listing %+v: %v", recs, err)
	}

	c.Resume = true
	c.Steps = 2
	c.Archive = ""
	c.Plot = ""
	out.Reset()
	if err := run(c, &out); err != nil {
		Te.Fatal(err)
	}
	second, err := chemjson.ReadSystem(&out)
	if err != nil {
		Te.Fatal(err)
	}
	if second.UID != first.UID || second.Version == first.Version {
		Te.Errorf("Resumed run should continue the same system: %s %s -> %s %s", first.UID, first.Version, second.UID, second.Version)
	}
	if second.Monitors[0].Samples < first.Monitors[0].Samples {
		Te.Errorf("Monitor samples should carry over, got %d after %d", second.Monitors[0].Samples, first.Monitors[0].Samples)
	}
}

func TestSimulate(Te *testing.T) {
	fmt.Println("Simulation loop test!")
	in, err := ReadInput(strings.NewReader(water))
	if err != nil {
		Te.Fatal(err)
	}
	sys, seq, err := in.Build()
	if err != nil {
		Te.Fatal(err)
	}
	var steps []int
	if err := simulate(sys, seq, 5, func(step int) error {
		steps = append(steps, step)
		return nil
	}); err != nil {
		Te.Fatal(err)
	}
	if len(steps) != 5 || steps[4] != 5 {
		Te.Errorf("after should run once per step, got %v", steps)
	}
	accepted := 0
	for _, st := range seq.Statistics() {
		accepted += st.Accepted
	}
	for _, name := range []string{"mean", "spread"} {
		m, err := sys.Monitor(name)
		if err != nil {
			Te.Fatal(err)
		}
		if m.Samples() != accepted {
			Te.Errorf("%s: %d samples for %d accepted moves", name, m.Samples(), accepted)
		}
	}
	halt := errors.New("halt")
	err = simulate(sys, seq, 5, func(step int) error {
		if step == 2 {
			return halt
		}
		return nil
	})
	if !errors.Is(err, halt) {
		Te.Errorf("Expected the error from after, got %v", err)
	}
}
