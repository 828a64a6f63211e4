/*
 * input.go, part of sire-go.
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
	"fmt"
	"io"
	"math"
	"os"

	"github.com/pelletier/go-toml"

	"github.com/chrys-athome/sire-sub022/ff"
	"github.com/chrys-athome/sire-sub022/mol"
	"github.com/chrys-athome/sire-sub022/molgroup"
	"github.com/chrys-athome/sire-sub022/monitor"
	"github.com/chrys-athome/sire-sub022/moves"
	"github.com/chrys-athome/sire-sub022/mtsmc"
	"github.com/chrys-athome/sire-sub022/space"
	"github.com/chrys-athome/sire-sub022/system"
	v3 "github.com/chrys-athome/sire-sub022/v3"
)

// Input is the simulation described by a TOML file.
type Input struct {
	Name        string         `toml:"name"`
	Box         []float64      `toml:"box"`
	Temperature float64        `toml:"temperature"`
	Seed        int64          `toml:"seed"`
	Groups      []GroupInput   `toml:"group"`
	ForceFields []FFInput      `toml:"forcefield"`
	Molecules   []MolInput     `toml:"molecule"`
	Monitors    []MonitorInput `toml:"monitor"`
	Moves       []MoveInput    `toml:"move"`
	MTSMC       MTSMCInput     `toml:"mtsmc"`
}

type GroupInput struct {
	Name string `toml:"name"`
}

// FFInput is a forcefield. Kernel is "harmonic" or "propertysum".
type FFInput struct {
	Name        string            `toml:"name"`
	Kernel      string            `toml:"kernel"`
	Centre      []float64         `toml:"centre"`
	Scale       float64           `toml:"scale"`
	Overlap     bool              `toml:"overlap"`
	PropertyMap map[string]string `toml:"property_map"`
}

// MolInput is Count copies of a rigid molecule, placed on a cubic lattice
// with the given spacing. Targets name the groups and forcefields the
// copies are added to.
type MolInput struct {
	Name     string      `toml:"name"`
	Count    int         `toml:"count"`
	Spacing  float64     `toml:"spacing"`
	Origin   []float64   `toml:"origin"`
	Elements []string    `toml:"elements"`
	Sites    [][]float64 `toml:"sites"`
	K        []float64   `toml:"k"`
	Energy   []float64   `toml:"energy"`
	Targets  []string    `toml:"targets"`
}

// MonitorInput is an "average" or a "histogram" of an energy component.
type MonitorInput struct {
	Name      string    `toml:"name"`
	Kind      string    `toml:"kind"`
	Component string    `toml:"component"`
	Dividers  []float64 `toml:"dividers"`
}

type MoveInput struct {
	Name        string  `toml:"name"`
	Group       string  `toml:"group"`
	Component   string  `toml:"component"`
	MaxDelta    float64 `toml:"max_delta"`
	Temperature float64 `toml:"temperature"`
}

// MTSMCInput wraps the moves named in Fast into a multiple time step move.
type MTSMCInput struct {
	Name          string   `toml:"name"`
	Fast          []string `toml:"fast"`
	NFast         int      `toml:"nfast"`
	Slow          string   `toml:"slow"`
	FastComponent string   `toml:"fast_component"`
	Parallel      bool     `toml:"parallel"`
}

// ReadInput decodes a TOML input.
func ReadInput(r io.Reader) (*Input, error) {
	in := new(Input)
	if err := toml.NewDecoder(r).Decode(in); err != nil {
		return nil, fmt.Errorf("decoding input: %w", err)
	}
	if in.Name == "" {
		in.Name = "system"
	}
	if in.Temperature <= 0 {
		return nil, fmt.Errorf("temperature must be positive, not %v", in.Temperature)
	}
	return in, nil
}

// LoadInput reads the TOML file in path.
func LoadInput(path string) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadInput(f)
}

func vec3(what string, v []float64) ([3]float64, error) {
	if len(v) == 0 {
		return [3]float64{}, nil
	}
	if len(v) != 3 {
		return [3]float64{}, fmt.Errorf("%s needs 3 values, not %d", what, len(v))
	}
	return [3]float64{v[0], v[1], v[2]}, nil
}

func (f FFInput) build() (ff.G1FF, error) {
	var k ff.Kernel
	switch f.Kernel {
	case ff.HarmonicKind:
		c, err := vec3("centre", f.Centre)
		if err != nil {
			return ff.G1FF{}, err
		}
		h := ff.NewHarmonic(c)
		if f.Scale != 0 {
			h.Scale = f.Scale
		}
		k = h
	case ff.PropertySumKind:
		s := ff.NewPropertySum()
		if f.Scale != 0 {
			s.Scale = f.Scale
		}
		k = s
	default:
		return ff.G1FF{}, fmt.Errorf("unknown kernel %q", f.Kernel)
	}
	opts := []ff.Option{ff.WithOverlap(f.Overlap)}
	if len(f.PropertyMap) > 0 {
		opts = append(opts, ff.WithPropertyMap(mol.PropertyMap(f.PropertyMap)))
	}
	return ff.New(f.Name, k, opts...), nil
}

// build returns the copies of the molecule.
func (m MolInput) build() (*mol.Molecules, error) {
	if len(m.Sites) == 0 || len(m.Sites) != len(m.Elements) {
		return nil, fmt.Errorf("%d sites for %d elements", len(m.Sites), len(m.Elements))
	}
	origin, err := vec3("origin", m.Origin)
	if err != nil {
		return nil, err
	}
	count := max(m.Count, 1)
	side := int(math.Ceil(math.Cbrt(float64(count))))
	atoms := make([]mol.Atom, len(m.Elements))
	for i, e := range m.Elements {
		atoms[i] = mol.NewAtom(fmt.Sprintf("%s%d", e, i+1), e)
	}
	ms := mol.NewMolecules()
	for n := 0; n < count; n++ {
		cell := [3]float64{float64(n % side), float64((n / side) % side), float64(n / (side * side))}
		c := v3.Zeros(len(m.Sites))
		for i, s := range m.Sites {
			r, err := vec3("site", s)
			if err != nil {
				return nil, err
			}
			for j := range r {
				r[j] += origin[j] + cell[j]*m.Spacing
			}
			c.SetVec(i, r)
		}
		nm, err := mol.New(mol.MolName(m.Name), atoms, c)
		if err != nil {
			return nil, err
		}
		e := nm.Edit()
		if len(m.K) > 0 {
			if err := e.SetProperty("k", m.K); err != nil {
				return nil, err
			}
		}
		if len(m.Energy) > 0 {
			if err := e.SetProperty("energy", m.Energy); err != nil {
				return nil, err
			}
		}
		ms.AddMolecule(e.Commit())
	}
	return ms, nil
}

func (mi MonitorInput) build() (monitor.Monitor, error) {
	switch mi.Kind {
	case monitor.AverageKind, "":
		return monitor.NewAverage(mi.Name, ff.Component(mi.Component)), nil
	case monitor.HistogramKind:
		return monitor.NewHistogram(mi.Name, ff.Component(mi.Component), mi.Dividers)
	}
	return nil, fmt.Errorf("unknown monitor kind %q", mi.Kind)
}

func ids(names []string) []molgroup.MGID {
	ret := make([]molgroup.MGID, len(names))
	for i, n := range names {
		ret[i] = molgroup.MGName(n)
	}
	return ret
}

// Build returns the system described by in and the moves to run on it.
func (in *Input) Build() (*system.SimSystem, moves.Sequence, error) {
	sys := system.NewSimSystem(in.Name)
	if len(in.Box) > 0 {
		dims, err := vec3("box", in.Box)
		if err != nil {
			return nil, nil, err
		}
		b, err := space.NewPeriodicBox(dims)
		if err != nil {
			return nil, nil, err
		}
		if err := sys.SetSpace(b); err != nil {
			return nil, nil, err
		}
	}
	for _, g := range in.Groups {
		if err := sys.AddGroup(molgroup.New(molgroup.MGName(g.Name))); err != nil {
			return nil, nil, fmt.Errorf("group %q: %w", g.Name, err)
		}
	}
	for _, f := range in.ForceFields {
		g, err := f.build()
		if err == nil {
			err = sys.AddForceField(g)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("forcefield %q: %w", f.Name, err)
		}
	}
	for _, m := range in.Molecules {
		ms, err := m.build()
		if err == nil {
			err = sys.Add(ms, ids(m.Targets)...)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("molecule %q: %w", m.Name, err)
		}
	}
	for _, mi := range in.Monitors {
		m, err := mi.build()
		if err == nil {
			err = sys.AddMonitor(m)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("monitor %q: %w", mi.Name, err)
		}
	}
	seq, err := in.moves()
	if err != nil {
		return nil, nil, err
	}
	return sys, seq, nil
}

func (in *Input) moves() (moves.Sequence, error) {
	fast := make(map[string]bool)
	for _, n := range in.MTSMC.Fast {
		fast[n] = true
	}
	var seq, fastSeq moves.Sequence
	for i, mi := range in.Moves {
		t := mi.Temperature
		if t <= 0 {
			t = in.Temperature
		}
		m, err := moves.NewRigidTranslation(mi.Name, molgroup.MGName(mi.Group), ff.Component(mi.Component), mi.MaxDelta, t, in.Seed+int64(i))
		if err != nil {
			return nil, fmt.Errorf("move %q: %w", mi.Name, err)
		}
		if fast[mi.Name] {
			fastSeq = append(fastSeq, m)
			delete(fast, mi.Name)
		} else {
			seq = append(seq, m)
		}
	}
	for n := range fast {
		return nil, fmt.Errorf("mtsmc: no move %q", n)
	}
	if len(fastSeq) > 0 {
		mc := in.MTSMC
		if mc.Name == "" {
			mc.Name = "mtsmc"
		}
		m, err := mtsmc.New(mc.Name, fastSeq, mc.NFast, ff.Component(mc.Slow), ff.Component(mc.FastComponent), in.Temperature, in.Seed+int64(len(in.Moves)), mtsmc.Parallel(mc.Parallel))
		if err != nil {
			return nil, fmt.Errorf("mtsmc: %w", err)
		}
		seq = append(seq, m)
	}
	return seq, nil
}
