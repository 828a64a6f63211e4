/*
 * translation.go, part of sire-go.
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
	"math"
	"math/rand"

	sire "github.com/chrys-athome/sire-sub022"
	"github.com/chrys-athome/sire-sub022/ff"
	"github.com/chrys-athome/sire-sub022/molgroup"
	"github.com/chrys-athome/sire-sub022/system"
)

// KB is the Boltzmann constant in kcal/(mol K).
const KB = 0.0019872041

// RigidTranslation moves one random molecule of a group by a random
// displacement, and accepts the new configuration with the Metropolis
// criterion on one energy component.
type RigidTranslation struct {
	name        string
	group       molgroup.MGID
	component   ff.Component
	maxDelta    float64
	temperature float64
	rng         *rand.Rand
	stats       Stats
}

// NewRigidTranslation returns a move of the molecules in group, with
// displacements of at most maxDelta along each axis, at temperature (K).
func NewRigidTranslation(name string, group molgroup.MGID, c ff.Component, maxDelta, temperature float64, seed int64) (*RigidTranslation, error) {
	if maxDelta <= 0 || temperature <= 0 {
		return nil, sire.Errorf(sire.InvalidArg, "NewRigidTranslation", "need a positive displacement and temperature, have %v, %v", maxDelta, temperature)
	}
	return &RigidTranslation{
		name:        name,
		group:       group,
		component:   c,
		maxDelta:    maxDelta,
		temperature: temperature,
		rng:         rand.New(rand.NewSource(seed)),
	}, nil
}

func (t *RigidTranslation) Name() string { return t.name }

func (t *RigidTranslation) Statistics() Stats { return t.stats }

func (t *RigidTranslation) Temperature() float64 { return t.temperature }

// Clone returns a copy of t, with zeroed statistics and a random number
// generator seeded from t's.
func (t *RigidTranslation) Clone() Move {
	c := *t
	c.rng = rand.New(rand.NewSource(t.rng.Int63()))
	c.stats = Stats{}
	return &c
}

// Move attempts n translations. An accepted configuration is committed to sys,
// a rejected one rolled back.
func (t *RigidTranslation) Move(sys *system.SimSystem, n int) error {
	for i := 0; i < n; i++ {
		if err := t.attempt(sys); err != nil {
			return sire.ErrDecorate(err, "RigidTranslation.Move")
		}
	}
	return nil
}

func (t *RigidTranslation) attempt(sys *system.SimSystem) error {
	g, err := sys.Group(t.group)
	if err != nil {
		return err
	}
	if g.IsEmpty() {
		return nil
	}
	old, err := sys.Energy(t.component)
	if err != nil {
		return err
	}
	vm, err := g.MoleculeAt(t.rng.Intn(g.NMolecules()))
	if err != nil {
		return err
	}
	d := [3]float64{t.delta(), t.delta(), t.delta()}
	ckpt := sys.CheckPoint()
	t.stats.Attempted++
	if _, err := sys.Change(vm.Mol.Edit().Translate(d).Commit()); err != nil {
		sys.RollBack(ckpt)
		return err
	}
	nu, err := sys.Energy(t.component)
	if err != nil {
		sys.RollBack(ckpt)
		return err
	}
	if !Metropolis(nu-old, t.temperature, t.rng.Float64) {
		sys.RollBack(ckpt)
		return nil
	}
	if err := sys.Commit(); err != nil {
		sys.RollBack(ckpt)
		return err
	}
	t.stats.Accepted++
	return nil
}

func (t *RigidTranslation) delta() float64 {
	return t.maxDelta * (2*t.rng.Float64() - 1)
}

// Metropolis reports whether a change of energy dE (kcal/mol) at temperature
// (K) is accepted. Decreases always are, increases with probability exp(-dE/kT).
func Metropolis(dE, temperature float64, random func() float64) bool {
	if dE <= 0 {
		return true
	}
	return random() < math.Exp(-dE/(KB*temperature))
}

var _ Move = (*RigidTranslation)(nil)
