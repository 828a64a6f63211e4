/*
 * space.go, part of sire-go.
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

// Package space holds the simulation spaces a system maps its molecules into.
package space

import (
	"fmt"
	"math"

	sire "github.com/chrys-athome/sire-sub022"
	"github.com/chrys-athome/sire-sub022/mol"
	"github.com/chrys-athome/sire-sub022/stream"
	v3 "github.com/chrys-athome/sire-sub022/v3"
)

// Space is the policy that maps molecule coordinates into the simulation volume.
type Space interface {
	// Type is the name the space is saved and reported under.
	Type() string
	// Map returns m with its coordinates inside the space. If m is already
	// inside, m itself is returned, with its version unchanged.
	Map(m mol.Molecule) (mol.Molecule, error)
	// Volume returns the volume of the space, or +Inf.
	Volume() float64
	Equal(o Space) bool
	Save(w *stream.Writer)
}

// Cartesian is infinite, open space.
type Cartesian struct{}

func (Cartesian) Type() string { return "cartesian" }

func (Cartesian) Map(m mol.Molecule) (mol.Molecule, error) { return m, nil }

func (Cartesian) Volume() float64 { return math.Inf(1) }

func (Cartesian) Equal(o Space) bool {
	_, ok := o.(Cartesian)
	return ok
}

func (Cartesian) Save(w *stream.Writer) {}

// PeriodicBox is an orthorhombic box with periodic boundaries. Molecules are
// wrapped whole, so that their centroid is in [0, L) on every axis.
type PeriodicBox struct {
	dims [3]float64
}

// NewPeriodicBox returns a box with the given sides. It fails with sire.InvalidArg
// if any side is not a positive, finite number.
func NewPeriodicBox(dims [3]float64) (PeriodicBox, error) {
	for i, l := range dims {
		if !(l > 0) || math.IsInf(l, 0) {
			return PeriodicBox{}, sire.Errorf(sire.InvalidArg, "space.NewPeriodicBox", "side %d of the box is %v", i, l)
		}
	}
	return PeriodicBox{dims}, nil
}

func (b PeriodicBox) Type() string { return "periodicbox" }

// Dims returns the sides of the box.
func (b PeriodicBox) Dims() [3]float64 { return b.dims }

func (b PeriodicBox) Volume() float64 { return b.dims[0] * b.dims[1] * b.dims[2] }

func (b PeriodicBox) Equal(o Space) bool {
	ob, ok := o.(PeriodicBox)
	return ok && ob.dims == b.dims
}

func (b PeriodicBox) String() string {
	return fmt.Sprintf("PeriodicBox(%g, %g, %g)", b.dims[0], b.dims[1], b.dims[2])
}

// Map translates m by whole box lengths so its centroid lies in the box.
func (b PeriodicBox) Map(m mol.Molecule) (mol.Molecule, error) {
	if b.dims == ([3]float64{}) {
		return mol.Molecule{}, sire.Errorf(sire.InvalidArg, "PeriodicBox.Map", "box not initialized, use NewPeriodicBox")
	}
	if m.NAtoms() == 0 {
		return m, nil
	}
	c := m.Centroid()
	var shift [3]float64
	moved := false
	for i := range c {
		w := v3.Wrap(c[i], b.dims[i])
		shift[i] = w - c[i]
		if shift[i] != 0 {
			moved = true
		}
	}
	if !moved {
		return m, nil
	}
	return m.Edit().Translate(shift).Commit(), nil
}

func (b PeriodicBox) Save(w *stream.Writer) {
	w.Float64s(b.dims[:])
}

const spaceMagic uint32 = 0x53504143 // "SPAC"

// Save writes s, with its type, so Load can restore it.
func Save(w *stream.Writer, s Space) {
	w.Magic(spaceMagic, 1)
	w.String(s.Type())
	s.Save(w)
}

// Load reads a space written by Save.
func Load(r *stream.Reader) (Space, error) {
	r.Magic(spaceMagic, 1)
	t := r.String()
	if err := r.Err(); err != nil {
		return nil, sire.ErrDecorate(err, "space.Load")
	}
	switch t {
	case "cartesian":
		return Cartesian{}, nil
	case "periodicbox":
		d := r.Float64s()
		if err := r.Err(); err != nil {
			return nil, sire.ErrDecorate(err, "space.Load")
		}
		if len(d) != 3 {
			return nil, sire.Errorf(sire.Incompatible, "space.Load", "%d box sides", len(d))
		}
		return NewPeriodicBox([3]float64{d[0], d[1], d[2]})
	}
	return nil, sire.Errorf(sire.VersionError, "space.Load", "unknown space type %q", t)
}
