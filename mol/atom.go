/*
 * atom.go, part of sire-go.
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

package mol

import (
	"fmt"

	sire "github.com/chrys-athome/sire-sub022"
)

// MolNum is the process-unique number of a molecule.
type MolNum uint64

// MolName is the, not necessarily unique, name of a molecule.
type MolName string

// AtomIdx is the position of an atom in its molecule.
type AtomIdx int

var molNums sire.Incremint

// versions holds the version counters of every molecule, live or loaded.
var versions sire.Versions

// NewMolNum issues a new molecule number.
func NewMolNum() MolNum {
	return MolNum(molNums.Increment())
}

// AdvanceMolNums makes sure numbers issued from now on are larger than n.
func AdvanceMolNums(n MolNum) {
	molNums.Advance(uint64(n))
}

func (n MolNum) String() string {
	return fmt.Sprintf("MolNum(%d)", uint64(n))
}

// Element identifies the chemical element of an atom.
type Element struct {
	Symbol string
}

// Atom contains the information about an atom except for its coordinates,
// which are kept in a matrix in the Molecule.
type Atom struct {
	Name    string
	Index   AtomIdx
	Element Element
}

// NewAtom returns an atom with the given name and element symbol.
func NewAtom(name, symbol string) Atom {
	return Atom{Name: name, Element: Element{Symbol: symbol}}
}
