/*
 * selection.go, part of sire-go.
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
	"math/bits"
	"strconv"
	"strings"

	sire "github.com/chrys-athome/sire-sub022"
)

// Selection is an immutable set of the atoms of a molecule with n atoms.
type Selection struct {
	n     int
	bits  []uint64
	count int
}

func nwords(n int) int {
	return (n + 63) / 64
}

// SelectAll returns a selection of all the n atoms of a molecule.
func SelectAll(n int) Selection {
	s := Selection{n: n, bits: make([]uint64, nwords(n)), count: n}
	for i := range s.bits {
		s.bits[i] = ^uint64(0)
	}
	if r := n % 64; r != 0 {
		s.bits[len(s.bits)-1] = (uint64(1) << uint(r)) - 1
	}
	return s
}

// SelectNone returns an empty selection for a molecule with n atoms.
func SelectNone(n int) Selection {
	return Selection{n: n, bits: make([]uint64, nwords(n))}
}

// Select returns a selection of the given atoms of a molecule with n atoms.
// It fails with sire.InvalidIndex if an index is out of range.
func Select(n int, idx ...int) (Selection, error) {
	s := SelectNone(n)
	for _, i := range idx {
		if i < 0 || i >= n {
			return Selection{}, sire.Errorf(sire.InvalidIndex, "mol.Select", "atom index %d out of range for a molecule with %d atoms", i, n)
		}
		w, b := i/64, uint(i%64)
		if s.bits[w]&(1<<b) == 0 {
			s.bits[w] |= 1 << b
			s.count++
		}
	}
	return s, nil
}

// MustSelect is like Select but panics on error.
func MustSelect(n int, idx ...int) Selection {
	s, err := Select(n, idx...)
	if err != nil {
		panic(err)
	}
	return s
}

// NAtoms returns the number of atoms in the molecule the selection refers to.
func (s Selection) NAtoms() int { return s.n }

// Count returns the number of selected atoms.
func (s Selection) Count() int { return s.count }

func (s Selection) IsEmpty() bool { return s.count == 0 }

func (s Selection) IsAll() bool { return s.count == s.n }

// Contains reports whether the atom i is selected.
func (s Selection) Contains(i int) bool {
	if i < 0 || i >= s.n {
		return false
	}
	return s.bits[i/64]&(1<<uint(i%64)) != 0
}

// ContainsAll reports whether every atom selected in o is also selected in s.
func (s Selection) ContainsAll(o Selection) bool {
	s.check(o)
	for i, w := range o.bits {
		if w&^s.bits[i] != 0 {
			return false
		}
	}
	return true
}

// Intersects reports whether s and o select at least one common atom.
func (s Selection) Intersects(o Selection) bool {
	s.check(o)
	for i, w := range o.bits {
		if w&s.bits[i] != 0 {
			return true
		}
	}
	return false
}

func (s Selection) combine(o Selection, f func(a, b uint64) uint64) Selection {
	s.check(o)
	r := Selection{n: s.n, bits: make([]uint64, len(s.bits))}
	for i := range s.bits {
		r.bits[i] = f(s.bits[i], o.bits[i])
		r.count += bits.OnesCount64(r.bits[i])
	}
	return r
}

// Union returns the atoms selected in s or in o.
func (s Selection) Union(o Selection) Selection {
	return s.combine(o, func(a, b uint64) uint64 { return a | b })
}

// Intersection returns the atoms selected in both s and o.
func (s Selection) Intersection(o Selection) Selection {
	return s.combine(o, func(a, b uint64) uint64 { return a & b })
}

// Subtract returns the atoms selected in s but not in o.
func (s Selection) Subtract(o Selection) Selection {
	return s.combine(o, func(a, b uint64) uint64 { return a &^ b })
}

// Equal reports whether s and o select the same atoms of molecules of the same size.
func (s Selection) Equal(o Selection) bool {
	if s.n != o.n || s.count != o.count {
		return false
	}
	for i := range s.bits {
		if s.bits[i] != o.bits[i] {
			return false
		}
	}
	return true
}

// Indices returns the selected atom indexes in increasing order.
func (s Selection) Indices() []int {
	ret := make([]int, 0, s.count)
	for w, word := range s.bits {
		for word != 0 {
			b := bits.TrailingZeros64(word)
			ret = append(ret, w*64+b)
			word &= word - 1
		}
	}
	return ret
}

func (s Selection) String() string {
	if s.IsAll() {
		return "all(" + strconv.Itoa(s.n) + ")"
	}
	idx := s.Indices()
	str := make([]string, len(idx))
	for i, v := range idx {
		str[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(str, " ") + "]/" + strconv.Itoa(s.n)
}

func (s Selection) check(o Selection) {
	if s.n != o.n {
		panic("mol: combining selections of molecules with different numbers of atoms")
	}
}
