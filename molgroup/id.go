/*
 * id.go, part of sire-go.
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

package molgroup

import (
	"fmt"

	sire "github.com/chrys-athome/sire-sub022"
)

// MGNum is the process-unique number of a molecule group.
type MGNum uint64

// MGName is the name of a group. Names don't need to be unique.
type MGName string

// MGIdx is the position of a group in a MolGroups registry. Negative
// values count from the end.
type MGIdx int

// MGAll identifies every group in a registry.
type MGAll struct{}

// MGID identifies one or more groups of a registry. It is implemented by
// MGNum, MGName, MGIdx and MGAll only.
type MGID interface {
	fmt.Stringer
	mgID()
}

func (MGNum) mgID()  {}
func (MGName) mgID() {}
func (MGIdx) mgID()  {}
func (MGAll) mgID()  {}

func (n MGNum) String() string  { return fmt.Sprintf("MGNum(%d)", uint64(n)) }
func (n MGName) String() string { return fmt.Sprintf("MGName(%q)", string(n)) }
func (i MGIdx) String() string  { return fmt.Sprintf("MGIdx(%d)", int(i)) }
func (MGAll) String() string    { return "MGAll" }

var mgNums sire.Incremint

var versions sire.Versions

// NewMGNum issues a new group number.
func NewMGNum() MGNum {
	return MGNum(mgNums.Increment())
}

// AdvanceMGNums makes sure numbers issued from now on are larger than n.
func AdvanceMGNums(n MGNum) {
	mgNums.Advance(uint64(n))
}
