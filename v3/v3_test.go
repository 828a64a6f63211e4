/*
 * v3_test.go, part of sire-go.
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

package v3

import (
	"fmt"
	"math"
	"testing"
)

func TestSomeVecs(Te *testing.T) {
	fmt.Println("SomeVecs test!")
	a := []float64{1.0, 2.0, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18}
	A, err := NewMatrix(a)
	if err != nil {
		Te.Fatal(err)
	}
	B := Zeros(3)
	cind := []int{1, 3, 5}
	if err = B.SomeVecsSafe(A, cind); err != nil {
		Te.Fatal(err)
	}
	if B.At(0, 0) != 4 || B.At(2, 2) != 18 {
		Te.Errorf("Wrong vectors selected: %v", B)
	}
	B.Set(1, 1, 55)
	A.SetVecs(B, cind)
	if A.At(3, 1) != 55 {
		Te.Errorf("SetVecs didn't copy the changed vector back: %v", A)
	}
	if err = Zeros(2).SomeVecsSafe(A, cind); err == nil {
		Te.Error("Expected a shape error")
	}
}

func TestNewMatrixBadLength(Te *testing.T) {
	if _, err := NewMatrix([]float64{1, 2, 3, 4}); err == nil {
		Te.Error("A slice with 4 elements should not give a Matrix")
	}
	Z, err := NewMatrix(nil)
	if err != nil || Z.NVecs() != 0 {
		Te.Errorf("An empty slice should give an empty Matrix, got %v %v", Z, err)
	}
}

func TestCentroidTranslate(Te *testing.T) {
	A, _ := NewMatrix([]float64{0, 0, 0, 2, 0, 0, 0, 4, 0, 2, 4, 8})
	c := A.Centroid()
	if c != [3]float64{1, 2, 2} {
		Te.Errorf("Wrong centroid %v", c)
	}
	B := A.Clone()
	B.Translate([3]float64{-1, -2, -2})
	if B.Centroid() != [3]float64{0, 0, 0} {
		Te.Errorf("Translation didn't center the set: %v", B)
	}
	if A.EqualApprox(B, 1e-9) {
		Te.Error("Clone shares data with the original")
	}
	row, _ := NewMatrix([]float64{1, 2, 2})
	A.SubVec(A, row)
	if !A.EqualApprox(B, 1e-9) {
		Te.Errorf("SubVec and Translate disagree:%v\n%v", A, B)
	}
	A.AddVec(A, row)
	if A.Vec(3) != [3]float64{2, 4, 8} {
		Te.Errorf("AddVec didn't restore the vector: %v", A.Vec(3))
	}
	//Subtracting one of its own vectors, in place
	A.SubVec(A, A.VecView(3))
	if A.Vec(3) != [3]float64{} || A.Vec(0) != [3]float64{-2, -4, -8} {
		Te.Errorf("SubVec with an aliased vector: %v", A)
	}
	A.AddVec(A, row)
	if A.Vec(3) != [3]float64{1, 2, 2} {
		Te.Errorf("AddVec in place: %v", A.Vec(3))
	}
}

func TestWrap(Te *testing.T) {
	cases := [][3]float64{{5, 10, 5}, {12, 10, 2}, {-1, 10, 9}, {-21, 10, 9}}
	for _, c := range cases {
		if w := Wrap(c[0], c[1]); math.Abs(w-c[2]) > 1e-12 {
			Te.Errorf("Wrap(%v, %v) = %v, expected %v", c[0], c[1], w, c[2])
		}
	}
}
