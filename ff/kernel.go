/*
 * kernel.go, part of sire-go.
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

package ff

import (
	"fmt"
	"sort"
	"sync"

	sire "github.com/chrys-athome/sire-sub022"
	"github.com/chrys-athome/sire-sub022/mol"
	"github.com/chrys-athome/sire-sub022/stream"
	v3 "github.com/chrys-athome/sire-sub022/v3"
)

// Params are the per-atom parameters a Kernel computes for one molecule.
type Params []float64

// Kernel is the energy function of a forcefield. Kernels are immutable values:
// SetProperty returns a new Kernel.
type Kernel interface {
	// Kind names the kernel. It is part of the name of the energy component
	// and is used to find the loader of saved kernels.
	Kind() string
	// Parameterise reads the parameters of the viewed molecule, using pm to
	// find the properties it needs.
	Parameterise(v mol.View, pm mol.PropertyMap) (Params, error)
	// Energy returns the energy of the view, with parameters p.
	Energy(v mol.View, p Params) (float64, error)
	// SetProperty returns a kernel with the property name set to value, and
	// whether the kernel has such a property at all.
	SetProperty(name string, value any) (Kernel, bool, error)
	// Property returns the current value of a kernel property.
	Property(name string) (any, bool)
	Save(w *stream.Writer)
}

// KernelLoader reads a kernel written by its Save method.
type KernelLoader func(r *stream.Reader) (Kernel, error)

var (
	kernelsMu sync.RWMutex
	kernels   = map[string]KernelLoader{}
)

// RegisterKernel makes the kernels of the given kind loadable. It panics
// if the kind is registered twice.
func RegisterKernel(kind string, l KernelLoader) {
	kernelsMu.Lock()
	defer kernelsMu.Unlock()
	if _, dup := kernels[kind]; dup {
		panic("ff: RegisterKernel called twice for " + kind)
	}
	kernels[kind] = l
}

// Kinds returns the registered kernel kinds, sorted.
func Kinds() []string {
	kernelsMu.RLock()
	defer kernelsMu.RUnlock()
	ret := make([]string, 0, len(kernels))
	for k := range kernels {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

func loadKernel(kind string, r *stream.Reader) (Kernel, error) {
	kernelsMu.RLock()
	l, ok := kernels[kind]
	kernelsMu.RUnlock()
	if !ok {
		return nil, sire.Errorf(sire.VersionError, "ff.loadKernel", "no kernel of kind %q is registered", kind)
	}
	return l(r)
}

func init() {
	RegisterKernel(HarmonicKind, loadHarmonic)
	RegisterKernel(PropertySumKind, loadPropertySum)
}

// perAtom reads the per-atom property name of v's molecule, through pm.
func perAtom(caller string, v mol.View, pm mol.PropertyMap, name string) (Params, error) {
	src := pm.Source(name)
	p, ok := v.Mol.Property(src)
	if !ok {
		return nil, sire.Errorf(sire.MissingProperty, caller, "molecule %v has no property %q (for %q)", v.Number(), src, name)
	}
	return Params(p), nil
}

func checkParams(caller string, v mol.View, p Params) error {
	if len(p) != v.Mol.NAtoms() {
		return sire.Errorf(sire.Incompatible, caller, "%d parameters for molecule %v with %d atoms", len(p), v.Number(), v.Mol.NAtoms())
	}
	return nil
}

func toFloat(caller, name string, value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return 0, sire.Errorf(sire.InvalidArg, caller, "property %q wants a number, not %T", name, value)
}

const HarmonicKind = "harmonic"

// Harmonic restrains atoms to a point: E = sum_i k_i |r_i - c|^2, with the
// force constants k_i read from the per-atom property "k".
//
// Kernel properties: "centre" ([3]float64 or a []float64 of length 3) and
// "scale" (a factor applied to every k_i, 1 by default).
type Harmonic struct {
	Centre [3]float64
	Scale  float64
}

// NewHarmonic returns a harmonic kernel centred at c.
func NewHarmonic(c [3]float64) Harmonic {
	return Harmonic{Centre: c, Scale: 1}
}

func (h Harmonic) Kind() string { return HarmonicKind }

func (h Harmonic) Parameterise(v mol.View, pm mol.PropertyMap) (Params, error) {
	return perAtom("Harmonic.Parameterise", v, pm, "k")
}

func (h Harmonic) Energy(v mol.View, p Params) (float64, error) {
	if err := checkParams("Harmonic.Energy", v, p); err != nil {
		return 0, err
	}
	var e float64
	for _, i := range v.Sel.Indices() {
		r := v.Mol.Coord(i)
		d := [3]float64{r[0] - h.Centre[0], r[1] - h.Centre[1], r[2] - h.Centre[2]}
		e += p[i] * v3.Norm2(d)
	}
	return h.Scale * e, nil
}

func (h Harmonic) SetProperty(name string, value any) (Kernel, bool, error) {
	switch name {
	case "centre":
		switch c := value.(type) {
		case [3]float64:
			h.Centre = c
		case []float64:
			if len(c) != 3 {
				return nil, true, sire.Errorf(sire.InvalidArg, "Harmonic.SetProperty", "centre needs 3 values, not %d", len(c))
			}
			h.Centre = [3]float64{c[0], c[1], c[2]}
		default:
			return nil, true, sire.Errorf(sire.InvalidArg, "Harmonic.SetProperty", "centre can't be a %T", value)
		}
		return h, true, nil
	case "scale":
		s, err := toFloat("Harmonic.SetProperty", name, value)
		if err != nil {
			return nil, true, err
		}
		h.Scale = s
		return h, true, nil
	}
	return h, false, nil
}

func (h Harmonic) Property(name string) (any, bool) {
	switch name {
	case "centre":
		return h.Centre, true
	case "scale":
		return h.Scale, true
	}
	return nil, false
}

func (h Harmonic) Save(w *stream.Writer) {
	w.Float64s(h.Centre[:])
	w.Float64(h.Scale)
}

func (h Harmonic) String() string {
	return fmt.Sprintf("Harmonic(centre=%v, scale=%g)", h.Centre, h.Scale)
}

func loadHarmonic(r *stream.Reader) (Kernel, error) {
	c := r.Float64s()
	s := r.Float64()
	if err := r.Err(); err != nil {
		return nil, err
	}
	if len(c) != 3 {
		return nil, sire.Errorf(sire.Incompatible, "ff.loadHarmonic", "centre with %d values", len(c))
	}
	return Harmonic{Centre: [3]float64{c[0], c[1], c[2]}, Scale: s}, nil
}

const PropertySumKind = "propertysum"

// PropertySum adds up a per-atom property, "energy" by default.
// Its only kernel property is "scale".
type PropertySum struct {
	Scale float64
}

func NewPropertySum() PropertySum { return PropertySum{Scale: 1} }

func (s PropertySum) Kind() string { return PropertySumKind }

func (s PropertySum) Parameterise(v mol.View, pm mol.PropertyMap) (Params, error) {
	return perAtom("PropertySum.Parameterise", v, pm, "energy")
}

func (s PropertySum) Energy(v mol.View, p Params) (float64, error) {
	if err := checkParams("PropertySum.Energy", v, p); err != nil {
		return 0, err
	}
	var e float64
	for _, i := range v.Sel.Indices() {
		e += p[i]
	}
	return s.Scale * e, nil
}

func (s PropertySum) SetProperty(name string, value any) (Kernel, bool, error) {
	if name != "scale" {
		return s, false, nil
	}
	f, err := toFloat("PropertySum.SetProperty", name, value)
	if err != nil {
		return nil, true, err
	}
	s.Scale = f
	return s, true, nil
}

func (s PropertySum) Property(name string) (any, bool) {
	if name == "scale" {
		return s.Scale, true
	}
	return nil, false
}

func (s PropertySum) Save(w *stream.Writer) {
	w.Float64(s.Scale)
}

func loadPropertySum(r *stream.Reader) (Kernel, error) {
	s := PropertySum{Scale: r.Float64()}
	return s, r.Err()
}
