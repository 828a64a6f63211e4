/*
 * average.go, part of sire-go.
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

package monitor

import (
	"fmt"
	"math"

	"github.com/chrys-athome/sire-sub022/ff"
	"github.com/chrys-athome/sire-sub022/stream"
)

const AverageKind = "average"

// Average keeps the running mean and variance of an energy component.
type Average struct {
	name      string
	component ff.Component
	n         int
	mean, m2  float64
}

// NewAverage returns an Average of the component c without samples.
func NewAverage(name string, c ff.Component) Average {
	return Average{name: name, component: c}
}

func (a Average) Name() string { return a.name }

func (a Average) Kind() string { return AverageKind }

func (a Average) Component() ff.Component { return a.component }

func (a Average) Samples() int { return a.n }

func (a Average) Mean() float64 { return a.mean }

// Variance returns the sample variance, or NaN with less than two samples.
func (a Average) Variance() float64 {
	if a.n < 2 {
		return math.NaN()
	}
	return a.m2 / float64(a.n-1)
}

func (a Average) StdDev() float64 { return math.Sqrt(a.Variance()) }

// Add returns the average with x added, using Welford's update.
func (a Average) Add(x float64) Average {
	a.n++
	d := x - a.mean
	a.mean += d / float64(a.n)
	a.m2 += d * (x - a.mean)
	return a
}

func (a Average) Update(src Source) (Monitor, error) {
	e, err := src.Energy(a.component)
	if err != nil {
		return nil, err
	}
	return a.Add(e), nil
}

func (a Average) String() string {
	return fmt.Sprintf("%s: <%s> = %g over %d samples", a.name, a.component, a.mean, a.n)
}

func (a Average) Save(w *stream.Writer) {
	w.String(string(a.component))
	w.Int(a.n)
	w.Float64(a.mean)
	w.Float64(a.m2)
}

func loadAverage(r *stream.Reader, name string) (Monitor, error) {
	a := Average{name: name, component: ff.Component(r.String()), n: r.Int(), mean: r.Float64(), m2: r.Float64()}
	return a, r.Err()
}
