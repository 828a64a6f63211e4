/*
 * histogram.go, part of sire-go.
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
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	sire "github.com/chrys-athome/sire-sub022"
	"github.com/chrys-athome/sire-sub022/ff"
	"github.com/chrys-athome/sire-sub022/stream"
)

const HistogramKind = "histogram"

// Histogram bins the values of an energy component. Values outside the
// dividers are counted in Samples, but not in any bin.
type Histogram struct {
	name      string
	component ff.Component
	total     int
	dividers  []float64
	histo     []float64
}

// NewHistogram returns an empty histogram with the given bin dividers, which
// must be at least two, and sorted.
func NewHistogram(name string, c ff.Component, dividers []float64) (Histogram, error) {
	if len(dividers) < 2 || !sort.Float64sAreSorted(dividers) {
		return Histogram{}, sire.Errorf(sire.InvalidArg, "monitor.NewHistogram", "need at least 2 sorted dividers, got %v", dividers)
	}
	h := Histogram{name: name, component: c}
	//I prefer to copy the slice to avoid somebody changing it from outside
	h.dividers = make([]float64, len(dividers))
	copy(h.dividers, dividers)
	h.histo = make([]float64, len(dividers)-1)
	return h, nil
}

// HistogramOf returns a histogram with rawdata already binned.
func HistogramOf(name string, c ff.Component, dividers, rawdata []float64) (Histogram, error) {
	h, err := NewHistogram(name, c, dividers)
	if err != nil {
		return h, err
	}
	data := make([]float64, len(rawdata))
	copy(data, rawdata)
	sort.Float64s(data)
	h.total = len(data)
	//stat.Histogram panics instead of omitting the values that are off limits,
	//so we remove them here before the call.
	maxi := sort.SearchFloat64s(data, h.dividers[len(h.dividers)-1])
	mini := sort.SearchFloat64s(data, h.dividers[0])
	data = data[mini:maxi]
	h.histo = stat.Histogram(nil, h.dividers, data, nil)
	return h, nil
}

func (h Histogram) Name() string { return h.name }

func (h Histogram) Kind() string { return HistogramKind }

func (h Histogram) Component() ff.Component { return h.component }

func (h Histogram) Samples() int { return h.total }

// Dividers returns a copy of the bin dividers.
func (h Histogram) Dividers() []float64 {
	return floats.ScaleTo(make([]float64, len(h.dividers)), 1, h.dividers)
}

// Counts returns a copy of the counts of each bin.
func (h Histogram) Counts() []float64 {
	return floats.ScaleTo(make([]float64, len(h.histo)), 1, h.histo)
}

// Normalized returns the fraction of all the samples that went to each bin.
func (h Histogram) Normalized() []float64 {
	if h.total == 0 {
		return make([]float64, len(h.histo))
	}
	return floats.ScaleTo(make([]float64, len(h.histo)), 1/float64(h.total), h.histo)
}

// Binned returns the number of samples that fell in a bin.
func (h Histogram) Binned() float64 {
	return floats.Sum(h.histo)
}

// Mean returns the mean of the binned samples, taking each at the centre of its bin.
func (h Histogram) Mean() float64 {
	centres := make([]float64, len(h.histo))
	for i := range centres {
		centres[i] = (h.dividers[i] + h.dividers[i+1]) / 2
	}
	return stat.Mean(centres, h.histo)
}

// Add returns the histogram with the points added.
func (h Histogram) Add(point ...float64) Histogram {
	h.histo = h.Counts()
	for _, v := range point {
		for j, w := range h.dividers {
			//Values that are larger than the last divider are just omitted.
			if j == len(h.dividers)-1 {
				break
			}
			if w <= v && v < h.dividers[j+1] {
				h.histo[j]++
				break
			}
		}
	}
	h.total += len(point)
	return h
}

func (h Histogram) Update(src Source) (Monitor, error) {
	e, err := src.Energy(h.component)
	if err != nil {
		return nil, err
	}
	return h.Add(e), nil
}

// String prints a -hopefully- pretty string representation of
// the histogram. The representation uses 3 lines of text.
func (h Histogram) String() string {
	ret := fmt.Sprintf("%s: %s, %d samples\n", h.name, h.component, h.total)
	d := make([]string, 0, len(h.histo))
	c := make([]string, 0, len(h.histo))
	for i, v := range h.histo {
		d = append(d, fmt.Sprintf("%4.2f-%4.2f", h.dividers[i], h.dividers[i+1]))
		c = append(c, fmt.Sprintf("%9.3f", v))
	}
	return ret + fmt.Sprintf("%s\n%s", strings.Join(d, " "), strings.Join(c, " "))
}

func (h Histogram) Save(w *stream.Writer) {
	w.String(string(h.component))
	w.Int(h.total)
	w.Float64s(h.dividers)
	w.Float64s(h.histo)
}

func loadHistogram(r *stream.Reader, name string) (Monitor, error) {
	h := Histogram{name: name, component: ff.Component(r.String()), total: r.Int(), dividers: r.Float64s(), histo: r.Float64s()}
	if err := r.Err(); err != nil {
		return nil, err
	}
	if len(h.dividers) < 2 || len(h.histo) != len(h.dividers)-1 {
		return nil, sire.Errorf(sire.Incompatible, "monitor.loadHistogram", "%d bins for %d dividers", len(h.histo), len(h.dividers))
	}
	return h, nil
}
