/*
 * plot.go, part of sire-go.
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

package chemplot

import (
	"image/color"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	sire "github.com/chrys-athome/sire-sub022"
	"github.com/chrys-athome/sire-sub022/ff"
	"github.com/chrys-athome/sire-sub022/monitor"
)

// Size is the width and height of the saved plots.
var Size = 5 * vg.Inch

func basicPlot(title, x, y string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = x
	p.Y.Label.Text = y
	p.Add(plotter.NewGrid())
	return p
}

// save writes p to filename. The format follows the extension, PNG if there is none.
func save(p *plot.Plot, filename string) error {
	if filepath.Ext(filename) == "" {
		filename += ".png"
	}
	return p.Save(Size, Size, filename)
}

// Histogram draws the bins of h, with the number of samples in each, and
// saves the plot to filename.
func Histogram(h monitor.Histogram, title, filename string) error {
	div, counts := h.Dividers(), h.Counts()
	bins := make([]plotter.HistogramBin, len(counts))
	for i, c := range counts {
		bins[i] = plotter.HistogramBin{Min: div[i], Max: div[i+1], Weight: c}
	}
	r, g, b := colors(0, 1)
	hp := &plotter.Histogram{
		Bins:      bins,
		Width:     (div[len(div)-1] - div[0]) / float64(len(bins)),
		FillColor: color.RGBA{R: r, G: g, B: b, A: 255},
		LineStyle: plotter.DefaultLineStyle,
	}
	if title == "" {
		title = h.Name()
	}
	p := basicPlot(title, string(h.Component()), "Samples")
	p.Add(hp)
	if err := save(p, filename); err != nil {
		return sire.ErrDecorate(err, "chemplot.Histogram")
	}
	return nil
}

// Trace records energy components of a system at chosen steps.
type Trace struct {
	comps  []ff.Component
	steps  []float64
	values [][]float64
}

// NewTrace returns an empty trace of the given components.
func NewTrace(comps ...ff.Component) *Trace {
	return &Trace{comps: comps, values: make([][]float64, len(comps))}
}

func (t *Trace) Len() int { return len(t.steps) }

// Components returns the traced components.
func (t *Trace) Components() []ff.Component {
	return append([]ff.Component(nil), t.comps...)
}

// Values returns the recorded values of c, in step order.
func (t *Trace) Values(c ff.Component) ([]float64, error) {
	for i, tc := range t.comps {
		if tc == c {
			return append([]float64(nil), t.values[i]...), nil
		}
	}
	return nil, sire.Errorf(sire.MissingComponent, "Trace.Values", "%s is not traced", c)
}

// Record adds the energy of every component of src at step. Nothing is
// recorded if any component is missing.
func (t *Trace) Record(step int, src monitor.Source) error {
	row := make([]float64, len(t.comps))
	for i, c := range t.comps {
		e, err := src.Energy(c)
		if err != nil {
			return sire.ErrDecorate(err, "Trace.Record")
		}
		row[i] = e
	}
	t.steps = append(t.steps, float64(step))
	for i, e := range row {
		t.values[i] = append(t.values[i], e)
	}
	return nil
}

// Save draws one line per component against the step and saves the plot
// to filename. An empty trace is a sire.InvalidArg error.
func (t *Trace) Save(title, filename string) error {
	if t.Len() == 0 {
		return sire.Errorf(sire.InvalidArg, "Trace.Save", "nothing recorded")
	}
	p := basicPlot(title, "Step", "Energy")
	for k, c := range t.comps {
		xys := make(plotter.XYs, t.Len())
		for i := range xys {
			xys[i].X = t.steps[i]
			xys[i].Y = t.values[k][i]
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return sire.ErrDecorate(err, "Trace.Save")
		}
		r, g, b := colors(k, len(t.comps))
		l.Color = color.RGBA{R: r, G: g, B: b, A: 255}
		p.Add(l)
		p.Legend.Add(string(c), l)
	}
	if err := save(p, filename); err != nil {
		return sire.ErrDecorate(err, "Trace.Save")
	}
	return nil
}

// FileName turns a monitor or component name into something usable as a
// file name.
func FileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ', '(', ')', ':', '*', '?':
			return '_'
		}
		return r
	}, name)
}

// takes hue (0-360), v and s (0-1), returns r,g,b (0-255)
func iHVS2RGB(h, v, s float64) (uint8, uint8, uint8) {
	var i, f, p, q, t float64
	var r, g, b float64
	maxcolor := 255.0
	conversion := maxcolor * v
	if s == 0.0 {
		return uint8(conversion), uint8(conversion), uint8(conversion)
	}
	h = h / 60
	i = math.Floor(h)
	f = h - i
	p = v * (1 - s)
	q = v * (1 - s*f)
	t = v * (1 - s*(1-f))
	switch int(i) {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default: //case 5
		r, g, b = v, p, q
	}
	return uint8(r * maxcolor), uint8(g * maxcolor), uint8(b * maxcolor)
}

// colors spreads steps colors over the hue circle, and returns the key-th.
func colors(key, steps int) (r, g, b uint8) {
	norm := 260.0 / float64(steps)
	hp := float64(key)*norm + 20.0
	var h float64
	if hp < 55 {
		h = hp - 20.0
	} else {
		h = hp + 20.0
	}
	return iHVS2RGB(h, 1.0, 1.0)
}
