/*
 * monitor_test.go, part of sire-go.
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
	"bytes"
	"errors"
	"fmt"
	"math"
	"testing"

	sire "github.com/chrys-athome/sire-sub022"
	"github.com/chrys-athome/sire-sub022/ff"
	"github.com/chrys-athome/sire-sub022/stream"
)

// fixed is a Source with a made-up energy.
type fixed struct {
	e       float64
	missing bool
}

func (f fixed) Energy(c ff.Component) (float64, error) {
	if f.missing {
		return 0, sire.Errorf(sire.MissingComponent, "fixed.Energy", "no %s", c)
	}
	return f.e, nil
}

func (f fixed) Version() sire.Version { return sire.Version{Major: 1} }

func (f fixed) NMolecules() int { return 1 }

func TestAverage(Te *testing.T) {
	fmt.Println("Average monitor test!")
	var a Monitor = NewAverage("avg", ff.Total)
	for _, e := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		var err error
		if a, err = a.Update(fixed{e: e}); err != nil {
			Te.Fatal(err)
		}
	}
	av := a.(Average)
	if av.Mean() != 5 || math.Abs(av.Variance()-32.0/7) > 1e-12 || av.Samples() != 8 {
		Te.Errorf("Bad statistics: %v %v %d", av.Mean(), av.Variance(), av.Samples())
	}
	if !math.IsNaN(NewAverage("x", ff.Total).Variance()) {
		Te.Error("Variance of nothing should be NaN")
	}
}

func TestHistogram(Te *testing.T) {
	h, err := NewHistogram("h", ff.Total, []float64{0, 1, 2, 3, 4, 8})
	if err != nil {
		Te.Fatal(err)
	}
	h2 := h.Add(1, 6, 3, 2, 4, 5, 7, 6, 3.5, 3, 44, -1)
	if h.Samples() != 0 || h.Binned() != 0 {
		Te.Error("Add changed the original histogram")
	}
	from, _ := HistogramOf("h", ff.Total, []float64{0, 1, 2, 3, 4, 8}, []float64{1, 6, 3, 2, 4, 5, 7, 6, 3.5, 3, 44, -1})
	want := []float64{0, 1, 1, 3, 5}
	for i, c := range h2.Counts() {
		if c != want[i] || from.Counts()[i] != want[i] {
			Te.Errorf("Bin %d: expected %v, got %v and %v", i, want[i], c, from.Counts()[i])
		}
	}
	if h2.Samples() != 12 || h2.Binned() != 10 {
		Te.Errorf("Bad totals %d %v", h2.Samples(), h2.Binned())
	}
	fmt.Println(h2.String())
	if _, err := NewHistogram("bad", ff.Total, []float64{1, 0}); !errors.Is(err, sire.InvalidArg) {
		Te.Errorf("Expected InvalidArg, got %v", err)
	}
}

func TestMonitors(Te *testing.T) {
	var s Monitors
	h, _ := NewHistogram("h", ff.Total, []float64{0, 10})
	if err := s.Add(NewAverage("avg", ff.Total)); err != nil {
		Te.Fatal(err)
	}
	if err := s.Add(h); err != nil {
		Te.Fatal(err)
	}
	if err := s.Add(NewAverage("avg", ff.Total)); !errors.Is(err, sire.DuplicateMonitor) {
		Te.Errorf("Expected DuplicateMonitor, got %v", err)
	}
	snap := s
	if err := s.Update(fixed{e: 3}); err != nil {
		Te.Fatal(err)
	}
	if m, _ := snap.Get("avg"); m.Samples() != 0 {
		Te.Error("Update leaked into a copy")
	}
	before := s
	if err := s.Update(fixed{missing: true}); !errors.Is(err, sire.MissingComponent) {
		Te.Errorf("Expected MissingComponent, got %v", err)
	}
	if m, _ := s.Get("avg"); m.Samples() != 1 || len(s.ms) != len(before.ms) {
		Te.Error("A failed update changed the monitors")
	}
	var buf bytes.Buffer
	w := stream.NewWriter(&buf)
	Save(w, s)
	got, err := Load(stream.NewReader(&buf))
	if err != nil {
		Te.Fatal(err)
	}
	gh, _ := got.Get("h")
	if gh.Samples() != 1 || gh.(Histogram).Counts()[0] != 1 {
		Te.Errorf("Histogram not restored: %v", gh)
	}
	ga, _ := got.Get("avg")
	if ga.(Average).Mean() != 3 {
		Te.Errorf("Average not restored: %v", ga)
	}
	if err := got.Remove("avg"); err != nil || got.Len() != 1 {
		Te.Errorf("Remove failed: %v", err)
	}
	if _, err := got.Get("avg"); !errors.Is(err, sire.MissingMonitor) {
		Te.Errorf("Expected MissingMonitor, got %v", err)
	}
}

func TestMonitorsEqual(Te *testing.T) {
	fmt.Println("Monitors equality test!")
	sets := make([]Monitors, 3)
	for i, e := range []float64{1, 1, 3} {
		var a Monitor = NewAverage("avg", ff.Total)
		a, _ = a.Update(fixed{e: e})
		if err := sets[i].Add(a); err != nil {
			Te.Fatal(err)
		}
	}
	if !sets[0].Equal(sets[1]) {
		Te.Error("Monitors with the same samples should be equal")
	}
	//Same number of samples, different mean.
	if sets[0].Equal(sets[2]) {
		Te.Error("Monitors with different statistics should not be equal")
	}
	if sets[0].Equal(Monitors{}) {
		Te.Error("A set should not equal the empty set")
	}
}
