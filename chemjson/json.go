/*
 * json.go, part of sire-go.
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

package chemjson

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	sire "github.com/chrys-athome/sire-sub022"
	"github.com/chrys-athome/sire-sub022/system"
)

// A ready-to-serialize container for a molecule.
type Molecule struct {
	Number   uint64     `json:"number"`
	Name     string     `json:"name"`
	Version  string     `json:"version"`
	NAtoms   int        `json:"natoms"`
	Centroid [3]float64 `json:"centroid"`
	Coords   []float64  `json:"coords,omitempty"` //only filled if asked for
}

// A ready-to-serialize container for a molecule group.
type Group struct {
	Number    uint64   `json:"number"`
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	NViews    int      `json:"nviews"`
	Molecules []uint64 `json:"molecules"`
}

// An energy component and its value.
type Energy struct {
	Component string  `json:"component"`
	Value     float64 `json:"value"`
}

// A monitor, with its current value as text.
type Monitor struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Samples int    `json:"samples"`
	Value   string `json:"value,omitempty"`
}

// A ready-to-serialize summary of a system.
type System struct {
	Name      string     `json:"name"`
	ID        uint64     `json:"id"`
	UID       string     `json:"uid"`
	Version   string     `json:"version"`
	Space     string     `json:"space"`
	Volume    *float64   `json:"volume,omitempty"` //nil for infinite spaces
	Groups    []Group    `json:"groups"`
	Molecules []Molecule `json:"molecules"`
	Energies  []Energy   `json:"energies"`
	Monitors  []Monitor  `json:"monitors,omitempty"`
	Error     *Error     `json:"error,omitempty"`
}

// NewSystem builds the summary of q. Coordinates are only included if coords is true.
func NewSystem(q system.QuerySystem, coords bool) *System {
	s := &System{
		Name:    q.Name(),
		ID:      uint64(q.ID()),
		UID:     q.UID().String(),
		Version: q.Version().String(),
		Space:   q.Space().Type(),
	}
	if v := q.Space().Volume(); !math.IsInf(v, 0) {
		s.Volume = &v
	}
	for _, g := range q.Groups().Groups() {
		jg := Group{Number: uint64(g.Number()), Name: string(g.Name()), Version: g.Version().String(), NViews: g.NViews()}
		for _, n := range g.MolNums() {
			jg.Molecules = append(jg.Molecules, uint64(n))
		}
		s.Groups = append(s.Groups, jg)
	}
	for _, n := range q.MolNums() {
		m, err := q.Molecule(n)
		if err != nil {
			s.Error = NewError("NewSystem", err)
			continue
		}
		jm := Molecule{Number: uint64(n), Name: string(m.Name()), Version: m.Version().String(), NAtoms: m.NAtoms(), Centroid: m.Centroid()}
		if coords {
			jm.Coords = m.Coords().RawVecs()
		}
		s.Molecules = append(s.Molecules, jm)
	}
	energies := q.Energies()
	for _, c := range q.ForceFields().Components() {
		s.Energies = append(s.Energies, Energy{Component: string(c), Value: energies[c]})
	}
	ms := q.Monitors()
	for _, name := range ms.Names() {
		m, _ := ms.Get(name)
		jm := Monitor{Name: name, Kind: m.Kind(), Samples: m.Samples()}
		if st, ok := m.(fmt.Stringer); ok {
			jm.Value = st.String()
		}
		s.Monitors = append(s.Monitors, jm)
	}
	return s
}

// Send writes the summary to out as indented JSON, with map keys sorted.
func (s *System) Send(out io.Writer) error {
	if err := json.MarshalWrite(out, s, json.Deterministic(true), jsontext.WithIndent("  ")); err != nil {
		return NewError("System.Send", err)
	}
	_, err := io.WriteString(out, "\n")
	return err
}

// ReadSystem reads a summary written by Send.
func ReadSystem(in io.Reader) (*System, error) {
	s := new(System)
	if err := json.UnmarshalRead(in, s); err != nil {
		return nil, NewError("ReadSystem", err)
	}
	return s, nil
}

// Energy returns the value of the component c in the summary, and whether it was there.
func (s *System) Energy(c string) (float64, bool) {
	for _, e := range s.Energies {
		if e.Component == c {
			return e.Value, true
		}
	}
	return 0, false
}

// An easily JSON-serializable error type.
type Error struct {
	deco     []string
	Function string `json:"function"` //which go function gave the error
	Kind     string `json:"kind,omitempty"`
	Message  string `json:"message"` //the error itself
}

// Error implements the error interface
func (J *Error) Error() string {
	return J.Message
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (J *Error) Decorate(dec string) []string {
	if dec == "" {
		return J.deco
	}
	J.deco = append(J.deco, dec)
	return J.deco
}

// Serializes the error. Panics on failure.
func (J *Error) Marshal() []byte {
	ret, err2 := json.Marshal(J)
	if err2 != nil {
		panic(strings.Join([]string{J.Error(), err2.Error()}, " - "))
	}
	return ret
}

// Takes an error and the function it happened in, to create a json-marshal-ble error
func NewError(function string, err error) *Error {
	jerr := &Error{Function: function, Message: err.Error()}
	if k := sire.KindOf(err); k != 0 {
		jerr.Kind = k.String()
	}
	return jerr
}
