/*
 * errors.go, part of sire-go.
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

package sire

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies the errors returned by the core. A Kind is itself an error,
// so callers can test for a class of failure with errors.Is(err, sire.MissingGroup).
type Kind int

const (
	MissingGroup Kind = iota + 1
	MissingMolecule
	MissingForceField
	MissingComponent
	MissingProperty
	MissingMonitor
	DuplicateGroup
	DuplicateMolecule
	DuplicateAtom
	DuplicateForceField
	DuplicateMonitor
	VersionError
	Incompatible
	InvalidIndex
	InvalidArg
)

var kindNames = map[Kind]string{
	MissingGroup:        "missing group",
	MissingMolecule:     "missing molecule",
	MissingForceField:   "missing forcefield",
	MissingComponent:    "missing component",
	MissingProperty:     "missing property",
	MissingMonitor:      "missing monitor",
	DuplicateGroup:      "duplicate group",
	DuplicateMolecule:   "duplicate molecule",
	DuplicateAtom:       "duplicate atom",
	DuplicateForceField: "duplicate forcefield",
	DuplicateMonitor:    "duplicate monitor",
	VersionError:        "version error",
	Incompatible:        "incompatible",
	InvalidIndex:        "invalid index",
	InvalidArg:          "invalid argument",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error allows a bare Kind to be used as a sentinel.
func (k Kind) Error() string {
	return k.String()
}

// Error is the error type returned by every package of this library.
// Like the trajectory errors in goChem, it carries a "decoration" trail
// with the names of the functions it went through on its way up.
type Error struct {
	kind     Kind
	message  string
	deco     []string
	critical bool
}

// Errorf returns a new, non-critical Error of the given kind. caller is the first
// element of the decoration trail, and can be empty.
func Errorf(kind Kind, caller string, format string, args ...any) *Error {
	err := &Error{kind: kind, message: fmt.Sprintf(format, args...)}
	if caller != "" {
		err.deco = []string{caller}
	}
	return err
}

// Error returns a string with the error kind and message.
func (err *Error) Error() string {
	return fmt.Sprintf("sire: %s: %s", err.kind, err.message)
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice. An empty dec just returns the current trail.
func (err *Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Trail returns the decoration trail joined, innermost caller first.
func (err *Error) Trail() string {
	return strings.Join(err.deco, " <- ")
}

// Kind returns the class of the error.
func (err *Error) Kind() Kind { return err.kind }

// Critical returns true if the error leaves the program in a state it
// can't be trusted to continue from.
func (err *Error) Critical() bool { return err.critical }

// Is reports whether target is the Kind of this error.
func (err *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == err.kind
}

// ErrDecorate decorates the *Error wrapped in err, if there is one,
// with the caller's name, and returns err.
func ErrDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		e.Decorate(caller)
	}
	return err
}

// KindOf returns the Kind of err, or 0 if err was not produced by this library.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return 0
}
