/*
 * version_test.go, part of sire-go.
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
	"testing"
)

func TestMajMin(Te *testing.T) {
	fmt.Println("MajMin test!")
	m := NewMajMin()
	m.IncrementMajor()
	if m.Version() != (Version{1, 0}) {
		Te.Errorf("Expected 1.0, got %v", m.Version())
	}
	m.IncrementMinor()
	m.IncrementMinor()
	if m.Version() != (Version{1, 2}) {
		Te.Errorf("Expected 1.2, got %v", m.Version())
	}
	//A copy shares the counters, so the two histories never meet.
	c := m
	m.IncrementMinor()
	c.IncrementMinor()
	if m.Version() == c.Version() {
		Te.Errorf("Forked trackers issued the same version %v", m.Version())
	}
	c.IncrementMajor()
	m.IncrementMajor()
	if m.Version() == c.Version() || m.Version().Minor != 0 {
		Te.Errorf("Bad major versions %v %v", m.Version(), c.Version())
	}
	if !c.Version().Less(m.Version()) {
		Te.Errorf("%v should be before %v", c.Version(), m.Version())
	}
}

func TestRestore(Te *testing.T) {
	m := RestoreMajMin(Version{5, 3})
	m.IncrementMinor()
	if m.Version() != (Version{5, 4}) {
		Te.Errorf("Expected 5.4, got %v", m.Version())
	}
	r := m.Restore(Version{7, 1})
	r.IncrementMajor()
	if r.Version() != (Version{8, 0}) {
		Te.Errorf("Expected 8.0, got %v", r.Version())
	}
	m.IncrementMajor()
	if m.Version() != (Version{9, 0}) {
		Te.Errorf("Shared counter not advanced, got %v", m.Version())
	}
}

func TestVersions(Te *testing.T) {
	var vs Versions
	live := vs.New(4)
	live.IncrementMajor()
	live.IncrementMinor()
	saved := live.Version()
	live.IncrementMinor()
	//A copy restored while the original lives on keeps away from its numbers.
	loaded := vs.Restore(4, saved)
	loaded.IncrementMinor()
	if loaded.Version() == live.Version() {
		Te.Errorf("Loaded copy reissued %v", live.Version())
	}
	other := vs.New(5)
	other.IncrementMajor()
	if other.Version() != (Version{1, 0}) {
		Te.Errorf("Objects should not share counters, got %v", other.Version())
	}
}

func TestIncremint(Te *testing.T) {
	var i Incremint
	if i.Increment() != 1 || i.Increment() != 2 {
		Te.Error("Incremint should start at 1")
	}
	i.Advance(40)
	if n := i.Increment(); n != 41 {
		Te.Errorf("Expected 41 after Advance, got %d", n)
	}
	i.Advance(3)
	if n := i.Increment(); n != 42 {
		Te.Errorf("Advance moved the counter back, got %d", n)
	}
}

func TestErrorKinds(Te *testing.T) {
	err := Errorf(MissingGroup, "MolGroups.Map", "no group called %q", "water")
	wrapped := fmt.Errorf("loading: %w", err)
	if !errors.Is(wrapped, MissingGroup) || errors.Is(wrapped, DuplicateGroup) {
		Te.Errorf("errors.Is doesn't see the kind of %v", wrapped)
	}
	ErrDecorate(wrapped, "SystemData.Group")
	if err.Trail() != "MolGroups.Map <- SystemData.Group" {
		Te.Errorf("Bad decoration trail %q", err.Trail())
	}
	if KindOf(wrapped) != MissingGroup || KindOf(errors.New("other")) != 0 {
		Te.Error("KindOf gave the wrong kind")
	}
}
