/*
 * checkpoint.go, part of sire-go.
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

package system

import (
	"fmt"
	"io"

	"github.com/google/uuid"

	sire "github.com/chrys-athome/sire-sub022"
	"github.com/chrys-athome/sire-sub022/ff"
	"github.com/chrys-athome/sire-sub022/mol"
	"github.com/chrys-athome/sire-sub022/molgroup"
	"github.com/chrys-athome/sire-sub022/monitor"
	"github.com/chrys-athome/sire-sub022/space"
	"github.com/chrys-athome/sire-sub022/stream"
)

// CheckPoint is an immutable snapshot of a system: its groups, space,
// forcefields and monitors, at one version. A SimSystem can always be rolled
// back to a checkpoint taken from it.
type CheckPoint struct {
	q QuerySystem
}

func (c CheckPoint) IsNull() bool { return c.q.IsNull() }

// System returns the state the checkpoint holds.
func (c CheckPoint) System() QuerySystem { return c.q }

func (c CheckPoint) ID() SystemID { return c.q.ID() }

func (c CheckPoint) UID() uuid.UUID { return c.q.UID() }

func (c CheckPoint) Version() sire.Version { return c.q.Version() }

func (c CheckPoint) String() string {
	return fmt.Sprintf("CheckPoint(%q %v %v)", c.q.Name(), c.q.ID(), c.q.Version())
}

const checkPointMagic uint32 = 0x434b5054 // "CKPT"

// Save writes c to w, compressed with f. The first byte written is the
// format, so LoadCheckPoint needs no options.
func (c CheckPoint) Save(w io.Writer, f stream.Format) error {
	if c.IsNull() {
		return sire.Errorf(sire.InvalidArg, "CheckPoint.Save", "null checkpoint")
	}
	if _, err := w.Write([]byte{byte(f)}); err != nil {
		return sire.ErrDecorate(err, "CheckPoint.Save")
	}
	cw, err := stream.NewCompressedWriter(w, f)
	if err != nil {
		return sire.ErrDecorate(err, "CheckPoint.Save")
	}
	sw := stream.NewWriter(cw)
	c.write(sw)
	if err := sw.Err(); err != nil {
		cw.Close()
		return sire.ErrDecorate(err, "CheckPoint.Save")
	}
	return sire.ErrDecorate(cw.Close(), "CheckPoint.Save")
}

func (c CheckPoint) write(w *stream.Writer) {
	d := c.q.data.d
	s := mol.NewSaver()
	w.Magic(checkPointMagic, 1)
	w.Uint64(uint64(d.id))
	w.Bytes(d.uid[:])
	w.String(d.name)
	w.Version(d.version.Version())
	space.Save(w, d.space)
	molgroup.SaveMolGroups(w, s, d.groups)
	ff.SaveForceFields(w, s, c.q.ffs)
	monitor.Save(w, c.q.monitors)
}

// LoadCheckPoint reads a checkpoint written by CheckPoint.Save. The system
// keeps its number, UID and versions, and the identifier counters are
// advanced past everything loaded.
func LoadCheckPoint(r io.Reader) (CheckPoint, error) {
	var fb [1]byte
	if _, err := io.ReadFull(r, fb[:]); err != nil {
		return CheckPoint{}, sire.Errorf(sire.VersionError, "LoadCheckPoint", "no format byte: %v", err)
	}
	f := stream.Format(fb[0])
	if f > stream.None {
		return CheckPoint{}, sire.Errorf(sire.VersionError, "LoadCheckPoint", "unknown format %d", fb[0])
	}
	cr, err := stream.NewCompressedReader(r, f)
	if err != nil {
		return CheckPoint{}, sire.ErrDecorate(err, "LoadCheckPoint")
	}
	defer cr.Close()
	c, err := read(stream.NewReader(cr))
	return c, sire.ErrDecorate(err, "LoadCheckPoint")
}

func read(r *stream.Reader) (CheckPoint, error) {
	l := mol.NewLoader()
	r.Magic(checkPointMagic, 1)
	d := &sysData{id: SystemID(r.Uint64())}
	raw := r.Bytes()
	d.name = r.String()
	v := r.Version()
	if err := r.Err(); err != nil {
		return CheckPoint{}, err
	}
	uid, err := uuid.FromBytes(raw)
	if err != nil {
		return CheckPoint{}, sire.Errorf(sire.VersionError, "system.read", "bad system UID: %v", err)
	}
	d.uid = uid
	if d.space, err = space.Load(r); err != nil {
		return CheckPoint{}, err
	}
	if d.groups, err = molgroup.LoadMolGroups(r, l); err != nil {
		return CheckPoint{}, err
	}
	fs, err := ff.LoadForceFields(r, l)
	if err != nil {
		return CheckPoint{}, err
	}
	ms, err := monitor.Load(r)
	if err != nil {
		return CheckPoint{}, err
	}
	d.version = versions.Restore(uint64(d.id), v)
	AdvanceSystemIDs(d.id)
	return CheckPoint{QuerySystem{data: SystemData{d}, ffs: fs, monitors: ms}}, nil
}
