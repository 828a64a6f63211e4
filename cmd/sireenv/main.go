/*
 * main.go, part of sire-go.
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

// Command sireenv runs rigid-body Monte Carlo on a system described by a
// TOML input, keeping checkpoints in an SQLite archive and writing a
// restart file and a JSON report at the end.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/fulldump/goconfig"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	sire "github.com/chrys-athome/sire-sub022"
	"github.com/chrys-athome/sire-sub022/chemjson"
	"github.com/chrys-athome/sire-sub022/chemplot"
	"github.com/chrys-athome/sire-sub022/monitor"
	"github.com/chrys-athome/sire-sub022/moves"
	"github.com/chrys-athome/sire-sub022/restart"
	"github.com/chrys-athome/sire-sub022/stream"
	"github.com/chrys-athome/sire-sub022/system"
)

func main() {
	c := Default()
	goconfig.Read(&c)

	if c.ShowConfig {
		json.MarshalWrite(os.Stdout, c, jsontext.WithIndent("    "))
		fmt.Println()
	}
	l := sire.NewStdLogger(log.New(os.Stderr, "sireenv: ", log.LstdFlags))
	l.Verbose = c.Verbose
	sire.SetLogger(l)

	if err := run(c, os.Stdout); err != nil {
		log.Println("ERROR:", err.Error())
		os.Exit(1)
	}
}

func resume(path string) (*system.SimSystem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ckpt, err := system.LoadCheckPoint(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return system.FromCheckPoint(ckpt), nil
}

func writeRestart(path string, ckpt system.CheckPoint) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ckpt.Save(f, stream.FormatFromName(path)); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// simulate makes steps passes over seq. The moves commit the configurations
// they accept, so the monitors of sys sample once per accepted move. If after
// is not nil it runs at the end of every step.
func simulate(sys *system.SimSystem, seq moves.Sequence, steps int, after func(step int) error) error {
	for step := 1; step <= steps; step++ {
		if err := seq.Run(sys, 1); err != nil {
			return fmt.Errorf("step %d: %w", step, err)
		}
		if after == nil {
			continue
		}
		if err := after(step); err != nil {
			return fmt.Errorf("step %d: %w", step, err)
		}
	}
	return nil
}

// writePlots saves the energy trace, and every histogram monitor of q, as
// PNG files in dir.
func writePlots(dir string, q system.QuerySystem, trace *chemplot.Trace) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if trace.Len() > 0 {
		if err := trace.Save(q.Name()+" energies", filepath.Join(dir, "energies.png")); err != nil {
			return err
		}
	}
	ms := q.Monitors()
	for _, name := range ms.Names() {
		m, _ := ms.Get(name)
		h, ok := m.(monitor.Histogram)
		if !ok {
			continue
		}
		if err := chemplot.Histogram(h, name, filepath.Join(dir, chemplot.FileName(name)+".png")); err != nil {
			return err
		}
	}
	return nil
}

// run carries out the simulation configured by c and writes the report to out.
func run(c Configuration, out io.Writer) error {
	in, err := LoadInput(c.Input)
	if err != nil {
		return err
	}
	sys, seq, err := in.Build()
	if err != nil {
		return err
	}
	if c.Resume && c.Restart != "" {
		old, err := resume(c.Restart)
		switch {
		case err == nil:
			sire.Log().Infof("continuing %s from %s, version %v", old.Name(), c.Restart, old.Version())
			sys = old
		case errors.Is(err, fs.ErrNotExist):
			sire.Log().Infof("no restart file %s, starting from %s", c.Restart, c.Input)
		default:
			return err
		}
	}

	var archive restart.Archive
	if c.Archive != "" {
		a, err := restart.OpenSQLite(c.Archive, stream.Zstd)
		if err != nil {
			return err
		}
		defer a.Close()
		archive = a
		if _, err := archive.Store("start", sys.CheckPoint()); err != nil {
			return err
		}
	}

	var trace *chemplot.Trace
	if c.Plot != "" {
		trace = chemplot.NewTrace(sys.ForceFields().Components()...)
	}
	err = simulate(sys, seq, c.Steps, func(step int) error {
		if trace != nil {
			if err := trace.Record(step, sys); err != nil {
				return err
			}
		}
		if archive == nil || c.Every <= 0 || step%c.Every != 0 {
			return nil
		}
		if _, err := archive.Store(fmt.Sprintf("step %d", step), sys.CheckPoint()); err != nil {
			return err
		}
		if c.Keep > 0 {
			n, err := archive.Prune(sys.UID(), c.Keep)
			if err != nil {
				return err
			}
			sire.Log().Debugf("pruned %d checkpoints", n)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for name, st := range seq.Statistics() {
		sire.Log().Infof("%s: %v", name, st)
	}
	if c.Restart != "" {
		if err := writeRestart(c.Restart, sys.CheckPoint()); err != nil {
			return err
		}
	}
	if c.Plot != "" {
		if err := writePlots(c.Plot, sys.QuerySystem, trace); err != nil {
			return err
		}
	}
	return chemjson.NewSystem(sys.QuerySystem, c.Coords).Send(out)
}
