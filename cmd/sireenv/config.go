/*
 * config.go, part of sire-go.
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

package main

// Configuration is read from flags and the environment by goconfig.
type Configuration struct {
	Input      string `usage:"TOML simulation input"`
	Archive    string `usage:"SQLite file where checkpoints are stored, empty for none"`
	Every      int    `usage:"store a checkpoint every this many steps"`
	Keep       int    `usage:"checkpoints kept per system in the archive, 0 keeps all"`
	Restart    string `usage:"restart file written at the end (.gz gzip, .fl deflate, .bin plain, else zstd)"`
	Resume     bool   `usage:"continue from the restart file if it exists"`
	Steps      int    `usage:"number of steps, each one a pass over every move"`
	Coords     bool   `usage:"include coordinates in the report"`
	Plot       string `usage:"directory for PNG plots of the energies and of the histogram monitors, empty for none"`
	Verbose    bool   `usage:"print debug messages"`
	ShowConfig bool   `usage:"print config"`
}

func Default() Configuration {
	return Configuration{
		Input:   "sire.toml",
		Every:   100,
		Restart: "sire.rst",
		Steps:   1000,
	}
}
