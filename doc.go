/*
Package sire is the root package of the sire-go library. It holds the pieces
that every other package shares: the error type and its kinds, the
major/minor version trackers, the identifier counters and the library logger.

		**sire-go packages**

	    mol       molecules, atom selections and views of partial molecules.

	    molgroup  MoleculeGroup containers and the MolGroups registry, which keeps
	              name, index and molecule-to-group maps consistent.

	    space     the simulation space (infinite or periodic box) that coordinates
	              are mapped into.

	    ff        forcefields that mirror a molecule group and cache per-molecule
	              parameters and energies.

	    system    SystemData, the read-only QuerySystem, the mutable SimSystem and
	              CheckPoint, the snapshot used to roll back rejected moves.

	    monitor   statistics sampled every time a configuration is committed.

	    moves     Monte Carlo moves, and mtsmc the multiple time step move that runs
	              blocks of fast moves on a background goroutine.

	    stream    binary save/load with type magic numbers and schema versions;
	              restart stores compressed checkpoints in an SQLite archive.

	    chemjson  JSON reports of a system, read by the sireenv command and others.

Every mutating operation in the library either succeeds completely or returns an
error and leaves its receiver exactly as it was. Containers are copy-on-write, so
taking a CheckPoint is O(1) and rolling back to it is just swapping it in.

Coordinates are kept in v3.Matrix, a Nx3 matrix based on gonum's Dense type, where
each row represents one point in space.
*/
package sire
