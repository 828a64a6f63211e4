/*
Package mol provides the molecule values the rest of the library works with:
Molecule, an immutable snapshot of the atoms, coordinates and properties of one
molecule; Selection, a set of atoms of a molecule; and View, a molecule seen
through a Selection (a partial molecule).

Molecules are never modified in place. Edit returns an Editor working on a
private copy, and Commit returns the new Molecule, with the same MolNum and a
new version. Code holding the old value keeps seeing the old content.

Note: As in goChem, a few of the "fundamental" functions here panic instead of
returning errors, when they can only fail if the program is wrong (combining
selections of molecules with different numbers of atoms, for instance).
*/
package mol
