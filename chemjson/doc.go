// Package chemjson implements JSON summaries of systems: their groups,
// molecules, energies and monitors. They are meant for other programs,
// which can be written in languages other than Go, to read the state of a
// simulation, for instance via UNIX pipes, without knowing the binary
// restart format.
package chemjson
