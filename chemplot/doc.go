// Package chemplot draws plots of a simulation with gonum/plot: the
// histograms collected by histogram monitors, and the energy components of
// a system along a run.
package chemplot
