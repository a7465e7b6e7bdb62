// Package viz renders predator–prey runs in the terminal.
//
//   - [DensityPlot]: both continuum densities on one asciigraph chart
//   - [SwarmPlot]: particle positions on a Braille [Canvas]
//   - [Model]: Bubble Tea program that steps a run live
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to initial state
//	N     - Single step while paused
//	T     - Cycle color themes
//	[]    - Time travel (rewind/forward)
//	?     - Show help overlay
package viz
