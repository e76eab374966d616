// Package viz provides a terminal monitor for closure runs.
//
// The monitor is a Bubble Tea program fed by a running simulator:
//
//   - [Monitor]: residual history, nut/nu and a live nuTilda profile
//   - [Canvas]: Braille-based pixel canvas the profile is drawn on
//   - Theme selection with 3 built-in color schemes
//
// # Key Bindings
//
//	Space - Pause/Resume the solver
//	A     - Toggle the auxiliary field table
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Stop the run and quit
package viz
