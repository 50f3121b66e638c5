// Package viz draws a running particle system in the terminal.
//
// [Model] is a Bubble Tea program that steps a system every frame and draws
// it on a braille [Canvas] through an orthographic [Camera], next to an
// energy chart. [Menu] picks a scenario or preset and opens it in a Model.
//
// # Key Bindings
//
//	Space  - Pause/Resume
//	.      - Single step while paused
//	R      - Rebuild the scenario
//	F      - Refit the view to the particles
//	Arrows - Rotate the view
//	+/-    - Zoom
//	T      - Cycle color themes
//	?      - Show help
package viz
