// Package viz draws the aquarium in a terminal with Bubble Tea.
//
// The terminal is split into a Braille [Canvas] showing every bubble and a
// side panel listing the items. Each terminal cell stands for a fixed number
// of viewport pixels, so resizing the terminal resizes the simulated world.
//
// # Key Bindings
//
//	A     - Add a bubble (Tab cycles its priority)
//	Tab   - Select the next bubble
//	Space - Toggle done
//	D     - Delete the selected bubble
//	X     - Delete everything
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//	Q     - Save and quit
//
// # Recording
//
// G records the canvas as a GIF, written to aquarium.gif in the current
// directory when recording stops.
package viz
