// Package viz renders a live terminal preview of a running animation.
//
// Frames are scaled onto a [Canvas] of braille cells (2x4 dots each) and shown
// through a Bubble Tea program. [Preview] implements the animator's display
// capability: it drops frames above its refresh rate and reports a stop
// request once the user presses q.
//
// # Key Bindings
//
//	q, esc, ctrl+c - stop the run and finalize the output
//	t              - cycle color themes
package viz
