// Package viz renders pendulum state for the terminal.
//
//   - [Canvas]: Braille-based pixel canvas, 2x4 sub-pixels per cell
//   - [DrawPendulum]: rods and bobs of one snapshot on a canvas
//   - Panel and label styles shared by the CLI reports
package viz
