// Package backend abstracts the output surface the renderer paints to.
// The terminal implementation wraps tcell; the memory implementation
// backs tests.
package backend

import "github.com/gdamore/tcell/v2"

// Backend is a grid of styled cells.
type Backend interface {
	// Init prepares the surface for drawing.
	Init() error
	// Fini releases the surface.
	Fini()
	// Size returns the surface dimensions in cells.
	Size() (width, height int)
	// SetCell places a rune with a style at the given position.
	SetCell(x, y int, r rune, style tcell.Style)
	// Clear erases the surface.
	Clear()
	// Show makes all pending changes visible.
	Show()
	// PollEvent blocks until the next input event.
	PollEvent() tcell.Event
}
