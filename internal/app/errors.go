package app

import "errors"

// Errors returned by the application.
var (
	// ErrQuit signals a normal user-requested exit from the run loop.
	ErrQuit = errors.New("quit requested")

	// ErrNoBackend is returned when Run is called before a backend is
	// configured.
	ErrNoBackend = errors.New("no backend configured")
)
