package kiosk

import "fmt"

var (
	// ErrNoDevice is returned when no camera device could be opened
	// after probing every known index.
	ErrNoDevice error = fmt.Errorf("kiosk: no camera device found")

	// ErrBindFailed is returned when the HTTP streamer could not bind
	// its listen address. This is the one fatal error in the core:
	// the pipeline exits when it is returned.
	ErrBindFailed error = fmt.Errorf("kiosk: failed to bind video listener")
)
