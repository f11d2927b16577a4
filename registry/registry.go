// Package registry holds the process-wide, publish-once list of
// resolutions a camera device advertises. It exists so the Camera
// Source can hand the eligible resolution set to an external consumer
// (the attendance GUI's dropdown, out of scope here) without that
// consumer needing a reference to the Source itself.
//
// Grounded on the debug package's once-computed, globally-readable
// build info blob (ReadBuildInfo populates a package-level value
// exactly once and every caller thereafter reads the same snapshot),
// adapted here from build metadata to resolution lists.
package registry

import (
	"sync/atomic"

	"attendkiosk"
)

// Resolution is the shape Publish and Snapshot exchange.
type Resolution = kiosk.Resolution

var published atomic.Pointer[[]Resolution]

// Publish records resolutions as the eligible set, once. The first
// call wins; every later call is a no-op, per the "publish once, never
// retract" policy — a resolution set discovered at startup does not
// change for the lifetime of the process, even across camera
// reconnects.
func Publish(list []Resolution) {
	snapshot := append([]Resolution(nil), list...)
	published.CompareAndSwap(nil, &snapshot)
}

// Snapshot returns the published resolution list, or nil if Publish
// has not yet been called.
func Snapshot() []Resolution {
	p := published.Load()
	if p == nil {
		return nil
	}
	return append([]Resolution(nil), (*p)...)
}

// Global is the package-level camera.Registry implementation: it
// forwards to Publish so the Camera Source can depend on an interface
// (see camera.Registry) instead of this package's concrete funcs.
type Global struct{}

// Publish implements camera.Registry.
func (Global) Publish(resolutions []Resolution) {
	Publish(resolutions)
}
