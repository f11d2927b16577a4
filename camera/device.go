// Package camera implements the Camera Source: it probes devices,
// picks an initial resolution, and pumps MJPEG frames into a ring
// writer, reacting to resolution-change requests from outside.
//
// Grounded on hz.tools/sdr's rtl.Sdr constructor/Close shape (open by
// index, fatal-to-the-handle error policy) and rtl/rx.go's pattern of
// handing received bytes to a consumer through a small callback
// context kept alive with github.com/mattn/go-pointer.
package camera

import (
	"fmt"

	"attendkiosk"
)

// ErrNoMJPEGResolution is returned by PickInitialResolution when a
// device advertises no eligible MJPEG resolution; such a device is
// skipped during probe.
var ErrNoMJPEGResolution error = fmt.Errorf("camera: device has no MJPEG resolution")

// ResolutionInfo pairs a Resolution with the framerates a device
// advertises support for at that resolution.
type ResolutionInfo struct {
	Resolution kiosk.Resolution
	Framerates []int
}

// Device is the capture backend the Camera Source drives. A real
// implementation would wrap a v4l2 (or platform-equivalent) MJPEG
// capture handle; this module ships only NullDevice, a deterministic
// stand-in, since the retrieval pack has no camera capture library to
// ground a cgo backend on (compare rtl.Sdr, which does have librtlsdr
// to bind to).
type Device interface {
	// Resolutions returns every MJPEG-capable resolution this device
	// advertises, along with its framerates.
	Resolutions() []ResolutionInfo

	// Open configures the device to stream at the given resolution.
	Open(kiosk.Resolution) error

	// ReadFrame blocks until one MJPEG frame is available.
	ReadFrame() ([]byte, error)

	// Close releases the device. After Close, further calls are
	// undefined.
	Close() error
}

// Opener opens the device at the given probe index, or returns an
// error if no device exists at that index.
type Opener func(index int) (Device, error)

// PickInitialResolution implements the device-discovery resolution
// policy from spec.md §4.B: among the resolutions whose framerate set
// includes the maximum advertised framerate, pick the numerically
// smallest resolution (by Area).
func PickInitialResolution(infos []ResolutionInfo) (kiosk.Resolution, error) {
	if len(infos) == 0 {
		return kiosk.Resolution{}, ErrNoMJPEGResolution
	}

	maxFPS := 0
	for _, info := range infos {
		for _, fps := range info.Framerates {
			if fps > maxFPS {
				maxFPS = fps
			}
		}
	}

	best := kiosk.Resolution{}
	found := false
	for _, info := range infos {
		if !hasFPS(info.Framerates, maxFPS) {
			continue
		}
		if !found || info.Resolution.Area() < best.Area() {
			best = info.Resolution
			found = true
		}
	}
	if !found {
		return kiosk.Resolution{}, ErrNoMJPEGResolution
	}
	return best, nil
}

func hasFPS(framerates []int, fps int) bool {
	for _, f := range framerates {
		if f == fps {
			return true
		}
	}
	return false
}
