package camera

import (
	"context"
	"log"
	"sync/atomic"

	"attendkiosk"
	"attendkiosk/ring"
)

// Registry is the process-wide resolution registry the Camera Source
// publishes to, satisfying spec.md §6's "process-wide registry"
// obligation without this package depending on the registry package's
// concrete type (kept as an interface so camera stays testable).
type Registry interface {
	Publish(resolutions []kiosk.Resolution)
}

// Source is the Camera Source component. It owns device probing,
// resolution selection, the frame pump, and the flush flag that the
// detection fan-out reads.
type Source struct {
	Open         Opener
	MaxProbeIndex int
	Writer       *ring.Writer
	ResolutionIn <-chan kiosk.Resolution
	Flush        *atomic.Bool
	Registry     Registry
}

// Run drives the camera loop until ctx is cancelled. Any device error
// is fatal to the currently open device: the loop closes it and
// re-enters the open sequence from probe index 0, per spec.md §4.B /
// §7's camera failure policy.
func (s *Source) Run(ctx context.Context) error {
	published := false
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		dev, res, err := s.openFirstDevice()
		if err != nil {
			log.Printf("camera: no usable device found: %s", err)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}

		if s.Registry != nil && !published {
			published = true
			infos := dev.Resolutions()
			all := make([]kiosk.Resolution, len(infos))
			for i, info := range infos {
				all[i] = info.Resolution
			}
			s.Registry.Publish(all)
		}

		log.Printf("camera: opened device at %s", res)
		s.pump(ctx, dev)
		dev.Close()
	}
}

// pump runs the per-device frame loop until the device errors. A
// resolution change request reopens the same device in place at the
// new resolution and raises the flush flag; pump returns only if that
// reopen fails or ResolutionIn is closed.
func (s *Source) pump(ctx context.Context, dev Device) {
	for {
		if ctx.Err() != nil {
			return
		}

		select {
		case res, ok := <-s.ResolutionIn:
			if !ok {
				return
			}
			if err := dev.Open(res); err != nil {
				log.Printf("camera: failed to reopen at %s: %s", res, err)
				return
			}
			s.Flush.Store(true)
			log.Printf("camera: switched to %s", res)
			continue
		default:
		}

		frame, err := dev.ReadFrame()
		if err != nil {
			log.Printf("camera: frame acquisition failed: %s", err)
			return
		}
		s.Writer.TryWrite(frame)
	}
}

// openFirstDevice implements the probe-indices-from-zero discovery
// policy: the first device advertising at least one MJPEG resolution
// wins, opened at PickInitialResolution's choice.
func (s *Source) openFirstDevice() (Device, kiosk.Resolution, error) {
	maxIndex := s.MaxProbeIndex
	if maxIndex <= 0 {
		maxIndex = 16
	}

	for idx := 0; idx < maxIndex; idx++ {
		dev, err := s.Open(idx)
		if err != nil {
			continue
		}
		res, err := PickInitialResolution(dev.Resolutions())
		if err != nil {
			dev.Close()
			continue
		}
		if err := dev.Open(res); err != nil {
			dev.Close()
			continue
		}
		return dev, res, nil
	}
	return nil, kiosk.Resolution{}, kiosk.ErrNoDevice
}
