// Package mock provides scripted test doubles for the kiosk pipeline,
// in the same configurable-function-field shape as hz.tools/sdr's
// mock package (mockSdr implementing sdr.Transceiver via Config
// function fields).
package mock

import (
	"fmt"
	"sync"

	"attendkiosk"
	"attendkiosk/camera"
)

// Camera is a scripted camera.Device: it replays Frames in order on
// successive ReadFrame calls, then returns ErrExhausted.
type Camera struct {
	Resolutions []camera.ResolutionInfo
	Frames      [][]byte

	mu     sync.Mutex
	opened bool
	cur    kiosk.Resolution
	next   int

	// OpenErr, if set, is returned by Open instead of succeeding.
	OpenErr error
	// ReadErr, if set, is returned by ReadFrame once all Frames have
	// been replayed, instead of ErrExhausted.
	ReadErr error
}

// ErrExhausted is returned once every scripted frame has been read.
var ErrExhausted error = fmt.Errorf("mock: camera frame script exhausted")

// NewOpener returns a camera.Opener that hands back cam for probe
// index 0 and fails for every other index — useful when a test wants
// device discovery to succeed on the very first probe.
func NewOpener(cam *Camera) camera.Opener {
	return func(index int) (camera.Device, error) {
		if index != 0 {
			return nil, fmt.Errorf("mock: no device at index %d", index)
		}
		return cam, nil
	}
}

func (c *Camera) ResolutionsList() []camera.ResolutionInfo { return c.Resolutions }

// Resolutions implements camera.Device.
func (c *Camera) Resolutions() []camera.ResolutionInfo {
	return c.Resolutions
}

// Open implements camera.Device.
func (c *Camera) Open(res kiosk.Resolution) error {
	if c.OpenErr != nil {
		return c.OpenErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = res
	c.opened = true
	return nil
}

// ReadFrame implements camera.Device, replaying the scripted Frames
// in order.
func (c *Camera) ReadFrame() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.next >= len(c.Frames) {
		if c.ReadErr != nil {
			return nil, c.ReadErr
		}
		return nil, ErrExhausted
	}
	f := c.Frames[c.next]
	c.next++
	return f, nil
}

// Close implements camera.Device.
func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opened = false
	return nil
}

// Remaining reports how many scripted frames have not yet been read.
func (c *Camera) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Frames) - c.next
}
