package camera

import (
	"fmt"
	"sync"
	"unsafe"

	"attendkiosk"

	"github.com/mattn/go-pointer"
)

// NullDevice is a deterministic stand-in capture backend: a background
// goroutine produces a fixed-content MJPEG-shaped frame, sized roughly
// in proportion to the configured resolution, and ReadFrame receives
// from it. The producer is not paced: it hands over a frame as soon as
// ReadFrame asks for one. It exists so the pipeline has
// something to drive end to end without real camera hardware.
type NullDevice struct {
	resolutions []ResolutionInfo

	mu     sync.Mutex
	opened bool
	frames chan []byte
	stop   chan struct{}
	done   chan struct{}
}

// callbackContext is the per-open state the producer goroutine reaches
// through a github.com/mattn/go-pointer handle, mirroring rtl/rx.go's
// pattern of pinning state across a goroutine boundary: Open saves it
// and spawns the producer, the producer restores it on the other side
// and unrefs it on exit. There is no cgo callback here, but the
// handoff is the same shape a real SDK backend's C callback would
// need.
type callbackContext struct {
	res    kiosk.Resolution
	frames chan<- []byte
	stop   <-chan struct{}
}

// produce is what a real backend's C callback would invoke per frame;
// here it just runs as a goroutine started by Open.
func produce(ptr unsafe.Pointer, done chan<- struct{}) {
	defer close(done)
	defer pointer.Unref(ptr)
	cc := pointer.Restore(ptr).(*callbackContext)

	size := cc.res.Area() / 256
	if size < 16 {
		size = 16
	}
	frame := make([]byte, size)
	copy(frame, []byte(fmt.Sprintf("JPEG:%s", cc.res)))

	for {
		select {
		case cc.frames <- frame:
		case <-cc.stop:
			return
		}
	}
}

// NewNullDevice builds a NullDevice advertising the given resolutions.
func NewNullDevice(resolutions []ResolutionInfo) *NullDevice {
	return &NullDevice{resolutions: resolutions}
}

// defaultNullResolutions is what OpenNullDevice advertises: a single
// 640x480 @ 30fps MJPEG mode, enough to exercise PickInitialResolution
// without a real device.
var defaultNullResolutions = []ResolutionInfo{
	{Resolution: kiosk.Resolution{Width: 640, Height: 480}, Framerates: []int{30}},
}

// OpenNullDevice is an Opener that hands back a fresh NullDevice for
// probe index 0 and fails for every other index, so device discovery
// (spec.md §4.B) terminates on the first probe. It is the default
// Opener kioskd wires in when no real capture backend is configured.
func OpenNullDevice(index int) (Device, error) {
	if index != 0 {
		return nil, kiosk.ErrNoDevice
	}
	return NewNullDevice(defaultNullResolutions), nil
}

// Resolutions implements Device.
func (d *NullDevice) Resolutions() []ResolutionInfo {
	return d.resolutions
}

// Open implements Device. Reopening at a new resolution stops the
// current producer goroutine and starts a fresh one.
func (d *NullDevice) Open(res kiosk.Resolution) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopProducerLocked()

	frames := make(chan []byte)
	stop := make(chan struct{})
	done := make(chan struct{})

	cc := &callbackContext{res: res, frames: frames, stop: stop}
	ptr := pointer.Save(cc)
	go produce(ptr, done)

	d.opened = true
	d.frames = frames
	d.stop = stop
	d.done = done
	return nil
}

// ReadFrame implements Device, receiving the next frame the producer
// goroutine generates.
func (d *NullDevice) ReadFrame() ([]byte, error) {
	d.mu.Lock()
	if !d.opened {
		d.mu.Unlock()
		return nil, fmt.Errorf("camera: NullDevice: ReadFrame called before Open")
	}
	frames := d.frames
	d.mu.Unlock()

	frame, ok := <-frames
	if !ok {
		return nil, fmt.Errorf("camera: NullDevice: closed while reading")
	}
	return frame, nil
}

// Close implements Device.
func (d *NullDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopProducerLocked()
	d.opened = false
	return nil
}

// stopProducerLocked signals the running producer to exit and waits
// for it to do so. d.mu must be held. It is a no-op if no producer is
// running.
func (d *NullDevice) stopProducerLocked() {
	if d.stop == nil {
		return
	}
	close(d.stop)
	<-d.done
	d.stop = nil
	d.done = nil
	d.frames = nil
}
