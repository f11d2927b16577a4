// Package detect implements the Detection Fan-out: K workers, each
// bound to one ring reader and a fixed downscale factor, that decode
// QR codes out of captured frames and emit them on a bounded outbound
// channel.
//
// Grounded on hz.tools/sdr's Transceiver worker-loop shape (a blocking
// per-iteration read followed by a CPU-bound transform) and on
// rtl/rx.go's "drain on a control signal" pattern, generalized here
// from IQ sample blocks to JPEG frames.
package detect

import (
	"context"
	"log"
	"strings"
	"sync/atomic"

	"attendkiosk/ring"
)

// Downscales is the ordered ladder of downscale factors spec.md §4.D
// assigns to detector workers: full-resolution grayscale, then
// successive halvings.
var Downscales = []int{1, 2, 4, 8}

// Decoder runs QR detection against JPEG bytes at a given downscale
// factor. A real implementation wraps whatever QR library the GUI
// layer already depends on; this module treats it as an external
// collaborator, per spec.md's scope note on "the actual QR decoding
// algorithm."
type Decoder interface {
	Decode(jpeg []byte, downscale int) ([]string, error)
}

// Worker is one detector: it owns a ring reader, a downscale factor,
// and a Decoder, and emits decoded strings on Out.
type Worker struct {
	Reader    *ring.Reader
	Downscale int
	Decoder   Decoder
	Out       chan<- string
	Flush     *atomic.Bool
}

// Run drives the worker loop until ctx is cancelled, implementing
// spec.md §4.D steps 1-4: flush-then-drain, acquire, decode-and-emit,
// drain-on-hit.
func (w *Worker) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if w.Flush != nil && w.Flush.CompareAndSwap(true, false) {
			w.drain()
		}

		h := w.Reader.ReadSpin()
		frame := h.Bytes()

		codes, err := w.Decoder.Decode(frame, w.Downscale)
		if err != nil {
			h.Release()
			log.Printf("detect: decode failed at downscale %d: %s", w.Downscale, err)
			continue
		}

		h.Release()

		hit := false
		for _, raw := range codes {
			code := strings.TrimSpace(raw)
			if code == "" {
				continue
			}
			hit = true
			select {
			case w.Out <- code:
			default:
				// Outbound channel full: drop, per spec.md §4.D step 3.
			}
		}

		if hit {
			w.drain()
		}
	}
}

// drain discards every frame currently queued for this reader without
// blocking, per spec.md §4.D steps 1 and 4.
func (w *Worker) drain() {
	for {
		h, ok := w.Reader.TryRead()
		if !ok {
			return
		}
		h.Release()
	}
}
