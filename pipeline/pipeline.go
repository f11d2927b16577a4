// Package pipeline implements the Pipeline Controller: it opens a
// scoped concurrency region, builds the ring, splits it, and spawns
// the Camera Source, the HTTP Streamer, and the K detectors with
// references into the ring.
//
// Grounded on sakateka-yanet2's controlplane/pkg/yncp/director.go,
// which wires its own components (gateway, modules) together under one
// errgroup.WithContext region; this package does the same for the
// video core's four roles.
package pipeline

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"attendkiosk"
	"attendkiosk/camera"
	"attendkiosk/config"
	"attendkiosk/detect"
	"attendkiosk/registry"
	"attendkiosk/ring"
	"attendkiosk/streamhttp"
)

// Pipeline holds the wiring points external callers need after
// construction: the channel to push resolution changes on, and the
// channel to read decoded QR strings from.
type Pipeline struct {
	// ResolutionIn is forwarded to the Camera Source unchanged;
	// sending on it requests a device reopen at the new resolution.
	ResolutionIn chan<- kiosk.Resolution

	// QROut receives every QR string any detector decodes.
	QROut <-chan string

	addr     string
	source   *camera.Source
	streamer *streamhttp.Server
	workers  []*detect.Worker
}

// New builds a Pipeline from cfg, an Opener for the camera device, and
// the Decoder every detector worker uses. It does not start any
// goroutine; call Run to do that.
func New(cfg *config.Config, open camera.Opener, dec detect.Decoder) (*Pipeline, error) {
	k := len(cfg.Detectors.Downscales)
	r, err := ring.New(cfg.RingSlots, k+1)
	if err != nil {
		return nil, fmt.Errorf("pipeline: failed to build ring: %w", err)
	}

	writer, readers, err := r.Split()
	if err != nil {
		return nil, fmt.Errorf("pipeline: failed to split ring: %w", err)
	}

	resolutionIn := make(chan kiosk.Resolution, 1)
	qrOut := make(chan string, cfg.Detectors.OutboundBufferSize)
	flush := &atomic.Bool{}

	source := &camera.Source{
		Open:          open,
		MaxProbeIndex: cfg.CameraProbeBound,
		Writer:        writer,
		ResolutionIn:  resolutionIn,
		Flush:         flush,
		Registry:      registry.Global{},
	}

	streamer := &streamhttp.Server{
		Addr:   cfg.ListenAddr,
		Reader: readers[0],
	}

	workers := make([]*detect.Worker, k)
	for i, downscale := range cfg.Detectors.Downscales {
		workers[i] = &detect.Worker{
			Reader:    readers[i+1],
			Downscale: downscale,
			Decoder:   dec,
			Out:       qrOut,
			Flush:     flush,
		}
	}

	return &Pipeline{
		ResolutionIn: resolutionIn,
		QROut:        qrOut,
		addr:         cfg.ListenAddr,
		source:       source,
		streamer:     streamer,
		workers:      workers,
	}, nil
}

// Run starts every component and blocks until ctx is cancelled or any
// component returns a non-nil error, at which point every other
// component is cancelled too (errgroup.WithContext's standard
// fail-fast semantics). The HTTP listener is bound up front, so a bind
// failure is returned before any camera probing starts.
func (p *Pipeline) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", p.streamer.Addr)
	if err != nil {
		return fmt.Errorf("%w: %s: %s", kiosk.ErrBindFailed, p.streamer.Addr, err)
	}

	wg, gctx := errgroup.WithContext(ctx)

	wg.Go(func() error {
		<-gctx.Done()
		listener.Close()
		return nil
	})
	wg.Go(func() error {
		return p.source.Run(gctx)
	})
	wg.Go(func() error {
		return p.streamer.Serve(listener)
	})
	for _, w := range p.workers {
		w := w
		wg.Go(func() error {
			return w.Run(gctx)
		})
	}

	return wg.Wait()
}
