// Package streamhttp implements the HTTP Streamer: it accepts one
// client at a time and serves the ring's dedicated streaming reader
// as a multipart/x-mixed-replace MJPEG feed.
//
// Grounded on hz.tools/sdr/rtltcp's Server: a fixed listen Addr,
// ListenAndServe/Serve/serveConn split, and an accept loop that treats
// a write failure as "close this connection, go back to accepting"
// rather than as fatal.
package streamhttp

import (
	"fmt"
	"log"
	"net"

	"attendkiosk"
	"attendkiosk/ring"
)

// DefaultAddr is the address the streamer binds by default, per
// spec.md §4.C.
const DefaultAddr = "localhost:2343"

const boundary = "--frame"

// Server serves one multipart/x-mixed-replace MJPEG client at a time
// from a dedicated ring.Reader.
type Server struct {
	// Addr is the TCP address to listen on. Defaults to DefaultAddr
	// if empty.
	Addr string

	// Reader is the ring reader dedicated to streaming; it must not
	// be shared with any detector.
	Reader *ring.Reader
}

// ListenAndServe binds Addr and serves until the listener errors.
// Failing to bind is fatal, per spec.md §7.
func (s *Server) ListenAndServe() error {
	addr := s.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: %s: %s", kiosk.ErrBindFailed, addr, err)
	}
	return s.Serve(listener)
}

// Serve accepts connections from listener and serves each one in turn
// (but never concurrently: a second client waits behind Accept until
// the first disconnects and serveConn returns, matching spec.md
// §4.C's "accepts exactly one client per connection").
func (s *Server) Serve(listener net.Listener) error {
	defer listener.Close()
	for {
		conn, err := listener.Accept()
		if err != nil {
			return err
		}
		s.serveConn(conn)
	}
}

// serveConn writes the multipart preamble, then streams frames until
// a write fails.
func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()

	header := "HTTP/1.1 200 OK\r\n" +
		"Content-Type: multipart/x-mixed-replace; boundary=" + boundary + "\r\n\r\n"
	if _, err := conn.Write([]byte(header)); err != nil {
		log.Printf("streamhttp: failed to write preamble: %s", err)
		return
	}

	lastLen := -1
	for {
		h := s.Reader.ReadSpin()
		frame := h.Bytes()

		if len(frame) != lastLen {
			lastLen = len(frame)
			preamble := fmt.Sprintf(
				"%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n",
				boundary, len(frame),
			)
			if _, err := conn.Write([]byte(preamble)); err != nil {
				h.Release()
				log.Printf("streamhttp: write error, dropping client: %s", err)
				return
			}
		}

		_, writeErr := conn.Write(frame)
		h.Release()
		if writeErr != nil {
			log.Printf("streamhttp: write error, dropping client: %s", writeErr)
			return
		}
		if _, err := conn.Write([]byte("\r\n")); err != nil {
			log.Printf("streamhttp: write error, dropping client: %s", err)
			return
		}
	}
}
