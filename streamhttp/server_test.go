package streamhttp_test

import (
	"bufio"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendkiosk/ring"
	"attendkiosk/streamhttp"
)

// S5: streaming reconnect. Two successive HTTP clients each receive a
// valid multipart preamble and at least one frame with matching
// Content-Length.
func TestStreamingReconnect(t *testing.T) {
	r, err := ring.New(4, 1)
	require.NoError(t, err)
	w, readers, err := r.Split()
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &streamhttp.Server{Reader: readers[0]}
	go srv.Serve(listener)

	go func() {
		for i := 0; ; i++ {
			w.WriteSpin([]byte(strings.Repeat("x", 100+i)))
			time.Sleep(time.Millisecond)
		}
	}()

	for i := 0; i < 2; i++ {
		func() {
			conn, err := net.Dial("tcp", listener.Addr().String())
			require.NoError(t, err)
			defer conn.Close()
			conn.SetDeadline(time.Now().Add(2 * time.Second))

			reader := bufio.NewReader(conn)
			statusLine, err := reader.ReadString('\n')
			require.NoError(t, err)
			assert.Contains(t, statusLine, "200 OK")

			tp := textproto.NewReader(reader)
			headers, err := tp.ReadMIMEHeader()
			require.NoError(t, err)
			assert.Contains(t, headers.Get("Content-Type"), "multipart/x-mixed-replace")

			boundaryLine, err := reader.ReadString('\n')
			require.NoError(t, err)
			assert.Contains(t, boundaryLine, "--frame")

			frameHeaders, err := tp.ReadMIMEHeader()
			require.NoError(t, err)
			length, err := strconv.Atoi(frameHeaders.Get("Content-Length"))
			require.NoError(t, err)
			assert.Greater(t, length, 0)

			buf := make([]byte, length)
			_, err = readerFull(reader, buf)
			require.NoError(t, err)
			assert.Len(t, buf, length)
		}()
	}
}

func readerFull(r *bufio.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
