package pipeline_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"attendkiosk"
	"attendkiosk/camera"
	"attendkiosk/config"
	"attendkiosk/mock"
	"attendkiosk/pipeline"
)

func TestPipelineRunsUntilCancelled(t *testing.T) {
	cam := &mock.Camera{
		Resolutions: []camera.ResolutionInfo{
			{Resolution: kiosk.Resolution{Width: 320, Height: 240}, Framerates: []int{30}},
		},
		Frames: repeatFrames("frame", 1000),
		ReadErr: context.DeadlineExceeded,
	}

	cfg := config.DefaultConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.RingSlots = 8
	cfg.Detectors.Downscales = []int{1}

	dec := &mock.Decoder{}
	p, err := pipeline.New(cfg, mock.NewOpener(cam), dec)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err = p.Run(ctx)
	require.Error(t, err)
}

func TestPipelineRejectsUnbindableAddress(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	cfg := config.DefaultConfig()
	cfg.ListenAddr = listener.Addr().String()

	p, err := pipeline.New(cfg, mock.NewOpener(&mock.Camera{}), &mock.Decoder{})
	require.NoError(t, err)

	err = p.Run(context.Background())
	require.Error(t, err)
}

func repeatFrames(frame string, n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = []byte(frame)
	}
	return out
}
