package camera_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendkiosk"
	"attendkiosk/camera"
	"attendkiosk/mock"
	"attendkiosk/ring"
)

func TestPickInitialResolutionPrefersMaxFramerateThenSmallest(t *testing.T) {
	infos := []camera.ResolutionInfo{
		{Resolution: kiosk.Resolution{Width: 1920, Height: 1080}, Framerates: []int{30}},
		{Resolution: kiosk.Resolution{Width: 640, Height: 480}, Framerates: []int{30, 60}},
		{Resolution: kiosk.Resolution{Width: 320, Height: 240}, Framerates: []int{60}},
	}
	res, err := camera.PickInitialResolution(infos)
	require.NoError(t, err)
	assert.Equal(t, kiosk.Resolution{Width: 320, Height: 240}, res)
}

func TestPickInitialResolutionNoResolutions(t *testing.T) {
	_, err := camera.PickInitialResolution(nil)
	assert.ErrorIs(t, err, camera.ErrNoMJPEGResolution)
}

type fakeRegistry struct {
	published [][]kiosk.Resolution
}

func (f *fakeRegistry) Publish(r []kiosk.Resolution) {
	f.published = append(f.published, r)
}

func TestSourcePumpsFramesIntoRing(t *testing.T) {
	cam := &mock.Camera{
		Resolutions: []camera.ResolutionInfo{
			{Resolution: kiosk.Resolution{Width: 640, Height: 480}, Framerates: []int{30}},
		},
		Frames: [][]byte{[]byte("frame-1"), []byte("frame-2")},
	}

	r, err := ring.New(4, 1)
	require.NoError(t, err)
	w, readers, err := r.Split()
	require.NoError(t, err)

	reg := &fakeRegistry{}
	src := &camera.Source{
		Open:         mock.NewOpener(cam),
		Writer:       w,
		ResolutionIn: make(chan kiosk.Resolution, 1),
		Flush:        &atomic.Bool{},
		Registry:     reg,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Run(ctx) }()

	require.Eventually(t, func() bool {
		return cam.Remaining() == 0
	}, time.Second, time.Millisecond)

	h, ok := readers[0].TryRead()
	require.True(t, ok)
	assert.Equal(t, []byte("frame-1"), h.Bytes())
	h.Release()

	cancel()
	<-done

	require.Len(t, reg.published, 1)
	assert.Equal(t, kiosk.Resolution{Width: 640, Height: 480}, reg.published[0][0])
}

func TestSourceFlushesOnResolutionChange(t *testing.T) {
	cam := &mock.Camera{
		Resolutions: []camera.ResolutionInfo{
			{Resolution: kiosk.Resolution{Width: 640, Height: 480}, Framerates: []int{30}},
		},
		Frames: [][]byte{[]byte("a"), []byte("b"), []byte("c")},
	}

	r, err := ring.New(8, 1)
	require.NoError(t, err)
	w, _, err := r.Split()
	require.NoError(t, err)

	resIn := make(chan kiosk.Resolution, 1)
	flush := &atomic.Bool{}
	src := &camera.Source{
		Open:         mock.NewOpener(cam),
		Writer:       w,
		ResolutionIn: resIn,
		Flush:        flush,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Run(ctx) }()

	resIn <- kiosk.Resolution{Width: 1280, Height: 720}

	require.Eventually(t, func() bool {
		return flush.Load()
	}, time.Second, time.Millisecond)

	cancel()
	<-done
}
