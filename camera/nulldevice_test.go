package camera_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendkiosk"
	"attendkiosk/camera"
)

func TestNullDeviceProducesFramesAfterOpen(t *testing.T) {
	dev := camera.NewNullDevice([]camera.ResolutionInfo{
		{Resolution: kiosk.Resolution{Width: 640, Height: 480}, Framerates: []int{30}},
	})

	require.NoError(t, dev.Open(kiosk.Resolution{Width: 640, Height: 480}))

	frame, err := dev.ReadFrame()
	require.NoError(t, err)
	assert.NotEmpty(t, frame)

	require.NoError(t, dev.Close())
}

func TestNullDeviceReadFrameBeforeOpen(t *testing.T) {
	dev := camera.NewNullDevice(nil)
	_, err := dev.ReadFrame()
	assert.Error(t, err)
}

func TestNullDeviceReopenReplacesProducer(t *testing.T) {
	dev := camera.NewNullDevice(nil)

	require.NoError(t, dev.Open(kiosk.Resolution{Width: 320, Height: 240}))
	small, err := dev.ReadFrame()
	require.NoError(t, err)

	require.NoError(t, dev.Open(kiosk.Resolution{Width: 1920, Height: 1080}))
	large, err := dev.ReadFrame()
	require.NoError(t, err)

	assert.Greater(t, len(large), len(small))

	require.NoError(t, dev.Close())
}
