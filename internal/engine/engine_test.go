package engine

import (
	"testing"

	"Floodlight/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestNewEngineUsesConfiguredSize(t *testing.T) {
	cfg := config.Default()
	cfg.Window.Width, cfg.Window.Height = 640, 480

	e := NewEngine(cfg)
	assert.Equal(t, int32(640), e.Width)
	assert.Equal(t, int32(480), e.Height)
	assert.True(t, e.EnableCameraInput)
	assert.Same(t, cfg, e.Config)
}

func TestPixelRatio(t *testing.T) {
	cases := []struct {
		name          string
		window, frame int
		expected      float32
	}{
		{"standard", 1280, 1280, 1},
		{"retina", 1280, 2560, 2},
		{"fractional", 1000, 1250, 1.25},
		{"minimised", 0, 0, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, pixelRatio(tc.window, tc.frame))
		})
	}
}

func TestFrameClock(t *testing.T) {
	var c frameClock
	assert.Equal(t, float32(0), c.Tick(10))
	assert.InDelta(t, 0.016, c.Tick(10.016), 1e-6)
	assert.InDelta(t, 0.5, c.Tick(10.516), 1e-6)

	c.Reset(20)
	assert.InDelta(t, 1, c.Tick(21), 1e-6)
	// A clock that goes backwards never yields a negative step.
	assert.Equal(t, float32(0), c.Tick(19))
}

func TestColorRefSwapsChannels(t *testing.T) {
	assert.Equal(t, uint32(0x372826), colorRef(0x262837))
	assert.Equal(t, uint32(0x0000ff), colorRef(0xff0000))
}
