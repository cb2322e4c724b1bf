package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToneMappingNamesMatchEnum(t *testing.T) {
	assert.Equal(t, "No", NoToneMapping.String())
	assert.Equal(t, "ACESFilmic", ACESFilmicToneMapping.String())
	assert.Equal(t, "ToneMapping(9)", ToneMapping(9).String())

	for i, name := range ToneMappingNames {
		tm, err := ParseToneMapping(name)
		require.NoError(t, err)
		assert.Equal(t, ToneMapping(i), tm)
	}
}

func TestParseToneMapping(t *testing.T) {
	tm, err := ParseToneMapping("reinhard")
	require.NoError(t, err)
	assert.Equal(t, ReinhardToneMapping, tm)

	_, err = ParseToneMapping("filmic")
	assert.Error(t, err)
}

func TestRendererSizing(t *testing.T) {
	r := NewOpenGLRenderer(800, 600)
	r.SetPixelRatio(2)

	w, h := r.Size()
	assert.Equal(t, int32(800), w)
	assert.Equal(t, int32(600), h)

	w, h = r.DrawingBufferSize()
	assert.Equal(t, int32(1600), w)
	assert.Equal(t, int32(1200), h)

	r.SetPixelRatio(0)
	assert.Equal(t, float32(1), r.PixelRatio())
}

func TestRenderBeforeInitIsNoop(t *testing.T) {
	r := NewOpenGLRenderer(800, 600)
	scene := NewScene()
	camera := NewPerspectiveCamera(75, 1, 0.01, 1000)

	assert.NotPanics(t, func() { r.Render(scene, camera) })
	assert.Zero(t, r.Info().Frame)
}

func TestRenderTargetSetSizeClamps(t *testing.T) {
	rt := NewRenderTarget(0, -5)
	assert.Equal(t, int32(1), rt.Width)
	assert.Equal(t, int32(1), rt.Height)

	rt.SetSize(800, 600)
	assert.Equal(t, int32(800), rt.Width)
	assert.Equal(t, int32(600), rt.Height)
	assert.NotPanics(t, rt.Dispose)
}

func TestUnwindRunsInReverse(t *testing.T) {
	var order []int
	var u Unwind
	u.Add(func() { order = append(order, 1) })
	u.Add(func() { order = append(order, 2) })
	u.Unwind()
	assert.Equal(t, []int{2, 1}, order)

	u.Add(func() { order = append(order, 3) })
	u.Discard()
	u.Unwind()
	assert.Equal(t, []int{2, 1}, order)
}
