package tuning

import (
	"testing"

	"Floodlight/internal/renderer"

	"github.com/inkyblackness/imgui-go/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newHeadlessContext sets up imgui with a built font atlas and no backend.
func newHeadlessContext(t *testing.T) {
	t.Helper()
	context := imgui.CreateContext(nil)
	t.Cleanup(context.Destroy)
	io := imgui.CurrentIO()
	io.SetIniFilename("")
	io.SetDisplaySize(imgui.Vec2{X: 1280, Y: 720})
	io.Fonts().TextureDataAlpha8()
}

func drawFrame(draw func()) imgui.DrawData {
	imgui.NewFrame()
	draw()
	imgui.Render()
	return imgui.RenderedDrawData()
}

func TestPanelDrawsHeadless(t *testing.T) {
	newHeadlessContext(t)
	r := newRig()
	c := r.controller
	c.Apply(DefaultOptions())
	c.Renderer = renderer.NewOpenGLRenderer(1280, 720)
	p := NewPanel(c)

	// Auto-resizing windows are measured on their first frame and shown on
	// the second.
	drawFrame(p.Draw)
	data := drawFrame(p.Draw)

	require.True(t, data.Valid())
	assert.NotEmpty(t, data.CommandLists())
	assert.True(t, p.Visible)
	// Drawing without input leaves every value alone.
	assert.Equal(t, DefaultOptions(), c.Options)
	assert.Equal(t, float32(1), c.Renderer.ToneMappingExposure)
}

func TestHiddenPanelDrawsNothing(t *testing.T) {
	newHeadlessContext(t)
	p := NewPanel(newRig().controller)
	p.Visible = false

	drawFrame(p.Draw)
	data := drawFrame(p.Draw)
	assert.Empty(t, data.CommandLists())
}
