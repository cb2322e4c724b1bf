package postprocessing

import (
	"Floodlight/internal/renderer"
)

// EffectComposer runs passes over a pair of ping-pong render targets. Sizes
// given to SetSize are window sizes; targets are allocated at that size
// times the pixel ratio.
type EffectComposer struct {
	RenderToScreen bool

	renderer      renderer.Render
	renderTarget1 *renderer.RenderTarget
	renderTarget2 *renderer.RenderTarget
	writeBuffer   *renderer.RenderTarget
	readBuffer    *renderer.RenderTarget

	passes []Pass

	width, height int32
	pixelRatio    float32
}

func NewEffectComposer(r renderer.Render) *EffectComposer {
	width, height := r.Size()
	c := &EffectComposer{
		RenderToScreen: true,
		renderer:       r,
		width:          width,
		height:         height,
		pixelRatio:     r.PixelRatio(),
	}
	w, h := c.effectiveSize()
	c.renderTarget1 = renderer.NewRenderTarget(w, h)
	c.renderTarget2 = renderer.NewRenderTarget(w, h)
	c.writeBuffer = c.renderTarget1
	c.readBuffer = c.renderTarget2
	return c
}

func (c *EffectComposer) effectiveSize() (int32, int32) {
	return int32(float32(c.width)*c.pixelRatio + 0.5), int32(float32(c.height)*c.pixelRatio + 0.5)
}

// ReadBuffer holds the composer's output after Render when RenderToScreen is
// off.
func (c *EffectComposer) ReadBuffer() *renderer.RenderTarget {
	return c.readBuffer
}

func (c *EffectComposer) WriteBuffer() *renderer.RenderTarget {
	return c.writeBuffer
}

func (c *EffectComposer) Passes() []Pass {
	return c.passes
}

func (c *EffectComposer) AddPass(p Pass) {
	c.passes = append(c.passes, p)
	p.SetSize(c.effectiveSize())
}

func (c *EffectComposer) RemovePass(p Pass) {
	for i, existing := range c.passes {
		if existing == p {
			c.passes = append(c.passes[:i], c.passes[i+1:]...)
			return
		}
	}
}

func (c *EffectComposer) isLastEnabledPass(index int) bool {
	for _, p := range c.passes[index+1:] {
		if p.Enabled() {
			return false
		}
	}
	return true
}

func (c *EffectComposer) swapBuffers() {
	c.readBuffer, c.writeBuffer = c.writeBuffer, c.readBuffer
}

// Render runs every enabled pass in order. The renderer's target is restored
// afterwards.
func (c *EffectComposer) Render(delta float32) {
	current := c.renderer.RenderTarget()

	for i, p := range c.passes {
		if !p.Enabled() {
			continue
		}
		p.SetRenderToScreen(c.RenderToScreen && c.isLastEnabledPass(i))
		p.Render(c.renderer, c.writeBuffer, c.readBuffer, delta)
		if p.NeedsSwap() {
			c.swapBuffers()
		}
	}

	c.renderer.SetRenderTarget(current)
}

func (c *EffectComposer) SetSize(width, height int32) {
	c.width = width
	c.height = height
	w, h := c.effectiveSize()
	c.renderTarget1.SetSize(w, h)
	c.renderTarget2.SetSize(w, h)
	for _, p := range c.passes {
		p.SetSize(w, h)
	}
}

func (c *EffectComposer) Size() (int32, int32) {
	return c.width, c.height
}

func (c *EffectComposer) SetPixelRatio(ratio float32) {
	c.pixelRatio = ratio
	c.SetSize(c.width, c.height)
}

// Dispose frees the composer's targets. Passes are owned by the caller since
// one pass may be shared by several composers.
func (c *EffectComposer) Dispose() {
	c.renderTarget1.Dispose()
	c.renderTarget2.Dispose()
}
