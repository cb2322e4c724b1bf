// Package postprocessing chains full-screen passes over off-screen targets.
package postprocessing

import (
	"Floodlight/internal/renderer"
)

// Pass is one step of an EffectComposer. Passes read readBuffer and write
// writeBuffer, or the screen when RenderToScreen is set. A pass that leaves
// its result in writeBuffer reports NeedsSwap.
type Pass interface {
	Render(r renderer.Render, writeBuffer, readBuffer *renderer.RenderTarget, delta float32)
	SetSize(width, height int32)
	Enabled() bool
	NeedsSwap() bool
	SetRenderToScreen(toScreen bool)
	Dispose()
}

// PassBase carries the flags every pass shares. Embed it and implement
// Render and SetSize.
type PassBase struct {
	enabled        bool
	needsSwap      bool
	Clear          bool
	renderToScreen bool
}

func newPassBase(needsSwap, clear bool) PassBase {
	return PassBase{enabled: true, needsSwap: needsSwap, Clear: clear}
}

func (p *PassBase) Enabled() bool {
	return p.enabled
}

func (p *PassBase) SetEnabled(enabled bool) {
	p.enabled = enabled
}

func (p *PassBase) NeedsSwap() bool {
	return p.needsSwap
}

func (p *PassBase) RenderToScreen() bool {
	return p.renderToScreen
}

func (p *PassBase) SetRenderToScreen(toScreen bool) {
	p.renderToScreen = toScreen
}

func (p *PassBase) SetSize(width, height int32) {}

func (p *PassBase) Dispose() {}
