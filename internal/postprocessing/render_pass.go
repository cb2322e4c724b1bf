package postprocessing

import (
	"Floodlight/internal/renderer"
)

// RenderPass draws a scene into readBuffer, leaving it for the next pass.
type RenderPass struct {
	PassBase
	Scene  *renderer.Scene
	Camera *renderer.PerspectiveCamera
}

func NewRenderPass(scene *renderer.Scene, camera *renderer.PerspectiveCamera) *RenderPass {
	return &RenderPass{
		PassBase: newPassBase(false, true),
		Scene:    scene,
		Camera:   camera,
	}
}

func (p *RenderPass) Render(r renderer.Render, writeBuffer, readBuffer *renderer.RenderTarget, delta float32) {
	oldAutoClear := r.AutoClear()
	r.SetAutoClear(false)
	defer r.SetAutoClear(oldAutoClear)

	if p.renderToScreen {
		r.SetRenderTarget(nil)
	} else {
		r.SetRenderTarget(readBuffer)
	}
	if p.Clear {
		r.Clear()
	}
	r.Render(p.Scene, p.Camera)
}
