package postprocessing

import (
	"Floodlight/internal/logger"
	"Floodlight/internal/renderer"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"
)

// TextureInput points a sampler uniform at another target's color.
type TextureInput struct {
	Name   string
	Target *renderer.RenderTarget
}

// ShaderPass runs a full-screen shader that samples the previous result
// through the sampler named TextureID.
type ShaderPass struct {
	PassBase

	Shader    *renderer.Shader
	TextureID string

	// Inputs are extra samplers, bound to units 1 and up in order.
	Inputs []TextureInput

	quad   *renderer.FullScreenQuad
	failed bool
}

func NewShaderPass(shader *renderer.Shader, textureID string) *ShaderPass {
	if textureID == "" {
		textureID = "tDiffuse"
	}
	return &ShaderPass{
		PassBase:  newPassBase(true, false),
		Shader:    shader,
		TextureID: textureID,
		quad:      renderer.NewFullScreenQuad(),
	}
}

func (p *ShaderPass) Render(r renderer.Render, writeBuffer, readBuffer *renderer.RenderTarget, delta float32) {
	if p.failed {
		return
	}
	if err := p.Shader.Compile(); err != nil {
		logger.Log.Error("Shader pass disabled", zap.String("shader", p.Shader.Name), zap.Error(err))
		p.failed = true
		return
	}

	// Resolve textures first: allocating one rebinds the framebuffer
	input := readBuffer.Texture()
	extra := make([]uint32, len(p.Inputs))
	for i, in := range p.Inputs {
		extra[i] = in.Target.Texture()
	}

	if p.renderToScreen {
		r.SetRenderTarget(nil)
	} else {
		r.SetRenderTarget(writeBuffer)
		if p.Clear {
			r.Clear()
		}
	}

	p.Shader.Use()
	p.Shader.SetTexture(p.TextureID, 0, input)
	for i, in := range p.Inputs {
		p.Shader.SetTexture(in.Name, int32(i+1), extra[i])
	}

	gl.Disable(gl.BLEND)
	p.quad.Render()
	gl.ActiveTexture(gl.TEXTURE0)
	gl.UseProgram(0)
}

func (p *ShaderPass) Dispose() {
	p.quad.Dispose()
	p.Shader.Delete()
}
