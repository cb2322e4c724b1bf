package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// RenderTarget is an off-screen color (RGBA16F) + depth framebuffer. GL
// storage is (re)allocated lazily on the next bind after a size change.
type RenderTarget struct {
	Width  int32
	Height int32

	fbo      uint32
	colorTex uint32
	depthRB  uint32

	allocW, allocH int32
}

func NewRenderTarget(width, height int32) *RenderTarget {
	rt := &RenderTarget{}
	rt.SetSize(width, height)
	return rt
}

func (rt *RenderTarget) SetSize(width, height int32) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	rt.Width = width
	rt.Height = height
}

// Texture returns the color attachment, allocating it if needed.
func (rt *RenderTarget) Texture() uint32 {
	if err := rt.ensure(); err != nil {
		return 0
	}
	return rt.colorTex
}

func (rt *RenderTarget) ensure() error {
	if rt.fbo != 0 && rt.allocW == rt.Width && rt.allocH == rt.Height {
		return nil
	}
	rt.Dispose()

	var cleanup Unwind
	defer cleanup.Unwind()

	gl.GenTextures(1, &rt.colorTex)
	cleanup.Add(func() { gl.DeleteTextures(1, &rt.colorTex); rt.colorTex = 0 })
	gl.BindTexture(gl.TEXTURE_2D, rt.colorTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F, rt.Width, rt.Height, 0, gl.RGBA, gl.HALF_FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	gl.GenRenderbuffers(1, &rt.depthRB)
	cleanup.Add(func() { gl.DeleteRenderbuffers(1, &rt.depthRB); rt.depthRB = 0 })
	gl.BindRenderbuffer(gl.RENDERBUFFER, rt.depthRB)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, rt.Width, rt.Height)

	gl.GenFramebuffers(1, &rt.fbo)
	cleanup.Add(func() { gl.DeleteFramebuffers(1, &rt.fbo); rt.fbo = 0 })
	gl.BindFramebuffer(gl.FRAMEBUFFER, rt.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, rt.colorTex, 0)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, rt.depthRB)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("render target %dx%d incomplete: status=0x%X", rt.Width, rt.Height, status)
	}

	cleanup.Discard()
	rt.allocW, rt.allocH = rt.Width, rt.Height
	return nil
}

func (rt *RenderTarget) Dispose() {
	if rt.fbo != 0 {
		gl.DeleteFramebuffers(1, &rt.fbo)
		rt.fbo = 0
	}
	if rt.colorTex != 0 {
		gl.DeleteTextures(1, &rt.colorTex)
		rt.colorTex = 0
	}
	if rt.depthRB != 0 {
		gl.DeleteRenderbuffers(1, &rt.depthRB)
		rt.depthRB = 0
	}
	rt.allocW, rt.allocH = 0, 0
}

// shadowMap wraps a depth-only framebuffer sampled with hardware PCF.
type shadowMap struct {
	FBO      uint32
	DepthTex uint32
	Width    int32
	Height   int32
}

func newShadowMap(width, height int32) (*shadowMap, error) {
	sm := &shadowMap{Width: width, Height: height}

	gl.GenTextures(1, &sm.DepthTex)
	gl.BindTexture(gl.TEXTURE_2D, sm.DepthTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT32F, width, height, 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_BORDER)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_BORDER)
	// Outside the map counts as lit
	border := [4]float32{1, 1, 1, 1}
	gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &border[0])
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_MODE, gl.COMPARE_REF_TO_TEXTURE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_FUNC, gl.LEQUAL)

	gl.GenFramebuffers(1, &sm.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, sm.FBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, sm.DepthTex, 0)
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		sm.Destroy()
		return nil, fmt.Errorf("shadow FBO incomplete: status=0x%X", status)
	}
	return sm, nil
}

func (sm *shadowMap) Destroy() {
	if sm.FBO != 0 {
		gl.DeleteFramebuffers(1, &sm.FBO)
		sm.FBO = 0
	}
	if sm.DepthTex != 0 {
		gl.DeleteTextures(1, &sm.DepthTex)
		sm.DepthTex = 0
	}
}
