// Package gui hosts the imgui debug overlay on a GLFW window.
package gui

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/inkyblackness/imgui-go/v4"
)

// GUI owns the imgui context and the GLFW/OpenGL backends it draws through.
type GUI struct {
	context  *imgui.Context
	Platform *GLFW
	Renderer *OpenGL3
}

// New sets up imgui on window. The window's GL context must be current and
// loaded.
func New(window *glfw.Window) (*GUI, error) {
	context := imgui.CreateContext(nil)
	io := imgui.CurrentIO()
	// Panel layout is not persisted.
	io.SetIniFilename("")

	platform := NewGLFWFromExistingWindow(window, io)
	renderer, err := NewOpenGL3(io)
	if err != nil {
		context.Destroy()
		return nil, err
	}
	imgui.StyleColorsDark()
	return &GUI{context: context, Platform: platform, Renderer: renderer}, nil
}

// Frame builds one imgui frame with draw and renders it over whatever is on
// the default framebuffer.
func (g *GUI) Frame(draw func()) {
	g.Platform.NewFrame()
	imgui.NewFrame()
	draw()
	imgui.Render()
	g.Renderer.Render(g.Platform.DisplaySize(), g.Platform.FramebufferSize(), imgui.RenderedDrawData())
}

// WantCaptureMouse reports whether imgui is using the mouse, in which case
// the scene should ignore it.
func (g *GUI) WantCaptureMouse() bool {
	return imgui.CurrentIO().WantCaptureMouse()
}

func (g *GUI) WantCaptureKeyboard() bool {
	return imgui.CurrentIO().WantCaptureKeyboard()
}

func (g *GUI) Dispose() {
	g.Renderer.Dispose()
	g.context.Destroy()
}
