// Package engine owns the window and drives the frame loop.
package engine

import (
	"fmt"
	"runtime"

	"Floodlight/internal/config"
	"Floodlight/internal/gui"
	"Floodlight/internal/logger"
	"Floodlight/internal/renderer"
	"Floodlight/internal/stage"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"
)

type Engine struct {
	Config   *config.Config
	Width    int32
	Height   int32
	Renderer *renderer.OpenGLRenderer
	Stage    *stage.Stage
	GUI      *gui.GUI

	// EnableCameraInput lets the orbit controls see mouse input that imgui
	// does not claim.
	EnableCameraInput bool

	window           *glfw.Window
	clock            frameClock
	onRenderCallback func(deltaTime float32)
}

func NewEngine(cfg *config.Config) *Engine {
	return &Engine{
		Config:            cfg,
		Width:             int32(cfg.Window.Width),
		Height:            int32(cfg.Window.Height),
		EnableCameraInput: true,
	}
}

// Run opens the window, builds the stage and blocks until the window is
// closed. It must be called from the main goroutine.
func (e *Engine) Run() error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("GLFW initialization failed: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Decorated, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 24)
	glfw.WindowHint(glfw.Samples, e.Config.Window.Samples)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(int(e.Width), int(e.Height), e.Config.Window.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("window creation failed: %w", err)
	}
	defer window.Destroy()
	e.window = window
	window.MakeContextCurrent()
	if e.Config.Window.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	SetTitleBarColor(window, uint(e.Config.Fog.Color))

	e.Renderer = renderer.NewOpenGLRenderer(e.Width, e.Height)
	e.Renderer.SetPixelRatio(e.pixelRatio())
	if err := e.Renderer.Init(); err != nil {
		return err
	}
	defer e.Renderer.Cleanup()

	e.Stage, err = stage.New(e.Renderer, e.Config)
	if err != nil {
		return err
	}
	defer e.Stage.Dispose()

	e.GUI, err = gui.New(window)
	if err != nil {
		return err
	}
	defer e.GUI.Dispose()

	e.installCallbacks()
	logger.Log.Info("Window opened",
		zap.String("title", e.Config.Window.Title),
		zap.Int32("width", e.Width), zap.Int32("height", e.Height),
		zap.Float32("pixelRatio", e.Renderer.PixelRatio()))

	e.RenderLoop()
	return nil
}

// RenderLoop runs frames until the window is asked to close.
func (e *Engine) RenderLoop() {
	e.clock.Reset(glfw.GetTime())

	for !e.window.ShouldClose() {
		deltaTime := e.clock.Tick(glfw.GetTime())

		e.syncSize()
		e.Stage.Frame(deltaTime)
		e.GUI.Frame(e.Stage.DrawUI)

		if e.onRenderCallback != nil {
			e.onRenderCallback(deltaTime)
		}

		e.window.SwapBuffers()
		glfw.PollEvents()
	}
	logger.Log.Info("Window closed")
}

// SetOnRenderCallback sets a callback that runs after every frame is drawn.
func (e *Engine) SetOnRenderCallback(callback func(deltaTime float32)) {
	e.onRenderCallback = callback
}

// syncSize pushes a changed window or framebuffer size into the stage.
func (e *Engine) syncSize() {
	w, h := e.window.GetSize()
	ratio := e.pixelRatio()
	if int32(w) == e.Width && int32(h) == e.Height && ratio == e.Renderer.PixelRatio() {
		return
	}
	if w <= 0 || h <= 0 {
		return
	}
	e.Width, e.Height = int32(w), int32(h)
	e.Stage.Resize(e.Width, e.Height, ratio)
	logger.Log.Debug("Window resized", zap.Int32("width", e.Width), zap.Int32("height", e.Height), zap.Float32("pixelRatio", ratio))
}

func (e *Engine) pixelRatio() float32 {
	w, _ := e.window.GetSize()
	fw, _ := e.window.GetFramebufferSize()
	return pixelRatio(w, fw)
}

func pixelRatio(windowWidth, framebufferWidth int) float32 {
	if windowWidth <= 0 || framebufferWidth <= 0 {
		return 1
	}
	return float32(framebufferWidth) / float32(windowWidth)
}

func (e *Engine) installCallbacks() {
	e.window.SetMouseButtonCallback(e.mouseButtonCallback)
	e.window.SetCursorPosCallback(e.mouseCallback)
	e.window.SetScrollCallback(e.scrollCallback)
	e.window.SetKeyCallback(e.keyCallback)
	e.window.SetCharCallback(e.charCallback)
}

func (e *Engine) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	e.GUI.Platform.MouseButtonChange(button, action)
	// Releases always reach the controls so a drag that ends over the panel
	// still stops.
	if !e.EnableCameraInput || (action == glfw.Press && e.GUI.WantCaptureMouse()) {
		return
	}
	x, y := w.GetCursorPos()
	e.Stage.Controls.HandleMouseButton(button, action, x, y)
}

func (e *Engine) mouseCallback(w *glfw.Window, xpos, ypos float64) {
	if !e.EnableCameraInput {
		return
	}
	e.Stage.Controls.HandleCursor(xpos, ypos)
}

func (e *Engine) scrollCallback(w *glfw.Window, xoff, yoff float64) {
	e.GUI.Platform.MouseScrollChange(xoff, yoff)
	if !e.EnableCameraInput || e.GUI.WantCaptureMouse() {
		return
	}
	e.Stage.Controls.HandleScroll(yoff)
}

func (e *Engine) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	e.GUI.Platform.KeyChange(key, action)
	if action != glfw.Press || e.GUI.WantCaptureKeyboard() {
		return
	}
	switch key {
	case glfw.KeyEscape:
		w.SetShouldClose(true)
	case glfw.KeyF1:
		e.Stage.Panel.Visible = !e.Stage.Panel.Visible
	}
}

func (e *Engine) charCallback(w *glfw.Window, char rune) {
	e.GUI.Platform.CharChange(char)
}

// frameClock turns absolute timestamps into per-frame deltas.
type frameClock struct {
	last    float64
	started bool
}

func (c *frameClock) Reset(now float64) {
	c.last = now
	c.started = true
}

// Tick returns the seconds since the previous tick. The first tick after
// construction returns zero.
func (c *frameClock) Tick(now float64) float32 {
	if !c.started {
		c.Reset(now)
		return 0
	}
	delta := now - c.last
	c.last = now
	if delta < 0 {
		return 0
	}
	return float32(delta)
}
