package gui

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/inkyblackness/imgui-go/v4"
	"github.com/stretchr/testify/assert"
)

func TestOrthoProjectionMapsDisplayCorners(t *testing.T) {
	p := orthoProjection(800, 600)
	var m mgl32.Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			m[c*4+r] = p[c][r]
		}
	}

	topLeft := m.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, -1, topLeft[0], 1e-6)
	assert.InDelta(t, 1, topLeft[1], 1e-6)

	bottomRight := m.Mul4x1(mgl32.Vec4{800, 600, 0, 1})
	assert.InDelta(t, 1, bottomRight[0], 1e-6)
	assert.InDelta(t, -1, bottomRight[1], 1e-6)
}

func TestScissorRectFlipsY(t *testing.T) {
	x, y, w, h := scissorRect(imgui.Vec4{X: 10, Y: 20, Z: 110, W: 70}, 600)
	assert.Equal(t, int32(10), x)
	assert.Equal(t, int32(530), y)
	assert.Equal(t, int32(100), w)
	assert.Equal(t, int32(50), h)
}

func TestMouseButtonTables(t *testing.T) {
	for id, index := range glfwButtonIndexByID {
		assert.Equal(t, id, glfwButtonIDByIndex[index])
	}
	assert.Equal(t, 0, glfwButtonIndexByID[glfw.MouseButtonLeft])
	assert.Equal(t, 1, glfwButtonIndexByID[glfw.MouseButtonRight])
}

func TestMouseButtonChangeLatchesPress(t *testing.T) {
	p := &GLFW{}
	p.MouseButtonChange(glfw.MouseButtonRight, glfw.Press)
	p.MouseButtonChange(glfw.MouseButton5, glfw.Press)
	assert.Equal(t, [3]bool{false, true, false}, p.mouseJustPressed)

	// Releases are read from the window state on the next frame.
	p.MouseButtonChange(glfw.MouseButtonRight, glfw.Release)
	assert.True(t, p.mouseJustPressed[1])
}
