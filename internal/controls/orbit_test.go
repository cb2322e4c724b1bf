package controls

import (
	"math"
	"testing"

	"Floodlight/internal/renderer"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func newControls() *OrbitControls {
	camera := renderer.NewPerspectiveCamera(75, 4.0/3.0, 0.01, 1000)
	camera.SetPosition(0, 4, 6)
	c := NewOrbitControls(camera, 600)
	c.Target = mgl32.Vec3{0, 1.65, 0}
	return c
}

func near(t *testing.T, expected, actual mgl32.Vec3, tolerance float32) {
	t.Helper()
	assert.Less(t, expected.Sub(actual).Len(), tolerance, "expected %v, got %v", expected, actual)
}

func forward(camera *renderer.PerspectiveCamera) mgl32.Vec3 {
	return camera.Rotation.Rotate(mgl32.Vec3{0, 0, -1})
}

func TestUpdateKeepsCameraAndFacesTarget(t *testing.T) {
	c := newControls()
	c.Update()

	near(t, mgl32.Vec3{0, 4, 6}, c.Camera.Position, 1e-4)
	toTarget := c.Target.Sub(c.Camera.Position).Normalize()
	near(t, toTarget, forward(c.Camera), 1e-4)
}

func TestRotateQuarterTurn(t *testing.T) {
	c := newControls()
	radius, phi, theta := c.Spherical()

	// A drag of a quarter of the viewport height turns 90 degrees.
	c.Rotate(-150, 0)
	c.Update()

	r2, phi2, theta2 := c.Spherical()
	assert.InDelta(t, radius, r2, 1e-4)
	assert.InDelta(t, phi, phi2, 1e-4)
	assert.InDelta(t, theta+math.Pi/2, theta2, 1e-4)
	assert.InDelta(t, 4, c.Camera.Position[1], 1e-4)
}

func TestPolarAngleStaysOffThePoles(t *testing.T) {
	c := newControls()
	c.Rotate(0, -10000)
	c.Update()
	_, phi, _ := c.Spherical()
	assert.Greater(t, phi, float32(0))

	c.Rotate(0, 20000)
	c.Update()
	_, phi, _ = c.Spherical()
	assert.Less(t, phi, float32(math.Pi))

	c.MaxPolarAngle = math.Pi / 2
	c.Update()
	_, phi, _ = c.Spherical()
	assert.InDelta(t, math.Pi/2, phi, 1e-3)
}

func TestDolly(t *testing.T) {
	c := newControls()
	radius, _, _ := c.Spherical()

	c.Dolly(1)
	assert.True(t, c.Update())
	r, _, _ := c.Spherical()
	assert.InDelta(t, radius*0.95, r, 1e-4)

	c.Dolly(-1)
	c.Update()
	r, _, _ = c.Spherical()
	assert.InDelta(t, radius, r, 1e-4)

	c.MinDistance = 5
	c.Dolly(40)
	c.Update()
	r, _, _ = c.Spherical()
	assert.InDelta(t, 5, r, 1e-4)
}

func TestPanMovesTargetWithCamera(t *testing.T) {
	c := newControls()
	c.Update()
	offset := c.Camera.Position.Sub(c.Target)

	c.Pan(100, 0)
	c.Update()

	assert.Less(t, c.Target[0], float32(0), "dragging right slides the target left")
	near(t, offset, c.Camera.Position.Sub(c.Target), 1e-4)
}

func TestDampingEasesOut(t *testing.T) {
	c := newControls()
	c.EnableDamping = true
	_, _, theta := c.Spherical()

	c.Rotate(-150, 0)
	c.Update()
	_, _, first := c.Spherical()
	assert.InDelta(t, theta+math.Pi/2*0.05, first, 1e-4)

	for i := 0; i < 400; i++ {
		c.Update()
	}
	_, _, settled := c.Spherical()
	assert.InDelta(t, theta+math.Pi/2, settled, 1e-3)
}

func TestMouseDrag(t *testing.T) {
	c := newControls()
	_, _, theta := c.Spherical()

	c.HandleMouseButton(glfw.MouseButtonLeft, glfw.Press, 300, 300)
	assert.True(t, c.Dragging())
	c.HandleCursor(150, 300)
	c.HandleMouseButton(glfw.MouseButtonLeft, glfw.Release, 150, 300)
	assert.False(t, c.Dragging())

	// Moves after release are ignored.
	c.HandleCursor(0, 0)
	c.Update()

	_, _, after := c.Spherical()
	assert.InDelta(t, theta+math.Pi/2, after, 1e-4)
}

func TestScrollAndDisabled(t *testing.T) {
	c := newControls()
	radius, _, _ := c.Spherical()

	c.HandleScroll(1)
	c.Update()
	r, _, _ := c.Spherical()
	assert.Less(t, r, radius)

	c.Enabled = false
	c.HandleScroll(1)
	c.HandleMouseButton(glfw.MouseButtonLeft, glfw.Press, 0, 0)
	assert.False(t, c.Dragging())
	c.Update()
	r2, _, _ := c.Spherical()
	assert.InDelta(t, r, r2, 1e-5)
}
