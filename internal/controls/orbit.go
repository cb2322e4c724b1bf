// Package controls moves a camera around a target point with the mouse.
package controls

import (
	"math"

	"Floodlight/internal/renderer"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

const epsilon = 0.000001

type state int

const (
	stateNone state = iota
	stateRotate
	statePan
)

// OrbitControls keeps the camera on a sphere around Target. Left drag
// rotates, right or middle drag pans, the wheel dollies. Update must be
// called once per frame; with damping on, motion eases out over several
// frames.
type OrbitControls struct {
	Camera *renderer.PerspectiveCamera
	Target mgl32.Vec3

	Enabled       bool
	EnableDamping bool
	DampingFactor float32

	RotateSpeed float32
	PanSpeed    float32
	ZoomSpeed   float32

	MinDistance   float32
	MaxDistance   float32
	MinPolarAngle float32
	MaxPolarAngle float32

	// ViewportHeight is the window height in screen coordinates; drag
	// distances are measured against it.
	ViewportHeight float32

	state          state
	lastX, lastY   float64
	sphericalTheta float32
	sphericalPhi   float32
	scale          float32
	panOffset      mgl32.Vec3
	zoomChanged    bool

	lastPosition mgl32.Vec3
	lastRotation mgl32.Quat
}

func NewOrbitControls(camera *renderer.PerspectiveCamera, viewportHeight float32) *OrbitControls {
	return &OrbitControls{
		Camera:         camera,
		Enabled:        true,
		DampingFactor:  0.05,
		RotateSpeed:    1,
		PanSpeed:       1,
		ZoomSpeed:      1,
		MaxDistance:    float32(math.Inf(1)),
		MaxPolarAngle:  math.Pi,
		ViewportHeight: viewportHeight,
		scale:          1,
	}
}

// Spherical returns radius, polar angle from +Y and azimuth around +Y of
// the camera relative to the target.
func (c *OrbitControls) Spherical() (radius, phi, theta float32) {
	return toSpherical(c.Camera.Position.Sub(c.Target))
}

func toSpherical(offset mgl32.Vec3) (radius, phi, theta float32) {
	radius = offset.Len()
	if radius == 0 {
		return 0, 0, 0
	}
	theta = float32(math.Atan2(float64(offset[0]), float64(offset[2])))
	phi = float32(math.Acos(float64(mgl32.Clamp(offset[1]/radius, -1, 1))))
	return radius, phi, theta
}

func fromSpherical(radius, phi, theta float32) mgl32.Vec3 {
	sinPhi := float32(math.Sin(float64(phi))) * radius
	return mgl32.Vec3{
		sinPhi * float32(math.Sin(float64(theta))),
		float32(math.Cos(float64(phi))) * radius,
		sinPhi * float32(math.Cos(float64(theta))),
	}
}

func (c *OrbitControls) height() float32 {
	if c.ViewportHeight <= 0 {
		return 1
	}
	return c.ViewportHeight
}

// Rotate orbits by a drag of dx, dy screen units. A drag over the full
// viewport height turns a full circle.
func (c *OrbitControls) Rotate(dx, dy float32) {
	h := c.height()
	c.sphericalTheta -= 2 * math.Pi * dx / h * c.RotateSpeed
	c.sphericalPhi -= 2 * math.Pi * dy / h * c.RotateSpeed
}

// Pan slides the target and camera in the view plane so that the point
// under the cursor follows a drag of dx, dy screen units.
func (c *OrbitControls) Pan(dx, dy float32) {
	offset := c.Camera.Position.Sub(c.Target)
	targetDistance := offset.Len() * float32(math.Tan(float64(mgl32.DegToRad(c.Camera.Fov))/2))
	h := c.height()

	right := c.Camera.Rotation.Rotate(mgl32.Vec3{1, 0, 0})
	up := c.Camera.Rotation.Rotate(mgl32.Vec3{0, 1, 0})
	left := right.Mul(-2 * dx * targetDistance / h * c.PanSpeed)
	upward := up.Mul(2 * dy * targetDistance / h * c.PanSpeed)
	c.panOffset = c.panOffset.Add(left).Add(upward)
}

func (c *OrbitControls) zoomScale() float32 {
	return float32(math.Pow(0.95, float64(c.ZoomSpeed)))
}

// Dolly moves towards the target for steps > 0 and away for steps < 0.
func (c *OrbitControls) Dolly(steps float32) {
	if steps == 0 {
		return
	}
	s := float32(math.Pow(float64(c.zoomScale()), math.Abs(float64(steps))))
	if steps > 0 {
		c.scale *= s
	} else {
		c.scale /= s
	}
	c.zoomChanged = true
}

// Update applies pending motion to the camera and reports whether the camera
// moved.
func (c *OrbitControls) Update() bool {
	offset := c.Camera.Position.Sub(c.Target)
	radius, phi, theta := toSpherical(offset)

	if c.EnableDamping {
		theta += c.sphericalTheta * c.DampingFactor
		phi += c.sphericalPhi * c.DampingFactor
	} else {
		theta += c.sphericalTheta
		phi += c.sphericalPhi
	}

	phi = mgl32.Clamp(phi, c.MinPolarAngle, c.MaxPolarAngle)
	phi = mgl32.Clamp(phi, epsilon, math.Pi-epsilon)

	radius = mgl32.Clamp(radius*c.scale, c.MinDistance, c.MaxDistance)

	if c.EnableDamping {
		c.Target = c.Target.Add(c.panOffset.Mul(c.DampingFactor))
	} else {
		c.Target = c.Target.Add(c.panOffset)
	}

	c.Camera.Position = c.Target.Add(fromSpherical(radius, phi, theta))
	c.Camera.LookAt(c.Target)

	if c.EnableDamping {
		c.sphericalTheta *= 1 - c.DampingFactor
		c.sphericalPhi *= 1 - c.DampingFactor
		c.panOffset = c.panOffset.Mul(1 - c.DampingFactor)
	} else {
		c.sphericalTheta, c.sphericalPhi = 0, 0
		c.panOffset = mgl32.Vec3{}
	}
	c.scale = 1

	moved := c.zoomChanged ||
		c.lastPosition.Sub(c.Camera.Position).LenSqr() > epsilon ||
		8*(1-c.lastRotation.Dot(c.Camera.Rotation)) > epsilon
	if moved {
		c.lastPosition = c.Camera.Position
		c.lastRotation = c.Camera.Rotation
		c.zoomChanged = false
	}
	return moved
}

// HandleMouseButton starts or ends a drag at the given cursor position.
func (c *OrbitControls) HandleMouseButton(button glfw.MouseButton, action glfw.Action, x, y float64) {
	if !c.Enabled {
		return
	}
	if action == glfw.Release {
		c.state = stateNone
		return
	}
	if action != glfw.Press {
		return
	}
	switch button {
	case glfw.MouseButtonLeft:
		c.state = stateRotate
	case glfw.MouseButtonRight, glfw.MouseButtonMiddle:
		c.state = statePan
	default:
		return
	}
	c.lastX, c.lastY = x, y
}

// HandleCursor continues a drag started by HandleMouseButton.
func (c *OrbitControls) HandleCursor(x, y float64) {
	if !c.Enabled || c.state == stateNone {
		return
	}
	dx, dy := float32(x-c.lastX), float32(y-c.lastY)
	c.lastX, c.lastY = x, y
	switch c.state {
	case stateRotate:
		c.Rotate(dx, dy)
	case statePan:
		c.Pan(dx, dy)
	}
}

// HandleScroll dollies in for a positive vertical scroll.
func (c *OrbitControls) HandleScroll(yoff float64) {
	if !c.Enabled {
		return
	}
	switch {
	case yoff > 0:
		c.Dolly(1)
	case yoff < 0:
		c.Dolly(-1)
	}
}

// Dragging reports whether a mouse drag is in progress.
func (c *OrbitControls) Dragging() bool {
	return c.state != stateNone
}
