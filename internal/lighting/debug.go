package lighting

import (
	"math"

	"Floodlight/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
)

// LightConeLines is the wireframe light helper: five rays from the light
// and a 32 segment ring at the cone's base.
type LightConeLines struct {
	renderer.Object3D

	Light *renderer.SpotLight
	Cone  *renderer.LineSegments
}

func NewLightConeLines(light *renderer.SpotLight) *LightConeLines {
	h := &LightConeLines{Light: light}
	h.Init(h)
	h.Name = "LightConeLines"
	h.MatrixAutoUpdate = false

	positions := []float32{
		0, 0, 0, 0, 0, 1,
		0, 0, 0, 1, 0, 1,
		0, 0, 0, -1, 0, 1,
		0, 0, 0, 0, 1, 1,
		0, 0, 0, 0, -1, 1,
	}
	const segments = 32
	for i := 0; i < segments; i++ {
		p1 := float64(i) / segments * 2 * math.Pi
		p2 := float64(i+1) / segments * 2 * math.Pi
		positions = append(positions,
			float32(math.Cos(p1)), float32(math.Sin(p1)), 1,
			float32(math.Cos(p2)), float32(math.Sin(p2)), 1,
		)
	}

	h.Cone = renderer.NewLineSegments(renderer.NewGeometry(positions, nil, nil, nil), 0xffffff)
	h.Add(h.Cone)
	h.Update()
	return h
}

func (h *LightConeLines) Update() {
	h.Light.UpdateMatrixWorld()
	h.Matrix = h.Light.MatrixWorld

	length, width := ConeDimensions(h.Light)
	h.Cone.SetScale(width, width, length)

	h.Light.Target.UpdateWorldMatrix(true, false)
	h.Cone.LookAt(h.Light.Target.WorldPosition())
	*h.Cone.Color = *h.Light.Color
}

func (h *LightConeLines) Dispose() {
	h.Cone.Geometry.Dispose()
}

// frustumEdges lists corner index pairs: near rect, far rect, sides, then
// rays from the eye (index 8) to the near corners.
var frustumEdges = [][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
	{8, 0}, {8, 1}, {8, 2}, {8, 3},
}

// ShadowCameraHelper draws the view frustum of a light's shadow camera.
type ShadowCameraHelper struct {
	renderer.Object3D

	Camera *renderer.PerspectiveCamera
	Lines  *renderer.LineSegments
}

func NewShadowCameraHelper(camera *renderer.PerspectiveCamera) *ShadowCameraHelper {
	h := &ShadowCameraHelper{Camera: camera}
	h.Init(h)
	h.Name = "ShadowCameraHelper"
	h.MatrixAutoUpdate = false

	positions := make([]float32, len(frustumEdges)*2*3)
	h.Lines = renderer.NewLineSegments(renderer.NewGeometry(positions, nil, nil, nil), 0xffaa00)
	h.Add(h.Lines)
	h.Update()
	return h
}

// FrustumCorners returns the camera-space near corners, far corners and the
// eye, in that order.
func FrustumCorners(camera *renderer.PerspectiveCamera) [9]mgl32.Vec3 {
	ndc := [8]mgl32.Vec3{
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	}
	var corners [9]mgl32.Vec3
	for i, p := range ndc {
		v := camera.ProjectionMatrixInverse.Mul4x1(p.Vec4(1))
		corners[i] = v.Vec3().Mul(1 / v.W())
	}
	return corners
}

func (h *ShadowCameraHelper) Update() {
	h.Matrix = h.Camera.MatrixWorld

	corners := FrustumCorners(h.Camera)
	g := h.Lines.Geometry
	for i, e := range frustumEdges {
		a, b := corners[e[0]], corners[e[1]]
		copy(g.Positions[i*6:], []float32{a[0], a[1], a[2], b[0], b[1], b[2]})
	}
	g.ComputeBoundingSphere()
	g.MarkDirty()
}

func (h *ShadowCameraHelper) Dispose() {
	h.Lines.Geometry.Dispose()
}
