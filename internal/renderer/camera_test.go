package renderer

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestNewPerspectiveCamera(t *testing.T) {
	cam := NewPerspectiveCamera(75, 800.0/600.0, 0.01, 1000)

	if cam == nil {
		t.Fatal("NewPerspectiveCamera returned nil")
	}

	if cam.ProjectionMatrix.At(3, 3) != 0.0 {
		t.Error("Perspective projection should have w=0 at (3,3)")
	}
}

func TestCameraUpdateProjectionMatrix(t *testing.T) {
	cam := NewPerspectiveCamera(75, 1, 0.01, 1000)
	before := cam.ProjectionMatrix

	cam.Aspect = 800.0 / 600.0
	cam.UpdateProjectionMatrix()

	if cam.ProjectionMatrix == before {
		t.Error("Changing the aspect should change the projection")
	}
}

func TestCameraViewMatrix(t *testing.T) {
	cam := NewPerspectiveCamera(75, 1, 0.01, 1000)
	cam.SetPosition(0, 0, 5)
	cam.UpdateMatrixWorld()

	view := cam.ViewMatrix()

	if view.At(3, 3) != 1.0 {
		t.Error("View matrix should be valid (w component = 1)")
	}
	p := view.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if math.Abs(float64(p.Z())+5) > 1e-4 {
		t.Errorf("Origin should be 5 units in front of the camera, got z=%f", p.Z())
	}
}

func TestCameraGetViewProjection(t *testing.T) {
	cam := NewPerspectiveCamera(75, 1, 0.01, 1000)
	cam.UpdateMatrixWorld()

	vp := cam.ViewProjection()

	zero := mgl32.Mat4{}
	if vp == zero {
		t.Error("ViewProjection should not be zero matrix")
	}
}

func TestFrustumIntersectsSphere(t *testing.T) {
	cam := NewPerspectiveCamera(60, 1, 0.1, 100)
	cam.SetPosition(0, 0, 10)
	cam.LookAt(mgl32.Vec3{0, 0, 0})
	cam.UpdateMatrixWorld()

	frustum := cam.CalculateFrustum()

	if !frustum.IntersectsSphere(mgl32.Vec3{0, 0, 0}, 1) {
		t.Error("Sphere in front of the camera should intersect")
	}
	if frustum.IntersectsSphere(mgl32.Vec3{0, 0, 50}, 1) {
		t.Error("Sphere behind the camera should not intersect")
	}
}
