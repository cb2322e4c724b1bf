package renderer

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestNewSpotLightDefaults(t *testing.T) {
	l := NewSpotLight()

	assert.Equal(t, float32(1), l.Intensity)
	assert.InDelta(t, math.Pi/3, l.Angle, 1e-6)
	assert.Equal(t, float32(2), l.Decay)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, l.Position)
	assert.NotNil(t, l.Target)
	assert.Equal(t, [2]int32{512, 512}, l.Shadow.MapSize)
}

func TestSpotLightDirection(t *testing.T) {
	l := NewSpotLight()
	l.SetPosition(0, 12, -4)
	l.UpdateMatrixWorld()
	l.Target.UpdateMatrixWorld()

	vecNear(t, mgl32.Vec3{0, 12, -4}.Normalize(), l.Direction())
}

func TestSpotLightConeCosines(t *testing.T) {
	l := NewSpotLight()
	l.Angle = 0.25
	l.Penumbra = 1

	assert.InDelta(t, math.Cos(0.25), l.ConeCos(), 1e-6)
	assert.InDelta(t, 1, l.PenumbraCos(), 1e-6)

	l.Penumbra = 0
	assert.InDelta(t, l.ConeCos(), l.PenumbraCos(), 1e-6)
}

func TestShadowUpdateMatricesFitsCone(t *testing.T) {
	l := NewSpotLight()
	l.Angle = 0.3
	l.Distance = 50
	l.SetPosition(0, 12, 0)
	l.Shadow.MapSize = [2]int32{1024, 512}

	l.Shadow.UpdateMatrices(l)

	cam := l.Shadow.Camera
	assert.InDelta(t, mgl32.RadToDeg(0.6), cam.Fov, 1e-4)
	assert.Equal(t, float32(2), cam.Aspect)
	assert.Equal(t, float32(50), cam.Far)
	vecNear(t, mgl32.Vec3{0, 12, 0}, cam.WorldPosition())

	// The target projects to the centre of the shadow map
	p := l.Shadow.Matrix.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0.5, p.X()/p.W(), 1e-3)
	assert.InDelta(t, 0.5, p.Y()/p.W(), 1e-3)
}

func TestShadowUpdateMatricesKeepsFarWithoutDistance(t *testing.T) {
	l := NewSpotLight()
	l.Distance = 0
	l.Shadow.Camera.Far = 20

	l.Shadow.UpdateMatrices(l)
	assert.Equal(t, float32(20), l.Shadow.Camera.Far)
}

func TestShadowDisposeWithoutMap(t *testing.T) {
	l := NewSpotLight()
	assert.NotPanics(t, l.Shadow.Dispose)
}

func TestAmbientLight(t *testing.T) {
	a := NewAmbientLight(0xffffff, 1)
	assert.Equal(t, float32(1), a.Color.R)
	assert.Equal(t, float32(1), a.Intensity)
}
