package lighting

import (
	"math"
	"testing"

	"Floodlight/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSpotLightDefaults(t *testing.T) {
	l := NewSpotLight()

	assert.Equal(t, float32(1), l.Color.R)
	assert.Equal(t, float32(1), l.Color.G)
	assert.Equal(t, float32(1), l.Color.B)
	assert.Equal(t, float32(10), l.Intensity)
	assert.Equal(t, float32(50), l.Distance)
	assert.Equal(t, float32(0.3), l.Angle)
	assert.Equal(t, float32(1), l.Penumbra)
	assert.Equal(t, float32(0), l.Decay)
	assert.True(t, l.CastShadow)
	assert.Equal(t, [2]int32{1024, 1024}, l.Shadow.MapSize)
	assert.Equal(t, float32(0.1), l.Shadow.Camera.Near)
	assert.Equal(t, float32(20), l.Shadow.Camera.Far)
	assert.Equal(t, mgl32.Vec3{}, l.Target.Position)
}

func TestNewSpotLightOptions(t *testing.T) {
	l := NewSpotLight(
		WithColor(0xff0000),
		WithIntensity(3),
		WithDistance(0),
		WithAngle(1),
		WithPenumbra(0.5),
		WithDecay(2),
		WithTargetPosition(1, 2, 3),
		WithCastShadow(false),
		WithMapSize(512, 256),
		WithShadowCamera(1, 100),
	)

	assert.Equal(t, float32(1), l.Color.R)
	assert.Equal(t, float32(0), l.Color.G)
	assert.Equal(t, float32(3), l.Intensity)
	assert.Equal(t, float32(0), l.Distance)
	assert.Equal(t, float32(1), l.Angle)
	assert.Equal(t, float32(0.5), l.Penumbra)
	assert.Equal(t, float32(2), l.Decay)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, l.Target.Position)
	assert.False(t, l.CastShadow)
	assert.Equal(t, [2]int32{512, 256}, l.Shadow.MapSize)
	assert.Equal(t, float32(1), l.Shadow.Camera.Near)
	assert.Equal(t, float32(100), l.Shadow.Camera.Far)
}

func TestNewSpotLightPassesValuesThrough(t *testing.T) {
	l := NewSpotLight(WithAngle(-2), WithPenumbra(7))
	assert.Equal(t, float32(-2), l.Angle)
	assert.Equal(t, float32(7), l.Penumbra)
}

func TestConeDimensions(t *testing.T) {
	l := NewSpotLight(WithDistance(50), WithAngle(0.25))
	length, width := ConeDimensions(l)
	assert.Equal(t, float32(50), length)
	assert.InDelta(t, 50*math.Tan(0.25), width, 1e-4)

	l.Distance = 0
	length, width = ConeDimensions(l)
	assert.Equal(t, float32(FallbackConeLength), length)
	assert.InDelta(t, 1000*math.Tan(0.25), width, 1e-2)
}

func TestHelperTracksLight(t *testing.T) {
	l := NewSpotLight(WithAngle(0.25))
	l.SetPosition(0, 12, -4)
	h := NewSpotLightHelper(l)

	assert.Equal(t, l.MatrixWorld, h.Matrix)
	length, width := ConeDimensions(l)
	assert.Equal(t, mgl32.Vec3{width, width, length}, h.Cone.Scale)
	assert.Equal(t, float32(1), h.Cone.Material.Opacity)
	assert.True(t, h.Cone.Material.Transparent)

	// Moving the light follows on Update
	l.SetPosition(3, 12, 0)
	l.Distance = 0
	h.Update()
	assert.Equal(t, l.MatrixWorld, h.Matrix)
	assert.Equal(t, float32(FallbackConeLength), h.Cone.Scale.Z())
}

func TestHelperConeAimsAtTarget(t *testing.T) {
	l := NewSpotLight()
	l.SetPosition(0, 12, -4)
	scene := renderer.NewScene()
	h := NewSpotLightHelper(l)
	scene.Add(l, h)

	h.Update()
	scene.UpdateMatrixWorld()

	// Cone axis is local +Z; in world space it must run from light to target
	axis := h.Cone.MatrixWorld.Mul4x1(mgl32.Vec4{0, 0, 1, 0}).Vec3().Normalize()
	expected := mgl32.Vec3{0, -12, 4}.Normalize()
	assert.Less(t, axis.Sub(expected).Len(), float32(1e-3), "axis %v", axis)
	assert.Less(t, h.Cone.WorldPosition().Sub(mgl32.Vec3{0, 12, -4}).Len(), float32(1e-4))
}

func TestHelperColorAndOpacity(t *testing.T) {
	l := NewSpotLight(WithColor(0x00ff00))
	followed := NewSpotLightHelper(l)
	assert.Equal(t, *l.Color, *followed.Cone.Material.Color)

	l.Color.SetHex(0x0000ff)
	followed.Update()
	assert.Equal(t, float32(1), followed.Cone.Material.Color.B)

	pinned := NewSpotLightHelper(l, WithHelperColor(0xff0000), WithHelperOpacity(0.01))
	assert.Equal(t, float32(1), pinned.Cone.Material.Color.R)
	assert.Equal(t, float32(0), pinned.Cone.Material.Color.B)
	assert.Equal(t, float32(0.01), pinned.Cone.Material.Opacity)
}

func TestHelperDisposeKeepsParent(t *testing.T) {
	scene := renderer.NewScene()
	h := NewSpotLightHelper(NewSpotLight())
	scene.Add(h)

	h.Dispose()
	assert.True(t, h.Cone.Geometry.Disposed())
	assert.True(t, h.Cone.Material.Disposed())
	require.NotNil(t, h.Parent())
	assert.Same(t, scene.Object(), h.Parent())
}

func TestLightConeLines(t *testing.T) {
	l := NewSpotLight(WithColor(0xff0000))
	h := NewLightConeLines(l)

	assert.Equal(t, (5+32)*2, h.Cone.Geometry.VertexCount())
	length, width := ConeDimensions(l)
	assert.Equal(t, mgl32.Vec3{width, width, length}, h.Cone.Scale)
	assert.Equal(t, float32(1), h.Cone.Color.R)
}

func TestShadowCameraHelperFollowsProjection(t *testing.T) {
	l := NewSpotLight()
	l.Shadow.UpdateMatrices(l)
	h := NewShadowCameraHelper(l.Shadow.Camera)

	corners := FrustumCorners(l.Shadow.Camera)
	assert.InDelta(t, -l.Shadow.Camera.Near, corners[0].Z(), 1e-3)
	assert.InDelta(t, -l.Shadow.Camera.Far, corners[4].Z(), 1e-2)

	farBefore := h.Lines.Geometry.Positions[4*6+2]
	l.Distance = 10
	l.Shadow.UpdateMatrices(l)
	h.Update()
	assert.NotEqual(t, farBefore, h.Lines.Geometry.Positions[4*6+2])
	assert.Equal(t, l.Shadow.Camera.MatrixWorld, h.Matrix)
}
