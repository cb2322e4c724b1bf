package renderer

import (
	"math"

	"github.com/g3n/engine/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type AmbientLight struct {
	Object3D
	Color     *math32.Color
	Intensity float32
}

func NewAmbientLight(hex uint, intensity float32) *AmbientLight {
	l := &AmbientLight{Color: math32.NewColorHex(hex), Intensity: intensity}
	l.Init(l)
	return l
}

// SpotLight emits a cone from its position towards Target.
type SpotLight struct {
	Object3D

	Color     *math32.Color
	Intensity float32
	Distance  float32 // Cutoff range; 0 means unlimited
	Angle     float32 // Half-angle of the cone in radians
	Penumbra  float32 // Fraction of the cone that is attenuated, [0, 1]
	Decay     float32 // Distance falloff exponent

	// Target is the aim point. It only needs to be part of the scene graph
	// when it is moved away from the origin under a transformed parent.
	Target *Object3D

	CastShadow bool
	Shadow     *SpotLightShadow
}

// NewSpotLight returns a light with the stock engine defaults: white, unit
// intensity, 60 degree half-angle, hard edge, physical decay, one unit above
// the origin and aimed at it.
func NewSpotLight() *SpotLight {
	l := &SpotLight{
		Color:     math32.NewColorHex(0xffffff),
		Intensity: 1,
		Angle:     math.Pi / 3,
		Decay:     2,
		Target:    NewObject3D(),
		Shadow:    newSpotLightShadow(),
	}
	l.Init(l)
	l.Position = mgl32.Vec3{0, 1, 0}
	return l
}

// Direction is the normalised world-space vector from target to light.
func (l *SpotLight) Direction() mgl32.Vec3 {
	d := l.WorldPosition().Sub(l.Target.WorldPosition())
	if d.Len() == 0 {
		return mgl32.Vec3{0, 1, 0}
	}
	return d.Normalize()
}

// ConeCos and PenumbraCos bound the smoothstep of the spot attenuation.
func (l *SpotLight) ConeCos() float32 {
	return float32(math.Cos(float64(l.Angle)))
}

func (l *SpotLight) PenumbraCos() float32 {
	return float32(math.Cos(float64(l.Angle * (1 - l.Penumbra))))
}

type SpotLightShadow struct {
	Camera  *PerspectiveCamera
	MapSize [2]int32
	Bias    float32
	Focus   float32

	// Matrix maps world space to shadow map texture space.
	Matrix mgl32.Mat4

	depthMap *shadowMap
}

func newSpotLightShadow() *SpotLightShadow {
	return &SpotLightShadow{
		Camera:  NewPerspectiveCamera(50, 1, 0.5, 500),
		MapSize: [2]int32{512, 512},
		Bias:    -0.0005,
		Focus:   1,
		Matrix:  mgl32.Ident4(),
	}
}

var shadowBiasMatrix = mgl32.Mat4{
	0.5, 0, 0, 0,
	0, 0.5, 0, 0,
	0, 0, 0.5, 0,
	0.5, 0.5, 0.5, 1,
}

// UpdateMatrices fits the shadow camera to the light's cone and places it at
// the light looking at the target. A zero light distance keeps the camera's
// own far plane.
func (s *SpotLightShadow) UpdateMatrices(light *SpotLight) {
	camera := s.Camera

	fov := mgl32.RadToDeg(2*light.Angle) * s.Focus
	aspect := float32(s.MapSize[0]) / float32(s.MapSize[1])
	far := light.Distance
	if far == 0 {
		far = camera.Far
	}
	if fov != camera.Fov || aspect != camera.Aspect || far != camera.Far {
		camera.Fov = fov
		camera.Aspect = aspect
		camera.Far = far
		camera.UpdateProjectionMatrix()
	}

	light.UpdateWorldMatrix(true, false)
	light.Target.UpdateWorldMatrix(true, false)

	camera.Position = light.WorldPosition()
	camera.LookAt(light.Target.WorldPosition())
	camera.UpdateMatrixWorld()

	s.Matrix = shadowBiasMatrix.Mul4(camera.ProjectionMatrix).Mul4(camera.ViewMatrix())
}

func (s *SpotLightShadow) Dispose() {
	if s.depthMap != nil {
		s.depthMap.Destroy()
		s.depthMap = nil
	}
}
