package lighting

import (
	"math"

	"Floodlight/internal/renderer"
)

// FallbackConeLength is the cone length drawn for lights with no cutoff.
const FallbackConeLength = 1000

// SpotLightHelper is a solid cone that visualises a spot light's beam. The
// cone's apex sits at the light and its base lies on the cutoff distance.
type SpotLightHelper struct {
	renderer.Object3D

	Light *renderer.SpotLight
	Cone  *renderer.Mesh

	color   *uint
	opacity *float32
}

type HelperOption func(*SpotLightHelper)

// WithHelperColor pins the cone color instead of following the light's.
func WithHelperColor(hex uint) HelperOption {
	return func(h *SpotLightHelper) {
		h.color = &hex
	}
}

// WithHelperOpacity overrides the default opacity of 1.
func WithHelperOpacity(opacity float32) HelperOption {
	return func(h *SpotLightHelper) {
		h.opacity = &opacity
	}
}

func NewSpotLightHelper(light *renderer.SpotLight, opts ...HelperOption) *SpotLightHelper {
	h := &SpotLightHelper{Light: light}
	h.Init(h)
	h.Name = "SpotLightHelper"
	h.MatrixAutoUpdate = false
	for _, opt := range opts {
		opt(h)
	}

	geometry := renderer.NewConeGeometry(1, 1, 512, 1, false, 0, 2*math.Pi).
		Translate(0, -0.5, 0).
		RotateX(-math.Pi / 2)
	material := renderer.NewBasicMaterial(0xffffff)
	material.Transparent = true

	h.Cone = renderer.NewMesh(geometry, material)
	h.Cone.Name = "SpotLightHelperCone"
	h.Add(h.Cone)

	h.Update()
	return h
}

// ConeDimensions returns the cone length and base radius for the light's
// current distance and angle.
func ConeDimensions(light *renderer.SpotLight) (length, width float32) {
	length = light.Distance
	if length == 0 {
		length = FallbackConeLength
	}
	width = length * float32(math.Tan(float64(light.Angle)))
	return length, width
}

// Update re-derives the cone from the light. It must run after any change to
// the light's transform, angle, distance or color.
func (h *SpotLightHelper) Update() {
	h.Light.UpdateMatrixWorld()
	h.Matrix = h.Light.MatrixWorld

	length, width := ConeDimensions(h.Light)
	h.Cone.SetScale(width, width, length)

	h.Light.Target.UpdateWorldMatrix(true, false)
	h.Cone.LookAt(h.Light.Target.WorldPosition())

	m := h.Cone.Material
	if h.color != nil {
		m.Color.SetHex(*h.color)
	} else {
		*m.Color = *h.Light.Color
	}
	if h.opacity != nil {
		m.Opacity = *h.opacity
	} else {
		m.Opacity = 1
	}
}

// Dispose releases the cone's geometry and material. The helper stays in the
// scene graph.
func (h *SpotLightHelper) Dispose() {
	h.Cone.Geometry.Dispose()
	h.Cone.Material.Dispose()
}
