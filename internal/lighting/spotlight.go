// Package lighting builds the scene's spot lights and their helpers.
package lighting

import (
	"Floodlight/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
)

// SpotLightOption is a functional option for configuring a light via NewSpotLight.
type SpotLightOption func(*spotLightParams)

type spotLightParams struct {
	color          uint
	intensity      float32
	distance       float32
	angle          float32
	penumbra       float32
	decay          float32
	targetPosition mgl32.Vec3
	castShadow     bool
	mapSize        [2]int32
	near           float32
	far            float32
}

func defaultSpotLightParams() spotLightParams {
	return spotLightParams{
		color:      0xffffff,
		intensity:  10,
		distance:   50,
		angle:      0.3,
		penumbra:   1,
		decay:      0,
		castShadow: true,
		mapSize:    [2]int32{1024, 1024},
		near:       0.1,
		far:        20,
	}
}

// WithColor sets the light color from a 0xRRGGBB value.
func WithColor(hex uint) SpotLightOption {
	return func(p *spotLightParams) {
		p.color = hex
	}
}

func WithIntensity(intensity float32) SpotLightOption {
	return func(p *spotLightParams) {
		p.intensity = intensity
	}
}

// WithDistance sets the cutoff range. Zero means the light never cuts off.
func WithDistance(distance float32) SpotLightOption {
	return func(p *spotLightParams) {
		p.distance = distance
	}
}

// WithAngle sets the cone half-angle in radians.
func WithAngle(angle float32) SpotLightOption {
	return func(p *spotLightParams) {
		p.angle = angle
	}
}

func WithPenumbra(penumbra float32) SpotLightOption {
	return func(p *spotLightParams) {
		p.penumbra = penumbra
	}
}

func WithDecay(decay float32) SpotLightOption {
	return func(p *spotLightParams) {
		p.decay = decay
	}
}

// WithTargetPosition moves the aim point. A target away from the origin
// has to be added to the scene by the caller when its parent is transformed.
func WithTargetPosition(x, y, z float32) SpotLightOption {
	return func(p *spotLightParams) {
		p.targetPosition = mgl32.Vec3{x, y, z}
	}
}

func WithCastShadow(castShadow bool) SpotLightOption {
	return func(p *spotLightParams) {
		p.castShadow = castShadow
	}
}

// WithMapSize sets the shadow map resolution. Powers of two are expected.
func WithMapSize(width, height int32) SpotLightOption {
	return func(p *spotLightParams) {
		p.mapSize = [2]int32{width, height}
	}
}

// WithShadowCamera sets the shadow camera's near and far planes.
func WithShadowCamera(near, far float32) SpotLightOption {
	return func(p *spotLightParams) {
		p.near = near
		p.far = far
	}
}

// NewSpotLight returns a shadow-casting spot light configured for the flood
// light rig. Values are applied as given, without validation.
func NewSpotLight(opts ...SpotLightOption) *renderer.SpotLight {
	p := defaultSpotLightParams()
	for _, opt := range opts {
		opt(&p)
	}

	light := renderer.NewSpotLight()
	light.Color.SetHex(p.color)
	light.Intensity = p.intensity
	light.Angle = p.angle
	light.Penumbra = p.penumbra
	light.Decay = p.decay
	light.Distance = p.distance

	light.CastShadow = p.castShadow
	light.Shadow.MapSize = p.mapSize
	light.Shadow.Camera.Near = p.near
	light.Shadow.Camera.Far = p.far
	light.Shadow.Camera.UpdateProjectionMatrix()

	light.Target.Position = p.targetPosition
	return light
}
