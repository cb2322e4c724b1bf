package tuning

import (
	"math"
	"testing"

	"Floodlight/internal/lighting"
	"Floodlight/internal/renderer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rig struct {
	controller *Controller
	lights     []*renderer.SpotLight
}

func newRig() rig {
	var r rig
	for i := 0; i < 3; i++ {
		r.lights = append(r.lights, lighting.NewSpotLight())
	}
	c := NewController(r.lights)
	for _, l := range r.lights {
		c.Helpers = append(c.Helpers, lighting.NewSpotLightHelper(l, lighting.WithHelperOpacity(0.01)))
		c.LineHelpers = append(c.LineHelpers, lighting.NewLightConeLines(l))
		c.CameraHelpers = append(c.CameraHelpers, lighting.NewShadowCameraHelper(l.Shadow.Camera))
	}
	r.controller = c
	return r
}

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	assert.Equal(t, float32(12), o.Height)
	assert.Equal(t, float32(4), o.Radius)
	assert.Equal(t, float32(0.25), o.Angle)
	assert.Equal(t, float32(1), o.Penumbra)
	assert.Equal(t, float32(0), o.Decay)
	assert.Equal(t, float32(50), o.Distance)
	assert.Equal(t, float32(10), o.Intensity)
}

func TestSettersReachEveryLight(t *testing.T) {
	r := newRig()
	c := r.controller

	c.SetHeight(7)
	c.SetAngle(0.4)
	c.SetPenumbra(0.3)
	c.SetDecay(2)
	c.SetDistance(20)
	c.SetIntensity(42)

	for _, l := range r.lights {
		assert.Equal(t, float32(7), l.Position[1])
		assert.Equal(t, float32(0.4), l.Angle)
		assert.Equal(t, float32(0.3), l.Penumbra)
		assert.Equal(t, float32(2), l.Decay)
		assert.Equal(t, float32(20), l.Distance)
		assert.Equal(t, float32(42), l.Intensity)
	}
	assert.Equal(t, Options{Height: 7, Radius: 4, Angle: 0.4, Penumbra: 0.3, Decay: 2, Distance: 20, Intensity: 42}, c.Options)
}

func TestSetRadiusPlacesLightsOnRing(t *testing.T) {
	r := newRig()
	r.controller.SetHeight(12)
	r.controller.SetRadius(4)

	half := float32(math.Sqrt(3) / 2 * 4)
	assert.InDelta(t, 0, r.lights[0].Position[0], 1e-6)
	assert.InDelta(t, -4, r.lights[0].Position[2], 1e-6)
	assert.InDelta(t, half, r.lights[1].Position[0], 1e-5)
	assert.InDelta(t, 2, r.lights[1].Position[2], 1e-6)
	assert.InDelta(t, -half, r.lights[2].Position[0], 1e-5)
	assert.InDelta(t, 2, r.lights[2].Position[2], 1e-6)

	for _, l := range r.lights {
		assert.Equal(t, float32(12), l.Position[1], "radius keeps height")
	}
}

func TestRefreshUpdatesHelpersAndShadowCameras(t *testing.T) {
	r := newRig()
	c := r.controller
	c.Apply(DefaultOptions())

	c.SetDistance(10)
	c.SetAngle(0.5)
	width := float32(10 * math.Tan(0.5))
	for i, h := range c.Helpers {
		assert.InDelta(t, width, h.Cone.Scale[0], 1e-4)
		assert.InDelta(t, 10, h.Cone.Scale[2], 1e-5)
		assert.Equal(t, r.lights[i].MatrixWorld, h.Matrix)
		assert.InDelta(t, 0.01, h.Cone.Material.Opacity, 1e-6)
	}
	for _, h := range c.LineHelpers {
		assert.InDelta(t, width, h.Cone.Scale[0], 1e-4)
	}
	for i, l := range r.lights {
		assert.InDelta(t, 2*0.5*180/math.Pi, l.Shadow.Camera.Fov, 1e-3)
		assert.Equal(t, float32(10), l.Shadow.Camera.Far)
		assert.Equal(t, l.Shadow.Camera.MatrixWorld, c.CameraHelpers[i].Matrix)
	}

	// Moving the lights moves the shadow cameras with them.
	c.SetHeight(20)
	for _, l := range r.lights {
		assert.InDelta(t, 20, l.Shadow.Camera.Position[1], 1e-5)
	}
}

func TestApplyMatchesIndividualSetters(t *testing.T) {
	a, b := newRig(), newRig()
	o := Options{Height: 3, Radius: 9, Angle: 0.2, Penumbra: 0.5, Decay: 1, Distance: 30, Intensity: 5}

	a.controller.Apply(o)
	b.controller.SetIntensity(o.Intensity)
	b.controller.SetDistance(o.Distance)
	b.controller.SetDecay(o.Decay)
	b.controller.SetPenumbra(o.Penumbra)
	b.controller.SetAngle(o.Angle)
	b.controller.SetRadius(o.Radius)
	b.controller.SetHeight(o.Height)

	for i := range a.lights {
		assert.Equal(t, a.lights[i].Position, b.lights[i].Position)
		assert.Equal(t, a.lights[i].Angle, b.lights[i].Angle)
	}
	assert.Equal(t, o, a.controller.Options)
}

func TestToneMappingControls(t *testing.T) {
	r := newRig()
	c := r.controller

	// Without a renderer the controls are inert.
	c.SetExposure(2)
	c.SetToneMapping(renderer.ReinhardToneMapping)

	rend := renderer.NewOpenGLRenderer(800, 600)
	c.Renderer = rend

	c.SetExposure(2.5)
	assert.Equal(t, float32(2.5), rend.ToneMappingExposure)

	c.SetToneMapping(renderer.CineonToneMapping)
	assert.Equal(t, renderer.CineonToneMapping, rend.ToneMapping)
}

func TestRangeSnap(t *testing.T) {
	assert.InDelta(t, 12.3, HeightRange.Snap(12.34), 1e-5)
	assert.Equal(t, float32(0), HeightRange.Snap(-1))
	assert.Equal(t, float32(100), HeightRange.Snap(250))
	assert.Equal(t, float32(43), IntensityRange.Snap(42.6))
	assert.InDelta(t, 3*math.Pi/200, AngleRange.Snap(0.05), 1e-6)
	assert.InDelta(t, math.Pi/2, AngleRange.Snap(10), 1e-6)

	free := Range{Min: 0, Max: 1}
	assert.Equal(t, float32(0.123), free.Snap(0.123))
}

func TestSliderTable(t *testing.T) {
	require.Len(t, sliders, 7)
	expected := map[string]Range{
		"Height":    {0, 100, 0.1},
		"Radius":    {0, 50, 0.1},
		"Angle":     {0, math.Pi / 2, math.Pi / 200},
		"Penumbra":  {0, 1, 0.01},
		"Decay":     {0, 10, 0.01},
		"Distance":  {0, 50, 0.01},
		"Intensity": {0, 100, 1},
	}
	r := newRig()
	for _, s := range sliders {
		rng, ok := expected[s.label]
		require.True(t, ok, s.label)
		assert.Equal(t, rng, s.rng, s.label)

		// Each row edits the option it is named after.
		s.set(r.controller, rng.Max)
		assert.Equal(t, rng.Max, *s.value(&r.controller.Options), s.label)
	}
}
