package tuning

import (
	"math"

	"Floodlight/internal/lighting"
	"Floodlight/internal/logger"
	"Floodlight/internal/renderer"

	"go.uber.org/zap"
)

// ringOffsets place the lights on a circle 120 degrees apart, the first one
// straight behind the origin.
var ringOffsets = [3][2]float32{
	{0, -1},
	{float32(math.Sqrt(3) / 2), 0.5},
	{-float32(math.Sqrt(3) / 2), 0.5},
}

// Controller writes Options to every light and re-derives everything that
// depends on the lights after each change.
type Controller struct {
	Options Options

	Lights        []*renderer.SpotLight
	Helpers       []*lighting.SpotLightHelper
	LineHelpers   []*lighting.LightConeLines
	CameraHelpers []*lighting.ShadowCameraHelper

	// Renderer is only needed for the tone mapping controls.
	Renderer *renderer.OpenGLRenderer
}

func NewController(lights []*renderer.SpotLight) *Controller {
	return &Controller{Options: DefaultOptions(), Lights: lights}
}

// Apply runs every setter in panel order.
func (c *Controller) Apply(o Options) {
	c.SetHeight(o.Height)
	c.SetRadius(o.Radius)
	c.SetAngle(o.Angle)
	c.SetPenumbra(o.Penumbra)
	c.SetDecay(o.Decay)
	c.SetDistance(o.Distance)
	c.SetIntensity(o.Intensity)
}

func (c *Controller) SetHeight(h float32) {
	c.Options.Height = h
	for _, l := range c.Lights {
		l.Position[1] = h
	}
	c.Refresh()
}

// SetRadius spreads the lights on a ring of radius r around the Y axis.
func (c *Controller) SetRadius(r float32) {
	c.Options.Radius = r
	for i, l := range c.Lights {
		offset := ringOffsets[i%len(ringOffsets)]
		l.Position[0] = offset[0] * r
		l.Position[2] = offset[1] * r
	}
	c.Refresh()
}

func (c *Controller) SetAngle(a float32) {
	c.Options.Angle = a
	for _, l := range c.Lights {
		l.Angle = a
	}
	c.Refresh()
}

func (c *Controller) SetPenumbra(p float32) {
	c.Options.Penumbra = p
	for _, l := range c.Lights {
		l.Penumbra = p
	}
	c.Refresh()
}

func (c *Controller) SetDecay(d float32) {
	c.Options.Decay = d
	for _, l := range c.Lights {
		l.Decay = d
	}
	c.Refresh()
}

func (c *Controller) SetDistance(d float32) {
	c.Options.Distance = d
	for _, l := range c.Lights {
		l.Distance = d
	}
	c.Refresh()
}

func (c *Controller) SetIntensity(i float32) {
	c.Options.Intensity = i
	for _, l := range c.Lights {
		l.Intensity = i
	}
	c.Refresh()
}

// Refresh updates the cone helpers, the line helpers, the shadow cameras and
// the shadow camera helpers, in that order.
func (c *Controller) Refresh() {
	for _, h := range c.Helpers {
		h.Update()
	}
	for _, h := range c.LineHelpers {
		h.Update()
	}
	for _, l := range c.Lights {
		l.Shadow.UpdateMatrices(l)
		l.Shadow.Camera.UpdateProjectionMatrix()
	}
	for _, h := range c.CameraHelpers {
		h.Update()
	}
}

func (c *Controller) SetExposure(exposure float32) {
	if c.Renderer == nil {
		return
	}
	c.Renderer.ToneMappingExposure = exposure
}

// SetToneMapping switches the operator. It is a shader uniform, so the next
// frame picks it up.
func (c *Controller) SetToneMapping(tm renderer.ToneMapping) {
	if c.Renderer == nil {
		return
	}
	c.Renderer.ToneMapping = tm
	logger.Log.Debug("Tone mapping changed", zap.Stringer("toneMapping", tm))
}
