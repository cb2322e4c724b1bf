package tuning

import (
	"Floodlight/internal/renderer"

	"github.com/inkyblackness/imgui-go/v4"
)

type slider struct {
	label  string
	rng    Range
	format string
	value  func(o *Options) *float32
	set    func(c *Controller, v float32)
}

var sliders = []slider{
	{"Height", HeightRange, "%.1f", func(o *Options) *float32 { return &o.Height }, (*Controller).SetHeight},
	{"Radius", RadiusRange, "%.1f", func(o *Options) *float32 { return &o.Radius }, (*Controller).SetRadius},
	{"Angle", AngleRange, "%.3f", func(o *Options) *float32 { return &o.Angle }, (*Controller).SetAngle},
	{"Penumbra", PenumbraRange, "%.2f", func(o *Options) *float32 { return &o.Penumbra }, (*Controller).SetPenumbra},
	{"Decay", DecayRange, "%.2f", func(o *Options) *float32 { return &o.Decay }, (*Controller).SetDecay},
	{"Distance", DistanceRange, "%.2f", func(o *Options) *float32 { return &o.Distance }, (*Controller).SetDistance},
	{"Intensity", IntensityRange, "%.0f", func(o *Options) *float32 { return &o.Intensity }, (*Controller).SetIntensity},
}

// Panel is the imgui window over a Controller. Draw must run between
// imgui.NewFrame and imgui.Render.
type Panel struct {
	Controller *Controller
	Visible    bool
}

func NewPanel(c *Controller) *Panel {
	return &Panel{Controller: c, Visible: true}
}

func (p *Panel) Draw() {
	if !p.Visible {
		return
	}
	c := p.Controller

	imgui.SetNextWindowPosV(imgui.Vec2{X: 10, Y: 10}, imgui.ConditionFirstUseEver, imgui.Vec2{})
	imgui.SetNextWindowSizeV(imgui.Vec2{X: 320, Y: 0}, imgui.ConditionFirstUseEver)
	if imgui.BeginV("Floodlight", &p.Visible, imgui.WindowFlagsAlwaysAutoResize) {
		if rend := c.Renderer; rend != nil {
			exposure := rend.ToneMappingExposure
			if imgui.SliderFloatV("ToneMappingExposure", &exposure, ExposureRange.Min, ExposureRange.Max, "%.2f", 0) {
				c.SetExposure(ExposureRange.Snap(exposure))
			}
			p.drawToneMappingCombo(rend.ToneMapping)
			imgui.Separator()
		}

		for _, s := range sliders {
			v := *s.value(&c.Options)
			if imgui.SliderFloatV(s.label, &v, s.rng.Min, s.rng.Max, s.format, 0) {
				s.set(c, s.rng.Snap(v))
			}
		}
	}
	imgui.End()
}

func (p *Panel) drawToneMappingCombo(current renderer.ToneMapping) {
	if !imgui.BeginCombo("toneMapping", current.String()) {
		return
	}
	for i, name := range renderer.ToneMappingNames {
		tm := renderer.ToneMapping(i)
		if imgui.SelectableV(name, tm == current, 0, imgui.Vec2{}) && tm != current {
			p.Controller.SetToneMapping(tm)
		}
	}
	imgui.EndCombo()
}
