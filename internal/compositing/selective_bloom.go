package compositing

import (
	"Floodlight/internal/logger"
	"Floodlight/internal/postprocessing"
	"Floodlight/internal/renderer"

	"github.com/g3n/engine/math32"
	"go.uber.org/zap"
)

// Composer is the part of postprocessing.EffectComposer SelectiveBloom
// drives.
type Composer interface {
	Render(delta float32)
	SetSize(width, height int32)
	SetPixelRatio(ratio float32)
	Dispose()
}

type BloomOptions struct {
	Threshold float32
	Strength  float32
	Radius    float32
}

func DefaultBloomOptions() BloomOptions {
	return BloomOptions{Threshold: 0, Strength: 2, Radius: 0.5}
}

// SelectiveBloom owns the two composers of the frame. The bloom composer
// renders the scene with every non-flood mesh blacked out and blooms it
// off-screen; the final composer renders the scene normally and adds the
// bloom buffer on top, to the screen.
type SelectiveBloom struct {
	Renderer  renderer.Render
	Scene     *renderer.Scene
	Partition *Partition

	bloomComposer Composer
	finalComposer Composer

	renderPass *postprocessing.RenderPass
	bloomPass  *postprocessing.UnrealBloomPass
	mixPass    *postprocessing.ShaderPass

	darkMaterial *renderer.Material
	saved        map[*renderer.Mesh]*renderer.Material
}

func NewSelectiveBloom(r renderer.Render, scene *renderer.Scene, camera *renderer.PerspectiveCamera, partition *Partition, opts BloomOptions) *SelectiveBloom {
	renderPass := postprocessing.NewRenderPass(scene, camera)

	w, h := r.Size()
	bloomPass := postprocessing.NewUnrealBloomPass(w, h, opts.Strength, opts.Radius, opts.Threshold)

	bloomComposer := postprocessing.NewEffectComposer(r)
	bloomComposer.RenderToScreen = false
	bloomComposer.AddPass(renderPass)
	bloomComposer.AddPass(bloomPass)

	mixPass := postprocessing.NewShaderPass(
		renderer.NewShader("bloomMix", renderer.FullScreenVertexShaderSource, mixFragmentSource),
		"baseTexture",
	)
	// Neither bloom composer pass swaps, so its read buffer is fixed.
	mixPass.Inputs = []postprocessing.TextureInput{{Name: "bloomTexture", Target: bloomComposer.ReadBuffer()}}

	finalComposer := postprocessing.NewEffectComposer(r)
	finalComposer.AddPass(renderPass)
	finalComposer.AddPass(mixPass)

	s := newSelectiveBloom(r, scene, partition, bloomComposer, finalComposer)
	s.renderPass = renderPass
	s.bloomPass = bloomPass
	s.mixPass = mixPass
	logger.Log.Info("Selective bloom ready",
		zap.Int32("width", w), zap.Int32("height", h),
		zap.Int("flood", partition.FloodCount()), zap.Int("other", len(partition.Other())))
	return s
}

func newSelectiveBloom(r renderer.Render, scene *renderer.Scene, partition *Partition, bloom, final Composer) *SelectiveBloom {
	dark := renderer.NewBasicMaterial(0x000000)
	dark.Name = "bloomDark"
	return &SelectiveBloom{
		Renderer:      r,
		Scene:         scene,
		Partition:     partition,
		bloomComposer: bloom,
		finalComposer: final,
		darkMaterial:  dark,
		saved:         make(map[*renderer.Mesh]*renderer.Material),
	}
}

// RenderBloom fills the bloom buffer. Materials, fog and background are
// back to their previous values when it returns, even on panic.
func (s *SelectiveBloom) RenderBloom(delta float32) {
	restore := s.darken()
	defer restore()
	s.bloomComposer.Render(delta)
}

// Composite draws the lit scene plus the bloom buffer to the screen.
func (s *SelectiveBloom) Composite(delta float32) {
	s.finalComposer.Render(delta)
}

func (s *SelectiveBloom) darken() func() {
	for _, m := range s.Partition.Other() {
		s.saved[m] = m.Material
		m.Material = s.darkMaterial
	}

	var fogColor math32.Color
	if s.Scene.Fog != nil {
		fogColor = *s.Scene.Fog.Color
		s.Scene.Fog.Color.SetHex(0x000000)
	}
	background := s.Scene.Background
	if background != nil {
		s.Scene.Background = math32.NewColorHex(0x000000)
	}

	return func() {
		for m, material := range s.saved {
			m.Material = material
			delete(s.saved, m)
		}
		if s.Scene.Fog != nil {
			*s.Scene.Fog.Color = fogColor
		}
		s.Scene.Background = background
	}
}

// SetSize resizes both composers; width and height are window sizes. The
// targets follow the renderer's current pixel ratio.
func (s *SelectiveBloom) SetSize(width, height int32) {
	ratio := s.Renderer.PixelRatio()
	for _, c := range []Composer{s.bloomComposer, s.finalComposer} {
		c.SetPixelRatio(ratio)
		c.SetSize(width, height)
	}
}

func (s *SelectiveBloom) Dispose() {
	s.bloomComposer.Dispose()
	s.finalComposer.Dispose()
	if s.renderPass != nil {
		s.renderPass.Dispose()
		s.bloomPass.Dispose()
		s.mixPass.Dispose()
	}
	s.darkMaterial.Dispose()
}

var mixFragmentSource = `#version 410 core

in vec2 vUv;

uniform sampler2D baseTexture;
uniform sampler2D bloomTexture;

out vec4 FragColor;

void main() {
    FragColor = texture(baseTexture, vUv) + vec4(1.0) * texture(bloomTexture, vUv);
}
`
