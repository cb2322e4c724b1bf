package postprocessing

import (
	"math"

	"Floodlight/internal/logger"
	"Floodlight/internal/renderer"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

const bloomMips = 5

var (
	bloomKernelSizes = [bloomMips]int32{3, 5, 7, 9, 11}
	bloomFactors     = []float32{1.0, 0.8, 0.6, 0.4, 0.2}
)

// UnrealBloomPass blooms everything brighter than Threshold: a luminosity
// high-pass, separable Gaussian blurs over five halving mips, a weighted
// composite, then an additive blend back onto the input.
type UnrealBloomPass struct {
	PassBase

	Strength  float32
	Radius    float32
	Threshold float32
	TintColor mgl32.Vec3

	resolution [2]int32

	renderTargetBright *renderer.RenderTarget
	horizontal         [bloomMips]*renderer.RenderTarget
	vertical           [bloomMips]*renderer.RenderTarget

	highPassShader  *renderer.Shader
	blurShader      *renderer.Shader
	compositeShader *renderer.Shader
	copyShader      *renderer.Shader

	quad   *renderer.FullScreenQuad
	failed bool
}

func NewUnrealBloomPass(width, height int32, strength, radius, threshold float32) *UnrealBloomPass {
	p := &UnrealBloomPass{
		PassBase:        newPassBase(false, false),
		Strength:        strength,
		Radius:          radius,
		Threshold:       threshold,
		TintColor:       mgl32.Vec3{1, 1, 1},
		highPassShader:  renderer.NewShader("luminosityHighPass", renderer.FullScreenVertexShaderSource, luminosityHighPassFragmentSource),
		blurShader:      renderer.NewShader("separableBlur", renderer.FullScreenVertexShaderSource, separableBlurFragmentSource),
		compositeShader: renderer.NewShader("bloomComposite", renderer.FullScreenVertexShaderSource, bloomCompositeFragmentSource),
		copyShader:      renderer.NewCopyShader(),
		quad:            renderer.NewFullScreenQuad(),
	}
	p.renderTargetBright = renderer.NewRenderTarget(1, 1)
	for i := 0; i < bloomMips; i++ {
		p.horizontal[i] = renderer.NewRenderTarget(1, 1)
		p.vertical[i] = renderer.NewRenderTarget(1, 1)
	}
	p.SetSize(width, height)
	return p
}

func roundHalf(v int32) int32 {
	return int32(math.Floor(float64(v)/2 + 0.5))
}

// MipSizes returns the size of each blur level for a given input size. The
// first level is half the input.
func MipSizes(width, height int32) [bloomMips][2]int32 {
	var sizes [bloomMips][2]int32
	resx, resy := roundHalf(width), roundHalf(height)
	for i := 0; i < bloomMips; i++ {
		sizes[i] = [2]int32{resx, resy}
		resx, resy = roundHalf(resx), roundHalf(resy)
	}
	return sizes
}

// GaussianCoefficients returns the one-sided kernel weights used by a blur of
// the given radius, with sigma equal to the radius.
func GaussianCoefficients(kernelRadius int32) []float32 {
	sigma := float64(kernelRadius)
	coefficients := make([]float32, kernelRadius)
	for i := range coefficients {
		x := float64(i)
		coefficients[i] = float32(0.39894 * math.Exp(-0.5*x*x/(sigma*sigma)) / sigma)
	}
	return coefficients
}

func (p *UnrealBloomPass) SetSize(width, height int32) {
	p.resolution = [2]int32{width, height}
	sizes := MipSizes(width, height)
	p.renderTargetBright.SetSize(sizes[0][0], sizes[0][1])
	for i, s := range sizes {
		p.horizontal[i].SetSize(s[0], s[1])
		p.vertical[i].SetSize(s[0], s[1])
	}
}

// Resolution is the input size last given to SetSize.
func (p *UnrealBloomPass) Resolution() (int32, int32) {
	return p.resolution[0], p.resolution[1]
}

func (p *UnrealBloomPass) compile() error {
	for _, s := range []*renderer.Shader{p.highPassShader, p.blurShader, p.compositeShader, p.copyShader} {
		if err := s.Compile(); err != nil {
			return err
		}
	}
	return nil
}

func (p *UnrealBloomPass) drawInto(r renderer.Render, target *renderer.RenderTarget) {
	r.SetRenderTarget(target)
	r.Clear()
	p.quad.Render()
}

func (p *UnrealBloomPass) Render(r renderer.Render, writeBuffer, readBuffer *renderer.RenderTarget, delta float32) {
	if p.failed {
		return
	}
	if err := p.compile(); err != nil {
		logger.Log.Error("Bloom pass disabled", zap.Error(err))
		p.failed = true
		return
	}

	oldAutoClear := r.AutoClear()
	r.SetAutoClear(false)
	defer r.SetAutoClear(oldAutoClear)

	// Allocate everything up front so no target is created while inputs are
	// bound.
	input := readBuffer.Texture()
	p.renderTargetBright.Texture()
	for i := 0; i < bloomMips; i++ {
		p.horizontal[i].Texture()
		p.vertical[i].Texture()
	}
	gl.Disable(gl.BLEND)

	if p.renderToScreen {
		r.SetRenderTarget(nil)
		p.copyShader.Use()
		p.copyShader.SetTexture("tDiffuse", 0, input)
		p.copyShader.SetFloat("opacity", 1)
		p.quad.Render()
	}

	// 1. Extract bright areas
	p.highPassShader.Use()
	p.highPassShader.SetTexture("tDiffuse", 0, input)
	p.highPassShader.SetFloat("luminosityThreshold", p.Threshold)
	p.highPassShader.SetFloat("smoothWidth", 0.01)
	p.highPassShader.SetVec3("defaultColor", 0, 0, 0)
	p.highPassShader.SetFloat("defaultOpacity", 0)
	p.drawInto(r, p.renderTargetBright)

	// 2. Blur each mip, horizontally then vertically
	p.blurShader.Use()
	source := p.renderTargetBright
	for i := 0; i < bloomMips; i++ {
		kernel := bloomKernelSizes[i]
		p.blurShader.SetInt("kernelRadius", kernel)
		p.blurShader.SetFloats("gaussianCoefficients", GaussianCoefficients(kernel))
		p.blurShader.SetVec2("texSize", float32(p.horizontal[i].Width), float32(p.horizontal[i].Height))

		p.blurShader.SetTexture("colorTexture", 0, source.Texture())
		p.blurShader.SetVec2("direction", 1, 0)
		p.drawInto(r, p.horizontal[i])

		p.blurShader.SetTexture("colorTexture", 0, p.horizontal[i].Texture())
		p.blurShader.SetVec2("direction", 0, 1)
		p.drawInto(r, p.vertical[i])

		source = p.vertical[i]
	}

	// 3. Composite the mips
	p.compositeShader.Use()
	for i := 0; i < bloomMips; i++ {
		p.compositeShader.SetTexture(blurTextureNames[i], int32(i), p.vertical[i].Texture())
	}
	p.compositeShader.SetFloat("bloomStrength", p.Strength)
	p.compositeShader.SetFloat("bloomRadius", p.Radius)
	p.compositeShader.SetFloats("bloomFactors", bloomFactors)
	p.compositeShader.SetVec3("bloomTintColor", p.TintColor[0], p.TintColor[1], p.TintColor[2])
	p.drawInto(r, p.horizontal[0])

	// 4. Blend additively over the input
	bloom := p.horizontal[0].Texture()
	if p.renderToScreen {
		r.SetRenderTarget(nil)
	} else {
		r.SetRenderTarget(readBuffer)
	}
	p.copyShader.Use()
	p.copyShader.SetTexture("tDiffuse", 0, bloom)
	p.copyShader.SetFloat("opacity", 1)
	gl.Enable(gl.BLEND)
	gl.BlendEquation(gl.FUNC_ADD)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
	p.quad.Render()
	gl.Disable(gl.BLEND)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.UseProgram(0)
}

func (p *UnrealBloomPass) Dispose() {
	p.renderTargetBright.Dispose()
	for i := 0; i < bloomMips; i++ {
		p.horizontal[i].Dispose()
		p.vertical[i].Dispose()
	}
	for _, s := range []*renderer.Shader{p.highPassShader, p.blurShader, p.compositeShader, p.copyShader} {
		s.Delete()
	}
	p.quad.Dispose()
}

var blurTextureNames = [bloomMips]string{"blurTexture1", "blurTexture2", "blurTexture3", "blurTexture4", "blurTexture5"}

var luminosityHighPassFragmentSource = `#version 410 core

in vec2 vUv;

uniform sampler2D tDiffuse;
uniform vec3 defaultColor;
uniform float defaultOpacity;
uniform float luminosityThreshold;
uniform float smoothWidth;

out vec4 FragColor;

void main() {
    vec4 texel = texture(tDiffuse, vUv);
    vec3 luma = vec3(0.299, 0.587, 0.114);
    float v = dot(texel.xyz, luma);
    vec4 outputColor = vec4(defaultColor.rgb, defaultOpacity);
    float alpha = smoothstep(luminosityThreshold, luminosityThreshold + smoothWidth, v);
    FragColor = mix(outputColor, texel, alpha);
}
`

var separableBlurFragmentSource = `#version 410 core

#define MAX_KERNEL_RADIUS 11

in vec2 vUv;

uniform sampler2D colorTexture;
uniform vec2 texSize;
uniform vec2 direction;
uniform int kernelRadius;
uniform float gaussianCoefficients[MAX_KERNEL_RADIUS];

out vec4 FragColor;

void main() {
    vec2 invSize = 1.0 / texSize;
    float weightSum = gaussianCoefficients[0];
    vec3 diffuseSum = texture(colorTexture, vUv).rgb * weightSum;
    for (int i = 1; i < MAX_KERNEL_RADIUS; i++) {
        if (i >= kernelRadius) {
            break;
        }
        float x = float(i);
        float w = gaussianCoefficients[i];
        vec2 uvOffset = direction * invSize * x;
        vec3 sample1 = texture(colorTexture, vUv + uvOffset).rgb;
        vec3 sample2 = texture(colorTexture, vUv - uvOffset).rgb;
        diffuseSum += (sample1 + sample2) * w;
        weightSum += 2.0 * w;
    }
    FragColor = vec4(diffuseSum / weightSum, 1.0);
}
`

var bloomCompositeFragmentSource = `#version 410 core

in vec2 vUv;

uniform sampler2D blurTexture1;
uniform sampler2D blurTexture2;
uniform sampler2D blurTexture3;
uniform sampler2D blurTexture4;
uniform sampler2D blurTexture5;
uniform float bloomStrength;
uniform float bloomRadius;
uniform float bloomFactors[5];
uniform vec3 bloomTintColor;

out vec4 FragColor;

float lerpBloomFactor(const in float factor) {
    float mirrorFactor = 1.2 - factor;
    return mix(factor, mirrorFactor, bloomRadius);
}

void main() {
    vec4 tint = vec4(bloomTintColor, 1.0);
    FragColor = bloomStrength * (
        lerpBloomFactor(bloomFactors[0]) * tint * texture(blurTexture1, vUv) +
        lerpBloomFactor(bloomFactors[1]) * tint * texture(blurTexture2, vUv) +
        lerpBloomFactor(bloomFactors[2]) * tint * texture(blurTexture3, vUv) +
        lerpBloomFactor(bloomFactors[3]) * tint * texture(blurTexture4, vUv) +
        lerpBloomFactor(bloomFactors[4]) * tint * texture(blurTexture5, vUv));
}
`
