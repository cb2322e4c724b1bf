package renderer

import (
	"Floodlight/internal/logger"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"
)

// =============================================================
//
//	Shaders
//
// =============================================================
type Shader struct {
	*UniformCache

	Name           string
	vertexSource   string
	fragmentSource string
	program        uint32
	isCompiled     bool
}

func NewShader(name, vertexSource, fragmentSource string) *Shader {
	return &Shader{Name: name, vertexSource: vertexSource, fragmentSource: fragmentSource}
}

func (shader *Shader) IsCompiled() bool {
	return shader.isCompiled
}

func (shader *Shader) Program() uint32 {
	return shader.program
}

// Compile builds the program once; later calls are no-ops.
func (shader *Shader) Compile() error {
	if shader.isCompiled {
		return nil
	}
	vertexShader, err := GenShader(shader.vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return fmt.Errorf("%s vertex shader: %w", shader.Name, err)
	}
	fragmentShader, err := GenShader(shader.fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return fmt.Errorf("%s fragment shader: %w", shader.Name, err)
	}
	program, err := GenShaderProgram(vertexShader, fragmentShader)
	if err != nil {
		return fmt.Errorf("%s program: %w", shader.Name, err)
	}

	shader.program = program
	shader.UniformCache = NewUniformCache(program)
	shader.isCompiled = true
	logger.Log.Debug("Shader compiled", zap.String("name", shader.Name), zap.Uint32("program", program))
	return nil
}

func (shader *Shader) Use() {
	gl.UseProgram(shader.program)
}

// SetTexture binds texture to unit and points the sampler uniform at it.
func (shader *Shader) SetTexture(name string, unit int32, texture uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, texture)
	shader.SetInt(name, unit)
}

func (shader *Shader) Delete() {
	if shader.isCompiled {
		gl.DeleteProgram(shader.program)
		shader.program = 0
		shader.UniformCache = nil
		shader.isCompiled = false
	}
}

func GenShader(source string, shaderType uint32) (uint32, error) {
	if !strings.HasSuffix(source, "\x00") {
		source += "\x00"
	}
	shader := gl.CreateShader(shaderType)
	cSources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, cSources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)

		logger.Log.Error("Failed to compile", zap.Uint32("shader type", shaderType), zap.String("log", log))
		return 0, fmt.Errorf("compile failed: %s", strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

func GenShaderProgram(vertexShader, fragmentShader uint32) (uint32, error) {
	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	gl.DetachShader(program, vertexShader)
	gl.DeleteShader(vertexShader)
	gl.DetachShader(program, fragmentShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)

		logger.Log.Error("Failed to link program", zap.String("log", log))
		return 0, fmt.Errorf("link failed: %s", strings.TrimRight(log, "\x00"))
	}
	return program, nil
}

var meshVertexShaderSource = `#version 410 core

layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec2 inTexCoord;
layout(location = 2) in vec3 inNormal;

uniform mat4 model;
uniform mat3 normalMatrix;
uniform mat4 view;
uniform mat4 viewProjection;

out vec3 vWorldPosition;
out vec3 vNormal;
out vec2 vTexCoord;
out float vFogDepth;

void main() {
    vec4 worldPosition = model * vec4(inPosition, 1.0);
    vWorldPosition = worldPosition.xyz;
    vNormal = normalMatrix * inNormal;
    vTexCoord = inTexCoord;
    vFogDepth = -(view * worldPosition).z;
    gl_Position = viewProjection * worldPosition;
}
`

var meshFragmentShaderSource = `#version 410 core

#define PI 3.141592653589793
#define RECIPROCAL_PI 0.3183098861837907
#define MAX_SPOT_LIGHTS 4

in vec3 vWorldPosition;
in vec3 vNormal;
in vec2 vTexCoord;
in float vFogDepth;

struct SpotLight {
    vec3 position;
    vec3 direction;
    vec3 color;
    float distance;
    float decay;
    float coneCos;
    float penumbraCos;
    bool castShadow;
    float shadowBias;
    vec2 shadowMapSize;
    mat4 shadowMatrix;
};

uniform bool lit;
uniform bool receiveShadow;
uniform vec3 diffuse;
uniform vec3 emissive;
uniform float opacity;
uniform float metalness;
uniform float roughness;

uniform vec3 cameraPosition;
uniform vec3 ambientLightColor;
uniform int numSpotLights;
uniform SpotLight spotLights[MAX_SPOT_LIGHTS];
uniform sampler2DShadow spotShadowMap[MAX_SPOT_LIGHTS];

uniform bool fogEnabled;
uniform vec3 fogColor;
uniform float fogDensity;

uniform int toneMapping;
uniform float toneMappingExposure;
uniform bool outputSRGB;

out vec4 FragColor;

float pow2(float x) { return x * x; }
float pow4(float x) { float x2 = x * x; return x2 * x2; }
vec3 saturate3(vec3 v) { return clamp(v, 0.0, 1.0); }

float getDistanceAttenuation(float lightDistance, float cutoffDistance, float decayExponent) {
    float distanceFalloff = 1.0 / max(pow(lightDistance, decayExponent), 0.01);
    if (cutoffDistance > 0.0) {
        distanceFalloff *= pow2(clamp(1.0 - pow4(lightDistance / cutoffDistance), 0.0, 1.0));
    }
    return distanceFalloff;
}

vec3 F_Schlick(vec3 f0, float dotVH) {
    float fresnel = exp2((-5.55473 * dotVH - 6.98316) * dotVH);
    return f0 * (1.0 - fresnel) + fresnel;
}

float V_GGX_SmithCorrelated(float alpha, float dotNL, float dotNV) {
    float a2 = pow2(alpha);
    float gv = dotNL * sqrt(a2 + (1.0 - a2) * pow2(dotNV));
    float gvl = dotNV * sqrt(a2 + (1.0 - a2) * pow2(dotNL));
    return 0.5 / max(gv + gvl, 1e-6);
}

float D_GGX(float alpha, float dotNH) {
    float a2 = pow2(alpha);
    float denom = pow2(dotNH) * (a2 - 1.0) + 1.0;
    return RECIPROCAL_PI * a2 / pow2(denom);
}

vec3 BRDF_GGX(vec3 lightDir, vec3 viewDir, vec3 normal, vec3 f0, float rough) {
    float alpha = pow2(rough);
    vec3 halfDir = normalize(lightDir + viewDir);
    float dotNL = clamp(dot(normal, lightDir), 0.0, 1.0);
    float dotNV = clamp(dot(normal, viewDir), 0.0, 1.0);
    float dotNH = clamp(dot(normal, halfDir), 0.0, 1.0);
    float dotVH = clamp(dot(viewDir, halfDir), 0.0, 1.0);
    return F_Schlick(f0, dotVH) * V_GGX_SmithCorrelated(alpha, dotNL, dotNV) * D_GGX(alpha, dotNH);
}

float spotShadow(int i, vec4 shadowCoord) {
    vec3 coord = shadowCoord.xyz / shadowCoord.w;
    if (coord.x < 0.0 || coord.x > 1.0 || coord.y < 0.0 || coord.y > 1.0 || coord.z > 1.0) {
        return 1.0;
    }
    coord.z += spotLights[i].shadowBias;
    vec2 texel = 1.0 / spotLights[i].shadowMapSize;
    float shadow = 0.0;
    for (int x = -1; x <= 1; x++) {
        for (int y = -1; y <= 1; y++) {
            shadow += texture(spotShadowMap[i], vec3(coord.xy + vec2(x, y) * texel, coord.z));
        }
    }
    return shadow / 9.0;
}

vec3 RRTAndODTFit(vec3 v) {
    vec3 a = v * (v + 0.0245786) - 0.000090537;
    vec3 b = v * (0.983729 * v + 0.4329510) + 0.238081;
    return a / b;
}

vec3 applyToneMapping(vec3 color) {
    if (toneMapping == 1) {
        return saturate3(toneMappingExposure * color);
    }
    if (toneMapping == 2) {
        color *= toneMappingExposure;
        return saturate3(color / (vec3(1.0) + color));
    }
    if (toneMapping == 3) {
        color *= toneMappingExposure;
        color = max(vec3(0.0), color - 0.004);
        return pow((color * (6.2 * color + 0.5)) / (color * (6.2 * color + 1.7) + 0.06), vec3(2.2));
    }
    if (toneMapping == 4) {
        const mat3 ACESInputMat = mat3(
            vec3(0.59719, 0.07600, 0.02840),
            vec3(0.35458, 0.90834, 0.13383),
            vec3(0.04823, 0.01566, 0.83777)
        );
        const mat3 ACESOutputMat = mat3(
            vec3( 1.60475, -0.10208, -0.00327),
            vec3(-0.53108,  1.10813, -0.07276),
            vec3(-0.07367, -0.00605,  1.07602)
        );
        color *= toneMappingExposure / 0.6;
        color = ACESInputMat * color;
        color = RRTAndODTFit(color);
        color = ACESOutputMat * color;
        return saturate3(color);
    }
    return color;
}

vec3 linearToSRGB(vec3 value) {
    vec3 lo = value * 12.92;
    vec3 hi = pow(value, vec3(0.41666)) * 1.055 - vec3(0.055);
    return mix(hi, lo, vec3(lessThanEqual(value, vec3(0.0031308))));
}

void main() {
    vec3 outgoing = diffuse;

    if (lit) {
        vec3 normal = normalize(vNormal);
        if (!gl_FrontFacing) {
            normal = -normal;
        }
        vec3 viewDir = normalize(cameraPosition - vWorldPosition);

        vec3 diffuseColor = diffuse * (1.0 - metalness);
        vec3 specularColor = mix(vec3(0.04), diffuse, metalness);
        float rough = clamp(roughness, 0.0525, 1.0);

        vec3 directDiffuse = vec3(0.0);
        vec3 directSpecular = vec3(0.0);

        for (int i = 0; i < MAX_SPOT_LIGHTS; i++) {
            if (i >= numSpotLights) {
                break;
            }
            vec3 lVector = spotLights[i].position - vWorldPosition;
            vec3 lightDir = normalize(lVector);
            float angleCos = dot(lightDir, spotLights[i].direction);
            float spotAttenuation = smoothstep(spotLights[i].coneCos, spotLights[i].penumbraCos, angleCos);
            if (spotAttenuation <= 0.0) {
                continue;
            }
            float lightDistance = length(lVector);
            vec3 lightColor = spotLights[i].color * spotAttenuation *
                getDistanceAttenuation(lightDistance, spotLights[i].distance, spotLights[i].decay);

            if (receiveShadow && spotLights[i].castShadow) {
                lightColor *= spotShadow(i, spotLights[i].shadowMatrix * vec4(vWorldPosition, 1.0));
            }

            float dotNL = clamp(dot(normal, lightDir), 0.0, 1.0);
            vec3 irradiance = dotNL * lightColor;
            directDiffuse += irradiance * RECIPROCAL_PI * diffuseColor;
            directSpecular += irradiance * BRDF_GGX(lightDir, viewDir, normal, specularColor, rough);
        }

        vec3 indirectDiffuse = ambientLightColor * RECIPROCAL_PI * diffuseColor;
        outgoing = directDiffuse + directSpecular + indirectDiffuse + emissive;
    }

    vec4 color = vec4(outgoing, opacity);
    color.rgb = applyToneMapping(color.rgb);
    if (outputSRGB) {
        color.rgb = linearToSRGB(color.rgb);
    }
    if (fogEnabled) {
        float fogFactor = 1.0 - exp(-fogDensity * fogDensity * vFogDepth * vFogDepth);
        color.rgb = mix(color.rgb, fogColor, clamp(fogFactor, 0.0, 1.0));
    }
    FragColor = color;
}
`

var depthVertexShaderSource = `#version 410 core

layout(location = 0) in vec3 inPosition;

uniform mat4 model;
uniform mat4 lightViewProjection;

void main() {
    gl_Position = lightViewProjection * model * vec4(inPosition, 1.0);
}
`

var depthFragmentShaderSource = `#version 410 core

void main() {}
`

// FullScreenVertexShaderSource is shared by every post-processing pass. It
// expects the quad from NewFullScreenQuad.
var FullScreenVertexShaderSource = `#version 410 core

layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec2 inTexCoord;

out vec2 vUv;

void main() {
    vUv = inTexCoord;
    gl_Position = vec4(inPosition.xy, 0.0, 1.0);
}
`

var copyFragmentShaderSource = `#version 410 core

in vec2 vUv;

uniform sampler2D tDiffuse;
uniform float opacity;

out vec4 FragColor;

void main() {
    FragColor = opacity * texture(tDiffuse, vUv);
}
`

// NewCopyShader returns a program that copies tDiffuse scaled by opacity.
func NewCopyShader() *Shader {
	return NewShader("copy", FullScreenVertexShaderSource, copyFragmentShaderSource)
}

func newMeshShader() *Shader {
	return NewShader("mesh", meshVertexShaderSource, meshFragmentShaderSource)
}

func newDepthShader() *Shader {
	return NewShader("depth", depthVertexShaderSource, depthFragmentShaderSource)
}
