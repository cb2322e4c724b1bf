package renderer

import (
	"Floodlight/internal/logger"
	"fmt"
	"sort"

	"github.com/g3n/engine/math32"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Texture units 0-3 are left to materials and passes.
const shadowTextureUnit = 4

type spotUniformNames struct {
	position, direction, color         string
	distance, decay, coneCos, penumbra string
	castShadow, shadowBias, shadowSize string
	shadowMatrix, shadowMap            string
}

var spotUniforms [MaxSpotLights]spotUniformNames

func init() {
	for i := range spotUniforms {
		p := fmt.Sprintf("spotLights[%d].", i)
		spotUniforms[i] = spotUniformNames{
			position:     p + "position",
			direction:    p + "direction",
			color:        p + "color",
			distance:     p + "distance",
			decay:        p + "decay",
			coneCos:      p + "coneCos",
			penumbra:     p + "penumbraCos",
			castShadow:   p + "castShadow",
			shadowBias:   p + "shadowBias",
			shadowSize:   p + "shadowMapSize",
			shadowMatrix: p + "shadowMatrix",
			shadowMap:    fmt.Sprintf("spotShadowMap[%d]", i),
		}
	}
}

// OpenGLRenderer is a forward renderer for Scene graphs. Construction does no
// GL work; Init must run on the thread owning the context before the first
// Render.
type OpenGLRenderer struct {
	ToneMapping         ToneMapping
	ToneMappingExposure float32
	OutputSRGB          bool // Encode to sRGB when drawing to the default framebuffer
	ShadowMapEnabled    bool
	FrustumCulling      bool // Skip meshes whose bounding sphere is outside the view
	Wireframe           bool

	autoClear bool

	width, height int32 // Window size in screen coordinates
	pixelRatio    float32

	renderTarget *RenderTarget

	meshShader  *Shader
	depthShader *Shader
	emptyShadow *shadowMap

	info        RenderInfo
	initialized bool
}

func NewOpenGLRenderer(width, height int32) *OpenGLRenderer {
	return &OpenGLRenderer{
		ToneMapping:         NoToneMapping,
		ToneMappingExposure: 1,
		autoClear:           true,
		width:               width,
		height:              height,
		pixelRatio:          1,
		meshShader:          newMeshShader(),
		depthShader:         newDepthShader(),
	}
}

func (rend *OpenGLRenderer) Init() error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("OpenGL initialization failed: %w", err)
	}
	if err := rend.meshShader.Compile(); err != nil {
		return err
	}
	if err := rend.depthShader.Compile(); err != nil {
		return err
	}
	empty, err := newShadowMap(1, 1)
	if err != nil {
		return err
	}
	rend.emptyShadow = empty

	rend.meshShader.Use()
	for i := range spotUniforms {
		rend.meshShader.SetInt(spotUniforms[i].shadowMap, int32(shadowTextureUnit+i))
	}
	gl.UseProgram(0)

	rend.initialized = true
	logger.Log.Info("OpenGL render initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))
	return nil
}

func (rend *OpenGLRenderer) SetSize(width, height int32) {
	rend.width = width
	rend.height = height
}

func (rend *OpenGLRenderer) Size() (int32, int32) {
	return rend.width, rend.height
}

// SetPixelRatio sets the framebuffer to window size ratio (2 on most HiDPI
// displays).
func (rend *OpenGLRenderer) SetPixelRatio(ratio float32) {
	if ratio <= 0 {
		ratio = 1
	}
	rend.pixelRatio = ratio
}

func (rend *OpenGLRenderer) PixelRatio() float32 {
	return rend.pixelRatio
}

func (rend *OpenGLRenderer) DrawingBufferSize() (int32, int32) {
	return int32(float32(rend.width)*rend.pixelRatio + 0.5), int32(float32(rend.height)*rend.pixelRatio + 0.5)
}

// SetRenderTarget redirects drawing; nil means the window. Once initialized
// the target is bound immediately.
func (rend *OpenGLRenderer) SetRenderTarget(target *RenderTarget) {
	rend.renderTarget = target
	if rend.initialized {
		rend.bindTarget()
	}
}

// AutoClear reports whether Render clears the target first. A scene
// background always clears.
func (rend *OpenGLRenderer) AutoClear() bool {
	return rend.autoClear
}

func (rend *OpenGLRenderer) SetAutoClear(autoClear bool) {
	rend.autoClear = autoClear
}

func (rend *OpenGLRenderer) RenderTarget() *RenderTarget {
	return rend.renderTarget
}

func (rend *OpenGLRenderer) Info() RenderInfo {
	return rend.info
}

// bindTarget binds the current target's framebuffer and sets the viewport.
func (rend *OpenGLRenderer) bindTarget() {
	if rt := rend.renderTarget; rt != nil {
		if err := rt.ensure(); err != nil {
			logger.Log.Error("Render target unavailable", zap.Error(err))
			rend.renderTarget = nil
		} else {
			gl.BindFramebuffer(gl.FRAMEBUFFER, rt.fbo)
			gl.Viewport(0, 0, rt.Width, rt.Height)
			return
		}
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	w, h := rend.DrawingBufferSize()
	gl.Viewport(0, 0, w, h)
}

// Clear clears the current target to transparent black.
func (rend *OpenGLRenderer) Clear() {
	rend.bindTarget()
	gl.ClearColor(0, 0, 0, 0)
	gl.DepthMask(true)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

type drawItem struct {
	mesh  *Mesh
	depth float32
}

type frameLights struct {
	ambient mgl32.Vec3
	spots   []*SpotLight
}

// Render draws scene from camera into the current target.
func (rend *OpenGLRenderer) Render(scene *Scene, camera *PerspectiveCamera) {
	if !rend.initialized {
		return
	}
	rend.info.Frame++
	rend.info.Calls, rend.info.Triangles, rend.info.Lines = 0, 0, 0
	if rend.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		defer gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	scene.UpdateMatrixWorld()
	if camera.Parent() == nil {
		camera.UpdateMatrixWorld()
	}
	view := camera.ViewMatrix()
	viewProjection := camera.ProjectionMatrix.Mul4(view)

	var frustum Frustum
	if rend.FrustumCulling {
		frustum = camera.CalculateFrustum()
	}

	var (
		lights      frameLights
		opaque      []drawItem
		transparent []drawItem
		lines       []*LineSegments
	)
	scene.TraverseVisible(func(n Node) {
		switch obj := n.(type) {
		case *AmbientLight:
			c := colorVec(obj.Color).Mul(obj.Intensity)
			lights.ambient = lights.ambient.Add(c)
		case *SpotLight:
			if len(lights.spots) < MaxSpotLights {
				lights.spots = append(lights.spots, obj)
			} else {
				logger.Log.Warn("Spot light ignored, limit reached", zap.Int("max", MaxSpotLights))
			}
		case *Mesh:
			if obj.Geometry == nil || obj.Material == nil {
				return
			}
			if rend.FrustumCulling && !frustum.IntersectsSphere(worldBoundingSphere(obj)) {
				return
			}
			p := view.Mul4x1(obj.WorldPosition().Vec4(1))
			item := drawItem{mesh: obj, depth: -p.Z()}
			if obj.Material.Transparent {
				transparent = append(transparent, item)
			} else {
				opaque = append(opaque, item)
			}
		case *LineSegments:
			if obj.Geometry != nil {
				lines = append(lines, obj)
			}
		}
	})

	if rend.ShadowMapEnabled {
		rend.renderShadows(lights.spots, opaque, transparent)
	}

	rend.bindTarget()
	if rend.autoClear || scene.Background != nil {
		if scene.Background != nil {
			gl.ClearColor(scene.Background.R, scene.Background.G, scene.Background.B, 1)
		} else {
			gl.ClearColor(0, 0, 0, 0)
		}
		gl.DepthMask(true)
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	}

	sort.SliceStable(opaque, func(i, j int) bool { return opaque[i].depth < opaque[j].depth })
	sort.SliceStable(transparent, func(i, j int) bool { return transparent[i].depth > transparent[j].depth })

	shader := rend.meshShader
	shader.Use()
	rend.setFrameUniforms(shader, scene, camera, view, viewProjection, lights)

	for _, item := range opaque {
		rend.drawMesh(shader, item.mesh, scene)
	}
	for _, item := range transparent {
		rend.drawMesh(shader, item.mesh, scene)
	}
	for _, l := range lines {
		rend.drawLines(shader, l)
	}

	gl.Disable(gl.BLEND)
	gl.Disable(gl.CULL_FACE)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthMask(true)
	gl.UseProgram(0)
}

func (rend *OpenGLRenderer) renderShadows(spots []*SpotLight, groups ...[]drawItem) {
	shader := rend.depthShader
	shader.Use()
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)

	for _, light := range spots {
		if !light.CastShadow {
			continue
		}
		s := light.Shadow
		s.UpdateMatrices(light)

		if s.depthMap != nil && (s.depthMap.Width != s.MapSize[0] || s.depthMap.Height != s.MapSize[1]) {
			s.depthMap.Destroy()
			s.depthMap = nil
		}
		if s.depthMap == nil {
			sm, err := newShadowMap(s.MapSize[0], s.MapSize[1])
			if err != nil {
				logger.Log.Error("Shadow map allocation failed", zap.Error(err))
				continue
			}
			s.depthMap = sm
		}

		gl.BindFramebuffer(gl.FRAMEBUFFER, s.depthMap.FBO)
		gl.Viewport(0, 0, s.depthMap.Width, s.depthMap.Height)
		gl.Clear(gl.DEPTH_BUFFER_BIT)

		lightViewProjection := s.Camera.ProjectionMatrix.Mul4(s.Camera.ViewMatrix())
		shader.SetMat4("lightViewProjection", lightViewProjection)
		for _, group := range groups {
			for _, item := range group {
				m := item.mesh
				if !m.CastShadow {
					continue
				}
				if m.Material.DoubleSided {
					gl.Disable(gl.CULL_FACE)
				} else {
					gl.Enable(gl.CULL_FACE)
				}
				shader.SetMat4("model", m.MatrixWorld)
				m.Geometry.draw(gl.TRIANGLES)
				rend.info.Calls++
			}
		}
	}
	gl.Disable(gl.CULL_FACE)
}

func (rend *OpenGLRenderer) setFrameUniforms(shader *Shader, scene *Scene, camera *PerspectiveCamera, view, viewProjection mgl32.Mat4, lights frameLights) {
	shader.SetMat4("view", view)
	shader.SetMat4("viewProjection", viewProjection)
	p := camera.WorldPosition()
	shader.SetVec3("cameraPosition", p[0], p[1], p[2])
	shader.SetVec3("ambientLightColor", lights.ambient[0], lights.ambient[1], lights.ambient[2])

	toScreen := rend.renderTarget == nil
	shader.SetBool("outputSRGB", toScreen && rend.OutputSRGB)
	shader.SetFloat("toneMappingExposure", rend.ToneMappingExposure)

	if scene.Fog != nil {
		shader.SetFloat("fogDensity", scene.Fog.Density)
		shader.SetVec3("fogColor", scene.Fog.Color.R, scene.Fog.Color.G, scene.Fog.Color.B)
	}

	shader.SetInt("numSpotLights", int32(len(lights.spots)))
	for i := 0; i < MaxSpotLights; i++ {
		names := spotUniforms[i]
		shadowTex := rend.emptyShadow.DepthTex
		if i < len(lights.spots) {
			l := lights.spots[i]
			pos := l.WorldPosition()
			dir := l.Direction()
			c := colorVec(l.Color).Mul(l.Intensity)
			shader.SetVec3(names.position, pos[0], pos[1], pos[2])
			shader.SetVec3(names.direction, dir[0], dir[1], dir[2])
			shader.SetVec3(names.color, c[0], c[1], c[2])
			shader.SetFloat(names.distance, l.Distance)
			shader.SetFloat(names.decay, l.Decay)
			shader.SetFloat(names.coneCos, l.ConeCos())
			shader.SetFloat(names.penumbra, l.PenumbraCos())

			shadowed := rend.ShadowMapEnabled && l.CastShadow && l.Shadow.depthMap != nil
			shader.SetBool(names.castShadow, shadowed)
			if shadowed {
				shadowTex = l.Shadow.depthMap.DepthTex
				shader.SetFloat(names.shadowBias, l.Shadow.Bias)
				shader.SetVec2(names.shadowSize, float32(l.Shadow.MapSize[0]), float32(l.Shadow.MapSize[1]))
				shader.SetMat4(names.shadowMatrix, l.Shadow.Matrix)
			}
		} else {
			shader.SetBool(names.castShadow, false)
		}
		gl.ActiveTexture(gl.TEXTURE0 + uint32(shadowTextureUnit+i))
		gl.BindTexture(gl.TEXTURE_2D, shadowTex)
	}
	gl.ActiveTexture(gl.TEXTURE0)
}

func (rend *OpenGLRenderer) applyMaterialState(m *Material) {
	if m.Transparent || m.Blending == AdditiveBlending {
		gl.Enable(gl.BLEND)
		switch m.Blending {
		case AdditiveBlending:
			gl.BlendEquation(gl.FUNC_ADD)
			gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
		default:
			gl.BlendEquation(gl.FUNC_ADD)
			gl.BlendFuncSeparate(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA, gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
		}
	} else {
		gl.Disable(gl.BLEND)
	}

	if m.DepthTest {
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(gl.LEQUAL)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	gl.DepthMask(m.DepthWrite)

	if m.DoubleSided {
		gl.Disable(gl.CULL_FACE)
	} else {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
		gl.FrontFace(gl.CCW)
	}
}

func (rend *OpenGLRenderer) drawMesh(shader *Shader, mesh *Mesh, scene *Scene) {
	m := mesh.Material
	rend.applyMaterialState(m)

	shader.SetMat4("model", mesh.MatrixWorld)
	shader.SetMat3("normalMatrix", mesh.MatrixWorld.Mat3().Inv().Transpose())

	shader.SetBool("lit", m.Kind == StandardMaterial)
	shader.SetBool("receiveShadow", mesh.ReceiveShadow)
	shader.SetVec3("diffuse", m.Color.R, m.Color.G, m.Color.B)
	shader.SetVec3("emissive", m.Emissive.R, m.Emissive.G, m.Emissive.B)
	shader.SetFloat("opacity", m.Opacity)
	shader.SetFloat("metalness", m.Metalness)
	shader.SetFloat("roughness", m.Roughness)
	shader.SetBool("fogEnabled", m.Fog && scene.Fog != nil)

	toneMapping := NoToneMapping
	if m.ToneMapped {
		toneMapping = rend.ToneMapping
	}
	shader.SetInt("toneMapping", int32(toneMapping))

	mesh.Geometry.draw(gl.TRIANGLES)
	rend.info.Calls++
	if n := len(mesh.Geometry.Indices); n > 0 {
		rend.info.Triangles += n / 3
	} else {
		rend.info.Triangles += mesh.Geometry.VertexCount() / 3
	}
}

func (rend *OpenGLRenderer) drawLines(shader *Shader, l *LineSegments) {
	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthMask(true)
	gl.Disable(gl.CULL_FACE)

	shader.SetMat4("model", l.MatrixWorld)
	shader.SetMat3("normalMatrix", mgl32.Ident3())
	shader.SetBool("lit", false)
	shader.SetBool("receiveShadow", false)
	shader.SetVec3("diffuse", l.Color.R, l.Color.G, l.Color.B)
	shader.SetFloat("opacity", 1)
	shader.SetBool("fogEnabled", false)
	shader.SetInt("toneMapping", int32(NoToneMapping))

	l.Geometry.draw(gl.LINES)
	rend.info.Calls++
	rend.info.Lines += l.Geometry.VertexCount() / 2
}

func (rend *OpenGLRenderer) Cleanup() {
	if !rend.initialized {
		return
	}
	rend.meshShader.Delete()
	rend.depthShader.Delete()
	if rend.emptyShadow != nil {
		rend.emptyShadow.Destroy()
	}
	rend.initialized = false
}

func colorVec(c *math32.Color) mgl32.Vec3 {
	return mgl32.Vec3{c.R, c.G, c.B}
}

// worldBoundingSphere scales the geometry's sphere by the largest axis scale.
func worldBoundingSphere(m *Mesh) (mgl32.Vec3, float32) {
	g := m.Geometry
	center := m.MatrixWorld.Mul4x1(g.BoundingSphereCenter.Vec4(1)).Vec3()
	var maxScale float32
	for c := 0; c < 3; c++ {
		if s := m.MatrixWorld.Col(c).Vec3().Len(); s > maxScale {
			maxScale = s
		}
	}
	return center, g.BoundingSphereRadius * maxScale
}
