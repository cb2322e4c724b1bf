// Package stage assembles the floodlight scene and runs one frame of it.
package stage

import (
	"math"

	"Floodlight/internal/compositing"
	"Floodlight/internal/config"
	"Floodlight/internal/controls"
	"Floodlight/internal/lighting"
	"Floodlight/internal/loader"
	"Floodlight/internal/logger"
	"Floodlight/internal/renderer"
	"Floodlight/internal/tuning"

	"github.com/g3n/engine/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

const (
	groundColor    = 0x262837
	groundRadius   = 50
	groundSegments = 254
	lightCount     = 3
)

// compositor is the part of compositing.SelectiveBloom the frame loop drives.
type compositor interface {
	RenderBloom(delta float32)
	Composite(delta float32)
	SetSize(width, height int32)
	Dispose()
}

// Stage is everything the frame loop touches: scene graph, lights and their
// helpers, the tuning controller, the bloom pipeline and, once loaded, the
// model and its mixer.
type Stage struct {
	Config   *config.Config
	Renderer *renderer.OpenGLRenderer

	Scene    *renderer.Scene
	Camera   *renderer.PerspectiveCamera
	Controls *controls.OrbitControls
	Ground   *renderer.Mesh
	Ambient  *renderer.AmbientLight

	Lights        []*renderer.SpotLight
	Helpers       []*lighting.SpotLightHelper
	LineHelpers   []*lighting.LightConeLines
	CameraHelpers []*lighting.ShadowCameraHelper

	Controller *tuning.Controller
	Panel      *tuning.Panel
	Partition  *compositing.Partition
	Bloom      compositor

	Model *loader.Model
	Mixer *renderer.AnimationMixer

	pending *loader.Future
}

// New builds the scene for a renderer of the configured window size and
// starts loading the configured model in the background.
func New(rend *renderer.OpenGLRenderer, cfg *config.Config) (*Stage, error) {
	s, err := build(rend, cfg)
	if err != nil {
		return nil, err
	}
	s.Bloom = compositing.NewSelectiveBloom(rend, s.Scene, s.Camera, s.Partition, compositing.BloomOptions{
		Threshold: cfg.Bloom.Threshold,
		Strength:  cfg.Bloom.Strength,
		Radius:    cfg.Bloom.Radius,
	})
	if cfg.Model.Path != "" {
		s.LoadModel(cfg.Model.Path)
	}
	return s, nil
}

// build assembles everything except the GL backed bloom pipeline.
func build(rend *renderer.OpenGLRenderer, cfg *config.Config) (*Stage, error) {
	toneMapping, err := cfg.ToneMapping()
	if err != nil {
		return nil, err
	}
	rend.ToneMapping = toneMapping
	rend.ToneMappingExposure = cfg.Renderer.Exposure
	rend.ShadowMapEnabled = cfg.Renderer.Shadows
	rend.FrustumCulling = cfg.Renderer.FrustumCulling
	rend.Wireframe = cfg.Renderer.Wireframe
	rend.OutputSRGB = true

	s := &Stage{Config: cfg, Renderer: rend, Scene: renderer.NewScene()}

	width, height := rend.Size()
	s.Camera = renderer.NewPerspectiveCamera(cfg.Camera.Fov, aspect(width, height), cfg.Camera.Near, cfg.Camera.Far)
	s.Camera.Position = mgl32.Vec3(cfg.Camera.Position)
	s.Scene.Add(s.Camera)

	s.Controls = controls.NewOrbitControls(s.Camera, float32(height))
	s.Controls.EnableDamping = cfg.Camera.Damping
	s.Controls.Target = mgl32.Vec3(cfg.Camera.Target)

	s.Scene.Fog = renderer.NewFogExp2(uint(cfg.Fog.Color), cfg.Fog.Density)
	s.Scene.Background = math32.NewColorHex(uint(cfg.Fog.Color))

	ground := renderer.NewCircleGeometry(groundRadius, groundSegments).RotateX(-math.Pi / 2)
	s.Ground = renderer.NewMesh(ground, renderer.NewStandardMaterial(groundColor))
	s.Ground.Name = "Ground"
	s.Ground.ReceiveShadow = true
	s.Scene.Add(s.Ground)

	s.Ambient = renderer.NewAmbientLight(0xffffff, 1)
	s.Scene.Add(s.Ambient)

	s.buildLights()

	s.Controller = tuning.NewController(s.Lights)
	s.Controller.Helpers = s.Helpers
	s.Controller.LineHelpers = s.LineHelpers
	s.Controller.CameraHelpers = s.CameraHelpers
	s.Controller.Renderer = rend
	s.Controller.Apply(cfg.Debug)
	s.Panel = tuning.NewPanel(s.Controller)

	cones := make([]*renderer.Mesh, 0, len(s.Helpers))
	for _, h := range s.Helpers {
		cones = append(cones, h.Cone)
	}
	s.Partition = compositing.NewPartition(s.Scene, cones...)

	logger.Log.Info("Stage built",
		zap.Int32("width", width), zap.Int32("height", height),
		zap.Int("lights", len(s.Lights)),
		zap.Stringer("toneMapping", toneMapping))
	return s, nil
}

func (s *Stage) buildLights() {
	helperOpts := []lighting.HelperOption{lighting.WithHelperOpacity(s.Config.Helpers.Opacity)}
	if c := s.Config.Helpers.Color; c != nil {
		helperOpts = append(helperOpts, lighting.WithHelperColor(uint(*c)))
	}

	for i := 0; i < lightCount; i++ {
		light := lighting.NewSpotLight()
		s.Lights = append(s.Lights, light)
		s.Scene.Add(light)

		helper := lighting.NewSpotLightHelper(light, helperOpts...)
		material := helper.Cone.Material
		material.Blending = renderer.AdditiveBlending
		material.DepthWrite = false
		s.Helpers = append(s.Helpers, helper)
		s.Scene.Add(helper)

		lines := lighting.NewLightConeLines(light)
		s.LineHelpers = append(s.LineHelpers, lines)
		if s.Config.Helpers.ShowLightHelpers {
			s.Scene.Add(lines)
		}

		frustum := lighting.NewShadowCameraHelper(light.Shadow.Camera)
		s.CameraHelpers = append(s.CameraHelpers, frustum)
		if s.Config.Helpers.ShowCameraHelpers {
			s.Scene.Add(frustum)
		}
	}
}

func aspect(width, height int32) float32 {
	if height <= 0 {
		return 1
	}
	return float32(width) / float32(height)
}

// LoadModel starts loading path in the background. The result is merged
// into the scene by the first Frame after it is ready.
func (s *Stage) LoadModel(path string) *loader.Future {
	s.pending = loader.LoadAsync(path)
	logger.Log.Info("Loading model", zap.String("path", path))
	return s.pending
}

// Frame advances the scene by delta seconds and draws it.
func (s *Stage) Frame(delta float32) {
	s.mergeModel()

	s.Bloom.RenderBloom(delta)

	if s.Mixer != nil {
		s.Mixer.Update(delta)
	}
	s.Controller.Refresh()
	s.Controls.Update()

	s.Bloom.Composite(delta)
}

// DrawUI draws the tuning panel. It must run inside an imgui frame.
func (s *Stage) DrawUI() {
	s.Panel.Draw()
}

func (s *Stage) mergeModel() {
	if s.pending == nil {
		return
	}
	select {
	case <-s.pending.Done():
	default:
		return
	}
	if s.pending.State() == loader.Failed {
		logger.Log.Warn("Continuing without model", zap.String("path", s.pending.Path), zap.Error(s.pending.Err()))
		s.pending = nil
		return
	}
	model := s.pending.Model()
	s.pending = nil
	s.AddModel(model)
}

// AddModel scales the model, makes its lit meshes cast and receive shadows,
// registers its meshes as non-blooming and plays its first clip.
func (s *Stage) AddModel(model *loader.Model) {
	scale := s.Config.Model.Scale
	model.Root.SetScale(scale, scale, scale)
	for _, m := range model.Meshes {
		if m.Material.Kind == renderer.StandardMaterial {
			m.CastShadow = true
			m.ReceiveShadow = true
		}
	}
	s.Scene.Add(model.Root)
	registered := s.Partition.Register(model.Root)
	s.Model = model

	if len(model.Animations) == 0 {
		logger.Log.Warn("Model has no animation clips", zap.String("path", model.SourcePath))
	} else {
		s.Mixer = renderer.NewAnimationMixer(model.Root)
		s.Mixer.ClipAction(model.Animations[0]).Play()
	}

	logger.Log.Info("Model added to scene",
		zap.String("path", model.SourcePath),
		zap.Int("meshes", registered),
		zap.Int("clips", len(model.Animations)))
}

// Resize resynchronises the camera, renderer and both composers with a new
// window size. A minimised window is ignored.
func (s *Stage) Resize(width, height int32, pixelRatio float32) {
	if width <= 0 || height <= 0 {
		logger.Log.Debug("Ignoring resize to empty window", zap.Int32("width", width), zap.Int32("height", height))
		return
	}
	s.Camera.Aspect = aspect(width, height)
	s.Camera.UpdateProjectionMatrix()

	s.Renderer.SetPixelRatio(pixelRatio)
	s.Renderer.SetSize(width, height)
	s.Controls.ViewportHeight = float32(height)

	s.Bloom.SetSize(width, height)
}

func (s *Stage) Dispose() {
	s.Bloom.Dispose()
	for _, h := range s.Helpers {
		h.Dispose()
	}
	for _, h := range s.LineHelpers {
		h.Dispose()
	}
	for _, h := range s.CameraHelpers {
		h.Dispose()
	}
	for _, l := range s.Lights {
		l.Shadow.Dispose()
	}
	s.Ground.Geometry.Dispose()
	s.Ground.Material.Dispose()
	if s.Model != nil {
		s.Model.Dispose()
	}
}
