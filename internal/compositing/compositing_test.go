package compositing

import (
	"testing"

	"Floodlight/internal/renderer"

	"github.com/g3n/engine/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeComposer struct {
	renders    int
	width      int32
	height     int32
	pixelRatio float32
	onRender   func()
	disposed   bool
}

func (f *fakeComposer) Render(delta float32) {
	f.renders++
	if f.onRender != nil {
		f.onRender()
	}
}

func (f *fakeComposer) SetSize(width, height int32) {
	f.width, f.height = width, height
}

func (f *fakeComposer) SetPixelRatio(ratio float32) {
	f.pixelRatio = ratio
}

func (f *fakeComposer) Dispose() {
	f.disposed = true
}

func box(hex uint) *renderer.Mesh {
	g := renderer.NewGeometry([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, nil, nil, []uint32{0, 1, 2})
	return renderer.NewMesh(g, renderer.NewStandardMaterial(hex))
}

type testScene struct {
	scene  *renderer.Scene
	flood  []*renderer.Mesh
	ground *renderer.Mesh
	nested *renderer.Mesh
}

func newTestScene() testScene {
	s := testScene{scene: renderer.NewScene()}
	s.scene.Fog = renderer.NewFogExp2(0x262837, 0.04)
	s.scene.Background = math32.NewColorHex(0x262837)

	for i := 0; i < 3; i++ {
		cone := box(0xffffff)
		cone.Material = renderer.NewBasicMaterial(0xffffff)
		holder := renderer.NewObject3D()
		holder.Add(cone)
		s.scene.Add(holder)
		s.flood = append(s.flood, cone)
	}
	s.ground = box(0x262837)
	s.scene.Add(s.ground)

	group := renderer.NewObject3D()
	s.nested = box(0x888888)
	group.Add(s.nested)
	s.scene.Add(group)
	return s
}

func TestPartitionIsExclusiveAndExhaustive(t *testing.T) {
	ts := newTestScene()
	p := NewPartition(ts.scene, ts.flood...)

	count := 0
	ts.scene.Traverse(func(n renderer.Node) {
		m, ok := n.(*renderer.Mesh)
		if !ok {
			return
		}
		count++
		assert.True(t, p.IsFlood(m) != p.IsOther(m), "mesh %s must be in exactly one set", m.Name)
	})
	assert.Equal(t, 5, count)
	assert.Equal(t, 3, p.FloodCount())
	assert.Equal(t, []*renderer.Mesh{ts.ground, ts.nested}, p.Other())
}

func TestPartitionRegisterLateMeshes(t *testing.T) {
	ts := newTestScene()
	p := NewPartition(ts.scene, ts.flood...)

	model := renderer.NewObject3D()
	a, b := box(0xff0000), box(0x00ff00)
	model.Add(a, b)

	assert.False(t, p.Contains(a))
	assert.Equal(t, 2, p.Register(model))
	assert.True(t, p.IsOther(a))
	assert.True(t, p.IsOther(b))

	// Already known meshes are not added twice.
	ts.scene.Add(model)
	assert.Equal(t, 0, p.Register(ts.scene))
	assert.Len(t, p.Other(), 4)
}

func TestRenderBloomBlacksOutOtherMeshes(t *testing.T) {
	ts := newTestScene()
	p := NewPartition(ts.scene, ts.flood...)
	bloom, final := &fakeComposer{}, &fakeComposer{}
	s := newSelectiveBloom(renderer.NewOpenGLRenderer(1280, 720), ts.scene, p, bloom, final)

	floodMaterial := ts.flood[0].Material
	bloom.onRender = func() {
		for _, m := range p.Other() {
			assert.Same(t, s.darkMaterial, m.Material)
			assert.Equal(t, math32.Color{}, *m.Material.Color)
		}
		assert.Same(t, floodMaterial, ts.flood[0].Material)
		assert.Equal(t, math32.Color{}, *ts.scene.Fog.Color)
		require.NotNil(t, ts.scene.Background)
		assert.Equal(t, math32.Color{}, *ts.scene.Background)
	}

	s.RenderBloom(0.016)
	assert.Equal(t, 1, bloom.renders)
	assert.Equal(t, 0, final.renders)
}

func TestRenderBloomRestoresMaterials(t *testing.T) {
	ts := newTestScene()
	p := NewPartition(ts.scene, ts.flood...)
	s := newSelectiveBloom(renderer.NewOpenGLRenderer(1280, 720), ts.scene, p, &fakeComposer{}, &fakeComposer{})

	before := map[*renderer.Mesh]*renderer.Material{}
	ts.scene.Traverse(func(n renderer.Node) {
		if m, ok := n.(*renderer.Mesh); ok {
			before[m] = m.Material
		}
	})
	background := ts.scene.Background

	for i := 0; i < 3; i++ {
		s.RenderBloom(0.016)
	}

	for m, material := range before {
		assert.Same(t, material, m.Material)
	}
	assert.Equal(t, *math32.NewColorHex(0x262837), *ts.scene.Fog.Color)
	assert.Same(t, background, ts.scene.Background)
	assert.Empty(t, s.saved)
}

func TestRenderBloomRestoresOnPanic(t *testing.T) {
	ts := newTestScene()
	p := NewPartition(ts.scene, ts.flood...)
	bloom := &fakeComposer{onRender: func() { panic("lost context") }}
	s := newSelectiveBloom(renderer.NewOpenGLRenderer(1280, 720), ts.scene, p, bloom, &fakeComposer{})
	groundMaterial := ts.ground.Material

	assert.Panics(t, func() { s.RenderBloom(0.016) })
	assert.Same(t, groundMaterial, ts.ground.Material)
	assert.Equal(t, *math32.NewColorHex(0x262837), *ts.scene.Fog.Color)
}

func TestRenderBloomWithoutFogOrBackground(t *testing.T) {
	ts := newTestScene()
	ts.scene.Fog = nil
	ts.scene.Background = nil
	s := newSelectiveBloom(renderer.NewOpenGLRenderer(1280, 720), ts.scene, NewPartition(ts.scene, ts.flood...), &fakeComposer{}, &fakeComposer{})

	s.RenderBloom(0.016)
	assert.Nil(t, ts.scene.Fog)
	assert.Nil(t, ts.scene.Background)
}

func TestCompositeAndResize(t *testing.T) {
	ts := newTestScene()
	bloom, final := &fakeComposer{}, &fakeComposer{}
	rend := renderer.NewOpenGLRenderer(1280, 720)
	s := newSelectiveBloom(rend, ts.scene, NewPartition(ts.scene, ts.flood...), bloom, final)

	s.Composite(0.016)
	assert.Equal(t, 1, final.renders)
	assert.Equal(t, 0, bloom.renders)

	s.SetSize(800, 600)
	assert.Equal(t, int32(800), bloom.width)
	assert.Equal(t, int32(600), bloom.height)
	assert.Equal(t, int32(800), final.width)
	assert.Equal(t, int32(600), final.height)
	assert.Equal(t, float32(1), bloom.pixelRatio)

	// Moving to a HiDPI monitor changes the renderer's ratio first.
	rend.SetPixelRatio(2)
	s.SetSize(800, 600)
	assert.Equal(t, float32(2), bloom.pixelRatio)
	assert.Equal(t, float32(2), final.pixelRatio)

	s.Dispose()
	assert.True(t, bloom.disposed)
	assert.True(t, final.disposed)
	assert.True(t, s.darkMaterial.Disposed())
}

func TestDefaultBloomOptions(t *testing.T) {
	o := DefaultBloomOptions()
	assert.Equal(t, float32(0), o.Threshold)
	assert.Equal(t, float32(2), o.Strength)
	assert.Equal(t, float32(0.5), o.Radius)
}
