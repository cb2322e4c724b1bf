package loader

import (
	"fmt"
	"path/filepath"

	"Floodlight/internal/logger"
	"Floodlight/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"
)

// LoadGLTF imports the default scene of a .gltf or .glb file. Meshes get
// standard materials from their PBR factors; textures and skins are not
// imported. Node TRS animations become clips.
func LoadGLTF(path string) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open glTF %s: %w", path, err)
	}
	model, err := buildGLTF(doc, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("import glTF %s: %w", path, err)
	}
	model.SourcePath = path
	return model, nil
}

// gltfIndex reads a glTF object reference, optional or not.
func gltfIndex(ref any) (int, bool) {
	switch i := ref.(type) {
	case int:
		return i, true
	case uint32:
		return int(i), true
	case *int:
		if i != nil {
			return *i, true
		}
	case *uint32:
		if i != nil {
			return int(*i), true
		}
	}
	return 0, false
}

type gltfBuilder struct {
	doc       *gltf.Document
	model     *Model
	nodes     []*renderer.Object3D
	materials map[int]*renderer.Material
}

func buildGLTF(doc *gltf.Document, name string) (*Model, error) {
	b := &gltfBuilder{
		doc:       doc,
		model:     &Model{Root: renderer.NewObject3D()},
		nodes:     make([]*renderer.Object3D, len(doc.Nodes)),
		materials: make(map[int]*renderer.Material),
	}
	b.model.Root.Name = name

	for i, n := range doc.Nodes {
		obj, err := b.node(n)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		b.nodes[i] = obj
	}

	hasParent := make([]bool, len(doc.Nodes))
	for i, n := range doc.Nodes {
		for _, c := range n.Children {
			idx, _ := gltfIndex(c)
			if idx < 0 || idx >= len(b.nodes) {
				return nil, fmt.Errorf("node %d: child %d out of range", i, idx)
			}
			b.nodes[i].Add(b.nodes[idx])
			hasParent[idx] = true
		}
	}

	for _, idx := range b.rootNodes(hasParent) {
		b.model.Root.Add(b.nodes[idx])
	}

	for i, a := range doc.Animations {
		clip, err := b.animation(a)
		if err != nil {
			return nil, fmt.Errorf("animation %d: %w", i, err)
		}
		b.model.Animations = append(b.model.Animations, clip)
	}

	if len(doc.Skins) > 0 {
		logger.Log.Warn("glTF skins are not supported, meshes stay in bind pose", zap.Int("skins", len(doc.Skins)))
	}
	return b.model, nil
}

// rootNodes returns the default scene's nodes, or every parentless node when
// the file has no scenes.
func (b *gltfBuilder) rootNodes(hasParent []bool) []int {
	if len(b.doc.Scenes) > 0 {
		sceneIdx, ok := gltfIndex(b.doc.Scene)
		if !ok || sceneIdx >= len(b.doc.Scenes) {
			sceneIdx = 0
		}
		var roots []int
		for _, n := range b.doc.Scenes[sceneIdx].Nodes {
			if idx, _ := gltfIndex(n); idx >= 0 && idx < len(b.nodes) {
				roots = append(roots, idx)
			}
		}
		return roots
	}
	var roots []int
	for i, p := range hasParent {
		if !p {
			roots = append(roots, i)
		}
	}
	return roots
}

func (b *gltfBuilder) node(n *gltf.Node) (*renderer.Object3D, error) {
	obj := renderer.NewObject3D()
	obj.Name = n.Name

	var m mgl32.Mat4
	for i := range m {
		m[i] = float32(n.Matrix[i])
	}
	if m != (mgl32.Mat4{}) && m != mgl32.Ident4() {
		obj.Matrix = m
		obj.MatrixAutoUpdate = false
	} else {
		obj.Position = mgl32.Vec3{float32(n.Translation[0]), float32(n.Translation[1]), float32(n.Translation[2])}
		q := mgl32.Quat{W: float32(n.Rotation[3]), V: mgl32.Vec3{float32(n.Rotation[0]), float32(n.Rotation[1]), float32(n.Rotation[2])}}
		if q.Len() > 0 {
			obj.Rotation = q.Normalize()
		}
		s := mgl32.Vec3{float32(n.Scale[0]), float32(n.Scale[1]), float32(n.Scale[2])}
		if s != (mgl32.Vec3{}) {
			obj.Scale = s
		}
	}

	meshIdx, ok := gltfIndex(n.Mesh)
	if !ok {
		return obj, nil
	}
	if meshIdx >= len(b.doc.Meshes) {
		return nil, fmt.Errorf("mesh %d out of range", meshIdx)
	}
	src := b.doc.Meshes[meshIdx]
	for i, p := range src.Primitives {
		mesh, err := b.primitive(p)
		if err != nil {
			return nil, fmt.Errorf("mesh %q primitive %d: %w", src.Name, i, err)
		}
		if mesh == nil {
			continue
		}
		mesh.Name = src.Name
		obj.Add(mesh)
		b.model.Meshes = append(b.model.Meshes, mesh)
	}
	return obj, nil
}

func (b *gltfBuilder) accessor(ref any) (*gltf.Accessor, error) {
	idx, ok := gltfIndex(ref)
	if !ok {
		return nil, nil
	}
	if idx < 0 || idx >= len(b.doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	return b.doc.Accessors[idx], nil
}

func (b *gltfBuilder) primitive(p *gltf.Primitive) (*renderer.Mesh, error) {
	if p.Mode != gltf.PrimitiveTriangles {
		logger.Log.Debug("Skipping non-triangle glTF primitive")
		return nil, nil
	}

	posRef, ok := p.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("primitive has no POSITION")
	}
	acr, err := b.accessor(posRef)
	if err != nil {
		return nil, err
	}
	positions, err := modeler.ReadPosition(b.doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	var normals []float32
	if ref, ok := p.Attributes[gltf.NORMAL]; ok {
		acr, err := b.accessor(ref)
		if err != nil {
			return nil, err
		}
		n, err := modeler.ReadNormal(b.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
		normals = flatten3(n)
	}

	var uvs []float32
	if ref, ok := p.Attributes[gltf.TEXCOORD_0]; ok {
		acr, err := b.accessor(ref)
		if err != nil {
			return nil, err
		}
		t, err := modeler.ReadTextureCoord(b.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read uvs: %w", err)
		}
		uvs = make([]float32, 0, len(t)*2)
		for _, uv := range t {
			uvs = append(uvs, uv[0], uv[1])
		}
	}

	var indices []uint32
	if acr, err := b.accessor(p.Indices); err != nil {
		return nil, err
	} else if acr != nil {
		indices, err = modeler.ReadIndices(b.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
	}

	geometry := renderer.NewGeometry(flatten3(positions), normals, uvs, indices)
	if len(normals) == 0 {
		geometry.ComputeVertexNormals()
	}
	return renderer.NewMesh(geometry, b.material(p.Material)), nil
}

// material converts a glTF material. Materials are shared between the
// primitives that reference them.
func (b *gltfBuilder) material(ref any) *renderer.Material {
	idx, ok := gltfIndex(ref)
	if !ok || idx >= len(b.doc.Materials) {
		m := renderer.NewStandardMaterial(0xffffff)
		m.Metalness = 1
		return m
	}
	if m, ok := b.materials[idx]; ok {
		return m
	}

	src := b.doc.Materials[idx]
	m := renderer.NewStandardMaterial(0xffffff)
	m.Name = src.Name
	m.Metalness = 1
	if pbr := src.PBRMetallicRoughness; pbr != nil {
		if f := pbr.BaseColorFactor; f != nil {
			m.Color.R, m.Color.G, m.Color.B = float32(f[0]), float32(f[1]), float32(f[2])
			m.Opacity = float32(f[3])
		}
		if pbr.MetallicFactor != nil {
			m.Metalness = float32(*pbr.MetallicFactor)
		}
		if pbr.RoughnessFactor != nil {
			m.Roughness = float32(*pbr.RoughnessFactor)
		}
		if pbr.BaseColorTexture != nil {
			logger.Log.Debug("glTF base color texture ignored", zap.String("material", src.Name))
		}
	}
	e := src.EmissiveFactor
	m.Emissive.R, m.Emissive.G, m.Emissive.B = float32(e[0]), float32(e[1]), float32(e[2])
	m.Transparent = src.AlphaMode == gltf.AlphaBlend
	m.DoubleSided = src.DoubleSided

	b.materials[idx] = m
	return m
}

func (b *gltfBuilder) animation(a *gltf.Animation) (*renderer.AnimationClip, error) {
	clip := &renderer.AnimationClip{Name: a.Name}
	for i, ch := range a.Channels {
		nodeIdx, ok := gltfIndex(ch.Target.Node)
		if !ok || nodeIdx >= len(b.nodes) {
			continue
		}
		var path renderer.TrackPath
		switch ch.Target.Path {
		case gltf.TRSTranslation:
			path = renderer.TrackTranslation
		case gltf.TRSRotation:
			path = renderer.TrackRotation
		case gltf.TRSScale:
			path = renderer.TrackScale
		default:
			logger.Log.Debug("Skipping glTF animation channel", zap.String("animation", a.Name), zap.Int("channel", i))
			continue
		}

		samplerIdx, ok := gltfIndex(ch.Sampler)
		if !ok || samplerIdx >= len(a.Samplers) {
			return nil, fmt.Errorf("channel %d: sampler out of range", i)
		}
		s := a.Samplers[samplerIdx]

		input, err := b.accessor(s.Input)
		if err != nil || input == nil {
			return nil, fmt.Errorf("channel %d: bad input accessor", i)
		}
		output, err := b.accessor(s.Output)
		if err != nil || output == nil {
			return nil, fmt.Errorf("channel %d: bad output accessor", i)
		}
		times, err := readFloats(b.doc, input)
		if err != nil {
			return nil, fmt.Errorf("channel %d times: %w", i, err)
		}
		values, err := readFloats(b.doc, output)
		if err != nil {
			return nil, fmt.Errorf("channel %d values: %w", i, err)
		}

		track := &renderer.KeyframeTrack{
			Node:          b.nodes[nodeIdx],
			Path:          path,
			Times:         times,
			Values:        values,
			Interpolation: renderer.InterpolateLinear,
		}
		switch s.Interpolation {
		case gltf.InterpolationStep:
			track.Interpolation = renderer.InterpolateStep
		case gltf.InterpolationCubicSpline:
			// Keep the values and drop the tangents.
			track.Values = cubicSplineValues(values, len(times), trackStride(path))
		}
		if len(track.Values) < len(times)*trackStride(path) {
			return nil, fmt.Errorf("channel %d: %d values for %d keys", i, len(track.Values), len(times))
		}
		// Nodes driven by animation need TRS updates.
		track.Node.MatrixAutoUpdate = true
		clip.Tracks = append(clip.Tracks, track)
	}
	clip.ResetDuration()
	return clip, nil
}

func trackStride(path renderer.TrackPath) int {
	if path == renderer.TrackRotation {
		return 4
	}
	return 3
}

// cubicSplineValues picks the value out of each in-tangent, value,
// out-tangent triple.
func cubicSplineValues(values []float32, keys, stride int) []float32 {
	if len(values) < keys*stride*3 {
		return values
	}
	out := make([]float32, 0, keys*stride)
	for k := 0; k < keys; k++ {
		start := (k*3 + 1) * stride
		out = append(out, values[start:start+stride]...)
	}
	return out
}

// readFloats flattens a float or normalized integer accessor into floats.
func readFloats(doc *gltf.Document, acr *gltf.Accessor) ([]float32, error) {
	data, err := modeler.ReadAccessor(doc, acr, nil)
	if err != nil {
		return nil, err
	}
	switch v := data.(type) {
	case []float32:
		return v, nil
	case [][2]float32:
		out := make([]float32, 0, len(v)*2)
		for _, e := range v {
			out = append(out, e[:]...)
		}
		return out, nil
	case [][3]float32:
		return flatten3(v), nil
	case [][4]float32:
		out := make([]float32, 0, len(v)*4)
		for _, e := range v {
			out = append(out, e[:]...)
		}
		return out, nil
	case [][4]int8:
		out := make([]float32, 0, len(v)*4)
		for _, e := range v {
			for _, c := range e {
				out = append(out, mgl32.Clamp(float32(c)/127, -1, 1))
			}
		}
		return out, nil
	case [][4]int16:
		out := make([]float32, 0, len(v)*4)
		for _, e := range v {
			for _, c := range e {
				out = append(out, mgl32.Clamp(float32(c)/32767, -1, 1))
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported accessor data %T", data)
}

func flatten3(v [][3]float32) []float32 {
	out := make([]float32, 0, len(v)*3)
	for _, e := range v {
		out = append(out, e[0], e[1], e[2])
	}
	return out
}
