package loader

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"Floodlight/internal/logger"
	"Floodlight/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

const defaultMaterialName = "default"

// FaceVertex is one corner of an OBJ face. Indices are zero based; -1 means
// the attribute is absent.
type FaceVertex struct {
	VertexIdx   int32
	TexCoordIdx int32
	NormalIdx   int32
}

type vertexKey struct {
	v, vt, vn int32
}

// objGroup collects the faces drawn with one material into its own indexed
// vertex buffer.
type objGroup struct {
	material  string
	vertexMap map[vertexKey]uint32
	positions []float32
	uvs       []float32
	normals   []float32
	indices   []uint32
	hasNormal bool
}

func newObjGroup(material string) *objGroup {
	return &objGroup{material: material, vertexMap: make(map[vertexKey]uint32)}
}

type objData struct {
	vertices      []float32
	textureCoords []float32
	normals       []float32
}

func (g *objGroup) add(fv FaceVertex, data *objData) {
	key := vertexKey{fv.VertexIdx, fv.TexCoordIdx, fv.NormalIdx}
	if idx, ok := g.vertexMap[key]; ok {
		g.indices = append(g.indices, idx)
		return
	}
	idx := uint32(len(g.positions) / 3)
	g.vertexMap[key] = idx

	if fv.VertexIdx >= 0 && int(fv.VertexIdx)*3+2 < len(data.vertices) {
		g.positions = append(g.positions, data.vertices[fv.VertexIdx*3:fv.VertexIdx*3+3]...)
	} else {
		logger.Log.Error("Vertex index out of bounds",
			zap.Int32("vertexIdx", fv.VertexIdx),
			zap.Int("vertices", len(data.vertices)/3))
		g.positions = append(g.positions, 0, 0, 0)
	}

	if fv.TexCoordIdx >= 0 && int(fv.TexCoordIdx)*2+1 < len(data.textureCoords) {
		g.uvs = append(g.uvs, data.textureCoords[fv.TexCoordIdx*2:fv.TexCoordIdx*2+2]...)
	} else {
		g.uvs = append(g.uvs, 0, 0)
	}

	if fv.NormalIdx >= 0 && int(fv.NormalIdx)*3+2 < len(data.normals) {
		g.normals = append(g.normals, data.normals[fv.NormalIdx*3:fv.NormalIdx*3+3]...)
		g.hasNormal = true
	} else {
		if fv.NormalIdx >= 0 {
			logger.Log.Warn("Normal index out of bounds",
				zap.Int32("normalIdx", fv.NormalIdx),
				zap.Int("normals", len(data.normals)/3))
		}
		g.normals = append(g.normals, 0, 1, 0)
	}
	g.indices = append(g.indices, idx)
}

// LoadOBJ imports a Wavefront OBJ file with its .mtl materials. Each material
// used by the faces becomes one mesh under the model root. Some exporters
// write broken normals; recalculateNormals replaces them with face-averaged
// ones, which is also done when the file has none.
func LoadOBJ(path string, recalculateNormals bool) (*Model, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var (
		data      objData
		materials = map[string]*renderer.Material{}
		groups    []*objGroup
		byName    = map[string]*objGroup{}
		current   = defaultMaterialName
		lineNo    int
	)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lineNo++
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		switch parts[0] {
		case "v":
			vertex, err := parseVertex(parts[1:])
			if err != nil || len(vertex) < 3 {
				return nil, fmt.Errorf("%s:%d: bad vertex: %v", path, lineNo, err)
			}
			data.vertices = append(data.vertices, vertex[:3]...)
		case "vn":
			normal, err := parseVertex(parts[1:])
			if err != nil || len(normal) < 3 {
				return nil, fmt.Errorf("%s:%d: bad normal: %v", path, lineNo, err)
			}
			data.normals = append(data.normals, normal[:3]...)
		case "vt":
			texCoord, err := parseTextureCoordinate(parts[1:])
			if err != nil || len(texCoord) < 2 {
				return nil, fmt.Errorf("%s:%d: bad texture coordinate: %v", path, lineNo, err)
			}
			data.textureCoords = append(data.textureCoords, texCoord[0], texCoord[1])
		case "f":
			face, err := parseFace(parts[1:], len(data.vertices)/3, len(data.textureCoords)/2, len(data.normals)/3)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			g, ok := byName[current]
			if !ok {
				g = newObjGroup(current)
				byName[current] = g
				groups = append(groups, g)
			}
			for _, fv := range face {
				g.add(fv, &data)
			}
		case "mtllib":
			if len(parts) < 2 {
				continue
			}
			for name, m := range LoadMaterials(filepath.Join(filepath.Dir(path), parts[1])) {
				materials[name] = m
			}
		case "usemtl":
			if len(parts) >= 2 {
				current = parts[1]
				if _, ok := materials[current]; !ok {
					logger.Log.Debug("Material not found", zap.String("material", current))
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("%s: no faces", path)
	}

	model := &Model{Root: renderer.NewObject3D(), SourcePath: path}
	model.Root.Name = filepath.Base(path)
	for _, g := range groups {
		material, ok := materials[g.material]
		if !ok {
			material = renderer.NewStandardMaterial(0xffffff)
			material.Name = g.material
		}

		normals := g.normals
		if recalculateNormals || !g.hasNormal {
			normals = RecalculateNormals(g.positions, g.indices)
		}
		mesh := renderer.NewMesh(renderer.NewGeometry(g.positions, normals, g.uvs, g.indices), material)
		mesh.Name = g.material
		model.Root.Add(mesh)
		model.Meshes = append(model.Meshes, mesh)

		logger.Log.Debug("OBJ material group",
			zap.String("material", g.material),
			zap.Int("vertices", len(g.positions)/3),
			zap.Int("triangles", len(g.indices)/3))
	}
	return model, nil
}

// LoadMaterials loads material properties from a .mtl file. A missing or
// unreadable file yields no materials; faces then fall back to a white
// standard material.
func LoadMaterials(filename string) map[string]*renderer.Material {
	materials := make(map[string]*renderer.Material)
	file, err := os.Open(filename)
	if err != nil {
		logger.Log.Error("Error opening material file", zap.Error(err))
		return materials
	}
	defer file.Close()

	var current *renderer.Material
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] != "newmtl" && current == nil {
			continue
		}

		switch fields[0] {
		case "newmtl":
			if len(fields) < 2 {
				logger.Log.Error("Malformed material line", zap.String("line", line))
				continue
			}
			current = renderer.NewStandardMaterial(0xffffff)
			current.Name = fields[1]
			current.Roughness = 0.5
			materials[fields[1]] = current
		case "Kd":
			if len(fields) == 4 {
				c := parseColor(fields[1:])
				current.Color.R, current.Color.G, current.Color.B = c[0], c[1], c[2]
			}
		case "Ke":
			if len(fields) == 4 {
				c := parseColor(fields[1:])
				current.Emissive.R, current.Emissive.G, current.Emissive.B = c[0], c[1], c[2]
			}
		case "Ns":
			if len(fields) == 2 {
				current.Roughness = shininessToRoughness(parseFloat(fields[1]))
			}
		case "d":
			if len(fields) == 2 {
				current.Opacity = parseFloat(fields[1])
				current.Transparent = current.Opacity < 1
			}
		case "Tr":
			if len(fields) == 2 {
				current.Opacity = 1 - parseFloat(fields[1])
				current.Transparent = current.Opacity < 1
			}
		case "map_Kd":
			logger.Log.Debug("Diffuse texture ignored",
				zap.String("material", current.Name),
				zap.String("map", fields[len(fields)-1]))
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Log.Error("Error reading material file", zap.String("file", filename), zap.Error(err))
	}
	return materials
}

// shininessToRoughness maps a Phong exponent onto a roughness in [0, 1].
func shininessToRoughness(ns float32) float32 {
	if ns < 0 {
		ns = 0
	}
	return mgl32.Clamp(float32(math.Sqrt(2/(float64(ns)+2))), 0, 1)
}

// parseColor parses RGB color components from a list of strings.
func parseColor(fields []string) [3]float32 {
	var color [3]float32
	for i, field := range fields {
		if i >= 3 {
			break
		}
		if val, err := strconv.ParseFloat(field, 32); err == nil {
			color[i] = float32(val)
		} else {
			logger.Log.Error("Error parsing color component", zap.Error(err))
		}
	}
	return color
}

func parseFloat(s string) float32 {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		logger.Log.Error("Error parsing float", zap.String("value", s), zap.Error(err))
		return 0
	}
	return float32(f)
}

func parseVertex(parts []string) ([]float32, error) {
	var vertex []float32
	for _, part := range parts {
		val, err := strconv.ParseFloat(part, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vertex value %v: %w", part, err)
		}
		vertex = append(vertex, float32(val))
	}
	return vertex, nil
}

// for 2D textures
func parseTextureCoordinate(parts []string) ([]float32, error) {
	var texCoord []float32
	for _, part := range parts {
		val, err := strconv.ParseFloat(part, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid texture coordinate value %v: %w", part, err)
		}
		texCoord = append(texCoord, float32(val))
	}
	return texCoord, nil
}

// objIndex turns a one based OBJ index into a zero based one. Negative
// indices count back from the last element read so far.
func objIndex(s string, count int) (int32, error) {
	i, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return -1, err
	}
	if i < 0 {
		return int32(count) + int32(i), nil
	}
	return int32(i - 1), nil
}

// parseFace parses the corners of an "f" line and triangulates quads and
// larger polygons as a fan around the first corner.
func parseFace(parts []string, vertices, texCoords, normals int) ([]FaceVertex, error) {
	if len(parts) < 3 {
		return nil, fmt.Errorf("face needs at least 3 vertices, got %d", len(parts))
	}
	face := make([]FaceVertex, 0, len(parts))
	for _, part := range parts {
		vals := strings.Split(part, "/")

		vertexIdx, err := objIndex(vals[0], vertices)
		if err != nil {
			return nil, fmt.Errorf("invalid vertex index %v: %w", vals[0], err)
		}

		texCoordIdx := int32(-1)
		if len(vals) > 1 && vals[1] != "" {
			if texCoordIdx, err = objIndex(vals[1], texCoords); err != nil {
				return nil, fmt.Errorf("invalid texture coordinate index %v: %w", vals[1], err)
			}
		}

		normalIdx := int32(-1)
		if len(vals) > 2 && vals[2] != "" {
			if normalIdx, err = objIndex(vals[2], normals); err != nil {
				return nil, fmt.Errorf("invalid normal index %v: %w", vals[2], err)
			}
		}

		face = append(face, FaceVertex{VertexIdx: vertexIdx, TexCoordIdx: texCoordIdx, NormalIdx: normalIdx})
	}

	if len(face) == 3 {
		return face, nil
	}
	triangulated := make([]FaceVertex, 0, (len(face)-2)*3)
	for i := 1; i < len(face)-1; i++ {
		triangulated = append(triangulated, face[0], face[i], face[i+1])
	}
	return triangulated, nil
}

// RecalculateNormals averages the face normals around each vertex.
func RecalculateNormals(vertices []float32, indices []uint32) []float32 {
	if len(vertices) == 0 || len(indices) == 0 {
		return nil
	}
	normals := make([]float32, len(vertices))
	n := uint32(len(vertices) / 3)

	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if a >= n || b >= n || c >= n {
			logger.Log.Warn("Index out of bounds while computing normals",
				zap.Uint32("a", a), zap.Uint32("b", b), zap.Uint32("c", c))
			continue
		}
		v0 := mgl32.Vec3{vertices[a*3], vertices[a*3+1], vertices[a*3+2]}
		v1 := mgl32.Vec3{vertices[b*3], vertices[b*3+1], vertices[b*3+2]}
		v2 := mgl32.Vec3{vertices[c*3], vertices[c*3+1], vertices[c*3+2]}
		normal := v1.Sub(v0).Cross(v2.Sub(v0))
		for _, idx := range [3]uint32{a, b, c} {
			for j := uint32(0); j < 3; j++ {
				normals[idx*3+j] += normal[j]
			}
		}
	}

	for i := 0; i+2 < len(normals); i += 3 {
		v := mgl32.Vec3{normals[i], normals[i+1], normals[i+2]}
		if l := v.Len(); l > 0 {
			v = v.Mul(1 / l)
		}
		normals[i], normals[i+1], normals[i+2] = v[0], v[1], v[2]
	}
	return normals
}
