package renderer

import (
	"math"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Geometry is indexed triangle (or line) data plus its GPU buffers. Buffers
// are created on first draw, so geometry can be built without a GL context.
type Geometry struct {
	Positions []float32 // xyz per vertex
	Normals   []float32 // xyz per vertex, may be empty
	UVs       []float32 // uv per vertex, may be empty
	Indices   []uint32  // may be empty for non-indexed draws

	BoundingSphereCenter mgl32.Vec3
	BoundingSphereRadius float32

	vao, vbo, ebo uint32
	uploaded      bool
	dirty         bool
	disposed      bool
}

func NewGeometry(positions, normals, uvs []float32, indices []uint32) *Geometry {
	g := &Geometry{
		Positions: positions,
		Normals:   normals,
		UVs:       uvs,
		Indices:   indices,
		dirty:     true,
	}
	g.ComputeBoundingSphere()
	return g
}

func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// MarkDirty schedules a re-upload of the vertex data before the next draw.
func (g *Geometry) MarkDirty() {
	g.dirty = true
}

// ApplyMatrix4 transforms positions as points and normals by the normal matrix.
func (g *Geometry) ApplyMatrix4(m mgl32.Mat4) *Geometry {
	for i := 0; i+2 < len(g.Positions); i += 3 {
		p := m.Mul4x1(mgl32.Vec4{g.Positions[i], g.Positions[i+1], g.Positions[i+2], 1})
		g.Positions[i], g.Positions[i+1], g.Positions[i+2] = p[0], p[1], p[2]
	}

	normalMatrix := m.Mat3().Inv().Transpose()
	for i := 0; i+2 < len(g.Normals); i += 3 {
		n := normalMatrix.Mul3x1(mgl32.Vec3{g.Normals[i], g.Normals[i+1], g.Normals[i+2]})
		if n.Len() > 0 {
			n = n.Normalize()
		}
		g.Normals[i], g.Normals[i+1], g.Normals[i+2] = n[0], n[1], n[2]
	}

	g.ComputeBoundingSphere()
	g.dirty = true
	return g
}

func (g *Geometry) Translate(x, y, z float32) *Geometry {
	return g.ApplyMatrix4(mgl32.Translate3D(x, y, z))
}

func (g *Geometry) RotateX(angle float32) *Geometry {
	return g.ApplyMatrix4(mgl32.HomogRotate3DX(angle))
}

func (g *Geometry) ComputeBoundingSphere() {
	n := g.VertexCount()
	if n == 0 {
		g.BoundingSphereCenter = mgl32.Vec3{}
		g.BoundingSphereRadius = 0
		return
	}

	minV := mgl32.Vec3{g.Positions[0], g.Positions[1], g.Positions[2]}
	maxV := minV
	for i := 1; i < n; i++ {
		for a := 0; a < 3; a++ {
			v := g.Positions[i*3+a]
			if v < minV[a] {
				minV[a] = v
			}
			if v > maxV[a] {
				maxV[a] = v
			}
		}
	}
	center := minV.Add(maxV).Mul(0.5)

	var maxDistanceSq float32
	for i := 0; i < n; i++ {
		v := mgl32.Vec3{g.Positions[i*3], g.Positions[i*3+1], g.Positions[i*3+2]}
		if d := v.Sub(center).LenSqr(); d > maxDistanceSq {
			maxDistanceSq = d
		}
	}

	g.BoundingSphereCenter = center
	g.BoundingSphereRadius = float32(math.Sqrt(float64(maxDistanceSq)))
}

// ComputeVertexNormals averages face normals into smooth per-vertex normals.
func (g *Geometry) ComputeVertexNormals() {
	normals := make([]float32, len(g.Positions))

	addFace := func(a, b, c uint32) {
		v0 := mgl32.Vec3{g.Positions[a*3], g.Positions[a*3+1], g.Positions[a*3+2]}
		v1 := mgl32.Vec3{g.Positions[b*3], g.Positions[b*3+1], g.Positions[b*3+2]}
		v2 := mgl32.Vec3{g.Positions[c*3], g.Positions[c*3+1], g.Positions[c*3+2]}
		faceNormal := v1.Sub(v0).Cross(v2.Sub(v0))
		for _, idx := range [3]uint32{a, b, c} {
			normals[idx*3] += faceNormal[0]
			normals[idx*3+1] += faceNormal[1]
			normals[idx*3+2] += faceNormal[2]
		}
	}

	if len(g.Indices) > 0 {
		for i := 0; i+2 < len(g.Indices); i += 3 {
			addFace(g.Indices[i], g.Indices[i+1], g.Indices[i+2])
		}
	} else {
		for i := uint32(0); int(i)+2 < g.VertexCount(); i += 3 {
			addFace(i, i+1, i+2)
		}
	}

	for i := 0; i+2 < len(normals); i += 3 {
		n := mgl32.Vec3{normals[i], normals[i+1], normals[i+2]}
		if n.Len() > 0 {
			n = n.Normalize()
		}
		normals[i], normals[i+1], normals[i+2] = n[0], n[1], n[2]
	}

	g.Normals = normals
	g.dirty = true
}

func (g *Geometry) Disposed() bool {
	return g.disposed
}

// Dispose frees the GPU buffers. The CPU-side data is left untouched.
func (g *Geometry) Dispose() {
	if g.uploaded {
		gl.DeleteVertexArrays(1, &g.vao)
		gl.DeleteBuffers(1, &g.vbo)
		if g.ebo != 0 {
			gl.DeleteBuffers(1, &g.ebo)
		}
		g.vao, g.vbo, g.ebo = 0, 0, 0
		g.uploaded = false
	}
	g.disposed = true
}

func (g *Geometry) interleave() []float32 {
	n := g.VertexCount()
	data := make([]float32, 0, n*8)
	for i := 0; i < n; i++ {
		data = append(data, g.Positions[i*3], g.Positions[i*3+1], g.Positions[i*3+2])
		if len(g.UVs) >= (i+1)*2 {
			data = append(data, g.UVs[i*2], g.UVs[i*2+1])
		} else {
			data = append(data, 0, 0)
		}
		if len(g.Normals) >= (i+1)*3 {
			data = append(data, g.Normals[i*3], g.Normals[i*3+1], g.Normals[i*3+2])
		} else {
			data = append(data, 0, 1, 0)
		}
	}
	return data
}

// bind uploads the buffers if needed and binds the vertex array.
func (g *Geometry) bind() {
	if !g.uploaded {
		gl.GenVertexArrays(1, &g.vao)
		gl.GenBuffers(1, &g.vbo)
		if len(g.Indices) > 0 {
			gl.GenBuffers(1, &g.ebo)
		}
		g.uploaded = true
		g.disposed = false
		g.dirty = true
	}

	gl.BindVertexArray(g.vao)
	if !g.dirty {
		return
	}

	data := g.interleave()
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	if len(data) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.DYNAMIC_DRAW)
	}

	if g.ebo != 0 && len(g.Indices) > 0 {
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(g.Indices)*4, gl.Ptr(g.Indices), gl.STATIC_DRAW)
	}

	stride := int32(8 * 4)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)

	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)

	gl.VertexAttribPointer(2, 3, gl.FLOAT, false, stride, gl.PtrOffset(5*4))
	gl.EnableVertexAttribArray(2)

	g.dirty = false
}

func (g *Geometry) draw(mode uint32) {
	g.bind()
	if len(g.Indices) > 0 {
		gl.DrawElements(mode, int32(len(g.Indices)), gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(mode, 0, int32(g.VertexCount()))
	}
	gl.BindVertexArray(0)
}

// NewConeGeometry builds a cone along Y with its apex at +height/2 and its
// base at -height/2.
func NewConeGeometry(radius, height float32, radialSegments, heightSegments int, openEnded bool, thetaStart, thetaLength float64) *Geometry {
	if radialSegments < 3 {
		radialSegments = 3
	}
	if heightSegments < 1 {
		heightSegments = 1
	}

	var (
		positions, normals, uvs []float32
		indices                 []uint32
		index                   uint32
	)
	halfHeight := height / 2
	const radiusTop = 0
	radiusBottom := radius
	slope := (radiusBottom - radiusTop) / height

	rows := make([][]uint32, 0, heightSegments+1)
	for y := 0; y <= heightSegments; y++ {
		row := make([]uint32, 0, radialSegments+1)
		v := float32(y) / float32(heightSegments)
		r := v*(radiusBottom-radiusTop) + radiusTop

		for x := 0; x <= radialSegments; x++ {
			u := float64(x) / float64(radialSegments)
			theta := u*thetaLength + thetaStart
			sin, cos := float32(math.Sin(theta)), float32(math.Cos(theta))

			positions = append(positions, r*sin, -v*height+halfHeight, r*cos)
			n := mgl32.Vec3{sin, slope, cos}.Normalize()
			normals = append(normals, n[0], n[1], n[2])
			uvs = append(uvs, float32(u), 1-v)

			row = append(row, index)
			index++
		}
		rows = append(rows, row)
	}

	for x := 0; x < radialSegments; x++ {
		for y := 0; y < heightSegments; y++ {
			a := rows[y][x]
			b := rows[y+1][x]
			c := rows[y+1][x+1]
			d := rows[y][x+1]
			if y != 0 {
				indices = append(indices, a, b, d)
			}
			indices = append(indices, b, c, d)
		}
	}

	if !openEnded && radiusBottom > 0 {
		centerStart := index
		for x := 1; x <= radialSegments; x++ {
			positions = append(positions, 0, -halfHeight, 0)
			normals = append(normals, 0, -1, 0)
			uvs = append(uvs, 0.5, 0.5)
			index++
		}
		ringStart := index
		for x := 0; x <= radialSegments; x++ {
			u := float64(x) / float64(radialSegments)
			theta := u*thetaLength + thetaStart
			sin, cos := float32(math.Sin(theta)), float32(math.Cos(theta))
			positions = append(positions, radiusBottom*sin, -halfHeight, radiusBottom*cos)
			normals = append(normals, 0, -1, 0)
			uvs = append(uvs, cos*0.5+0.5, -sin*0.5+0.5)
			index++
		}
		for x := uint32(0); x < uint32(radialSegments); x++ {
			c := centerStart + x
			i := ringStart + x
			indices = append(indices, i+1, i, c)
		}
	}

	return NewGeometry(positions, normals, uvs, indices)
}

// NewCircleGeometry builds a disc in the XY plane facing +Z.
func NewCircleGeometry(radius float32, segments int) *Geometry {
	if segments < 3 {
		segments = 3
	}

	positions := []float32{0, 0, 0}
	normals := []float32{0, 0, 1}
	uvs := []float32{0.5, 0.5}
	indices := make([]uint32, 0, segments*3)

	for s := 0; s <= segments; s++ {
		theta := float64(s) / float64(segments) * 2 * math.Pi
		x := radius * float32(math.Cos(theta))
		y := radius * float32(math.Sin(theta))
		positions = append(positions, x, y, 0)
		normals = append(normals, 0, 0, 1)
		uvs = append(uvs, (x/radius+1)/2, (y/radius+1)/2)
	}
	for i := uint32(1); i <= uint32(segments); i++ {
		indices = append(indices, i, i+1, 0)
	}

	return NewGeometry(positions, normals, uvs, indices)
}
