package renderer

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConeGeometryBounds(t *testing.T) {
	g := NewConeGeometry(1, 1, 16, 1, false, 0, 2*math.Pi)

	minY, maxY := float32(math.MaxFloat32), float32(-math.MaxFloat32)
	for i := 1; i < len(g.Positions); i += 3 {
		if g.Positions[i] < minY {
			minY = g.Positions[i]
		}
		if g.Positions[i] > maxY {
			maxY = g.Positions[i]
		}
	}
	assert.InDelta(t, -0.5, minY, 1e-6)
	assert.InDelta(t, 0.5, maxY, 1e-6)
	assert.Equal(t, len(g.Positions), len(g.Normals))
	assert.Zero(t, len(g.Indices)%3)
}

func TestConeGeometryOpenEnded(t *testing.T) {
	closed := NewConeGeometry(1, 1, 8, 1, false, 0, 2*math.Pi)
	open := NewConeGeometry(1, 1, 8, 1, true, 0, 2*math.Pi)

	assert.Greater(t, closed.VertexCount(), open.VertexCount())
	assert.Equal(t, 8*3, len(open.Indices))
}

func TestHelperConeTransformPutsApexAtOrigin(t *testing.T) {
	g := NewConeGeometry(1, 1, 32, 1, false, 0, 2*math.Pi).
		Translate(0, -0.5, 0).
		RotateX(-math.Pi / 2)

	var apexFound bool
	for i := 0; i+2 < len(g.Positions); i += 3 {
		p := mgl32.Vec3{g.Positions[i], g.Positions[i+1], g.Positions[i+2]}
		if p.Len() < 1e-5 {
			apexFound = true
		}
		assert.GreaterOrEqual(t, p.Z(), float32(-1e-5))
		assert.LessOrEqual(t, p.Z(), float32(1+1e-5))
	}
	assert.True(t, apexFound)
	// Base of unit radius one unit down +Z
	assert.InDelta(t, 0.5, g.BoundingSphereCenter.Z(), 1e-4)
}

func TestCircleGeometry(t *testing.T) {
	g := NewCircleGeometry(50, 254)

	require.Equal(t, 254+2, g.VertexCount())
	assert.Len(t, g.Indices, 254*3)
	assert.InDelta(t, 50, g.BoundingSphereRadius, 1e-3)

	g.RotateX(-math.Pi / 2)
	vecNear(t, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{g.Normals[0], g.Normals[1], g.Normals[2]})
}

func TestComputeVertexNormals(t *testing.T) {
	g := NewGeometry([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, nil, nil, []uint32{0, 1, 2})
	g.ComputeVertexNormals()

	require.Len(t, g.Normals, 9)
	for i := 0; i < 3; i++ {
		vecNear(t, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{g.Normals[i*3], g.Normals[i*3+1], g.Normals[i*3+2]})
	}
}

func TestInterleaveFillsMissingAttributes(t *testing.T) {
	g := NewGeometry([]float32{1, 2, 3}, nil, nil, nil)
	assert.Equal(t, []float32{1, 2, 3, 0, 0, 0, 1, 0}, g.interleave())
}

func TestDisposeWithoutUpload(t *testing.T) {
	g := NewCircleGeometry(1, 8)
	g.Dispose()
	assert.True(t, g.Disposed())
}
