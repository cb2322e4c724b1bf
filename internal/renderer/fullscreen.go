package renderer

import "github.com/go-gl/gl/v4.1-core/gl"

// FullScreenQuad is a clip-space quad for post-processing. Its UVs run from
// (0,0) bottom left to (1,1) top right.
type FullScreenQuad struct {
	geometry *Geometry
}

func NewFullScreenQuad() *FullScreenQuad {
	positions := []float32{
		-1, -1, 0,
		1, -1, 0,
		1, 1, 0,
		-1, 1, 0,
	}
	uvs := []float32{0, 0, 1, 0, 1, 1, 0, 1}
	indices := []uint32{0, 1, 2, 0, 2, 3}
	return &FullScreenQuad{geometry: NewGeometry(positions, nil, uvs, indices)}
}

// Render draws the quad into the current framebuffer with whatever program is
// in use.
func (q *FullScreenQuad) Render() {
	gl.Disable(gl.DEPTH_TEST)
	gl.DepthMask(false)
	gl.Disable(gl.CULL_FACE)
	q.geometry.draw(gl.TRIANGLES)
	gl.DepthMask(true)
}

func (q *FullScreenQuad) Dispose() {
	q.geometry.Dispose()
}
