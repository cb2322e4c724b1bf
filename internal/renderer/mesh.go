package renderer

import (
	"github.com/g3n/engine/math32"
)

type Mesh struct {
	Object3D
	Geometry      *Geometry
	Material      *Material
	CastShadow    bool
	ReceiveShadow bool
}

func NewMesh(geometry *Geometry, material *Material) *Mesh {
	m := &Mesh{Geometry: geometry, Material: material}
	m.Init(m)
	return m
}

// LineSegments draws every consecutive pair of positions as one line.
type LineSegments struct {
	Object3D
	Geometry *Geometry
	Color    *math32.Color
}

func NewLineSegments(geometry *Geometry, hex uint) *LineSegments {
	l := &LineSegments{Geometry: geometry, Color: math32.NewColorHex(hex)}
	l.Init(l)
	return l
}
