package renderer

import (
	"github.com/g3n/engine/math32"
)

type MaterialKind int

const (
	// StandardMaterial is lit (ambient + spot lights), shadowed and fogged.
	StandardMaterial MaterialKind = iota
	// BasicMaterial is unlit flat color.
	BasicMaterial
)

type Blending int

const (
	NormalBlending Blending = iota
	AdditiveBlending
)

type Material struct {
	// HOT DATA - read for every draw
	Kind        MaterialKind
	Color       *math32.Color
	Emissive    *math32.Color
	Opacity     float32
	Metalness   float32
	Roughness   float32
	Transparent bool
	Blending    Blending
	DoubleSided bool
	DepthTest   bool
	DepthWrite  bool
	Fog         bool
	ToneMapped  bool

	// COLD DATA
	Name     string
	disposed bool
}

func newMaterial(kind MaterialKind, hex uint) *Material {
	return &Material{
		Kind:       kind,
		Color:      math32.NewColorHex(hex),
		Emissive:   math32.NewColorHex(0x000000),
		Opacity:    1,
		Roughness:  1,
		DepthTest:  true,
		DepthWrite: true,
		Fog:        true,
		ToneMapped: true,
	}
}

func NewStandardMaterial(hex uint) *Material {
	return newMaterial(StandardMaterial, hex)
}

func NewBasicMaterial(hex uint) *Material {
	return newMaterial(BasicMaterial, hex)
}

func (m *Material) Disposed() bool {
	return m.disposed
}

// Dispose marks the material as released. Programs are shared per kind, so
// there is no per-material GPU state to free.
func (m *Material) Dispose() {
	m.disposed = true
}
