package renderer

import (
	"github.com/g3n/engine/math32"
)

// FogExp2 fades to Color with factor 1 - exp(-(Density*depth)^2).
type FogExp2 struct {
	Color   *math32.Color
	Density float32
}

func NewFogExp2(hex uint, density float32) *FogExp2 {
	return &FogExp2{Color: math32.NewColorHex(hex), Density: density}
}

// Scene is the root of the graph. A nil Background clears to transparent black.
type Scene struct {
	Object3D
	Fog        *FogExp2
	Background *math32.Color
}

func NewScene() *Scene {
	s := &Scene{}
	s.Init(s)
	return s
}
