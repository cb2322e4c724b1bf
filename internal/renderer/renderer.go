package renderer

import (
	"fmt"
	"strings"
)

// MaxSpotLights is the number of spot lights the mesh shader evaluates.
const MaxSpotLights = 4

type ToneMapping int32

const (
	NoToneMapping ToneMapping = iota
	LinearToneMapping
	ReinhardToneMapping
	CineonToneMapping
	ACESFilmicToneMapping
)

// ToneMappingNames is in enum order so the value doubles as a combo index.
var ToneMappingNames = []string{"No", "Linear", "Reinhard", "Cineon", "ACESFilmic"}

func (t ToneMapping) String() string {
	if t < 0 || int(t) >= len(ToneMappingNames) {
		return fmt.Sprintf("ToneMapping(%d)", int32(t))
	}
	return ToneMappingNames[t]
}

// ParseToneMapping accepts the operator names case-insensitively.
func ParseToneMapping(name string) (ToneMapping, error) {
	for i, n := range ToneMappingNames {
		if strings.EqualFold(n, name) {
			return ToneMapping(i), nil
		}
	}
	return NoToneMapping, fmt.Errorf("unknown tone mapping %q", name)
}

type RenderInfo struct {
	Frame     uint64
	Calls     int
	Triangles int
	Lines     int
}

// Render is the surface the post-processing passes draw through.
type Render interface {
	Render(scene *Scene, camera *PerspectiveCamera)
	SetRenderTarget(target *RenderTarget)
	RenderTarget() *RenderTarget
	Clear()
	AutoClear() bool
	SetAutoClear(autoClear bool)
	DrawingBufferSize() (int32, int32)
	PixelRatio() float32
	Size() (int32, int32)
}
