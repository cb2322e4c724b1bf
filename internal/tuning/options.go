// Package tuning drives the three floodlights from one shared set of debug
// values and draws the panel that edits them.
package tuning

import (
	"math"
)

// Options are the values the panel edits. They are only ever written to the
// lights, never read back from them.
type Options struct {
	Height    float32 `json:"height"`
	Radius    float32 `json:"radius"`
	Angle     float32 `json:"angle"`
	Penumbra  float32 `json:"penumbra"`
	Decay     float32 `json:"decay"`
	Distance  float32 `json:"distance"`
	Intensity float32 `json:"intensity"`
}

func DefaultOptions() Options {
	return Options{
		Height:    12,
		Radius:    4,
		Angle:     0.25,
		Penumbra:  1,
		Decay:     0,
		Distance:  50,
		Intensity: 10,
	}
}

// Range is a slider's bounds and snapping step.
type Range struct {
	Min, Max, Step float32
}

var (
	HeightRange    = Range{0, 100, 0.1}
	RadiusRange    = Range{0, 50, 0.1}
	AngleRange     = Range{0, math.Pi / 2, math.Pi / 200}
	PenumbraRange  = Range{0, 1, 0.01}
	DecayRange     = Range{0, 10, 0.01}
	DistanceRange  = Range{0, 50, 0.01}
	IntensityRange = Range{0, 100, 1}
	ExposureRange  = Range{0, 10, 0.01}
)

// Snap clamps v to the range and rounds it to the nearest step above Min.
func (r Range) Snap(v float32) float32 {
	if v < r.Min {
		v = r.Min
	}
	if v > r.Max {
		v = r.Max
	}
	if r.Step <= 0 {
		return v
	}
	steps := math.Round(float64((v - r.Min) / r.Step))
	snapped := r.Min + float32(steps)*r.Step
	if snapped > r.Max {
		snapped = r.Max
	}
	return snapped
}
