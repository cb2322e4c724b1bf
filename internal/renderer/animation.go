package renderer

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

type TrackPath int

const (
	TrackTranslation TrackPath = iota
	TrackRotation
	TrackScale
)

type Interpolation int

const (
	InterpolateLinear Interpolation = iota
	InterpolateStep
)

// KeyframeTrack animates one TRS property of one node. Values holds 3
// floats per key for translation/scale and 4 (x, y, z, w) for rotation.
type KeyframeTrack struct {
	Node          *Object3D
	Path          TrackPath
	Times         []float32
	Values        []float32
	Interpolation Interpolation
}

func (t *KeyframeTrack) stride() int {
	if t.Path == TrackRotation {
		return 4
	}
	return 3
}

// Apply writes the sampled value at time into the target node.
func (t *KeyframeTrack) Apply(time float32) {
	if t.Node == nil || len(t.Times) == 0 {
		return
	}
	stride := t.stride()

	i := sort.Search(len(t.Times), func(i int) bool { return t.Times[i] > time })
	switch {
	case i == 0:
		t.set(t.Values[:stride])
		return
	case i >= len(t.Times):
		last := len(t.Times) - 1
		t.set(t.Values[last*stride : (last+1)*stride])
		return
	}

	prev, next := i-1, i
	a := t.Values[prev*stride : (prev+1)*stride]
	b := t.Values[next*stride : (next+1)*stride]
	if t.Interpolation == InterpolateStep {
		t.set(a)
		return
	}

	span := t.Times[next] - t.Times[prev]
	alpha := float32(0)
	if span > 0 {
		alpha = (time - t.Times[prev]) / span
	}

	if t.Path == TrackRotation {
		qa := mgl32.Quat{W: a[3], V: mgl32.Vec3{a[0], a[1], a[2]}}
		qb := mgl32.Quat{W: b[3], V: mgl32.Vec3{b[0], b[1], b[2]}}
		q := mgl32.QuatSlerp(qa, qb, alpha)
		t.Node.Rotation = q.Normalize()
		return
	}

	var v [3]float32
	for k := 0; k < 3; k++ {
		v[k] = a[k] + (b[k]-a[k])*alpha
	}
	t.set(v[:])
}

func (t *KeyframeTrack) set(v []float32) {
	switch t.Path {
	case TrackTranslation:
		t.Node.Position = mgl32.Vec3{v[0], v[1], v[2]}
	case TrackScale:
		t.Node.Scale = mgl32.Vec3{v[0], v[1], v[2]}
	case TrackRotation:
		t.Node.Rotation = mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}.Normalize()
	}
}

type AnimationClip struct {
	Name     string
	Duration float32
	Tracks   []*KeyframeTrack
}

// ResetDuration sets Duration to the last key time over all tracks.
func (c *AnimationClip) ResetDuration() {
	var d float32
	for _, t := range c.Tracks {
		if n := len(t.Times); n > 0 && t.Times[n-1] > d {
			d = t.Times[n-1]
		}
	}
	c.Duration = d
}

// AnimationAction plays one clip on a mixer, looping by default.
type AnimationAction struct {
	Clip      *AnimationClip
	Time      float32
	TimeScale float32
	Loop      bool
	running   bool
}

func (a *AnimationAction) Play() *AnimationAction {
	a.running = true
	return a
}

func (a *AnimationAction) Stop() *AnimationAction {
	a.running = false
	a.Time = 0
	return a
}

func (a *AnimationAction) IsRunning() bool {
	return a.running
}

func (a *AnimationAction) advance(delta float32) {
	if !a.running {
		return
	}
	a.Time += delta * a.TimeScale

	d := a.Clip.Duration
	if d <= 0 {
		a.Time = 0
		return
	}
	if a.Loop {
		a.Time = wrapTime(a.Time, d)
	} else if a.Time > d {
		a.Time = d
		a.running = false
	}
}

// wrapTime folds t into [0, d) in one step, whatever the size of t.
func wrapTime(t, d float32) float32 {
	w := float32(math.Mod(float64(t), float64(d)))
	if w < 0 {
		w += d
	}
	if w >= d {
		w = 0
	}
	return w
}

type AnimationMixer struct {
	Root    *Object3D
	Time    float32
	actions []*AnimationAction
}

func NewAnimationMixer(root *Object3D) *AnimationMixer {
	return &AnimationMixer{Root: root}
}

// ClipAction returns the action for clip, creating it on first use.
func (m *AnimationMixer) ClipAction(clip *AnimationClip) *AnimationAction {
	for _, a := range m.actions {
		if a.Clip == clip {
			return a
		}
	}
	a := &AnimationAction{Clip: clip, TimeScale: 1, Loop: true}
	m.actions = append(m.actions, a)
	return a
}

// Update advances every running action by delta seconds and applies it.
func (m *AnimationMixer) Update(delta float32) {
	m.Time += delta
	for _, a := range m.actions {
		if !a.running {
			continue
		}
		a.advance(delta)
		for _, t := range a.Clip.Tracks {
			t.Apply(a.Time)
		}
	}
}
