// Package compositing renders the light cones into a bloom buffer on their
// own and mixes that buffer over the normally lit scene.
package compositing

import (
	"Floodlight/internal/renderer"
)

// Partition splits the scene's meshes into the ones that glow ("flood") and
// everything else. It is computed once from the scene; meshes that arrive
// later go through Register.
type Partition struct {
	flood    map[*renderer.Mesh]struct{}
	other    map[*renderer.Mesh]struct{}
	otherSeq []*renderer.Mesh
}

// NewPartition walks root and puts every mesh found in flood into the flood
// set and every other mesh into the other set. Flood meshes that are not in
// the scene are still tracked as flood.
func NewPartition(root renderer.Node, flood ...*renderer.Mesh) *Partition {
	p := &Partition{
		flood: make(map[*renderer.Mesh]struct{}, len(flood)),
		other: make(map[*renderer.Mesh]struct{}),
	}
	for _, m := range flood {
		p.flood[m] = struct{}{}
	}
	p.Register(root)
	return p
}

// Register adds every mesh under root that is not already known to the
// other set and returns how many were added.
func (p *Partition) Register(root renderer.Node) int {
	added := 0
	root.Object().Traverse(func(n renderer.Node) {
		m, ok := n.(*renderer.Mesh)
		if !ok || p.Contains(m) {
			return
		}
		p.other[m] = struct{}{}
		p.otherSeq = append(p.otherSeq, m)
		added++
	})
	return added
}

func (p *Partition) IsFlood(m *renderer.Mesh) bool {
	_, ok := p.flood[m]
	return ok
}

func (p *Partition) IsOther(m *renderer.Mesh) bool {
	_, ok := p.other[m]
	return ok
}

func (p *Partition) Contains(m *renderer.Mesh) bool {
	return p.IsFlood(m) || p.IsOther(m)
}

// Other returns the non-glowing meshes in registration order.
func (p *Partition) Other() []*renderer.Mesh {
	return p.otherSeq
}

func (p *Partition) FloodCount() int {
	return len(p.flood)
}
