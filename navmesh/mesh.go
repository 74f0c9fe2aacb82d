// Package navmesh implements a radius-aware shortest path search over the free
// space of a rectangular scene. Obstacles are lines and rectangles inserted
// into a Mesh; a Solver answers queries for a disc-shaped Agent by searching a
// visibility graph built around the obstacle corners.
//
// Neither Mesh nor Solver is safe for concurrent use. Callers that share them
// between goroutines must serialise access.
package navmesh

import (
	"log/slog"
	"sort"

	"route-finder/geometry"
)

// Bounds is the size of the scene in pixels
type Bounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether p lies inside the bounds shrunk by margin on every side
func (b Bounds) Contains(p geometry.Point, margin float64) bool {
	return p.X >= margin && p.X <= b.Width-margin &&
		p.Y >= margin && p.Y <= b.Height-margin
}

// Agent is the disc moving through the mesh. A single instance is reused
// across queries and mutated in place.
type Agent struct {
	Radius float64
	X      float64
	Y      float64
}

// Position returns the agent centre
func (a *Agent) Position() geometry.Point {
	return geometry.Point{X: a.X, Y: a.Y}
}

// Mesh owns the obstacles of one scene
type Mesh struct {
	bounds     Bounds
	index      *spatialIndex
	obstacles  map[*Obstacle]struct{}
	generation uint64
	nextSeq    uint64
	logger     *slog.Logger
}

// NewMesh creates an empty mesh covering the given scene bounds
func NewMesh(bounds Bounds, options ...Option) *Mesh {
	opts := newOptions(options)
	return &Mesh{
		bounds:    bounds,
		index:     newSpatialIndex(),
		obstacles: make(map[*Obstacle]struct{}),
		logger:    opts.Logger,
	}
}

// Bounds returns the scene bounds the mesh was created with
func (m *Mesh) Bounds() Bounds {
	return m.bounds
}

// Insert adds the obstacle and returns it as the handle for later removal.
// Inserting a handle that is already present does nothing.
func (m *Mesh) Insert(o *Obstacle) *Obstacle {
	if _, exists := m.obstacles[o]; exists {
		return o
	}
	m.nextSeq++
	o.seq = m.nextSeq
	m.obstacles[o] = struct{}{}
	m.index.insert(o)
	m.generation++
	m.logger.Debug("obstacle inserted",
		slog.String("id", o.ID),
		slog.String("kind", o.Kind.String()),
		slog.Int("obstacles", len(m.obstacles)))
	return o
}

// Remove deletes the obstacle. It reports false when the handle is unknown,
// in which case the mesh is left untouched.
func (m *Mesh) Remove(o *Obstacle) bool {
	if o == nil {
		return false
	}
	if _, exists := m.obstacles[o]; !exists {
		return false
	}
	delete(m.obstacles, o)
	m.index.remove(o)
	m.generation++
	m.logger.Debug("obstacle removed",
		slog.String("id", o.ID),
		slog.String("kind", o.Kind.String()),
		slog.Int("obstacles", len(m.obstacles)))
	return true
}

// Len returns the number of obstacles in the mesh
func (m *Mesh) Len() int {
	return len(m.obstacles)
}

// Generation increases on every successful Insert or Remove. Cached query
// results stamped with an older generation are stale.
func (m *Mesh) Generation() uint64 {
	return m.generation
}

// Obstacles returns every obstacle currently in the mesh in insertion order
func (m *Mesh) Obstacles() []*Obstacle {
	out := make([]*Obstacle, 0, len(m.obstacles))
	for o := range m.obstacles {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}
