package walkable

import (
	"slices"
	"time"

	"route-finder/navmesh"
	"route-finder/scene"
)

// queryKey identifies a path query. The mesh generation is part of the key so
// any obstacle change invalidates the cached result.
type queryKey struct {
	startX, startY float64
	endX, endY     float64
	radius         float64
	generation     uint64
}

// PathQuerySession runs path queries for one controlled agent and remembers
// the last result, so callers that fire on every pointer move do not repeat
// identical searches.
type PathQuerySession struct {
	mesh     *navmesh.Mesh
	solver   *navmesh.Solver
	geo      scene.Geometry
	agent    *navmesh.Agent
	observer Observer

	key    queryKey
	path   Path
	cached bool
}

// NewPathQuerySession creates a session over the solver's mesh
func NewPathQuerySession(mesh *navmesh.Mesh, solver *navmesh.Solver, geo scene.Geometry, observer Observer) *PathQuerySession {
	if observer == nil {
		observer = nopObserver{}
	}
	return &PathQuerySession{
		mesh:     mesh,
		solver:   solver,
		geo:      geo,
		agent:    &navmesh.Agent{},
		observer: observer,
	}
}

// FindPath returns the route for a disc of the given radius from start to
// end. With snapToGrid the destination is moved to its grid cell centre
// first. The result is empty when no route exists.
func (s *PathQuerySession) FindPath(startX, startY, endX, endY, radius float64, snapToGrid bool) Path {
	began := time.Now()

	s.agent.Radius = radius
	s.agent.X = startX
	s.agent.Y = startY

	if snapToGrid {
		endX, endY = s.geo.Center(endX, endY)
	}

	key := queryKey{
		startX: startX, startY: startY,
		endX: endX, endY: endY,
		radius:     radius,
		generation: s.mesh.Generation(),
	}
	if s.cached && key == s.key {
		s.observer.PathQuery(s.solver.Strategy().Name(), true, s.path.Reachable(), time.Since(began))
		return slices.Clone(s.path)
	}

	s.path = s.solver.FindPath(s.agent, endX, endY)
	s.key = key
	s.cached = true

	s.observer.PathQuery(s.solver.Strategy().Name(), false, s.path.Reachable(), time.Since(began))
	return slices.Clone(s.path)
}

// Invalidate drops the remembered result
func (s *PathQuerySession) Invalidate() {
	s.cached = false
	s.path = nil
}

// Agent returns the shared agent the session mutates on every query
func (s *PathQuerySession) Agent() *navmesh.Agent {
	return s.agent
}
