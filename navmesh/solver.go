package navmesh

import (
	"log/slog"
	"math"

	"route-finder/geometry"
)

// epsilonClearance is the floor applied to the configured minimum clearance
// and to the legs that leave the start or reach the goal
const epsilonClearance = 1e-3

// Solver answers shortest-path queries for an Agent against a Mesh
type Solver struct {
	mesh         *Mesh
	strategy     Strategy
	minClearance float64
	logger       *slog.Logger

	graph *visibilityGraph
}

// NewSolver creates a solver bound to mesh
func NewSolver(mesh *Mesh, options ...Option) *Solver {
	opts := newOptions(options)
	return &Solver{
		mesh:         mesh,
		strategy:     opts.Strategy,
		minClearance: math.Max(opts.MinClearance, epsilonClearance),
		logger:       opts.Logger,
	}
}

// Strategy returns the graph search in use
func (s *Solver) Strategy() Strategy {
	return s.strategy
}

// Clearance returns the distance paths keep from obstacles for an agent of
// the given radius
func (s *Solver) Clearance(radius float64) float64 {
	return math.Max(radius, s.minClearance)
}

// legClearance is the distance the first and last legs of a route keep from
// obstacles. Only corner waypoints are held to the minimum clearance, so an
// agent standing next to a wall can still leave along it.
func legClearance(radius float64) float64 {
	return math.Max(radius, epsilonClearance)
}

// FindPath computes a route for the agent from its current position to the
// destination. The result is a flat [x0,y0,x1,y1,...] array; it is empty when
// no route exists. Positions outside the mesh bounds are not validated.
func (s *Solver) FindPath(agent *Agent, destX, destY float64) []float64 {
	start := agent.Position()
	goal := geometry.Point{X: destX, Y: destY}
	if start == goal {
		return []float64{start.X, start.Y, goal.X, goal.Y}
	}

	query := &queryGraph{
		solver:    s,
		base:      s.visibility(s.Clearance(agent.Radius)),
		start:     start,
		goal:      goal,
		clearance: legClearance(agent.Radius),
	}

	ids, found := s.strategy.FindPath(query, startNode, goalNode)
	if !found {
		return []float64{}
	}

	path := make([]float64, 0, len(ids)*2)
	for _, id := range ids {
		p := query.Point(id)
		path = append(path, p.X, p.Y)
	}
	return path
}

// IsClear reports whether a disc of the given radius can slide in a straight
// line from a to b
func (s *Solver) IsClear(a, b geometry.Point, radius float64) bool {
	return s.segmentClear(a, b, s.Clearance(radius))
}

// visibility returns the cached graph for the current mesh generation and
// clearance, rebuilding it when either has changed
func (s *Solver) visibility(clearance float64) *visibilityGraph {
	if s.graph != nil && s.graph.generation == s.mesh.Generation() && s.graph.clearance == clearance {
		return s.graph
	}
	s.graph = s.buildVisibilityGraph(clearance)
	return s.graph
}

// pointClear reports whether p keeps the clearance from every obstacle
func (s *Solver) pointClear(p geometry.Point, clearance float64) bool {
	region := geometry.LineSegment{P1: p, P2: p}.Bound().Pad(clearance)
	for _, o := range s.mesh.index.queryRegion(region) {
		if o.Contains(p) {
			return false
		}
		for _, edge := range o.segments {
			if geometry.PointSegmentDistance(p, edge) < clearance {
				return false
			}
		}
	}
	return true
}

// segmentClear reports whether the segment a-b keeps the clearance from
// every obstacle and does not start, end or run inside a rectangle
func (s *Solver) segmentClear(a, b geometry.Point, clearance float64) bool {
	seg := geometry.LineSegment{P1: a, P2: b}
	mid := seg.Midpoint()
	for _, o := range s.mesh.index.queryRegion(seg.Bound().Pad(clearance)) {
		if o.Contains(a) || o.Contains(b) || o.Contains(mid) {
			return false
		}
		for _, edge := range o.segments {
			if geometry.SegmentDistance(seg, edge) < clearance {
				return false
			}
		}
	}
	return true
}
