package navmesh

import (
	"log/slog"
	"math"

	"route-finder/geometry"
)

const (
	// candidateMargin pushes corner waypoints slightly beyond the clearance
	// disc so edges between neighbouring waypoints stay traversable.
	candidateMargin = 1.01

	// candidateSides is the number of waypoints placed around each corner.
	// Sixteen keeps them within 3% of the clearance disc.
	candidateSides = 16

	// largeGraphNodes is the size above which a build is logged as a warning
	largeGraphNodes = 1000

	startNode = 0
	goalNode  = 1
	firstNode = 2
)

// visibilityGraph holds the waypoints around every obstacle corner for one
// mesh generation and clearance. Edges between waypoints are computed on
// first use and kept for the lifetime of the graph.
type visibilityGraph struct {
	generation uint64
	clearance  float64
	nodes      []geometry.Point
	edges      map[int][]Edge
}

// buildVisibilityGraph places candidate waypoints around the corners of all
// obstacles, keeping the ones an agent with the given clearance can stand on.
// Corners too close together for their rings to leave room get extra
// waypoints along the line through the middle of the gap between them.
func (s *Solver) buildVisibilityGraph(clearance float64) *visibilityGraph {
	graph := &visibilityGraph{
		generation: s.mesh.Generation(),
		clearance:  clearance,
		edges:      make(map[int][]Edge),
	}

	seen := make(map[geometry.Point]bool)
	add := func(candidate geometry.Point) {
		if seen[candidate] {
			return
		}
		seen[candidate] = true
		if !s.mesh.bounds.Contains(candidate, clearance) {
			return
		}
		if !s.pointClear(candidate, clearance) {
			return
		}
		graph.nodes = append(graph.nodes, candidate)
	}

	ring := clearance * candidateMargin / math.Cos(math.Pi/candidateSides)
	obstacles := s.mesh.Obstacles()
	totalVertices := 0
	gaps := 0
	for _, o := range obstacles {
		for _, vertex := range o.Vertices() {
			totalVertices++
			for _, candidate := range geometry.CircumscribedPolygon(vertex, clearance*candidateMargin, candidateSides) {
				add(candidate)
			}
			for _, other := range s.nearbyVertices(vertex, 2*ring) {
				for _, candidate := range gapCandidates(vertex, other, ring) {
					add(candidate)
				}
				gaps++
			}
		}
	}

	attrs := []any{
		slog.Int("obstacles", len(obstacles)),
		slog.Int("vertices", totalVertices),
		slog.Int("gaps", gaps/2),
		slog.Int("nodes", len(graph.nodes)),
		slog.Float64("clearance", clearance),
		slog.Uint64("generation", graph.generation),
	}
	if len(graph.nodes) > largeGraphNodes {
		s.logger.Warn("large visibility graph, queries may be slow", attrs...)
	} else {
		s.logger.Debug("visibility graph built", attrs...)
	}

	return graph
}

// nearbyVertices returns the obstacle vertices other than p within reach of it
func (s *Solver) nearbyVertices(p geometry.Point, reach float64) []geometry.Point {
	region := geometry.LineSegment{P1: p, P2: p}.Bound().Pad(reach)
	var found []geometry.Point
	for _, o := range s.mesh.index.queryRegion(region) {
		for _, v := range o.Vertices() {
			if v != p && v.Distance(p) <= reach {
				found = append(found, v)
			}
		}
	}
	return found
}

// gapCandidates returns waypoints on the perpendicular bisector of a-b: the
// midpoint and two steps of the given size to either side of it
func gapCandidates(a, b geometry.Point, step float64) []geometry.Point {
	d := a.Distance(b)
	mid := geometry.LineSegment{P1: a, P2: b}.Midpoint()
	nx, ny := -(b.Y-a.Y)/d, (b.X-a.X)/d
	points := []geometry.Point{mid}
	for _, k := range []float64{1, 2} {
		points = append(points,
			geometry.Point{X: mid.X + nx*step*k, Y: mid.Y + ny*step*k},
			geometry.Point{X: mid.X - nx*step*k, Y: mid.Y - ny*step*k})
	}
	return points
}

// staticEdges returns the edges from waypoint i to every waypoint it can see
func (s *Solver) staticEdges(graph *visibilityGraph, i int) []Edge {
	if edges, ok := graph.edges[i]; ok {
		return edges
	}

	from := graph.nodes[i]
	edges := make([]Edge, 0)
	for j, to := range graph.nodes {
		if i == j {
			continue
		}
		if s.segmentClear(from, to, graph.clearance) {
			edges = append(edges, Edge{To: j + firstNode, Cost: from.Distance(to)})
		}
	}
	graph.edges[i] = edges
	return edges
}

// queryGraph joins the start and goal of one query to a shared visibility
// graph without modifying it. Edges touching the start or goal are checked
// against clearance rather than the graph's.
type queryGraph struct {
	solver    *Solver
	base      *visibilityGraph
	start     geometry.Point
	goal      geometry.Point
	clearance float64
}

func (q *queryGraph) Point(id int) geometry.Point {
	switch id {
	case startNode:
		return q.start
	case goalNode:
		return q.goal
	default:
		return q.base.nodes[id-firstNode]
	}
}

func (q *queryGraph) Neighbors(id int) []Edge {
	from := q.Point(id)
	edges := make([]Edge, 0)

	if id == startNode || id == goalNode {
		other := goalNode
		if id == goalNode {
			other = startNode
		}
		if q.visible(from, q.Point(other)) {
			edges = append(edges, Edge{To: other, Cost: from.Distance(q.Point(other))})
		}
		for i, p := range q.base.nodes {
			if q.visible(from, p) {
				edges = append(edges, Edge{To: i + firstNode, Cost: from.Distance(p)})
			}
		}
		return edges
	}

	edges = append(edges, q.solver.staticEdges(q.base, id-firstNode)...)
	for _, endpoint := range [2]int{startNode, goalNode} {
		p := q.Point(endpoint)
		if q.visible(from, p) {
			edges = append(edges, Edge{To: endpoint, Cost: from.Distance(p)})
		}
	}
	return edges
}

func (q *queryGraph) visible(a, b geometry.Point) bool {
	return q.solver.segmentClear(a, b, q.clearance)
}
