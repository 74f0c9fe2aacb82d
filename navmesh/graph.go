package navmesh

import "route-finder/geometry"

// Graph is searched by a Strategy. Nodes are dense integer ids; edges may be
// discovered lazily as the search asks for them.
type Graph interface {
	Neighbors(node int) []Edge
	Point(node int) geometry.Point
}

// Edge represents a connection between two nodes with a cost
type Edge struct {
	To   int     // Index of the destination node
	Cost float64 // Euclidean distance
}
