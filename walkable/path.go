package walkable

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"

	"route-finder/geometry"
	"route-finder/scene"
)

// Path is a flat [x0,y0,x1,y1,...] route in scene pixels. An empty Path
// means the destination is unreachable.
type Path []float64

// Reachable reports whether the path holds a route
func (p Path) Reachable() bool {
	return len(p) > 0
}

// ToWaypoints groups a flat path into ordered points
func ToWaypoints(path Path) []geometry.Point {
	waypoints := make([]geometry.Point, 0, len(path)/2)
	for i := 0; i+1 < len(path); i += 2 {
		waypoints = append(waypoints, geometry.Point{X: path[i], Y: path[i+1]})
	}
	return waypoints
}

// FromWaypoints flattens points back into a Path
func FromWaypoints(waypoints []geometry.Point) Path {
	path := make(Path, 0, len(waypoints)*2)
	for _, w := range waypoints {
		path = append(path, w.X, w.Y)
	}
	return path
}

func lineString(waypoints []geometry.Point) orb.LineString {
	ls := make(orb.LineString, 0, len(waypoints))
	for _, w := range waypoints {
		ls = append(ls, w.Orb())
	}
	return ls
}

// PixelLength is the sum of Euclidean distances between consecutive waypoints
func PixelLength(path Path) float64 {
	return planar.Length(lineString(ToWaypoints(path)))
}

// PathDistance converts the pixel length of a path into scene distance
// units, rounded to the nearest integer
func PathDistance(path Path, geo scene.Geometry) int {
	if len(path) < 4 {
		return 0
	}
	return PixelsToDistance(geo, PixelLength(path))
}

// PixelsToDistance converts a pixel length into rounded scene distance units
func PixelsToDistance(geo scene.Geometry, pixels float64) int {
	if geo.GridSize <= 0 {
		return 0
	}
	return int(math.Round(pixels / geo.GridSize * geo.GridDistance))
}

// DistanceToPixels converts scene distance units into rounded pixels
func DistanceToPixels(geo scene.Geometry, distance float64) int {
	if geo.GridDistance <= 0 {
		return 0
	}
	return int(math.Round(distance / geo.GridDistance * geo.GridSize))
}

// DistanceToGridCells returns how many whole grid cells fit in distance
func DistanceToGridCells(geo scene.Geometry, distance float64) int {
	if geo.GridSize <= 0 {
		return 0
	}
	return int(math.Floor(float64(DistanceToPixels(geo, distance)) / geo.GridSize))
}

// CompressWaypoints drops interior waypoints that lie on a straight line
// between their neighbours, so a token is moved once per direction change
func CompressWaypoints(waypoints []geometry.Point) []geometry.Point {
	if len(waypoints) < 3 {
		return append([]geometry.Point(nil), waypoints...)
	}
	simplified := simplify.DouglasPeucker(0).Simplify(lineString(waypoints)).(orb.LineString)
	out := make([]geometry.Point, 0, len(simplified))
	for _, p := range simplified {
		out = append(out, geometry.FromOrb(p))
	}
	return out
}
