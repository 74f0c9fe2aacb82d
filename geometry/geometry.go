// Package geometry holds the planar primitives shared by the navigation mesh
// and the walkable subsystem: points, segments, polygons and the clearance
// tests built on top of them.
package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Point is a position in scene pixel coordinates
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Orb converts the point to its orb representation
func (p Point) Orb() orb.Point {
	return orb.Point{p.X, p.Y}
}

// FromOrb converts an orb point back to a Point
func FromOrb(p orb.Point) Point {
	return Point{X: p.X(), Y: p.Y()}
}

// Distance calculates Euclidean distance between two points
func (p Point) Distance(other Point) float64 {
	return planar.Distance(p.Orb(), other.Orb())
}

// Polygon is a closed outline given as a list of vertices
type Polygon struct {
	Vertices []Point `json:"vertices"`
}

// Bound returns the axis-aligned bounding box of the polygon
func (poly Polygon) Bound() orb.Bound {
	ring := make(orb.Ring, 0, len(poly.Vertices))
	for _, v := range poly.Vertices {
		ring = append(ring, v.Orb())
	}
	return ring.Bound()
}

// LineSegment represents a line segment between two points
type LineSegment struct {
	P1, P2 Point
}

// Length returns the Euclidean length of the segment
func (s LineSegment) Length() float64 {
	return s.P1.Distance(s.P2)
}

// Midpoint returns the point halfway between both ends
func (s LineSegment) Midpoint() Point {
	return Point{X: (s.P1.X + s.P2.X) / 2, Y: (s.P1.Y + s.P2.Y) / 2}
}

// Bound returns the axis-aligned bounding box of the segment
func (s LineSegment) Bound() orb.Bound {
	return orb.MultiPoint{s.P1.Orb(), s.P2.Orb()}.Bound()
}

// SegmentsIntersect checks if two line segments touch or cross.
// Shared endpoints and collinear overlaps count as intersections.
func SegmentsIntersect(seg1, seg2 LineSegment) bool {
	p1, p2 := seg1.P1, seg1.P2
	p3, p4 := seg2.P1, seg2.P2

	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// Check for collinear cases
	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}

	return false
}

// direction calculates the cross product to determine orientation
func direction(p1, p2, p3 Point) float64 {
	return (p3.X-p1.X)*(p2.Y-p1.Y) - (p2.X-p1.X)*(p3.Y-p1.Y)
}

// onSegment checks if point q lies on segment pr
func onSegment(p, r, q Point) bool {
	return q.X <= math.Max(p.X, r.X) && q.X >= math.Min(p.X, r.X) &&
		q.Y <= math.Max(p.Y, r.Y) && q.Y >= math.Min(p.Y, r.Y)
}

// PointSegmentDistance returns the shortest distance from p to the segment
func PointSegmentDistance(p Point, seg LineSegment) float64 {
	dx := seg.P2.X - seg.P1.X
	dy := seg.P2.Y - seg.P1.Y
	lengthSq := dx*dx + dy*dy
	if lengthSq == 0 {
		return p.Distance(seg.P1)
	}

	t := ((p.X-seg.P1.X)*dx + (p.Y-seg.P1.Y)*dy) / lengthSq
	t = math.Max(0, math.Min(1, t))

	closest := Point{X: seg.P1.X + t*dx, Y: seg.P1.Y + t*dy}
	return p.Distance(closest)
}

// SegmentDistance returns the shortest distance between two segments,
// zero when they intersect.
func SegmentDistance(seg1, seg2 LineSegment) float64 {
	if SegmentsIntersect(seg1, seg2) {
		return 0
	}
	return math.Min(
		math.Min(PointSegmentDistance(seg1.P1, seg2), PointSegmentDistance(seg1.P2, seg2)),
		math.Min(PointSegmentDistance(seg2.P1, seg1), PointSegmentDistance(seg2.P2, seg1)),
	)
}

// IsPointInPolygon checks if a point is inside a polygon using ray casting
func IsPointInPolygon(point Point, polygon Polygon) bool {
	n := len(polygon.Vertices)
	if n < 3 {
		return false
	}

	count := 0
	for i := 0; i < n; i++ {
		v1 := polygon.Vertices[i]
		v2 := polygon.Vertices[(i+1)%n]

		// Check if the ray from point to the right intersects the edge
		if (v1.Y > point.Y) != (v2.Y > point.Y) {
			slope := (point.X-v1.X)*(v2.Y-v1.Y) - (v2.X-v1.X)*(point.Y-v1.Y)
			if v2.Y > v1.Y {
				if slope > 0 {
					count++
				}
			} else {
				if slope < 0 {
					count++
				}
			}
		}
	}

	return count%2 == 1
}

// CircumscribedPolygon returns the vertices of a regular polygon with the
// given number of sides centred on p. Its edges circumscribe a circle of the
// given radius.
func CircumscribedPolygon(p Point, radius float64, sides int) []Point {
	r := radius / math.Cos(math.Pi/float64(sides))
	points := make([]Point, sides)
	for i := range points {
		angle := float64(i) * 2 * math.Pi / float64(sides)
		points[i] = Point{X: p.X + r*math.Cos(angle), Y: p.Y + r*math.Sin(angle)}
	}
	return points
}
