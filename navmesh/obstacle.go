package navmesh

import (
	"fmt"

	"github.com/dhconnelly/rtreego"

	"route-finder/geometry"
)

// Kind distinguishes the shapes an obstacle can take
type Kind int

const (
	// Line is a zero-width segment, used for walls
	Line Kind = iota
	// Rectangle is a closed axis-aligned box, used for token footprints
	Rectangle
)

func (k Kind) String() string {
	switch k {
	case Line:
		return "line"
	case Rectangle:
		return "rectangle"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// boundsPadding keeps R-tree rectangles non-degenerate for axis-aligned lines
const boundsPadding = 1e-6

// Obstacle is a shape owned by a Mesh. Coordinates are local to Origin and
// are read four at a time as segments x0,y0,x1,y1.
type Obstacle struct {
	ID          string
	Kind        Kind
	Coordinates []float64
	Origin      geometry.Point

	segments []geometry.LineSegment
	outline  geometry.Polygon
	bbox     rtreego.Rect
	seq      uint64
}

// NewLine creates a line obstacle between two scene points
func NewLine(id string, startX, startY, endX, endY float64) *Obstacle {
	o := &Obstacle{
		ID:          id,
		Kind:        Line,
		Coordinates: []float64{0, 0, endX - startX, endY - startY},
		Origin:      geometry.Point{X: startX, Y: startY},
	}
	o.build()
	return o
}

// NewRectangle creates a rectangle obstacle with its top-left corner at x,y
func NewRectangle(id string, x, y, w, h float64) *Obstacle {
	o := &Obstacle{
		ID:          id,
		Kind:        Rectangle,
		Coordinates: []float64{0, 0, 0, h, 0, h, w, h, w, h, w, 0, w, 0, 0, 0},
		Origin:      geometry.Point{X: x, Y: y},
	}
	o.build()
	return o
}

// build resolves local coordinates into world segments and bounds
func (o *Obstacle) build() {
	o.segments = o.segments[:0]
	for i := 0; i+3 < len(o.Coordinates); i += 4 {
		o.segments = append(o.segments, geometry.LineSegment{
			P1: geometry.Point{X: o.Origin.X + o.Coordinates[i], Y: o.Origin.Y + o.Coordinates[i+1]},
			P2: geometry.Point{X: o.Origin.X + o.Coordinates[i+2], Y: o.Origin.Y + o.Coordinates[i+3]},
		})
	}

	o.outline = geometry.Polygon{}
	if o.Kind == Rectangle {
		for _, seg := range o.segments {
			o.outline.Vertices = append(o.outline.Vertices, seg.P1)
		}
	}

	bound := o.outline.Bound()
	if o.Kind != Rectangle {
		for i, seg := range o.segments {
			if i == 0 {
				bound = seg.Bound()
				continue
			}
			bound = bound.Union(seg.Bound())
		}
	}
	o.bbox = rectFromBound(bound.Pad(boundsPadding))
}

// Segments returns the obstacle edges in scene coordinates
func (o *Obstacle) Segments() []geometry.LineSegment {
	return o.segments
}

// Vertices returns the distinct corner points of the obstacle
func (o *Obstacle) Vertices() []geometry.Point {
	seen := make(map[geometry.Point]bool, len(o.segments)*2)
	vertices := make([]geometry.Point, 0, len(o.segments)*2)
	for _, seg := range o.segments {
		for _, p := range [2]geometry.Point{seg.P1, seg.P2} {
			if !seen[p] {
				seen[p] = true
				vertices = append(vertices, p)
			}
		}
	}
	return vertices
}

// Degenerate reports whether the obstacle has no extent at all
func (o *Obstacle) Degenerate() bool {
	for _, seg := range o.segments {
		if seg.Length() > 0 {
			return false
		}
	}
	return true
}

// Contains reports whether p lies strictly inside a rectangle obstacle.
// Lines have no interior.
func (o *Obstacle) Contains(p geometry.Point) bool {
	if o.Kind != Rectangle {
		return false
	}
	return geometry.IsPointInPolygon(p, o.outline)
}

// Bounds implements rtreego.Spatial
func (o *Obstacle) Bounds() rtreego.Rect {
	return o.bbox
}
