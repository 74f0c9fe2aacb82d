package geometry

import (
	"math"
	"testing"
)

func seg(x1, y1, x2, y2 float64) LineSegment {
	return LineSegment{P1: Point{X: x1, Y: y1}, P2: Point{X: x2, Y: y2}}
}

func TestSegmentsIntersect(t *testing.T) {
	cases := []struct {
		name string
		a, b LineSegment
		want bool
	}{
		{"crossing", seg(0, 0, 10, 10), seg(0, 10, 10, 0), true},
		{"parallel", seg(0, 0, 10, 0), seg(0, 1, 10, 1), false},
		{"shared_endpoint", seg(0, 0, 10, 0), seg(10, 0, 10, 10), true},
		{"collinear_overlap", seg(0, 0, 10, 0), seg(5, 0, 15, 0), true},
		{"collinear_disjoint", seg(0, 0, 10, 0), seg(11, 0, 15, 0), false},
		{"t_junction", seg(0, 0, 10, 0), seg(5, 0, 5, 10), true},
		{"apart", seg(0, 0, 1, 1), seg(5, 5, 6, 4), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := SegmentsIntersect(c.a, c.b); got != c.want {
				t.Fatalf("SegmentsIntersect = %v, want %v", got, c.want)
			}
		})
	}
}

func TestPointSegmentDistance(t *testing.T) {
	s := seg(0, 0, 10, 0)
	cases := []struct {
		p    Point
		want float64
	}{
		{Point{X: 5, Y: 3}, 3},
		{Point{X: -3, Y: 4}, 5},
		{Point{X: 13, Y: -4}, 5},
		{Point{X: 7, Y: 0}, 0},
	}
	for _, c := range cases {
		if got := PointSegmentDistance(c.p, s); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("PointSegmentDistance(%v) = %v, want %v", c.p, got, c.want)
		}
	}
	if got := PointSegmentDistance(Point{X: 3, Y: 4}, seg(0, 0, 0, 0)); got != 5 {
		t.Errorf("distance to a point segment should be point distance, got %v", got)
	}
}

func TestSegmentDistance(t *testing.T) {
	if got := SegmentDistance(seg(0, 0, 10, 10), seg(0, 10, 10, 0)); got != 0 {
		t.Errorf("crossing segments should be 0 apart, got %v", got)
	}
	if got := SegmentDistance(seg(0, 0, 10, 0), seg(0, 2, 10, 2)); math.Abs(got-2) > 1e-9 {
		t.Errorf("parallel segments should be 2 apart, got %v", got)
	}
	if got := SegmentDistance(seg(0, 0, 10, 0), seg(13, 4, 20, 4)); math.Abs(got-5) > 1e-9 {
		t.Errorf("expected endpoint distance 5, got %v", got)
	}
}

func TestIsPointInPolygon(t *testing.T) {
	square := Polygon{Vertices: []Point{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}}}
	if !IsPointInPolygon(Point{X: 5, Y: 5}, square) {
		t.Errorf("centre should be inside")
	}
	if IsPointInPolygon(Point{X: 15, Y: 5}, square) {
		t.Errorf("point to the right should be outside")
	}
	if IsPointInPolygon(Point{X: 5, Y: 5}, Polygon{Vertices: square.Vertices[:2]}) {
		t.Errorf("degenerate polygon has no inside")
	}

	b := square.Bound()
	if b.Min.X() != 0 || b.Max.Y() != 10 {
		t.Errorf("unexpected bound %v", b)
	}
}

func TestCircumscribedPolygon(t *testing.T) {
	centre := Point{X: 3, Y: -2}
	radius := 10.0
	for _, sides := range []int{8, 16} {
		points := CircumscribedPolygon(centre, radius, sides)
		if len(points) != sides {
			t.Fatalf("expected %d vertices, got %d", sides, len(points))
		}
		for i := range points {
			edge := LineSegment{P1: points[i], P2: points[(i+1)%len(points)]}
			d := PointSegmentDistance(centre, edge)
			if d < radius-1e-9 {
				t.Fatalf("%d sides: edge %d cuts into the circle: %v < %v", sides, i, d, radius)
			}
			if d > radius+1e-9 {
				t.Fatalf("%d sides: edge %d does not touch the circle: %v > %v", sides, i, d, radius)
			}
		}
	}
}
