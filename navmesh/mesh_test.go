package navmesh

import (
	"testing"

	"route-finder/geometry"
)

func TestMeshInsertRemove(t *testing.T) {
	m := NewMesh(Bounds{Width: 1000, Height: 1000})

	wall := m.Insert(NewLine("w1", 10, 10, 100, 10))
	box := m.Insert(NewRectangle("", 200, 200, 50, 50))
	if m.Len() != 2 {
		t.Fatalf("expected 2 obstacles, got %d", m.Len())
	}
	gen := m.Generation()

	// inserting the same handle again changes nothing
	m.Insert(wall)
	if m.Len() != 2 || m.Generation() != gen {
		t.Fatalf("re-insert should be a no-op: len=%d gen=%d (want 2, %d)", m.Len(), m.Generation(), gen)
	}

	if !m.Remove(wall) {
		t.Fatalf("Remove should report true for a present obstacle")
	}
	if m.Remove(wall) {
		t.Fatalf("second Remove should report false")
	}
	if m.Remove(nil) {
		t.Fatalf("Remove(nil) should report false")
	}
	if m.Generation() != gen+1 {
		t.Fatalf("expected generation %d, got %d", gen+1, m.Generation())
	}

	obstacles := m.Obstacles()
	if len(obstacles) != 1 || obstacles[0] != box {
		t.Fatalf("expected only the rectangle to remain, got %v", obstacles)
	}
}

func TestObstacleGeometry(t *testing.T) {
	line := NewLine("w", 10, 20, 40, 60)
	if got := line.Coordinates; len(got) != 4 || got[2] != 30 || got[3] != 40 {
		t.Fatalf("line coordinates should be local to origin, got %v", got)
	}
	segs := line.Segments()
	if len(segs) != 1 || segs[0].P1 != (geometry.Point{X: 10, Y: 20}) || segs[0].P2 != (geometry.Point{X: 40, Y: 60}) {
		t.Fatalf("unexpected line segments %v", segs)
	}
	if line.Contains(geometry.Point{X: 25, Y: 40}) {
		t.Fatalf("lines have no interior")
	}

	rect := NewRectangle("", 100, 100, 50, 20)
	if len(rect.Segments()) != 4 {
		t.Fatalf("rectangle should have 4 edges, got %d", len(rect.Segments()))
	}
	if len(rect.Vertices()) != 4 {
		t.Fatalf("rectangle should have 4 distinct corners, got %d", len(rect.Vertices()))
	}
	if !rect.Contains(geometry.Point{X: 125, Y: 110}) {
		t.Fatalf("centre of rectangle should be inside")
	}
	if rect.Contains(geometry.Point{X: 160, Y: 110}) {
		t.Fatalf("point right of rectangle should be outside")
	}

	if !NewLine("z", 5, 5, 5, 5).Degenerate() {
		t.Fatalf("zero-length line should be degenerate")
	}
	if line.Degenerate() {
		t.Fatalf("line with extent should not be degenerate")
	}
}

func TestSpatialIndexQueryRegion(t *testing.T) {
	m := NewMesh(Bounds{Width: 1000, Height: 1000})
	near := m.Insert(NewLine("near", 100, 100, 100, 200)) // vertical, zero width
	m.Insert(NewLine("far", 800, 800, 900, 800))

	found := m.index.queryRegion(geometry.LineSegment{
		P1: geometry.Point{X: 90, Y: 150},
		P2: geometry.Point{X: 110, Y: 150},
	}.Bound())
	if len(found) != 1 || found[0] != near {
		t.Fatalf("expected only the near wall, got %d results", len(found))
	}
	if m.index.size() != 2 {
		t.Fatalf("expected index size 2, got %d", m.index.size())
	}
}
