package walkable

import (
	"testing"

	"route-finder/geometry"
	"route-finder/scene"
)

var testGeometry = scene.Geometry{Width: 1000, Height: 1000, GridSize: 100, GridDistance: 5}

func TestToWaypoints(t *testing.T) {
	cases := []Path{
		{},
		{1, 2},
		{0, 0, 100, 0},
		{0, 0, 10, 10, 20, 0, 30, 10},
	}
	for _, path := range cases {
		waypoints := ToWaypoints(path)
		if len(waypoints) != len(path)/2 {
			t.Errorf("ToWaypoints(%v) returned %d waypoints, want %d", path, len(waypoints), len(path)/2)
		}
		back := FromWaypoints(waypoints)
		if len(back) != len(path) {
			t.Errorf("FromWaypoints lost coordinates: %v -> %v", path, back)
		}
	}
}

func TestPathDistance(t *testing.T) {
	cases := []struct {
		name string
		path Path
		want int
	}{
		{"empty", Path{}, 0},
		{"single_waypoint", Path{10, 10}, 0},
		{"one_cell", Path{0, 0, 100, 0}, 5},
		{"two_legs", Path{0, 0, 300, 0, 300, 400}, 35},
		{"rounded", Path{0, 0, 30, 0}, 2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := PathDistance(c.path, testGeometry); got != c.want {
				t.Fatalf("PathDistance(%v) = %d, want %d", c.path, got, c.want)
			}
		})
	}
}

func TestPathDistanceSymmetric(t *testing.T) {
	path := Path{12, 7, 140, 33, 260, 410, 75, 500}
	waypoints := ToWaypoints(path)
	reversed := make([]geometry.Point, len(waypoints))
	for i, w := range waypoints {
		reversed[len(waypoints)-1-i] = w
	}

	forward := PathDistance(path, testGeometry)
	backward := PathDistance(FromWaypoints(reversed), testGeometry)
	if forward != backward {
		t.Fatalf("distance should not depend on direction: %d vs %d", forward, backward)
	}
}

func TestUnitConversions(t *testing.T) {
	if got := PixelsToDistance(testGeometry, 250); got != 13 {
		t.Errorf("PixelsToDistance(250) = %d, want 13", got)
	}
	if got := DistanceToPixels(testGeometry, 30); got != 600 {
		t.Errorf("DistanceToPixels(30) = %d, want 600", got)
	}
	if got := DistanceToGridCells(testGeometry, 30); got != 6 {
		t.Errorf("DistanceToGridCells(30) = %d, want 6", got)
	}
	if got := DistanceToGridCells(testGeometry, 7); got != 1 {
		t.Errorf("DistanceToGridCells(7) = %d, want 1", got)
	}
	if got := DistanceToGridCells(testGeometry, 0); got != 0 {
		t.Errorf("DistanceToGridCells(0) = %d, want 0", got)
	}
	if got := PixelsToDistance(scene.Geometry{}, 100); got != 0 {
		t.Errorf("zero grid size should convert to 0, got %d", got)
	}
}

func TestCompressWaypoints(t *testing.T) {
	in := []geometry.Point{{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 50}, {X: 100, Y: 100}, {X: 0, Y: 100}}
	want := []geometry.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}}

	got := CompressWaypoints(in)
	if len(got) != len(want) {
		t.Fatalf("CompressWaypoints() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("CompressWaypoints() = %v, want %v", got, want)
		}
	}

	short := []geometry.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}
	if got := CompressWaypoints(short); len(got) != 2 {
		t.Fatalf("two waypoints should be kept, got %v", got)
	}
}
