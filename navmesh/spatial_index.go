package navmesh

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// spatialIndex manages obstacle spatial queries
type spatialIndex struct {
	tree *rtreego.Rtree
}

// newSpatialIndex creates an empty 2D index
func newSpatialIndex() *spatialIndex {
	return &spatialIndex{tree: rtreego.NewTree(2, 25, 50)} // 2D, min 25, max 50 entries per node
}

func (si *spatialIndex) insert(o *Obstacle) {
	si.tree.Insert(o)
}

func (si *spatialIndex) remove(o *Obstacle) bool {
	return si.tree.Delete(o)
}

func (si *spatialIndex) size() int {
	return si.tree.Size()
}

// queryRegion returns obstacles whose bounds intersect the given box
func (si *spatialIndex) queryRegion(bound orb.Bound) []*Obstacle {
	results := si.tree.SearchIntersect(rectFromBound(bound))
	obstacles := make([]*Obstacle, 0, len(results))
	for _, item := range results {
		obstacles = append(obstacles, item.(*Obstacle))
	}
	return obstacles
}

// rectFromBound converts an orb bound into an R-tree rectangle. Zero extents
// are widened so rtreego accepts points and axis-aligned segments.
func rectFromBound(bound orb.Bound) rtreego.Rect {
	width := math.Max(bound.Max.X()-bound.Min.X(), boundsPadding)
	height := math.Max(bound.Max.Y()-bound.Min.Y(), boundsPadding)
	rect, err := rtreego.NewRect(
		rtreego.Point{bound.Min.X(), bound.Min.Y()},
		[]float64{width, height},
	)
	if err != nil {
		// only reachable with NaN input
		return rtreego.Point{bound.Min.X(), bound.Min.Y()}.ToRect(boundsPadding)
	}
	return rect
}
