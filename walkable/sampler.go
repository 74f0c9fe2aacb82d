package walkable

import (
	"log/slog"
	"time"

	"route-finder/geometry"
	"route-finder/scene"
)

// Sample is one reachable grid cell centre and the distance to reach it
type Sample struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Distance int     `json:"distance"`
}

// Grid is the set of cells reachable within a movement budget
type Grid []Sample

// Sampler turns a movement budget into a Grid by running one path query per
// candidate cell
type Sampler struct {
	session  *PathQuerySession
	geo      scene.Geometry
	logger   *slog.Logger
	observer Observer
}

// NewSampler creates a sampler that issues its queries through session
func NewSampler(session *PathQuerySession, geo scene.Geometry, logger *slog.Logger, observer Observer) *Sampler {
	if logger == nil {
		logger = slog.Default()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Sampler{session: session, geo: geo, logger: logger, observer: observer}
}

// ComputeReachableGrid samples every cell centre in the square of cells
// around origin that maxDistance can span, keeping the ones with a route no
// longer than maxDistance. The square is laid out around origin's cell but
// every route starts at origin itself. Cells outside the scene are not
// sampled. Runs to completion; the cost is one path search per cell.
func (s *Sampler) ComputeReachableGrid(origin geometry.Point, radius, maxDistance float64) Grid {
	began := time.Now()

	ox, oy := s.geo.Center(origin.X, origin.Y)
	cells := DistanceToGridCells(s.geo, maxDistance)
	step := s.geo.GridSize

	grid := Grid{}
	sampled := 0
	for dx := -cells; dx <= cells; dx++ {
		for dy := -cells; dy <= cells; dy++ {
			x := ox + float64(dx)*step
			y := oy + float64(dy)*step
			if !s.inScene(x, y) {
				continue
			}
			sampled++
			path := s.session.FindPath(origin.X, origin.Y, x, y, radius, true)
			if !path.Reachable() {
				continue
			}
			distance := PathDistance(path, s.geo)
			if float64(distance) > maxDistance {
				continue
			}
			end := len(path)
			grid = append(grid, Sample{X: path[end-2], Y: path[end-1], Distance: distance})
		}
	}

	elapsed := time.Since(began)
	s.logger.Debug("reachable grid computed",
		slog.Duration("elapsed", elapsed),
		slog.Int("radius", cells),
		slog.Int("sampled", sampled),
		slog.Int("kept", len(grid)))
	s.observer.ReachableGrid(sampled, len(grid), elapsed)
	return grid
}

func (s *Sampler) inScene(x, y float64) bool {
	return x >= 0 && y >= 0 && x <= s.geo.Width && y <= s.geo.Height
}
