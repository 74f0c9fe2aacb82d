package walkable

import (
	"log/slog"

	"route-finder/navmesh"
	"route-finder/scene"
)

// Registry maps scene walls and blocking tokens to obstacles in a mesh.
// Keeping it in step with the scene is the caller's job: every wall create,
// update or delete must be forwarded as it happens.
type Registry struct {
	mesh     *navmesh.Mesh
	walls    map[string]scene.Wall
	handles  map[string]*navmesh.Obstacle
	blockers []*navmesh.Obstacle
	logger   *slog.Logger
	observer Observer
}

// NewRegistry creates an empty registry over mesh
func NewRegistry(mesh *navmesh.Mesh, logger *slog.Logger, observer Observer) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Registry{
		mesh:     mesh,
		walls:    make(map[string]scene.Wall),
		handles:  make(map[string]*navmesh.Obstacle),
		logger:   logger,
		observer: observer,
	}
}

// InsertWall registers the wall, replacing any obstacle already held for its
// id. A line obstacle is added only while the wall blocks movement and is not
// an open door; zero-length walls are tracked but never reach the mesh.
func (r *Registry) InsertWall(wall scene.Wall) {
	r.removeHandle(wall.ID)
	r.walls[wall.ID] = wall

	switch {
	case !wall.Blocking():
	case wall.Degenerate():
		r.logger.Debug("skipping zero-length wall", slog.String("id", wall.ID))
	default:
		r.handles[wall.ID] = r.mesh.Insert(navmesh.NewLine(wall.ID, wall.C[0], wall.C[1], wall.C[2], wall.C[3]))
	}
	r.report()
}

// UpdateWall applies a changed wall. Closing or locking a door inserts it,
// opening one removes it.
func (r *Registry) UpdateWall(wall scene.Wall) {
	r.InsertWall(wall)
}

// RemoveWall forgets the wall and deletes its obstacle. Unknown ids are ignored.
func (r *Registry) RemoveWall(id string) {
	if _, known := r.walls[id]; !known {
		return
	}
	delete(r.walls, id)
	r.removeHandle(id)
	r.report()
}

// SyncWalls brings the registry in line with a full wall list: walls that
// disappeared are removed, new or changed walls are (re)inserted and
// unchanged walls are left alone.
func (r *Registry) SyncWalls(walls []scene.Wall) {
	present := make(map[string]bool, len(walls))
	for _, wall := range walls {
		present[wall.ID] = true
	}
	for id := range r.walls {
		if !present[id] {
			r.RemoveWall(id)
		}
	}
	for _, wall := range walls {
		if existing, ok := r.walls[wall.ID]; ok && existing == wall {
			continue
		}
		r.InsertWall(wall)
	}
}

// RefreshBlockers replaces every blocker obstacle with one rectangle per
// token that obstructs self under the matrix. Tokens sharing self's id are
// skipped.
func (r *Registry) RefreshBlockers(matrix scene.BlockingMatrix, self scene.Token, tokens []scene.Token) {
	r.ClearBlockers()
	for _, other := range tokens {
		if other.ID == self.ID {
			continue
		}
		if !matrix.Blocks(other.Disposition, self.Disposition) {
			continue
		}
		r.blockers = append(r.blockers, r.mesh.Insert(navmesh.NewRectangle("", other.X, other.Y, other.Width, other.Height)))
	}
	r.logger.Debug("blockers refreshed",
		slog.String("token", self.ID),
		slog.Int("blockers", len(r.blockers)))
	r.report()
}

// ClearBlockers removes every blocker obstacle
func (r *Registry) ClearBlockers() {
	for _, blocker := range r.blockers {
		r.mesh.Remove(blocker)
	}
	r.blockers = r.blockers[:0]
}

// WallCount returns how many walls currently have an obstacle in the mesh
func (r *Registry) WallCount() int {
	return len(r.handles)
}

// BlockerCount returns how many blocker rectangles are in the mesh
func (r *Registry) BlockerCount() int {
	return len(r.blockers)
}

// Wall returns the last known state of a wall
func (r *Registry) Wall(id string) (scene.Wall, bool) {
	wall, ok := r.walls[id]
	return wall, ok
}

func (r *Registry) removeHandle(id string) {
	if handle, ok := r.handles[id]; ok {
		r.mesh.Remove(handle)
		delete(r.handles, id)
	}
}

func (r *Registry) report() {
	r.observer.Obstacles(len(r.handles), len(r.blockers))
}
