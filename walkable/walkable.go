// Package walkable keeps a navigation mesh in step with a scene and answers
// route and reachability queries for the token being moved.
package walkable

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"route-finder/geometry"
	"route-finder/navmesh"
	"route-finder/scene"
)

// Option configures a Walkable
type Option func(*Walkable)

// WithLogger sets the logger for the walkable subsystem and its mesh
func WithLogger(logger *slog.Logger) Option {
	return func(w *Walkable) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithObserver sets the receiver of query metrics
func WithObserver(observer Observer) Option {
	return func(w *Walkable) {
		if observer != nil {
			w.observer = observer
		}
	}
}

// Walkable owns the mesh for one scene. All methods are safe for concurrent
// use; calls are serialized.
type Walkable struct {
	mu sync.Mutex

	geo      scene.Geometry
	settings scene.Settings
	logger   *slog.Logger
	observer Observer

	mesh     *navmesh.Mesh
	solver   *navmesh.Solver
	registry *Registry
	session  *PathQuerySession
	sampler  *Sampler

	active *scene.Token
	grid   Grid
}

// New creates the mesh for a scene of the given geometry. It fails when the
// configured strategy is unknown.
func New(geo scene.Geometry, settings scene.Settings, options ...Option) (*Walkable, error) {
	w := &Walkable{
		geo:      geo,
		settings: settings,
		logger:   slog.Default(),
		observer: nopObserver{},
	}
	for _, opt := range options {
		opt(w)
	}

	name := settings.Strategy
	if name == "" {
		name = navmesh.AStar{}.Name()
	}
	strategy, err := navmesh.ParseStrategy(name)
	if err != nil {
		return nil, fmt.Errorf("walkable: %w", err)
	}

	bounds := navmesh.Bounds{Width: geo.Width, Height: geo.Height}
	w.mesh = navmesh.NewMesh(bounds, navmesh.WithLogger(w.logger))
	w.solver = navmesh.NewSolver(w.mesh,
		navmesh.WithStrategy(strategy),
		navmesh.WithMinClearance(settings.MinClearance),
		navmesh.WithLogger(w.logger))
	w.registry = NewRegistry(w.mesh, w.logger, w.observer)
	w.session = NewPathQuerySession(w.mesh, w.solver, geo, w.observer)
	w.sampler = NewSampler(w.session, geo, w.logger, w.observer)

	w.logger.Info("walkable mesh created",
		slog.Float64("width", geo.Width),
		slog.Float64("height", geo.Height),
		slog.String("strategy", strategy.Name()))
	return w, nil
}

// FromScene creates a Walkable for a loaded scene and registers its walls
func FromScene(s *scene.Scene, options ...Option) (*Walkable, error) {
	w, err := New(s.Geometry, s.Settings, options...)
	if err != nil {
		return nil, err
	}
	w.SyncWalls(s.Walls)
	return w, nil
}

// Geometry returns the scene geometry the mesh was built for
func (w *Walkable) Geometry() scene.Geometry {
	return w.geo
}

// Settings returns the configuration in use
func (w *Walkable) Settings() scene.Settings {
	return w.settings
}

// InsertWall registers a created wall
func (w *Walkable) InsertWall(wall scene.Wall) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.registry.InsertWall(wall)
}

// UpdateWall applies a changed wall
func (w *Walkable) UpdateWall(wall scene.Wall) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.registry.UpdateWall(wall)
}

// RemoveWall forgets a deleted wall
func (w *Walkable) RemoveWall(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.registry.RemoveWall(id)
}

// SyncWalls replaces the known walls with a full list
func (w *Walkable) SyncWalls(walls []scene.Wall) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.registry.SyncWalls(walls)
}

// SelectToken makes token the moving agent. Blockers are rebuilt from the
// other tokens and the reachable grid is recomputed with the configured
// budget. A nil token clears the grid and samples nothing.
func (w *Walkable) SelectToken(token *scene.Token, tokens []scene.Token) Grid {
	w.mu.Lock()
	defer w.mu.Unlock()

	if token == nil {
		w.active = nil
		w.grid = nil
		w.registry.ClearBlockers()
		w.session.Invalidate()
		return nil
	}

	selected := *token
	w.active = &selected
	w.session.Invalidate()
	w.registry.RefreshBlockers(w.settings.Blocking, selected, tokens)
	w.grid = w.sampler.ComputeReachableGrid(selected.Center(), w.agentRadius(selected), w.settings.MaxDistance)

	w.logger.Info("token selected",
		slog.String("token", selected.ID),
		slog.Int("blockers", w.registry.BlockerCount()),
		slog.Int("cells", len(w.grid)))
	return slices.Clone(w.grid)
}

// ActiveToken returns the selected token, if any
func (w *Walkable) ActiveToken() (scene.Token, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active == nil {
		return scene.Token{}, false
	}
	return *w.active, true
}

// Grid returns the last computed reachable grid
func (w *Walkable) Grid() Grid {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.grid)
}

// ComputeReachableGrid samples the cells reachable from origin within
// maxDistance for an agent of the given radius. The published grid is not
// changed.
func (w *Walkable) ComputeReachableGrid(origin geometry.Point, radius, maxDistance float64) Grid {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sampler.ComputeReachableGrid(origin, radius, maxDistance)
}

// FindPath returns a route from start to end for an agent of the given
// radius. The result is empty when the destination cannot be reached.
func (w *Walkable) FindPath(startX, startY, endX, endY, radius float64, snapToGrid bool) Path {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session.FindPath(startX, startY, endX, endY, radius, snapToGrid)
}

// AgentRadius returns the radius used for a token's routes
func (w *Walkable) AgentRadius(token scene.Token) float64 {
	return w.agentRadius(token)
}

func (w *Walkable) agentRadius(token scene.Token) float64 {
	return token.Width * w.settings.AgentRadiusRatio
}

// Stats is a snapshot of the mesh contents
type Stats struct {
	Walls      int    `json:"walls"`
	Blockers   int    `json:"blockers"`
	Obstacles  int    `json:"obstacles"`
	Generation uint64 `json:"generation"`
	Strategy   string `json:"strategy"`
}

// Stats returns the current mesh counters
func (w *Walkable) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Stats{
		Walls:      w.registry.WallCount(),
		Blockers:   w.registry.BlockerCount(),
		Obstacles:  w.mesh.Len(),
		Generation: w.mesh.Generation(),
		Strategy:   w.solver.Strategy().Name(),
	}
}
