// Package server exposes a Walkable over HTTP and pushes reachable grid
// updates to websocket clients.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"route-finder/geometry"
	"route-finder/scene"
	"route-finder/walkable"
)

// Option configures a Server
type Option func(*Server)

// WithLogger sets the server logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithObserver forwards walkable metrics to observer
func WithObserver(observer walkable.Observer) Option {
	return func(s *Server) { s.observer = observer }
}

// WithGatherer sets the source served on /metrics
func WithGatherer(gatherer prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = gatherer }
}

// Server serves route and reachability queries for one scene
type Server struct {
	mu    sync.RWMutex
	scene *scene.Scene
	walk  *walkable.Walkable

	path     string
	logger   *slog.Logger
	observer walkable.Observer
	gatherer prometheus.Gatherer
	hub      *hub
	mux      *http.ServeMux
}

// New creates a server for a loaded scene. path is the scene file used by
// Reload; it may be empty when the scene did not come from disk.
func New(s *scene.Scene, path string, options ...Option) (*Server, error) {
	srv := &Server{
		path:     path,
		logger:   slog.Default(),
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range options {
		opt(srv)
	}
	srv.hub = newHub(srv.logger)

	walk, err := walkable.FromScene(s, srv.walkableOptions()...)
	if err != nil {
		return nil, err
	}
	srv.scene = s
	srv.walk = walk

	srv.mux = http.NewServeMux()
	srv.mux.HandleFunc("/route", corsMiddleware(srv.routeHandler))
	srv.mux.HandleFunc("/select", corsMiddleware(srv.selectHandler))
	srv.mux.HandleFunc("/grid", corsMiddleware(srv.gridHandler))
	srv.mux.HandleFunc("/health", corsMiddleware(srv.healthHandler))
	srv.mux.Handle("/metrics", promhttp.HandlerFor(srv.gatherer, promhttp.HandlerOpts{}))
	srv.mux.HandleFunc("/ws", srv.hub.serveWS(srv.gridEnvelope))
	return srv, nil
}

func (s *Server) walkableOptions() []walkable.Option {
	options := []walkable.Option{walkable.WithLogger(s.logger)}
	if s.observer != nil {
		options = append(options, walkable.WithObserver(s.observer))
	}
	return options
}

// Handler returns the HTTP handler for all endpoints
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) current() (*scene.Scene, *walkable.Walkable) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scene, s.walk
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// RouteRequest asks for a route. When TokenID is set and Start is omitted the
// token's centre is used, and its width sets the radius unless Radius is
// given.
type RouteRequest struct {
	TokenID    string          `json:"tokenId,omitempty"`
	Start      *geometry.Point `json:"start,omitempty"`
	End        geometry.Point  `json:"end"`
	Radius     *float64        `json:"radius,omitempty"`
	SnapToGrid *bool           `json:"snapToGrid,omitempty"`
}

type RouteResponse struct {
	Path      walkable.Path    `json:"path"`
	Waypoints []geometry.Point `json:"waypoints"`
	Distance  int              `json:"distance"`
	Units     string           `json:"units,omitempty"`
	Success   bool             `json:"success"`
	Message   string           `json:"message,omitempty"`
}

// POST /route
func (s *Server) routeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("invalid route request", slog.Any("error", err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sc, walk := s.current()

	var start geometry.Point
	radius := 0.0
	switch {
	case req.Start != nil:
		start = *req.Start
	case req.TokenID != "":
		token, ok := sc.Token(req.TokenID)
		if !ok {
			http.Error(w, fmt.Sprintf("unknown token %q", req.TokenID), http.StatusNotFound)
			return
		}
		start = token.Center()
		radius = walk.AgentRadius(token)
	default:
		http.Error(w, "start or tokenId is required", http.StatusBadRequest)
		return
	}
	if req.Radius != nil {
		radius = *req.Radius
	}
	snap := sc.Settings.SnapToGrid
	if req.SnapToGrid != nil {
		snap = *req.SnapToGrid
	}

	path := walk.FindPath(start.X, start.Y, req.End.X, req.End.Y, radius, snap)
	resp := RouteResponse{
		Path:      path,
		Waypoints: walkable.CompressWaypoints(walkable.ToWaypoints(path)),
		Distance:  walkable.PathDistance(path, sc.Geometry),
		Units:     sc.Geometry.GridUnits,
		Success:   path.Reachable(),
	}
	if !resp.Success {
		resp.Message = "no route to destination"
	}

	s.logger.Debug("route",
		slog.Any("start", start),
		slog.Any("end", req.End),
		slog.Float64("radius", radius),
		slog.Bool("success", resp.Success),
		slog.Int("waypoints", len(resp.Waypoints)),
		slog.Int("distance", resp.Distance))
	writeJSON(w, http.StatusOK, resp)
}

type selectRequest struct {
	TokenID string `json:"tokenId"`
}

// GridUpdate is the reachable grid of the active token, as sent on /ws
type GridUpdate struct {
	TokenID string        `json:"tokenId,omitempty"`
	Cells   walkable.Grid `json:"cells"`
}

// POST /select
func (s *Server) selectHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	payload, err := s.Select(req.TokenID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// ErrUnknownToken is returned when selecting a token the scene does not have
var ErrUnknownToken = errors.New("unknown token")

// Select makes the token the active agent and broadcasts its reachable grid.
// An empty id clears the selection.
func (s *Server) Select(tokenID string) (GridUpdate, error) {
	sc, walk := s.current()

	if tokenID == "" {
		walk.SelectToken(nil, sc.Tokens)
		payload := GridUpdate{Cells: walkable.Grid{}}
		s.hub.broadcast(envelope{Type: "grid", Payload: payload})
		return payload, nil
	}

	token, ok := sc.Token(tokenID)
	if !ok {
		return GridUpdate{}, fmt.Errorf("%w %q", ErrUnknownToken, tokenID)
	}
	payload := GridUpdate{TokenID: token.ID, Cells: walk.SelectToken(&token, sc.Tokens)}
	s.hub.broadcast(envelope{Type: "grid", Payload: payload})
	return payload, nil
}

func (s *Server) gridEnvelope() envelope {
	_, walk := s.current()
	payload := GridUpdate{Cells: walk.Grid()}
	if payload.Cells == nil {
		payload.Cells = walkable.Grid{}
	}
	if token, ok := walk.ActiveToken(); ok {
		payload.TokenID = token.ID
	}
	return envelope{Type: "grid", Payload: payload}
}

// GET /grid
func (s *Server) gridHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.gridEnvelope().Payload)
}

// GET /health
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	sc, walk := s.current()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ready",
		"mesh":    walk.Stats(),
		"tokens":  len(sc.Tokens),
		"clients": s.hub.count(),
	})
}

// Reload reads the scene file again. Walls are synced into the existing mesh
// when the geometry is unchanged, otherwise the mesh is rebuilt. An active
// selection is recomputed and broadcast.
func (s *Server) Reload() error {
	if s.path == "" {
		return errors.New("server: scene has no file to reload")
	}
	next, err := scene.Load(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	prev, walk := s.scene, s.walk
	if next.Geometry != prev.Geometry || next.Settings != prev.Settings {
		rebuilt, err := walkable.FromScene(next, s.walkableOptions()...)
		if err != nil {
			s.mu.Unlock()
			return err
		}
		walk = rebuilt
	} else {
		walk.SyncWalls(next.Walls)
	}
	active, hadActive := s.walk.ActiveToken()
	s.scene, s.walk = next, walk
	s.mu.Unlock()

	s.logger.Info("scene reloaded",
		slog.String("path", s.path),
		slog.Int("walls", len(next.Walls)),
		slog.Int("tokens", len(next.Tokens)))

	if !hadActive {
		return nil
	}
	if _, ok := next.Token(active.ID); !ok {
		active.ID = ""
	}
	_, err = s.Select(active.ID)
	return err
}

// Watch reloads the scene whenever the watcher reports a change, until ctx is
// cancelled or the watcher is closed
func (s *Server) Watch(ctx context.Context, watcher *scene.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case name, ok := <-watcher.Events:
			if !ok {
				return
			}
			s.logger.Debug("scene file changed", slog.String("file", name))
			if err := s.Reload(); err != nil {
				s.logger.Error("reload failed", slog.Any("error", err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("watch error", slog.Any("error", err))
		}
	}
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.String("addr", addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
