package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"route-finder/internal/telemetry"
	"route-finder/scene"
)

const testScene = `
geometry: {width: 1000, height: 1000, grid_size: 100, grid_distance: 5, grid_units: ft}
walls:
  - id: gate
    c: [200, 400, 200, 600]
    door: closed
tokens:
  - {id: hero, x: 400, y: 400, width: 100, height: 100, disposition: friendly}
  - {id: orc, x: 600, y: 400, width: 100, height: 100, disposition: hostile}
settings:
  max_distance: 10
`

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte(testScene), 0o644); err != nil {
		t.Fatal(err)
	}
	sc, err := scene.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	reg := prometheus.NewRegistry()
	srv, err := New(sc, path,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithObserver(telemetry.New(reg)),
		WithGatherer(reg))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv, path
}

func post(t *testing.T, h http.Handler, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, target, bytes.NewReader(data)))
	return rec
}

func TestRouteHandler(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := post(t, h, "/route", map[string]any{
		"start":      map[string]float64{"x": 100, "y": 500},
		"end":        map[string]float64{"x": 300, "y": 500},
		"snapToGrid": false,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var resp RouteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || len(resp.Waypoints) < 3 {
		t.Fatalf("expected a detour around the gate, got %+v", resp)
	}
	if resp.Distance <= 10 || resp.Units != "ft" {
		t.Fatalf("expected detour longer than the direct 10ft, got %+v", resp)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("missing CORS header, got %q", got)
	}
}

func TestRouteHandlerFromToken(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := post(t, srv.Handler(), "/route", map[string]any{
		"tokenId": "hero",
		"end":     map[string]float64{"x": 460, "y": 240},
	})
	var resp RouteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []float64{450, 450, 450, 250}
	if len(resp.Path) != len(want) {
		t.Fatalf("expected %v, got %v", want, resp.Path)
	}
	for i := range want {
		if resp.Path[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, resp.Path)
		}
	}
	if resp.Distance != 10 {
		t.Fatalf("expected distance 10, got %d", resp.Distance)
	}
}

func TestRouteHandlerErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	cases := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{"wrong_method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"bad_json", http.MethodPost, "{", http.StatusBadRequest},
		{"no_start", http.MethodPost, `{"end":{"x":1,"y":1}}`, http.StatusBadRequest},
		{"unknown_token", http.MethodPost, `{"tokenId":"ghost","end":{"x":1,"y":1}}`, http.StatusNotFound},
		{"preflight", http.MethodOptions, "", http.StatusOK},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(c.method, "/route", strings.NewReader(c.body)))
			if rec.Code != c.want {
				t.Fatalf("expected %d, got %d", c.want, rec.Code)
			}
		})
	}
}

func TestSelectAndGrid(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := post(t, h, "/select", map[string]string{"tokenId": "hero"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var update GridUpdate
	if err := json.Unmarshal(rec.Body.Bytes(), &update); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if update.TokenID != "hero" || len(update.Cells) == 0 {
		t.Fatalf("unexpected grid %+v", update)
	}
	for _, cell := range update.Cells {
		if cell.Distance > 10 {
			t.Fatalf("cell beyond budget %+v", cell)
		}
		if cell.X == 650 && cell.Y == 450 {
			t.Fatalf("cell under the orc should be blocked")
		}
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/grid", nil))
	var current GridUpdate
	if err := json.Unmarshal(rec.Body.Bytes(), &current); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if current.TokenID != "hero" || len(current.Cells) != len(update.Cells) {
		t.Fatalf("GET /grid should return the published grid, got %+v", current)
	}

	if rec := post(t, h, "/select", map[string]string{"tokenId": "ghost"}); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown token, got %d", rec.Code)
	}
	if _, err := srv.Select("ghost"); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("expected ErrUnknownToken, got %v", err)
	}

	rec = post(t, h, "/select", map[string]string{})
	var cleared GridUpdate
	if err := json.Unmarshal(rec.Body.Bytes(), &cleared); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cleared.TokenID != "" || len(cleared.Cells) != 0 {
		t.Fatalf("deselect should clear the grid, got %+v", cleared)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	post(t, h, "/route", map[string]any{
		"start": map[string]float64{"x": 50, "y": 50},
		"end":   map[string]float64{"x": 850, "y": 50},
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	var health struct {
		Status string `json:"status"`
		Mesh   struct {
			Walls int `json:"walls"`
		} `json:"mesh"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "ready" || health.Mesh.Walls != 1 {
		t.Fatalf("unexpected health %+v", health)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "walkable_path_query_total") {
		t.Fatalf("expected path query metric in /metrics output")
	}
}

func TestWebsocketReceivesGrid(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var initial struct {
		Type    string     `json:"type"`
		Payload GridUpdate `json:"payload"`
	}
	if err := conn.ReadJSON(&initial); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if initial.Type != "grid" || len(initial.Payload.Cells) != 0 {
		t.Fatalf("expected empty initial grid, got %+v", initial)
	}

	// the initial message is written after registration, so the broadcast
	// below reaches this client
	if _, err := srv.Select("hero"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	var pushed struct {
		Type    string     `json:"type"`
		Payload GridUpdate `json:"payload"`
	}
	if err := conn.ReadJSON(&pushed); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if pushed.Payload.TokenID != "hero" || len(pushed.Payload.Cells) == 0 {
		t.Fatalf("unexpected pushed grid %+v", pushed)
	}
}

func TestReload(t *testing.T) {
	srv, path := newTestServer(t)
	if _, err := srv.Select("hero"); err != nil {
		t.Fatal(err)
	}

	updated := strings.Replace(testScene, "door: closed", "door: open", 1)
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := srv.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	_, walk := srv.current()
	if stats := walk.Stats(); stats.Walls != 0 || stats.Blockers != 1 {
		t.Fatalf("expected opened gate and reselected hero, got %+v", stats)
	}
	if token, ok := walk.ActiveToken(); !ok || token.ID != "hero" {
		t.Fatalf("selection should survive a reload")
	}

	resized := strings.Replace(updated, "width: 1000, height: 1000", "width: 2000, height: 2000", 1)
	if err := os.WriteFile(path, []byte(resized), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := srv.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	_, rebuilt := srv.current()
	if rebuilt == walk {
		t.Fatalf("geometry change should rebuild the mesh")
	}
	if rebuilt.Geometry().Width != 2000 {
		t.Fatalf("expected new geometry, got %+v", rebuilt.Geometry())
	}
}
