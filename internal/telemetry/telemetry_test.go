package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"route-finder/walkable"
)

var _ walkable.Observer = (*Metrics)(nil)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.PathQuery("astar", false, true, time.Millisecond)
	m.PathQuery("astar", true, true, 0)
	m.PathQuery("astar", false, false, time.Millisecond)
	m.ReachableGrid(25, 13, 20*time.Millisecond)
	m.Obstacles(4, 2)

	if got := testutil.ToFloat64(m.pathQueryTotal.WithLabelValues("astar", "true")); got != 2 {
		t.Errorf("expected 2 reachable queries, got %v", got)
	}
	if got := testutil.ToFloat64(m.pathQueryTotal.WithLabelValues("astar", "false")); got != 1 {
		t.Errorf("expected 1 unreachable query, got %v", got)
	}
	if got := testutil.ToFloat64(m.pathQueryCacheHits.WithLabelValues("astar")); got != 1 {
		t.Errorf("expected 1 cache hit, got %v", got)
	}
	if got := testutil.ToFloat64(m.obstacles.WithLabelValues("blocker")); got != 2 {
		t.Errorf("expected 2 blockers, got %v", got)
	}

	count, err := testutil.GatherAndCount(reg, "walkable_reachable_grid_duration_seconds")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count != 1 {
		t.Errorf("expected one grid duration series, got %d", count)
	}
}
