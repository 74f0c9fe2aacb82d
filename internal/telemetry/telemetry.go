// Package telemetry exports walkable query metrics to prometheus.
package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics implements walkable.Observer
type Metrics struct {
	pathQueryTotal     *prometheus.CounterVec
	pathQueryDuration  *prometheus.HistogramVec
	pathQueryCacheHits *prometheus.CounterVec
	gridDuration       prometheus.Histogram
	gridSampled        prometheus.Histogram
	gridKept           prometheus.Histogram
	obstacles          *prometheus.GaugeVec
}

// New registers the walkable metrics with reg. Passing nil uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// pathQueryTotal counts queries by strategy and outcome
		pathQueryTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "walkable_path_query_total",
			Help: "Total path queries by strategy and reachability",
		}, []string{"strategy", "reachable"}),

		pathQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "walkable_path_query_duration_seconds",
			Help:    "Path query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 16), // 10us to ~330ms
		}, []string{"strategy"}),

		pathQueryCacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "walkable_path_query_cache_hits_total",
			Help: "Path queries answered from the last-query cache",
		}, []string{"strategy"}),

		gridDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "walkable_reachable_grid_duration_seconds",
			Help:    "Reachable grid computation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}),

		gridSampled: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "walkable_reachable_grid_sampled_cells",
			Help:    "Cells sampled per reachable grid computation",
			Buckets: []float64{1, 9, 25, 49, 121, 225, 441, 961, 1681},
		}),

		gridKept: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "walkable_reachable_grid_kept_cells",
			Help:    "Reachable cells kept per grid computation",
			Buckets: []float64{0, 1, 9, 25, 49, 121, 225, 441, 961},
		}),

		obstacles: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "walkable_obstacles",
			Help: "Obstacles in the mesh by kind",
		}, []string{"kind"}),
	}
}

func (m *Metrics) PathQuery(strategy string, cached, reachable bool, elapsed time.Duration) {
	m.pathQueryTotal.WithLabelValues(strategy, strconv.FormatBool(reachable)).Inc()
	if cached {
		m.pathQueryCacheHits.WithLabelValues(strategy).Inc()
		return
	}
	m.pathQueryDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
}

func (m *Metrics) ReachableGrid(sampled, kept int, elapsed time.Duration) {
	m.gridDuration.Observe(elapsed.Seconds())
	m.gridSampled.Observe(float64(sampled))
	m.gridKept.Observe(float64(kept))
}

func (m *Metrics) Obstacles(walls, blockers int) {
	m.obstacles.WithLabelValues("wall").Set(float64(walls))
	m.obstacles.WithLabelValues("blocker").Set(float64(blockers))
}
