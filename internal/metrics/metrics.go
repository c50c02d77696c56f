package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Graph metrics
	NodeCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "routeopt_graph_node_count",
		Help: "Number of token nodes in the routing graph",
	})

	EdgeCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "routeopt_graph_edge_count",
		Help: "Number of directed edges in the routing graph",
	})

	PoolUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "routeopt_pool_updates_total",
		Help: "Total number of pool snapshots applied to the graph",
	})

	GraphSnapshotRebuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "routeopt_graph_snapshot_rebuilds_total",
		Help: "Total number of graph snapshot rebuilds",
	})

	// Search metrics
	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routeopt_search_requests_total",
			Help: "Total number of pathfinding requests",
		},
		[]string{"algorithm", "status"},
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "routeopt_search_duration_seconds",
			Help:    "Pathfinding duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.002, 0.005, 0.01, 0.02, 0.05, 0.1, 0.25, 0.5},
		},
		[]string{"algorithm"},
	)

	NodesExplored = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "routeopt_nodes_explored",
		Help:    "Nodes explored per search",
		Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000},
	})

	PathsReturned = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "routeopt_paths_returned",
		Help:    "Candidate routes returned per search",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
	})

	ArbitrageCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "routeopt_arbitrage_cycles_total",
		Help: "Total number of negative cycles reported as arbitrage results",
	})

	SearchTimeouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routeopt_search_timeouts_total",
			Help: "Total number of algorithm runs cancelled at their deadline",
		},
		[]string{"algorithm"},
	)

	// Cache metrics
	PathCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "routeopt_path_cache_hits_total",
		Help: "Total number of path cache hits",
	})

	PathCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "routeopt_path_cache_misses_total",
		Help: "Total number of path cache misses",
	})

	PathCacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "routeopt_path_cache_size",
		Help: "Current number of entries in the path cache",
	})

	// Price impact distribution of accepted routes
	PriceImpact = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "routeopt_price_impact_pct",
			Help:    "Total price impact of accepted routes in percent",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 3, 5, 10},
		},
		[]string{"severity"},
	)

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routeopt_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "routeopt_http_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
