package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cxxbind_stage_seconds",
		Help:    "Time spent in one pipeline stage.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	StageDeclarations = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cxxbind_stage_declarations",
		Help: "Declarations in the graph after a pipeline stage.",
	}, []string{"stage"})

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cxxbind_graph_nodes_total",
		Help: "Total number of declarations in the final API graph.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cxxbind_graph_edges_total",
		Help: "Total number of dependency edges in the final API graph.",
	})

	SynthesizedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cxxbind_synthesized_total",
		Help: "Declarations produced by the synthetic generators.",
	}, []string{"kind"})

	ErrorMarkersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cxxbind_error_markers_total",
		Help: "Declarations replaced by error markers, by fault kind.",
	}, []string{"fault"})

	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cxxbind_runs_total",
		Help: "Pipeline runs by outcome.",
	}, []string{"outcome"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cxxbind_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
