// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

package watch

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WatchedEntities is the gauge for currently monitored entities.
// Use RegisterMetrics to register this with a Prometheus registry.
var WatchedEntities = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "cargolog_watched_entities",
		Help: "Number of entities currently on the monitoring watchlist",
	},
)

// Evictions is the counter for watchlist evictions by reason.
// Use RegisterMetrics to register this with a Prometheus registry.
var Evictions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cargolog_watch_evictions_total",
		Help: "Total number of watchlist evictions by reason",
	},
	[]string{"reason"},
)

// ScanDuration is the histogram for watchlist scan duration.
// Use RegisterMetrics to register this with a Prometheus registry.
var ScanDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "cargolog_watch_scan_duration_seconds",
		Help:    "Watchlist scan duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
)

// RegisterMetrics registers the watchlist metrics with the given registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(WatchedEntities)
	reg.MustRegister(Evictions)
	reg.MustRegister(ScanDuration)
}
