// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

package compose

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DroppedNotifications is the counter for malformed notifications
// discarded without emitting events.
// Use RegisterMetrics to register this with a Prometheus registry.
var DroppedNotifications = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cargolog_dropped_notifications_total",
		Help: "Total number of malformed notifications dropped by kind",
	},
	[]string{"kind"},
)

// RegisterMetrics registers the composer metrics with the given registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(DroppedNotifications)
}
