// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

package event

import (
	"github.com/prometheus/client_golang/prometheus"
)

// EventsEmitted is the counter for emitted logistics events.
// Use RegisterMetrics to register this with a Prometheus registry.
var EventsEmitted = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cargolog_events_emitted_total",
		Help: "Total number of logistics events emitted by action",
	},
	[]string{"action"},
)

// AppendFailures is the counter for durable log append failures.
// Use RegisterMetrics to register this with a Prometheus registry.
var AppendFailures = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "cargolog_event_append_failures_total",
		Help: "Total number of failed appends to the durable event log",
	},
)

// UnresolvedLocations is the counter for resolver fallbacks to the
// unobserved world location.
// Use RegisterMetrics to register this with a Prometheus registry.
var UnresolvedLocations = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "cargolog_unresolved_locations_total",
		Help: "Total number of events booked against the unobserved world location",
	},
)

// RegisterMetrics registers the event metrics with the given registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(EventsEmitted)
	reg.MustRegister(AppendFailures)
	reg.MustRegister(UnresolvedLocations)
}
