// SPDX-License-Identifier: AGPL-3.0-or-later
// zenoh-router - declaration-propagation and replica-digest routing core
// Copyright (C) 2026 the zenoh-router authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// The source code is available at <https://github.com/jito-labs/zenoh-router>

package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the routing core's Prometheus instrumentation: declaration
// churn (spec.md §4.1/§4.2), route-cache recomputation (spec.md §5),
// digest rebuild cost (spec.md §4.3), and the outbound-queue drop
// counter spec.md §5 calls for ("the routing engine must never block a
// send while holding the tables write lock" implies drops, not
// blocking, are the failure mode to observe).
type Metrics struct {
	DeclareTotal         *prometheus.CounterVec
	UndeclareTotal       *prometheus.CounterVec
	DigestBuildDuration  prometheus.Histogram
	DigestUpdateDuration prometheus.Histogram
	RouteRecomputeTotal  *prometheus.CounterVec
	FaceSendDrops        prometheus.Gauge
}

// NewMetrics builds and registers the metric families, mirroring the
// teacher's internal/metrics.NewMetrics/register split.
func NewMetrics() *Metrics {
	m := &Metrics{
		DeclareTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zenoh_router_declares_total",
			Help: "Total number of subscriber/queryable declarations processed",
		}, []string{"kind", "origin"}),
		UndeclareTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zenoh_router_undeclares_total",
			Help: "Total number of subscriber/queryable undeclarations processed",
		}, []string{"kind", "origin"}),
		DigestBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "zenoh_router_digest_build_duration_seconds",
			Help:    "Duration of CreateDigest calls",
			Buckets: prometheus.DefBuckets,
		}),
		DigestUpdateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "zenoh_router_digest_update_duration_seconds",
			Help:    "Duration of UpdateDigest calls",
			Buckets: prometheus.DefBuckets,
		}),
		RouteRecomputeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zenoh_router_route_recompute_total",
			Help: "Total number of data/query route-table recomputations",
		}, []string{"kind"}),
		FaceSendDrops: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "zenoh_router_face_send_drops",
			Help: "Sum, across every currently registered face, of outbound declares dropped by a full or canceled face queue",
		}),
	}
	m.register()
	return m
}

func (m *Metrics) register() {
	prometheus.MustRegister(m.DeclareTotal)
	prometheus.MustRegister(m.UndeclareTotal)
	prometheus.MustRegister(m.DigestBuildDuration)
	prometheus.MustRegister(m.DigestUpdateDuration)
	prometheus.MustRegister(m.RouteRecomputeTotal)
	prometheus.MustRegister(m.FaceSendDrops)
}

// RecordDeclare records one declaration of the given kind ("sub" or
// "qabl") and origin ("client", "router", "peer"). Nil-safe so
// internal/hat can call it unconditionally even when no Metrics was
// configured (e.g. in unit tests).
func (m *Metrics) RecordDeclare(kind, origin string) {
	if m == nil {
		return
	}
	m.DeclareTotal.WithLabelValues(kind, origin).Inc()
}

// RecordUndeclare is RecordDeclare's counterpart for retractions.
func (m *Metrics) RecordUndeclare(kind, origin string) {
	if m == nil {
		return
	}
	m.UndeclareTotal.WithLabelValues(kind, origin).Inc()
}

// RecordRouteRecompute records one route-table recomputation of the
// given kind ("data" or "query").
func (m *Metrics) RecordRouteRecompute(kind string) {
	if m == nil {
		return
	}
	m.RouteRecomputeTotal.WithLabelValues(kind).Inc()
}

// RecordDigestBuild observes one CreateDigest call's duration in seconds.
func (m *Metrics) RecordDigestBuild(seconds float64) {
	if m == nil {
		return
	}
	m.DigestBuildDuration.Observe(seconds)
}

// RecordDigestUpdate observes one UpdateDigest call's duration in seconds.
func (m *Metrics) RecordDigestUpdate(seconds float64) {
	if m == nil {
		return
	}
	m.DigestUpdateDuration.Observe(seconds)
}

// RecordFaceSendDrops sets the outbound-queue drop gauge to the given
// sum. Callers (cmd's periodic maintenance job) recompute this from
// every registered face's Outbound.Dropped() rather than incrementing
// per-drop, since internal/face cannot import internal/metrics without
// an import cycle (internal/metrics depends on internal/config, which
// in turn names internal/face.Role — see DESIGN.md).
func (m *Metrics) RecordFaceSendDrops(total float64) {
	if m == nil {
		return
	}
	m.FaceSendDrops.Set(total)
}

// global holds the process-wide Metrics instance so callers that
// don't carry a *Metrics reference (cmd/root.go's maintenance job and
// its internal/replica.Log callbacks) can still record against it. Set
// once from cmd/root.go via SetGlobal; reads before that return nil,
// whose Record* methods are no-ops.
var global atomic.Pointer[Metrics]

// SetGlobal installs the process-wide Metrics instance.
func SetGlobal(m *Metrics) {
	global.Store(m)
}

// Global returns the process-wide Metrics instance, or nil if SetGlobal
// was never called — every recording method on a nil *Metrics is a
// no-op, so callers never need to check for nil themselves.
func Global() *Metrics {
	return global.Load()
}
