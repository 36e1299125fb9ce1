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

// Package config is the statically loaded node configuration, loaded
// through configulator the way the teacher's internal/config is — see
// cmd/root.go's loadConfig for the load path.
package config

import (
	"time"

	"github.com/jito-labs/zenoh-router/internal/digest"
)

// Config is the top-level node configuration: identity and role
// (spec.md §3 "Face"/"Network view"), the declaration-propagation
// merge rule (spec.md §4.2), the replica digest's bucket geometry
// (spec.md §4.3), and the ambient logging/metrics/pprof stack.
type Config struct {
	// Zid is this node's zenoh id, hex-encoded (internal/zid.Parse).
	Zid string `yaml:"zid"`
	// Role is this node's net_type: "router", "peer", or "client".
	Role Role `yaml:"role" default:"router"`
	// FullPeerNet is spec.md §4.1's full_peer_net flag: true when every
	// peer maintains a link to every other peer. With it set, a Router or
	// Peer propagates declarations only to Client faces and never consults
	// failover brokering (internal/hat/rolematrix.go).
	FullPeerNet bool `yaml:"full_peer_net"`
	// QueryableMergeMode picks how overlapping QueryableInfo
	// registrations on one resource fold together (spec.md §3
	// "QueryableInfo"): "sum" or "bool_or".
	QueryableMergeMode MergeMode `yaml:"queryable_merge_mode" default:"sum"`

	LogLevel LogLevel `yaml:"log_level" default:"info"`

	Digest  Digest  `yaml:"digest"`
	Metrics Metrics `yaml:"metrics"`
	PProf   PProf   `yaml:"pprof"`
}

// Digest is the replica digest's bucket geometry (spec.md §4.3
// "Structure"), mirrored onto internal/digest.Config by ToDigestConfig.
type Digest struct {
	// IntervalDuration is the width of one digest interval bucket.
	IntervalDuration time.Duration `yaml:"interval_duration" default:"30s"`
	// Subintervals is the number of subintervals per interval.
	Subintervals uint64 `yaml:"subintervals" default:"10"`
	// HotIntervals is how many of the most recent intervals are Hot.
	HotIntervals uint64 `yaml:"hot_intervals" default:"2"`
	// WarmIntervals is how many intervals after Hot are Warm before
	// aging into Cold.
	WarmIntervals uint64 `yaml:"warm_intervals" default:"10"`
	// CompressPayload enables zstd framing of the wire digest
	// (internal/digest/transport.go), per spec.md §6's
	// implementation-defined transport allowance.
	CompressPayload bool `yaml:"compress_payload" default:"true"`
}

// ToDigestConfig maps the configured bucket geometry onto
// internal/digest.Config.
func (d Digest) ToDigestConfig() digest.Config {
	return digest.Config{
		Delta:        d.IntervalDuration,
		SubIntervals: d.Subintervals,
		Hot:          d.HotIntervals,
		Warm:         d.WarmIntervals,
	}
}

// Metrics configures the Prometheus metrics server.
type Metrics struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Bind    string `yaml:"bind" default:"0.0.0.0"`
	Port    int    `yaml:"port" default:"9090"`
	// OTLPEndpoint is the OpenTelemetry collector gRPC endpoint; empty
	// disables tracing (see cmd/root.go's setupTracing).
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// PProf configures the pprof debug server.
type PProf struct {
	Enabled bool   `yaml:"enabled" default:"false"`
	Bind    string `yaml:"bind" default:"127.0.0.1"`
	Port    int    `yaml:"port" default:"6060"`
}
