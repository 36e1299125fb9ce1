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

package digest

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
)

const tracerName = "zenoh-router/digest"

// CreateDigestTimed wraps CreateDigest with a trace span and the call's
// wall-clock duration in seconds passed to observe. observe is
// typically metrics.Metrics.RecordDigestBuild; this package cannot
// import internal/metrics itself (internal/metrics depends on
// internal/config, which names internal/digest.Config, so the reverse
// import would cycle — see DESIGN.md). observe may be nil.
func CreateDigestTimed(ctx context.Context, ts Timestamp, cfg Config, rawLog []LogEntry, latestInterval uint64, observe func(seconds float64)) Digest {
	_, span := otel.Tracer(tracerName).Start(ctx, "CreateDigest")
	defer span.End()

	start := time.Now()
	d := CreateDigest(ts, cfg, rawLog, latestInterval)
	if observe != nil {
		observe(time.Since(start).Seconds())
	}
	return d
}

// UpdateDigestTimed wraps UpdateDigest the same way CreateDigestTimed
// wraps CreateDigest.
func UpdateDigestTimed(ctx context.Context, current Digest, latestInterval uint64, snapshotTS Timestamp, added, removed []LogEntry, observe func(seconds float64)) Digest {
	_, span := otel.Tracer(tracerName).Start(ctx, "UpdateDigest")
	defer span.End()

	start := time.Now()
	d := UpdateDigest(current, latestInterval, snapshotTS, added, removed)
	if observe != nil {
		observe(time.Since(start).Seconds())
	}
	return d
}
