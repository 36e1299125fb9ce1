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

// Package replica owns a single Digest (internal/digest) on behalf of a
// storage replica and drives create_digest/update_digest across the
// replica's lifetime (spec.md §4.3). The storage log itself — the
// Vec<LogEntry> this repo's digest is built and updated over — is an
// external collaborator per spec.md §1 ("the storage key/value engine"
// is out of scope); Log only tracks the pending added/removed batches a
// caller has reported since the last snapshot, not the log's content.
package replica

import (
	"context"
	"sync"

	"github.com/jito-labs/zenoh-router/internal/digest"
	"github.com/jito-labs/zenoh-router/internal/zid"
)

// Log coordinates a replica's digest across repeated snapshots. A zero
// Log is not usable; construct with NewLog.
type Log struct {
	mu sync.Mutex

	cfg     digest.Config
	current digest.Digest
	built   bool

	pendingAdded   []digest.LogEntry
	pendingRemoved []digest.LogEntry

	observeBuild  func(seconds float64)
	observeUpdate func(seconds float64)
}

// NewLog builds a Log for the given bucket geometry. observeBuild and
// observeUpdate are invoked with each Snapshot call's wall-clock
// duration (nil is fine — e.g. metrics.Global().RecordDigestBuild /
// RecordDigestUpdate in production, nothing in tests).
func NewLog(cfg digest.Config, observeBuild, observeUpdate func(seconds float64)) *Log {
	return &Log{cfg: cfg, observeBuild: observeBuild, observeUpdate: observeUpdate}
}

// Track records that entry was added to (removed=false) or removed from
// (removed=true) the underlying storage log since the last Snapshot.
// Safe to call concurrently with other Track calls and with Snapshot.
func (l *Log) Track(entry digest.LogEntry, removed bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if removed {
		l.pendingRemoved = append(l.pendingRemoved, entry)
	} else {
		l.pendingAdded = append(l.pendingAdded, entry)
	}
}

// Snapshot folds every Track call since the last Snapshot into the
// digest and returns the result. The first call builds from scratch
// (CreateDigestTimed over whatever was tracked as "added", since there
// is no prior digest to update); every subsequent call applies
// UpdateDigestTimed over just the delta, per spec.md §4.3's
// incremental-update contract.
func (l *Log) Snapshot(ctx context.Context, ts digest.Timestamp, latestInterval uint64) digest.Digest {
	l.mu.Lock()
	added, removed := l.pendingAdded, l.pendingRemoved
	l.pendingAdded, l.pendingRemoved = nil, nil
	wasBuilt := l.built
	current := l.current
	l.mu.Unlock()

	var next digest.Digest
	if !wasBuilt {
		next = digest.CreateDigestTimed(ctx, ts, l.cfg, added, latestInterval, l.observeBuild)
		if len(removed) > 0 {
			next = digest.UpdateDigestTimed(ctx, next, latestInterval, ts, nil, removed, l.observeUpdate)
		}
	} else {
		next = digest.UpdateDigestTimed(ctx, current, latestInterval, ts, added, removed, l.observeUpdate)
	}

	l.mu.Lock()
	l.current = next
	l.built = true
	l.mu.Unlock()

	return next
}

// SnapshotNow is Snapshot with the latest interval derived from
// nowMillis via the Log's own Config, for callers (the cmd maintenance
// job) that just want "fold in whatever changed since last time, as of
// now" without re-deriving bucket-width arithmetic themselves. Returns
// Current() unchanged if nowMillis falls outside a usable bucket (an
// unusable Config — see spec.md §7 "arithmetic cast fails" — should
// have been caught at config-validation time, not here).
func (l *Log) SnapshotNow(ctx context.Context, nowMillis uint64, localID zid.ID) digest.Digest {
	interval, ok := l.cfg.IntervalAt(nowMillis)
	if !ok {
		return l.Current()
	}
	ts := digest.Timestamp{Millis: nowMillis, ID: localID}
	return l.Snapshot(ctx, ts, interval)
}

// Current returns the most recent Snapshot result without recomputing
// anything, or the zero Digest if Snapshot has never been called.
func (l *Log) Current() digest.Digest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}
