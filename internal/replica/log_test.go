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

package replica_test

import (
	"context"
	"testing"

	"github.com/jito-labs/zenoh-router/internal/digest"
	"github.com/jito-labs/zenoh-router/internal/replica"
	"github.com/jito-labs/zenoh-router/internal/zid"
	"github.com/stretchr/testify/assert"
)

func cfg() digest.Config {
	return digest.Config{Delta: 1_000_000_000, SubIntervals: 10, Hot: 6, Warm: 30}
}

func entry(key string) digest.LogEntry {
	return digest.LogEntry{Timestamp: digest.Timestamp{Millis: 1671634800000, ID: zid.MustNew([]byte{0x01})}, Key: key}
}

func TestLogFirstSnapshotBuildsFromScratch(t *testing.T) {
	var buildCalls, updateCalls int
	l := replica.NewLog(cfg(), func(float64) { buildCalls++ }, func(float64) { updateCalls++ })

	l.Track(entry("demo/example/a"), false)
	d := l.Snapshot(context.Background(), digest.Timestamp{Millis: 1671634800000}, 1671634800)

	assert.NotZero(t, d.Checksum)
	assert.Equal(t, 1, buildCalls)
	assert.Equal(t, 0, updateCalls)
	assert.Equal(t, d, l.Current())
}

func TestLogSubsequentSnapshotsUpdateIncrementally(t *testing.T) {
	var buildCalls, updateCalls int
	l := replica.NewLog(cfg(), func(float64) { buildCalls++ }, func(float64) { updateCalls++ })

	l.Track(entry("demo/example/a"), false)
	first := l.Snapshot(context.Background(), digest.Timestamp{Millis: 1671634800000}, 1671634800)

	l.Track(entry("demo/example/b"), false)
	second := l.Snapshot(context.Background(), digest.Timestamp{Millis: 1671634801000}, 1671634800)

	assert.Equal(t, 1, buildCalls)
	assert.Equal(t, 1, updateCalls)
	assert.NotEqual(t, first.Checksum, second.Checksum)
}

func TestLogRoundTripAddRemoveReturnsEmpty(t *testing.T) {
	l := replica.NewLog(cfg(), nil, nil)

	l.Track(entry("demo/example/a"), false)
	l.Snapshot(context.Background(), digest.Timestamp{Millis: 1671634800000}, 1671634800)

	l.Track(entry("demo/example/a"), true)
	d := l.Snapshot(context.Background(), digest.Timestamp{Millis: 1671634801000}, 1671634800)

	assert.Equal(t, uint64(0), d.Checksum)
}

func TestLogSnapshotNowDerivesIntervalFromConfig(t *testing.T) {
	l := replica.NewLog(cfg(), nil, nil)
	l.Track(entry("demo/example/a"), false)

	d := l.SnapshotNow(context.Background(), 1671634800000, zid.MustNew([]byte{0x01}))
	assert.NotZero(t, d.Checksum)
	assert.Equal(t, d, l.Current())
}

func TestLogSnapshotWithNoTrackedEntriesIsIdempotent(t *testing.T) {
	l := replica.NewLog(cfg(), nil, nil)
	l.Track(entry("demo/example/a"), false)
	first := l.Snapshot(context.Background(), digest.Timestamp{Millis: 1671634800000}, 1671634800)

	second := l.Snapshot(context.Background(), digest.Timestamp{Millis: 1671634800000}, 1671634800)
	assert.Equal(t, first.Checksum, second.Checksum)
}
