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

package digest_test

import (
	"context"
	"testing"

	"github.com/jito-labs/zenoh-router/internal/digest"
	"github.com/stretchr/testify/assert"
)

func TestCreateDigestTimedMatchesCreateDigest(t *testing.T) {
	var observed float64
	want := digest.CreateDigest(ts(scenarioT), scenarioConfig(), []digest.LogEntry{entryA()}, 1671634800)
	got := digest.CreateDigestTimed(context.Background(), ts(scenarioT), scenarioConfig(), []digest.LogEntry{entryA()}, 1671634800, func(s float64) { observed = s })

	assert.Equal(t, want, got)
	assert.GreaterOrEqual(t, observed, 0.0)
}

func TestUpdateDigestTimedMatchesUpdateDigest(t *testing.T) {
	current := digest.CreateDigest(ts(scenarioT), scenarioConfig(), nil, 1671612730)

	var observed float64
	want := digest.UpdateDigest(current, 1671634910, ts(scenarioT), []digest.LogEntry{entryA()}, nil)
	got := digest.UpdateDigestTimed(context.Background(), current, 1671634910, ts(scenarioT), []digest.LogEntry{entryA()}, nil, func(s float64) { observed = s })

	assert.Equal(t, want, got)
	assert.GreaterOrEqual(t, observed, 0.0)
}

func TestCreateDigestTimedNilObserveIsSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		digest.CreateDigestTimed(context.Background(), ts(scenarioT), scenarioConfig(), nil, 1671612730, nil)
	})
}

func TestIntervalAt(t *testing.T) {
	cfg := scenarioConfig()
	interval, ok := cfg.IntervalAt(scenarioT)
	assert.True(t, ok)
	assert.Equal(t, uint64(1671634800), interval)
}

func TestIntervalAtUnusableConfig(t *testing.T) {
	_, ok := digest.Config{}.IntervalAt(scenarioT)
	assert.False(t, ok)
}
