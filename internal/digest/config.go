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

import "time"

// Config is DigestConfig from spec.md §4.3: the bucket geometry. Peers
// must share the same Config for alignment to converge (spec.md §6).
type Config struct {
	Delta        time.Duration
	SubIntervals uint64
	Hot          uint64
	Warm         uint64
}

// subIntervalWidth is delta_ms / sub_intervals, the width in milliseconds
// of one subinterval bucket. Returns (0, false) if the config can't
// produce a usable bucket width (spec.md §7 "arithmetic cast fails").
func (c Config) subIntervalWidth() (uint64, bool) {
	if c.SubIntervals == 0 {
		return 0, false
	}
	deltaMS := uint64(c.Delta / time.Millisecond)
	if deltaMS == 0 {
		return 0, false
	}
	width := deltaMS / c.SubIntervals
	if width == 0 {
		return 0, false
	}
	return width, true
}

// subID computes sub_id = ts_ms / (delta_ms / sub_intervals).
func (c Config) subID(millis uint64) (uint64, bool) {
	width, ok := c.subIntervalWidth()
	if !ok {
		return 0, false
	}
	return millis / width, true
}

// intervalID computes interval_id = sub_id / sub_intervals.
func (c Config) intervalID(sub uint64) uint64 {
	if c.SubIntervals == 0 {
		return 0
	}
	return sub / c.SubIntervals
}

// eraFor classifies interval under latestInterval: Hot if interval_id >=
// latest_interval - hot + 1, else Warm if >= latest_interval - hot -
// warm + 1, else Cold (spec.md §4.3). Computed in int64 so that a
// latestInterval smaller than hot/warm yields negative thresholds (every
// interval then classifies as Hot, or Warm) instead of wrapping, since
// Go's uint64 subtraction wraps rather than panics.
func (c Config) eraFor(latestInterval, interval uint64) Era {
	hotMin := int64(latestInterval) - int64(c.Hot) + 1
	warmMin := hotMin - int64(c.Warm)
	iv := int64(interval)
	switch {
	case iv >= hotMin:
		return HotEra
	case iv >= warmMin:
		return WarmEra
	default:
		return ColdEra
	}
}

// bucketOf resolves the (sub, interval, era) triple for a timestamp,
// reporting false if the entry should be dropped (spec.md §7 "Digest
// bucketing overflow").
func (c Config) bucketOf(millis uint64, latestInterval uint64) (sub, interval uint64, era Era, ok bool) {
	sub, ok = c.subID(millis)
	if !ok {
		return 0, 0, 0, false
	}
	interval = c.intervalID(sub)
	era = c.eraFor(latestInterval, interval)
	return sub, interval, era, true
}

// IntervalAt exposes intervalID/subID to callers outside the package
// (internal/replica's periodic snapshot needs "what interval is `now`
// in" without duplicating the bucket-width arithmetic). Returns
// (0, false) under the same conditions bucketOf would drop an entry.
func (c Config) IntervalAt(millis uint64) (interval uint64, ok bool) {
	sub, ok := c.subID(millis)
	if !ok {
		return 0, false
	}
	return c.intervalID(sub), true
}
