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

// Compress produces the over-the-wire form (spec.md §4.3 "compress"):
// Hot keeps full detail, Warm keeps interval checksums with subintervals
// stripped, Cold is flattened to a bare era checksum. Compress does not
// mutate d; it returns a fresh Digest with its own maps, but the buckets
// it copies by value still share their Content slices with d's.
func (d Digest) Compress() Digest {
	out := newDigest(d.Timestamp, d.Config)
	out.Checksum = d.Checksum

	if hot, ok := d.Eras[HotEra]; ok {
		out.Eras[HotEra] = hot
		for _, interval := range hot.Content {
			if iv, ok := d.Intervals[interval]; ok {
				out.Intervals[interval] = iv
				for _, sub := range iv.Content {
					if sb, ok := d.Subintervals[sub]; ok {
						out.Subintervals[sub] = sb
					}
				}
			}
		}
	}

	if warm, ok := d.Eras[WarmEra]; ok {
		out.Eras[WarmEra] = warm
		for _, interval := range warm.Content {
			if iv, ok := d.Intervals[interval]; ok {
				out.Intervals[interval] = Bucket{Checksum: iv.Checksum}
			}
		}
	}

	if cold, ok := d.Eras[ColdEra]; ok {
		out.Eras[ColdEra] = Bucket{Checksum: cold.Checksum}
	}

	return out
}

// GetEraContent returns {interval id -> checksum} for an era, the first
// round of an alignment exchange (spec.md §4.3 "Alignment queries").
func (d Digest) GetEraContent(era Era) map[uint64]uint64 {
	result := map[uint64]uint64{}
	bucket, ok := d.Eras[era]
	if !ok {
		return result
	}
	for _, interval := range bucket.Content {
		if iv, ok := d.Intervals[interval]; ok {
			result[interval] = iv.Checksum
		}
	}
	return result
}

// GetIntervalContent returns {sub id -> checksum} for the given
// intervals.
func (d Digest) GetIntervalContent(intervals map[uint64]struct{}) map[uint64]uint64 {
	result := map[uint64]uint64{}
	for interval := range intervals {
		iv, ok := d.Intervals[interval]
		if !ok {
			continue
		}
		for _, sub := range iv.Content {
			if sb, ok := d.Subintervals[sub]; ok {
				result[sub] = sb.Checksum
			}
		}
	}
	return result
}

// GetSubintervalContent returns the log entries held for each requested
// subinterval.
func (d Digest) GetSubintervalContent(subs map[uint64]struct{}) map[uint64][]LogEntry {
	result := map[uint64][]LogEntry{}
	for sub := range subs {
		if sb, ok := d.Subintervals[sub]; ok {
			result[sub] = sb.Content
		}
	}
	return result
}
