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

// EraHasDiff reports whether the peer's digest has an era this one
// lacks, or disagrees on its checksum (spec.md §4.3 "Alignment queries").
func (d Digest) EraHasDiff(era Era, other map[Era]Bucket) bool {
	otherBucket, otherHas := other[era]
	if !otherHas {
		return false
	}
	mine, haveMine := d.Eras[era]
	if !haveMine {
		return true
	}
	return otherBucket.Checksum != mine.Checksum
}

// GetIntervalDiff returns the interval ids where the peer's checksum is
// absent locally or differs.
func (d Digest) GetIntervalDiff(otherIntervals map[uint64]uint64) map[uint64]struct{} {
	mismatched := map[uint64]struct{}{}
	for id, cs := range otherIntervals {
		if iv, ok := d.Intervals[id]; !ok || iv.Checksum != cs {
			mismatched[id] = struct{}{}
		}
	}
	return mismatched
}

// GetSubintervalDiff is GetIntervalDiff one level down.
func (d Digest) GetSubintervalDiff(otherSubs map[uint64]uint64) map[uint64]struct{} {
	mismatched := map[uint64]struct{}{}
	for id, cs := range otherSubs {
		if sb, ok := d.Subintervals[id]; !ok || sb.Checksum != cs {
			mismatched[id] = struct{}{}
		}
	}
	return mismatched
}

// GetContentDiff returns the entries in otherContent this digest is
// missing for the given subinterval: the full peer content if the
// subinterval is unknown locally, else the set difference.
func (d Digest) GetContentDiff(sub uint64, otherContent []LogEntry) []LogEntry {
	local, ok := d.Subintervals[sub]
	if !ok {
		out := make([]LogEntry, len(otherContent))
		copy(out, otherContent)
		return out
	}
	var missing []LogEntry
	for _, e := range otherContent {
		if !containsEntry(local.Content, e) {
			missing = append(missing, e)
		}
	}
	return missing
}

// GetFullContentDiff is GetContentDiff applied across a batch of
// subintervals, as returned by a GetSubinterval round.
func (d Digest) GetFullContentDiff(otherSubs map[uint64][]LogEntry) []LogEntry {
	var missing []LogEntry
	for sub, content := range otherSubs {
		missing = append(missing, d.GetContentDiff(sub, content)...)
	}
	return missing
}

func containsEntry(sorted []LogEntry, e LogEntry) bool {
	for _, s := range sorted {
		if s.Equal(e) {
			return true
		}
	}
	return false
}
