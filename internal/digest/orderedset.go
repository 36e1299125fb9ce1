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

// The original implementation stores bucket content as Rust BTreeSet,
// which gives sorted iteration and dedup for free. No ordered-set
// library appears anywhere in the retrieved pack (container/list is a
// doubly-linked list with no ordering or search, so it doesn't fit); the
// sorted-slice helpers below are the minimal idiomatic stand-in — see
// DESIGN.md.

package digest

import "sort"

// insertUint64 inserts v into a sorted, deduplicated slice.
func insertUint64(s []uint64, v uint64) []uint64 {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= v })
	if i < len(s) && s[i] == v {
		return s
	}
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

// removeUint64 removes v from a sorted slice, if present.
func removeUint64(s []uint64, v uint64) []uint64 {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= v })
	if i < len(s) && s[i] == v {
		return append(s[:i], s[i+1:]...)
	}
	return s
}

// insertLogEntry inserts e into a slice kept sorted by LogEntry.Compare,
// deduplicated by (timestamp, key).
func insertLogEntry(s []LogEntry, e LogEntry) []LogEntry {
	i := sort.Search(len(s), func(i int) bool { return s[i].Compare(e) >= 0 })
	if i < len(s) && s[i].Equal(e) {
		return s
	}
	s = append(s, LogEntry{})
	copy(s[i+1:], s[i:])
	s[i] = e
	return s
}

// removeLogEntry removes the entry matching (timestamp, key), if present.
func removeLogEntry(s []LogEntry, e LogEntry) []LogEntry {
	i := sort.Search(len(s), func(i int) bool { return s[i].Compare(e) >= 0 })
	if i < len(s) && s[i].Equal(e) {
		return append(s[:i], s[i+1:]...)
	}
	return s
}
