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

import "fmt"

// LogEntry is one storage log record: a key write/delete at a point in
// time (spec.md §4.3 "Structure", §6 "Inputs from storage").
type LogEntry struct {
	Timestamp Timestamp
	Key       string
}

// Compare sorts entries by timestamp, ties broken by key bytes (spec.md
// §4.3 "SubBucket.content = ordered set ... sorted by timestamp, ties
// broken by key bytes").
func (e LogEntry) Compare(other LogEntry) int {
	if c := e.Timestamp.Compare(other.Timestamp); c != 0 {
		return c
	}
	switch {
	case e.Key < other.Key:
		return -1
	case e.Key > other.Key:
		return 1
	default:
		return 0
	}
}

// Equal reports whether two entries identify the same log record: the
// identity used by removal/diff is (timestamp, key), not full equality
// of any value payload (there is none at this layer).
func (e LogEntry) Equal(other LogEntry) bool {
	return e.Compare(other) == 0
}

func formatEntry(e LogEntry) string {
	return fmt.Sprintf("%s-%s", e.Timestamp.String(), e.Key)
}
