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
	"fmt"

	"github.com/jito-labs/zenoh-router/internal/zid"
)

// Timestamp is a digest log-entry timestamp: milliseconds since the
// system-wide fixed epoch (spec.md §6 "Epoch"), tie-broken by the
// originating node's identity. original_source's commons/zenoh-codec
// Timestamp Display format is not part of the retrieved pack (only
// digest.rs is), so this canonical string form is our own — it is the
// one `format(LogEntry)` (spec.md §4.3) is defined against, fixed and
// documented rather than guessed at the upstream wire format.
type Timestamp struct {
	Millis uint64
	ID     zid.ID
}

// Compare gives the total order digest log entries sort by: time first,
// then node identity (spec.md §4.3 "ties broken by key bytes" applies at
// the LogEntry level; this breaks ties between equal-time entries from
// different sources before the key comparison is reached).
func (t Timestamp) Compare(other Timestamp) int {
	switch {
	case t.Millis < other.Millis:
		return -1
	case t.Millis > other.Millis:
		return 1
	default:
		return t.ID.Compare(other.ID)
	}
}

// String renders the canonical form hashed into digest checksums.
func (t Timestamp) String() string {
	return fmt.Sprintf("%d/%s", t.Millis, t.ID.String())
}
