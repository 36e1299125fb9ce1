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

// SubBucket is the leaf bucket: a sorted set of log entries and their
// checksum (spec.md §4.3 "SubBucket.content = ordered set of LogEntry").
type SubBucket struct {
	Checksum uint64
	Content  []LogEntry
}

// Bucket is an interval or era bucket: a sorted set of child ids (sub
// ids within an interval, interval ids within an era) and their checksum
// (spec.md §4.3 "Bucket.content = ordered set of child ids").
type Bucket struct {
	Checksum uint64
	Content  []uint64
}
