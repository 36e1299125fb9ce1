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

import "strings"

// Era buckets an interval by age: Hot (actively written), Warm (recently
// closed), Cold (everything older) — spec.md §4.3.
type Era uint8

const (
	ColdEra Era = iota
	WarmEra
	HotEra
)

// String renders the era's canonical lowercase name.
func (e Era) String() string {
	switch e {
	case HotEra:
		return "hot"
	case WarmEra:
		return "warm"
	default:
		return "cold"
	}
}

// ParseEra never fails: an unrecognized string defaults to Cold, matching
// original_source's EraType::from_str (spec.md §7 "Era parse from
// string", §9 open question — kept as observed rather than hardened,
// see DESIGN.md).
func ParseEra(s string) Era {
	switch strings.ToLower(s) {
	case "hot":
		return HotEra
	case "warm":
		return WarmEra
	default:
		return ColdEra
	}
}

// eraOrder is the fixed present-only ordering the digest checksum and
// compress() iterate eras in (spec.md §4.3 "ordered list [cold?.cs,
// warm?.cs, hot?.cs]").
var eraOrder = [...]Era{ColdEra, WarmEra, HotEra}
