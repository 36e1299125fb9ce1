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

package hat

import "github.com/jito-labs/zenoh-router/internal/zid"

// failoverBrokeringTo is failover_brokering_to(links, zid) from spec.md
// §4.1: true iff target is absent from the given link set.
func failoverBrokeringTo(links []zid.ID, target zid.ID) bool {
	for _, l := range links {
		if l == target {
			return false
		}
	}
	return true
}

// failoverBrokering is failover_brokering(a, b) from spec.md §4.1: true
// iff both a and b are members of the peer link-state graph but b is
// not among a's neighbors there — i.e. this node must bridge them.
// Returns false if there is no peer view at all (a Client-role node, or
// a Router not tracking a peer mesh).
func (t *Tables) failoverBrokering(a, b zid.ID) bool {
	if t.NetPeer == nil {
		return false
	}
	if _, ok := t.NetPeer.GetIdx(a); !ok {
		return false
	}
	if _, ok := t.NetPeer.GetIdx(b); !ok {
		return false
	}
	return failoverBrokeringTo(t.NetPeer.Links(a), b)
}
