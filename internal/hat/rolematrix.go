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

import "github.com/jito-labs/zenoh-router/internal/face"

// livelinessPrefix is the reserved key-expression prefix whose
// declarations are echoed back to their own source face (spec.md §4.1
// "Exception: ... the src.id ≠ F.id guard is relaxed").
const livelinessPrefix = "@/liveliness/"

// roleMatrixAllows is the propagation role matrix of spec.md §4.1,
// identical for subscriptions (§4.1) and queryables (§4.2, "identical
// matrix to subscriptions"). local is this node's own role; fullPeerNet
// is the operator policy that the peer mesh is fully connected; src and
// dst are the declaring and candidate-destination faces' roles.
// brokering is evaluated lazily (only the Router/non-mesh/Peer-Peer
// case needs it) since it may require a netview lookup.
func roleMatrixAllows(local face.Role, fullPeerNet bool, src, dst face.Role, brokering func() bool) bool {
	switch local {
	case face.RoleRouter:
		if fullPeerNet {
			return dst == face.RoleClient
		}
		if dst == face.RoleRouter {
			return false
		}
		if src != face.RolePeer || dst != face.RolePeer {
			return true
		}
		return brokering()
	case face.RolePeer:
		if fullPeerNet {
			return dst == face.RoleClient
		}
		return src == face.RoleClient || dst == face.RoleClient
	default: // RoleClient
		return src == face.RoleClient || dst == face.RoleClient
	}
}

// isLiveliness reports whether expr falls under the reserved
// liveliness prefix, relaxing the "don't echo to the originating face"
// guard.
func isLiveliness(expr string) bool {
	return len(expr) >= len(livelinessPrefix) && expr[:len(livelinessPrefix)] == livelinessPrefix
}
