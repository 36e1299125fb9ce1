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

// Package hat implements the declaration-propagation engine (spec.md
// §4.1–§4.2, §4.4, components D/E/F) and the Tables structure that
// owns the resource trie and face registry under a single lock
// (spec.md §5). "hat" names the role-aware routing core the way the
// original codebase does (its per-role protocol modules share that
// name); nothing here is a hat in any other sense.
package hat

import "github.com/jito-labs/zenoh-router/internal/zid"

// OriginKind classifies where a declare/undeclare came from (spec.md
// §4.1 "origin ∈ {RouterSourced(zid), PeerSourced(zid), Client}").
type OriginKind uint8

const (
	OriginClient OriginKind = iota
	OriginRouterSourced
	OriginPeerSourced
)

// Origin carries the declaring scope and, for sourced origins, the
// originating node's Zid (the registration key within that scope).
type Origin struct {
	Kind OriginKind
	Zid  zid.ID
}

func (o Origin) String() string {
	switch o.Kind {
	case OriginRouterSourced:
		return "router-sourced(" + o.Zid.String() + ")"
	case OriginPeerSourced:
		return "peer-sourced(" + o.Zid.String() + ")"
	default:
		return "client"
	}
}
