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

// Package netview defines the adapter seam over the overlay's link-state
// graph (spec.md §1 "the overlay's link-state graph itself" is an external
// collaborator, interfaced in §6; spec.md §3 "Network view"). internal/hat
// depends only on the View interface; the actual link-state computation
// (SPF over a gossiped topology) lives outside this module's scope.
package netview

import "github.com/jito-labs/zenoh-router/internal/zid"

// NodeIdx is a node's position in a NetType's graph, stable only within
// that graph's current generation (a topology change may renumber it).
type NodeIdx uint32

// NetType selects which of the two link-state graphs a query targets.
// spec.md §3 "Network view ... for each net_type ∈ {Router, Peer}".
type NetType uint8

const (
	NetRouter NetType = iota
	NetPeer
)

// Tree is one source-rooted spanning tree: Children lists the node
// indices of this node's children in the tree rooted at the tree's
// source.
type Tree struct {
	Children []NodeIdx
}

// View is the read-only per-net_type adapter spec.md §3 describes:
// get_idx, trees[sid].children, get_links.
type View interface {
	// GetIdx resolves a participant's current node index, if it is a
	// member of this net_type's graph.
	GetIdx(z zid.ID) (NodeIdx, bool)
	// ZidOf is the inverse of GetIdx: the Zid owning a node index.
	ZidOf(idx NodeIdx) (zid.ID, bool)
	// Tree returns the spanning tree rooted at the given source index.
	// ok is false when the tree is not yet computed for that source
	// (spec.md §7 "Tree source index exceeds trees.len()": caller must
	// treat this as "tree not yet ready" and skip propagation).
	Tree(sourceIdx NodeIdx) (Tree, bool)
	// Links returns the neighbor set of z in this net_type's graph.
	Links(z zid.ID) []zid.ID
}
