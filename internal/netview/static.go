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

package netview

import "github.com/jito-labs/zenoh-router/internal/zid"

// StaticView is a deterministic, in-memory View used by internal/hat's
// tests and by small deployments that recompute the whole graph on every
// topology change rather than maintaining it incrementally. Shaped after
// the teacher's InstanceRegistry (internal/dmr/servers/instance_registry.go):
// a small struct with plain getter methods over in-memory state, no
// background refresh loop since here the caller owns when the graph updates.
type StaticView struct {
	idx   map[zid.ID]NodeIdx
	zids  map[NodeIdx]zid.ID
	trees map[NodeIdx]Tree
	links map[zid.ID][]zid.ID
}

// NewStaticView builds an empty view; use the With* methods to populate it.
func NewStaticView() *StaticView {
	return &StaticView{
		idx:   map[zid.ID]NodeIdx{},
		zids:  map[NodeIdx]zid.ID{},
		trees: map[NodeIdx]Tree{},
		links: map[zid.ID][]zid.ID{},
	}
}

// WithNode registers a participant at a node index.
func (v *StaticView) WithNode(z zid.ID, idx NodeIdx) *StaticView {
	v.idx[z] = idx
	v.zids[idx] = z
	return v
}

// WithTree sets the spanning tree rooted at sourceIdx.
func (v *StaticView) WithTree(sourceIdx NodeIdx, children ...NodeIdx) *StaticView {
	v.trees[sourceIdx] = Tree{Children: children}
	return v
}

// WithLinks sets z's neighbor set.
func (v *StaticView) WithLinks(z zid.ID, neighbors ...zid.ID) *StaticView {
	v.links[z] = neighbors
	return v
}

func (v *StaticView) GetIdx(z zid.ID) (NodeIdx, bool) {
	idx, ok := v.idx[z]
	return idx, ok
}

func (v *StaticView) ZidOf(idx NodeIdx) (zid.ID, bool) {
	z, ok := v.zids[idx]
	return z, ok
}

func (v *StaticView) Tree(sourceIdx NodeIdx) (Tree, bool) {
	t, ok := v.trees[sourceIdx]
	return t, ok
}

func (v *StaticView) Links(z zid.ID) []zid.ID {
	return v.links[z]
}

var _ View = (*StaticView)(nil)
