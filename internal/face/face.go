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

// Package face implements the per-session face record (spec.md §3
// "Face", component B) and its outbound declare queue.
package face

import (
	"github.com/jito-labs/zenoh-router/internal/wire"
	"github.com/jito-labs/zenoh-router/internal/zid"
)

// Role is the participant role a Face was opened as (spec.md §1).
type Role uint8

const (
	RoleRouter Role = iota
	RolePeer
	RoleClient
)

func (r Role) String() string {
	switch r {
	case RoleRouter:
		return "router"
	case RolePeer:
		return "peer"
	default:
		return "client"
	}
}

// Face is one session to a remote participant (spec.md §3). The four
// registration sets/maps are mutated only under the owning Tables'
// lock (spec.md §5 "Per-face structures are mutated only under the
// tables lock"); Outbound is the exception — it has its own internal
// synchronization so engine code can enqueue from within a locked
// section without blocking (see outbound.go).
type Face struct {
	ID   uint64
	Zid  zid.ID
	Role Role

	// LocalSubs is the set of resources we have declared *to* this face
	// and not since undeclared (invariant I2). Keyed by the resource's
	// canonical key-expression string; the map has no defined order.
	LocalSubs map[string]struct{}
	// LocalQabls mirrors LocalSubs for queryables, caching the last
	// QueryableInfo aggregate sent so re-declaration can detect a change
	// (spec.md §4.2 point 3).
	LocalQabls map[string]wire.QueryableInfo

	RemoteSubs  map[string]struct{}
	RemoteQabls map[string]wire.QueryableInfo

	Outbound *Outbound
}

// New builds a Face with empty registration sets and a bounded,
// non-blocking-to-the-caller outbound queue of the given capacity.
func New(id uint64, z zid.ID, role Role, sink Primitives, capacity int) *Face {
	return &Face{
		ID:          id,
		Zid:         z,
		Role:        role,
		LocalSubs:   map[string]struct{}{},
		LocalQabls:  map[string]wire.QueryableInfo{},
		RemoteSubs:  map[string]struct{}{},
		RemoteQabls: map[string]wire.QueryableInfo{},
		Outbound:    NewOutbound(sink, capacity),
	}
}

// Drain synthesizes undeclares for every remaining remote_subs/
// remote_qabls entry, per spec.md §3 "Lifecycle": "faces are ... drained
// on close (which synthesizes undeclares for every entry in remote_subs
// and remote_qabls)". It returns the synthesized keys; the caller
// (internal/hat) is responsible for actually unregistering them from
// the resource tree under the tables lock.
func (f *Face) Drain() (subs []string, qabls []string) {
	for k := range f.RemoteSubs {
		subs = append(subs, k)
	}
	for k := range f.RemoteQabls {
		qabls = append(qabls, k)
	}
	f.RemoteSubs = map[string]struct{}{}
	f.RemoteQabls = map[string]wire.QueryableInfo{}
	return subs, qabls
}
