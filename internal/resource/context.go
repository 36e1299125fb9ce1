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

package resource

import (
	"github.com/jito-labs/zenoh-router/internal/wire"
	"github.com/jito-labs/zenoh-router/internal/zid"
)

// SessionContext is the per-face client-scope registration for a
// resource (spec.md §3 "session_ctxs: Map<FaceId, SessionContext>").
type SessionContext struct {
	FaceID uint64
	Subs   *wire.SubscriberInfo
	Qabl   *wire.QueryableInfo
}

// live reports whether this session context still carries a
// registration of either kind.
func (s *SessionContext) live() bool {
	return s.Subs != nil || s.Qabl != nil
}

// RouteTable is a cached face-fanout for a resource: which faces to
// forward matching data/queries to, and the node_id routing context for
// each (0 when the face is reached directly rather than via a sourced
// tree). spec.md §3 "Cached computed route tables ... invalidated by
// disable_matches_*_routes"; §4.1 "Invalidate and recompute data routes
// for matching resources" on every declare/undeclare.
type RouteTable struct {
	Valid  bool
	Routes map[uint64]wire.NodeID
}

// Context holds every declaration that refers to a Resource, across the
// three registration scopes (spec.md §3). It is allocated lazily —
// Resource.Ctx is nil until the first declare or match touches the
// resource.
type Context struct {
	RouterSubs map[zid.ID]struct{}
	PeerSubs   map[zid.ID]struct{}

	RouterQabls map[zid.ID]wire.QueryableInfo
	PeerQabls   map[zid.ID]wire.QueryableInfo

	SessionCtxs map[uint64]*SessionContext

	DataRoutes  RouteTable
	QueryRoutes RouteTable
}

func newContext() *Context {
	return &Context{
		RouterSubs:  map[zid.ID]struct{}{},
		PeerSubs:    map[zid.ID]struct{}{},
		RouterQabls: map[zid.ID]wire.QueryableInfo{},
		PeerQabls:   map[zid.ID]wire.QueryableInfo{},
		SessionCtxs: map[uint64]*SessionContext{},
	}
}

// SessionCtx returns the per-face session context, allocating it if
// this is the first client-scope touch from that face.
func (c *Context) SessionCtx(faceID uint64) *SessionContext {
	sc, ok := c.SessionCtxs[faceID]
	if !ok {
		sc = &SessionContext{FaceID: faceID}
		c.SessionCtxs[faceID] = sc
	}
	return sc
}

// Empty implements invariant I3: all four scope collections empty and
// no session context still carries a live registration.
func (c *Context) Empty() bool {
	if len(c.RouterSubs) != 0 || len(c.PeerSubs) != 0 {
		return false
	}
	if len(c.RouterQabls) != 0 || len(c.PeerQabls) != 0 {
		return false
	}
	for _, sc := range c.SessionCtxs {
		if sc.live() {
			return false
		}
	}
	return true
}

// DisableDataRoutes invalidates the cached data route table, forcing
// recomputation on next lookup (spec.md §3 "disable_matches_*_routes").
func (c *Context) DisableDataRoutes() {
	c.DataRoutes = RouteTable{}
}

// DisableQueryRoutes invalidates the cached query route table.
func (c *Context) DisableQueryRoutes() {
	c.QueryRoutes = RouteTable{}
}
