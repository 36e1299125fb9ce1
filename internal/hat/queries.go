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

import (
	"context"

	"github.com/jito-labs/zenoh-router/internal/face"
	"github.com/jito-labs/zenoh-router/internal/resource"
	"github.com/jito-labs/zenoh-router/internal/wire"
	"github.com/jito-labs/zenoh-router/internal/zid"
	"go.opentelemetry.io/otel"
)

// DeclareQueryable registers a queryable (spec.md §4.2, which differs
// from §4.1's subscription engine in three ways: registrations carry
// QueryableInfo, propagation re-emits the local aggregate rather than
// the raw declaration, and re-declares trigger whenever that aggregate
// changes rather than only on first registration).
func (t *Tables) DeclareQueryable(ctx context.Context, srcFace *face.Face, expr string, info wire.QueryableInfo, origin Origin) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Tables.DeclareQueryable")
	defer span.End()

	res := t.resolve(expr)

	t.mu.Lock()
	rc := res.EnsureContext()
	changed := registerQablScope(rc, origin, srcFace, info, expr)
	var sends []pendingSend
	if changed {
		t.Metrics.RecordDeclare("qabl", originLabel(origin))
		if origin.Kind == OriginClient {
			t.cascadeClientQablDeclareLocked(rc)
		}
		sends = t.syncQueryableLocked(res, srcFace, expr)
		t.recomputeQueryRoutesLocked(res)
	}
	t.mu.Unlock()

	t.flush(ctx, sends)
}

// UndeclareQueryable is §4.2's mirror of DeclareQueryable.
func (t *Tables) UndeclareQueryable(ctx context.Context, srcFace *face.Face, expr string, origin Origin) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Tables.UndeclareQueryable")
	defer span.End()

	t.mu.RLock()
	res, ok := t.Root.LookupExisting(expr)
	t.mu.RUnlock()
	if !ok {
		return
	}

	t.mu.Lock()
	var sends []pendingSend
	if rc := res.Ctx; rc != nil && unregisterQablScope(rc, origin, srcFace, expr) {
		t.Metrics.RecordUndeclare("qabl", originLabel(origin))
		// spec.md §4.2: "On undeclare at a Router of a peer-scope qabl,
		// if local client/peer presence still exists, the engine
		// re-registers the aggregated info in the router scope (rather
		// than tearing down), because the router is still a valid
		// upstream."
		if origin.Kind == OriginPeerSourced && t.Role == face.RoleRouter && hasLocalQablPresence(rc, t.Zid) {
			rc.RouterQabls[t.Zid] = t.localQablInfo(rc, nil)
		}
		if origin.Kind == OriginClient {
			t.syncRouterSelfQablAfterRemovalLocked(res)
		}
		sends = t.syncQueryableLocked(res, srcFace, expr)
		t.recomputeQueryRoutesLocked(res)
		if rc.Empty() {
			res.Clean()
		}
	}
	t.mu.Unlock()

	t.flush(ctx, sends)
}

// registerQablScope mirrors registerSubScope; for OriginClient it also
// records expr in srcFace.RemoteQabls (spec.md §3 Face "remote_qabls"),
// the queryable counterpart of remote_subs that CloseFace drains on
// session teardown.
func registerQablScope(rc *resource.Context, origin Origin, srcFace *face.Face, info wire.QueryableInfo, expr string) bool {
	switch origin.Kind {
	case OriginRouterSourced:
		if existing, ok := rc.RouterQabls[origin.Zid]; ok && existing == info {
			return false
		}
		rc.RouterQabls[origin.Zid] = info
		return true
	case OriginPeerSourced:
		if existing, ok := rc.PeerQabls[origin.Zid]; ok && existing == info {
			return false
		}
		rc.PeerQabls[origin.Zid] = info
		return true
	default:
		sc := rc.SessionCtx(srcFace.ID)
		if sc.Qabl != nil && *sc.Qabl == info {
			return false
		}
		infoCopy := info
		sc.Qabl = &infoCopy
		srcFace.RemoteQabls[expr] = info
		return true
	}
}

func unregisterQablScope(rc *resource.Context, origin Origin, srcFace *face.Face, expr string) bool {
	switch origin.Kind {
	case OriginRouterSourced:
		if _, ok := rc.RouterQabls[origin.Zid]; !ok {
			return false
		}
		delete(rc.RouterQabls, origin.Zid)
		return true
	case OriginPeerSourced:
		if _, ok := rc.PeerQabls[origin.Zid]; !ok {
			return false
		}
		delete(rc.PeerQabls, origin.Zid)
		return true
	default:
		sc, ok := rc.SessionCtxs[srcFace.ID]
		if !ok || sc.Qabl == nil {
			return false
		}
		sc.Qabl = nil
		delete(srcFace.RemoteQabls, expr)
		return true
	}
}

// cascadeClientQablDeclareLocked mirrors the subscription cross-scope
// cascade (spec.md §4.1, assumed identical for §4.2 since §4.2 only
// calls out three specific differences): a client-side declare keeps
// the router's (or, on a fully-meshed Peer, the peer's) own scope entry
// in sync with the aggregate visible from below.
func (t *Tables) cascadeClientQablDeclareLocked(rc *resource.Context) {
	switch {
	case t.Role == face.RoleRouter:
		rc.RouterQabls[t.Zid] = t.localQablInfo(rc, nil)
	case t.Role == face.RolePeer && t.FullPeerNet:
		rc.PeerQabls[t.Zid] = t.localQablInfo(rc, nil)
	}
}

// localQablInfo folds the QueryableInfo visible to dst (spec.md §4.2
// point 2). dst may be nil when computing this node's own upstream
// self-aggregate (cascade bookkeeping) rather than a specific
// downstream face's view, in which case the session-scope visibility
// test is skipped (there is no specific face to hide from).
func (t *Tables) localQablInfo(rc *resource.Context, dst *face.Face) wire.QueryableInfo {
	var agg wire.QueryableInfo
	has := false
	merge := func(info wire.QueryableInfo) {
		if !has {
			agg, has = info, true
			return
		}
		agg = wire.Merge(t.MergeMode, agg, info)
	}

	for z, info := range rc.RouterQabls {
		if z != t.Zid {
			merge(info)
		}
	}
	if t.FullPeerNet {
		for z, info := range rc.PeerQabls {
			if z != t.Zid {
				merge(info)
			}
		}
	}
	for _, sc := range rc.SessionCtxs {
		if sc.Qabl == nil {
			continue
		}
		visible := true
		if dst != nil {
			if f, ok := t.Faces.Get(sc.FaceID); ok {
				visible = f.ID != dst.ID || f.Role != face.RolePeer || dst.Role != face.RolePeer || t.failoverBrokering(f.Zid, dst.Zid)
			}
		}
		if visible {
			merge(*sc.Qabl)
		}
	}
	return agg
}

func hasLocalQablPresence(rc *resource.Context, localZid zid.ID) bool {
	for _, sc := range rc.SessionCtxs {
		if sc.Qabl != nil {
			return true
		}
	}
	for z := range rc.PeerQabls {
		if z != localZid {
			return true
		}
	}
	return false
}

// syncQueryableLocked brings every other face's cached aggregate
// (F.LocalQabls[expr]) in line with what local_qabl_info currently
// computes for it: emits a fresh Declare when the aggregate changed (or
// is new), an Undeclare when no registration of any kind remains for
// expr at all. Used after both declare and undeclare, since a declare
// can lower an aggregate back toward empty just as an undeclare can
// (e.g. the last session-scope qabl terminates) without the resource's
// Context disappearing outright.
func (t *Tables) syncQueryableLocked(res *resource.Resource, srcFace *face.Face, expr string) []pendingSend {
	rc := res.Ctx
	if rc == nil {
		return nil
	}
	anyPresence := len(rc.RouterQabls) > 0 || len(rc.PeerQabls) > 0
	if !anyPresence {
		for _, sc := range rc.SessionCtxs {
			if sc.Qabl != nil {
				anyPresence = true
				break
			}
		}
	}

	var sends []pendingSend
	t.Faces.Range(func(f *face.Face) bool {
		// Unlike propagateSubscriberLocked's isLiveliness(expr) echo
		// exception, this skip has no liveliness relaxation: spec.md §4.2
		// never restates that exception for queryables, and a queryable
		// aggregate (unlike a plain declare) already only changes when the
		// set of registrations actually changes, so there's no liveliness
		// query response this skip could otherwise suppress.
		if srcFace != nil && f.ID == srcFace.ID {
			return true
		}
		last, had := f.LocalQabls[expr]

		if !anyPresence {
			if had {
				delete(f.LocalQabls, expr)
				sends = append(sends, pendingSend{face: f, msg: wire.Message{UndeclareQabl: &wire.UndeclareQueryable{
					ExtWireExpr: expr,
				}}})
			}
			return true
		}

		var srcRole face.Role
		if srcFace != nil {
			srcRole = srcFace.Role
		}
		allowed := roleMatrixAllows(t.Role, t.FullPeerNet, srcRole, f.Role, func() bool {
			if srcFace == nil {
				return false
			}
			return t.failoverBrokering(srcFace.Zid, f.Zid)
		})
		if !allowed {
			return true
		}

		agg := t.localQablInfo(rc, f)
		if had && last == agg {
			return true
		}
		f.LocalQabls[expr] = agg
		sends = append(sends, pendingSend{face: f, msg: wire.Message{DeclareQabl: &wire.DeclareQueryable{
			WireExpr: expr,
			Info:     agg,
		}}})
		return true
	})
	return sends
}

// recomputeQueryRoutesLocked mirrors recomputeDataRoutesLocked for the
// query route cache (spec.md §3; invariant I4).
func (t *Tables) recomputeQueryRoutesLocked(res *resource.Resource) {
	rc := res.EnsureContext()
	expr := res.FullExpr()
	routes := map[uint64]wire.NodeID{}
	t.Faces.Range(func(f *face.Face) bool {
		if _, ok := f.LocalQabls[expr]; ok {
			routes[f.ID] = 0
		}
		return true
	})
	rc.QueryRoutes = resource.RouteTable{Valid: true, Routes: routes}
	t.Metrics.RecordRouteRecompute("query")
}
