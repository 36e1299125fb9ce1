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

// NodeUp implements spec.md §4.4 "On node up": the face is registered,
// then every resource with any router/peer-scope presence gets a
// catch-up Declare if the role matrix allows it, and every qabl-bearing
// resource gets its current aggregate. A genuine per-source role-matrix
// re-derivation isn't meaningful here (a steady-state resource may have
// several sources with different roles); the catch-up conservatively
// treats the existing registration as reachable (brokering=true) the
// way an initial full resync would, rather than re-deriving per-source
// visibility from scratch.
func (t *Tables) NodeUp(ctx context.Context, f *face.Face) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Tables.NodeUp")
	defer span.End()

	t.Faces.Register(f)

	t.mu.Lock()
	keep := func(r *resource.Resource) bool {
		if r.Ctx == nil {
			return false
		}
		c := r.Ctx
		return len(c.RouterSubs) > 0 || len(c.PeerSubs) > 0 || len(c.RouterQabls) > 0 || len(c.PeerQabls) > 0
	}

	var sends []pendingSend
	for _, res := range t.Root.Iter(keep) {
		expr := res.FullExpr()
		rc := res.Ctx

		if len(rc.RouterSubs) > 0 || len(rc.PeerSubs) > 0 {
			if roleMatrixAllows(t.Role, t.FullPeerNet, face.RoleRouter, f.Role, func() bool { return true }) {
				if _, has := f.LocalSubs[expr]; !has {
					f.LocalSubs[expr] = struct{}{}
					sends = append(sends, pendingSend{face: f, msg: wire.Message{DeclareSub: &wire.DeclareSubscriber{WireExpr: expr}}})
				}
			}
			t.recomputeDataRoutesLocked(res)
		}

		if len(rc.RouterQabls) > 0 || len(rc.PeerQabls) > 0 {
			if roleMatrixAllows(t.Role, t.FullPeerNet, face.RoleRouter, f.Role, func() bool { return true }) {
				agg := t.localQablInfo(rc, f)
				if last, had := f.LocalQabls[expr]; !had || last != agg {
					f.LocalQabls[expr] = agg
					sends = append(sends, pendingSend{face: f, msg: wire.Message{DeclareQabl: &wire.DeclareQueryable{WireExpr: expr, Info: agg}}})
				}
			}
			t.recomputeQueryRoutesLocked(res)
		}
	}
	t.mu.Unlock()

	t.flush(ctx, sends)
}

// CloseFace implements spec.md §3's lifecycle step "faces are ...
// drained on close (which synthesizes undeclares for every entry in
// remote_subs and remote_qabls)" and §5's "on session teardown the face
// is removed and all its remote_* registrations are synthetically
// undeclared." remote_subs/remote_qabls are exactly the face's
// client-scope registrations (see registerSubScope/registerQablScope);
// router/peer-sourced scope entries belong to a zid, not a face, and are
// torn down by NodeDown instead, separately, when that participant's
// session (not just this face) actually goes away.
//
// This is the production entry point for internal/face.Face.Drain and
// internal/face.Registry.Unregister: without it, a closing client
// session's session_ctxs/RemoteSubs/RemoteQabls would never be
// released, leaking both the trie state and the face itself.
func (t *Tables) CloseFace(ctx context.Context, faceID uint64) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Tables.CloseFace")
	defer span.End()

	f, ok := t.Faces.Unregister(faceID)
	if !ok {
		return
	}

	t.mu.Lock()
	subs, qabls := f.Drain()

	var sends []pendingSend
	for _, expr := range subs {
		res, ok := t.Root.LookupExisting(expr)
		if !ok {
			continue
		}
		rc := res.Ctx
		if rc == nil || !unregisterSubScope(rc, Origin{Kind: OriginClient}, f, expr) {
			continue
		}
		t.Metrics.RecordUndeclare("sub", originLabel(Origin{Kind: OriginClient}))
		sends = append(sends, t.propagateForgetLocked(res, expr)...)
		sends = append(sends, t.cascadeClientUndeclareLocked(res, f, expr)...)
		t.recomputeDataRoutesLocked(res)
		if rc.Empty() {
			res.Clean()
		}
	}

	for _, expr := range qabls {
		res, ok := t.Root.LookupExisting(expr)
		if !ok {
			continue
		}
		rc := res.Ctx
		if rc == nil || !unregisterQablScope(rc, Origin{Kind: OriginClient}, f, expr) {
			continue
		}
		t.Metrics.RecordUndeclare("qabl", originLabel(Origin{Kind: OriginClient}))
		t.syncRouterSelfQablAfterRemovalLocked(res)
		sends = append(sends, t.syncQueryableLocked(res, f, expr)...)
		t.recomputeQueryRoutesLocked(res)
		if rc.Empty() {
			res.Clean()
		}
	}
	t.mu.Unlock()

	t.flush(ctx, sends)
}

// NodeDown implements spec.md §4.4 "On node down for scope S" and
// invariant P9: every resource referencing z in the named scope has z
// removed; if the resource ends up with no remaining presence anywhere
// (P9's "cleans any resource whose context becomes empty"), propagation
// withdraws it from every face and the resource itself is pruned.
func (t *Tables) NodeDown(ctx context.Context, z zid.ID, scope OriginKind) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Tables.NodeDown")
	defer span.End()

	t.mu.Lock()
	keep := func(r *resource.Resource) bool {
		if r.Ctx == nil {
			return false
		}
		if scope == OriginRouterSourced {
			_, s := r.Ctx.RouterSubs[z]
			_, q := r.Ctx.RouterQabls[z]
			return s || q
		}
		_, s := r.Ctx.PeerSubs[z]
		_, q := r.Ctx.PeerQabls[z]
		return s || q
	}

	var sends []pendingSend
	for _, res := range t.Root.Iter(keep) {
		rc := res.Ctx
		expr := res.FullExpr()

		hadSub := false
		if scope == OriginRouterSourced {
			if _, ok := rc.RouterSubs[z]; ok {
				delete(rc.RouterSubs, z)
				hadSub = true
			}
			delete(rc.RouterQabls, z)
		} else {
			if _, ok := rc.PeerSubs[z]; ok {
				delete(rc.PeerSubs, z)
				hadSub = true
			}
			delete(rc.PeerQabls, z)
		}

		if hadSub {
			sends = append(sends, t.cascadeClientUndeclareLocked(res, nil, expr)...)
			if !subPresenceRemains(rc) {
				sends = append(sends, t.propagateForgetLocked(res, expr)...)
			}
		}

		t.syncRouterSelfQablAfterRemovalLocked(res)
		sends = append(sends, t.syncQueryableLocked(res, nil, expr)...)

		t.recomputeDataRoutesLocked(res)
		t.recomputeQueryRoutesLocked(res)
		if rc.Empty() {
			res.Clean()
		}
	}
	t.mu.Unlock()

	t.flush(ctx, sends)
}

func subPresenceRemains(rc *resource.Context) bool {
	if len(rc.RouterSubs) > 0 || len(rc.PeerSubs) > 0 {
		return true
	}
	for _, sc := range rc.SessionCtxs {
		if sc.Subs != nil {
			return true
		}
	}
	return false
}

// syncRouterSelfQablAfterRemovalLocked keeps a Router's own
// RouterQabls[local.Zid] self-aggregate entry (see
// cascadeClientQablDeclareLocked) consistent after a node-down removal, a
// client queryable undeclare, or a face close: refreshed if presence
// remains below, removed otherwise.
func (t *Tables) syncRouterSelfQablAfterRemovalLocked(res *resource.Resource) {
	if t.Role != face.RoleRouter {
		return
	}
	rc := res.Ctx
	if rc == nil {
		return
	}
	if hasLocalQablPresence(rc, t.Zid) {
		rc.RouterQabls[t.Zid] = t.localQablInfo(rc, nil)
	} else {
		delete(rc.RouterQabls, t.Zid)
	}
}
