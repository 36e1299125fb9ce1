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
	"github.com/jito-labs/zenoh-router/internal/netview"
	"github.com/jito-labs/zenoh-router/internal/resource"
	"github.com/jito-labs/zenoh-router/internal/wire"
	"github.com/jito-labs/zenoh-router/internal/zid"
	"go.opentelemetry.io/otel"
)

const tracerName = "zenoh-router/hat"

// DeclareSubscriber registers a subscription (spec.md §4.1 "declare").
// srcFace is the face the declaration arrived on (even for a locally
// originated one, per spec.md §4.1's declare(face, expr, info, origin)
// signature); origin identifies which scope it registers into.
func (t *Tables) DeclareSubscriber(ctx context.Context, srcFace *face.Face, expr string, info wire.SubscriberInfo, origin Origin) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Tables.DeclareSubscriber")
	defer span.End()

	res := t.resolve(expr)

	t.mu.Lock()
	rc := res.EnsureContext()
	isNew := registerSubScope(rc, origin, srcFace, info, expr)
	var sends []pendingSend
	if isNew {
		t.Metrics.RecordDeclare("sub", originLabel(origin))
		sends = append(sends, t.propagateSubscriberLocked(res, srcFace, origin, expr)...)
		switch origin.Kind {
		case OriginClient:
			sends = append(sends, t.cascadeClientDeclareLocked(res, srcFace, expr)...)
		case OriginPeerSourced:
			sends = append(sends, t.cascadePeerToRouterLocked(res, srcFace, expr)...)
		}
		t.recomputeDataRoutesLocked(res)
	}
	t.mu.Unlock()

	t.flush(ctx, sends)
}

// UndeclareSubscriber is the mirror of DeclareSubscriber (spec.md §4.1).
func (t *Tables) UndeclareSubscriber(ctx context.Context, srcFace *face.Face, expr string, origin Origin) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Tables.UndeclareSubscriber")
	defer span.End()

	t.mu.RLock()
	res, ok := t.Root.LookupExisting(expr)
	t.mu.RUnlock()
	if !ok {
		return
	}

	t.mu.Lock()
	var sends []pendingSend
	if rc := res.Ctx; rc != nil && unregisterSubScope(rc, origin, srcFace, expr) {
		t.Metrics.RecordUndeclare("sub", originLabel(origin))
		sends = append(sends, t.propagateForgetLocked(res, expr)...)
		sends = append(sends, t.cascadeClientUndeclareLocked(res, srcFace, expr)...)
		t.recomputeDataRoutesLocked(res)
		if rc.Empty() {
			res.Clean()
		}
	}
	t.mu.Unlock()

	t.flush(ctx, sends)
}

// registerSubScope registers origin's subscription into the scope it
// names, returning true iff this is a genuinely new registration
// (spec.md §4.1 step 2: "Return immediately if the exact (scope,
// source) pair already exists"). For OriginClient it also records expr
// in srcFace.RemoteSubs (spec.md §3 Face "remote_subs": the set of
// client-scope registrations this face has declared to us), grounded on
// original_source's register_client_subscription, which inserts into
// face.remote_subs in the same place it inserts the session context —
// this is what CloseFace (topology.go) drains on session teardown.
func registerSubScope(rc *resource.Context, origin Origin, srcFace *face.Face, info wire.SubscriberInfo, expr string) bool {
	switch origin.Kind {
	case OriginRouterSourced:
		if _, ok := rc.RouterSubs[origin.Zid]; ok {
			return false
		}
		rc.RouterSubs[origin.Zid] = struct{}{}
		return true
	case OriginPeerSourced:
		if _, ok := rc.PeerSubs[origin.Zid]; ok {
			return false
		}
		rc.PeerSubs[origin.Zid] = struct{}{}
		return true
	default: // OriginClient
		sc := rc.SessionCtx(srcFace.ID)
		if sc.Subs != nil {
			// Pull/Push re-declare asymmetry (DESIGN.md Open Question #2,
			// preserved as-observed rather than "fixed"): a later
			// re-declare overwrites an existing Pull registration
			// wholesale, but never downgrades an existing Push
			// registration's mode back to Pull.
			updated := info
			if sc.Subs.Mode == wire.ModePush && info.Mode == wire.ModePull {
				updated.Mode = wire.ModePush
			}
			sc.Subs = &updated
			return false
		}
		infoCopy := info
		sc.Subs = &infoCopy
		srcFace.RemoteSubs[expr] = struct{}{}
		return true
	}
}

// unregisterSubScope is registerSubScope's mirror; returns true iff a
// registration was actually removed.
func unregisterSubScope(rc *resource.Context, origin Origin, srcFace *face.Face, expr string) bool {
	switch origin.Kind {
	case OriginRouterSourced:
		if _, ok := rc.RouterSubs[origin.Zid]; !ok {
			return false
		}
		delete(rc.RouterSubs, origin.Zid)
		return true
	case OriginPeerSourced:
		if _, ok := rc.PeerSubs[origin.Zid]; !ok {
			return false
		}
		delete(rc.PeerSubs, origin.Zid)
		return true
	default:
		sc, ok := rc.SessionCtxs[srcFace.ID]
		if !ok || sc.Subs == nil {
			return false
		}
		sc.Subs = nil
		delete(srcFace.RemoteSubs, expr)
		return true
	}
}

// propagateSubscriberLocked implements spec.md §4.1's two propagation
// modes for one declare: sourced re-broadcast along the tree this
// declare arrived on (when origin is router/peer-sourced), and simple
// propagation to every directly attached face the role matrix permits.
func (t *Tables) propagateSubscriberLocked(res *resource.Resource, srcFace *face.Face, origin Origin, expr string) []pendingSend {
	var sends []pendingSend
	live := isLiveliness(expr)

	if origin.Kind == OriginRouterSourced || origin.Kind == OriginPeerSourced {
		view := t.NetRouter
		if origin.Kind == OriginPeerSourced {
			view = t.NetPeer
		}
		sends = append(sends, t.sourcedPropagateSub(view, origin.Zid, srcFace, res, expr)...)
	}

	srcRole := srcFace.Role
	t.Faces.Range(func(f *face.Face) bool {
		if f.ID == srcFace.ID && !live {
			return true
		}
		if _, already := f.LocalSubs[expr]; already {
			return true
		}
		allowed := roleMatrixAllows(t.Role, t.FullPeerNet, srcRole, f.Role, func() bool {
			return t.failoverBrokering(origin.Zid, f.Zid)
		})
		if !allowed {
			return true
		}
		f.LocalSubs[expr] = struct{}{}
		sends = append(sends, pendingSend{face: f, msg: wire.Message{DeclareSub: &wire.DeclareSubscriber{
			WireExpr: expr,
		}}})
		return true
	})
	return sends
}

// propagateForgetLocked retracts expr from every face that currently
// carries it in LocalSubs (invariant P7: after a full undeclare, R is
// absent from every face's local_subs).
func (t *Tables) propagateForgetLocked(res *resource.Resource, expr string) []pendingSend {
	var sends []pendingSend
	t.Faces.Range(func(f *face.Face) bool {
		if _, has := f.LocalSubs[expr]; !has {
			return true
		}
		delete(f.LocalSubs, expr)
		sends = append(sends, pendingSend{face: f, msg: wire.Message{UndeclareSub: &wire.UndeclareSubscriber{
			ExtWireExpr: expr,
		}}})
		return true
	})
	return sends
}

// sourcedPropagateSub re-broadcasts a declare to every child of
// sourceZid's node in view's spanning tree (spec.md §4.1 "Sourced
// propagation"), skipping the face the declare arrived on.
func (t *Tables) sourcedPropagateSub(view netview.View, sourceZid zid.ID, skip *face.Face, res *resource.Resource, expr string) []pendingSend {
	if view == nil {
		return nil
	}
	sourceIdx, ok := view.GetIdx(sourceZid)
	if !ok {
		return nil
	}
	tree, ok := view.Tree(sourceIdx)
	if !ok {
		// spec.md §7: "Tree source index exceeds trees.len()" — tree not
		// yet ready; skip propagation, the registration stands and will
		// be picked up by the next tree-change event.
		t.logger().Debug("hat: tree not yet ready for source", "source", sourceZid.String())
		return nil
	}

	var sends []pendingSend
	for _, child := range tree.Children {
		childZid, ok := view.ZidOf(child)
		if !ok {
			continue
		}
		f := t.faceByZid(childZid)
		if f == nil {
			t.logger().Debug("hat: face for child zid not found during sourced propagation", "zid", childZid.String())
			continue
		}
		if skip != nil && f.ID == skip.ID {
			continue
		}
		f.LocalSubs[expr] = struct{}{}
		sends = append(sends, pendingSend{face: f, msg: wire.Message{DeclareSub: &wire.DeclareSubscriber{
			WireExpr: expr,
			NodeID:   wire.NodeID(sourceIdx),
		}}})
	}
	return sends
}

// cascadeClientDeclareLocked implements spec.md §4.1's cross-scope
// cascade: a client-side declare additionally registers in the router
// scope (if W=Router) or peer scope (if W=Peer ∧ full_peer_net), with
// source = local Zid, which in turn sourced-propagates along this
// node's own tree.
func (t *Tables) cascadeClientDeclareLocked(res *resource.Resource, srcFace *face.Face, expr string) []pendingSend {
	rc := res.Ctx
	switch {
	case t.Role == face.RoleRouter:
		if registerSubScope(rc, Origin{Kind: OriginRouterSourced, Zid: t.Zid}, nil, wire.SubscriberInfo{}, expr) {
			return t.sourcedPropagateSub(t.NetRouter, t.Zid, srcFace, res, expr)
		}
	case t.Role == face.RolePeer && t.FullPeerNet:
		if registerSubScope(rc, Origin{Kind: OriginPeerSourced, Zid: t.Zid}, nil, wire.SubscriberInfo{}, expr) {
			return t.sourcedPropagateSub(t.NetPeer, t.Zid, srcFace, res, expr)
		}
	}
	return nil
}

// cascadePeerToRouterLocked implements spec.md §4.1 "On peer-scope
// declare at a Router, the engine additionally registers in the router
// scope with source = local Zid, mode normalized to Push." Router/peer
// scope entries are bare Zid sets with no per-entry info (spec.md §3:
// "router_subs: Set<Zid>"), so the mode normalization has no field to
// land in here — it only matters for the client-scope SubscriberInfo
// spec.md §4.1's Pull/Push rewrite asymmetry governs.
func (t *Tables) cascadePeerToRouterLocked(res *resource.Resource, srcFace *face.Face, expr string) []pendingSend {
	if t.Role != face.RoleRouter {
		return nil
	}
	rc := res.Ctx
	if registerSubScope(rc, Origin{Kind: OriginRouterSourced, Zid: t.Zid}, nil, wire.SubscriberInfo{}, expr) {
		return t.sourcedPropagateSub(t.NetRouter, t.Zid, srcFace, res, expr)
	}
	return nil
}

// cascadeClientUndeclareLocked implements spec.md §4.1 "On client
// undeclare, if the resource has no remaining client subscribers and
// no remote peer/router subscribers, the engine also undeclares the
// corresponding router/peer scope entry." The local cascade-owned
// entry (source = local Zid) is excluded from the "remote" check since
// it is the entry being considered for teardown.
func (t *Tables) cascadeClientUndeclareLocked(res *resource.Resource, srcFace *face.Face, expr string) []pendingSend {
	rc := res.Ctx
	if rc == nil {
		return nil
	}
	hasClient := false
	for _, sc := range rc.SessionCtxs {
		if sc.Subs != nil {
			hasClient = true
			break
		}
	}
	hasRemoteRouter := false
	for z := range rc.RouterSubs {
		if z != t.Zid {
			hasRemoteRouter = true
			break
		}
	}
	hasRemotePeer := false
	for z := range rc.PeerSubs {
		if z != t.Zid {
			hasRemotePeer = true
			break
		}
	}
	if hasClient || hasRemoteRouter || hasRemotePeer {
		return nil
	}

	switch {
	case t.Role == face.RoleRouter:
		if unregisterSubScope(rc, Origin{Kind: OriginRouterSourced, Zid: t.Zid}, nil, expr) {
			return t.propagateForgetLocked(res, expr)
		}
	case t.Role == face.RolePeer && t.FullPeerNet:
		if unregisterSubScope(rc, Origin{Kind: OriginPeerSourced, Zid: t.Zid}, nil, expr) {
			return t.propagateForgetLocked(res, expr)
		}
	}
	return nil
}

// faceByZid looks up a registered face by participant identity. The
// registry is keyed by session id (internal/face.Registry), so this is
// a linear scan; fine at the fanout sizes this engine targets.
func (t *Tables) faceByZid(z zid.ID) *face.Face {
	var found *face.Face
	t.Faces.Range(func(f *face.Face) bool {
		if f.Zid == z {
			found = f
			return false
		}
		return true
	})
	return found
}

// recomputeDataRoutesLocked rebuilds a resource's cached data route
// table from every face currently carrying it in LocalSubs (spec.md §3
// "Cached computed route tables"; invariant I4).
func (t *Tables) recomputeDataRoutesLocked(res *resource.Resource) {
	rc := res.EnsureContext()
	expr := res.FullExpr()
	routes := map[uint64]wire.NodeID{}
	t.Faces.Range(func(f *face.Face) bool {
		if _, ok := f.LocalSubs[expr]; ok {
			routes[f.ID] = 0
		}
		return true
	})
	rc.DataRoutes = resource.RouteTable{Valid: true, Routes: routes}
	t.Metrics.RecordRouteRecompute("data")
}

// OnPeerLinksChanged reacts to a peer face's link-state changing
// (spec.md §4.1 "Link-state change handler"): for every resource the
// changed peer has declared (peer-scope source = originZid), every
// other peer face's local_subs membership is brought back in line with
// whether this node must still broker between it and the originator.
func (t *Tables) OnPeerLinksChanged(ctx context.Context, originZid zid.ID) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Tables.OnPeerLinksChanged")
	defer span.End()

	t.mu.Lock()
	resources := t.Root.Iter(func(r *resource.Resource) bool {
		if r.Ctx == nil {
			return false
		}
		_, ok := r.Ctx.PeerSubs[originZid]
		return ok
	})

	var sends []pendingSend
	for _, res := range resources {
		expr := res.FullExpr()
		t.Faces.Range(func(f *face.Face) bool {
			if f.Role != face.RolePeer || f.Zid == originZid {
				return true
			}
			bridgeable := t.failoverBrokering(originZid, f.Zid)
			_, has := f.LocalSubs[expr]
			switch {
			case has && !bridgeable:
				delete(f.LocalSubs, expr)
				sends = append(sends, pendingSend{face: f, msg: wire.Message{UndeclareSub: &wire.UndeclareSubscriber{ExtWireExpr: expr}}})
			case !has && bridgeable:
				f.LocalSubs[expr] = struct{}{}
				sends = append(sends, pendingSend{face: f, msg: wire.Message{DeclareSub: &wire.DeclareSubscriber{WireExpr: expr}}})
			}
			return true
		})
		t.recomputeDataRoutesLocked(res)
	}
	t.mu.Unlock()

	t.flush(ctx, sends)
}

// OnTreeChange implements spec.md §4.1's tree-change handler: every
// resource registered in the scope matching kind, whose source Zid is
// sourceIdx's owner, is sourced-propagated along the refreshed tree.
func (t *Tables) OnTreeChange(ctx context.Context, kind OriginKind, sourceIdx netview.NodeIdx) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Tables.OnTreeChange")
	defer span.End()

	view := t.NetRouter
	if kind == OriginPeerSourced {
		view = t.NetPeer
	}
	if view == nil {
		return
	}
	sourceZid, ok := view.ZidOf(sourceIdx)
	if !ok {
		return
	}

	t.mu.Lock()
	keep := func(r *resource.Resource) bool {
		if r.Ctx == nil {
			return false
		}
		if kind == OriginRouterSourced {
			_, ok := r.Ctx.RouterSubs[sourceZid]
			return ok
		}
		_, ok := r.Ctx.PeerSubs[sourceZid]
		return ok
	}

	var sends []pendingSend
	for _, res := range t.Root.Iter(keep) {
		expr := res.FullExpr()
		sends = append(sends, t.sourcedPropagateSub(view, sourceZid, nil, res, expr)...)
		t.recomputeDataRoutesLocked(res)
	}
	t.mu.Unlock()

	t.flush(ctx, sends)
}
