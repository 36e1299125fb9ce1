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
	"testing"
	"time"

	"github.com/jito-labs/zenoh-router/internal/face"
	"github.com/jito-labs/zenoh-router/internal/wire"
	"github.com/jito-labs/zenoh-router/internal/zid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	ch chan wire.Message
}

func newRecordingSink() *recordingSink {
	return &recordingSink{ch: make(chan wire.Message, 16)}
}

func (s *recordingSink) Send(msg wire.Message) error {
	s.ch <- msg
	return nil
}

func newTestFace(id uint64, z zid.ID, role face.Role) (*face.Face, *recordingSink) {
	sink := newRecordingSink()
	return face.New(id, z, role, sink, 16), sink
}

func recvMsg(t *testing.T, ch chan wire.Message) wire.Message {
	t.Helper()
	select {
	case m := <-ch:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for outbound message")
		return wire.Message{}
	}
}

func assertNoMsg(t *testing.T, ch chan wire.Message) {
	t.Helper()
	select {
	case m := <-ch:
		t.Fatalf("unexpected message: %+v", m)
	case <-time.After(50 * time.Millisecond):
	}
}

var (
	zidX = zid.MustNew([]byte{0x01})
	zidY = zid.MustNew([]byte{0x02})
	zidZ = zid.MustNew([]byte{0x03})
)

// TestDeclareClientSubscriptionReachesOtherClientFaces is invariant P6:
// after declare_client_subscription on a Router, every client-role face
// other than the declaring one ends up with the resource in local_subs.
func TestDeclareClientSubscriptionReachesOtherClientFaces(t *testing.T) {
	ctx := context.Background()
	tbl := New(zidA, face.RoleRouter, false, wire.MergeSum)

	declarer, declarerSink := newTestFace(1, zidX, face.RoleClient)
	other, otherSink := newTestFace(2, zidY, face.RoleClient)
	tbl.Faces.Register(declarer)
	tbl.Faces.Register(other)

	tbl.DeclareSubscriber(ctx, declarer, "demo/a", wire.SubscriberInfo{}, Origin{Kind: OriginClient})

	msg := recvMsg(t, otherSink.ch)
	require.NotNil(t, msg.DeclareSub)
	assert.Equal(t, "demo/a", msg.DeclareSub.WireExpr)
	_, has := other.LocalSubs["demo/a"]
	assert.True(t, has)

	assertNoMsg(t, declarerSink.ch)
	_, declarerHas := declarer.LocalSubs["demo/a"]
	assert.False(t, declarerHas)
}

// TestUndeclareSubscriptionRetractsFromAllFaces is invariant P7: once
// every registration for a resource is gone, it is absent from every
// face's local_subs and an Undeclare is sent to any face that had it.
func TestUndeclareSubscriptionRetractsFromAllFaces(t *testing.T) {
	ctx := context.Background()
	tbl := New(zidA, face.RoleRouter, false, wire.MergeSum)

	declarer, _ := newTestFace(1, zidX, face.RoleClient)
	other, otherSink := newTestFace(2, zidY, face.RoleClient)
	tbl.Faces.Register(declarer)
	tbl.Faces.Register(other)

	tbl.DeclareSubscriber(ctx, declarer, "demo/a", wire.SubscriberInfo{}, Origin{Kind: OriginClient})
	recvMsg(t, otherSink.ch) // drain the declare

	tbl.UndeclareSubscriber(ctx, declarer, "demo/a", Origin{Kind: OriginClient})

	msg := recvMsg(t, otherSink.ch)
	require.NotNil(t, msg.UndeclareSub)
	assert.Equal(t, "demo/a", msg.UndeclareSub.ExtWireExpr)

	_, has := other.LocalSubs["demo/a"]
	assert.False(t, has)
	_, ok := tbl.Root.LookupExisting("demo/a")
	assert.False(t, ok, "empty resource should have been pruned")
}

// TestPullNeverDowngradesPush preserves the Pull/Push re-declare
// asymmetry documented in DESIGN.md.
func TestPullNeverDowngradesPush(t *testing.T) {
	ctx := context.Background()
	tbl := New(zidA, face.RoleRouter, false, wire.MergeSum)
	declarer, _ := newTestFace(1, zidX, face.RoleClient)
	tbl.Faces.Register(declarer)

	tbl.DeclareSubscriber(ctx, declarer, "demo/a", wire.SubscriberInfo{Mode: wire.ModePush}, Origin{Kind: OriginClient})
	tbl.DeclareSubscriber(ctx, declarer, "demo/a", wire.SubscriberInfo{Mode: wire.ModePull}, Origin{Kind: OriginClient})

	res, ok := tbl.Root.LookupExisting("demo/a")
	require.True(t, ok)
	sc := res.Ctx.SessionCtxs[declarer.ID]
	require.NotNil(t, sc.Subs)
	assert.Equal(t, wire.ModePush, sc.Subs.Mode)
}

// TestNodeDownCleansRouterSourcedResource is invariant P9:
// pubsub_remove_node(z, Router) removes z from every router_subs entry
// and cleans any resource whose context becomes empty as a result.
func TestNodeDownCleansRouterSourcedResource(t *testing.T) {
	ctx := context.Background()
	tbl := New(zidA, face.RoleRouter, false, wire.MergeSum)

	link, _ := newTestFace(1, zidB, face.RoleRouter)
	client, clientSink := newTestFace(2, zidZ, face.RoleClient)
	tbl.Faces.Register(link)
	tbl.Faces.Register(client)

	tbl.DeclareSubscriber(ctx, link, "demo/a", wire.SubscriberInfo{}, Origin{Kind: OriginRouterSourced, Zid: zidB})
	msg := recvMsg(t, clientSink.ch)
	require.NotNil(t, msg.DeclareSub)

	tbl.NodeDown(ctx, zidB, OriginRouterSourced)

	undeclare := recvMsg(t, clientSink.ch)
	require.NotNil(t, undeclare.UndeclareSub)
	assert.Equal(t, "demo/a", undeclare.UndeclareSub.ExtWireExpr)

	_, has := client.LocalSubs["demo/a"]
	assert.False(t, has)
	_, ok := tbl.Root.LookupExisting("demo/a")
	assert.False(t, ok, "resource should be pruned once router_subs is empty")
}

// TestNodeUpCatchesUpNewFace exercises spec.md §4.4 "On node up": a
// newly joined face receives a Declare for every resource with existing
// router/peer-scope presence that the role matrix permits forwarding to
// it, without needing a fresh declare from the original source.
func TestNodeUpCatchesUpNewFace(t *testing.T) {
	ctx := context.Background()
	tbl := New(zidA, face.RoleRouter, false, wire.MergeSum)

	link, _ := newTestFace(1, zidB, face.RoleRouter)
	tbl.Faces.Register(link)
	tbl.DeclareSubscriber(ctx, link, "demo/a", wire.SubscriberInfo{}, Origin{Kind: OriginRouterSourced, Zid: zidB})

	newcomer, newcomerSink := newTestFace(2, zidZ, face.RoleClient)
	tbl.NodeUp(ctx, newcomer)

	msg := recvMsg(t, newcomerSink.ch)
	require.NotNil(t, msg.DeclareSub)
	assert.Equal(t, "demo/a", msg.DeclareSub.WireExpr)
	_, has := newcomer.LocalSubs["demo/a"]
	assert.True(t, has)

	_, registered := tbl.Faces.Get(newcomer.ID)
	assert.True(t, registered)
}

// TestCloseFaceDrainsRemoteSubsAndQabls exercises spec.md §3's lifecycle
// step "faces are ... drained on close (which synthesizes undeclares for
// every entry in remote_subs and remote_qabls)": CloseFace must retract
// both a closing client face's subscription and its queryable from every
// other face, unregister the face itself, and prune resources left empty.
func TestCloseFaceDrainsRemoteSubsAndQabls(t *testing.T) {
	ctx := context.Background()
	tbl := New(zidA, face.RoleRouter, false, wire.MergeSum)

	closing, _ := newTestFace(1, zidX, face.RoleClient)
	other, otherSink := newTestFace(2, zidY, face.RoleClient)
	tbl.Faces.Register(closing)
	tbl.Faces.Register(other)

	tbl.DeclareSubscriber(ctx, closing, "demo/a", wire.SubscriberInfo{}, Origin{Kind: OriginClient})
	recvMsg(t, otherSink.ch) // drain the sub declare
	tbl.DeclareQueryable(ctx, closing, "demo/b", wire.QueryableInfo{Complete: 1}, Origin{Kind: OriginClient})
	recvMsg(t, otherSink.ch) // drain the qabl declare

	_, hasSub := closing.RemoteSubs["demo/a"]
	require.True(t, hasSub)
	_, hasQabl := closing.RemoteQabls["demo/b"]
	require.True(t, hasQabl)

	tbl.CloseFace(ctx, closing.ID)

	gotUndeclares := map[string]bool{}
	for i := 0; i < 2; i++ {
		msg := recvMsg(t, otherSink.ch)
		switch {
		case msg.UndeclareSub != nil:
			gotUndeclares[msg.UndeclareSub.ExtWireExpr] = true
		case msg.UndeclareQabl != nil:
			gotUndeclares[msg.UndeclareQabl.ExtWireExpr] = true
		default:
			t.Fatalf("unexpected message: %+v", msg)
		}
	}
	assert.True(t, gotUndeclares["demo/a"])
	assert.True(t, gotUndeclares["demo/b"])

	_, subOk := tbl.Root.LookupExisting("demo/a")
	assert.False(t, subOk, "empty resource should have been pruned")
	_, qablOk := tbl.Root.LookupExisting("demo/b")
	assert.False(t, qablOk, "empty resource should have been pruned")

	_, registered := tbl.Faces.Get(closing.ID)
	assert.False(t, registered, "closed face should be unregistered")
}

// TestCloseFaceUnknownFaceIsNoop exercises the guard for a faceID with no
// matching registration (already closed, or never registered): CloseFace
// must not panic and must send nothing.
func TestCloseFaceUnknownFaceIsNoop(t *testing.T) {
	ctx := context.Background()
	tbl := New(zidA, face.RoleRouter, false, wire.MergeSum)
	other, otherSink := newTestFace(1, zidY, face.RoleClient)
	tbl.Faces.Register(other)

	tbl.CloseFace(ctx, 999)

	assertNoMsg(t, otherSink.ch)
}

// TestQueryableAggregateMergesAndResyncsOnChange exercises spec.md §4.2
// points 2-3: local_qabl_info folds every visible registration, and a
// face's cached aggregate is refreshed only when it actually changes.
func TestQueryableAggregateMergesAndResyncsOnChange(t *testing.T) {
	ctx := context.Background()
	tbl := New(zidA, face.RoleRouter, false, wire.MergeSum)

	q1, q1Sink := newTestFace(1, zidX, face.RoleClient)
	q2, q2Sink := newTestFace(2, zidY, face.RoleClient)
	obs, obsSink := newTestFace(3, zidZ, face.RoleClient)
	tbl.Faces.Register(q1)
	tbl.Faces.Register(q2)
	tbl.Faces.Register(obs)

	tbl.DeclareQueryable(ctx, q1, "demo/a", wire.QueryableInfo{Complete: 1, Distance: 0}, Origin{Kind: OriginClient})

	first := recvMsg(t, obsSink.ch)
	require.NotNil(t, first.DeclareQabl)
	assert.Equal(t, wire.QueryableInfo{Complete: 1, Distance: 0}, first.DeclareQabl.Info)

	q2First := recvMsg(t, q2Sink.ch)
	require.NotNil(t, q2First.DeclareQabl)
	assert.Equal(t, wire.QueryableInfo{Complete: 1, Distance: 0}, q2First.DeclareQabl.Info)

	tbl.DeclareQueryable(ctx, q2, "demo/a", wire.QueryableInfo{Complete: 1, Distance: 2}, Origin{Kind: OriginClient})

	second := recvMsg(t, obsSink.ch)
	require.NotNil(t, second.DeclareQabl)
	assert.Equal(t, wire.QueryableInfo{Complete: 2, Distance: 0}, second.DeclareQabl.Info)

	q1Update := recvMsg(t, q1Sink.ch)
	require.NotNil(t, q1Update.DeclareQabl)
	assert.Equal(t, wire.QueryableInfo{Complete: 2, Distance: 0}, q1Update.DeclareQabl.Info)

	assertNoMsg(t, obsSink.ch)
}
