package face_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jito-labs/zenoh-router/internal/face"
	"github.com/jito-labs/zenoh-router/internal/wire"
	"github.com/jito-labs/zenoh-router/internal/zid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu  sync.Mutex
	got []wire.Message
}

func (s *recordingSink) Send(m wire.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, m)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

type failingSink struct{}

func (failingSink) Send(wire.Message) error { return errors.New("boom") }

func declareMsg(id uint64) wire.Message {
	return wire.Message{DeclareSub: &wire.DeclareSubscriber{ID: id, WireExpr: "demo/example/a"}}
}

func TestOutboundDrainsToSink(t *testing.T) {
	sink := &recordingSink{}
	ob := face.NewOutbound(sink, 4)
	defer ob.Close()

	ob.Enqueue(context.Background(), declareMsg(1))
	ob.Enqueue(context.Background(), declareMsg(2))

	require.Eventually(t, func() bool { return sink.count() == 2 }, time.Second, time.Millisecond)
}

func TestOutboundTryEnqueueDropsWhenFull(t *testing.T) {
	blocking := make(chan struct{})
	sink := blockingSink{unblock: blocking}
	ob := face.NewOutbound(sink, 1)
	defer func() {
		close(blocking)
		ob.Close()
	}()

	// First message occupies the sink goroutine (blocked on unblock);
	// second fills the one-slot buffer; third must be dropped.
	assert.True(t, ob.TryEnqueue(declareMsg(1)))
	assert.True(t, ob.TryEnqueue(declareMsg(2)))
	assert.False(t, ob.TryEnqueue(declareMsg(3)))
	assert.Equal(t, uint64(1), ob.Dropped())
}

type blockingSink struct{ unblock chan struct{} }

func (b blockingSink) Send(wire.Message) error {
	<-b.unblock
	return nil
}

func TestOutboundEnqueueCanceledByContext(t *testing.T) {
	blocking := make(chan struct{})
	sink := blockingSink{unblock: blocking}
	ob := face.NewOutbound(sink, 1)
	defer func() {
		close(blocking)
		ob.Close()
	}()

	require.True(t, ob.TryEnqueue(declareMsg(1)))
	require.True(t, ob.TryEnqueue(declareMsg(2)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ob.Enqueue(ctx, declareMsg(3))
	assert.Equal(t, uint64(1), ob.Dropped())
}

func TestOutboundSendErrorDoesNotPanic(t *testing.T) {
	ob := face.NewOutbound(failingSink{}, 1)
	ob.Enqueue(context.Background(), declareMsg(1))
	ob.Close() // must return once the goroutine drains, even on Send error
}

func TestFaceDrainSynthesizesUndeclaresAndClearsState(t *testing.T) {
	sink := &recordingSink{}
	f := face.New(1, zid.MustNew([]byte{0x01}), face.RolePeer, sink, 4)
	f.RemoteSubs["demo/example/a"] = struct{}{}
	f.RemoteQabls["demo/example/b"] = wire.QueryableInfo{Complete: 1}

	subs, qabls := f.Drain()
	assert.ElementsMatch(t, []string{"demo/example/a"}, subs)
	assert.ElementsMatch(t, []string{"demo/example/b"}, qabls)
	assert.Empty(t, f.RemoteSubs)
	assert.Empty(t, f.RemoteQabls)
}

func TestRegistryRegisterGetUnregister(t *testing.T) {
	r := face.NewRegistry()
	f := face.New(42, zid.MustNew([]byte{0x02}), face.RoleClient, &recordingSink{}, 1)
	defer f.Outbound.Close()

	r.Register(f)
	got, ok := r.Get(42)
	require.True(t, ok)
	assert.Same(t, f, got)
	assert.Equal(t, 1, r.Len())

	removed, ok := r.Unregister(42)
	require.True(t, ok)
	assert.Same(t, f, removed)
	assert.Equal(t, 0, r.Len())

	_, ok = r.Get(42)
	assert.False(t, ok)
}

func TestRegistryRangeVisitsAllFaces(t *testing.T) {
	r := face.NewRegistry()
	for i := uint64(1); i <= 3; i++ {
		f := face.New(i, zid.MustNew([]byte{byte(i)}), face.RoleRouter, &recordingSink{}, 1)
		defer f.Outbound.Close()
		r.Register(f)
	}

	seen := map[uint64]bool{}
	r.Range(func(f *face.Face) bool {
		seen[f.ID] = true
		return true
	})
	assert.Len(t, seen, 3)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := face.NewRegistry()
	var wg sync.WaitGroup
	for i := uint64(0); i < 50; i++ {
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			sink := &recordingSink{}
			f := face.New(id, zid.MustNew([]byte{byte(id), byte(id >> 8)}), face.RoleClient, sink, 1)
			r.Register(f)
			r.Get(id)
			r.Unregister(id)
			f.Outbound.Close()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 0, r.Len())
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "router", face.RoleRouter.String())
	assert.Equal(t, "peer", face.RolePeer.String())
	assert.Equal(t, "client", face.RoleClient.String())
}
