package resource_test

import (
	"testing"

	"github.com/jito-labs/zenoh-router/internal/resource"
	"github.com/jito-labs/zenoh-router/internal/zid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateIsIdempotent(t *testing.T) {
	root := resource.New()
	a := root.GetOrCreate("demo/")
	b := root.GetOrCreate("demo/")
	assert.Same(t, a, b)

	c, ok := root.Child("demo/")
	require.True(t, ok)
	assert.Same(t, a, c)
}

func TestFullExprConcatenatesSuffixes(t *testing.T) {
	root := resource.New()
	a := root.GetOrCreate("demo/")
	b := a.GetOrCreate("example/")
	c := b.GetOrCreate("a")
	assert.Equal(t, "demo/example/a", c.FullExpr())
}

func TestResolveMatchesManualGetOrCreateChain(t *testing.T) {
	root := resource.New()
	manual := root.GetOrCreate("demo/").GetOrCreate("example/").GetOrCreate("a")

	resolved := root.Resolve("demo/example/a")
	assert.Same(t, manual, resolved)
	assert.Equal(t, "demo/example/a", resolved.FullExpr())

	// Resolving again must not create duplicate siblings.
	again := root.Resolve("demo/example/a")
	assert.Same(t, manual, again)
	assert.Len(t, root.Children, 1)
}

func TestEmptyAndCleanPruneUpward(t *testing.T) {
	root := resource.New()
	a := root.GetOrCreate("demo/")
	b := a.GetOrCreate("example/")

	ctx := b.EnsureContext()
	ctx.RouterSubs[zid.MustNew([]byte{1})] = struct{}{}
	assert.False(t, b.Empty())

	delete(ctx.RouterSubs, zid.MustNew([]byte{1}))
	assert.True(t, b.Empty())

	b.Clean()
	_, stillThere := a.Child("example/")
	assert.False(t, stillThere)
	// a itself becomes empty and childless once b is pruned, so Clean
	// recurses and removes it from root too.
	_, aStillThere := root.Child("demo/")
	assert.False(t, aStillThere)
}

func TestCleanStopsAtNonEmptyAncestor(t *testing.T) {
	root := resource.New()
	a := root.GetOrCreate("demo/")
	a.EnsureContext().RouterSubs[zid.MustNew([]byte{9})] = struct{}{}
	b := a.GetOrCreate("example/")

	b.Clean()
	_, aStillThere := root.Child("demo/")
	assert.True(t, aStillThere, "ancestor with its own registration must survive")
}

func TestWalkAndIterVisitWholeSubtree(t *testing.T) {
	root := resource.New()
	a := root.GetOrCreate("demo/")
	b := a.GetOrCreate("example/")
	b.EnsureContext()
	a.GetOrCreate("other/")

	var visited int
	root.Walk(func(*resource.Resource) { visited++ })
	assert.Equal(t, 4, visited) // root, demo/, example/, other/

	withCtx := root.Iter(func(r *resource.Resource) bool { return r.Ctx != nil })
	require.Len(t, withCtx, 1)
	assert.Same(t, b, withCtx[0])
}

func TestSessionCtxAllocatesOnce(t *testing.T) {
	ctx := resource.New().EnsureContext()
	sc1 := ctx.SessionCtx(7)
	sc2 := ctx.SessionCtx(7)
	assert.Same(t, sc1, sc2)
	assert.Equal(t, uint64(7), sc1.FaceID)
}

func TestDisableRoutesResetsCache(t *testing.T) {
	ctx := resource.New().EnsureContext()
	ctx.DataRoutes.Valid = true
	ctx.DisableDataRoutes()
	assert.False(t, ctx.DataRoutes.Valid)
}
