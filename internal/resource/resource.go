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

// Package resource implements the key-expression prefix trie (spec.md §3
// "Resource", component A). original_source's
// commons/zenoh-util/src/keyexpr_tree models the same tree as an
// arena with index-based parent/child links to sidestep Rust's
// ownership rules around cyclic references (spec.md §9 "Cyclic
// references"); Go's garbage collector already reclaims cycles, so
// plain parent/child pointers are used directly here instead — see
// DESIGN.md. The trie carries no lock of its own: spec.md §5 makes it
// "exclusively owned by the tables lock", so every method here assumes
// the caller (internal/hat) already holds it.
package resource

import "strings"

// Resolve walks (creating as needed) the trie path for a full
// key-expression, splitting on "/" while keeping each separator
// attached to the suffix that precedes it (so "demo/example/a" resolves
// through suffixes "demo/", "example/", "a", matching the teacher's
// `Resolve` + `GetOrCreate` call chain used by the route-table tests).
// spec.md §4.1 step 1: "Resolve expr via the face's key-expression
// mapping to an existing or freshly created Resource."
func (r *Resource) Resolve(expr string) *Resource {
	cur := r
	for expr != "" {
		if i := strings.IndexByte(expr, '/'); i >= 0 {
			cur = cur.GetOrCreate(expr[:i+1])
			expr = expr[i+1:]
		} else {
			cur = cur.GetOrCreate(expr)
			expr = ""
		}
	}
	return cur
}

// LookupExisting is Resolve's non-creating counterpart: it walks the
// same suffix path but returns ok=false the moment a segment is
// missing, instead of creating it. Used for the read-lock fast path
// described in spec.md §5 — callers only need the write lock when a
// new Resource must actually be created.
func (r *Resource) LookupExisting(expr string) (*Resource, bool) {
	cur := r
	for expr != "" {
		var suffix string
		if i := strings.IndexByte(expr, '/'); i >= 0 {
			suffix, expr = expr[:i+1], expr[i+1:]
		} else {
			suffix, expr = expr, ""
		}
		next, ok := cur.Child(suffix)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Resource is one node of the key-expression trie: the suffix relative
// to its parent, plus a lazily-allocated Context that exists only once
// some declaration or match has referenced this node (spec.md §3).
type Resource struct {
	Suffix   string
	Parent   *Resource
	Children map[string]*Resource
	Ctx      *Context
}

// New allocates the trie root: the empty-suffix resource with no parent.
func New() *Resource {
	return &Resource{Children: map[string]*Resource{}}
}

// Child looks up an existing child by suffix.
func (r *Resource) Child(suffix string) (*Resource, bool) {
	c, ok := r.Children[suffix]
	return c, ok
}

// GetOrCreate returns the child resource for suffix, creating it (and
// its Context, via EnsureContext on first real use) if absent.
func (r *Resource) GetOrCreate(suffix string) *Resource {
	if c, ok := r.Children[suffix]; ok {
		return c
	}
	c := &Resource{Suffix: suffix, Parent: r, Children: map[string]*Resource{}}
	r.Children[suffix] = c
	return c
}

// EnsureContext lazily allocates the resource's Context.
func (r *Resource) EnsureContext() *Context {
	if r.Ctx == nil {
		r.Ctx = newContext()
	}
	return r.Ctx
}

// FullExpr reconstructs the resource's full key-expression by walking
// to the root and concatenating suffixes (used for logging/tracing).
func (r *Resource) FullExpr() string {
	if r.Parent == nil {
		return r.Suffix
	}
	return r.Parent.FullExpr() + r.Suffix
}

// IsRoot reports whether r is the trie root.
func (r *Resource) IsRoot() bool {
	return r.Parent == nil
}

// Empty reports whether the resource's Context holds no registrations
// of any kind and it has no children — the cleanup eligibility test of
// invariant I3.
func (r *Resource) Empty() bool {
	if len(r.Children) != 0 {
		return false
	}
	return r.Ctx == nil || r.Ctx.Empty()
}

// Clean unlinks an empty, childless resource from its parent and
// recurses upward, matching original_source's `Resource::clean`
// (spec.md §9): parent links are walked and pruned as long as each
// ancestor is itself left empty by the removal.
func (r *Resource) Clean() {
	for cur := r; cur != nil && !cur.IsRoot() && cur.Empty(); {
		parent := cur.Parent
		delete(parent.Children, cur.Suffix)
		cur.Parent = nil
		cur = parent
	}
}

// Walk visits r and every descendant in trie order (pre-order, children
// in map iteration order), calling fn on each. Grounded on
// original_source/commons/zenoh-util/src/keyexpr_tree/iters/tree_iter.rs
// for the traversal shape (spec.md §9 "Source patterns requiring
// re-architecture" calls out the arena-indexed iterator; the traversal
// order it produces is preserved here without needing the arena).
func (r *Resource) Walk(fn func(*Resource)) {
	fn(r)
	for _, c := range r.Children {
		c.Walk(fn)
	}
}

// Iter returns every resource in the subtree rooted at r, including r
// itself, that satisfies keep (e.g. "has a non-nil Context") — the
// matching-resource-set primitive used by route cache invalidation and
// sourced propagation lookups.
func (r *Resource) Iter(keep func(*Resource) bool) []*Resource {
	var out []*Resource
	r.Walk(func(res *Resource) {
		if keep(res) {
			out = append(out, res)
		}
	})
	return out
}
