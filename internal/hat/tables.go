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
	"log/slog"
	"sync"

	"github.com/jito-labs/zenoh-router/internal/face"
	"github.com/jito-labs/zenoh-router/internal/metrics"
	"github.com/jito-labs/zenoh-router/internal/netview"
	"github.com/jito-labs/zenoh-router/internal/resource"
	"github.com/jito-labs/zenoh-router/internal/wire"
	"github.com/jito-labs/zenoh-router/internal/zid"
)

// Tables is the single shared structure spec.md §5 describes: the
// resource trie and every face's registration state, guarded by one
// read-write lock. Route tables are recomputed while the write lock is
// held; outbound sends are always performed after releasing it (see
// flush), per §5's "the routing engine must never block a send while
// holding the tables write lock".
type Tables struct {
	mu sync.RWMutex

	Zid         zid.ID
	Role        face.Role
	FullPeerNet bool
	MergeMode   wire.MergeMode

	Root  *resource.Resource
	Faces *face.Registry

	// NetRouter and NetPeer are the link-state adapters for the
	// corresponding net_type (spec.md §3 "Network view"); either may be
	// nil for a node that does not track that graph (e.g. a Client has
	// neither, a Peer has no router-tree view it sources from).
	NetRouter netview.View
	NetPeer   netview.View

	// Metrics is optional instrumentation (nil-safe per its own method
	// set); when unset (e.g. in unit tests) every Record* call is a
	// no-op. Production callers normally pass metrics.Global().
	Metrics *metrics.Metrics
}

// New builds an empty Tables for a node of the given role.
func New(z zid.ID, role face.Role, fullPeerNet bool, mergeMode wire.MergeMode) *Tables {
	return &Tables{
		Zid:         z,
		Role:        role,
		FullPeerNet: fullPeerNet,
		MergeMode:   mergeMode,
		Root:        resource.New(),
		Faces:       face.NewRegistry(),
	}
}

// pendingSend is an outbound message collected while the tables lock is
// held, to be delivered to its face's Outbound queue only after the
// lock is released.
type pendingSend struct {
	face *face.Face
	msg  wire.Message
}

// flush delivers every collected send outside the tables lock. Callers
// build the slice while locked and invoke flush only after unlocking.
func (t *Tables) flush(ctx context.Context, sends []pendingSend) {
	for _, s := range sends {
		s.face.Outbound.Enqueue(ctx, s.msg)
	}
}

// resolve implements spec.md §5's read-then-upgrade pattern: try the
// read lock first since most declares target an already-interned
// resource, and only take the write lock (which Resource.Resolve may
// need in order to create trie nodes) when the fast path misses.
func (t *Tables) resolve(expr string) *resource.Resource {
	t.mu.RLock()
	if res, ok := t.Root.LookupExisting(expr); ok {
		t.mu.RUnlock()
		return res
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Root.Resolve(expr)
}

// originLabel reduces an Origin to a low-cardinality metrics label.
func originLabel(o Origin) string {
	switch o.Kind {
	case OriginRouterSourced:
		return "router"
	case OriginPeerSourced:
		return "peer"
	default:
		return "client"
	}
}

func (t *Tables) logger() *slog.Logger {
	return slog.With("zid", t.Zid.String(), "role", t.Role.String())
}
