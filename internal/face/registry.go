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

package face

import "github.com/puzpuzpuz/xsync/v4"

// Registry tracks which Face exists for a given session id. It is
// deliberately independent of the tables lock (spec.md §5 "Tables"):
// the tables lock guards the registration sets *on* a Face's Resource
// contexts, not the set of Face objects that a transport layer is
// concurrently accepting and closing. Session accept/close happens on
// its own goroutine per connection, so lookups here need their own
// concurrency story — xsync.Map gives lock-free reads without
// forcing every accept/close through the routing engine's write lock.
type Registry struct {
	faces *xsync.Map[uint64, *Face]
}

func NewRegistry() *Registry {
	return &Registry{faces: xsync.NewMap[uint64, *Face]()}
}

// Register adds a newly-opened Face to the registry.
func (r *Registry) Register(f *Face) {
	r.faces.Store(f.ID, f)
}

// Unregister removes a Face, returning it if present so the caller can
// Drain and Close it.
func (r *Registry) Unregister(id uint64) (*Face, bool) {
	return r.faces.LoadAndDelete(id)
}

// Get looks up a Face by session id.
func (r *Registry) Get(id uint64) (*Face, bool) {
	return r.faces.Load(id)
}

// Range visits every registered Face. fn returning false stops iteration.
func (r *Registry) Range(fn func(*Face) bool) {
	r.faces.Range(func(_ uint64, f *Face) bool {
		return fn(f)
	})
}

// Len returns the number of currently registered faces.
func (r *Registry) Len() int {
	return r.faces.Size()
}

// TotalDropped sums Outbound.Dropped() across every currently
// registered face, for the periodic metrics gauge (internal/metrics
// can't import internal/face's drop counter directly; see
// metrics.Metrics.RecordFaceSendDrops).
func (r *Registry) TotalDropped() uint64 {
	var total uint64
	r.Range(func(f *Face) bool {
		total += f.Outbound.Dropped()
		return true
	})
	return total
}
