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

// Package wire defines the declaration message shapes exchanged with the
// transport (spec.md §6 "External interfaces"). No codec lives here —
// wire serialization is an external collaborator per spec.md §1; these
// are the Go-native structs a codec would marshal.
package wire

// Reliability mirrors the subscriber's delivery guarantee request.
type Reliability uint8

const (
	ReliabilityBestEffort Reliability = iota
	ReliabilityReliable
)

// Mode distinguishes push-delivered from pull-on-demand subscriptions.
// See DESIGN.md Open Question #2 for the Pull/Push re-declare asymmetry.
type Mode uint8

const (
	ModePush Mode = iota
	ModePull
)

// SubscriberInfo is the payload carried by Declare/UndeclareSubscriber.
type SubscriberInfo struct {
	Reliability Reliability
	Mode        Mode
}

// QueryableInfo is the payload carried by Declare/UndeclareQueryable, and is
// also the aggregate value stored per (Resource, scope) entry (spec.md §3).
type QueryableInfo struct {
	Complete uint8
	Distance uint8
}

// MergeMode selects one of the two component-wise merge rules spec.md §3
// allows for QueryableInfo aggregation; it is fixed at Tables construction
// time (the original gates this behind a build flag).
type MergeMode uint8

const (
	// MergeSum sums Complete and takes the minimum Distance.
	MergeSum MergeMode = iota
	// MergeBoolOr treats Complete as boolean (>0) and ORs it, still taking
	// the minimum Distance.
	MergeBoolOr
)

// Merge combines two QueryableInfo values per mode. The zero value is not
// a merge identity (its Distance 0 wins every minimum), so callers fold
// over a non-empty set starting from its first element, see internal/hat.
func Merge(mode MergeMode, a, b QueryableInfo) QueryableInfo {
	out := QueryableInfo{Distance: minU8(a.Distance, b.Distance)}
	switch mode {
	case MergeBoolOr:
		if a.Complete > 0 || b.Complete > 0 {
			out.Complete = 1
		}
	default: // MergeSum
		out.Complete = a.Complete + b.Complete
	}
	return out
}

func minU8(a, b uint8) uint8 {
	if a < b {
		return a
	}
	return b
}

// NodeID is the routing context carried on every declaration message: the
// source index in the sender's per-source spanning tree, or 0 when the
// declaration was not sourced (spec.md §6).
type NodeID uint64

// DeclareSubscriber announces a subscriber registration to a face.
type DeclareSubscriber struct {
	ID       uint64
	WireExpr string
	Info     SubscriberInfo
	NodeID   NodeID
}

// UndeclareSubscriber withdraws a previously declared subscriber.
type UndeclareSubscriber struct {
	ID          uint64
	ExtWireExpr string
	NodeID      NodeID
}

// DeclareQueryable announces a queryable registration to a face.
type DeclareQueryable struct {
	ID       uint64
	WireExpr string
	Info     QueryableInfo
	NodeID   NodeID
}

// UndeclareQueryable withdraws a previously declared queryable.
type UndeclareQueryable struct {
	ID          uint64
	ExtWireExpr string
	NodeID      NodeID
}

// Message is the union of outbound declaration messages a Face's Primitives
// sink accepts. Exactly one of the four pointer-typed fields is non-nil.
type Message struct {
	DeclareSub    *DeclareSubscriber
	UndeclareSub  *UndeclareSubscriber
	DeclareQabl   *DeclareQueryable
	UndeclareQabl *UndeclareQueryable
}
