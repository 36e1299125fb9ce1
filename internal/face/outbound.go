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

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jito-labs/zenoh-router/internal/wire"
)

// Outbound is a face's per-session declare queue: adapted from the
// teacher's internal/queue (a Push/Drain buffer keyed by session) into
// a bounded channel with its own drain goroutine, since this domain
// needs a background sender rather than a pull-on-demand buffer —
// spec.md §5 "Outbound declares to faces use the face's own send
// channel (non-blocking per face)" and "sends may suspend within the
// face's own transport layer but the routing engine must never block a
// send while holding the tables write lock".
type Outbound struct {
	ch   chan wire.Message
	sink Primitives

	closeOnce sync.Once
	done      chan struct{}

	mu      sync.Mutex
	dropped uint64
}

// NewOutbound starts a Face's outbound queue and its drain goroutine.
// capacity bounds how far the engine can run ahead of a slow transport
// before Enqueue starts blocking the caller.
func NewOutbound(sink Primitives, capacity int) *Outbound {
	if capacity <= 0 {
		capacity = 1
	}
	o := &Outbound{
		ch:   make(chan wire.Message, capacity),
		sink: sink,
		done: make(chan struct{}),
	}
	go o.run()
	return o
}

func (o *Outbound) run() {
	defer close(o.done)
	for msg := range o.ch {
		if err := o.sink.Send(msg); err != nil {
			slog.Error("face: outbound send failed", "error", err)
		}
	}
}

// Enqueue hands a message to the face's sender goroutine. It blocks
// only on the channel buffer (the suspension point spec.md §5 allows);
// callers in internal/hat must invoke this after releasing the tables
// lock, never while holding it.
func (o *Outbound) Enqueue(ctx context.Context, msg wire.Message) {
	select {
	case o.ch <- msg:
	case <-ctx.Done():
		o.mu.Lock()
		o.dropped++
		o.mu.Unlock()
		slog.Warn("face: outbound enqueue canceled", "error", ctx.Err())
	}
}

// TryEnqueue is the non-blocking variant, for a caller that cannot
// afford to suspend at all: on a full queue it drops and counts the
// message instead of blocking.
func (o *Outbound) TryEnqueue(msg wire.Message) bool {
	select {
	case o.ch <- msg:
		return true
	default:
		o.mu.Lock()
		o.dropped++
		o.mu.Unlock()
		slog.Warn("face: outbound queue full, dropping declare")
		return false
	}
}

// Dropped returns the number of messages dropped by TryEnqueue or
// canceled via Enqueue's context, for metrics.
func (o *Outbound) Dropped() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dropped
}

// Close stops accepting new messages and waits for the drain goroutine
// to flush whatever is already queued.
func (o *Outbound) Close() {
	o.closeOnce.Do(func() { close(o.ch) })
	<-o.done
}
