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

// Package zid implements the opaque node identity used throughout the
// routing core: a 1-16 byte value with total order and equality
// (spec.md §3 "Zid"). Grounded on original_source's
// commons/zenoh-codec/src/core/zenohid.rs for the canonical hex form.
package zid

import (
	"bytes"
	"encoding/hex"
	"errors"
)

// MaxLen is the maximum number of significant bytes a Zid may carry.
const MaxLen = 16

// ErrTooLong is returned when more than MaxLen bytes are supplied to New.
var ErrTooLong = errors.New("zid: identity exceeds 16 bytes")

// ErrEmpty is returned when zero bytes are supplied to New or Parse.
var ErrEmpty = errors.New("zid: identity must not be empty")

// ID is a node identity. It is a fixed-size array so that it remains
// comparable (usable as a map key) and has value semantics, mirroring
// the original's small-buffer-optimized id type. Only the first Len
// bytes are significant; the remainder is always zeroed.
type ID struct {
	bytes [MaxLen]byte
	n     uint8
}

// New builds an ID from a byte slice of 1-16 bytes.
func New(b []byte) (ID, error) {
	var id ID
	switch {
	case len(b) == 0:
		return id, ErrEmpty
	case len(b) > MaxLen:
		return id, ErrTooLong
	}
	copy(id.bytes[:], b)
	id.n = uint8(len(b))
	return id, nil
}

// MustNew is New but panics on error; intended for tests and literals.
func MustNew(b []byte) ID {
	id, err := New(b)
	if err != nil {
		panic(err)
	}
	return id
}

// Len returns the number of significant bytes.
func (id ID) Len() int {
	return int(id.n)
}

// Bytes returns the significant bytes of the identity.
func (id ID) Bytes() []byte {
	out := make([]byte, id.n)
	copy(out, id.bytes[:id.n])
	return out
}

// IsZero reports whether id was never assigned a value.
func (id ID) IsZero() bool {
	return id.n == 0
}

// Equal reports byte-wise equality.
func (id ID) Equal(other ID) bool {
	return id.n == other.n && id.bytes == other.bytes
}

// Compare gives a total order over identities: shorter ids sort first, then
// lexicographic order over significant bytes. Used by digest log-entry
// tie-breaking (spec.md §4.3 "ties broken by key bytes") and for any
// deterministic iteration over Zid-keyed sets.
func (id ID) Compare(other ID) int {
	if id.n != other.n {
		if id.n < other.n {
			return -1
		}
		return 1
	}
	return bytes.Compare(id.bytes[:id.n], other.bytes[:id.n])
}

// String renders the canonical lowercase hex form used in logs and config.
func (id ID) String() string {
	return hex.EncodeToString(id.bytes[:id.n])
}

// Parse decodes the canonical hex form produced by String.
func Parse(s string) (ID, error) {
	if s == "" {
		return ID{}, ErrEmpty
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return ID{}, err
	}
	return New(b)
}
