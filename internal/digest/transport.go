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

package digest

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// wireForm mirrors Compress()'d output for transport: a real wire codec
// is out of scope (spec.md §1 "wire codecs" are an external
// collaborator), but the compressed digest still has to cross a link,
// so this gives it a concrete encode/decode path using the same
// compression library the rest of the pack reaches for. Serialization
// is stdlib encoding/json rather than the teacher's tinylib/msgp: msgp's
// MarshalMsg/UnmarshalMsg methods are code-generated (see DESIGN.md),
// and this repo's non-string-keyed maps (Era/uint64 keys below) aren't
// something the generator handles on its own.

type wireForm struct {
	Timestamp    Timestamp            `json:"timestamp"`
	Config       Config               `json:"config"`
	Checksum     uint64               `json:"checksum"`
	Eras         map[Era]Bucket       `json:"eras"`
	Intervals    map[uint64]Bucket    `json:"intervals"`
	Subintervals map[uint64]SubBucket `json:"subintervals"`
}

// EncodeWire compresses d (spec.md §4.3 "compress") and zstd-packs the
// result for transmission.
func EncodeWire(d Digest) ([]byte, error) {
	compressed := d.Compress()
	raw, err := json.Marshal(wireForm(compressed))
	if err != nil {
		return nil, fmt.Errorf("digest: marshal wire form: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("digest: new zstd writer: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(raw, nil), nil
}

// DecodeWire reverses EncodeWire, yielding the sender's compressed
// digest (suitable for EraHasDiff/GetIntervalDiff/... against the local
// one).
func DecodeWire(payload []byte) (Digest, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return Digest{}, fmt.Errorf("digest: new zstd reader: %w", err)
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(payload, nil)
	if err != nil {
		return Digest{}, fmt.Errorf("digest: zstd decode: %w", err)
	}
	var w wireForm
	if err := json.Unmarshal(raw, &w); err != nil {
		return Digest{}, fmt.Errorf("digest: unmarshal wire form: %w", err)
	}
	return Digest(w), nil
}
