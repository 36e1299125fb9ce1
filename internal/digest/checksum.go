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

import "strconv"

// crc64ECMA182Poly is the CRC-64/ECMA-182 polynomial (spec.md §4.3; the
// original uses the Rust `crc` crate's CRC_64_ECMA_182, digest.rs:15).
// That variant is MSB-first / non-reflected (refin=false, refout=false).
// hash/crc64's only table form (crc64.ECMA) is the *reflected* CRC-64
// used by e.g. XZ — same polynomial bits, different bit order, and it
// produces different output for any non-palindromic input. The standard
// library has no non-reflected CRC-64, so this builds the MSB-first
// table and update loop by hand rather than silently settling for the
// wrong variant under the same name.
const crc64ECMA182Poly = 0x42F0E1EBA9EA3693

var crc64ECMA182Table = func() (table [256]uint64) {
	for i := range table {
		crc := uint64(i) << 56
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000000000000000 != 0 {
				crc = (crc << 1) ^ crc64ECMA182Poly
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
	return table
}()

// crc64ECMA182 runs the non-reflected CRC-64/ECMA-182 update: init=0,
// xorout=0, MSB-first table lookup on crc's top byte.
func crc64ECMA182(crc uint64, data []byte) uint64 {
	for _, b := range data {
		crc = crc64ECMA182Table[byte(crc>>56)^b] ^ (crc << 8)
	}
	return crc
}

// hashLogEntries is get_content_hash over a sorted LogEntry sequence:
// CRC-64/ECMA-182 over the concatenation of each entry's formatted bytes
// in iteration order (spec.md §4.3).
func hashLogEntries(entries []LogEntry) uint64 {
	var crc uint64
	for _, e := range entries {
		crc = crc64ECMA182(crc, []byte(formatEntry(e)))
	}
	return crc
}

// hashUint64s is get_content_hash over a sequence of child checksums (or,
// for the digest checksum, era checksums): each formatted as base-10
// ASCII and concatenated in order.
func hashUint64s(values []uint64) uint64 {
	var crc uint64
	for _, v := range values {
		crc = crc64ECMA182(crc, []byte(strconv.FormatUint(v, 10)))
	}
	return crc
}
