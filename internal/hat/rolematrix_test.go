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
	"testing"

	"github.com/jito-labs/zenoh-router/internal/face"
	"github.com/stretchr/testify/assert"
)

// TestRoleMatrixAllows exercises every row of spec.md §4.1's propagation
// role matrix.
func TestRoleMatrixAllows(t *testing.T) {
	always := func() bool { return true }
	never := func() bool { return false }

	t.Run("router with full_peer_net only reaches clients", func(t *testing.T) {
		assert.True(t, roleMatrixAllows(face.RoleRouter, true, face.RoleClient, face.RoleClient, never))
		assert.True(t, roleMatrixAllows(face.RoleRouter, true, face.RoleRouter, face.RoleClient, never))
		assert.False(t, roleMatrixAllows(face.RoleRouter, true, face.RoleClient, face.RoleRouter, never))
		assert.False(t, roleMatrixAllows(face.RoleRouter, true, face.RoleClient, face.RolePeer, never))
	})

	t.Run("router without full_peer_net never forwards router-to-router", func(t *testing.T) {
		assert.False(t, roleMatrixAllows(face.RoleRouter, false, face.RoleClient, face.RoleRouter, never))
		assert.False(t, roleMatrixAllows(face.RoleRouter, false, face.RolePeer, face.RoleRouter, never))
	})

	t.Run("router without full_peer_net: peer-to-peer gated on brokering", func(t *testing.T) {
		assert.True(t, roleMatrixAllows(face.RoleRouter, false, face.RolePeer, face.RolePeer, always))
		assert.False(t, roleMatrixAllows(face.RoleRouter, false, face.RolePeer, face.RolePeer, never))
	})

	t.Run("router without full_peer_net: any other pair always allowed", func(t *testing.T) {
		assert.True(t, roleMatrixAllows(face.RoleRouter, false, face.RoleClient, face.RolePeer, never))
		assert.True(t, roleMatrixAllows(face.RoleRouter, false, face.RolePeer, face.RoleClient, never))
		assert.True(t, roleMatrixAllows(face.RoleRouter, false, face.RoleClient, face.RoleClient, never))
	})

	t.Run("peer with full_peer_net only reaches clients", func(t *testing.T) {
		assert.True(t, roleMatrixAllows(face.RolePeer, true, face.RoleRouter, face.RoleClient, never))
		assert.False(t, roleMatrixAllows(face.RolePeer, true, face.RoleRouter, face.RolePeer, never))
	})

	t.Run("peer without full_peer_net requires a client on one side", func(t *testing.T) {
		assert.True(t, roleMatrixAllows(face.RolePeer, false, face.RoleClient, face.RolePeer, never))
		assert.True(t, roleMatrixAllows(face.RolePeer, false, face.RolePeer, face.RoleClient, never))
		assert.False(t, roleMatrixAllows(face.RolePeer, false, face.RolePeer, face.RoleRouter, never))
	})

	t.Run("client requires a client on one side regardless of full_peer_net", func(t *testing.T) {
		assert.True(t, roleMatrixAllows(face.RoleClient, false, face.RoleClient, face.RoleRouter, never))
		assert.True(t, roleMatrixAllows(face.RoleClient, true, face.RoleRouter, face.RoleClient, never))
		assert.False(t, roleMatrixAllows(face.RoleClient, false, face.RoleRouter, face.RolePeer, never))
	})
}

func TestIsLiveliness(t *testing.T) {
	assert.True(t, isLiveliness("@/liveliness/foo"))
	assert.False(t, isLiveliness("demo/example"))
	assert.False(t, isLiveliness("@/liveliness"))
}
