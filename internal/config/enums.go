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

package config

import (
	"github.com/jito-labs/zenoh-router/internal/face"
	"github.com/jito-labs/zenoh-router/internal/wire"
)

// LogLevel represents the logging level for the application.
type LogLevel string

const (
	// LogLevelDebug is the debug logging level, providing detailed information.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the informational logging level, providing general information.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn is the warning logging level, indicating potential issues.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError is the error logging level, indicating serious issues.
	LogLevelError LogLevel = "error"
)

// Role is this node's net_type, spec.md §3's Face.Role (router, peer
// or client) applied to the local node itself rather than a remote
// face.
type Role string

const (
	RoleRouter Role = "router"
	RolePeer   Role = "peer"
	RoleClient Role = "client"
)

// ToFaceRole maps the configured Role onto internal/face.Role, used to
// construct a hat.Tables for this node.
func (r Role) ToFaceRole() face.Role {
	switch r {
	case RolePeer:
		return face.RolePeer
	case RoleClient:
		return face.RoleClient
	default:
		return face.RoleRouter
	}
}

// MergeMode selects how overlapping QueryableInfo registrations fold
// together (spec.md §3 "QueryableInfo").
type MergeMode string

const (
	MergeModeSum    MergeMode = "sum"
	MergeModeBoolOr MergeMode = "bool_or"
)

// ToWireMergeMode maps the configured MergeMode onto internal/wire.MergeMode.
func (m MergeMode) ToWireMergeMode() wire.MergeMode {
	if m == MergeModeBoolOr {
		return wire.MergeBoolOr
	}
	return wire.MergeSum
}
