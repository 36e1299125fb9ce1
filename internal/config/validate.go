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
	"errors"

	"github.com/jito-labs/zenoh-router/internal/zid"
)

var (
	// ErrInvalidLogLevel indicates that the provided log level is not valid.
	ErrInvalidLogLevel = errors.New("invalid log level provided")
	// ErrInvalidZid indicates the configured zid is empty or malformed.
	ErrInvalidZid = errors.New("invalid zid provided")
	// ErrInvalidRole indicates the configured role is not router, peer, or client.
	ErrInvalidRole = errors.New("invalid role provided, must be one of router, peer, or client")
	// ErrInvalidQueryableMergeMode indicates the configured merge mode is not sum or bool_or.
	ErrInvalidQueryableMergeMode = errors.New("invalid queryable merge mode provided, must be one of sum or bool_or")
	// ErrInvalidDigestIntervalDuration indicates interval_duration is non-positive.
	ErrInvalidDigestIntervalDuration = errors.New("invalid digest interval duration provided, must be positive")
	// ErrInvalidDigestSubintervals indicates subintervals is zero.
	ErrInvalidDigestSubintervals = errors.New("invalid digest subintervals provided, must be nonzero")
	// ErrInvalidDigestHotIntervals indicates hot_intervals is zero.
	ErrInvalidDigestHotIntervals = errors.New("invalid digest hot intervals provided, must be nonzero")
	// ErrInvalidMetricsBindAddress indicates that the provided metrics server bind address is not valid.
	ErrInvalidMetricsBindAddress = errors.New("invalid metrics server bind address provided")
	// ErrInvalidMetricsPort indicates that the provided metrics server port is not valid.
	ErrInvalidMetricsPort = errors.New("invalid metrics server port provided")
	// ErrInvalidPProfBindAddress indicates that the provided PProf server bind address is not valid.
	ErrInvalidPProfBindAddress = errors.New("invalid PProf server bind address provided")
	// ErrInvalidPProfPort indicates that the provided PProf server port is not valid.
	ErrInvalidPProfPort = errors.New("invalid PProf server port provided")
)

// Validate validates the Digest configuration.
func (d Digest) Validate() error {
	if d.IntervalDuration <= 0 {
		return ErrInvalidDigestIntervalDuration
	}
	if d.Subintervals == 0 {
		return ErrInvalidDigestSubintervals
	}
	if d.HotIntervals == 0 {
		return ErrInvalidDigestHotIntervals
	}
	return nil
}

// Validate validates the Metrics configuration.
func (m Metrics) Validate() error {
	if !m.Enabled {
		return nil
	}

	if m.Bind == "" {
		return ErrInvalidMetricsBindAddress
	}
	if m.Port <= 0 || m.Port > 65535 {
		return ErrInvalidMetricsPort
	}

	return nil
}

// Validate validates the PProf configuration.
func (p PProf) Validate() error {
	if !p.Enabled {
		return nil
	}

	if p.Bind == "" {
		return ErrInvalidPProfBindAddress
	}
	if p.Port <= 0 || p.Port > 65535 {
		return ErrInvalidPProfPort
	}

	return nil
}

// Validate validates the full Config, per the teacher's
// one-Validate-method-per-section convention.
func (c Config) Validate() error {
	if c.LogLevel != LogLevelDebug &&
		c.LogLevel != LogLevelInfo &&
		c.LogLevel != LogLevelWarn &&
		c.LogLevel != LogLevelError {
		return ErrInvalidLogLevel
	}

	if _, err := zid.Parse(c.Zid); err != nil {
		return ErrInvalidZid
	}

	if c.Role != RoleRouter && c.Role != RolePeer && c.Role != RoleClient {
		return ErrInvalidRole
	}

	if c.QueryableMergeMode != MergeModeSum && c.QueryableMergeMode != MergeModeBoolOr {
		return ErrInvalidQueryableMergeMode
	}

	if err := c.Digest.Validate(); err != nil {
		return err
	}

	if err := c.Metrics.Validate(); err != nil {
		return err
	}

	if err := c.PProf.Validate(); err != nil {
		return err
	}

	return nil
}
