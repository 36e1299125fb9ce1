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

package cmd

import (
	"testing"
	"time"

	"github.com/jito-labs/zenoh-router/internal/config"
	"github.com/jito-labs/zenoh-router/internal/face"
	"github.com/jito-labs/zenoh-router/internal/hat"
	"github.com/jito-labs/zenoh-router/internal/replica"
	"github.com/jito-labs/zenoh-router/internal/wire"
	"github.com/jito-labs/zenoh-router/internal/zid"
)

func TestSetupTracing_EmptyEndpoint_ReturnsNoopCleanup(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{}
	cfg.Metrics.OTLPEndpoint = ""

	cleanup, err := setupTracing(cfg)
	if err != nil {
		t.Fatalf("expected no error for empty OTLP endpoint, got: %v", err)
	}
	if cleanup == nil {
		t.Fatal("expected non-nil no-op cleanup function for empty OTLP endpoint")
	}
	if err := cleanup(t.Context()); err != nil {
		t.Fatalf("expected no-op cleanup to return nil error, got: %v", err)
	}
}

func TestInitTracer_ValidEndpoint_ReturnsCleanup(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{}
	cfg.Metrics.OTLPEndpoint = "localhost:4317"

	cleanup, err := initTracer(cfg)
	if err != nil {
		t.Fatalf("expected no error for well-formed endpoint, got: %v", err)
	}
	if cleanup == nil {
		t.Fatal("expected non-nil cleanup function for well-formed endpoint")
	}
}

func TestSetupTracing_WithEndpoint_ReturnsCleanupAndNoError(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{}
	cfg.Metrics.OTLPEndpoint = "localhost:4317"

	cleanup, err := setupTracing(cfg)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cleanup == nil {
		t.Fatal("expected non-nil cleanup function when OTLP endpoint is set")
	}
}

func TestSetupMaintenanceJobs_SchedulesWithoutError(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{
		Digest: config.Digest{IntervalDuration: 50 * time.Millisecond, Subintervals: 10, HotIntervals: 2, WarmIntervals: 10},
	}
	z := zid.MustNew([]byte{0x01})
	tables := hat.New(z, face.RoleRouter, false, wire.MergeSum)
	replicaLog := replica.NewLog(cfg.Digest.ToDigestConfig(), nil, nil)

	scheduler, err := setupScheduler()
	if err != nil {
		t.Fatalf("expected no error creating scheduler, got: %v", err)
	}
	if err := setupMaintenanceJobs(scheduler, cfg, tables, replicaLog, z); err != nil {
		t.Fatalf("expected no error scheduling maintenance jobs, got: %v", err)
	}
	if err := scheduler.Shutdown(); err != nil {
		t.Fatalf("expected no error shutting down scheduler, got: %v", err)
	}
}

func TestSetupMaintenanceJobs_ZeroIntervalFallsBackToDefault(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{
		Digest: config.Digest{Subintervals: 10, HotIntervals: 2, WarmIntervals: 10},
	}
	z := zid.MustNew([]byte{0x02})
	tables := hat.New(z, face.RoleRouter, false, wire.MergeSum)
	replicaLog := replica.NewLog(cfg.Digest.ToDigestConfig(), nil, nil)

	scheduler, err := setupScheduler()
	if err != nil {
		t.Fatalf("expected no error creating scheduler, got: %v", err)
	}
	if err := setupMaintenanceJobs(scheduler, cfg, tables, replicaLog, z); err != nil {
		t.Fatalf("expected no error scheduling maintenance jobs with a zero interval, got: %v", err)
	}
	if err := scheduler.Shutdown(); err != nil {
		t.Fatalf("expected no error shutting down scheduler, got: %v", err)
	}
}
