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
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jito-labs/zenoh-router/internal/config"
	"github.com/jito-labs/zenoh-router/internal/digest"
	"github.com/jito-labs/zenoh-router/internal/hat"
	"github.com/jito-labs/zenoh-router/internal/metrics"
	"github.com/jito-labs/zenoh-router/internal/pprof"
	"github.com/jito-labs/zenoh-router/internal/replica"
	"github.com/jito-labs/zenoh-router/internal/zid"
	"github.com/USA-RedDragon/configulator"
	"github.com/go-co-op/gocron/v2"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func NewCommand(version, commit string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "zenoh-router",
		Version: fmt.Sprintf("%s - %s", version, commit),
		Annotations: map[string]string{
			"version": version,
			"commit":  commit,
		},
		RunE:              runRoot,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}
	return cmd
}

func runRoot(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	fmt.Printf("zenoh-router - %s (%s)\n", cmd.Annotations["version"], cmd.Annotations["commit"])

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	setupLogger(cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cleanup, err := setupTracing(cfg)
	if err != nil {
		return fmt.Errorf("failed to setup tracing: %w", err)
	}
	defer func() {
		if err := cleanup(ctx); err != nil {
			slog.Error("Failed to shutdown tracer", "error", err)
		}
	}()

	metrics.SetGlobal(metrics.NewMetrics())
	startBackgroundServices(cfg)

	localZid, err := zid.Parse(cfg.Zid)
	if err != nil {
		return fmt.Errorf("invalid configured zid: %w", err)
	}

	tables := hat.New(localZid, cfg.Role.ToFaceRole(), cfg.FullPeerNet, cfg.QueryableMergeMode.ToWireMergeMode())
	tables.Metrics = metrics.Global()

	replicaLog := replica.NewLog(cfg.Digest.ToDigestConfig(), metrics.Global().RecordDigestBuild, metrics.Global().RecordDigestUpdate)

	scheduler, err := setupScheduler()
	if err != nil {
		return err
	}
	if err := setupMaintenanceJobs(scheduler, cfg, tables, replicaLog, localZid); err != nil {
		return fmt.Errorf("failed to schedule maintenance jobs: %w", err)
	}
	scheduler.Start()

	slog.Info("zenoh-router ready", "zid", localZid.String(), "role", tables.Role.String())

	setupShutdownHandlers(ctx, scheduler, cleanup)

	return nil
}

// loadConfig loads the configuration from context.
func loadConfig(ctx context.Context) (*config.Config, error) {
	c, err := configulator.FromContext[config.Config](ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get config from context: %w", err)
	}

	cfg, err := c.LoadWithoutValidation()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// setupLogger configures the structured logger.
func setupLogger(cfg *config.Config) {
	var logger *slog.Logger
	switch cfg.LogLevel {
	case config.LogLevelDebug:
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelDebug}))
	case config.LogLevelInfo:
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelInfo}))
	case config.LogLevelWarn:
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn}))
	case config.LogLevelError:
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelError}))
	default:
		// Fall back to info level for unrecognized log levels to prevent nil logger panic
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelInfo}))
	}
	slog.SetDefault(logger)
}

// setupScheduler creates and configures the job scheduler.
func setupScheduler() (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return scheduler, nil
}

// setupTracing initializes OpenTelemetry tracing if configured.
// When tracing is not configured it returns a no-op cleanup function.
func setupTracing(cfg *config.Config) (func(context.Context) error, error) {
	if cfg.Metrics.OTLPEndpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	return initTracer(cfg)
}

// startBackgroundServices starts the metrics and pprof servers.
func startBackgroundServices(cfg *config.Config) {
	go func() {
		if err := metrics.CreateMetricsServer(cfg); err != nil {
			slog.Error("Failed to start metrics server", "error", err)
		}
	}()
	go func() {
		if err := pprof.CreatePProfServer(cfg); err != nil {
			slog.Error("Failed to start pprof server", "error", err)
		}
	}()
}

// setupMaintenanceJobs schedules one periodic job that runs the two
// maintenance tasks the routing core needs outside of the request/declare
// path (spec.md §5's "the routing engine must never block a send while
// holding the tables write lock" argues for polling these outside any hot
// path):
//
//   - face send-drop gauge: sums every registered face's dropped-declare
//     counter (internal/face can't report this directly; see DESIGN.md).
//   - replica digest snapshot: folds whatever internal/replica.Log has
//     tracked since the last tick into a fresh digest, so there is
//     always a recent digest available for alignment.
func setupMaintenanceJobs(scheduler gocron.Scheduler, cfg *config.Config, tables *hat.Tables, replicaLog *replica.Log, localZid zid.ID) error {
	interval := cfg.Digest.IntervalDuration
	if interval <= 0 {
		interval = 30 * time.Second
	}

	_, err := scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			metrics.Global().RecordFaceSendDrops(float64(tables.Faces.TotalDropped()))

			d := replicaLog.SnapshotNow(context.Background(), uint64(time.Now().UnixMilli()), localZid)
			if cfg.Digest.CompressPayload {
				payload, err := digest.EncodeWire(d)
				if err != nil {
					slog.Warn("Failed to compress replica digest for transport", "error", err)
					return
				}
				slog.Debug("Replica digest snapshot", "checksum", d.Checksum, "compressed_bytes", len(payload))
			} else {
				slog.Debug("Replica digest snapshot", "checksum", d.Checksum)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule maintenance job: %w", err)
	}
	return nil
}

// setupShutdownHandlers blocks until SIGINT/SIGTERM/SIGQUIT/SIGHUP is
// received, then performs an orderly shutdown of the scheduler and the
// tracer.
func setupShutdownHandlers(ctx context.Context, scheduler gocron.Scheduler, cleanup func(context.Context) error) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)

	sig := <-sigCh
	slog.Error("Shutting down due to signal", "signal", sig)

	wg := new(sync.WaitGroup)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := scheduler.StopJobs(); err != nil {
			slog.Error("Failed to stop scheduler jobs", "error", err)
		}
		if err := scheduler.Shutdown(); err != nil {
			slog.Error("Failed to stop scheduler", "error", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if cleanup != nil {
			const timeout = 5 * time.Second
			shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			if err := cleanup(shutdownCtx); err != nil {
				slog.Error("Failed to shutdown tracer", "error", err)
			}
		}
	}()

	const timeout = 10 * time.Second
	c := make(chan struct{})
	go func() {
		defer close(c)
		wg.Wait()
	}()
	select {
	case <-c:
		slog.Info("Shut down gracefully")
		os.Exit(0)
	case <-time.After(timeout):
		slog.Error("Shutdown timed out, forcing exit")
		os.Exit(1)
	}
}

func initTracer(cfg *config.Config) (func(context.Context) error, error) {
	exporter, err := otlptrace.New(
		context.Background(),
		otlptracegrpc.NewClient(
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithEndpoint(cfg.Metrics.OTLPEndpoint),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	resources, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", "zenoh-router"),
			attribute.String("library.language", "go"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace resources: %w", err)
	}

	otel.SetTracerProvider(
		sdktrace.NewTracerProvider(
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(resources),
		),
	)
	return exporter.Shutdown, nil
}
