package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cabinet-platform/kernel/internal/adapter/inbound/metricshttp"
	"github.com/cabinet-platform/kernel/internal/adapter/outbound/auditfile"
	"github.com/cabinet-platform/kernel/internal/adapter/outbound/auditsqlite"
	"github.com/cabinet-platform/kernel/internal/adapter/outbound/celcond"
	"github.com/cabinet-platform/kernel/internal/adapter/outbound/spawn"
	"github.com/cabinet-platform/kernel/internal/adapter/outbound/statusfile"
	"github.com/cabinet-platform/kernel/internal/config"
	"github.com/cabinet-platform/kernel/internal/port/outbound"
	"github.com/cabinet-platform/kernel/internal/service"
	"github.com/cabinet-platform/kernel/internal/telemetry"
)

// kernelRuntime bundles everything a command needs to drive the kernel.
type kernelRuntime struct {
	cfg      *config.KernelConfig
	kernel   *service.KernelService
	metrics  *metricshttp.Metrics
	registry *prometheus.Registry
	logger   *slog.Logger
	cleanup  []func() error
}

// close releases resources in reverse construction order.
func (r *kernelRuntime) close() {
	for i := len(r.cleanup) - 1; i >= 0; i-- {
		if err := r.cleanup[i](); err != nil {
			r.logger.Warn("cleanup failed", "error", err)
		}
	}
}

// newLogger builds the operational logger on stderr; stdout stays reserved
// for the IPC envelope.
func newLogger(devMode bool) *slog.Logger {
	level := slog.LevelInfo
	if devMode {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// buildRuntime loads config and policies and wires the full kernel. When
// withMetrics is set a Prometheus registry is attached for serve mode.
func buildRuntime(withMetrics bool) (*kernelRuntime, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg.DevMode)

	policies, err := config.LoadPolicies(cfg)
	if err != nil {
		return nil, fmt.Errorf("policy load failed: %w", err)
	}

	evaluator, err := celcond.NewEvaluator()
	if err != nil {
		return nil, err
	}
	if err := evaluator.Precompile(policies.Graph); err != nil {
		return nil, fmt.Errorf("route condition compile failed: %w", err)
	}

	rt := &kernelRuntime{cfg: cfg, logger: logger}

	fileSink, err := auditfile.NewFileAuditSink(cfg.Audit.LogFile, logger)
	if err != nil {
		return nil, err
	}
	sinks := []outbound.AuditSink{fileSink}
	rt.cleanup = append(rt.cleanup, fileSink.Close)

	if cfg.Audit.SQLitePath != "" {
		sqliteStore, err := auditsqlite.NewSQLiteAuditStore(cfg.Audit.SQLitePath)
		if err != nil {
			rt.close()
			return nil, err
		}
		sinks = append(sinks, sqliteStore)
		rt.cleanup = append(rt.cleanup, sqliteStore.Close)
	}

	statusWriter, err := statusfile.NewFileStatusWriter(cfg.Status.File)
	if err != nil {
		rt.close()
		return nil, err
	}

	tracer, shutdownTracer, err := telemetry.InitTracer(cfg.Tracing.Enabled)
	if err != nil {
		rt.close()
		return nil, err
	}
	rt.cleanup = append(rt.cleanup, func() error {
		return shutdownTracer(context.Background())
	})

	opts := []service.KernelOption{
		service.WithConditionEvaluator(evaluator),
		service.WithTracer(tracer),
	}

	var onDrop func()
	if withMetrics {
		rt.registry = prometheus.NewRegistry()
		rt.metrics = metricshttp.NewMetrics(rt.registry)
		onDrop = rt.metrics.AuditDropsTotal.Inc
		opts = append(opts, service.WithMetrics(rt.metrics))
	}

	auditor := service.NewAuditService(logger, onDrop, sinks...)
	statusSvc := service.NewStatusService(statusWriter, logger)
	invoker := spawn.NewProcessInvoker(logger)

	rt.kernel = service.NewKernelService(cfg, policies, invoker, auditor, statusSvc, logger, opts...)
	return rt, nil
}
