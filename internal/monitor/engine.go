// Package monitor drives the live dashboard: per-tick system load, GPU
// detail vectors and network rates go to a renderer, and optionally to a CSV
// export written after the session completes.
package monitor

import (
	"context"
	"time"

	"codeberg.org/varmo/hwstress/internal/errors"
	"codeberg.org/varmo/hwstress/internal/logger"
	"codeberg.org/varmo/hwstress/internal/report"
	"codeberg.org/varmo/hwstress/internal/sampler"
	"codeberg.org/varmo/hwstress/internal/sysinfo"
	"codeberg.org/varmo/hwstress/internal/telemetry"
)

// GPUStatus is the per-GPU detail view: the full vector, not just the
// representative maximum.
type GPUStatus struct {
	Descriptor   telemetry.GpuDescriptor
	LoadPercent  float64
	MemoryUsedMB float64
	HasTelemetry bool
}

// Snapshot is one dashboard tick.
type Snapshot struct {
	At         time.Time
	Host       sysinfo.Info
	CPUPercent float64
	MemPercent float64
	GPUs       []GPUStatus
	Net        sampler.NetRates
}

// Renderer consumes snapshots.
type Renderer interface {
	Render(Snapshot)
}

type Engine struct {
	loads    sampler.LoadSource
	resolver *telemetry.Resolver
	host     *sysinfo.Provider
	net      *sampler.NetReader
	renderer Renderer
	exporter *report.CSVExporter // nil disables export

	rows []report.Row
}

func New(loads sampler.LoadSource, resolver *telemetry.Resolver, host *sysinfo.Provider, net *sampler.NetReader, renderer Renderer, exporter *report.CSVExporter) *Engine {
	return &Engine{
		loads:    loads,
		resolver: resolver,
		host:     host,
		net:      net,
		renderer: renderer,
		exporter: exporter,
	}
}

// Run ticks until the duration elapses or the context is cancelled; a zero
// duration runs until cancellation. The CSV export, when enabled, is written
// once after the session ends.
func (e *Engine) Run(ctx context.Context, interval, duration time.Duration) error {
	errFactory := errors.New()

	if interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, interval.String())
	}
	if duration < 0 {
		return errFactory.WithData(errors.ErrInvalidDuration, duration.String())
	}

	info := e.host.Collect()
	info.GPUs = e.resolver.DetectGPUs(ctx)

	logger.Info().
		Dur("interval", interval).
		Dur("duration", duration).
		Int("gpus", len(info.GPUs)).
		Msg("monitor started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()

	for {
		snapshot := e.snapshot(ctx, info)
		e.renderer.Render(snapshot)

		if e.exporter != nil {
			e.rows = append(e.rows, report.Row{
				At:         snapshot.At,
				CPUPercent: snapshot.CPUPercent,
				MemPercent: snapshot.MemPercent,
			})
		}

		if duration > 0 && time.Since(start) >= duration {
			break
		}

		select {
		case <-ctx.Done():
			return e.export()
		case <-ticker.C:
		}
	}

	return e.export()
}

func (e *Engine) snapshot(ctx context.Context, info sysinfo.Info) Snapshot {
	snapshot := Snapshot{
		At:   time.Now(),
		Host: info,
	}

	if v, err := e.loads.CPUPercent(); err == nil {
		snapshot.CPUPercent = v
	} else {
		logger.Debug().Err(err).Msg("cpu sample failed")
	}
	if v, err := e.loads.MemoryPercent(); err == nil {
		snapshot.MemPercent = v
	} else {
		logger.Debug().Err(err).Msg("memory sample failed")
	}

	if e.net != nil {
		if rates, err := e.net.Rates(); err == nil {
			snapshot.Net = rates
		}
	}

	snapshot.GPUs = e.gpuDetail(ctx, info.GPUs)

	return snapshot
}

// gpuDetail pairs roster entries with the per-index telemetry vectors.
// Telemetry shorter than the roster leaves the tail entries marked as
// having no readings rather than fabricating values.
func (e *Engine) gpuDetail(ctx context.Context, gpus []telemetry.GpuDescriptor) []GPUStatus {
	if len(gpus) == 0 {
		return nil
	}

	results := e.resolver.ResolveAll(ctx, telemetry.GPULoad, telemetry.GPUMemory)
	loadValues := results[telemetry.GPULoad].Values()
	memValues := results[telemetry.GPUMemory].Values()

	statuses := make([]GPUStatus, 0, len(gpus))
	for i, gpu := range gpus {
		status := GPUStatus{Descriptor: gpu}

		if i < len(loadValues) {
			status.LoadPercent = loadValues[i]
			status.HasTelemetry = true
		}
		if i < len(memValues) {
			status.MemoryUsedMB = memValues[i]
			status.HasTelemetry = true
		}

		statuses = append(statuses, status)
	}

	return statuses
}

func (e *Engine) export() error {
	if e.exporter == nil || len(e.rows) == 0 {
		return nil
	}

	if err := e.exporter.Export(e.rows); err != nil {
		return err
	}

	logger.Info().Str("path", e.exporter.Path()).Int("rows", len(e.rows)).Msg("monitoring data exported")

	return nil
}
