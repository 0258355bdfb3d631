// Package heatmap drives the thermal dashboard: on every tick it resolves
// component temperatures through the telemetry resolver and hands the
// snapshot to a renderer. Drawing is entirely the renderer's concern.
package heatmap

import (
	"context"
	"time"

	"codeberg.org/varmo/hwstress/internal/errors"
	"codeberg.org/varmo/hwstress/internal/logger"
	"codeberg.org/varmo/hwstress/internal/sampler"
	"codeberg.org/varmo/hwstress/internal/telemetry"
)

// ComponentTemps is one tick's worth of component temperatures. RAM is
// always a load-derived estimate; commodity hardware has no RAM sensor.
type ComponentTemps struct {
	At      time.Time
	CPU     telemetry.MetricSample
	GPU     telemetry.MetricSample
	Board   telemetry.MetricSample
	Storage telemetry.MetricSample

	// RAMCelsius is derived from memory utilization, never measured.
	RAMCelsius float64
}

// Renderer consumes snapshots; the engine has no dependency on how they are
// drawn.
type Renderer interface {
	Render(ComponentTemps)
}

type Engine struct {
	resolver *telemetry.Resolver
	loads    sampler.LoadSource
	renderer Renderer
}

func New(resolver *telemetry.Resolver, loads sampler.LoadSource, renderer Renderer) *Engine {
	return &Engine{
		resolver: resolver,
		loads:    loads,
		renderer: renderer,
	}
}

// Run ticks until the duration elapses or the context is cancelled; a zero
// duration runs until cancellation. Returns the number of completed ticks.
// Interval and duration are validated before any sampling begins.
func (e *Engine) Run(ctx context.Context, interval, duration time.Duration) (int, error) {
	errFactory := errors.New()

	if interval <= 0 {
		return 0, errFactory.WithData(errors.ErrInvalidInterval, interval.String())
	}
	if duration < 0 {
		return 0, errFactory.WithData(errors.ErrInvalidDuration, duration.String())
	}

	logger.Info().
		Dur("interval", interval).
		Dur("duration", duration).
		Msg("thermal heatmap started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	ticks := 0

	for {
		e.renderer.Render(e.snapshot(ctx))
		ticks++

		if duration > 0 && time.Since(start) >= duration {
			return ticks, nil
		}

		select {
		case <-ctx.Done():
			return ticks, nil
		case <-ticker.C:
		}
	}
}

// snapshot resolves all component temperatures for one tick. Every value is
// usable: exhausted probe ranks surface as synthetic estimates.
func (e *Engine) snapshot(ctx context.Context) ComponentTemps {
	results := e.resolver.ResolveAll(ctx, telemetry.TemperatureMetrics...)

	memPercent := 0.0
	if v, err := e.loads.MemoryPercent(); err == nil {
		memPercent = v
	}

	return ComponentTemps{
		At:         time.Now(),
		CPU:        results[telemetry.CPUTemp].Sample(telemetry.CPUTemp),
		GPU:        results[telemetry.GPUTemp].Sample(telemetry.GPUTemp),
		Board:      results[telemetry.BoardTemp].Sample(telemetry.BoardTemp),
		Storage:    results[telemetry.StorageTemp].Sample(telemetry.StorageTemp),
		RAMCelsius: telemetry.EstimateRAMTemp(memPercent),
	}
}
