package telemetry

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/varmo/hwstress/internal/logger"
	"codeberg.org/varmo/hwstress/internal/sampler"
)

const defaultProbeTimeout = 2 * time.Second

// syntheticCurve derives a temperature estimate from a load percentage.
// Constants follow typical hardware behavior under load.
type syntheticCurve struct {
	base    float64
	slope   float64
	fromMem bool
}

var syntheticCurves = map[Metric]syntheticCurve{
	CPUTemp:     {base: 35, slope: 0.5},
	GPUTemp:     {base: 35, slope: 0.4},
	BoardTemp:   {base: 30, slope: 0.2},
	StorageTemp: {base: 25, slope: 0.15},
}

const (
	ramTempBase  = 30.0
	ramTempSlope = 0.3
)

// EstimateRAMTemp derives a RAM temperature estimate from memory
// utilization. There is no direct RAM sensor on commodity hardware, so this
// value is always synthetic.
func EstimateRAMTemp(memPercent float64) float64 {
	return ramTempBase + memPercent*ramTempSlope
}

// Resolver answers metric queries by trying an ordered list of probes until
// one succeeds. Probe failures are isolated: each invocation is bounded by a
// timeout and panics are captured, so Resolve never returns an error.
type Resolver struct {
	ranks   map[Metric][]Probe
	roster  []RosterSource
	loads   sampler.LoadSource
	timeout time.Duration
}

// ResolverOption adjusts resolver construction.
type ResolverOption func(*Resolver)

// WithProbeTimeout bounds each probe invocation. A hung external command
// counts as Unavailable once the timeout elapses.
func WithProbeTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// NewResolver builds a resolver over explicit ranked probe lists. The load
// source feeds the synthetic fallback when a metric's ranks are exhausted.
func NewResolver(ranks map[Metric][]Probe, roster []RosterSource, loads sampler.LoadSource, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		ranks:   ranks,
		roster:  roster,
		loads:   loads,
		timeout: defaultProbeTimeout,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve consults the metric's ranked probes strictly in order and stops at
// the first success. A probe that fails, times out, or reports no device
// advances the rank; it is never retried within one call. When every rank is
// exhausted the result is a load-derived synthetic estimate.
func (r *Resolver) Resolve(ctx context.Context, metric Metric) ProbeResult {
	for _, probe := range r.ranks[metric] {
		result := r.invoke(ctx, probe)
		if result.OK() {
			return result
		}

		if result.Failed() {
			logger.Debug().
				Str("probe", probe.Name()).
				Str("metric", metric.String()).
				Err(result.Err()).
				Msg("probe failed, advancing rank")
		}
	}

	return r.synthetic(metric)
}

// ResolveAll resolves each requested metric independently. The returned map
// has an entry for every requested metric.
func (r *Resolver) ResolveAll(ctx context.Context, metrics ...Metric) map[Metric]ProbeResult {
	results := make(map[Metric]ProbeResult, len(metrics))
	for _, metric := range metrics {
		results[metric] = r.Resolve(ctx, metric)
	}

	return results
}

// invoke runs one probe bounded by the resolver timeout. The probe runs on
// its own goroutine so a read that ignores context cancellation cannot stall
// a telemetry tick; panics surface as Failure results.
func (r *Resolver) invoke(ctx context.Context, probe Probe) ProbeResult {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan ProbeResult, 1)
	go func() {
		defer func() {
			if v := recover(); v != nil {
				done <- Failure(fmt.Errorf("probe panic: %v", v))
			}
		}()
		done <- probe.Invoke(ctx)
	}()

	select {
	case result := <-done:
		return result
	case <-ctx.Done():
		return Unavailable(fmt.Sprintf("%s timed out", probe.Name()))
	}
}

// synthetic produces the last-resort estimate for a metric. Load metrics map
// directly onto the sampler readings; temperatures follow per-metric curves.
func (r *Resolver) synthetic(metric Metric) ProbeResult {
	switch metric {
	case CPULoad:
		if v, err := r.loads.CPUPercent(); err == nil {
			return Synthetic(v)
		}
	case MemLoad:
		if v, err := r.loads.MemoryPercent(); err == nil {
			return Synthetic(v)
		}
	case GPULoad, GPUMemory:
		// There is no honest way to estimate GPU activity from host load.
		return Unavailable("no gpu telemetry source")
	default:
		curve, ok := syntheticCurves[metric]
		if !ok {
			return Unavailable("no synthetic estimate for metric")
		}

		load := 0.0
		if curve.fromMem {
			if v, err := r.loads.MemoryPercent(); err == nil {
				load = v
			}
		} else {
			if v, err := r.loads.CPUPercent(); err == nil {
				load = v
			}
		}

		return Synthetic(curve.base + load*curve.slope)
	}

	return Unavailable("load source unavailable")
}

// RosterSource enumerates GPUs from one discovery backend.
type RosterSource interface {
	Name() string
	Roster(ctx context.Context) ([]GpuDescriptor, error)
}

// DetectGPUs queries roster sources in rank order and returns the first
// non-empty roster, re-indexed from zero. An empty slice means no GPU.
func (r *Resolver) DetectGPUs(ctx context.Context) []GpuDescriptor {
	for _, source := range r.roster {
		gpus, err := source.Roster(ctx)
		if err != nil {
			logger.Debug().Str("source", source.Name()).Err(err).Msg("gpu roster source failed")
			continue
		}
		if len(gpus) == 0 {
			continue
		}

		for i := range gpus {
			gpus[i].Index = i
		}

		return gpus
	}

	return nil
}
