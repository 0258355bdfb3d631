package bench

import (
	"context"
	"math/rand"
	"time"

	"codeberg.org/varmo/hwstress/internal/logger"
	"codeberg.org/varmo/hwstress/internal/sampler"
	"codeberg.org/varmo/hwstress/internal/telemetry"
)

// matrixSize keeps one CPU workload iteration well under the check interval
// so cancellation latency stays bounded by roughly one sample interval.
const matrixSize = 100

// Generator produces bounded synthetic load and samples the system while
// doing so. Each phase loops until its wall-clock deadline or until the
// shared RunState leaves Running, checked every iteration; there is no
// preemptive interruption.
type Generator struct {
	loads    sampler.LoadSource
	resolver *telemetry.Resolver
	interval time.Duration
}

func NewGenerator(loads sampler.LoadSource, resolver *telemetry.Resolver, interval time.Duration) *Generator {
	if interval <= 0 {
		interval = DefaultSampleInterval
	}

	return &Generator{
		loads:    loads,
		resolver: resolver,
		interval: interval,
	}
}

// RunCPUPhase performs a fixed-size dense numeric workload per iteration and
// records instantaneous CPU utilization. A deadline already in the past
// yields an empty sequence.
func (g *Generator) RunCPUPhase(deadline time.Time, state *RunState) []telemetry.MetricSample {
	var samples []telemetry.MetricSample

	a := randomMatrix(matrixSize)
	for time.Now().Before(deadline) && state.Running() {
		multiplyTransposed(a)

		if v, err := g.loads.CPUPercent(); err == nil {
			if state.Running() {
				samples = append(samples, telemetry.NewSample(telemetry.CPULoad, v))
			}
		} else {
			logger.Debug().Err(err).Msg("cpu phase sample failed")
		}

		g.sleep(deadline)
	}

	return samples
}

// RunMemoryPhase samples memory utilization each iteration. It deliberately
// allocates nothing of significance: allocation-based memory pressure would
// make the tool unsafe to run repeatedly.
func (g *Generator) RunMemoryPhase(deadline time.Time, state *RunState) []telemetry.MetricSample {
	var samples []telemetry.MetricSample

	for time.Now().Before(deadline) && state.Running() {
		if v, err := g.loads.MemoryPercent(); err == nil {
			if state.Running() {
				samples = append(samples, telemetry.NewSample(telemetry.MemLoad, v))
			}
		} else {
			logger.Debug().Err(err).Msg("memory phase sample failed")
		}

		g.sleep(deadline)
	}

	return samples
}

// RunGPUPhase samples per-GPU load and memory at the phase cadence. When the
// roster is empty it returns immediately with gpuAvailable=false and no
// samples.
func (g *Generator) RunGPUPhase(ctx context.Context, deadline time.Time, state *RunState, gpus []telemetry.GpuDescriptor) (samples []telemetry.MetricSample, gpuAvailable bool) {
	if len(gpus) == 0 {
		return nil, false
	}

	for time.Now().Before(deadline) && state.Running() {
		results := g.resolver.ResolveAll(ctx, telemetry.GPULoad, telemetry.GPUMemory)
		for _, metric := range []telemetry.Metric{telemetry.GPULoad, telemetry.GPUMemory} {
			result := results[metric]
			if !result.OK() {
				continue
			}
			if state.Running() {
				samples = append(samples, result.Sample(metric))
			}
		}

		g.sleep(deadline)
	}

	return samples, true
}

// sleep pauses one iteration interval, clipped to the remaining phase time.
func (g *Generator) sleep(deadline time.Time) {
	pause := g.interval
	if remaining := time.Until(deadline); remaining < pause {
		pause = remaining
	}
	if pause > 0 {
		time.Sleep(pause)
	}
}

func randomMatrix(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		for j := range m[i] {
			m[i][j] = rand.Float64()
		}
	}

	return m
}

// multiplyTransposed computes A·Aᵀ, discarding the result. The work exists
// only to exercise the CPU for a bounded, predictable slice of time.
func multiplyTransposed(a [][]float64) {
	n := len(a)
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			var sum float64
			for k := 0; k < n; k++ {
				sum += a[i][k] * a[j][k]
			}
			out[i][j] = sum
		}
	}
}
