package bench

import (
	"context"
	"sync/atomic"
	"time"

	"codeberg.org/varmo/hwstress/internal/errors"
	"codeberg.org/varmo/hwstress/internal/logger"
	"codeberg.org/varmo/hwstress/internal/sampler"
	"codeberg.org/varmo/hwstress/internal/sysinfo"
	"codeberg.org/varmo/hwstress/internal/telemetry"
)

// Supervisor orchestrates one benchmark run: it snapshots host facts, starts
// the safety watchdog, drives the load phases sequentially, and aggregates
// every sample into an ordered report. Phases never run concurrently with
// each other, only with the watchdog.
type Supervisor struct {
	loads    sampler.LoadSource
	resolver *telemetry.Resolver
	host     *sysinfo.Provider

	inFlight atomic.Bool
}

func NewSupervisor(loads sampler.LoadSource, resolver *telemetry.Resolver, host *sysinfo.Provider) *Supervisor {
	return &Supervisor{
		loads:    loads,
		resolver: resolver,
		host:     host,
	}
}

// Execute runs one benchmark under the given configuration and returns its
// report. Configuration is validated before any resource is touched — no
// watchdog goroutine exists for a rejected config. Only one run may be in
// flight per supervisor; concurrent calls are rejected.
//
// A watchdog trip ends the run early with AbortedEarly set; it is a
// protective stop, not an error.
func (s *Supervisor) Execute(ctx context.Context, cfg RunConfig) (*RunReport, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, errFactory.New(errors.ErrRunInProgress)
	}
	defer s.inFlight.Store(false)

	info := s.host.Collect()
	info.GPUs = s.resolver.DetectGPUs(ctx)

	report := newRunReport(cfg, info)
	gen := NewGenerator(s.loads, s.resolver, cfg.SampleInterval)

	state := NewRunState()
	watchdog := NewWatchdog(s.loads)
	watchdog.Start(state, cfg.CPUCeilingPercent, cfg.MemoryCeilingPercent)
	// Joined on every exit path past this point.
	defer watchdog.Stop()

	slice := cfg.Duration / time.Duration(cfg.enabledPhases())

	logger.Info().
		Str("preset", cfg.Label).
		Dur("duration", cfg.Duration).
		Dur("phase_slice", slice).
		Int("gpus", len(info.GPUs)).
		Msg("benchmark run started")

	for _, phase := range s.phases(cfg) {
		if !state.Running() {
			break
		}

		deadline := time.Now().Add(slice)
		samples := phase.run(ctx, gen, deadline, state, report)

		if err := report.append(samples); err != nil {
			return nil, err
		}

		logger.Debug().
			Str("phase", phase.name).
			Int("samples", len(samples)).
			Msg("phase complete")
	}

	// The join is the single synchronization point: after Stop returns, a
	// trip that raced the last phase's natural completion is fully visible.
	watchdog.Stop()

	abortReason := ""
	if state.StopRequested() {
		abortReason = state.Reason()
		logger.Warn().Str("reason", abortReason).Msg("benchmark aborted by safety watchdog")
	}

	state.Finalize()
	report.finalize(abortReason)

	return report, nil
}

type phaseRunner struct {
	name string
	run  func(ctx context.Context, gen *Generator, deadline time.Time, state *RunState, report *RunReport) []telemetry.MetricSample
}

func (s *Supervisor) phases(cfg RunConfig) []phaseRunner {
	var phases []phaseRunner

	if cfg.IncludeCPU {
		phases = append(phases, phaseRunner{
			name: "cpu",
			run: func(_ context.Context, gen *Generator, deadline time.Time, state *RunState, _ *RunReport) []telemetry.MetricSample {
				return gen.RunCPUPhase(deadline, state)
			},
		})
	}

	if cfg.IncludeMemory {
		phases = append(phases, phaseRunner{
			name: "memory",
			run: func(_ context.Context, gen *Generator, deadline time.Time, state *RunState, _ *RunReport) []telemetry.MetricSample {
				return gen.RunMemoryPhase(deadline, state)
			},
		})
	}

	if cfg.IncludeGPU {
		phases = append(phases, phaseRunner{
			name: "gpu",
			run: func(ctx context.Context, gen *Generator, deadline time.Time, state *RunState, report *RunReport) []telemetry.MetricSample {
				samples, available := gen.RunGPUPhase(ctx, deadline, state, report.SystemInfo.GPUs)
				report.GPUAvailable = available
				return samples
			},
		})
	}

	return phases
}
