package bench

import (
	"time"

	"codeberg.org/varmo/hwstress/internal/errors"
)

const (
	// DefaultCPUCeilingPercent is the watchdog's CPU safety threshold.
	DefaultCPUCeilingPercent = 80.0

	// DefaultMemoryCeilingPercent is the watchdog's memory safety threshold.
	DefaultMemoryCeilingPercent = 80.0

	// DefaultSampleInterval is the phase iteration granularity; it is also
	// the cooperative cancellation latency of a phase.
	DefaultSampleInterval = 100 * time.Millisecond

	// Preset durations are policy constants, not contracts; the two presets
	// share all supervisor logic and differ only in duration and label.
	shortRunDuration    = 30 * time.Second
	extendedRunDuration = 60 * time.Second
)

// RunConfig parameterizes one benchmark run. Validated before any goroutine
// starts.
type RunConfig struct {
	Label                string
	Duration             time.Duration
	SampleInterval       time.Duration
	IncludeCPU           bool
	IncludeMemory        bool
	IncludeGPU           bool
	CPUCeilingPercent    float64
	MemoryCeilingPercent float64
}

// DefaultRunConfig enables every phase with the default safety ceilings.
// Duration must still be set by the caller or a preset.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		SampleInterval:       DefaultSampleInterval,
		IncludeCPU:           true,
		IncludeMemory:        true,
		IncludeGPU:           true,
		CPUCeilingPercent:    DefaultCPUCeilingPercent,
		MemoryCeilingPercent: DefaultMemoryCeilingPercent,
	}
}

// ShortPreset is the quick characterization run.
func ShortPreset() RunConfig {
	cfg := DefaultRunConfig()
	cfg.Label = "short"
	cfg.Duration = shortRunDuration

	return cfg
}

// ExtendedPreset is the longer stress run.
func ExtendedPreset() RunConfig {
	cfg := DefaultRunConfig()
	cfg.Label = "extended"
	cfg.Duration = extendedRunDuration

	return cfg
}

// Validate rejects configurations that must not reach the supervisor loop.
func (c RunConfig) Validate() error {
	errFactory := errors.New()

	if c.Duration <= 0 {
		return errFactory.WithData(errors.ErrInvalidDuration, c.Duration.String())
	}
	if c.SampleInterval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.SampleInterval.String())
	}
	if c.CPUCeilingPercent <= 0 || c.CPUCeilingPercent > 100 {
		return errFactory.WithData(errors.ErrInvalidCeiling, c.CPUCeilingPercent)
	}
	if c.MemoryCeilingPercent <= 0 || c.MemoryCeilingPercent > 100 {
		return errFactory.WithData(errors.ErrInvalidCeiling, c.MemoryCeilingPercent)
	}
	if !c.IncludeCPU && !c.IncludeMemory && !c.IncludeGPU {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "no phases enabled")
	}

	return nil
}

func (c RunConfig) enabledPhases() int {
	n := 0
	for _, enabled := range []bool{c.IncludeCPU, c.IncludeMemory, c.IncludeGPU} {
		if enabled {
			n++
		}
	}

	return n
}
