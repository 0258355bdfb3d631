package bench

import (
	"time"

	"codeberg.org/varmo/hwstress/internal/errors"
	"codeberg.org/varmo/hwstress/internal/sysinfo"
	"codeberg.org/varmo/hwstress/internal/telemetry"
)

// RunReport is the complete record of one benchmark run. Samples are in
// insertion order, which is temporal order; the report is immutable once
// finalized. Aggregation (mean/peak) is left to the reporting consumer.
type RunReport struct {
	Config       RunConfig
	SystemInfo   sysinfo.Info
	Samples      []telemetry.MetricSample
	GPUAvailable bool
	AbortedEarly bool
	AbortReason  string
	StartedAt    time.Time
	FinishedAt   time.Time

	finalized bool
}

func newRunReport(cfg RunConfig, info sysinfo.Info) *RunReport {
	return &RunReport{
		Config:     cfg,
		SystemInfo: info,
		StartedAt:  time.Now(),
	}
}

// append adds a phase's samples. Rejected after finalization so a stray
// late append can never silently extend a completed run.
func (r *RunReport) append(samples []telemetry.MetricSample) error {
	if r.finalized {
		return errors.New().New(errors.ErrRunFinalized)
	}

	r.Samples = append(r.Samples, samples...)

	return nil
}

func (r *RunReport) finalize(abortReason string) {
	r.AbortedEarly = abortReason != ""
	r.AbortReason = abortReason
	r.FinishedAt = time.Now()
	r.finalized = true
}
