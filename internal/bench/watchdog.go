package bench

import (
	"fmt"
	"sync"
	"time"

	"codeberg.org/varmo/hwstress/internal/logger"
	"codeberg.org/varmo/hwstress/internal/sampler"
)

// Watchdog cadence is fixed and independent of the benchmark's own sample
// interval; abort latency is bounded by one tick plus one phase iteration.
const watchdogInterval = 500 * time.Millisecond

// Watchdog polls whole-system load on a fixed cadence and trips the shared
// RunState the moment either ceiling is exceeded. The trip is one-shot and
// irreversible for the run; the watchdog itself never reports to the user —
// rendering the protective-stop warning is the caller's job.
type Watchdog struct {
	loads    sampler.LoadSource
	interval time.Duration

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewWatchdog(loads sampler.LoadSource) *Watchdog {
	return &Watchdog{
		loads:    loads,
		interval: watchdogInterval,
	}
}

// Start spawns the sampling loop. The caller must Stop (join) the watchdog
// before reading the final RunState; that join is the single synchronization
// point between a natural phase completion and a pending trip.
func (w *Watchdog) Start(state *RunState, cpuCeiling, memCeiling float64) {
	w.quit = make(chan struct{})
	w.done = make(chan struct{})

	go w.loop(state, cpuCeiling, memCeiling)
}

// Stop terminates the sampling loop and joins it. Safe to call more than
// once; subsequent calls are no-ops.
func (w *Watchdog) Stop() {
	w.stopOnce.Do(func() {
		close(w.quit)
		<-w.done
	})
}

func (w *Watchdog) loop(state *RunState, cpuCeiling, memCeiling float64) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.quit:
			return
		case <-ticker.C:
			if w.check(state, cpuCeiling, memCeiling) {
				return
			}
		}
	}
}

// check samples both loads and trips the run state on a breach. Returns true
// once tripped so the loop exits; a failed sampler read skips the tick.
func (w *Watchdog) check(state *RunState, cpuCeiling, memCeiling float64) bool {
	cpu, err := w.loads.CPUPercent()
	if err != nil {
		logger.Debug().Err(err).Msg("watchdog cpu sample failed")
	} else if cpu > cpuCeiling {
		state.RequestStop(fmt.Sprintf(
			"CPU usage %.1f%% exceeded safety ceiling %.1f%%", cpu, cpuCeiling))
		return true
	}

	mem, err := w.loads.MemoryPercent()
	if err != nil {
		logger.Debug().Err(err).Msg("watchdog memory sample failed")
	} else if mem > memCeiling {
		state.RequestStop(fmt.Sprintf(
			"memory usage %.1f%% exceeded safety ceiling %.1f%%", mem, memCeiling))
		return true
	}

	return false
}
