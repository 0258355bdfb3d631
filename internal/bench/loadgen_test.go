package bench

import (
	"context"
	"testing"
	"time"

	"codeberg.org/varmo/hwstress/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGPUProbe satisfies telemetry.Probe with a fixed per-card vector.
type fakeGPUProbe struct {
	values []float64
}

func (p fakeGPUProbe) Name() string { return "fake-gpu" }

func (p fakeGPUProbe) Invoke(context.Context) telemetry.ProbeResult {
	return telemetry.SuccessVector(p.values)
}

func testGenerator(loads *fakeLoadSource, interval time.Duration) *Generator {
	resolver := telemetry.NewResolver(nil, nil, loads)
	return NewGenerator(loads, resolver, interval)
}

func TestCPUPhasePastDeadlineYieldsNothing(t *testing.T) {
	gen := testGenerator(constLoads(30, 40), 5*time.Millisecond)

	samples := gen.RunCPUPhase(time.Now().Add(-time.Second), NewRunState())

	assert.Empty(t, samples)
}

func TestCPUPhaseSamplesAtInterval(t *testing.T) {
	gen := testGenerator(constLoads(30, 40), 5*time.Millisecond)

	samples := gen.RunCPUPhase(time.Now().Add(100*time.Millisecond), NewRunState())

	require.NotEmpty(t, samples)
	for _, s := range samples {
		assert.Equal(t, telemetry.CPULoad, s.Metric)
		assert.InDelta(t, 30.0, s.Value, 0.001)
		assert.False(t, s.Estimated)
	}
}

func TestCPUPhaseStopsOnTrippedState(t *testing.T) {
	gen := testGenerator(constLoads(30, 40), 5*time.Millisecond)
	state := NewRunState()
	state.RequestStop("tripped before phase start")

	start := time.Now()
	samples := gen.RunCPUPhase(start.Add(5*time.Second), state)

	assert.Empty(t, samples)
	assert.Less(t, time.Since(start), time.Second, "phase must not run to deadline once tripped")
}

func TestCPUPhaseStopsMidRunOnTrip(t *testing.T) {
	gen := testGenerator(constLoads(30, 40), 5*time.Millisecond)
	state := NewRunState()

	go func() {
		time.Sleep(50 * time.Millisecond)
		state.RequestStop("mid-run trip")
	}()

	start := time.Now()
	samples := gen.RunCPUPhase(start.Add(10*time.Second), state)

	assert.Less(t, time.Since(start), 2*time.Second)
	require.NotEmpty(t, samples, "samples before the trip are kept")
}

func TestMemoryPhaseSamples(t *testing.T) {
	gen := testGenerator(constLoads(30, 42.5), 5*time.Millisecond)

	samples := gen.RunMemoryPhase(time.Now().Add(60*time.Millisecond), NewRunState())

	require.NotEmpty(t, samples)
	for _, s := range samples {
		assert.Equal(t, telemetry.MemLoad, s.Metric)
		assert.InDelta(t, 42.5, s.Value, 0.001)
	}
}

func TestGPUPhaseWithoutGPUs(t *testing.T) {
	gen := testGenerator(constLoads(30, 40), 5*time.Millisecond)

	start := time.Now()
	samples, available := gen.RunGPUPhase(context.Background(), start.Add(5*time.Second), NewRunState(), nil)

	assert.Empty(t, samples)
	assert.False(t, available)
	assert.Less(t, time.Since(start), time.Second, "empty roster returns immediately")
}

func TestGPUPhaseSamplesHottestCard(t *testing.T) {
	loads := constLoads(30, 40)
	resolver := telemetry.NewResolver(map[telemetry.Metric][]telemetry.Probe{
		telemetry.GPULoad:   {fakeGPUProbe{values: []float64{40, 65, 52}}},
		telemetry.GPUMemory: {fakeGPUProbe{values: []float64{1024, 2048, 512}}},
	}, nil, loads)
	gen := NewGenerator(loads, resolver, 5*time.Millisecond)

	gpus := []telemetry.GpuDescriptor{{Index: 0}, {Index: 1}, {Index: 2}}
	samples, available := gen.RunGPUPhase(context.Background(), time.Now().Add(60*time.Millisecond), NewRunState(), gpus)

	assert.True(t, available)
	require.NotEmpty(t, samples)

	var sawLoad, sawMemory bool
	for _, s := range samples {
		switch s.Metric {
		case telemetry.GPULoad:
			sawLoad = true
			assert.InDelta(t, 65.0, s.Value, 0.001, "the hottest card governs the recorded value")
		case telemetry.GPUMemory:
			sawMemory = true
			assert.InDelta(t, 2048.0, s.Value, 0.001)
		default:
			t.Fatalf("unexpected metric %s in gpu phase", s.Metric)
		}
	}
	assert.True(t, sawLoad)
	assert.True(t, sawMemory)
}
