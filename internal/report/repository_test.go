package report

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/varmo/hwstress/internal/bench"
	"codeberg.org/varmo/hwstress/internal/errors"
	"codeberg.org/varmo/hwstress/internal/sysinfo"
	"codeberg.org/varmo/hwstress/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRepository(t *testing.T) (Repository, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "runs.db")
	repo, err := NewRepository(Config{DBPath: path})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	return repo, path
}

func sampleReport() *bench.RunReport {
	cfg := bench.ShortPreset()
	now := time.Now()

	return &bench.RunReport{
		Config: cfg,
		SystemInfo: sysinfo.Info{
			OS:            "linux/amd64",
			Processor:     "Test CPU",
			PhysicalCores: 8,
			LogicalCores:  16,
			GPUs:          []telemetry.GpuDescriptor{{Index: 0, Vendor: telemetry.VendorNVIDIA}},
		},
		Samples: []telemetry.MetricSample{
			telemetry.NewSample(telemetry.CPULoad, 42.5),
			telemetry.NewEstimatedSample(telemetry.CPUTemp, 55),
		},
		AbortedEarly: true,
		AbortReason:  "CPU usage 91.0% exceeded safety ceiling 80.0%",
		StartedAt:    now.Add(-30 * time.Second),
		FinishedAt:   now,
	}
}

func TestRepositoryStoreAndReadBack(t *testing.T) {
	repo, path := testRepository(t)

	require.NoError(t, repo.Store(context.Background(), sampleReport()))

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var label, abortReason string
	var abortedEarly, gpuCount int
	row := db.QueryRow("SELECT label, aborted_early, abort_reason, gpu_count FROM runs")
	require.NoError(t, row.Scan(&label, &abortedEarly, &abortReason, &gpuCount))

	assert.Equal(t, "short", label)
	assert.Equal(t, 1, abortedEarly)
	assert.Contains(t, abortReason, "CPU")
	assert.Equal(t, 1, gpuCount)

	var sampleCount int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM run_samples").Scan(&sampleCount))
	assert.Equal(t, 2, sampleCount)

	var estimated int
	row = db.QueryRow("SELECT estimated FROM run_samples WHERE metric = ?", "cpu_temp")
	require.NoError(t, row.Scan(&estimated))
	assert.Equal(t, 1, estimated)
}

func TestRepositoryStoreMultipleRuns(t *testing.T) {
	repo, path := testRepository(t)

	require.NoError(t, repo.Store(context.Background(), sampleReport()))
	require.NoError(t, repo.Store(context.Background(), sampleReport()))

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var runs int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&runs))
	assert.Equal(t, 2, runs)
}

func TestNewRepositoryRejectsEmptyPath(t *testing.T) {
	_, err := NewRepository(Config{})

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidConfig))
}

func TestRepositoryCloseIsClean(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	repo, err := NewRepository(Config{DBPath: path})
	require.NoError(t, err)

	assert.NoError(t, repo.Close())
}
