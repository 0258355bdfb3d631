package sampler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const memInfoFixture = `MemTotal:       16384000 kB
MemFree:         2048000 kB
MemAvailable:    8192000 kB
Buffers:          512000 kB
`

func writeProcFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestParseCPUStat(t *testing.T) {
	busy, sum, err := parseCPUStat("cpu  100 20 30 400 50 5 5 0 0 0\ncpu0 50 10 15 200 25 2 2 0 0 0\n")
	require.NoError(t, err)

	// idle (400) and iowait (50) are excluded from busy time
	assert.Equal(t, uint64(160), busy)
	assert.Equal(t, uint64(610), sum)
}

func TestParseCPUStatMissingAggregate(t *testing.T) {
	_, _, err := parseCPUStat("intr 12345\nctxt 67890\n")
	assert.Error(t, err)
}

func TestParseMemInfo(t *testing.T) {
	total, available, err := parseMemInfo(memInfoFixture)
	require.NoError(t, err)

	assert.Equal(t, uint64(16384000), total)
	assert.Equal(t, uint64(8192000), available)
}

func TestParseMemInfoMissingTotal(t *testing.T) {
	_, _, err := parseMemInfo("MemFree: 1024 kB\n")
	assert.Error(t, err)
}

func TestCPUPercentDeltaBetweenReads(t *testing.T) {
	root := t.TempDir()
	writeProcFile(t, root, "stat", "cpu  100 0 100 800 0 0 0 0 0 0\n")

	p := NewProcFS(root)

	// First read covers busy time since boot: 200 of 1000 jiffies.
	v, err := p.CPUPercent()
	require.NoError(t, err)
	assert.InDelta(t, 20.0, v, 0.001)

	// 100 more jiffies, 50 of them busy.
	writeProcFile(t, root, "stat", "cpu  130 0 120 850 0 0 0 0 0 0\n")

	v, err = p.CPUPercent()
	require.NoError(t, err)
	assert.InDelta(t, 50.0, v, 0.001)
}

func TestCPUPercentNoElapsedJiffies(t *testing.T) {
	root := t.TempDir()
	writeProcFile(t, root, "stat", "cpu  100 0 100 800 0 0 0 0 0 0\n")

	p := NewProcFS(root)

	_, err := p.CPUPercent()
	require.NoError(t, err)

	// Identical counters on the next read must not divide by zero.
	v, err := p.CPUPercent()
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestMemoryPercent(t *testing.T) {
	root := t.TempDir()
	writeProcFile(t, root, "meminfo", memInfoFixture)

	p := NewProcFS(root)

	v, err := p.MemoryPercent()
	require.NoError(t, err)
	assert.InDelta(t, 50.0, v, 0.001)
}

func TestLoadSourceErrorsOnMissingFiles(t *testing.T) {
	p := NewProcFS(t.TempDir())

	_, err := p.CPUPercent()
	assert.Error(t, err)

	_, err = p.MemoryPercent()
	assert.Error(t, err)
}
