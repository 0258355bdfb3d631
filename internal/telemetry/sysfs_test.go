package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSysfsFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content+"\n"), 0o644))
}

func thermalFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	zone0 := filepath.Join(root, "class/thermal/thermal_zone0")
	writeSysfsFile(t, filepath.Join(zone0, "type"), "x86_pkg_temp")
	writeSysfsFile(t, filepath.Join(zone0, "temp"), "48000")

	zone1 := filepath.Join(root, "class/thermal/thermal_zone1")
	writeSysfsFile(t, filepath.Join(zone1, "type"), "acpitz")
	writeSysfsFile(t, filepath.Join(zone1, "temp"), "41000")

	zone2 := filepath.Join(root, "class/thermal/thermal_zone2")
	writeSysfsFile(t, filepath.Join(zone2, "type"), "gpu-thermal")
	writeSysfsFile(t, filepath.Join(zone2, "temp"), "39500")

	return root
}

func TestThermalZoneProbeCPU(t *testing.T) {
	probe := NewThermalZoneProbe(thermalFixture(t), CPUTemp)

	result := probe.Invoke(context.Background())

	require.True(t, result.OK())
	assert.InDelta(t, 48.0, result.Value(), 0.001)
	assert.False(t, result.IsSynthetic())
}

func TestThermalZoneProbeGPU(t *testing.T) {
	probe := NewThermalZoneProbe(thermalFixture(t), GPUTemp)

	result := probe.Invoke(context.Background())

	require.True(t, result.OK())
	assert.InDelta(t, 39.5, result.Value(), 0.001)
}

func TestThermalZoneProbeNoZones(t *testing.T) {
	probe := NewThermalZoneProbe(t.TempDir(), CPUTemp)

	assert.True(t, probe.Invoke(context.Background()).IsUnavailable())
}

func TestThermalZoneProbeNoMatchingZone(t *testing.T) {
	root := t.TempDir()
	zone := filepath.Join(root, "class/thermal/thermal_zone0")
	writeSysfsFile(t, filepath.Join(zone, "type"), "acpitz")
	writeSysfsFile(t, filepath.Join(zone, "temp"), "41000")

	probe := NewThermalZoneProbe(root, GPUTemp)

	assert.True(t, probe.Invoke(context.Background()).IsUnavailable())
}

func hwmonFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	cpu := filepath.Join(root, "class/hwmon/hwmon0")
	writeSysfsFile(t, filepath.Join(cpu, "name"), "coretemp")
	writeSysfsFile(t, filepath.Join(cpu, "temp1_input"), "52000")
	writeSysfsFile(t, filepath.Join(cpu, "temp1_label"), "Package id 0")
	writeSysfsFile(t, filepath.Join(cpu, "temp2_input"), "49000")
	writeSysfsFile(t, filepath.Join(cpu, "temp2_label"), "Core 0")

	gpu := filepath.Join(root, "class/hwmon/hwmon1")
	writeSysfsFile(t, filepath.Join(gpu, "name"), "amdgpu")
	writeSysfsFile(t, filepath.Join(gpu, "temp1_input"), "61000")
	writeSysfsFile(t, filepath.Join(gpu, "temp1_label"), "edge")

	disk := filepath.Join(root, "class/hwmon/hwmon2")
	writeSysfsFile(t, filepath.Join(disk, "name"), "nvme")
	writeSysfsFile(t, filepath.Join(disk, "temp1_input"), "36000")
	writeSysfsFile(t, filepath.Join(disk, "temp1_label"), "Composite")

	return root
}

func TestHwmonProbePerMetric(t *testing.T) {
	root := hwmonFixture(t)

	tests := []struct {
		metric Metric
		want   float64
	}{
		{CPUTemp, 52.0},
		{GPUTemp, 61.0},
		{StorageTemp, 36.0},
	}

	for _, tt := range tests {
		probe := NewHwmonProbe(root, tt.metric)
		result := probe.Invoke(context.Background())

		require.True(t, result.OK(), tt.metric.String())
		assert.InDelta(t, tt.want, result.Value(), 0.001, tt.metric.String())
	}
}

func TestHwmonProbeCPUVectorHasBothSensors(t *testing.T) {
	probe := NewHwmonProbe(hwmonFixture(t), CPUTemp)

	result := probe.Invoke(context.Background())

	require.True(t, result.OK())
	assert.Len(t, result.Values(), 2, "package and core sensors both match")
}

func TestHwmonProbeNoMatch(t *testing.T) {
	probe := NewHwmonProbe(hwmonFixture(t), BoardTemp)

	assert.True(t, probe.Invoke(context.Background()).IsUnavailable())
}

func TestHwmonProbeNoChips(t *testing.T) {
	probe := NewHwmonProbe(t.TempDir(), CPUTemp)

	assert.True(t, probe.Invoke(context.Background()).IsUnavailable())
}
