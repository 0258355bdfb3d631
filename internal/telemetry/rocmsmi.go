package telemetry

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

const rocmSMITool = "rocm-smi"

var rocmSMIArgs = []string{"--showtemp", "--showuse", "--showmeminfo", "vram"}

type rocmReading struct {
	temperature  float64
	utilization  float64
	memoryUsedMB float64
	memoryTotMB  float64
}

// RocmSMIProbe reads AMD GPU metrics from rocm-smi's key/value output.
type RocmSMIProbe struct {
	metric Metric
	run    commandRunner
}

func NewRocmSMIProbe(metric Metric) *RocmSMIProbe {
	return &RocmSMIProbe{metric: metric, run: runCommand}
}

func (p *RocmSMIProbe) Name() string {
	return fmt.Sprintf("rocm-smi/%s", p.metric)
}

func (p *RocmSMIProbe) Invoke(ctx context.Context) ProbeResult {
	output, failure, ok := commandResult(rawRun(ctx, p.run, rocmSMITool, rocmSMIArgs...))
	if !ok {
		return failure
	}

	readings := parseRocmSMI(string(output))
	if len(readings) == 0 {
		return Unavailable("rocm-smi reported no GPUs")
	}

	values := make([]float64, 0, len(readings))
	for _, reading := range readings {
		switch p.metric {
		case GPUTemp:
			values = append(values, reading.temperature)
		case GPULoad:
			values = append(values, reading.utilization)
		case GPUMemory:
			values = append(values, reading.memoryUsedMB)
		default:
			return Unavailable("metric not served by rocm-smi")
		}
	}

	return SuccessVector(values)
}

// parseRocmSMI extracts per-card readings. rocm-smi prints one line per card
// and key, e.g. "GPU[0] : Temperature (Sensor edge) (C): 52.0". Cards are
// grouped by the bracketed index.
func parseRocmSMI(output string) []rocmReading {
	byIndex := map[int]*rocmReading{}
	maxIndex := -1

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "GPU[") {
			continue
		}

		end := strings.IndexByte(line, ']')
		if end < 0 {
			continue
		}
		index, err := strconv.Atoi(line[4:end])
		if err != nil {
			continue
		}

		sep := strings.LastIndexByte(line, ':')
		if sep < 0 {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(line[sep+1:]), 64)
		if err != nil {
			continue
		}

		reading := byIndex[index]
		if reading == nil {
			reading = &rocmReading{}
			byIndex[index] = reading
		}
		if index > maxIndex {
			maxIndex = index
		}

		key := strings.ToLower(line[end+1 : sep])
		switch {
		case strings.Contains(key, "temperature"):
			// Multiple sensors per card; keep the hottest.
			if value > reading.temperature {
				reading.temperature = value
			}
		case strings.Contains(key, "gpu use"):
			reading.utilization = value
		case strings.Contains(key, "vram total used"):
			reading.memoryUsedMB = value / (1024 * 1024)
		case strings.Contains(key, "vram total memory"):
			reading.memoryTotMB = value / (1024 * 1024)
		}
	}

	readings := make([]rocmReading, 0, maxIndex+1)
	for i := 0; i <= maxIndex; i++ {
		if reading := byIndex[i]; reading != nil {
			readings = append(readings, *reading)
		}
	}

	return readings
}
