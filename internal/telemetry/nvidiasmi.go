package telemetry

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

const nvidiaSMITool = "nvidia-smi"

var nvidiaSMIQuery = []string{
	"--query-gpu=name,memory.total,memory.used,temperature.gpu,utilization.gpu,driver_version",
	"--format=csv,noheader,nounits",
}

type smiReading struct {
	name          string
	memoryTotalMB float64
	memoryUsedMB  float64
	temperature   float64
	utilization   float64
	driverVersion string
}

// NvidiaSMIProbe reads one metric for all NVIDIA GPUs via the nvidia-smi
// query interface. One CLI call yields the full per-GPU vector.
type NvidiaSMIProbe struct {
	metric Metric
	run    commandRunner
}

func NewNvidiaSMIProbe(metric Metric) *NvidiaSMIProbe {
	return &NvidiaSMIProbe{metric: metric, run: runCommand}
}

func (p *NvidiaSMIProbe) Name() string {
	return fmt.Sprintf("nvidia-smi/%s", p.metric)
}

func (p *NvidiaSMIProbe) Invoke(ctx context.Context) ProbeResult {
	output, failure, ok := commandResult(rawRun(ctx, p.run, nvidiaSMITool, nvidiaSMIQuery...))
	if !ok {
		return failure
	}

	readings, err := parseNvidiaSMI(string(output))
	if err != nil {
		return Failure(err)
	}
	if len(readings) == 0 {
		return Unavailable("nvidia-smi reported no GPUs")
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
			return Unavailable("metric not served by nvidia-smi")
		}
	}

	return SuccessVector(values)
}

// NvidiaSMIRoster enumerates NVIDIA GPUs via the same query.
type NvidiaSMIRoster struct {
	run commandRunner
}

func NewNvidiaSMIRoster() *NvidiaSMIRoster {
	return &NvidiaSMIRoster{run: runCommand}
}

func (r *NvidiaSMIRoster) Name() string {
	return "nvidia-smi/roster"
}

func (r *NvidiaSMIRoster) Roster(ctx context.Context) ([]GpuDescriptor, error) {
	output, err := r.run(ctx, nvidiaSMITool, nvidiaSMIQuery...)
	if err != nil {
		return nil, err
	}

	readings, err := parseNvidiaSMI(string(output))
	if err != nil {
		return nil, err
	}

	gpus := make([]GpuDescriptor, 0, len(readings))
	for i, reading := range readings {
		gpus = append(gpus, GpuDescriptor{
			Index:         i,
			Vendor:        VendorNVIDIA,
			Name:          reading.name,
			MemoryTotalMB: reading.memoryTotalMB,
			DriverVersion: reading.driverVersion,
		})
	}

	return gpus, nil
}

// parseNvidiaSMI parses csv,noheader,nounits query output: one GPU per line,
// fields in query order. "[N/A]" fields parse as zero.
func parseNvidiaSMI(output string) ([]smiReading, error) {
	var readings []smiReading

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 6 {
			return nil, fmt.Errorf("malformed nvidia-smi line: %q", line)
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		readings = append(readings, smiReading{
			name:          parts[0],
			memoryTotalMB: parseSMIFloat(parts[1]),
			memoryUsedMB:  parseSMIFloat(parts[2]),
			temperature:   parseSMIFloat(parts[3]),
			utilization:   parseSMIFloat(parts[4]),
			driverVersion: parts[5],
		})
	}

	return readings, nil
}

func parseSMIFloat(field string) float64 {
	if field == "N/A" || field == "[N/A]" {
		return 0
	}

	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0
	}

	return v
}

// rawRun adapts a commandRunner call for commandResult.
func rawRun(ctx context.Context, run commandRunner, tool string, args ...string) ([]byte, error, string) {
	output, err := run(ctx, tool, args...)
	return output, err, tool
}
