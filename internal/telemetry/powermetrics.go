package telemetry

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

const powermetricsTool = "powermetrics"

var powermetricsArgs = []string{"-n", "1", "--samplers", "smc"}

// PowermetricsProbe reads die temperatures from the macOS powermetrics tool.
// The tool needs elevated privileges; a permission error surfaces as a
// transient failure and the resolver advances to the next rank.
type PowermetricsProbe struct {
	metric Metric
	run    commandRunner
}

func NewPowermetricsProbe(metric Metric) *PowermetricsProbe {
	return &PowermetricsProbe{metric: metric, run: runCommand}
}

func (p *PowermetricsProbe) Name() string {
	return fmt.Sprintf("powermetrics/%s", p.metric)
}

func (p *PowermetricsProbe) Invoke(ctx context.Context) ProbeResult {
	output, failure, ok := commandResult(rawRun(ctx, p.run, powermetricsTool, powermetricsArgs...))
	if !ok {
		return failure
	}

	cpu, gpu := parsePowermetrics(string(output))

	switch p.metric {
	case CPUTemp:
		if len(cpu) == 0 {
			return Unavailable("no CPU die temperature in powermetrics output")
		}
		return SuccessVector(cpu)
	case GPUTemp:
		if len(gpu) == 0 {
			return Unavailable("no GPU die temperature in powermetrics output")
		}
		return SuccessVector(gpu)
	default:
		return Unavailable("metric not served by powermetrics")
	}
}

// parsePowermetrics extracts "CPU die temperature: 55.40 C" style lines.
func parsePowermetrics(output string) (cpu, gpu []float64) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)

		var target *[]float64
		switch {
		case strings.HasPrefix(line, "CPU die temperature"):
			target = &cpu
		case strings.HasPrefix(line, "GPU die temperature"):
			target = &gpu
		default:
			continue
		}

		sep := strings.IndexByte(line, ':')
		if sep < 0 {
			continue
		}

		fields := strings.Fields(line[sep+1:])
		if len(fields) == 0 {
			continue
		}

		if v, err := strconv.ParseFloat(fields[0], 64); err == nil {
			*target = append(*target, v)
		}
	}

	return cpu, gpu
}
