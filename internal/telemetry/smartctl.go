package telemetry

import (
	"context"
	"strconv"
	"strings"
)

const smartctlTool = "smartctl"

// SmartctlProbe reads drive temperature from SMART attributes of the primary
// disk. Attribute 194 (Temperature_Celsius) carries the current reading in
// the raw-value column.
type SmartctlProbe struct {
	device string
	run    commandRunner
}

func NewSmartctlProbe(device string) *SmartctlProbe {
	if device == "" {
		device = "/dev/sda"
	}

	return &SmartctlProbe{device: device, run: runCommand}
}

func (p *SmartctlProbe) Name() string {
	return "smartctl/storage_temp"
}

func (p *SmartctlProbe) Invoke(ctx context.Context) ProbeResult {
	output, failure, ok := commandResult(rawRun(ctx, p.run, smartctlTool, "-A", p.device))
	if !ok {
		return failure
	}

	if v, ok := parseSmartTemp(string(output)); ok {
		return Success(v)
	}

	return Unavailable("no temperature attribute in smartctl output")
}

func parseSmartTemp(output string) (float64, bool) {
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "Temperature") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 10 {
			continue
		}

		// Raw value is field 9; NVMe logs print "Temperature: 36 Celsius"
		// which the len guard above filters out.
		if v, err := strconv.ParseFloat(fields[9], 64); err == nil {
			return v, true
		}
	}

	return 0, false
}
