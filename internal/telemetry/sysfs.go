package telemetry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	defaultSysfsRoot = "/sys"
	thermalClassPath = "class/thermal"
	hwmonClassPath   = "class/hwmon"
	milliDegree      = 1000.0
)

// ThermalZoneProbe reads Linux thermal zones under
// <root>/class/thermal/thermal_zone*. Zone types are matched by keyword and
// the hottest matching zone wins.
type ThermalZoneProbe struct {
	root   string
	metric Metric
}

// NewThermalZoneProbe builds a probe rooted at the given sysfs mount point.
// An empty root defaults to /sys.
func NewThermalZoneProbe(root string, metric Metric) *ThermalZoneProbe {
	if root == "" {
		root = defaultSysfsRoot
	}

	return &ThermalZoneProbe{root: root, metric: metric}
}

func (p *ThermalZoneProbe) Name() string {
	return fmt.Sprintf("thermal-zone/%s", p.metric)
}

func (p *ThermalZoneProbe) Invoke(_ context.Context) ProbeResult {
	zones, err := filepath.Glob(filepath.Join(p.root, thermalClassPath, "thermal_zone*"))
	if err != nil || len(zones) == 0 {
		return Unavailable("no thermal zones")
	}

	var values []float64
	for _, zone := range zones {
		zoneType, err := readTrimmed(filepath.Join(zone, "type"))
		if err != nil {
			continue
		}
		if !zoneMatches(zoneType, p.metric) {
			continue
		}

		raw, err := readTrimmed(filepath.Join(zone, "temp"))
		if err != nil {
			continue
		}
		milli, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}

		values = append(values, milli/milliDegree)
	}

	if len(values) == 0 {
		return Unavailable("no matching thermal zone")
	}

	return SuccessVector(values)
}

func zoneMatches(zoneType string, metric Metric) bool {
	zoneType = strings.ToLower(zoneType)

	switch metric {
	case CPUTemp:
		return strings.Contains(zoneType, "cpu") ||
			strings.Contains(zoneType, "pkg") ||
			strings.Contains(zoneType, "x86")
	case GPUTemp:
		return strings.Contains(zoneType, "gpu")
	default:
		return false
	}
}

// HwmonProbe reads labeled temperature sensors under
// <root>/class/hwmon/hwmon*. Sensors are classified by their label or chip
// name; readings for the requested metric are returned as a vector.
type HwmonProbe struct {
	root   string
	metric Metric
}

func NewHwmonProbe(root string, metric Metric) *HwmonProbe {
	if root == "" {
		root = defaultSysfsRoot
	}

	return &HwmonProbe{root: root, metric: metric}
}

func (p *HwmonProbe) Name() string {
	return fmt.Sprintf("hwmon/%s", p.metric)
}

func (p *HwmonProbe) Invoke(_ context.Context) ProbeResult {
	chips, err := filepath.Glob(filepath.Join(p.root, hwmonClassPath, "hwmon*"))
	if err != nil || len(chips) == 0 {
		return Unavailable("no hwmon chips")
	}

	var values []float64
	for _, chip := range chips {
		chipName, _ := readTrimmed(filepath.Join(chip, "name"))

		inputs, _ := filepath.Glob(filepath.Join(chip, "temp*_input"))
		for _, input := range inputs {
			label, _ := readTrimmed(strings.TrimSuffix(input, "_input") + "_label")
			if !sensorMatches(chipName, label, p.metric) {
				continue
			}

			raw, err := readTrimmed(input)
			if err != nil {
				continue
			}
			milli, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}

			values = append(values, milli/milliDegree)
		}
	}

	if len(values) == 0 {
		return Unavailable("no matching hwmon sensor")
	}

	return SuccessVector(values)
}

// sensorMatches classifies a sensor by its label and chip name, using the
// keyword families lm-sensors exposes for each hardware class.
func sensorMatches(chipName, label string, metric Metric) bool {
	chipName = strings.ToLower(chipName)
	label = strings.ToLower(label)

	switch metric {
	case CPUTemp:
		return containsAny(label, "package", "core", "tdie", "tctl") ||
			containsAny(chipName, "coretemp", "k10temp", "zenpower")
	case GPUTemp:
		return containsAny(label, "edge", "junction") ||
			containsAny(chipName, "amdgpu", "nouveau")
	case BoardTemp:
		return containsAny(label, "board", "systin", "motherboard") ||
			containsAny(chipName, "acpitz", "nct", "it86")
	case StorageTemp:
		return containsAny(label, "composite", "sensor 1") ||
			containsAny(chipName, "drivetemp", "nvme")
	default:
		return false
	}
}

func containsAny(s string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}

	return false
}

func readTrimmed(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(data)), nil
}
