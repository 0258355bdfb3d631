package telemetry

import (
	"runtime"

	"codeberg.org/varmo/hwstress/internal/sampler"
)

// DefaultResolver assembles the ranked probe lists for the running platform.
// Rank order within a metric is cheapest-and-most-specific first; every list
// ends implicitly in the resolver's load-derived synthetic fallback.
func DefaultResolver(loads sampler.LoadSource, opts ...ResolverOption) *Resolver {
	return NewResolver(platformRanks(runtime.GOOS, ""), platformRoster(runtime.GOOS, ""), loads, opts...)
}

func platformRanks(osName, sysfsRoot string) map[Metric][]Probe {
	switch osName {
	case "linux":
		return map[Metric][]Probe{
			CPUTemp: {
				NewThermalZoneProbe(sysfsRoot, CPUTemp),
				NewHwmonProbe(sysfsRoot, CPUTemp),
			},
			GPUTemp: {
				NewNVMLProbe(GPUTemp),
				NewNvidiaSMIProbe(GPUTemp),
				NewRocmSMIProbe(GPUTemp),
				NewHwmonProbe(sysfsRoot, GPUTemp),
				NewThermalZoneProbe(sysfsRoot, GPUTemp),
			},
			GPULoad: {
				NewNVMLProbe(GPULoad),
				NewNvidiaSMIProbe(GPULoad),
				NewRocmSMIProbe(GPULoad),
			},
			GPUMemory: {
				NewNVMLProbe(GPUMemory),
				NewNvidiaSMIProbe(GPUMemory),
				NewRocmSMIProbe(GPUMemory),
			},
			BoardTemp: {
				NewHwmonProbe(sysfsRoot, BoardTemp),
			},
			StorageTemp: {
				NewHwmonProbe(sysfsRoot, StorageTemp),
				NewSmartctlProbe(""),
			},
		}
	case "darwin":
		return map[Metric][]Probe{
			CPUTemp: {
				NewPowermetricsProbe(CPUTemp),
			},
			GPUTemp: {
				NewPowermetricsProbe(GPUTemp),
			},
			StorageTemp: {
				NewSmartctlProbe("/dev/disk0"),
			},
		}
	default:
		// No direct sensors; everything resolves synthetically.
		return map[Metric][]Probe{}
	}
}

func platformRoster(osName, sysfsRoot string) []RosterSource {
	switch osName {
	case "linux":
		return []RosterSource{
			NewNVMLRoster(),
			NewNvidiaSMIRoster(),
			NewDRMRoster(sysfsRoot),
		}
	case "darwin":
		return []RosterSource{
			NewNVMLRoster(),
		}
	default:
		return nil
	}
}
