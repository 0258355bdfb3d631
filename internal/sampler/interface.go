package sampler

// LoadSource provides whole-system load percentages. It is consumed by the
// safety watchdog, the load generator phases, the monitor dashboard and the
// telemetry resolver's synthetic fallback.
type LoadSource interface {
	// CPUPercent returns system-wide CPU utilization in [0, 100].
	CPUPercent() (float64, error)

	// MemoryPercent returns system-wide memory utilization in [0, 100].
	MemoryPercent() (float64, error)
}
