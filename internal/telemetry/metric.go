package telemetry

import "time"

// Metric identifies one logical hardware reading.
type Metric int

const (
	CPULoad Metric = iota
	MemLoad
	GPULoad
	GPUMemory
	CPUTemp
	GPUTemp
	BoardTemp
	StorageTemp
)

// Unit is the measurement unit of a metric value.
type Unit int

const (
	Percent Unit = iota
	Celsius
	Megabytes
)

// TemperatureMetrics lists the metrics the heatmap resolves each tick.
var TemperatureMetrics = []Metric{CPUTemp, GPUTemp, BoardTemp, StorageTemp}

func (m Metric) String() string {
	switch m {
	case CPULoad:
		return "cpu_load"
	case MemLoad:
		return "mem_load"
	case GPULoad:
		return "gpu_load"
	case GPUMemory:
		return "gpu_memory"
	case CPUTemp:
		return "cpu_temp"
	case GPUTemp:
		return "gpu_temp"
	case BoardTemp:
		return "board_temp"
	case StorageTemp:
		return "storage_temp"
	default:
		return "unknown"
	}
}

// Unit returns the fixed unit every sample of this metric carries.
func (m Metric) Unit() Unit {
	switch m {
	case CPULoad, MemLoad, GPULoad:
		return Percent
	case GPUMemory:
		return Megabytes
	default:
		return Celsius
	}
}

func (u Unit) String() string {
	switch u {
	case Percent:
		return "%"
	case Celsius:
		return "°C"
	case Megabytes:
		return "MB"
	default:
		return ""
	}
}

// MetricSample is a single timestamped reading. It is immutable once created;
// At carries the monotonic clock reading of the sampling instant.
type MetricSample struct {
	At        time.Time
	Metric    Metric
	Value     float64
	Unit      Unit
	Estimated bool
}

// NewSample stamps a measured reading with the current time.
func NewSample(metric Metric, value float64) MetricSample {
	return MetricSample{
		At:     time.Now(),
		Metric: metric,
		Value:  value,
		Unit:   metric.Unit(),
	}
}

// NewEstimatedSample stamps a load-derived synthetic reading. Renderers use
// the flag to distinguish estimates from sensor measurements.
func NewEstimatedSample(metric Metric, value float64) MetricSample {
	s := NewSample(metric, value)
	s.Estimated = true

	return s
}
