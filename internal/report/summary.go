// Package report turns finished runs into consumable artifacts: per-metric
// summaries for renderers, CSV exports, and a sqlite history of past runs.
package report

import (
	"codeberg.org/varmo/hwstress/internal/telemetry"
)

// MetricSummary aggregates all samples of one metric from a run.
type MetricSummary struct {
	Metric    telemetry.Metric
	Unit      telemetry.Unit
	Count     int
	Mean      float64
	Peak      float64
	Estimated bool // true when any contributing sample was synthetic
}

// summaryOrder fixes the presentation order of metrics in a report.
var summaryOrder = []telemetry.Metric{
	telemetry.CPULoad,
	telemetry.MemLoad,
	telemetry.GPULoad,
	telemetry.GPUMemory,
	telemetry.CPUTemp,
	telemetry.GPUTemp,
	telemetry.BoardTemp,
	telemetry.StorageTemp,
}

// Summarize computes mean and peak per metric over an ordered sample
// sequence. Metrics with no samples are omitted.
func Summarize(samples []telemetry.MetricSample) []MetricSummary {
	type acc struct {
		sum       float64
		peak      float64
		count     int
		estimated bool
	}

	accs := map[telemetry.Metric]*acc{}
	for _, sample := range samples {
		a := accs[sample.Metric]
		if a == nil {
			a = &acc{peak: sample.Value}
			accs[sample.Metric] = a
		}

		a.sum += sample.Value
		a.count++
		if sample.Value > a.peak {
			a.peak = sample.Value
		}
		if sample.Estimated {
			a.estimated = true
		}
	}

	var summaries []MetricSummary
	for _, metric := range summaryOrder {
		a, ok := accs[metric]
		if !ok {
			continue
		}

		summaries = append(summaries, MetricSummary{
			Metric:    metric,
			Unit:      metric.Unit(),
			Count:     a.count,
			Mean:      a.sum / float64(a.count),
			Peak:      a.peak,
			Estimated: a.estimated,
		})
	}

	return summaries
}
