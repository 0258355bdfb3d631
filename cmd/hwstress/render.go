package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"codeberg.org/varmo/hwstress/internal/bench"
	"codeberg.org/varmo/hwstress/internal/heatmap"
	"codeberg.org/varmo/hwstress/internal/monitor"
	"codeberg.org/varmo/hwstress/internal/report"
)

// Plain-text renderers. The engines only see the Renderer interfaces; these
// are deliberately minimal sinks.

const timeRound = 10 * time.Millisecond

type monitorRenderer struct {
	w io.Writer
}

func newMonitorRenderer(w io.Writer) *monitorRenderer {
	return &monitorRenderer{w: w}
}

func (r *monitorRenderer) Render(s monitor.Snapshot) {
	fmt.Fprintf(r.w, "%s  cpu %5.1f%%  mem %5.1f%%  net ↑%.1fKB/s ↓%.1fKB/s\n",
		s.At.Format("15:04:05"),
		s.CPUPercent, s.MemPercent,
		s.Net.SendBytesPerSec/1024, s.Net.RecvBytesPerSec/1024)

	for _, gpu := range s.GPUs {
		if gpu.HasTelemetry {
			fmt.Fprintf(r.w, "  gpu%d %-30s load %5.1f%%  mem %.0fMB\n",
				gpu.Descriptor.Index, gpu.Descriptor.Name, gpu.LoadPercent, gpu.MemoryUsedMB)
		} else {
			fmt.Fprintf(r.w, "  gpu%d %-30s (no telemetry)\n",
				gpu.Descriptor.Index, gpu.Descriptor.Name)
		}
	}
}

type heatmapRenderer struct {
	w io.Writer
}

func newHeatmapRenderer(w io.Writer) *heatmapRenderer {
	return &heatmapRenderer{w: w}
}

func (r *heatmapRenderer) Render(t heatmap.ComponentTemps) {
	fmt.Fprintf(r.w, "%s  cpu %s  gpu %s  board %s  storage %s  ram %.1f°C*\n",
		t.At.Format("15:04:05"),
		formatTemp(t.CPU.Value, t.CPU.Estimated),
		formatTemp(t.GPU.Value, t.GPU.Estimated),
		formatTemp(t.Board.Value, t.Board.Estimated),
		formatTemp(t.Storage.Value, t.Storage.Estimated),
		t.RAMCelsius)
}

// formatTemp marks estimated readings with an asterisk so they are never
// mistaken for sensor measurements.
func formatTemp(celsius float64, estimated bool) string {
	if estimated {
		return fmt.Sprintf("%.1f°C*", celsius)
	}

	return fmt.Sprintf("%.1f°C", celsius)
}

func renderRunReport(w io.Writer, result *bench.RunReport) {
	info := result.SystemInfo

	fmt.Fprintf(w, "\nBenchmark report (%s preset)\n", result.Config.Label)
	fmt.Fprintf(w, "  host: %s, %s, %d cores / %d threads\n",
		info.OS, info.Processor, info.PhysicalCores, info.LogicalCores)

	if len(info.GPUs) == 0 {
		fmt.Fprintln(w, "  gpu: none detected")
	}
	for _, gpu := range info.GPUs {
		fmt.Fprintf(w, "  gpu%d: %s %s", gpu.Index, gpu.Vendor, gpu.Name)
		if gpu.MemoryTotalMB > 0 {
			fmt.Fprintf(w, ", %.0fMB", gpu.MemoryTotalMB)
		}
		if gpu.DriverVersion != "" {
			fmt.Fprintf(w, ", driver %s", gpu.DriverVersion)
		}
		fmt.Fprintln(w)
	}

	if result.AbortedEarly {
		fmt.Fprintf(w, "\n  ABORTED EARLY: %s\n", result.AbortReason)
		fmt.Fprintln(w, "  The safety watchdog stopped this run to protect the host.")
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\n  metric\tsamples\tmean\tpeak")
	for _, s := range report.Summarize(result.Samples) {
		flag := ""
		if s.Estimated {
			flag = "*"
		}
		fmt.Fprintf(tw, "  %s%s\t%d\t%.2f%s\t%.2f%s\n",
			s.Metric, flag, s.Count, s.Mean, s.Unit, s.Peak, s.Unit)
	}
	tw.Flush()

	fmt.Fprintf(w, "\n  elapsed: %s\n", result.FinishedAt.Sub(result.StartedAt).Round(timeRound))
}
