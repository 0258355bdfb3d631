// Package sysinfo supplies static host facts: OS, processor model, core and
// thread counts, total memory. Facts are read once per process and cached;
// the GPU roster is attached per run by the caller.
package sysinfo

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"codeberg.org/varmo/hwstress/internal/telemetry"
)

// Info is a snapshot of static host facts.
type Info struct {
	OS            string
	Processor     string
	PhysicalCores int
	LogicalCores  int
	MemoryTotalMB float64
	GPUs          []telemetry.GpuDescriptor
}

// Provider reads host facts once and serves the cached snapshot.
type Provider struct {
	procRoot string

	once sync.Once
	info Info
}

// NewProvider returns a provider rooted at the given proc mount point.
// An empty root defaults to /proc.
func NewProvider(procRoot string) *Provider {
	if procRoot == "" {
		procRoot = "/proc"
	}

	return &Provider{procRoot: procRoot}
}

// Collect returns the cached host snapshot, reading it on first call.
// GPUs is left empty; callers attach the per-run roster themselves.
func (p *Provider) Collect() Info {
	p.once.Do(func() {
		p.info = Info{
			OS:           fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
			LogicalCores: runtime.NumCPU(),
		}

		if data, err := os.ReadFile(filepath.Join(p.procRoot, "cpuinfo")); err == nil {
			p.info.Processor, p.info.PhysicalCores = parseCPUInfo(string(data))
		}
		if p.info.PhysicalCores == 0 {
			p.info.PhysicalCores = p.info.LogicalCores
		}

		if data, err := os.ReadFile(filepath.Join(p.procRoot, "meminfo")); err == nil {
			p.info.MemoryTotalMB = parseMemTotalMB(string(data))
		}
	})

	return p.info
}

func parseCPUInfo(data string) (model string, physicalCores int) {
	for _, line := range strings.Split(data, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "model name":
			if model == "" {
				model = value
			}
		case "cpu cores":
			if physicalCores == 0 {
				physicalCores, _ = strconv.Atoi(value)
			}
		}
	}

	return model, physicalCores
}

func parseMemTotalMB(data string) float64 {
	for _, line := range strings.Split(data, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == "MemTotal:" {
			kb, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return 0
			}
			return kb / 1024
		}
	}

	return 0
}
