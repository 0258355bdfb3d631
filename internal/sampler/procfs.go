package sampler

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"codeberg.org/varmo/hwstress/internal/errors"
)

const defaultProcRoot = "/proc"

// ProcFS reads system-wide CPU and memory utilization from the proc
// filesystem. CPU utilization is computed from the delta between successive
// reads of the aggregate "cpu" line in /proc/stat; the first read reports
// utilization since boot.
type ProcFS struct {
	root string

	mu       sync.Mutex
	lastBusy uint64
	lastSum  uint64
}

// NewProcFS returns a LoadSource rooted at the given proc mount point.
// An empty root defaults to /proc.
func NewProcFS(root string) *ProcFS {
	if root == "" {
		root = defaultProcRoot
	}

	return &ProcFS{root: root}
}

func (p *ProcFS) CPUPercent() (float64, error) {
	errFactory := errors.New()

	data, err := os.ReadFile(filepath.Join(p.root, "stat"))
	if err != nil {
		return 0, errFactory.Wrap(errors.ErrUnavailable, err)
	}

	busy, sum, err := parseCPUStat(string(data))
	if err != nil {
		return 0, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	deltaBusy := busy - p.lastBusy
	deltaSum := sum - p.lastSum
	p.lastBusy = busy
	p.lastSum = sum

	if deltaSum == 0 {
		return 0, nil
	}

	return float64(deltaBusy) / float64(deltaSum) * 100, nil
}

func (p *ProcFS) MemoryPercent() (float64, error) {
	errFactory := errors.New()

	data, err := os.ReadFile(filepath.Join(p.root, "meminfo"))
	if err != nil {
		return 0, errFactory.Wrap(errors.ErrUnavailable, err)
	}

	total, available, err := parseMemInfo(string(data))
	if err != nil {
		return 0, err
	}

	if total == 0 {
		return 0, errFactory.WithMessage(errors.ErrUnavailable, "meminfo reports zero total memory")
	}

	return (1 - float64(available)/float64(total)) * 100, nil
}

// parseCPUStat extracts busy and total jiffy counts from the aggregate cpu
// line. Fields are: user nice system idle iowait irq softirq steal guest
// guest_nice; idle and iowait count as not busy.
func parseCPUStat(data string) (busy, sum uint64, err error) {
	errFactory := errors.New()

	for _, line := range strings.Split(data, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 5 || fields[0] != "cpu" {
			continue
		}

		for i, field := range fields[1:] {
			v, parseErr := strconv.ParseUint(field, 10, 64)
			if parseErr != nil {
				return 0, 0, errFactory.Wrap(errors.ErrInternal, parseErr)
			}
			sum += v
			// fields 4 and 5 (idle, iowait) are not busy time
			if i != 3 && i != 4 {
				busy += v
			}
		}

		return busy, sum, nil
	}

	return 0, 0, errFactory.WithMessage(errors.ErrUnavailable, "no aggregate cpu line in stat")
}

func parseMemInfo(data string) (total, available uint64, err error) {
	errFactory := errors.New()

	for _, line := range strings.Split(data, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		switch fields[0] {
		case "MemTotal:":
			total, _ = strconv.ParseUint(fields[1], 10, 64)
		case "MemAvailable:":
			available, _ = strconv.ParseUint(fields[1], 10, 64)
		}
	}

	if total == 0 {
		return 0, 0, errFactory.WithMessage(errors.ErrUnavailable, "no MemTotal line in meminfo")
	}

	return total, available, nil
}
