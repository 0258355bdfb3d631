package sampler

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"codeberg.org/varmo/hwstress/internal/errors"
)

// NetCounters holds cumulative network counters summed across all
// non-loopback interfaces.
type NetCounters struct {
	BytesSent   uint64
	BytesRecv   uint64
	PacketsSent uint64
	PacketsRecv uint64
}

// NetRates holds per-second transfer rates derived from two counter reads.
type NetRates struct {
	SendBytesPerSec float64
	RecvBytesPerSec float64
	PacketsSent     uint64
	PacketsRecv     uint64
}

// NetReader computes transfer rates from successive /proc/net/dev reads.
type NetReader struct {
	root string
	last NetCounters
	at   time.Time
}

func NewNetReader(root string) *NetReader {
	if root == "" {
		root = defaultProcRoot
	}

	return &NetReader{root: root}
}

// Rates reads current counters and returns rates relative to the previous
// call. The first call returns zero rates and primes the baseline.
func (r *NetReader) Rates() (NetRates, error) {
	counters, err := r.read()
	if err != nil {
		return NetRates{}, err
	}

	now := time.Now()
	rates := NetRates{
		PacketsSent: counters.PacketsSent,
		PacketsRecv: counters.PacketsRecv,
	}

	if !r.at.IsZero() {
		elapsed := now.Sub(r.at).Seconds()
		if elapsed > 0 {
			rates.SendBytesPerSec = float64(counters.BytesSent-r.last.BytesSent) / elapsed
			rates.RecvBytesPerSec = float64(counters.BytesRecv-r.last.BytesRecv) / elapsed
		}
	}

	r.last = counters
	r.at = now

	return rates, nil
}

func (r *NetReader) read() (NetCounters, error) {
	errFactory := errors.New()

	data, err := os.ReadFile(filepath.Join(r.root, "net", "dev"))
	if err != nil {
		return NetCounters{}, errFactory.Wrap(errors.ErrUnavailable, err)
	}

	return parseNetDev(string(data)), nil
}

// parseNetDev sums counters across interfaces. Format per line:
// iface: rbytes rpackets ... (8 receive fields) tbytes tpackets ...
func parseNetDev(data string) NetCounters {
	var counters NetCounters

	for _, line := range strings.Split(data, "\n") {
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			continue
		}

		iface := strings.TrimSpace(line[:idx])
		if iface == "lo" {
			continue
		}

		fields := strings.Fields(line[idx+1:])
		if len(fields) < 10 {
			continue
		}

		rbytes, _ := strconv.ParseUint(fields[0], 10, 64)
		rpackets, _ := strconv.ParseUint(fields[1], 10, 64)
		tbytes, _ := strconv.ParseUint(fields[8], 10, 64)
		tpackets, _ := strconv.ParseUint(fields[9], 10, 64)

		counters.BytesRecv += rbytes
		counters.PacketsRecv += rpackets
		counters.BytesSent += tbytes
		counters.PacketsSent += tpackets
	}

	return counters
}
