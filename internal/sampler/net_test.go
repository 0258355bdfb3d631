package sampler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const netDevFixture = `Inter-|   Receive                                                |  Transmit
 face |bytes    packets errs drop fifo frame compressed multicast|bytes    packets errs drop fifo colls carrier compressed
    lo: 9999999    9999    0    0    0     0          0         0  9999999    9999    0    0    0     0       0          0
  eth0: 1000000    5000    0    0    0     0          0         0   500000    2500    0    0    0     0       0          0
 wlan0:  200000    1000    0    0    0     0          0         0   100000     500    0    0    0     0       0          0
`

func TestParseNetDevSumsNonLoopback(t *testing.T) {
	counters := parseNetDev(netDevFixture)

	assert.Equal(t, uint64(1200000), counters.BytesRecv)
	assert.Equal(t, uint64(6000), counters.PacketsRecv)
	assert.Equal(t, uint64(600000), counters.BytesSent)
	assert.Equal(t, uint64(3000), counters.PacketsSent)
}

func TestParseNetDevEmpty(t *testing.T) {
	counters := parseNetDev("Inter-|   Receive\n face |bytes\n")

	assert.Zero(t, counters.BytesRecv)
	assert.Zero(t, counters.BytesSent)
}

func TestNetReaderFirstCallPrimesBaseline(t *testing.T) {
	root := t.TempDir()
	writeProcFile(t, root, "net/dev", netDevFixture)

	r := NewNetReader(root)

	rates, err := r.Rates()
	require.NoError(t, err)

	assert.Zero(t, rates.SendBytesPerSec)
	assert.Zero(t, rates.RecvBytesPerSec)
	assert.Equal(t, uint64(3000), rates.PacketsSent)
}

func TestNetReaderRatesBetweenReads(t *testing.T) {
	root := t.TempDir()
	writeProcFile(t, root, "net/dev", netDevFixture)

	r := NewNetReader(root)
	_, err := r.Rates()
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	grown := `  eth0: 2000000    6000    0    0    0     0          0         0  1500000    3500    0    0    0     0       0          0
`
	writeProcFile(t, root, "net/dev", grown)

	rates, err := r.Rates()
	require.NoError(t, err)

	assert.Greater(t, rates.RecvBytesPerSec, 0.0)
	assert.Greater(t, rates.SendBytesPerSec, 0.0)
}

func TestNetReaderMissingFile(t *testing.T) {
	r := NewNetReader(t.TempDir())

	_, err := r.Rates()
	assert.Error(t, err)
}
