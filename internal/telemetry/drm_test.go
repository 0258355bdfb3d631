package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCardNode(t *testing.T) {
	assert.True(t, isCardNode("card0"))
	assert.True(t, isCardNode("card12"))

	assert.False(t, isCardNode("card"))
	assert.False(t, isCardNode("card0-HDMI-A-1"))
	assert.False(t, isCardNode("cardX"))
	assert.False(t, isCardNode("renderD128"))
}

func TestClassifyPCIVendor(t *testing.T) {
	assert.Equal(t, VendorNVIDIA, classifyPCIVendor("10de"))
	assert.Equal(t, VendorAMD, classifyPCIVendor("1002"))
	assert.Equal(t, VendorIntegrated, classifyPCIVendor("8086"))
	assert.Equal(t, VendorUnknown, classifyPCIVendor("abcd"))
}

func TestDRMRoster(t *testing.T) {
	root := t.TempDir()

	writeSysfsFile(t, root+"/class/drm/card0/device/vendor", "0x10de")
	writeSysfsFile(t, root+"/class/drm/card0/device/device", "0x2204")
	writeSysfsFile(t, root+"/class/drm/card1/device/vendor", "0x1002")
	writeSysfsFile(t, root+"/class/drm/card1/device/device", "0x73bf")
	// Connector nodes must be skipped.
	writeSysfsFile(t, root+"/class/drm/card0-HDMI-A-1/status", "connected")

	roster := NewDRMRoster(root)

	gpus, err := roster.Roster(context.Background())
	require.NoError(t, err)
	require.Len(t, gpus, 2)

	assert.Equal(t, VendorNVIDIA, gpus[0].Vendor)
	assert.Equal(t, VendorAMD, gpus[1].Vendor)
	assert.NotEmpty(t, gpus[0].Name, "name falls back to the PCI ID pair when the database is absent")
}

func TestDRMRosterMissingClassDir(t *testing.T) {
	roster := NewDRMRoster(t.TempDir())

	_, err := roster.Roster(context.Background())
	assert.Error(t, err)
}
