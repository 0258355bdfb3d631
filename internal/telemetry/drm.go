package telemetry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/jaypipes/pcidb"
)

const drmClassPath = "class/drm"

// PCI vendor identifiers for the GPU families we classify.
const (
	pciVendorNVIDIA = "10de"
	pciVendorAMD    = "1002"
	pciVendorIntel  = "8086"
)

// DRMRoster enumerates GPUs from sysfs DRM cards, resolving device names
// through the PCI ID database. It is the last-ranked roster source: it sees
// every display adapter, including integrated ones no vendor tool reports.
type DRMRoster struct {
	root string

	dbOnce sync.Once
	db     *pcidb.PCIDB
	dbErr  error
}

func NewDRMRoster(root string) *DRMRoster {
	if root == "" {
		root = defaultSysfsRoot
	}

	return &DRMRoster{root: root}
}

func (r *DRMRoster) Name() string {
	return "drm/roster"
}

func (r *DRMRoster) Roster(_ context.Context) ([]GpuDescriptor, error) {
	entries, err := os.ReadDir(filepath.Join(r.root, drmClassPath))
	if err != nil {
		return nil, fmt.Errorf("read drm class dir: %w", err)
	}

	var gpus []GpuDescriptor
	for _, entry := range entries {
		name := entry.Name()
		if !isCardNode(name) {
			continue
		}

		devicePath := filepath.Join(r.root, drmClassPath, name, "device")
		vendorID, err := readTrimmed(filepath.Join(devicePath, "vendor"))
		if err != nil {
			continue
		}
		deviceID, err := readTrimmed(filepath.Join(devicePath, "device"))
		if err != nil {
			continue
		}

		vendorID = strings.TrimPrefix(vendorID, "0x")
		deviceID = strings.TrimPrefix(deviceID, "0x")

		gpus = append(gpus, GpuDescriptor{
			Index:  len(gpus),
			Vendor: classifyPCIVendor(vendorID),
			Name:   r.lookupName(vendorID, deviceID),
		})
	}

	return gpus, nil
}

// isCardNode matches card0, card1, ... but not connector nodes like
// card0-HDMI-A-1.
func isCardNode(name string) bool {
	if !strings.HasPrefix(name, "card") || strings.ContainsRune(name, '-') {
		return false
	}

	suffix := name[4:]
	if suffix == "" {
		return false
	}
	for _, r := range suffix {
		if !unicode.IsDigit(r) {
			return false
		}
	}

	return true
}

func classifyPCIVendor(vendorID string) Vendor {
	switch vendorID {
	case pciVendorNVIDIA:
		return VendorNVIDIA
	case pciVendorAMD:
		return VendorAMD
	case pciVendorIntel:
		return VendorIntegrated
	default:
		return VendorUnknown
	}
}

func (r *DRMRoster) lookupName(vendorID, deviceID string) string {
	r.dbOnce.Do(func() {
		r.db, r.dbErr = pcidb.New()
	})

	fallback := fmt.Sprintf("PCI device %s:%s", vendorID, deviceID)
	if r.dbErr != nil {
		return fallback
	}

	vendor, ok := r.db.Vendors[vendorID]
	if !ok {
		return fallback
	}

	for _, product := range vendor.Products {
		if product.ID == deviceID {
			return fmt.Sprintf("%s %s", vendor.Name, product.Name)
		}
	}

	return fmt.Sprintf("%s device %s", vendor.Name, deviceID)
}
