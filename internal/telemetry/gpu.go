package telemetry

// Vendor identifies the GPU vendor family a descriptor belongs to.
type Vendor int

const (
	VendorUnknown Vendor = iota
	VendorNVIDIA
	VendorAMD
	VendorIntel
	VendorIntegrated
)

func (v Vendor) String() string {
	switch v {
	case VendorNVIDIA:
		return "NVIDIA"
	case VendorAMD:
		return "AMD"
	case VendorIntel:
		return "Intel"
	case VendorIntegrated:
		return "Integrated"
	default:
		return "Unknown"
	}
}

// GpuDescriptor identifies one detected GPU for the duration of a run.
// Identity is (Vendor, Index); descriptors are not persisted across runs.
type GpuDescriptor struct {
	Index         int
	Vendor        Vendor
	Name          string
	MemoryTotalMB float64 // 0 when unknown
	DriverVersion string
}
