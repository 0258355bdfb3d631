package telemetry

import (
	"context"
	"fmt"
	"sync"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

const bytesPerMegabyte = 1024 * 1024

// nvmlSession lazily initializes NVML once per process and keeps the device
// handles. Initialization failure (no driver, no library) is remembered so
// every probe on the session reports Unavailable without re-probing the
// driver.
type nvmlSession struct {
	once    sync.Once
	devices []nvml.Device
	driver  string
	initErr error
}

var sharedNVML = &nvmlSession{}

func (s *nvmlSession) init() {
	s.once.Do(func() {
		if ret := nvml.Init(); ret != nvml.SUCCESS {
			s.initErr = fmt.Errorf("nvml init: %s", nvml.ErrorString(ret))
			return
		}

		count, ret := nvml.DeviceGetCount()
		if ret != nvml.SUCCESS {
			s.initErr = fmt.Errorf("nvml device count: %s", nvml.ErrorString(ret))
			return
		}

		for i := 0; i < count; i++ {
			device, ret := nvml.DeviceGetHandleByIndex(i)
			if ret != nvml.SUCCESS {
				continue
			}
			s.devices = append(s.devices, device)
		}

		if version, ret := nvml.SystemGetDriverVersion(); ret == nvml.SUCCESS {
			s.driver = version
		}
	})
}

// NVMLProbe reads one GPU metric for every NVIDIA device through the NVML
// driver library. It is the top-ranked GPU probe: no subprocess, one call
// per device.
type NVMLProbe struct {
	metric  Metric
	session *nvmlSession
}

func NewNVMLProbe(metric Metric) *NVMLProbe {
	return &NVMLProbe{metric: metric, session: sharedNVML}
}

func (p *NVMLProbe) Name() string {
	return fmt.Sprintf("nvml/%s", p.metric)
}

func (p *NVMLProbe) Invoke(_ context.Context) ProbeResult {
	p.session.init()
	if p.session.initErr != nil {
		return Unavailable(p.session.initErr.Error())
	}
	if len(p.session.devices) == 0 {
		return Unavailable("no NVIDIA devices")
	}

	values := make([]float64, 0, len(p.session.devices))
	for _, device := range p.session.devices {
		switch p.metric {
		case GPUTemp:
			temp, ret := device.GetTemperature(nvml.TEMPERATURE_GPU)
			if ret != nvml.SUCCESS {
				return Failure(fmt.Errorf("nvml temperature: %s", nvml.ErrorString(ret)))
			}
			values = append(values, float64(temp))
		case GPULoad:
			util, ret := device.GetUtilizationRates()
			if ret != nvml.SUCCESS {
				return Failure(fmt.Errorf("nvml utilization: %s", nvml.ErrorString(ret)))
			}
			values = append(values, float64(util.Gpu))
		case GPUMemory:
			mem, ret := device.GetMemoryInfo()
			if ret != nvml.SUCCESS {
				return Failure(fmt.Errorf("nvml memory info: %s", nvml.ErrorString(ret)))
			}
			values = append(values, float64(mem.Used)/bytesPerMegabyte)
		default:
			return Unavailable("metric not served by nvml")
		}
	}

	return SuccessVector(values)
}

// NVMLRoster enumerates NVIDIA devices through NVML.
type NVMLRoster struct {
	session *nvmlSession
}

func NewNVMLRoster() *NVMLRoster {
	return &NVMLRoster{session: sharedNVML}
}

func (r *NVMLRoster) Name() string {
	return "nvml/roster"
}

func (r *NVMLRoster) Roster(_ context.Context) ([]GpuDescriptor, error) {
	r.session.init()
	if r.session.initErr != nil {
		return nil, r.session.initErr
	}

	gpus := make([]GpuDescriptor, 0, len(r.session.devices))
	for i, device := range r.session.devices {
		descriptor := GpuDescriptor{
			Index:         i,
			Vendor:        VendorNVIDIA,
			DriverVersion: r.session.driver,
		}

		if name, ret := device.GetName(); ret == nvml.SUCCESS {
			descriptor.Name = name
		}
		if mem, ret := device.GetMemoryInfo(); ret == nvml.SUCCESS {
			descriptor.MemoryTotalMB = float64(mem.Total) / bytesPerMegabyte
		}

		gpus = append(gpus, descriptor)
	}

	return gpus, nil
}
