//go:build !nogpu

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/textmesh"
)

// Device acquisition errors.
var (
	// ErrNoVulkan is returned when the Vulkan HAL backend is unavailable.
	ErrNoVulkan = errors.New("render: vulkan backend not available")

	// ErrNoAdapter is returned when no GPU adapter is found.
	ErrNoAdapter = errors.New("render: no GPU adapters found")

	// ErrNilProvider is returned when FromProvider gets a nil provider.
	ErrNilProvider = errors.New("render: nil device provider")
)

// Device bundles the HAL device and queue the renderer submits to.
// It is either owned (created by Open) or borrowed from a host
// application (NewDevice, FromProvider); Close only destroys owned
// resources.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	name   string
	shared bool
}

// Open creates a standalone Vulkan device, preferring discrete or
// integrated GPUs over software adapters.
func Open() (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, ErrNoVulkan
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("render: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("render: open device: %w", err)
	}

	textmesh.Logger().Info("render: device open", "adapter", selected.Info.Name)

	return &Device{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		name:     selected.Info.Name,
	}, nil
}

// NewDevice wraps a HAL device and queue owned by someone else, such as
// a host application's render context. Close on the returned Device
// releases nothing.
func NewDevice(device hal.Device, queue hal.Queue) *Device {
	return &Device{device: device, queue: queue, shared: true}
}

// FromProvider borrows the GPU device of a gpucontext host. The
// provider must also expose the underlying HAL types through
// HalDevice() any and HalQueue() any.
func FromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("render: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("render: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("render: provider HalQueue is not hal.Queue")
	}
	return NewDevice(device, queue), nil
}

// Name returns the adapter name, or "" for borrowed devices.
func (d *Device) Name() string { return d.name }

// Close destroys the device and instance when owned. Borrowed devices
// are only detached. Safe to call multiple times.
func (d *Device) Close() {
	if d.shared {
		d.device = nil
		d.queue = nil
		return
	}
	if d.device != nil {
		d.device.Destroy()
		d.device = nil
		d.queue = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}
