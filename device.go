package sylk

import (
	"fmt"
	"runtime"
	"sync"
)

// Device represents a compute device. In sylk, this is the CPU with its
// cores and available memory. Each device has a unique ID, a maximum
// work-group size, and its own kernel registry and buffer statistics.
type Device struct {
	ID               int    // Unique device identifier
	Name             string // Human-readable device name
	TotalMem         uint64 // Total available memory in bytes
	NumCores         int    // Number of CPU cores
	MaxWorkGroupSize int    // Largest work-group a kernel may launch with

	registry *KernelRegistry
	stats    memStatsCounter
}

// Global runtime state
var (
	defaultDevice *Device
	defaultQueue  *Queue
	initOnce      sync.Once
)

// Initialize the sylk runtime
func init() {
	initOnce.Do(func() {
		defaultDevice = &Device{
			ID:               0,
			Name:             deviceName(),
			TotalMem:         getSystemMemory(),
			NumCores:         runtime.NumCPU(),
			MaxWorkGroupSize: DefaultWorkGroupSize,
			registry:         NewKernelRegistry(),
		}

		defaultQueue = NewQueue(defaultDevice)
	})
}

// DefaultDevice returns the process-wide CPU device.
//
// Example:
//
//	dev := sylk.DefaultDevice()
//	fmt.Printf("Running on: %s with %d cores\n", dev.Name, dev.NumCores)
func DefaultDevice() *Device {
	return defaultDevice
}

// DefaultQueue returns the in-order queue bound to the default device.
func DefaultQueue() *Queue {
	return defaultQueue
}

// DeviceCount returns the number of available devices.
// Sylk always returns 1 as it only supports CPU execution.
func DeviceCount() int {
	return 1 // Only CPU
}

// NewDevice constructs a device with a custom maximum work-group size.
// Useful for pinning reduction geometry regardless of the host, and for
// tests that sweep group sizes. The group size must be in
// [2, MaxGroupSizeLimit]: a group folds its elements down to one, so a
// capacity below two cannot shrink anything and a multi-pass reduction
// would never converge.
func NewDevice(maxGroupSize int) (*Device, error) {
	if maxGroupSize < 2 || maxGroupSize > MaxGroupSizeLimit {
		return nil, ErrInvalidGroupSize
	}
	return &Device{
		ID:               0,
		Name:             deviceName(),
		TotalMem:         getSystemMemory(),
		NumCores:         runtime.NumCPU(),
		MaxWorkGroupSize: maxGroupSize,
		registry:         NewKernelRegistry(),
	}, nil
}

// SelectLocalSize returns the work-group size for a kernel over n items:
// the device maximum, clamped down to n when n is smaller.
func (d *Device) SelectLocalSize(n int) int {
	if n < d.MaxWorkGroupSize {
		return n
	}
	return d.MaxWorkGroupSize
}

// Registry returns the device's kernel launch registry.
func (d *Device) Registry() *KernelRegistry {
	return d.registry
}

// String implements fmt.Stringer for diagnostics.
func (d *Device) String() string {
	return fmt.Sprintf("%s (%d cores, max work-group %d)", d.Name, d.NumCores, d.MaxWorkGroupSize)
}

// getSystemMemory returns total system memory in bytes
func getSystemMemory() uint64 {
	// This is a simplified view. Platforms that expose a real figure
	// could report it here.
	return DefaultDeviceMemory
}
