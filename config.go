// Package sylk configuration constants
package sylk

// Work-group dimensions
const (
	// Default work-group size for reduction kernels
	DefaultWorkGroupSize = 256

	// Maximum supported work-group size
	MaxGroupSizeLimit = 1024
)

// Queue parameters
const (
	// Pending submission capacity per queue
	DefaultQueueDepth = 1000
)

// Memory parameters
const (
	// Reported device memory when the platform does not expose a real figure
	DefaultDeviceMemory = 16 * 1024 * 1024 * 1024 // 16GB
)
