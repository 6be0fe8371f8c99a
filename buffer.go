package sylk

import (
	"sync"
	"unsafe"
)

// Buffer is typed device storage for a fixed number of elements.
// Read-only buffers are materialized from host data at construction;
// read-write buffers are written by kernels. Host access (Read, At) is
// only well defined after the owning queue has been waited on.
type Buffer[T any] struct {
	dev      *Device
	data     []T
	readOnly bool
	released bool
}

// MemStats reports a device's buffer allocation statistics.
type MemStats struct {
	LiveBytes   int64 // Bytes currently held by live buffers
	PeakBytes   int64 // High-water mark of LiveBytes
	LiveBuffers int64 // Buffers allocated and not yet released
	TotalAllocs int64 // Buffers allocated over the device's lifetime
}

// memStatsCounter tracks buffer allocations for one device.
type memStatsCounter struct {
	mu      sync.Mutex
	live    int64
	peak    int64
	buffers int64
	allocs  int64
}

func (s *memStatsCounter) allocate(bytes int64) {
	s.mu.Lock()
	s.live += bytes
	if s.live > s.peak {
		s.peak = s.live
	}
	s.buffers++
	s.allocs++
	s.mu.Unlock()
}

func (s *memStatsCounter) release(bytes int64) {
	s.mu.Lock()
	s.live -= bytes
	s.buffers--
	s.mu.Unlock()
}

// MemStats returns the device's current buffer statistics.
func (d *Device) MemStats() MemStats {
	d.stats.mu.Lock()
	defer d.stats.mu.Unlock()
	return MemStats{
		LiveBytes:   d.stats.live,
		PeakBytes:   d.stats.peak,
		LiveBuffers: d.stats.buffers,
		TotalAllocs: d.stats.allocs,
	}
}

// NewBuffer allocates an uninitialized read-write buffer for n elements
// on the device. A nil device allocates on the default device.
func NewBuffer[T any](dev *Device, n int) (*Buffer[T], error) {
	if dev == nil {
		dev = defaultDevice
	}
	if n < 1 {
		return nil, ErrInvalidSize
	}
	b := &Buffer[T]{
		dev:  dev,
		data: make([]T, n),
	}
	dev.stats.allocate(b.Bytes())
	return b, nil
}

// NewConstBuffer materializes a host slice into a read-only device
// buffer. The data is copied once at construction; later mutation of
// src does not reach the device.
func NewConstBuffer[T any](dev *Device, src []T) (*Buffer[T], error) {
	if dev == nil {
		dev = defaultDevice
	}
	if len(src) < 1 {
		return nil, ErrInvalidSize
	}
	b := &Buffer[T]{
		dev:      dev,
		data:     make([]T, len(src)),
		readOnly: true,
	}
	copy(b.data, src)
	dev.stats.allocate(b.Bytes())
	return b, nil
}

// Len returns the element count of the buffer
func (b *Buffer[T]) Len() int {
	return len(b.data)
}

// Bytes returns the bytes currently held by the buffer; zero after
// release.
func (b *Buffer[T]) Bytes() int64 {
	var zero T
	return int64(unsafe.Sizeof(zero)) * int64(len(b.data))
}

// ReadOnly reports whether kernels may write to the buffer.
func (b *Buffer[T]) ReadOnly() bool {
	return b.readOnly
}

// At returns the element at index i. It panics on an out-of-range
// index or a released buffer, like a slice access would.
func (b *Buffer[T]) At(i int) T {
	return b.data[i]
}

// Read copies the buffer's contents to dst, up to the shorter of the
// two lengths, and returns the number of elements copied.
func (b *Buffer[T]) Read(dst []T) (int, error) {
	if b.released {
		return 0, NewMemoryError("Read", "buffer already released", nil)
	}
	return copy(dst, b.data), nil
}

// Release frees the buffer's storage and updates the device statistics.
// Releasing a buffer twice returns ErrDoubleRelease.
func (b *Buffer[T]) Release() error {
	if b.released {
		return ErrDoubleRelease
	}
	b.released = true
	b.dev.stats.release(b.Bytes())
	b.data = nil
	return nil
}
