package sylk

import (
	"testing"
)

// DeviceOrFail creates a device with the given work-group size and
// fails the test if unsuccessful
func DeviceOrFail(t testing.TB, maxGroupSize int) *Device {
	t.Helper()
	dev, err := NewDevice(maxGroupSize)
	if err != nil {
		t.Fatalf("Failed to create device with group size %d: %v", maxGroupSize, err)
	}
	return dev
}

// BufferOrFail allocates a read-write buffer and fails the test if
// unsuccessful
func BufferOrFail[T any](t testing.TB, dev *Device, n int) *Buffer[T] {
	t.Helper()
	buf, err := NewBuffer[T](dev, n)
	if err != nil {
		t.Fatalf("Failed to allocate buffer of %d elements: %v", n, err)
	}
	return buf
}

// ConstBufferOrFail materializes src into a read-only buffer and fails
// the test if unsuccessful
func ConstBufferOrFail[T any](t testing.TB, dev *Device, src []T) *Buffer[T] {
	t.Helper()
	buf, err := NewConstBuffer(dev, src)
	if err != nil {
		t.Fatalf("Failed to materialize buffer of %d elements: %v", len(src), err)
	}
	return buf
}

// LaunchOrFail launches a grouped kernel and fails the test if the
// submission is rejected
func LaunchOrFail[S any](t testing.TB, q *Queue, cfg LaunchConfig, scratchLen int, body func(WorkItem, []S)) {
	t.Helper()
	err := LaunchGrouped(q, cfg, scratchLen, body)
	if err != nil {
		t.Fatalf("Kernel launch failed: %v", err)
	}
}

// WaitOrFail waits on the queue and fails the test if any task failed
func WaitOrFail(t testing.TB, q *Queue) {
	t.Helper()
	err := q.Wait()
	if err != nil {
		t.Fatalf("Queue wait failed: %v", err)
	}
}

// TransformReduceOrFail runs a transform-reduce and fails the test on
// error
func TransformReduceOrFail[T any](t testing.TB, p *Policy, in []T, unaryOp func(T) T, init T, binaryOp func(T, T) T) T {
	t.Helper()
	result, err := TransformReduce(p, in, unaryOp, init, binaryOp)
	if err != nil {
		t.Fatalf("TransformReduce failed: %v", err)
	}
	return result
}
