// Copyright ©2025 The Sylk Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sylk provides a SYCL-style data-parallel compute API for CPU execution.
//
// Sylk models the machine the way an accelerator runtime does: a Device with
// cores and memory, in-order Queues that execute submitted work asynchronously,
// typed device Buffers, and kernels launched over a grid of work-groups. Each
// work-group runs its work-items on real goroutines with group-local scratch
// storage and a group barrier, so kernels written against the work-group model
// (stage, synchronize, combine) behave on the CPU exactly as they would on a
// device with local memory.
//
// The centerpiece is TransformReduce, a device-side transform-reduce built as
// a multi-pass work-group tree reduction:
//   - Pass 0 reads the input buffer through a unary transform
//   - Each group folds its slice in local scratch and writes one partial
//   - Passes repeat over the shrinking partial prefix until one value remains
//   - The host folds the device result with the caller's initial value
//
// Convenience reductions (Sum, Product, Max, Min, SumSquares, Mean) and a
// composable TransformChain builder cover the common cases without writing
// operators by hand.
package sylk
