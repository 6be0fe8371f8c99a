package sylk

import (
	"fmt"
)

// TransformReduce computes
//
//	binaryOp(...binaryOp(unaryOp(in[0]), unaryOp(in[1]))..., init)
//
// on the device bound by p: the input is materialized into a read-only
// device buffer and folded by a multi-pass work-group tree reduction,
// and the single device result is combined with init on the host, with
// init as the right-hand operand. binaryOp must be associative;
// commutativity is not required, operand order is preserved end to end.
//
// An empty input returns init untouched, with no device interaction at
// all. A nil policy runs on the default queue. Any submission or
// execution failure aborts the call; device buffers are released on
// every path.
//
// Example:
//
//	sq := func(x int) int { return x * x }
//	add := func(a, b int) int { return a + b }
//	total, err := sylk.TransformReduce(nil, []int{1, 2, 3, 4, 5, 6, 7, 8}, sq, 0, add)
//	// total == 204
func TransformReduce[T any](p *Policy, in []T, unaryOp func(T) T, init T, binaryOp func(T, T) T) (T, error) {
	var zero T

	if unaryOp == nil || binaryOp == nil {
		return zero, ErrNilOperator
	}
	if len(in) == 0 {
		return init, nil
	}
	if p == nil {
		p = DefaultPolicy("transform_reduce")
	}

	q := p.Queue()
	dev := p.Device()

	n := len(in)
	local := dev.SelectLocalSize(n)

	input, err := NewConstBuffer(dev, in)
	if err != nil {
		return zero, err
	}
	defer input.Release()

	partial, err := NewBuffer[T](dev, n)
	if err != nil {
		return zero, err
	}
	defer partial.Release()

	// Tree reduction over the shrinking prefix of the partial buffer.
	// Each pass folds groups of local elements down to one, so the live
	// length divides by local (rounded up, remainder groups count) until
	// a single value remains. Every pass completes before the next is
	// planned; the kernel for pass k captures its own immutable params.
	length := n
	for pass := 0; ; pass++ {
		params := passParams{
			pass:   pass,
			length: length,
			local:  local,
			global: p.CalculateGlobalSize(length, local),
		}
		if err := launchReducePass(q, p, input, partial, params, unaryOp, binaryOp); err != nil {
			return zero, err
		}
		if err := q.Wait(); err != nil {
			return zero, err
		}

		length = (length + local - 1) / local
		if length <= 1 {
			break
		}
	}

	return binaryOp(partial.At(0), init), nil
}

// launchReducePass submits the kernel for one reduction pass.
//
// Pass 0 ingests from the input buffer through unaryOp; every later
// pass loads the previous pass's partials directly, already
// transformed. Later passes read and write the partial buffer in
// place, so their groups run in ascending order: group g finishes
// reading its span before any higher-indexed group overwrites a result
// slot inside it.
func launchReducePass[T any](q *Queue, p *Policy, input, partial *Buffer[T], params passParams, unaryOp func(T) T, binaryOp func(T, T) T) error {
	groups := params.global / params.local

	cfg := LaunchConfig{
		Tag:     fmt.Sprintf("%s#pass%d", p.KernelName(), params.pass),
		Grid:    Dim1(groups),
		Block:   Dim1(params.local),
		Ordered: params.pass > 0,
	}

	firstPass := params.pass == 0
	src := partial.data
	if firstPass {
		src = input.data
	}
	dst := partial.data

	return LaunchGrouped(q, cfg, params.local, func(item WorkItem, scratch []T) {
		s := newReductionStrategy(item, params, scratch)
		if firstPass {
			s.ingest(src, unaryOp)
		} else {
			s.load(src)
		}
		s.combine(binaryOp)
		s.writeBack(dst)
	})
}
