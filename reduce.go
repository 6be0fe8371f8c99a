package sylk

// Convenience reductions over TransformReduce. These are the building
// blocks callers reach for most: sums, products, extrema, and norms,
// each a specialization of the same device tree reduction.

// Number is the element constraint for the numeric convenience
// reductions.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

func identity[T any](x T) T { return x }

func square[T Number](x T) T { return x * x }

func add[T Number](a, b T) T { return a + b }

func mul[T Number](a, b T) T { return a * b }

func maxOf[T Number](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func minOf[T Number](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// Sum computes the sum of all elements of in. An empty input sums to
// zero.
func Sum[T Number](p *Policy, in []T) (T, error) {
	var zero T
	return TransformReduce(p, in, identity[T], zero, add[T])
}

// Product computes the product of all elements of in. An empty input
// multiplies to one.
func Product[T Number](p *Policy, in []T) (T, error) {
	return TransformReduce(p, in, identity[T], T(1), mul[T])
}

// SumSquares computes the sum of squares of all elements.
// Useful for L2 norm computation.
func SumSquares[T Number](p *Policy, in []T) (T, error) {
	var zero T
	return TransformReduce(p, in, square[T], zero, add[T])
}

// Max returns the largest element of in. The first element seeds the
// reduction, so no sentinel extremes are needed; an empty input is an
// invalid argument error.
func Max[T Number](p *Policy, in []T) (T, error) {
	if len(in) == 0 {
		var zero T
		return zero, ErrEmptyInput
	}
	return TransformReduce(p, in[1:], identity[T], in[0], maxOf[T])
}

// Min returns the smallest element of in. An empty input is an invalid
// argument error.
func Min[T Number](p *Policy, in []T) (T, error) {
	if len(in) == 0 {
		var zero T
		return zero, ErrEmptyInput
	}
	return TransformReduce(p, in[1:], identity[T], in[0], minOf[T])
}

// Mean computes the arithmetic mean of all elements as a float64.
// An empty input is an invalid argument error.
func Mean[T Number](p *Policy, in []T) (float64, error) {
	if len(in) == 0 {
		return 0, ErrEmptyInput
	}
	total, err := Sum(p, in)
	if err != nil {
		return 0, err
	}
	return float64(total) / float64(len(in)), nil
}
