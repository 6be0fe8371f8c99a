package sylk

// TransformChain composes element-wise stages into a single unary
// operator, typically for use as the transform of a TransformReduce.
// Stages apply in the order they were added.
//
// Example:
//
//	op := sylk.NewTransformChain[float64]().
//		MulScalar(2).
//		AddScalar(1).
//		Build()
//	// op(3) == 7
type TransformChain[T Number] struct {
	stages []func(T) T
}

// NewTransformChain creates a new transform chain builder
func NewTransformChain[T Number]() *TransformChain[T] {
	return &TransformChain[T]{
		stages: make([]func(T) T, 0, 4),
	}
}

// MulScalar appends scalar multiplication: x = x * alpha
func (tc *TransformChain[T]) MulScalar(alpha T) *TransformChain[T] {
	tc.stages = append(tc.stages, func(x T) T { return x * alpha })
	return tc
}

// AddScalar appends scalar addition: x = x + alpha
func (tc *TransformChain[T]) AddScalar(alpha T) *TransformChain[T] {
	tc.stages = append(tc.stages, func(x T) T { return x + alpha })
	return tc
}

// Square appends squaring: x = x * x
func (tc *TransformChain[T]) Square() *TransformChain[T] {
	tc.stages = append(tc.stages, func(x T) T { return x * x })
	return tc
}

// Abs appends absolute value. For unsigned element types it is the
// identity.
func (tc *TransformChain[T]) Abs() *TransformChain[T] {
	tc.stages = append(tc.stages, func(x T) T {
		if x < 0 {
			return -x
		}
		return x
	})
	return tc
}

// Negate appends negation: x = -x
func (tc *TransformChain[T]) Negate() *TransformChain[T] {
	tc.stages = append(tc.stages, func(x T) T { return -x })
	return tc
}

// Fn appends a custom stage
func (tc *TransformChain[T]) Fn(fn func(T) T) *TransformChain[T] {
	tc.stages = append(tc.stages, fn)
	return tc
}

// Build returns the composed operator. An empty chain builds the
// identity.
func (tc *TransformChain[T]) Build() func(T) T {
	stages := make([]func(T) T, len(tc.stages))
	copy(stages, tc.stages)
	return func(x T) T {
		for _, stage := range stages {
			x = stage(x)
		}
		return x
	}
}
