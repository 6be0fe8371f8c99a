package sylk

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"

	"code.hybscloud.com/atomix"
	"gonum.org/v1/gonum/floats"
)

// newTestPolicy builds an isolated device/queue/policy triple so that
// registry and memory assertions cannot observe other tests' launches.
func newTestPolicy(t testing.TB, maxGroupSize int, name string) (*Policy, *Device) {
	t.Helper()
	dev := DeviceOrFail(t, maxGroupSize)
	q := NewQueue(dev)
	t.Cleanup(func() { q.Close() })
	return NewPolicy(q, name), dev
}

// Test a squared sum with a small group size, forcing two passes
func TestTransformReduceSquareSum(t *testing.T) {
	p, _ := newTestPolicy(t, 4, "square_sum")

	in := []int{1, 2, 3, 4, 5, 6, 7, 8}
	got := TransformReduceOrFail(t, p, in,
		func(x int) int { return x * x },
		0,
		func(a, b int) int { return a + b })

	if got != 204 {
		t.Errorf("Sum of squares = %d, want 204", got)
	}
}

// Test that the initial value folds in as the right-hand operand
func TestTransformReduceSeedFolding(t *testing.T) {
	p, _ := newTestPolicy(t, 8, "seeded_sum")

	in := []int{1, 2, 3, 4, 5, 6, 7, 8}
	got := TransformReduceOrFail(t, p, in,
		func(x int) int { return x },
		100,
		func(a, b int) int { return a + b })

	if got != 136 {
		t.Errorf("Seeded sum = %d, want 136", got)
	}
}

// Empty input returns the initial value without touching the device
func TestTransformReduceEmptyInput(t *testing.T) {
	p, dev := newTestPolicy(t, 8, "empty")

	got, err := TransformReduce(p, []int(nil),
		func(x int) int { return x },
		42,
		func(a, b int) int { return a + b })
	if err != nil {
		t.Fatalf("TransformReduce on empty input failed: %v", err)
	}
	if got != 42 {
		t.Errorf("Empty reduction = %d, want init 42", got)
	}

	if n := dev.Registry().TotalLaunches(); n != 0 {
		t.Errorf("Empty input launched %d kernels, want 0", n)
	}
	if stats := dev.MemStats(); stats.TotalAllocs != 0 {
		t.Errorf("Empty input allocated %d buffers, want 0", stats.TotalAllocs)
	}
}

// A single element still runs one device pass with its transform
func TestTransformReduceSingleElement(t *testing.T) {
	p, dev := newTestPolicy(t, 8, "single")

	got := TransformReduceOrFail(t, p, []int{7},
		func(x int) int { return x + 1 },
		2,
		func(a, b int) int { return a * b })

	if got != 16 {
		t.Errorf("Single element reduction = %d, want 16", got)
	}
	if n := dev.Registry().TotalLaunches(); n != 1 {
		t.Errorf("Single element launched %d passes, want 1", n)
	}
}

// Test a reduction deep enough to need five passes
func TestTransformReduceMultiPass(t *testing.T) {
	p, dev := newTestPolicy(t, 8, "deep_sum")

	const n = 5000
	in := make([]int, n)
	for i := range in {
		in[i] = i + 1
	}

	got := TransformReduceOrFail(t, p, in,
		func(x int) int { return x },
		0,
		func(a, b int) int { return a + b })

	if want := n * (n + 1) / 2; got != want {
		t.Errorf("Sum = %d, want %d", got, want)
	}

	// Lengths shrink 5000 -> 625 -> 79 -> 10 -> 2 -> 1
	tags := dev.Registry().Tags()
	if len(tags) != 5 {
		t.Fatalf("Pass tags = %v, want 5 passes", tags)
	}
	for pass := 0; pass < 5; pass++ {
		tag := fmt.Sprintf("deep_sum#pass%d", pass)
		m, ok := dev.Registry().Metrics(tag)
		if !ok {
			t.Fatalf("No metrics recorded for %s", tag)
		}
		if m.Launches != 1 {
			t.Errorf("%s launched %d times, want 1", tag, m.Launches)
		}
	}
}

// Remainder groups must contribute: 10 elements in groups of 4 leave a
// half-full group whose partial cannot be dropped
func TestTransformReduceRemainderGroups(t *testing.T) {
	p, dev := newTestPolicy(t, 4, "remainder")

	in := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	got := TransformReduceOrFail(t, p, in,
		func(x int) int { return x },
		0,
		func(a, b int) int { return a + b })

	if got != 55 {
		t.Errorf("Sum = %d, want 55", got)
	}

	// 10 -> 3 -> 1: two passes, the first over 3 groups of 4
	m, ok := dev.Registry().Metrics("remainder#pass0")
	if !ok {
		t.Fatal("No metrics for first pass")
	}
	if m.WorkGroups != 3 {
		t.Errorf("First pass ran %d groups, want 3", m.WorkGroups)
	}
	if m.WorkItems != 12 {
		t.Errorf("First pass ran %d work-items, want 12", m.WorkItems)
	}
	if _, ok := dev.Registry().Metrics("remainder#pass2"); ok {
		t.Error("Unexpected third pass")
	}
}

// The result must not depend on the device's work-group size
func TestTransformReduceLocalSizeInvariance(t *testing.T) {
	const n = 100
	rng := rand.New(rand.NewSource(42))
	in := make([]int, n)
	for i := range in {
		in[i] = rng.Intn(101) - 50
	}

	want := 0
	for _, v := range in {
		want += v
	}

	for _, local := range []int{2, 3, 4, 7, 8, 16, 32, 64, 100, 256} {
		p, _ := newTestPolicy(t, local, "invariant_sum")
		got := TransformReduceOrFail(t, p, in,
			func(x int) int { return x },
			0,
			func(a, b int) int { return a + b })
		if got != want {
			t.Errorf("Group size %d: sum = %d, want %d", local, got, want)
		}
	}
}

// A non-commutative operator catches any operand reordering: string
// concatenation over many passes must reproduce the exact input order
func TestTransformReduceNonCommutative(t *testing.T) {
	const n = 300
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%03d.", i)
	}
	want := strings.Join(parts, "")

	for _, local := range []int{2, 3, 4, 16} {
		p, _ := newTestPolicy(t, local, "concat")
		got := TransformReduceOrFail(t, p, parts,
			func(s string) string { return s },
			"",
			func(a, b string) string { return a + b })
		if got != want {
			t.Errorf("Group size %d: concatenation out of order", local)
		}
	}
}

// The transform applies exactly once per input element, on the first
// pass only
func TestTransformReduceTransformOncePerElement(t *testing.T) {
	p, _ := newTestPolicy(t, 4, "counted")

	const n = 137
	in := make([]int, n)
	for i := range in {
		in[i] = i
	}

	var calls atomix.Uint32
	got := TransformReduceOrFail(t, p, in,
		func(x int) int {
			calls.Add(1)
			return x
		},
		0,
		func(a, b int) int { return a + b })

	if want := n * (n - 1) / 2; got != want {
		t.Errorf("Sum = %d, want %d", got, want)
	}
	if c := calls.Load(); c != n {
		t.Errorf("Transform ran %d times, want %d", c, n)
	}
}

// Compare a large float sum against the sequential reference
func TestTransformReduceFloatSum(t *testing.T) {
	p, _ := newTestPolicy(t, 16, "float_sum")

	rng := rand.New(rand.NewSource(7))
	in := make([]float64, 10000)
	for i := range in {
		in[i] = rng.Float64()*2 - 1
	}

	got := TransformReduceOrFail(t, p, in,
		func(x float64) float64 { return x },
		0,
		func(a, b float64) float64 { return a + b })

	want := floats.Sum(in)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Sum = %g, want %g (diff %g)", got, want, got-want)
	}
}

// A larger run at a realistic group size
func TestTransformReduceLarge(t *testing.T) {
	p, _ := newTestPolicy(t, 256, "large_sum")

	const n = 100000
	in := make([]int64, n)
	for i := range in {
		in[i] = int64(i + 1)
	}

	got := TransformReduceOrFail(t, p, in,
		func(x int64) int64 { return x },
		0,
		func(a, b int64) int64 { return a + b })

	if want := int64(n) * (n + 1) / 2; got != want {
		t.Errorf("Sum = %d, want %d", got, want)
	}
}

// A panicking operator surfaces as an execution error and must not
// leak device buffers
func TestTransformReduceOperatorPanic(t *testing.T) {
	p, dev := newTestPolicy(t, 8, "panicky")

	in := make([]int, 100)
	for i := range in {
		in[i] = i
	}

	_, err := TransformReduce(p, in,
		func(x int) int {
			if x == 37 {
				panic("bad element")
			}
			return x
		},
		0,
		func(a, b int) int { return a + b })
	if err == nil {
		t.Fatal("Expected error from panicking operator")
	}
	if !IsExecutionError(err) {
		t.Errorf("Error type = %v, want execution error", err)
	}
	if stats := dev.MemStats(); stats.LiveBuffers != 0 {
		t.Errorf("%d buffers leaked after failed reduction", stats.LiveBuffers)
	}
}

// A queue with a recorded failure aborts further reductions at the
// first await
func TestTransformReducePoisonedQueue(t *testing.T) {
	p, _ := newTestPolicy(t, 8, "poisoned")
	q := p.Queue()

	LaunchOrFail(t, q, LaunchConfig{Tag: "poison", Grid: Dim1(1), Block: Dim1(1)}, 0,
		func(item WorkItem, scratch []int) { panic("poison") })
	if err := q.Wait(); err == nil {
		t.Fatal("Expected sticky error on queue")
	}

	_, err := TransformReduce(p, []int{1, 2, 3},
		func(x int) int { return x },
		0,
		func(a, b int) int { return a + b })
	if err == nil {
		t.Fatal("Expected poisoned queue to fail the reduction")
	}
	if !IsExecutionError(err) {
		t.Errorf("Error type = %v, want execution error", err)
	}
}

// Test argument validation
func TestTransformReduceNilOperator(t *testing.T) {
	p, _ := newTestPolicy(t, 8, "nil_ops")

	if _, err := TransformReduce(p, []int{1}, nil, 0, func(a, b int) int { return a + b }); err != ErrNilOperator {
		t.Errorf("Nil unary: err = %v, want ErrNilOperator", err)
	}
	if _, err := TransformReduce(p, []int{1}, func(x int) int { return x }, 0, nil); err != ErrNilOperator {
		t.Errorf("Nil binary: err = %v, want ErrNilOperator", err)
	}
}

// A nil policy runs on the default queue
func TestTransformReduceDefaultPolicy(t *testing.T) {
	in := make([]int, 1000)
	for i := range in {
		in[i] = i + 1
	}

	got := TransformReduceOrFail(t, nil, in,
		func(x int) int { return x },
		0,
		func(a, b int) int { return a + b })

	if got != 500500 {
		t.Errorf("Sum = %d, want 500500", got)
	}
}

// Benchmark the end-to-end reduction at several sizes
func BenchmarkTransformReduceSum(b *testing.B) {
	sizes := []int{1000, 10000, 100000}

	for _, n := range sizes {
		b.Run(fmt.Sprintf("Size_%d", n), func(b *testing.B) {
			rng := rand.New(rand.NewSource(1))
			in := make([]float64, n)
			for i := range in {
				in[i] = rng.Float64()
			}
			p := NewPolicy(NewQueue(nil), "bench_sum")

			b.ResetTimer()
			b.SetBytes(int64(n * 8))

			for i := 0; i < b.N; i++ {
				if _, err := TransformReduce(p, in,
					func(x float64) float64 { return x },
					0,
					func(a, b float64) float64 { return a + b }); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// Benchmark the transform path against the plain sum
func BenchmarkTransformReduceSumSquares(b *testing.B) {
	const n = 100000
	rng := rand.New(rand.NewSource(2))
	in := make([]float64, n)
	for i := range in {
		in[i] = rng.Float64()
	}
	p := NewPolicy(NewQueue(nil), "bench_sumsq")

	b.ResetTimer()
	b.SetBytes(int64(n * 8))

	for i := 0; i < b.N; i++ {
		if _, err := TransformReduce(p, in,
			func(x float64) float64 { return x * x },
			0,
			func(a, b float64) float64 { return a + b }); err != nil {
			b.Fatal(err)
		}
	}
}
