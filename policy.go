package sylk

// Policy is an execution policy: it names a kernel and binds it to the
// queue (and therefore the device) that will run it. The name keys the
// device's kernel registry; multi-pass algorithms derive one tag per
// pass from it.
type Policy struct {
	queue *Queue
	name  string
}

// NewPolicy creates a policy for the given queue and kernel name.
// A nil queue binds to the default queue; an empty name becomes
// "kernel".
func NewPolicy(q *Queue, name string) *Policy {
	if q == nil {
		q = defaultQueue
	}
	if name == "" {
		name = "kernel"
	}
	return &Policy{queue: q, name: name}
}

// DefaultPolicy creates a policy on the default queue.
func DefaultPolicy(name string) *Policy {
	return NewPolicy(nil, name)
}

// Queue returns the queue this policy submits to.
func (p *Policy) Queue() *Queue {
	return p.queue
}

// Device returns the device this policy executes on.
func (p *Policy) Device() *Device {
	return p.queue.Device()
}

// KernelName returns the policy's kernel name.
func (p *Policy) KernelName() string {
	return p.name
}

// CalculateGlobalSize returns the smallest multiple of local that is
// greater than or equal to length. Every kernel pass launches this many
// work-items so that groups are always full; items beyond length are
// padding and stage nothing. local must be at least 1.
func (p *Policy) CalculateGlobalSize(length, local int) int {
	return (length + local - 1) / local * local
}
