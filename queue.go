package sylk

import (
	"sync"

	"code.hybscloud.com/atomix"
)

// queueCounter assigns monotonically increasing queue identifiers.
var queueCounter atomix.Uint32

// Queue is an in-order submission channel to a device. Submitted tasks
// execute asynchronously on a worker goroutine in submission order;
// tasks on different queues may execute concurrently.
//
// The first failure recorded by any task is sticky: Wait returns it,
// and it stays visible through Err until the queue is discarded. Work
// submitted after a failure still runs; callers that treat failures as
// fatal stop submitting once Wait reports one.
type Queue struct {
	id     uint32
	device *Device
	tasks  chan func()
	done   chan struct{}
	wg     sync.WaitGroup

	closeMu sync.RWMutex
	closed  bool

	errMu sync.Mutex
	err   error
}

// NewQueue creates an in-order queue bound to the given device.
// A nil device binds to the default device.
func NewQueue(dev *Device) *Queue {
	if dev == nil {
		dev = defaultDevice
	}
	q := &Queue{
		id:     queueCounter.Add(1),
		device: dev,
		tasks:  make(chan func(), DefaultQueueDepth),
		done:   make(chan struct{}),
	}

	// Start worker goroutine for the queue
	go q.worker()

	return q
}

// ID returns the queue's serial number.
func (q *Queue) ID() uint32 {
	return q.id
}

// Device returns the device this queue submits to.
func (q *Queue) Device() *Device {
	return q.device
}

// worker processes tasks for a queue
func (q *Queue) worker() {
	for task := range q.tasks {
		task()
		q.wg.Done()
	}
	close(q.done)
}

// Submit adds a task to the queue. It returns ErrQueueClosed if the
// queue has been closed.
func (q *Queue) Submit(task func()) error {
	q.closeMu.RLock()
	defer q.closeMu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	q.wg.Add(1)
	q.tasks <- task
	return nil
}

// Wait blocks until every submitted task has completed, then returns
// the first error any of them recorded.
func (q *Queue) Wait() error {
	q.wg.Wait()
	return q.Err()
}

// Err returns the first error recorded on the queue, or nil.
func (q *Queue) Err() error {
	q.errMu.Lock()
	defer q.errMu.Unlock()
	return q.err
}

// setErr records err as the queue's sticky error. Later errors are
// dropped; the first failure is the one that matters.
func (q *Queue) setErr(err error) {
	q.errMu.Lock()
	if q.err == nil {
		q.err = err
	}
	q.errMu.Unlock()
}

// Close drains outstanding work, shuts down the worker goroutine, and
// returns the queue's sticky error. Submissions after Close fail with
// ErrQueueClosed. Closing twice returns ErrQueueClosed.
func (q *Queue) Close() error {
	q.closeMu.Lock()
	if q.closed {
		q.closeMu.Unlock()
		return ErrQueueClosed
	}
	q.closed = true
	q.closeMu.Unlock()

	close(q.tasks)
	<-q.done
	return q.Err()
}
