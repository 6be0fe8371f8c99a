package sylk

import (
	"sort"
	"sync"
	"time"
)

// KernelMetrics tracks launch statistics for one kernel tag.
type KernelMetrics struct {
	// Total number of launches
	Launches int64

	// Total work-items executed
	WorkItems int64

	// Total work-groups executed
	WorkGroups int64

	// Total execution time
	TotalDuration time.Duration

	// Number of failed launches
	ErrorCount int64

	// Last error (if any)
	LastError error

	// Timestamp of last launch
	LastLaunch time.Time
}

// KernelRegistry records launch metrics keyed by kernel tag. Every
// grouped launch on a device lands here under the tag in its launch
// configuration, so multi-pass algorithms show up one entry per pass.
type KernelRegistry struct {
	mu      sync.RWMutex
	kernels map[string]*KernelMetrics
}

// NewKernelRegistry creates an empty kernel registry
func NewKernelRegistry() *KernelRegistry {
	return &KernelRegistry{
		kernels: make(map[string]*KernelMetrics),
	}
}

// record folds one launch into the tag's metrics.
func (r *KernelRegistry) record(tag string, items, groups int64, d time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.kernels[tag]
	if !ok {
		m = &KernelMetrics{}
		r.kernels[tag] = m
	}
	m.Launches++
	m.WorkItems += items
	m.WorkGroups += groups
	m.TotalDuration += d
	if err != nil {
		m.ErrorCount++
		m.LastError = err
	}
	m.LastLaunch = time.Now()
}

// Metrics returns a copy of the metrics for tag and whether the tag
// has been launched at all.
func (r *KernelRegistry) Metrics(tag string) (KernelMetrics, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.kernels[tag]
	if !ok {
		return KernelMetrics{}, false
	}
	return *m, true
}

// Tags returns the tags of all kernels launched so far, sorted.
func (r *KernelRegistry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]string, 0, len(r.kernels))
	for tag := range r.kernels {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// TotalLaunches returns the number of launches across all kernels.
func (r *KernelRegistry) TotalLaunches() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total int64
	for _, m := range r.kernels {
		total += m.Launches
	}
	return total
}
