package sylk

import (
	"fmt"
	"sync"
	"time"
)

// LaunchConfig describes one grouped kernel dispatch.
type LaunchConfig struct {
	Tag     string // Kernel tag for registry metrics
	Grid    Dim3   // Work-groups per dispatch
	Block   Dim3   // Work-items per group
	Ordered bool   // Execute groups sequentially in ascending linear index
}

// LaunchGrouped submits a kernel that executes body once per work-item
// across cfg.Grid work-groups of cfg.Block items. Each group gets a
// fresh group-local scratch slice of scratchLen elements and a group
// barrier; every item of a group runs on its own goroutine, so
// WorkItem.Barrier has real rendezvous semantics within the group.
//
// Unordered launches spread groups across the device's cores, with each
// worker executing a contiguous span of groups. Ordered launches run
// groups one after another in ascending linear index; items within a
// group still run concurrently. Ordered mode is for kernels whose group
// g reads locations that a group g' > g writes, such as in-place
// shrinking reductions.
//
// A panic in body is confined to its launch: the item's group barrier
// breaks so sibling items cannot deadlock, the launch is recorded as
// failed, and the queue's Wait surfaces an execution error.
func LaunchGrouped[S any](q *Queue, cfg LaunchConfig, scratchLen int, body func(item WorkItem, scratch []S)) error {
	grid, block := cfg.Grid, cfg.Block
	gridSize := grid.Size()
	blockSize := block.Size()

	if blockSize < 1 {
		return NewInvalidArgError("LaunchGrouped", fmt.Sprintf("empty work-group %+v", block))
	}
	if scratchLen < 0 {
		return NewInvalidArgError("LaunchGrouped", fmt.Sprintf("negative scratch length %d", scratchLen))
	}

	// Zero-size grids submit an empty task to preserve queue ordering.
	if gridSize == 0 {
		return q.Submit(func() {})
	}

	tag := cfg.Tag
	if tag == "" {
		tag = "anonymous"
	}
	dev := q.Device()

	return q.Submit(func() {
		start := time.Now()

		var err error
		if cfg.Ordered {
			err = runGroupsOrdered(grid, block, scratchLen, body)
		} else {
			err = runGroupsParallel(dev.NumCores, grid, block, scratchLen, body)
		}
		if err != nil {
			err = NewExecutionError("LaunchGrouped", fmt.Sprintf("kernel %s failed", tag), err)
			q.setErr(err)
		}

		dev.registry.record(tag, int64(gridSize)*int64(blockSize), int64(gridSize), time.Since(start), err)
	})
}

// runGroupsParallel executes all groups of a launch, spreading
// contiguous spans of groups over up to numWorkers goroutines.
func runGroupsParallel[S any](numWorkers int, grid, block Dim3, scratchLen int, body func(WorkItem, []S)) error {
	gridSize := grid.Size()
	if gridSize < numWorkers {
		numWorkers = gridSize
	}
	groupsPerWorker := (gridSize + numWorkers - 1) / numWorkers

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	wg.Add(numWorkers)

	for workerID := 0; workerID < numWorkers; workerID++ {
		startGroup := workerID * groupsPerWorker
		endGroup := startGroup + groupsPerWorker
		if endGroup > gridSize {
			endGroup = gridSize
		}

		go func(startGroup, endGroup int) {
			defer wg.Done()
			for groupID := startGroup; groupID < endGroup; groupID++ {
				if err := runGroup(groupID, grid, block, scratchLen, body); err != nil {
					errMu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					errMu.Unlock()
				}
			}
		}(startGroup, endGroup)
	}

	wg.Wait()
	return firstErr
}

// runGroupsOrdered executes groups sequentially in ascending linear
// index. Group g+1 does not start until group g has fully completed.
func runGroupsOrdered[S any](grid, block Dim3, scratchLen int, body func(WorkItem, []S)) error {
	gridSize := grid.Size()
	var firstErr error
	for groupID := 0; groupID < gridSize; groupID++ {
		if err := runGroup(groupID, grid, block, scratchLen, body); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// runGroup executes one work-group: a fresh scratch slice, a fresh
// barrier, and one goroutine per work-item. It returns the first panic
// any item raised, with the group run to completion either way.
func runGroup[S any](groupID int, grid, block Dim3, scratchLen int, body func(WorkItem, []S)) error {
	blockSize := block.Size()
	groupIdx := linearTo3D(groupID, grid)
	scratch := make([]S, scratchLen)
	bar := NewBarrier(blockSize)

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	wg.Add(blockSize)

	for itemID := 0; itemID < blockSize; itemID++ {
		item := WorkItem{
			Group:    groupIdx,
			Local:    linearTo3D(itemID, block),
			GroupDim: block,
			GridDim:  grid,
			barrier:  bar,
		}

		go func(item WorkItem) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					// Siblings may be parked at the barrier this
					// item can no longer reach.
					bar.Break()
					errMu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("work-item %+v in group %+v panicked: %v", item.Local, item.Group, r)
					}
					errMu.Unlock()
				}
			}()
			body(item, scratch)
		}(item)
	}

	wg.Wait()
	return firstErr
}
