package sylk

// passParams carries the quantities of one reduction pass. A value is
// built per pass and captured by that pass's kernel closure, so a pass
// never observes another pass's state.
type passParams struct {
	pass   int // Pass ordinal, 0-based
	length int // Live elements at the start of this pass
	local  int // Work-group size
	global int // Work-items launched this pass
}

// reductionStrategy stages one work-group's slice of a reduction pass
// through group-local scratch and folds it to a single value.
//
// A group covers input indices [base, base+valid). Work-items whose
// local index falls at or beyond valid are padding: they stage nothing
// and fold nothing, but still take part in every barrier round, since
// barriers must be reached by the whole group.
type reductionStrategy[T any] struct {
	item    WorkItem
	scratch []T
	base    int // First input index covered by this group
	valid   int // Staged element count in this group
}

// newReductionStrategy computes this item's group coverage for the pass.
func newReductionStrategy[T any](item WorkItem, p passParams, scratch []T) reductionStrategy[T] {
	base := item.Group.X * p.local
	valid := p.length - base
	if valid > p.local {
		valid = p.local
	}
	if valid < 0 {
		valid = 0
	}
	return reductionStrategy[T]{
		item:    item,
		scratch: scratch,
		base:    base,
		valid:   valid,
	}
}

// ingest stages this item's element into scratch, applying transform on
// the way in. Out-of-range items stage nothing.
func (s *reductionStrategy[T]) ingest(src []T, transform func(T) T) {
	lid := s.item.Local.X
	if lid < s.valid {
		s.scratch[lid] = transform(src[s.base+lid])
	}
}

// load stages this item's element into scratch unchanged. Used by every
// pass after the first, which reads already-transformed partials.
func (s *reductionStrategy[T]) load(src []T) {
	lid := s.item.Local.X
	if lid < s.valid {
		s.scratch[lid] = src[s.base+lid]
	}
}

// combine folds the group's staged elements into scratch[0]. Adjacent
// elements pair up with doubling stride, which keeps operands in slice
// order: combine must be associative but need not be commutative. Each
// round opens with a group barrier so the previous round's writes (and
// for the first round, the staging writes) are complete before anyone
// reads them.
func (s *reductionStrategy[T]) combine(combine func(T, T) T) {
	lid := s.item.Local.X
	for stride := 1; stride < s.valid; stride *= 2 {
		s.item.Barrier()
		if s.item.barrier.Broken() {
			// A sibling died. The group's result is void and scratch
			// accesses are no longer ordered by the barrier.
			return
		}
		if lid%(2*stride) == 0 && lid+stride < s.valid {
			s.scratch[lid] = combine(s.scratch[lid], s.scratch[lid+stride])
		}
	}
}

// writeBack stores the group's folded value into dst at the group's
// index. Only the group leader writes; a group with nothing staged
// writes nothing.
func (s *reductionStrategy[T]) writeBack(dst []T) {
	if s.item.Local.X == 0 && s.valid > 0 {
		dst[s.item.Group.X] = s.scratch[0]
	}
}
