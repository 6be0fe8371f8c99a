package sylk

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
)

// Barrier synchronizes a fixed number of parties at a rendezvous point.
// It is reusable: once every party has arrived, the barrier opens for
// the next round.
//
// The implementation is a centralized monotonic arrival counter.
// Arrivals are grouped into generations of size parties; a waiter spins
// with adaptive backoff (iox.Backoff) until the count reaches the end
// of its own generation. One instance supports 2^32-1 arrivals in
// total, far beyond what a single kernel launch performs.
type Barrier struct {
	parties uint32
	arrived atomix.Uint32
	broken  atomix.Uint32
}

// NewBarrier creates a barrier for the given number of parties.
// Fewer than one party is treated as one.
func NewBarrier(parties int) *Barrier {
	if parties < 1 {
		parties = 1
	}
	return &Barrier{parties: uint32(parties)}
}

// Wait blocks until all parties have called Wait for the current round.
// A broken barrier releases waiters immediately.
func (b *Barrier) Wait() {
	if b.parties == 1 || b.broken.Load() != 0 {
		return
	}
	n := b.arrived.Add(1)
	target := (n-1)/b.parties*b.parties + b.parties
	var bo iox.Backoff
	for b.arrived.Load() < target {
		if b.broken.Load() != 0 {
			return
		}
		bo.Wait()
	}
}

// Break releases current and future waiters unconditionally. A party
// that dies before the rendezvous must break the barrier, otherwise
// the rest of its group would spin forever on a count that can no
// longer be reached.
func (b *Barrier) Break() {
	b.broken.Add(1)
}

// Broken reports whether the barrier has been broken.
func (b *Barrier) Broken() bool {
	return b.broken.Load() != 0
}
