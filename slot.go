package sheaf

import (
	"sync/atomic"
	"unsafe"
)

// slot is a per-CPU bookkeeping structure: a local free-list, exclusively
// mutated by its owner, and a deferred ring used by every other slot to
// hand back nodes this slot carved. Identified by a small caller-chosen
// integer index.
type slot struct {
	idx     uint32
	head    *node // local free-list head; owner-only mutation
	ring    *ring
	pa      PageProvider
	pageSz  uintptr
	relax   relaxFunc
	growths *atomic.Uint64 // shared counter on the owning Stack
}

func (s *slot) init(idx uint32, pa PageProvider, pageSz uintptr, relax relaxFunc, growths *atomic.Uint64) error {
	s.idx = idx
	s.pa = pa
	s.pageSz = pageSz
	s.relax = relax
	s.growths = growths

	ringPage := allocPage(pa)
	if ringPage == nil {
		return ErrOutOfMemory
	}
	s.ring = newRing(ringPage, pageSz)

	firstPage := allocPage(pa)
	if firstPage == nil {
		freePage(pa, ringPage)
		return ErrOutOfMemory
	}
	s.head = carveNodes(firstPage, pageSz, idx)
	return nil
}

// freeLocal pushes node onto this slot's own free-list. Must only be
// called by the slot's owner (or on its behalf while the slot is otherwise
// quiesced, as during teardown).
func (s *slot) freeLocal(n *node) {
	n.nextFree = s.head
	s.head = n
}

// freeRemote is invoked by slot s (the popper) to return node to its owner
// slot. If the owner's ring is full, s absorbs the node onto its own
// free-list instead of blocking or growing the ring (I1 holds; owner
// becomes stale but harmless, per the design's ring-overflow relaxation).
func (s *slot) freeRemote(owner *slot, n *node) {
	if owner.ring.tryDeposit(n, s.relax) {
		return
	}
	s.freeLocal(n)
}

// drainDeferred moves every node waiting in this slot's ring onto its local
// free-list. Called by the owner before growing by a new page.
func (s *slot) drainDeferred() {
	s.ring.drain(s.relax, s.freeLocal)
}

// allocate returns a node from this slot's local pool: the free-list if
// non-empty, else after draining the deferred ring, else after carving a
// freshly allocated page.
func (s *slot) allocate() (*node, error) {
	if s.head == nil {
		s.drainDeferred()
	}
	if s.head == nil {
		page := allocPage(s.pa)
		if page == nil {
			return nil, ErrOutOfMemory
		}
		s.head = carveNodes(page, s.pageSz, s.idx)
		if s.growths != nil {
			s.growths.Add(1)
		}
	}
	n := s.head
	s.head = n.nextFree
	n.nextFree = nil
	return n, nil
}

// ringPageBase returns the raw page backing this slot's ring, for teardown
// and for accounting-page reuse.
func (s *slot) ringPageBase() unsafe.Pointer {
	if s.ring == nil || len(s.ring.slots) == 0 {
		return nil
	}
	return unsafe.Pointer(&s.ring.slots[0])
}
