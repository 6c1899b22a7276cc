package sheaf

import "unsafe"

// Stack is a concurrent lock-free LIFO stack with a per-CPU node-allocation
// substrate. The zero value is not usable; construct one with New.
type Stack struct {
	head      stackHead
	slots     []slot
	pa        PageProvider
	pageSz    uintptr
	relax     relaxFunc // used for ring CAS retries
	headRelax relaxFunc // used for head CAS retries; counts into Metrics
	logger    logWrapper
	counters  stackCounters
}

// New initializes a Stack with the given number of per-CPU slots, each
// drawing pages from provider. slots must be positive and small enough that
// a C-style per-CPU array of this many slots would still fit in one page —
// the spec's "slots bounded by P/sizeof(Slot)" capacity limit, preserved
// here as a validation rule even though, per DESIGN.md, the slot array
// itself is ordinary Go-managed memory rather than memory carved from a
// provider page.
func New(slots int, provider PageProvider, opts ...Option) (*Stack, error) {
	if slots <= 0 {
		return nil, ErrInvalidArgument
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.pageSize == 0 || cfg.pageSize&(cfg.pageSize-1) != 0 {
		return nil, ErrInvalidArgument
	}

	var dummySlot slot
	slotSize := unsafe.Sizeof(dummySlot)
	if uintptr(slots)*slotSize > cfg.pageSize {
		return nil, ErrOutOfMemory
	}

	s := &Stack{
		head:   newStackHead(),
		pa:     provider,
		pageSz: cfg.pageSize,
		relax:  newRelax(cfg.relax),
		logger: logWrapper{cfg.logger},
	}
	s.headRelax = countingRelax(s.relax, &s.counters.headCASRetries)
	s.slots = make([]slot, slots)

	for i := range s.slots {
		if err := s.slots[i].init(uint32(i), provider, cfg.pageSize, s.relax, &s.counters.pageGrowths); err != nil {
			s.rollback(i)
			return nil, err
		}
	}

	return s, nil
}

// rollback frees the ring and first node pages of every slot initialized
// before index n failed. Used only from a failed New.
func (s *Stack) rollback(n int) {
	for i := 0; i < n; i++ {
		sl := &s.slots[i]
		s.free(sl.ringPageBase())
		s.freeFreeList(sl.head)
	}
}

// freeFreeList walks a free-list freeing every page-aligned node found in
// it; used during rollback, where (unlike full teardown) exactly one slot's
// chain needs walking and no cross-slot migration has happened yet.
func (s *Stack) freeFreeList(head *node) {
	for head != nil {
		next := head.nextFree
		if isPageAligned(head, s.pageSz) {
			s.free(unsafe.Pointer(head))
		}
		head = next
	}
}

// free returns p to the page provider and counts it, tolerating a nil p.
func (s *Stack) free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	freePage(s.pa, p)
	s.counters.pagesFreed.Add(1)
}

// Push allocates a node from slot's local pool, stores value in it, and
// links it onto the stack head. The node's owner is not rewritten: it stays
// the slot that carved the node, which differs from slotIdx for a node this
// slot absorbed when its owner's ring was full.
func (s *Stack) Push(value uint64, slotIdx int) error {
	if s == nil || slotIdx < 0 || slotIdx >= len(s.slots) {
		return ErrInvalidArgument
	}

	sl := &s.slots[slotIdx]
	n, err := sl.allocate()
	if err != nil {
		return err
	}

	n.value = value
	s.head.pushLink(n, s.headRelax)
	return nil
}

// Pop unlinks the current top of the stack and returns its value. The node
// is returned to its owning slot: locally if the owner is slotIdx, or via
// the owner's deferred ring otherwise; if that ring is full, the node goes
// onto slotIdx's own free-list instead.
func (s *Stack) Pop(slotIdx int) (uint64, error) {
	if s == nil || slotIdx < 0 || slotIdx >= len(s.slots) {
		return 0, ErrInvalidArgument
	}

	n, ok := s.head.popLink(s.headRelax)
	if !ok {
		return 0, ErrEmpty
	}

	value := n.value
	popper := &s.slots[slotIdx]
	if n.owner == uint32(slotIdx) {
		popper.freeLocal(n)
	} else {
		popper.freeRemote(&s.slots[n.owner], n)
	}
	return value, nil
}

// Release drains the stack, drains every slot's deferred ring, and returns
// every page the stack ever allocated to the page provider. It is a no-op
// on a nil Stack.
func (s *Stack) Release() {
	if s == nil {
		return
	}
	for {
		if _, err := s.Pop(0); err != nil {
			break
		}
	}
	s.teardown()
}
