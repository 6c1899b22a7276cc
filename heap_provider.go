package sheaf

import "unsafe"

// HeapProvider is a PageProvider backed by ordinary Go heap memory. It
// exists as a ready-to-use reference implementation and as the vehicle for
// this module's own tests and benchmarks; production callers are expected
// to supply their own (memory-mapped, arena, or otherwise), per the spec's
// scope — the page provider's implementation is the caller's problem.
//
// Pages are allocated as oversized byte slices and returned aligned to
// PageSize, the same "overallocate, then align the returned pointer"
// technique used by arena allocators throughout the example pack. Each
// slice is kept reachable via a map keyed by the aligned address, so
// the garbage collector never reclaims a page sheaf still considers live;
// FreePage drops that reference.
type HeapProvider struct {
	PageSize uintptr

	mu   chan struct{} // 1-buffered channel used as a cheap mutex
	live map[uintptr][]byte
}

// NewHeapProvider constructs a HeapProvider handing out pageSize-aligned
// pages.
func NewHeapProvider(pageSize uintptr) *HeapProvider {
	hp := &HeapProvider{
		PageSize: pageSize,
		mu:       make(chan struct{}, 1),
		live:     make(map[uintptr][]byte),
	}
	hp.mu <- struct{}{}
	return hp
}

func (hp *HeapProvider) lock()   { <-hp.mu }
func (hp *HeapProvider) unlock() { hp.mu <- struct{}{} }

// AllocPage implements PageProvider.
func (hp *HeapProvider) AllocPage() unsafe.Pointer {
	raw := make([]byte, hp.PageSize*2)
	base := uintptr(unsafe.Pointer(&raw[0]))
	aligned := (base + hp.PageSize - 1) &^ (hp.PageSize - 1)

	hp.lock()
	hp.live[aligned] = raw
	hp.unlock()

	return unsafe.Pointer(aligned)
}

// FreePage implements PageProvider.
func (hp *HeapProvider) FreePage(p unsafe.Pointer) {
	if p == nil {
		return
	}
	addr := uintptr(p)
	hp.lock()
	delete(hp.live, addr)
	hp.unlock()
}

// Outstanding reports how many pages are currently allocated and not yet
// freed — used by tests to assert P4 (no leak on clean teardown).
func (hp *HeapProvider) Outstanding() int {
	hp.lock()
	defer hp.unlock()
	return len(hp.live)
}
