package sheaf

import "sync/atomic"

// Metrics is a point-in-time snapshot of a Stack's internal counters. It
// costs one atomic load per field and is safe to call concurrently with
// Push/Pop.
type Metrics struct {
	// PageGrowths counts how many times any slot carved a freshly
	// allocated page because its free-list and deferred ring were both
	// empty.
	PageGrowths uint64
	// PagesFreed counts pages returned to the PageProvider, across Init
	// rollback and Release.
	PagesFreed uint64
	// HeadCASRetries counts failed compare-and-swap attempts against the
	// stack head across all Push/Pop calls — a proxy for contention.
	HeadCASRetries uint64
}

type stackCounters struct {
	pageGrowths    atomic.Uint64
	pagesFreed     atomic.Uint64
	headCASRetries atomic.Uint64
}

// Metrics returns a snapshot of s's counters. Calling it on a nil Stack
// returns the zero value.
func (s *Stack) Metrics() Metrics {
	if s == nil {
		return Metrics{}
	}
	return Metrics{
		PageGrowths:    s.counters.pageGrowths.Load(),
		PagesFreed:     s.counters.pagesFreed.Load(),
		HeadCASRetries: s.counters.headCASRetries.Load(),
	}
}

// countingRelax wraps relax so every back-off (i.e. every failed CAS retry)
// is counted, without changing the back-off behavior itself.
func countingRelax(relax relaxFunc, counter *atomic.Uint64) relaxFunc {
	return func() {
		counter.Add(1)
		relax()
	}
}
