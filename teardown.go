package sheaf

import (
	"unsafe"

	"github.com/go-kit/log/level"
)

// teardown reclaims every page the stack ever allocated, without ever
// allocating a scratch page of its own. Nodes may have migrated across
// slots (a popper absorbs a node onto its own free-list when the owner's
// ring is full), so no single slot's free-list enumerates its own pages;
// the algorithm instead repurposes each slot's already-drained ring
// page as an "accounting page" — an array of pointers — and records every
// page-aligned free-list node into it before freeing anything, exactly as
// percpu_release does in the C original.
func (s *Stack) teardown() {
	for i := range s.slots {
		s.slots[i].drainDeferred()
	}

	pointersPerPage := int(s.pageSz / unsafe.Sizeof(uintptr(0)))

	// accPages is the number of ring pages repurposed as accounting pages
	// so far (always <= len(s.slots)); counts[k] is how many pointers are
	// recorded in accounting page k. Every accounting page but the last is
	// always full (pointersPerPage).
	accPages := 1
	counts := make([]int, 1, len(s.slots))
	accounting := s.accountingPage(0)
	leaked := false

outer:
	for i := range s.slots {
		sl := &s.slots[i]
		for sl.head != nil {
			n := sl.head
			sl.head = n.nextFree

			if !isPageAligned(n, s.pageSz) {
				continue
			}

			cur := accPages - 1
			if counts[cur] >= pointersPerPage {
				if accPages >= len(s.slots) {
					leaked = true
					break outer
				}
				accounting = s.accountingPage(accPages)
				counts = append(counts, 0)
				accPages++
				cur = accPages - 1
			}

			accounting[counts[cur]] = unsafe.Pointer(n)
			counts[cur]++
		}
	}

	if leaked {
		level.Warn(s.logger.l).Log(
			"msg", "sheaf: accounting capacity exhausted during teardown, some pages were not reclaimed",
		)
	}

	for i := range s.slots {
		ringBase := s.slots[i].ringPageBase()
		if i < accPages {
			acc := s.accountingPage(i)
			for j := 0; j < counts[i]; j++ {
				s.free(acc[j])
			}
		}
		s.free(ringBase)
	}
}

// accountingPage reinterprets slot i's ring page (already logically
// retired by the drain above) as an array of pointersPerPage void
// pointers.
func (s *Stack) accountingPage(i int) []unsafe.Pointer {
	base := s.slots[i].ringPageBase()
	count := s.pageSz / unsafe.Sizeof(uintptr(0))
	return unsafe.Slice((*unsafe.Pointer)(base), count)
}
