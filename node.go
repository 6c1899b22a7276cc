package sheaf

import "unsafe"

// node is the unit of stack storage. Exactly one of {on the stack, on a
// local free-list, in transit via a deferred ring, handed to the caller as
// a popped value} is true of any node at any moment. next and nextFree
// occupy distinct fields (rather than sharing storage, as the C original
// does via a union) because Go has no unions; the two are never read in the
// wrong state regardless.
type node struct {
	nextFree *node  // valid only while free
	next     *node  // valid only while linked into the stack
	owner    uint32 // slot that carved this node; set once, never mutated
	value    uint64
}

var nodeSize = unsafe.Sizeof(node{})

// carveNodes interprets a freshly allocated, pageSize-byte, pageSize-aligned
// page as an array of pageSize/sizeof(node) nodes linked through nextFree,
// tags each with owner, and returns the head of the resulting free chain.
// The page's base address equals the address of the first node, which is
// the property teardown's page-alignment test relies on.
func carveNodes(page unsafe.Pointer, pageSize uintptr, owner uint32) *node {
	count := pageSize / nodeSize
	if count == 0 {
		return nil
	}
	var head, prev *node
	for i := uintptr(0); i < count; i++ {
		n := (*node)(unsafe.Add(page, i*nodeSize))
		n.owner = owner
		n.next = nil
		if prev == nil {
			head = n
		} else {
			prev.nextFree = n
		}
		prev = n
	}
	prev.nextFree = nil
	return head
}

func isPageAligned(n *node, pageSize uintptr) bool {
	addr := uintptr(unsafe.Pointer(n))
	return addr&(pageSize-1) == 0
}
