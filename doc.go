// Package sheaf implements a concurrent lock-free LIFO stack backed by a
// per-CPU node-allocation substrate.
//
// Values are pushed and popped tagged with a caller-chosen slot index (one
// per CPU or worker thread, by convention). Node memory is carved out of
// pages obtained from a caller-supplied PageProvider and is never returned to
// that provider until Release: a node freed by any slot goes back onto a
// local free-list if the popping slot also owns it, or into the owner's
// many-producer/single-consumer deferred ring otherwise (onto the popping
// slot's own free-list when that ring is full). No operation
// acquires a lock or calls into a general-purpose allocator on the hot path.
package sheaf
