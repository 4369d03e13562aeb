// Package workerpool implements spec.md §4.3/§4.7's worker-slot array: a
// fixed set of 16 slots, each pairing a client socket descriptor with an
// active flag, plus the spawn primitive that starts a worker goroutine
// pinned to its own kernel thread.
//
// See SPEC_FULL.md §0 for why this is goroutines rather than a hand-rolled
// clone(2) trampoline: the externally observable contract — a slot's active
// flag set before the worker starts and cleared before it exits, a real
// kernel TID in the thread registry, tgkill-reachable shutdown — is
// preserved exactly; only the spawn mechanism changed.
package workerpool

import (
	"sync/atomic"

	"reshell/internal/procstate"
	"reshell/internal/sysx"
)

// Capacity is the fixed number of worker slots (spec.md §3).
const Capacity = 16

// ScratchSize is the size of the mmap-backed scratch buffer each slot
// carries, exposed through Slot.Scratch. The httpd frame loop allocates its
// own read buffer and does not use it.
const ScratchSize = 4096

// Slot is one worker-slot record. The active flag is the allocation
// invariant from spec.md §3: it is set strictly before the worker goroutine
// starts and cleared strictly before the worker returns.
type Slot struct {
	idx     int
	active  atomic.Bool
	fd      atomic.Int64
	scratch []byte
}

// Index returns the slot's position in the pool, stable for the slot's
// lifetime.
func (s *Slot) Index() int { return s.idx }

// FD returns the client socket descriptor assigned to this slot. Read with
// acquire ordering relative to the release-ordered store in Allocate the parent
// performed before spawning the worker (spec.md §4.3, §5).
func (s *Slot) FD() int {
	return int(s.fd.Load())
}

// Scratch returns the slot's mmap-backed scratch buffer.
func (s *Slot) Scratch() []byte {
	return s.scratch
}

// Pool is the fixed 16-slot worker array.
type Pool struct {
	slots [Capacity]*Slot
}

// New allocates the pool and its slots' backing scratch storage.
func New() (*Pool, error) {
	p := &Pool{}
	for i := range p.slots {
		scratch, err := sysx.Mmap(ScratchSize)
		if err != nil {
			for j := 0; j < i; j++ {
				sysx.Munmap(p.slots[j].scratch)
			}
			return nil, err
		}
		p.slots[i] = &Slot{idx: i, scratch: scratch}
		p.slots[i].fd.Store(-1)
	}
	return p, nil
}

// Allocate scans for the first inactive slot, flips its active flag with
// release ordering, and assigns fd. Returns nil, false if no slot is free
// (spec.md §4.7: allocation failure surfaces to the caller, which must
// close the connection — Testable Scenario 6, the 17th connection).
func (p *Pool) Allocate(fd int) (*Slot, bool) {
	for _, s := range p.slots {
		if s.active.CompareAndSwap(false, true) {
			s.fd.Store(int64(fd))
			return s, true
		}
	}
	return nil, false
}

// Free clears the slot's active flag, returning it to the pool. Must be
// called strictly before the owning worker goroutine exits (spec.md §3).
func (p *Pool) Free(s *Slot) {
	s.fd.Store(-1)
	s.active.Store(false)
}

// ActiveCount returns the number of currently active slots — the "A" in the
// `threads` built-in's "Active threads: A / T" report (spec.md §4.8).
func (p *Pool) ActiveCount() int {
	n := 0
	for _, s := range p.slots {
		if s.active.Load() {
			n++
		}
	}
	return n
}

// Spawn starts a worker goroutine for slot, pinned to its own OS thread so
// its kernel TID (registered in registry for shutdown fan-out) is stable
// for the worker's lifetime. fn runs on that pinned thread; Spawn returns
// immediately without waiting for fn to finish. The slot is freed
// automatically when fn returns, regardless of how it returns.
func Spawn(pool *Pool, slot *Slot, registry *procstate.ThreadRegistry, fn func(*Slot)) {
	go func() {
		defer pool.Free(slot)

		sysx.LockOSThread()
		tid := sysx.Gettid()
		registry.Register(tid)

		fn(slot)
	}()
}
