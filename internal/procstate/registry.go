package procstate

import (
	"sync/atomic"

	"reshell/internal/sysx"
)

// RegistryCapacity is the fixed number of thread IDs the registry can hold
// (spec.md §3).
const RegistryCapacity = 256

// ThreadRegistry records the kernel thread ID of every worker thread spawned
// by the process, for use only at shutdown (tgkill fan-out). Append-only
// during normal operation: spawns are serialized per role (the listener
// spawns workers one at a time), so a single mutationless atomic counter is
// sufficient to reserve a slot.
type ThreadRegistry struct {
	tids  [RegistryCapacity]int32
	count atomic.Int32
}

// NewThreadRegistry returns an empty registry.
func NewThreadRegistry() *ThreadRegistry {
	return &ThreadRegistry{}
}

// Register appends tid to the registry. Returns false if the registry is
// full; workerpool.Spawn ignores the result, so a worker registered after
// that point still runs but is not reached by Cleanup.
func (r *ThreadRegistry) Register(tid int) bool {
	idx := r.count.Add(1) - 1
	if int(idx) >= RegistryCapacity {
		r.count.Add(-1)
		return false
	}
	atomic.StoreInt32(&r.tids[idx], int32(tid))
	return true
}

// Count returns the number of registered thread IDs.
func (r *ThreadRegistry) Count() int {
	return int(r.count.Load())
}

// Cleanup issues tgkill(tgid, tid, sig) to every registered thread. Called
// once at shutdown (spec.md §5 cleanup_threads). cmd/reshelld passes
// SIGKILL, which ends the whole process if any registered thread is still
// alive; entries whose thread has already exited are not removed first.
func (r *ThreadRegistry) Cleanup(sig sysx.Signal) {
	tgid := sysx.Getpid()
	n := r.Count()
	for i := 0; i < n; i++ {
		tid := int(atomic.LoadInt32(&r.tids[i]))
		if tid != 0 {
			sysx.Tgkill(tgid, tid, sig)
		}
	}
}

// ShutdownFlag is the single atomic boolean every long-running loop polls
// (spec.md §3, §5). Set with release ordering by a signal handler or an
// explicit shutdown request; read with acquire ordering everywhere else.
type ShutdownFlag struct {
	flag atomic.Bool
}

// Request sets the shutdown flag.
func (s *ShutdownFlag) Request() {
	s.flag.Store(true)
}

// ShouldShutdown is a pure atomic load, per spec.md §4.4.
func (s *ShutdownFlag) ShouldShutdown() bool {
	return s.flag.Load()
}
