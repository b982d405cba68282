// Package thread is the registry of mutator threads known to the heap.
//
// The heap reads two pieces of per-thread state: whether the thread has
// inhibited the collector, and the thread's allocation profile slot.
package thread

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/nzioki/gencgc/heap/allocprof"
)

// Thread is one registered mutator.
type Thread struct {
	id   uint64
	name string

	gcInhibit atomic.Int32
	profile   atomic.Pointer[allocprof.Buffer]
}

// ID returns the registry-assigned id.
func (t *Thread) ID() uint64 { return t.id }

// Name returns the name given at registration.
func (t *Thread) Name() string { return t.name }

// InhibitGC disables the collector for this thread. Calls nest.
func (t *Thread) InhibitGC() { t.gcInhibit.Add(1) }

// AllowGC undoes one InhibitGC.
func (t *Thread) AllowGC() {
	if t.gcInhibit.Add(-1) < 0 {
		t.gcInhibit.Store(0)
	}
}

// GCInhibited reports whether the collector is inhibited.
func (t *Thread) GCInhibited() bool { return t.gcInhibit.Load() > 0 }

// WithoutGC runs fn with the collector inhibited.
func (t *Thread) WithoutGC(fn func()) {
	t.InhibitGC()
	defer t.AllowGC()
	fn()
}

// SetProfileBuffer installs or clears the thread's profile slot.
func (t *Thread) SetProfileBuffer(b *allocprof.Buffer) { t.profile.Store(b) }

// ProfileBuffer returns the thread's profile slot.
func (t *Thread) ProfileBuffer() *allocprof.Buffer { return t.profile.Load() }

// NoteAllocation is the allocators' instrumentation hook. It counts the
// allocation in the thread's profile buffer, if any, and drops a buffer that
// has been retired.
func (t *Thread) NoteAllocation(site int, nbytes uintptr, variable bool) {
	b := t.profile.Load()
	if b == nil {
		return
	}
	if !b.Record(site, nbytes, variable) {
		t.profile.CompareAndSwap(b, nil)
	}
}

// Registry is the set of live threads.
type Registry struct {
	mu      sync.RWMutex
	threads map[uint64]*Thread
	nextID  uint64
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{threads: make(map[uint64]*Thread)}
}

// Register adds a new thread.
func (r *Registry) Register(name string) *Thread {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t := &Thread{id: r.nextID, name: name}
	r.threads[t.id] = t
	return t
}

// Unregister removes t and clears its profile slot.
func (r *Registry) Unregister(t *Thread) {
	r.mu.Lock()
	delete(r.threads, t.id)
	r.mu.Unlock()
	t.SetProfileBuffer(nil)
}

// Len returns the number of live threads.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.threads)
}

// ForEach calls fn for every live thread in registration order. fn must not
// register or unregister threads.
func (r *Registry) ForEach(fn func(*Thread)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]uint64, 0, len(r.threads))
	for id := range r.threads {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		fn(r.threads[id])
	}
}

// EachProfileSlot implements allocprof.Threads.
func (r *Registry) EachProfileSlot(fn func(allocprof.Slot)) int {
	n := 0
	r.ForEach(func(t *Thread) {
		fn(t)
		n++
	})
	return n
}

var _ allocprof.Threads = (*Registry)(nil)
