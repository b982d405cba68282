package heap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/nzioki/gencgc/heap/alloc"
	"github.com/nzioki/gencgc/heap/allocprof"
	"github.com/nzioki/gencgc/heap/cardmark"
	"github.com/nzioki/gencgc/heap/code"
	"github.com/nzioki/gencgc/heap/pagetable"
	"github.com/nzioki/gencgc/heap/thread"
	"github.com/nzioki/gencgc/heap/verify"
	"github.com/nzioki/gencgc/internal/layout"
	"github.com/nzioki/gencgc/internal/vmem"
)

// Heap is the runtime context owning every allocator-side component.
type Heap struct {
	id       uuid.UUID
	cfg      Config
	log      *slog.Logger
	provider vmem.Provider

	dynamicMem []byte
	staticMem  []byte

	space   *alloc.Space
	static  *alloc.StaticSpace
	code    *alloc.CodeAllocator
	cards   *cardmark.Table
	threads *thread.Registry
	prof    *allocprof.Profiler

	closeOnce sync.Once
	closeErr  error
}

// New maps the spaces described by cfg and returns a ready heap.
func New(cfg Config) (*Heap, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Provider == nil {
		cfg.Provider = vmem.NewOS()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	h := &Heap{
		id:       uuid.New(),
		cfg:      cfg,
		provider: cfg.Provider,
		threads:  thread.NewRegistry(),
	}
	h.log = cfg.Logger.With("heap", h.id.String())

	var err error
	if h.dynamicMem, err = h.provider.Map(cfg.DynamicSpaceBytes); err != nil {
		return nil, fmt.Errorf("heap: map dynamic space: %w", err)
	}
	if h.staticMem, err = h.provider.Map(cfg.StaticSpaceBytes); err != nil {
		_ = h.provider.Unmap(h.dynamicMem)
		return nil, fmt.Errorf("heap: map static space: %w", err)
	}

	table := pagetable.New(cfg.Pages(), cfg.ScanStartMax)
	h.space, err = alloc.NewSpace(h.dynamicMem, table, alloc.SpaceOptions{
		LargeObjectPages: cfg.LargeObjectPages,
		RegionPages:      cfg.RegionPages,
		Provider:         h.provider,
	})
	if err == nil {
		h.static, err = alloc.NewStaticSpace(h.staticMem)
	}
	if err != nil {
		_ = h.unmap()
		return nil, err
	}
	h.code = alloc.NewCodeAllocator(h.space, cfg.RequireGCInhibit)
	h.cards = cardmark.New(cfg.Pages())
	h.prof = allocprof.New(h.threads, h.log)

	h.log.Info("heap created",
		"pages", cfg.Pages(),
		"dynamic_base", fmt.Sprintf("%#x", h.space.Base()),
		"static_base", fmt.Sprintf("%#x", h.static.Start()),
		"static_bytes", cfg.StaticSpaceBytes)
	return h, nil
}

// Close unmaps both spaces. No reference into the heap may be used afterwards.
func (h *Heap) Close() error {
	h.closeOnce.Do(func() {
		h.code.Close()
		h.closeErr = h.unmap()
		h.log.Info("heap closed")
	})
	return h.closeErr
}

func (h *Heap) unmap() error {
	return errors.Join(h.provider.Unmap(h.staticMem), h.provider.Unmap(h.dynamicMem))
}

// ID returns the heap's instance id.
func (h *Heap) ID() uuid.UUID { return h.id }

// Config returns the effective configuration.
func (h *Heap) Config() Config { return h.cfg }

// Logger returns the heap's logger.
func (h *Heap) Logger() *slog.Logger { return h.log }

// Space returns the dynamic space.
func (h *Heap) Space() *alloc.Space { return h.space }

// Static returns the static space.
func (h *Heap) Static() *alloc.StaticSpace { return h.static }

// Cards returns the card-mark table of the dynamic space.
func (h *Heap) Cards() *cardmark.Table { return h.cards }

// Threads returns the thread registry.
func (h *Heap) Threads() *thread.Registry { return h.threads }

// Profiler returns the allocation profiler.
func (h *Heap) Profiler() *allocprof.Profiler { return h.prof }

// NewThread registers a mutator thread. It receives the profile buffer if the
// profiler is running.
func (h *Heap) NewThread(name string) *thread.Thread {
	th := h.threads.Register(name)
	h.prof.Adopt(th)
	h.log.Debug("thread registered", "thread", th.ID(), "name", name)
	return th
}

// ExitThread unregisters th.
func (h *Heap) ExitThread(th *thread.Thread) {
	h.threads.Unregister(th)
	h.log.Debug("thread exited", "thread", th.ID())
}

// AllocateCodeObject allocates a code object of words words for th, which
// must have GC inhibited unless the heap was configured otherwise.
func (h *Heap) AllocateCodeObject(th *thread.Thread, words int) (code.Ref, error) {
	return h.code.Allocate(th, allocprof.NoSite, words)
}

// AllocateCodeObjectAt is AllocateCodeObject charged to a profiled site.
func (h *Heap) AllocateCodeObjectAt(th *thread.Thread, site int, words int) (code.Ref, error) {
	ref, err := h.code.Allocate(th, site, words)
	if err != nil {
		return 0, err
	}
	// Code pages are card marked, so the header writes count as stores.
	h.NoteWrite(ref.Addr(), words*layout.WordBytes)
	return ref, nil
}

// CloseCodeRegion finishes the open code region. It is idempotent.
func (h *Heap) CloseCodeRegion() { h.code.Close() }

// CodeObject returns the code object ref points to.
func (h *Heap) CodeObject(ref code.Ref) (code.Object, error) {
	addr := ref.Addr()
	if !h.space.Contains(addr) {
		return code.Object{}, fmt.Errorf("heap: %#x outside dynamic space", addr)
	}
	return code.View(h.space.Bytes(addr, int(h.space.End()-addr)))
}

// ClaimStaticBytes claims n bytes of static space. n must be object aligned.
// It never blocks and never claims partially.
func (h *Heap) ClaimStaticBytes(n uintptr) (uintptr, error) {
	return h.static.Claim(n)
}

// SetProfileMetadata supplies the counter-index vector sizing the profile buffer.
func (h *Heap) SetProfileMetadata(md []uintptr) { h.prof.SetMetadata(md) }

// ProfilerStart installs the profile buffer in every thread.
func (h *Heap) ProfilerStart() { h.prof.Start() }

// ProfilerStop removes the profile buffer from every thread.
func (h *Heap) ProfilerStop() { h.prof.Stop() }

// ProfileSnapshot copies the current profile counters.
func (h *Heap) ProfileSnapshot() allocprof.Snapshot { return h.prof.Snapshot() }

// NoteWrite is the software write barrier for the dynamic space.
func (h *Heap) NoteWrite(addr uintptr, n int) {
	if !h.space.Contains(addr) {
		return
	}
	h.cards.Add(int(addr-h.space.Base()), n)
}

// DrainDirtyRanges returns the page-aligned ranges written since the last
// drain and empties the write log.
func (h *Heap) DrainDirtyRanges() []cardmark.Range { return h.cards.Drain() }

// Verify checks the page-table and code-block invariants.
func (h *Heap) Verify() error { return verify.AllInvariants(h.space) }
