package allocprof

import (
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Slot is a thread's profile data pointer.
type Slot interface {
	SetProfileBuffer(b *Buffer)
}

// Threads enumerates the live threads' profile slots.
type Threads interface {
	// EachProfileSlot calls fn for every live thread and returns how many
	// threads it visited.
	EachProfileSlot(fn func(Slot)) int
}

// Profiler owns the counter buffer and installs it into threads.
type Profiler struct {
	threads Threads
	log     *slog.Logger

	mu          sync.Mutex
	metadata    []uintptr
	buffer      *Buffer
	requested   int
	running     bool
	generation  uint64
	session     uuid.UUID
	nextCounter int
	warnedFull  bool
}

// New returns a stopped profiler. A nil logger discards output.
func New(threads Threads, log *slog.Logger) *Profiler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Profiler{
		threads:     threads,
		log:         log,
		nextCounter: FirstSite,
	}
}

// SetMetadata supplies the site metadata vector: two elements per counter.
// A nil vector means no metadata has been created.
func (p *Profiler) SetMetadata(md []uintptr) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.metadata = md
}

// Start installs the counter buffer into every live thread.
//
// It is a logged no-op when the profiler already runs or has no metadata. The
// buffer from a previous run is reused when the counter count is unchanged;
// otherwise it is replaced and the replacement is logged as unsafe.
func (p *Profiler) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		p.log.Warn("allocation profiler already started")
		return
	}
	if p.metadata == nil {
		p.log.Warn("profile metadata not created")
		return
	}

	requested := len(p.metadata) / 2
	if p.buffer == nil || p.requested != requested {
		old := p.buffer
		n := max(requested, FirstSite)
		p.generation++
		p.requested = requested
		p.buffer = newBuffer(n, p.generation)
		p.session = uuid.New()
		p.nextCounter = FirstSite
		p.warnedFull = false
		p.log.Info("allocated profile buffer",
			"counters", n, "bytes", n*8, "generation", p.generation, "session", p.session.String())
		if old != nil {
			old.retire()
			p.log.Warn("unsafely changed alloc profile buffer",
				"old_counters", old.Len(), "counters", n)
		}
	}

	p.running = true
	buf := p.buffer
	threads := p.threads.EachProfileSlot(func(s Slot) { s.SetProfileBuffer(buf) })
	p.log.Info("allocation profiler started", "threads", threads)
}

// Stop clears every live thread's profile slot. The buffer is kept for a
// later Start.
func (p *Profiler) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		p.log.Warn("allocation profiler not started")
		return
	}
	p.running = false
	p.threads.EachProfileSlot(func(s Slot) { s.SetProfileBuffer(nil) })
}

// Adopt gives a newly created thread the current buffer if profiling is on.
func (p *Profiler) Adopt(s Slot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		s.SetProfileBuffer(p.buffer)
	}
}

// Running reports whether the profiler is started.
func (p *Profiler) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Buffer returns the current counter buffer, which may be nil before the
// first Start.
func (p *Profiler) Buffer() *Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buffer
}

// AssignSite hands out counter indices for a new allocation site: one for a
// fixed-size site, two for a variable-size one. It returns NoSite once the
// buffer is full, warning the first time.
func (p *Profiler) AssignSite(variable bool) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.buffer == nil {
		return NoSite
	}
	width := 1
	if variable {
		width = 2
	}
	if p.nextCounter+width > p.buffer.Len() {
		if !p.warnedFull {
			p.warnedFull = true
			p.log.Warn("allocation profile counters exhausted",
				"counters", p.buffer.Len(), "needed", p.nextCounter+width)
		}
		return NoSite
	}
	site := p.nextCounter
	p.nextCounter += width
	return site
}
