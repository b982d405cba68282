package allocprof

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"
)

type testSlot struct {
	mu  sync.Mutex
	buf *Buffer
}

func (s *testSlot) SetProfileBuffer(b *Buffer) {
	s.mu.Lock()
	s.buf = b
	s.mu.Unlock()
}

func (s *testSlot) get() *Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf
}

type testThreads []*testSlot

func (ts testThreads) EachProfileSlot(fn func(Slot)) int {
	for _, s := range ts {
		fn(s)
	}
	return len(ts)
}

// newTestProfiler returns a profiler over n fake threads and the buffer its
// logger writes to.
func newTestProfiler(t testing.TB, n int) (*Profiler, testThreads, *bytes.Buffer) {
	t.Helper()
	threads := make(testThreads, n)
	for i := range threads {
		threads[i] = &testSlot{}
	}
	var out bytes.Buffer
	log := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(threads, log), threads, &out
}
