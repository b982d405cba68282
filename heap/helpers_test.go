package heap

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nzioki/gencgc/internal/layout"
	"github.com/nzioki/gencgc/internal/vmem"
)

// newTestHeap returns a small in-memory heap, its provider and its log output.
// mutate, if non-nil, adjusts the config before the heap is created.
func newTestHeap(t testing.TB, mutate func(*Config)) (*Heap, *vmem.Memory, *bytes.Buffer) {
	t.Helper()
	prov := vmem.NewMemory(layout.PageBytes)
	var out bytes.Buffer

	cfg := DefaultConfig()
	cfg.DynamicSpaceBytes = 64 * layout.PageBytes
	cfg.StaticSpaceBytes = 2 * layout.PageBytes
	cfg.Provider = prov
	cfg.Logger = slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	if mutate != nil {
		mutate(&cfg)
	}

	h, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, h.Close()) })
	return h, prov, &out
}
