package alloc

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nzioki/gencgc/heap/pagetable"
	"github.com/nzioki/gencgc/internal/layout"
	"github.com/nzioki/gencgc/internal/vmem"
)

// newTestSpace maps pages pages from an in-memory provider.
func newTestSpace(t testing.TB, pages int, opts SpaceOptions) (*Space, *vmem.Memory) {
	t.Helper()
	prov := vmem.NewMemory(layout.PageBytes)
	mem, err := prov.Map(pages * layout.PageBytes)
	require.NoError(t, err)
	t.Cleanup(func() { _ = prov.Unmap(mem) })
	if opts.Provider == nil {
		opts.Provider = prov
	}
	s, err := NewSpace(mem, pagetable.New(pages, pagetable.DefaultScanStartMax), opts)
	require.NoError(t, err)
	return s, prov
}

type span struct{ addr, size uintptr }

// requireDisjoint fails if any two spans overlap.
func requireDisjoint(t testing.TB, spans []span) {
	t.Helper()
	slices.SortFunc(spans, func(a, b span) int {
		switch {
		case a.addr < b.addr:
			return -1
		case a.addr > b.addr:
			return 1
		}
		return 0
	})
	for i := 1; i < len(spans); i++ {
		prev := spans[i-1]
		require.LessOrEqual(t, prev.addr+prev.size, spans[i].addr,
			"span %#x+%d overlaps %#x", prev.addr, prev.size, spans[i].addr)
	}
}
