package verify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nzioki/gencgc/heap/alloc"
	"github.com/nzioki/gencgc/heap/allocprof"
	"github.com/nzioki/gencgc/heap/pagetable"
	"github.com/nzioki/gencgc/heap/thread"
	"github.com/nzioki/gencgc/internal/layout"
	"github.com/nzioki/gencgc/internal/vmem"
)

func newSpace(t *testing.T, pages int, opts alloc.SpaceOptions) *alloc.Space {
	t.Helper()
	prov := vmem.NewMemory(layout.PageBytes)
	mem, err := prov.Map(pages * layout.PageBytes)
	require.NoError(t, err)
	s, err := alloc.NewSpace(mem, pagetable.New(pages, pagetable.DefaultScanStartMax), opts)
	require.NoError(t, err)
	return s
}

// populate lays a three-page boxed block, a large unboxed block and a code
// region, all closed.
func populate(t *testing.T, s *alloc.Space) {
	t.Helper()
	var r alloc.Region
	for range 5 {
		_, err := s.Alloc(&r, 2048, layout.BoxedPage)
		require.NoError(t, err)
	}
	_, err := s.Alloc(&r, 5*layout.PageBytes, layout.UnboxedPage)
	require.NoError(t, err)
	s.CloseRegion(&r)

	c := alloc.NewCodeAllocator(s, true)
	th := thread.NewRegistry().Register("main")
	th.WithoutGC(func() {
		for i := range 50 {
			_, err := c.Allocate(th, allocprof.NoSite, 3+i%17)
			require.NoError(t, err)
		}
	})
	c.Close()
}

func requireKind(t *testing.T, err error, kind string) *ValidationError {
	t.Helper()
	require.Error(t, err)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "error %T", err)
	require.Equal(t, kind, ve.Type, ve.Error())
	return ve
}

func TestAllInvariantsOnWellFormedSpace(t *testing.T) {
	s := newSpace(t, 32, alloc.SpaceOptions{RegionPages: 3})
	populate(t, s)
	require.NoError(t, AllInvariants(s))
}

func TestAllInvariantsSkipsOpenRegion(t *testing.T) {
	s := newSpace(t, 8, alloc.SpaceOptions{RegionPages: 2})
	var r alloc.Region
	_, err := s.Alloc(&r, 64, layout.BoxedPage)
	require.NoError(t, err)
	require.NoError(t, AllInvariants(s))
}

func TestFreePagesDetectsStaleState(t *testing.T) {
	s := newSpace(t, 4, alloc.SpaceOptions{})
	s.Table().SetWordsUsed(2, 5)
	ve := requireKind(t, FreePages(s.Table()), "FreePages")
	require.Equal(t, 2, ve.Page)
	require.Equal(t, 5, ve.Details["words_used"])
}

func TestHighWaterDetectsPageBeyondCursor(t *testing.T) {
	s := newSpace(t, 32, alloc.SpaceOptions{})
	populate(t, s)
	ve := requireKind(t, HighWater(s.Table(), 0), "HighWater")
	require.Equal(t, 0, ve.Page)

	requireKind(t, HighWater(s.Table(), 99), "HighWater")
}

func TestBlocksDetectsOrphanPage(t *testing.T) {
	s := newSpace(t, 32, alloc.SpaceOptions{RegionPages: 3})
	populate(t, s)
	// Page 0 now ends its block, leaving page 1 pointing at nothing.
	s.Table().SetWordsUsed(0, 8)

	ve := requireKind(t, Blocks(s.Table(), s.NextFreePage()), "Blocks")
	require.Equal(t, 1, ve.Page)
}

func TestCodeBlocksDetectsBadHeader(t *testing.T) {
	s := newSpace(t, 32, alloc.SpaceOptions{})
	populate(t, s)
	require.NoError(t, CodeBlocks(s))

	tbl := s.Table()
	var first pagetable.Index = -1
	for p := range tbl.Len() {
		if tbl.Type(p) == layout.CodePage {
			first = p
			break
		}
	}
	require.GreaterOrEqual(t, first, 0)
	s.Bytes(s.PageAddress(first), 1)[0] = 0

	ve := requireKind(t, CodeBlocks(s), "CodeBlocks")
	require.Equal(t, first, ve.Page)
}

func TestValidationErrorFormat(t *testing.T) {
	require.Equal(t, "Blocks at page 3: bad", (&ValidationError{Type: "Blocks", Message: "bad", Page: 3}).Error())
	require.Equal(t, "HighWater: bad", (&ValidationError{Type: "HighWater", Message: "bad", Page: -1}).Error())
}
