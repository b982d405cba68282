package pagetable

import (
	"math/rand/v2"
	"testing"

	"github.com/nzioki/gencgc/internal/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreePageBlock(t *testing.T) {
	tbl := newTestTable(t, 8)
	last := layBlock(t, tbl, 0, 2*layout.PageWords+10, 0, layout.BoxedPage)
	require.Equal(t, 2, last)

	assert.True(t, tbl.StartsBlock(0))
	assert.False(t, tbl.StartsBlock(1))
	assert.False(t, tbl.StartsBlock(2))
	assert.False(t, tbl.EndsBlock(0, 0))
	assert.False(t, tbl.EndsBlock(1, 0))
	assert.True(t, tbl.EndsBlock(2, 0))
	assert.Equal(t, 2, tbl.BlockFinalPage(0))
}

func TestFullFinalPageEndsOnSuccessor(t *testing.T) {
	tbl := newTestTable(t, 4)
	layBlock(t, tbl, 0, 2*layout.PageWords, 0, layout.BoxedPage)
	layBlock(t, tbl, 2, 5, 0, layout.BoxedPage)

	assert.False(t, tbl.EndsBlock(0, 0))
	assert.True(t, tbl.EndsBlock(1, 0), "full page followed by a block start")
	assert.Equal(t, 1, tbl.BlockFinalPage(0))
	assert.Equal(t, 2, tbl.BlockFinalPage(2))
}

func TestBlockReachingLastPageUsesSentinel(t *testing.T) {
	tbl := newTestTable(t, 3)
	layBlock(t, tbl, 0, 3*layout.PageWords, 0, layout.UnboxedPage)
	assert.Equal(t, 2, tbl.BlockFinalPage(0))
}

func TestStartsBlockMatchesScanStart(t *testing.T) {
	tbl := New(256, 0x3f)
	rng := rand.New(rand.NewPCG(7, 7))
	layRandomBlocks(t, tbl, rng)
	for p := range tbl.Len() + 1 {
		assert.Equal(t, tbl.ScanStartOffset(p) == 0, tbl.StartsBlock(p), "page %d", p)
	}
}

// TestBlockFinalPageProperty checks BlockFinalPage against a brute-force
// search and the cross-check oracle on random well-formed tables.
func TestBlockFinalPageProperty(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 1))
	for range 200 {
		tbl := New(128, 0x3f)
		blocks, nextFree := layRandomBlocks(t, tbl, rng)
		for _, b := range blocks {
			got := tbl.BlockFinalPage(b.first)
			require.Equal(t, b.last, got, "block at %d", b.first)

			q := b.first
			for !tbl.EndsBlock(q, b.gen) {
				q++
			}
			require.Equal(t, got, q)
			for p := b.first; p < got; p++ {
				require.False(t, tbl.EndsBlock(p, b.gen), "interior page %d", p)
			}
			for p := b.first; p <= got; p++ {
				require.Equal(t, tbl.EndsBlock(p, b.gen), tbl.SafeEndsBlock(p, b.gen, nextFree), "page %d", p)
			}
		}
	}
}

func TestCursorCrossCheckAgrees(t *testing.T) {
	tbl := newTestTable(t, 16)
	last := layBlock(t, tbl, 0, 3*layout.PageWords+1, 2, layout.CodePage)
	tbl.SetCursor(fixedCursor(last + 1))
	assert.NotPanics(t, func() { tbl.BlockFinalPage(0) })
}

type testBlock struct {
	first, last Index
	gen         Generation
}

// layRandomBlocks fills tbl with back-to-back blocks of random sizes,
// generations and types, occasionally leaving free pages between them.
func layRandomBlocks(t testing.TB, tbl *Table, rng *rand.Rand) ([]testBlock, Index) {
	t.Helper()
	types := []layout.PageType{layout.BoxedPage, layout.UnboxedPage, layout.CodePage}
	var blocks []testBlock
	p := 0
	for p < tbl.Len() {
		maxPages := min(tbl.Len()-p, 70)
		pages := 1 + rng.IntN(maxPages)
		words := (pages-1)*layout.PageWords + 1 + rng.IntN(layout.PageWords)
		gen := Generation(rng.IntN(6))
		last := layBlock(t, tbl, p, words, gen, types[rng.IntN(len(types))])
		blocks = append(blocks, testBlock{first: p, last: last, gen: gen})
		p = last + 1
		if rng.IntN(4) == 0 {
			p++
		}
	}
	return blocks, min(p, tbl.Len())
}
