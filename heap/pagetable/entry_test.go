package pagetable

import (
	"testing"

	"github.com/nzioki/gencgc/internal/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryFieldsAreIndependent(t *testing.T) {
	var e Entry
	e = e.withScanStartRaw(0xFFFFFFFF)
	e = e.withWordsUsed(layout.PageWords)
	e = e.withType(layout.CodePage | layout.OpenRegion)
	e = e.withNeedZerofill(true)
	e = e.withGeneration(MaxGeneration)

	assert.Equal(t, uint32(0xFFFFFFFF), e.ScanStartRaw())
	assert.Equal(t, layout.PageWords, e.WordsUsed())
	assert.Equal(t, layout.CodePage|layout.OpenRegion, e.Type())
	assert.True(t, e.NeedZerofill())
	assert.Equal(t, MaxGeneration, e.Generation())

	e = e.withWordsUsed(10).withGeneration(3).withNeedZerofill(false)
	assert.Equal(t, uint32(0xFFFFFFFF), e.ScanStartRaw())
	assert.Equal(t, 10, e.WordsUsed())
	assert.Equal(t, layout.CodePage|layout.OpenRegion, e.Type())
	assert.False(t, e.NeedZerofill())
	assert.Equal(t, Generation(3), e.Generation())
}

func TestTableSetters(t *testing.T) {
	tbl := newTestTable(t, 4)
	require.Equal(t, 4, tbl.Len())

	tbl.Claim(1, layout.BoxedPage, 2)
	tbl.SetBytesUsed(1, 800)
	assert.Equal(t, layout.BoxedPage, tbl.Type(1))
	assert.Equal(t, Generation(2), tbl.Generation(1))
	assert.Equal(t, 100, tbl.WordsUsed(1))
	assert.Equal(t, uintptr(800), tbl.BytesUsed(1))
	assert.False(t, tbl.IsFree(1))

	tbl.Free(1)
	assert.True(t, tbl.IsFree(1))
	assert.True(t, tbl.NeedZerofill(1))
	assert.Equal(t, Generation(0), tbl.Generation(1))
}

func TestTableRejectsSentinelWrites(t *testing.T) {
	tbl := newTestTable(t, 2)
	assert.Panics(t, func() { tbl.SetWordsUsed(2, 1) })
	assert.Panics(t, func() { tbl.SetWordsUsed(0, layout.PageWords+1) })
	assert.Panics(t, func() { tbl.SetGeneration(0, MaxGeneration+1) })
	assert.True(t, tbl.IsFree(tbl.Len()), "sentinel stays free")
}

func TestNewRejectsEvenMax(t *testing.T) {
	assert.Panics(t, func() { New(4, 0x40) })
	assert.Panics(t, func() { New(0, DefaultScanStartMax) })
}
