package code

import (
	"testing"

	"github.com/nzioki/gencgc/internal/buf"
	"github.com/nzioki/gencgc/internal/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dirtyMemory(words int) []byte {
	mem := make([]byte, words*layout.WordBytes)
	for i := range mem {
		mem[i] = 0xAB
	}
	return mem
}

func TestInitWritesHeaderAndZeroesTrailer(t *testing.T) {
	mem := dirtyMemory(10)
	o := Init(mem, 10)

	assert.Equal(t, 10, o.TotalWords())
	assert.Equal(t, uint8(layout.CodeHeaderWidetag), o.Widetag())
	assert.Zero(t, o.BoxedSize())
	assert.Zero(t, o.DebugInfo())
	assert.Zero(t, o.FunCount(), "stale trailer bytes must be cleared")
	assert.Zero(t, buf.U64(mem, 9*layout.WordBytes))
	assert.Equal(t, byte(0xAB), mem[3*layout.WordBytes], "body is left alone")
}

func TestInitHeaderOnlyObject(t *testing.T) {
	mem := dirtyMemory(HeaderWords)
	o := Init(mem, HeaderWords)
	assert.Equal(t, HeaderWords, o.TotalWords())
	assert.Zero(t, o.FunCount())
	assert.Nil(t, o.FunOffsets())
	assert.ErrorIs(t, o.SetFunTable([]uint32{1}), ErrFunTableTooLarge)
}

func TestFunTableRoundTrip(t *testing.T) {
	o := Init(make([]byte, 16*layout.WordBytes), 16)
	require.NoError(t, o.SetFunTable([]uint32{0x10, 0x40, 0x88}))
	assert.Equal(t, 3, o.FunCount())
	assert.Equal(t, []uint32{0x10, 0x40, 0x88}, o.FunOffsets())
	assert.Equal(t, uint16(3), buf.U16(o.Bytes(), 16*layout.WordBytes-2))
}

func TestFunTableTooLarge(t *testing.T) {
	o := Init(make([]byte, 5*layout.WordBytes), 5)
	// 16 body bytes: count plus three offsets fits, four does not.
	require.NoError(t, o.SetFunTable([]uint32{1, 2, 3}))
	assert.ErrorIs(t, o.SetFunTable([]uint32{1, 2, 3, 4}), ErrFunTableTooLarge)
}

func TestView(t *testing.T) {
	mem := make([]byte, 12*layout.WordBytes)
	Init(mem, 8)
	o, err := View(mem)
	require.NoError(t, err)
	assert.Len(t, o.Bytes(), 8*layout.WordBytes)

	_, err = View(make([]byte, 8*layout.WordBytes))
	assert.ErrorIs(t, err, ErrNotCode)
	_, err = View(mem[:4*layout.WordBytes])
	assert.ErrorIs(t, err, ErrTooSmall)
	_, err = View(mem[:2])
	assert.ErrorIs(t, err, ErrTooSmall)
}

func TestRef(t *testing.T) {
	r := MakeRef(0x10000)
	assert.Equal(t, uintptr(0x10000), r.Addr())
	assert.Equal(t, uintptr(layout.OtherPointerLowtag), r.Lowtag())
}
