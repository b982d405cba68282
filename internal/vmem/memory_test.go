package vmem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryMapZeroFilled(t *testing.T) {
	m := NewMemory(4096)
	mem, err := m.Map(3 * 4096)
	require.NoError(t, err)
	require.Len(t, mem, 3*4096)
	for i, b := range mem {
		if b != 0 {
			t.Fatalf("byte %d not zero: %#x", i, b)
		}
	}
	require.NoError(t, m.Unmap(mem))
	require.ErrorIs(t, m.Unmap(mem), ErrNotMapped)
}

func TestMemoryRejectsBadSize(t *testing.T) {
	m := NewMemory(4096)
	_, err := m.Map(0)
	require.ErrorIs(t, err, ErrBadSize)
	_, err = m.Map(100)
	require.ErrorIs(t, err, ErrBadSize)
}

func TestMemoryProtectRecordsPerPage(t *testing.T) {
	m := NewMemory(4096)
	mem, err := m.Map(4 * 4096)
	require.NoError(t, err)

	require.NoError(t, m.Protect(mem[4096:3*4096], ProtRead))

	p, err := m.Protection(mem[:1])
	require.NoError(t, err)
	require.Equal(t, ProtReadWrite, p)
	p, err = m.Protection(mem[2*4096:])
	require.NoError(t, err)
	require.Equal(t, ProtRead, p)
	p, err = m.Protection(mem[3*4096:])
	require.NoError(t, err)
	require.Equal(t, ProtReadWrite, p)

	require.ErrorIs(t, m.Protect(mem[8:4096], ProtRead), ErrBadSize)
	require.ErrorIs(t, m.Protect(make([]byte, 4096), ProtRead), ErrNotMapped)
}

func TestMemoryDecommitKeepsContents(t *testing.T) {
	m := NewMemory(4096)
	mem, err := m.Map(4096)
	require.NoError(t, err)
	mem[10] = 0x7f
	require.NoError(t, m.Decommit(mem))
	require.Equal(t, byte(0x7f), mem[10], "in-memory decommit does not zero")
}
