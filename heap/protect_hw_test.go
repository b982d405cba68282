//go:build !softcardmarks

package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nzioki/gencgc/heap/alloc"
	"github.com/nzioki/gencgc/heap/pagetable"
	"github.com/nzioki/gencgc/internal/layout"
	"github.com/nzioki/gencgc/internal/vmem"
)

func TestProtectPageDispatch(t *testing.T) {
	h, prov, _ := newTestHeap(t, nil)

	var r alloc.Region
	_, err := h.Space().Alloc(&r, 64, layout.BoxedPage)
	require.NoError(t, err)
	h.Space().CloseRegion(&r)

	th := h.NewThread("main")
	th.WithoutGC(func() {
		_, err := h.AllocateCodeObject(th, 8)
		require.NoError(t, err)
	})
	h.CloseCodeRegion()

	require.Equal(t, pagetable.Physical, h.ProtectionMode(0))
	require.Equal(t, pagetable.Logical, h.ProtectionMode(1))

	require.NoError(t, h.ProtectPage(0))
	prot, err := prov.Protection(h.Space().PageBytes(0, 0))
	require.NoError(t, err)
	assert.Equal(t, vmem.ProtRead, prot)

	require.NoError(t, h.UnprotectPage(0))
	prot, err = prov.Protection(h.Space().PageBytes(0, 0))
	require.NoError(t, err)
	assert.Equal(t, vmem.ProtReadWrite, prot)

	require.NoError(t, h.UnprotectPage(1))
	assert.True(t, h.Cards().Marked(1))
	require.NoError(t, h.ProtectPage(1))
	assert.False(t, h.Cards().Marked(1))

	prot, err = prov.Protection(h.Space().PageBytes(1, 1))
	require.NoError(t, err)
	assert.Equal(t, vmem.ProtReadWrite, prot, "logical pages keep their OS protection")
}
