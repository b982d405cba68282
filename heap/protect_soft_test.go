//go:build softcardmarks

package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nzioki/gencgc/internal/vmem"
)

func TestProtectPageUsesCardsOnly(t *testing.T) {
	h, prov, _ := newTestHeap(t, nil)

	require.NoError(t, h.UnprotectPage(3))
	assert.True(t, h.Cards().Marked(3))
	require.NoError(t, h.ProtectPage(3))
	assert.False(t, h.Cards().Marked(3))

	prot, err := prov.Protection(h.Space().PageBytes(3, 3))
	require.NoError(t, err)
	assert.Equal(t, vmem.ProtReadWrite, prot)
}
