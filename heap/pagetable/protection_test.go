//go:build !softcardmarks

package pagetable

import (
	"testing"

	"github.com/nzioki/gencgc/internal/layout"
	"github.com/stretchr/testify/assert"
)

func TestProtectionMode(t *testing.T) {
	tbl := newTestTable(t, 5)
	tbl.SetType(0, layout.CodePage)
	tbl.SetType(1, layout.CodePage|layout.OpenRegion)
	tbl.SetType(2, layout.BoxedPage)
	tbl.SetType(3, layout.UnboxedPage)

	assert.Equal(t, Logical, tbl.ProtectionMode(0))
	assert.Equal(t, Logical, tbl.ProtectionMode(1))
	assert.Equal(t, Physical, tbl.ProtectionMode(2))
	assert.Equal(t, Physical, tbl.ProtectionMode(3))
	assert.Equal(t, Physical, tbl.ProtectionMode(4), "free pages")
	assert.Equal(t, "logical", Logical.String())
}
