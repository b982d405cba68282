//go:build !softcardmarks

package heap

import (
	"fmt"

	"github.com/nzioki/gencgc/heap/pagetable"
	"github.com/nzioki/gencgc/internal/vmem"
)

// ProtectionMode returns how page p is defended against stray writes.
func (h *Heap) ProtectionMode(p pagetable.Index) pagetable.ProtMode {
	return h.space.Table().ProtectionMode(p)
}

// ProtectPage write-protects page p. Logical pages get a clean card instead
// of an OS protection change.
func (h *Heap) ProtectPage(p pagetable.Index) error {
	if h.ProtectionMode(p) == pagetable.Logical {
		h.cards.Clean(p)
		return nil
	}
	return h.setProt(p, vmem.ProtRead)
}

// UnprotectPage makes page p writable again. Logical pages get their card
// marked.
func (h *Heap) UnprotectPage(p pagetable.Index) error {
	if h.ProtectionMode(p) == pagetable.Logical {
		h.cards.Mark(p)
		return nil
	}
	return h.setProt(p, vmem.ProtReadWrite)
}

func (h *Heap) setProt(p pagetable.Index, prot vmem.Prot) error {
	if err := h.provider.Protect(h.space.PageBytes(p, p), prot); err != nil {
		return fmt.Errorf("heap: protect page %d %s: %w", p, prot, err)
	}
	return nil
}
