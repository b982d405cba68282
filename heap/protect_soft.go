//go:build softcardmarks

package heap

import "github.com/nzioki/gencgc/heap/pagetable"

// ProtectPage cleans the card of page p. Every page is card marked in this
// build.
func (h *Heap) ProtectPage(p pagetable.Index) error {
	h.cards.Clean(p)
	return nil
}

// UnprotectPage marks the card of page p.
func (h *Heap) UnprotectPage(p pagetable.Index) error {
	h.cards.Mark(p)
	return nil
}
