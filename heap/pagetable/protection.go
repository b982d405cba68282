//go:build !softcardmarks

package pagetable

// ProtMode says how a page is defended against stray writes.
type ProtMode uint8

const (
	// Physical pages are write-protected by the operating system.
	Physical ProtMode = iota
	// Logical pages rely on software card marks.
	Logical
)

func (m ProtMode) String() string {
	if m == Logical {
		return "logical"
	}
	return "physical"
}

// ProtectionMode returns how page p is protected. Code pages are always
// logical; every other kind uses hardware protection.
//
// Builds with the softcardmarks tag treat every page as logical and do not
// have this policy.
func (t *Table) ProtectionMode(p Index) ProtMode {
	if t.Type(p).IsCode() {
		return Logical
	}
	return Physical
}
