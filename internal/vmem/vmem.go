// Package vmem provides the address-space provider consumed by the heap:
// mapping fresh zero-filled memory, unmapping it, changing its protection and
// releasing its physical backing.
//
// Memory handed out by Map is always zero on first use. Memory that has been
// written and then decommitted is not guaranteed to read back as zero, which
// is why the page table carries a need-zerofill bit.
package vmem

import (
	"errors"
	"fmt"
	"unsafe"
)

// Prot is a page protection mode.
type Prot uint8

const (
	ProtNone Prot = iota
	ProtRead
	ProtReadWrite
	ProtReadExec
	ProtAll
)

func (p Prot) String() string {
	switch p {
	case ProtNone:
		return "none"
	case ProtRead:
		return "r"
	case ProtReadWrite:
		return "rw"
	case ProtReadExec:
		return "rx"
	case ProtAll:
		return "rwx"
	default:
		return fmt.Sprintf("prot(%d)", uint8(p))
	}
}

var (
	// ErrBadSize indicates a zero, negative or unaligned mapping size.
	ErrBadSize = errors.New("vmem: bad mapping size")

	// ErrNotMapped indicates the range does not belong to a live mapping.
	ErrNotMapped = errors.New("vmem: range not mapped")
)

// Provider is the address-space provider. Every method reports failure
// through its error; a nil error always means the operation took effect.
type Provider interface {
	// Map returns size bytes of fresh, zero-filled, read-write memory.
	Map(size int) ([]byte, error)

	// Unmap releases a mapping previously returned by Map.
	Unmap(mem []byte) error

	// Protect changes the protection of a page-aligned sub-range of a mapping.
	Protect(mem []byte, prot Prot) error

	// Decommit releases the physical backing of a sub-range. The range stays
	// mapped; its contents afterwards are unspecified.
	Decommit(mem []byte) error
}

// Addr returns the address of the first byte of mem.
func Addr(mem []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(mem)))
}
