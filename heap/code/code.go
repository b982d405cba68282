// Package code gives fixed-layout access to code objects in heap memory.
//
// A code object starts with three header words and ends with its function
// table:
//
//	word 0    header: total words << 32 | code widetag
//	word 1    boxed size
//	word 2    debug info
//	...       boxed constants, then instruction bytes
//	trailer   | fun offset n-1 | ... | fun offset 0 | n (uint16) |  <- object end
//
// The entry count occupies the final two bytes of the object. An allocated
// object has that count zeroed before it is published, so no reader ever
// sees a stale count.
package code

import (
	"errors"
	"unsafe"

	"github.com/nzioki/gencgc/internal/buf"
	"github.com/nzioki/gencgc/internal/layout"
)

type header struct {
	Header    uint64
	BoxedSize uint64
	DebugInfo uint64
}

const (
	offHeader    = int(unsafe.Offsetof(header{}.Header))
	offBoxedSize = int(unsafe.Offsetof(header{}.BoxedSize))
	offDebugInfo = int(unsafe.Offsetof(header{}.DebugInfo))

	// HeaderWords is the number of fixed header words.
	HeaderWords = int(unsafe.Sizeof(header{})) / layout.WordBytes

	funCountBytes  = 2
	funOffsetBytes = 4
)

var (
	_ = [1]struct{}{}[offHeader]
	_ = [1]struct{}{}[offBoxedSize-1*layout.WordBytes]
	_ = [1]struct{}{}[offDebugInfo-2*layout.WordBytes]
	_ = [1]struct{}{}[HeaderWords-3]
)

var (
	// ErrNotCode indicates the memory does not start with a code header.
	ErrNotCode = errors.New("code: not a code object")

	// ErrTooSmall indicates the memory is shorter than the header claims.
	ErrTooSmall = errors.New("code: object extends past memory")

	// ErrFunTableTooLarge indicates the function table does not fit.
	ErrFunTableTooLarge = errors.New("code: function table does not fit")
)

// Ref is a tagged reference to a code object.
type Ref uintptr

// MakeRef tags an object address.
func MakeRef(addr uintptr) Ref { return Ref(addr | layout.OtherPointerLowtag) }

// Addr returns the untagged object address.
func (r Ref) Addr() uintptr { return uintptr(r) &^ layout.LowtagMask }

// Lowtag returns the tag bits.
func (r Ref) Lowtag() uintptr { return uintptr(r) & layout.LowtagMask }

// Object is a view of one code object.
type Object struct {
	mem []byte
}

// Init writes a fresh header for an object of totalWords words into mem and
// zeroes the debug-info slot and the trailing function count word.
func Init(mem []byte, totalWords int) Object {
	o := Object{mem: mem[:totalWords*layout.WordBytes]}
	buf.PutU64(o.mem, offHeader, uint64(totalWords)<<layout.CodeHeaderSizeShift|layout.CodeHeaderWidetag)
	buf.PutU64(o.mem, offBoxedSize, 0)
	buf.PutU64(o.mem, offDebugInfo, 0)
	if totalWords > HeaderWords {
		buf.PutU64(o.mem, len(o.mem)-layout.WordBytes, 0)
	}
	return o
}

// View interprets mem as a code object, checking its header.
func View(mem []byte) (Object, error) {
	if len(mem) < HeaderWords*layout.WordBytes {
		return Object{}, ErrTooSmall
	}
	h := buf.U64(mem, offHeader)
	if h&layout.WidetagMask != layout.CodeHeaderWidetag {
		return Object{}, ErrNotCode
	}
	n := int(h >> layout.CodeHeaderSizeShift)
	if n < HeaderWords || !buf.Has(mem, 0, n*layout.WordBytes) {
		return Object{}, ErrTooSmall
	}
	return Object{mem: mem[:n*layout.WordBytes]}, nil
}

// Bytes returns the object's memory.
func (o Object) Bytes() []byte { return o.mem }

// TotalWords returns the size recorded in the header.
func (o Object) TotalWords() int {
	return int(buf.U64(o.mem, offHeader) >> layout.CodeHeaderSizeShift)
}

// Widetag returns the header's type tag.
func (o Object) Widetag() uint8 { return uint8(buf.U64(o.mem, offHeader)) }

// BoxedSize returns the boxed-size slot.
func (o Object) BoxedSize() uint64 { return buf.U64(o.mem, offBoxedSize) }

// SetBoxedSize sets the boxed-size slot.
func (o Object) SetBoxedSize(v uint64) { buf.PutU64(o.mem, offBoxedSize, v) }

// DebugInfo returns the debug-info slot.
func (o Object) DebugInfo() uint64 { return buf.U64(o.mem, offDebugInfo) }

// SetDebugInfo sets the debug-info slot.
func (o Object) SetDebugInfo(v uint64) { buf.PutU64(o.mem, offDebugInfo, v) }

// FunCount returns the number of embedded entry points.
func (o Object) FunCount() int {
	if o.TotalWords() <= HeaderWords {
		return 0
	}
	return int(buf.U16(o.mem, len(o.mem)-funCountBytes))
}

// FunOffsets returns the byte offsets of each entry point, in table order.
func (o Object) FunOffsets() []uint32 {
	n := o.FunCount()
	if n == 0 {
		return nil
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = buf.U32(o.mem, o.funOffsetAt(i))
	}
	return out
}

// SetFunTable writes the function table. The count is written last.
func (o Object) SetFunTable(offsets []uint32) error {
	need := funCountBytes + funOffsetBytes*len(offsets)
	if len(offsets) > 0xFFFF || need > (o.TotalWords()-HeaderWords)*layout.WordBytes {
		return ErrFunTableTooLarge
	}
	for i, off := range offsets {
		buf.PutU32(o.mem, o.funOffsetAt(i), off)
	}
	buf.PutU16(o.mem, len(o.mem)-funCountBytes, uint16(len(offsets)))
	return nil
}

func (o Object) funOffsetAt(i int) int {
	return len(o.mem) - funCountBytes - funOffsetBytes*(i+1)
}
