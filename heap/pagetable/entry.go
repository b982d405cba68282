package pagetable

import "github.com/nzioki/gencgc/internal/layout"

// Generation is the age cohort of a page's objects.
type Generation uint8

// MaxGeneration is the largest generation an entry can record.
const MaxGeneration Generation = 0x7F

const (
	scanStartShift = 0
	scanStartBits  = 32
	wordsUsedShift = 32
	wordsUsedBits  = 16
	typeShift      = 48
	typeBits       = 8
	zerofillShift  = 56
	genShift       = 57
	genBits        = 7
)

// the words-used field must hold a full page.
var _ = [1]struct{}{}[layout.PageWords>>wordsUsedBits]

// Entry is one bit-packed page table entry.
type Entry uint64

func field(e Entry, shift, bits uint) uint64 {
	return uint64(e) >> shift & (1<<bits - 1)
}

func withField(e Entry, shift, bits uint, v uint64) Entry {
	mask := uint64(1<<bits-1) << shift
	return Entry(uint64(e)&^mask | v<<shift&mask)
}

// ScanStartRaw returns the condensed scan-start field as stored.
func (e Entry) ScanStartRaw() uint32 { return uint32(field(e, scanStartShift, scanStartBits)) }

// WordsUsed returns the number of words occupied on the page.
func (e Entry) WordsUsed() int { return int(field(e, wordsUsedShift, wordsUsedBits)) }

// Type returns the page type, including the open-region flag.
func (e Entry) Type() layout.PageType { return layout.PageType(field(e, typeShift, typeBits)) }

// NeedZerofill reports whether the page's memory may be dirty.
func (e Entry) NeedZerofill() bool { return field(e, zerofillShift, 1) != 0 }

// Generation returns the page's generation.
func (e Entry) Generation() Generation { return Generation(field(e, genShift, genBits)) }

func (e Entry) withScanStartRaw(v uint32) Entry {
	return withField(e, scanStartShift, scanStartBits, uint64(v))
}

func (e Entry) withWordsUsed(n int) Entry {
	return withField(e, wordsUsedShift, wordsUsedBits, uint64(n))
}

func (e Entry) withType(t layout.PageType) Entry {
	return withField(e, typeShift, typeBits, uint64(t))
}

func (e Entry) withNeedZerofill(v bool) Entry {
	var b uint64
	if v {
		b = 1
	}
	return withField(e, zerofillShift, 1, b)
}

func (e Entry) withGeneration(g Generation) Entry {
	return withField(e, genShift, genBits, uint64(g))
}
