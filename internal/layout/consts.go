// Package layout holds the fixed word, page and object-alignment parameters of
// the managed heap together with the page-type flag encoding.
package layout

// Machine words.
const (
	WordShift = 3
	WordBytes = 1 << WordShift // 8
	WordBits  = WordBytes * 8
)

// Pages. The page is also the card granularity for protection purposes.
const (
	PageShift = 12
	PageBytes = 1 << PageShift // 4096
	PageWords = PageBytes / WordBytes
	PageMask  = PageBytes - 1
)

// Object alignment. Every heap object starts on a two-word boundary, the low
// bits of a tagged reference carry the lowtag.
const (
	ObjectAlignShift = WordShift + 1
	ObjectAlignBytes = 1 << ObjectAlignShift // 16
	LowtagMask       = ObjectAlignBytes - 1

	OtherPointerLowtag = 0xF
)

// Code object header.
const (
	CodeHeaderWidetag   = 0x35
	CodeHeaderSizeShift = 32
	WidetagMask         = 0xFF
)
