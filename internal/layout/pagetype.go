package layout

import "strings"

// PageType is the page-kind tag stored in a page table entry.
//
// Code pages are both boxed and unboxed: a code object mixes tagged header
// words with raw instruction bytes.
type PageType uint8

const (
	FreePage     PageType = 0
	BoxedPage    PageType = 1
	UnboxedPage  PageType = 2
	CodePage     PageType = BoxedPage | UnboxedPage
	OpenRegion   PageType = 8
	PageTypeMask PageType = 7
)

// Kind returns the type with the open-region flag stripped.
func (t PageType) Kind() PageType { return t & PageTypeMask }

// IsCode reports whether the page holds code objects.
func (t PageType) IsCode() bool { return t&PageTypeMask == CodePage }

// IsFree reports whether the page is unclaimed.
func (t PageType) IsFree() bool { return t&PageTypeMask == FreePage }

// IsOpen reports whether an in-progress allocation region covers the page.
func (t PageType) IsOpen() bool { return t&OpenRegion != 0 }

func (t PageType) String() string {
	var b strings.Builder
	switch t.Kind() {
	case FreePage:
		b.WriteString("free")
	case BoxedPage:
		b.WriteString("boxed")
	case UnboxedPage:
		b.WriteString("unboxed")
	case CodePage:
		b.WriteString("code")
	default:
		b.WriteString("type?")
	}
	if t.IsOpen() {
		b.WriteString("+open")
	}
	return b.String()
}
