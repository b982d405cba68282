package verify

import (
	"fmt"

	"github.com/nzioki/gencgc/heap/alloc"
	"github.com/nzioki/gencgc/heap/code"
	"github.com/nzioki/gencgc/heap/pagetable"
	"github.com/nzioki/gencgc/internal/layout"
)

// ValidationError describes one broken invariant.
type ValidationError struct {
	Type    string
	Message string
	Page    int
	Details map[string]any
}

func (e *ValidationError) Error() string {
	if e.Page >= 0 {
		return fmt.Sprintf("%s at page %d: %s", e.Type, e.Page, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AllInvariants runs every check against s.
// Returns the first error encountered, or nil if all checks pass.
func AllInvariants(s *alloc.Space) error {
	tbl := s.Table()
	next := s.NextFreePage()
	if err := FreePages(tbl); err != nil {
		return err
	}
	if err := HighWater(tbl, next); err != nil {
		return err
	}
	if err := Blocks(tbl, next); err != nil {
		return err
	}
	return CodeBlocks(s)
}

// FreePages validates that pages of the free type are empty.
func FreePages(tbl *pagetable.Table) error {
	for p := range tbl.Len() {
		if !tbl.Type(p).IsFree() {
			continue
		}
		e := tbl.Entry(p)
		if e.WordsUsed() != 0 || e.ScanStartRaw() != 0 || e.Generation() != 0 {
			return &ValidationError{
				Type:    "FreePages",
				Message: "free page carries state",
				Page:    p,
				Details: map[string]any{
					"words_used": e.WordsUsed(),
					"scan_start": e.ScanStartRaw(),
					"generation": e.Generation(),
				},
			}
		}
	}
	return nil
}

// HighWater validates that every page at or past next is free.
func HighWater(tbl *pagetable.Table, next pagetable.Index) error {
	if next < 0 || next > tbl.Len() {
		return &ValidationError{
			Type:    "HighWater",
			Message: fmt.Sprintf("cursor %d outside table of %d pages", next, tbl.Len()),
			Page:    -1,
		}
	}
	for p := next; p < tbl.Len(); p++ {
		if !tbl.IsFree(p) {
			return &ValidationError{
				Type:    "HighWater",
				Message: fmt.Sprintf("page in use past cursor %d", next),
				Page:    p,
			}
		}
	}
	return nil
}

// Blocks validates the structure of every closed contiguous block.
func Blocks(tbl *pagetable.Table, next pagetable.Index) error {
	for p := 0; p < tbl.Len(); {
		if tbl.IsFree(p) || tbl.Type(p).IsOpen() {
			p++
			continue
		}
		if !tbl.StartsBlock(p) {
			return &ValidationError{
				Type:    "Blocks",
				Message: fmt.Sprintf("page has no block start, scan start %#x", tbl.ScanStartOffset(p)),
				Page:    p,
			}
		}
		last, err := block(tbl, p, next)
		if err != nil {
			return err
		}
		p = last + 1
	}
	return nil
}

func block(tbl *pagetable.Table, first pagetable.Index, next pagetable.Index) (pagetable.Index, error) {
	gen := tbl.Generation(first)
	kind := tbl.Type(first).Kind()
	for p := first; ; p++ {
		fail := func(format string, args ...any) error {
			return &ValidationError{
				Type:    "Blocks",
				Message: fmt.Sprintf(format, args...),
				Page:    p,
				Details: map[string]any{"first": first},
			}
		}
		if got := tbl.Generation(p); got != gen {
			return 0, fail("generation %d in block of generation %d", got, gen)
		}
		if got := tbl.Type(p); got != kind {
			return 0, fail("type %s in %s block", got, kind)
		}
		if want := uintptr(p-first) << layout.PageShift; tbl.ScanStartOffset(p) != want {
			return 0, fail("scan start %#x, want %#x", tbl.ScanStartOffset(p), want)
		}
		if tbl.BlockStartPage(p) != first {
			return 0, fail("block start page %d", tbl.BlockStartPage(p))
		}
		if tbl.WordsUsed(p) == 0 {
			return 0, fail("empty page inside block")
		}
		ends := tbl.EndsBlock(p, gen)
		if ends != tbl.SafeEndsBlock(p, gen, next) {
			// Only the successor's state can split the two answers.
			p++
			return 0, fail("successor disagrees with block end, words used %d, generation %d",
				tbl.WordsUsed(p), tbl.Generation(p))
		}
		if ends {
			return p, nil
		}
	}
}

// CodeBlocks validates that each closed code block is a dense sequence of
// well-formed code objects.
func CodeBlocks(s *alloc.Space) error {
	tbl := s.Table()
	for p := 0; p < tbl.Len(); {
		if tbl.Type(p) != layout.CodePage || !tbl.StartsBlock(p) {
			p++
			continue
		}
		last := tbl.BlockFinalPage(p)
		var used uintptr
		for q := p; q <= last; q++ {
			used += tbl.BytesUsed(q)
		}
		mem := s.Bytes(s.PageAddress(p), int(used))
		for off := 0; off < len(mem); {
			obj, err := code.View(mem[off:])
			if err != nil {
				return &ValidationError{
					Type:    "CodeBlocks",
					Message: fmt.Sprintf("object at block offset %#x: %v", off, err),
					Page:    p + off>>layout.PageShift,
					Details: map[string]any{"first": p},
				}
			}
			off += int(layout.AlignUp(uintptr(obj.TotalWords())<<layout.WordShift, layout.ObjectAlignBytes))
			if off > len(mem) {
				return &ValidationError{
					Type:    "CodeBlocks",
					Message: fmt.Sprintf("object overruns block by %d bytes", off-len(mem)),
					Page:    last,
					Details: map[string]any{"first": p},
				}
			}
		}
		p = last + 1
	}
	return nil
}
