// Package pagetable implements the per-page metadata array of the dynamic space.
//
// # Entries
//
// Each page has one bit-packed Entry:
//
//	bits  0..31  scan-start offset (condensed, see below)
//	bits 32..47  words used
//	bits 48..55  page type (layout.PageType)
//	bit  56      need-zerofill
//	bits 57..63  generation
//
// The table always holds one more entry than there are pages. The extra entry
// is permanently free, so every page has a successor to look at.
//
// # Scan-start offsets
//
// The scan-start offset of a page is the byte distance back to the start of
// the contiguous block the page belongs to; zero means the page starts a
// block. The stored form is condensed into 32 bits:
//
//   - a nonzero page-aligned distance is stored as (pages << 1) | 1
//   - any other distance is stored as (bytes >> WordShift), which is even
//     because distances are object aligned
//
// Values above the table's maximum are clamped to it, and the reader then walks
// back through the chain of clamped entries summing page distances.
//
// # Contiguous blocks
//
// A block is a maximal run of pages whose objects form one continuous byte
// range. There is no block object: StartsBlock, EndsBlock and BlockFinalPage
// derive block boundaries from the entries. Interior pages of a block are
// always full, so a page ends a block exactly when it is under-full or its
// successor starts a new block.
//
// Mutating an entry requires the owning allocator's lock or a stopped world.
package pagetable
