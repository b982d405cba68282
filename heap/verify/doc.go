// Package verify checks page-table and object-space invariants.
//
// The checks are meant for tests and for the debug commands of heapctl. Each
// returns a *ValidationError describing the first violation found:
//
//   - FreePages: free pages carry no words, no scan start and no generation
//   - HighWater: no page at or past the allocation cursor is in use
//   - Blocks: every block starts at a zero scan start, its interior pages are
//     full, share a generation and type, and point back to the first page
//   - CodeBlocks: closed code blocks parse as a dense run of code objects
//
// Open regions are skipped; their occupancy is not recorded until close.
package verify
