// Package alloc provides the object-space allocators of the heap.
//
// # Dynamic space
//
// Space hands out pages of the dynamic space and keeps the page table in step.
// Small objects are bump-allocated from a Region: a run of fresh pages flagged
// open-region while allocation proceeds. Closing the region records words used
// and clears the flag, turning the region into one contiguous block. Requests
// of LargeObjectPages or more bypass regions and get a block of their own.
//
// Claiming and releasing pages takes the space's free-pages lock. Bumping a
// region is not locked by Space; the region's owner serializes that.
//
// # Code objects
//
// CodeAllocator serializes every code allocation behind one mutex and a single
// region of code pages. Only the bump happens under the lock; the header is
// written after the lock is released but before the reference escapes.
//
// # Static space
//
// StaticSpace is a fixed address range with a lock-free bump frontier. A
// claim either advances the frontier by exactly the requested size or fails
// without side effects.
package alloc
