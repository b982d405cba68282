// Package cardmark implements software card marking, the "logical" page
// protection mode.
//
// A page protected logically is not write-protected by the operating system.
// Instead every store into it is expected to go through the write barrier
// (Add), which marks the card covering the written bytes. The collector treats
// a clean card the way it treats a hardware-protected page: nothing on it has
// changed since it was last scanned.
//
// Besides the per-card bits the table keeps a log of the raw written ranges.
// DirtyRanges coalesces that log into sorted, page-aligned, non-overlapping
// ranges, which is the shape a collector wants for rescanning. Drain does the
// same and empties the log; the log is also coalesced in place when it fills.
package cardmark
