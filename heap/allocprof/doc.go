// Package allocprof implements the deterministic allocation profiler.
//
// Instrumented allocation sites bump counters in a shared Buffer that every
// thread reaches through its own profile slot. Counter indices are assigned
// per site:
//
//   - counters 0 and 1 aggregate the hit count and total bytes of
//     variable-size allocations whose site has no index of its own
//   - counter 2 aggregates fixed-size allocations without an index
//   - a fixed-size site owns one counter (hits), a variable-size site owns two
//     (hits and bytes), handed out from index 3 upwards
//
// The buffer holds half as many counters as the site metadata vector has
// elements, because the vector stores two elements per counter.
//
// # Buffer replacement
//
// Start with different metadata than last time has to replace the buffer. A
// thread may still hold the previous buffer if it loaded its slot before the
// last Stop. Rather than let that thread write into a buffer nobody reads,
// the previous buffer is retired: Record on a retired buffer drops the sample
// and reports false, and the caller clears its slot. The swap itself is still
// logged as unsafe.
package allocprof
