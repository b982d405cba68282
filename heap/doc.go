// Package heap ties the page table, the allocators, the thread registry and
// the allocation profiler into one runtime context.
//
// A Heap owns two mappings from its address-space provider: the dynamic space,
// tracked page by page, and the fixed static space. Everything the collector
// and the mutators need goes through the Heap:
//
//   - AllocateCodeObject and CloseCodeRegion, the locked code allocator
//   - ClaimStaticBytes, the lock-free static allocator
//   - ProfilerStart and ProfilerStop
//   - StartsBlock, EndsBlock, BlockFinalPage and the other page queries
//   - ProtectPage and UnprotectPage, dispatched by protection mode
//
// Basic usage:
//
//	h, err := heap.New(heap.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer h.Close()
//
//	th := h.NewThread("main")
//	th.InhibitGC()
//	ref, err := h.AllocateCodeObject(th, 16)
//	th.AllowGC()
//
// Contract breaches such as allocating code with GC enabled panic with a
// *gcassert.InvariantError. Exhaustion is reported through returned errors.
package heap
