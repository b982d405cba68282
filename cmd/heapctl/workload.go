package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/nzioki/gencgc/heap"
	"github.com/nzioki/gencgc/heap/alloc"
	"github.com/nzioki/gencgc/heap/allocprof"
	"github.com/nzioki/gencgc/heap/code"
	"github.com/nzioki/gencgc/internal/layout"
)

// workload describes a synthetic mutator run.
type workload struct {
	Workers      int
	Objects      int     // code objects per worker
	MaxWords     int     // largest code object, in words
	StaticClaims int     // static claims per worker
	StaticBytes  uintptr // bytes per static claim
	Sites        []int   // profile sites to charge, NoSite if empty
	Seed         uint64
}

type workloadResult struct {
	Workers         int    `json:"workers"`
	CodeObjects     int    `json:"code_objects"`
	CodeBytes       uint64 `json:"code_bytes"`
	StaticClaims    int    `json:"static_claims"`
	StaticBytes     uint64 `json:"static_bytes"`
	StaticExhausted bool   `json:"static_exhausted"`
}

// runWorkload runs w against h and closes the code region afterwards.
func runWorkload(h *heap.Heap, w workload) (workloadResult, error) {
	var (
		wg        sync.WaitGroup
		objects   atomic.Int64
		codeBytes atomic.Uint64
		claims    atomic.Int64
		exhausted atomic.Bool
		errMu     sync.Mutex
		errs      []error
	)
	fail := func(err error) {
		errMu.Lock()
		errs = append(errs, err)
		errMu.Unlock()
	}

	maxWords := max(w.MaxWords, code.HeaderWords+1)
	for i := range w.Workers {
		th := h.NewThread(fmt.Sprintf("worker-%d", i))
		rng := rand.New(rand.NewPCG(w.Seed, uint64(i)))
		wg.Go(func() {
			defer h.ExitThread(th)
			th.WithoutGC(func() {
				for range w.Objects {
					words := code.HeaderWords + rng.IntN(maxWords-code.HeaderWords+1)
					site := allocprof.NoSite
					if len(w.Sites) > 0 {
						site = w.Sites[rng.IntN(len(w.Sites))]
					}
					if _, err := h.AllocateCodeObjectAt(th, site, words); err != nil {
						fail(err)
						return
					}
					objects.Add(1)
					codeBytes.Add(uint64(layout.AlignUp(uintptr(words)*layout.WordBytes, layout.ObjectAlignBytes)))
				}
			})
			for range w.StaticClaims {
				if _, err := h.ClaimStaticBytes(w.StaticBytes); err != nil {
					if errors.Is(err, alloc.ErrStaticExhausted) {
						exhausted.Store(true)
						return
					}
					fail(err)
					return
				}
				claims.Add(1)
			}
		})
	}
	wg.Wait()
	h.CloseCodeRegion()

	res := workloadResult{
		Workers:         w.Workers,
		CodeObjects:     int(objects.Load()),
		CodeBytes:       codeBytes.Load(),
		StaticClaims:    int(claims.Load()),
		StaticBytes:     uint64(h.Static().Used()),
		StaticExhausted: exhausted.Load(),
	}
	return res, errors.Join(errs...)
}
