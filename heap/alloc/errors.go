package alloc

import "errors"

var (
	// ErrNoFreePages indicates no run of free pages is long enough.
	ErrNoFreePages = errors.New("alloc: no free pages")

	// ErrStaticExhausted indicates the static region cannot hold the request.
	ErrStaticExhausted = errors.New("alloc: static space exhausted")

	// ErrStaticWrap indicates the request would wrap around the address space.
	ErrStaticWrap = errors.New("alloc: static claim wraps address space")

	// ErrMisaligned indicates a byte count that is not a multiple of the object alignment.
	ErrMisaligned = errors.New("alloc: size not object aligned")

	// ErrBadSpace indicates memory and page table sizes do not agree.
	ErrBadSpace = errors.New("alloc: memory does not match page table")
)
