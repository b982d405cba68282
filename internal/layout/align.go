package layout

// AlignUp rounds n up to the next multiple of align, which must be a power of two.
//
// Example:
//
//	AlignUp(1, 16)  = 16
//	AlignUp(16, 16) = 16
//	AlignUp(17, 16) = 32
func AlignUp(n, align uintptr) uintptr {
	return (n + align - 1) &^ (align - 1)
}

// AlignDown rounds n down to a multiple of align, which must be a power of two.
func AlignDown(n, align uintptr) uintptr {
	return n &^ (align - 1)
}

// IsAligned reports whether n is a multiple of align (a power of two).
func IsAligned(n, align uintptr) bool {
	return n&(align-1) == 0
}

// PagesFor returns the number of whole pages needed to hold nbytes.
func PagesFor(nbytes uintptr) int {
	return int(AlignUp(nbytes, PageBytes) >> PageShift)
}
