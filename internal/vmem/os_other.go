//go:build !unix

package vmem

// NewOS returns an in-memory provider where the OS has no mmap.
func NewOS() Provider { return NewMemory(4096) }
