//go:build unix

package vmem

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// OS maps anonymous private memory from the operating system.
type OS struct{}

// NewOS returns the operating-system provider.
func NewOS() Provider { return OS{} }

func (OS) Map(size int) ([]byte, error) {
	if size <= 0 || size%unix.Getpagesize() != 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadSize, size)
	}
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("vmem: mmap %d bytes: %w", size, err)
	}
	return mem, nil
}

func (OS) Unmap(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	err := unix.Munmap(mem)
	if errors.Is(err, unix.EINVAL) {
		return ErrNotMapped
	}
	return err
}

func (OS) Protect(mem []byte, prot Prot) error {
	if len(mem) == 0 {
		return nil
	}
	if err := unix.Mprotect(mem, unixProt(prot)); err != nil {
		return fmt.Errorf("vmem: mprotect %#x+%d %s: %w", Addr(mem), len(mem), prot, err)
	}
	return nil
}

func (OS) Decommit(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	if err := unix.Madvise(mem, unix.MADV_DONTNEED); err != nil {
		return fmt.Errorf("vmem: madvise %#x+%d: %w", Addr(mem), len(mem), err)
	}
	return nil
}

func unixProt(p Prot) int {
	switch p {
	case ProtRead:
		return unix.PROT_READ
	case ProtReadWrite:
		return unix.PROT_READ | unix.PROT_WRITE
	case ProtReadExec:
		return unix.PROT_READ | unix.PROT_EXEC
	case ProtAll:
		return unix.PROT_READ | unix.PROT_WRITE | unix.PROT_EXEC
	default:
		return unix.PROT_NONE
	}
}
