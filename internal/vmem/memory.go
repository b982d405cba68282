package vmem

import (
	"fmt"
	"sync"
)

// Memory is a provider backed by ordinary Go allocations. Protection is
// recorded per page but not enforced, and Decommit leaves the bytes in place,
// so reused memory really is dirty.
type Memory struct {
	pageSize int

	mu       sync.Mutex
	mappings map[uintptr]*mapping
}

type mapping struct {
	mem  []byte
	prot []Prot
}

// NewMemory returns a provider with the given protection granularity.
func NewMemory(pageSize int) *Memory {
	return &Memory{
		pageSize: pageSize,
		mappings: make(map[uintptr]*mapping),
	}
}

func (m *Memory) Map(size int) ([]byte, error) {
	if size <= 0 || size%m.pageSize != 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadSize, size)
	}
	mem := make([]byte, size)
	prot := make([]Prot, size/m.pageSize)
	for i := range prot {
		prot[i] = ProtReadWrite
	}
	m.mu.Lock()
	m.mappings[Addr(mem)] = &mapping{mem: mem, prot: prot}
	m.mu.Unlock()
	return mem, nil
}

func (m *Memory) Unmap(mem []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	base := Addr(mem)
	mp, ok := m.mappings[base]
	if !ok || len(mp.mem) != len(mem) {
		return ErrNotMapped
	}
	delete(m.mappings, base)
	return nil
}

func (m *Memory) Protect(mem []byte, prot Prot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mp, first, n, err := m.lookup(mem)
	if err != nil {
		return err
	}
	for i := first; i < first+n; i++ {
		mp.prot[i] = prot
	}
	return nil
}

func (m *Memory) Decommit(mem []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, _, _, err := m.lookup(mem)
	return err
}

// Protection returns the recorded protection of the page containing mem[0].
func (m *Memory) Protection(mem []byte) (Prot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mp, first, _, err := m.lookup(mem)
	if err != nil {
		return ProtNone, err
	}
	return mp.prot[first], nil
}

// lookup finds the mapping containing mem and the page range it covers.
// Caller holds m.mu.
func (m *Memory) lookup(mem []byte) (*mapping, int, int, error) {
	if len(mem) == 0 {
		return nil, 0, 0, fmt.Errorf("%w: empty range", ErrNotMapped)
	}
	addr := Addr(mem)
	for base, mp := range m.mappings {
		end := base + uintptr(len(mp.mem))
		if addr < base || addr+uintptr(len(mem)) > end {
			continue
		}
		off := int(addr - base)
		if off%m.pageSize != 0 {
			return nil, 0, 0, fmt.Errorf("%w: %#x not page aligned", ErrBadSize, addr)
		}
		n := (len(mem) + m.pageSize - 1) / m.pageSize
		return mp, off / m.pageSize, n, nil
	}
	return nil, 0, 0, fmt.Errorf("%w: %#x", ErrNotMapped, addr)
}
