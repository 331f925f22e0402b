package cpu

import (
	"encoding/binary"
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

type MemError struct {
	Addr uint32
	Size int
	Enum int
}

func (m *MemError) Error() string {
	reason := "memory error"
	switch m.Enum {
	case MEM_READ_UNMAPPED:
		reason = "unmapped physical read"
	case MEM_WRITE_UNMAPPED:
		reason = "unmapped physical write"
	}
	return fmt.Sprintf("%s at %#x(%d)", reason, m.Addr, m.Size)
}

// Phys is the physical address space: a sorted list of installed regions.
// Reads and writes may span adjacent regions but never a hole.
type Phys struct {
	sync.Mutex
	regions Regions
}

func NewPhys() *Phys {
	return &Phys{}
}

// Install adds a zeroed region. Overlapping an existing region is an error.
func (m *Phys) Install(addr, size uint32, desc string) (*Region, error) {
	m.Lock()
	defer m.Unlock()
	if size == 0 || addr+size < addr {
		return nil, errors.Errorf("bad region %#x+%#x", addr, size)
	}
	for _, r := range m.regions {
		if addr < r.Addr+r.Size && r.Addr < addr+size {
			return nil, errors.Errorf("region %#x+%#x overlaps %s", addr, size, r)
		}
	}
	region := &Region{Addr: addr, Size: size, Desc: desc, chunks: make(map[uint32]*[chunkSize]byte)}
	m.regions = append(m.regions, region)
	sort.Sort(m.regions)
	return region, nil
}

func (m *Phys) Regions() Regions {
	m.Lock()
	defer m.Unlock()
	out := make(Regions, len(m.regions))
	copy(out, m.regions)
	return out
}

func (m *Phys) rangeValid(addr uint32, size int) bool {
	end := uint64(addr) + uint64(size)
	for uint64(addr) < end {
		r := m.regions.Find(addr)
		if r == nil {
			return false
		}
		addr = r.Addr + r.Size
		if addr == 0 {
			break
		}
	}
	return true
}

func (m *Phys) access(addr uint32, p []byte, write bool) error {
	m.Lock()
	defer m.Unlock()
	if !m.rangeValid(addr, len(p)) {
		enum := MEM_READ_UNMAPPED
		if write {
			enum = MEM_WRITE_UNMAPPED
		}
		return &MemError{Addr: addr, Size: len(p), Enum: enum}
	}
	for len(p) > 0 {
		n := m.regions.Find(addr).access(addr, p, write)
		addr, p = addr+uint32(n), p[n:]
	}
	return nil
}

func (m *Phys) Read(addr uint32, p []byte) error {
	return m.access(addr, p, false)
}

func (m *Phys) Write(addr uint32, p []byte) error {
	return m.access(addr, p, true)
}

func (m *Phys) ReadUint32(addr uint32) (uint32, error) {
	var buf [4]byte
	if err := m.Read(addr, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func (m *Phys) WriteUint32(addr, val uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], val)
	return m.Write(addr, buf[:])
}
