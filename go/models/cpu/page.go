package cpu

import (
	"fmt"
	"strings"
)

const chunkSize = 0x1000

// Region is a span of installed physical memory. Storage is allocated in
// 4KB chunks on first write, so large frames cost nothing until touched.
type Region struct {
	Addr uint32
	Size uint32
	Desc string

	chunks map[uint32]*[chunkSize]byte
}

func (r *Region) String() string {
	desc := fmt.Sprintf("0x%08x-0x%08x", r.Addr, r.Addr+r.Size)
	if r.Desc != "" {
		desc += fmt.Sprintf(" [%s]", r.Desc)
	}
	return desc
}

func (r *Region) Contains(addr uint32) bool {
	return addr >= r.Addr && addr-r.Addr < r.Size
}

// copy at most one chunk between p and the region at addr, returning the byte count
func (r *Region) access(addr uint32, p []byte, write bool) int {
	off := addr - r.Addr
	base := off &^ (chunkSize - 1)
	n := chunkSize - int(off-base)
	if left := int(r.Size - off); n > left {
		n = left
	}
	if n > len(p) {
		n = len(p)
	}
	chunk := r.chunks[base]
	if write {
		if chunk == nil {
			chunk = new([chunkSize]byte)
			r.chunks[base] = chunk
		}
		copy(chunk[off-base:], p[:n])
	} else if chunk == nil {
		for i := range p[:n] {
			p[i] = 0
		}
	} else {
		copy(p[:n], chunk[off-base:])
	}
	return n
}

type Regions []*Region

func (p Regions) Len() int           { return len(p) }
func (p Regions) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }
func (p Regions) Less(i, j int) bool { return p[i].Addr < p[j].Addr }

func (p Regions) String() string {
	s := make([]string, len(p))
	for i, v := range p {
		s[i] = v.String()
	}
	return strings.Join(s, "\n")
}

// binary search for the index of the region containing addr, or -1
func (p Regions) bsearch(addr uint32) int {
	l, r := 0, len(p)-1
	for l <= r {
		mid := (l + r) / 2
		e := p[mid]
		if addr < e.Addr {
			r = mid - 1
		} else if e.Contains(addr) {
			return mid
		} else {
			l = mid + 1
		}
	}
	return -1
}

func (p Regions) Find(addr uint32) *Region {
	if i := p.bsearch(addr); i >= 0 {
		return p[i]
	}
	return nil
}
