package mmu

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/tricorn/tricorn/go/models/cpu"
)

type table [1024]entry

// Manager owns the single global page directory. Processes share one user
// window whose directory entry is rewritten on every switch, so exactly one
// process image is visible at a time.
type Manager struct {
	phys *cpu.Phys

	dir    table
	tables [1024]*table

	process int
	display Display

	// single-entry translation cache, keyed by directory index
	tlbValid bool
	tlbIndex uint32
	tlbEntry entry
	Flushes  int
}

// New installs physical memory for the low 4MB, the kernel page and one
// frame per process id in 1..frames, and builds the boot directory.
func New(phys *cpu.Phys, frames int) (*Manager, error) {
	if _, err := phys.Install(0, LargePageSize, "low memory"); err != nil {
		return nil, err
	}
	if _, err := phys.Install(KernelBase, LargePageSize, "kernel"); err != nil {
		return nil, err
	}
	for id := 1; id <= frames; id++ {
		if _, err := phys.Install(FrameAddr(id), LargePageSize, fmt.Sprintf("process %d", id)); err != nil {
			return nil, errors.Wrapf(err, "installing frame %d", id)
		}
	}
	m := &Manager{phys: phys, display: Live}

	// low 4MB: only the video page and its offscreen copies are mapped
	low := &table{}
	for i := 0; i <= MaxOffscreen; i++ {
		addr := uint32(VideoAddr + i*PageSize)
		e := &low[addr>>12&0x3FF]
		e.SetFlags(FlagPresent | FlagRW)
		e.SetFrame(addr)
	}
	m.setTable(lowDir, low, FlagPresent|FlagRW)

	kernel := &m.dir[kernelDir]
	kernel.SetFlags(FlagPresent | FlagRW | FlagHugePage | FlagGlobal)
	kernel.SetFrame(KernelBase)

	vid := &table{}
	e := &vid[0]
	e.SetFlags(FlagPresent | FlagRW | FlagUser)
	e.SetFrame(VideoAddr)
	m.tables[vidmapDir] = vid
	return m, nil
}

func (m *Manager) setTable(index uint32, t *table, flags EntryFlag) {
	m.tables[index] = t
	e := &m.dir[index]
	e.SetFlags(flags)
}

func (m *Manager) Phys() *cpu.Phys {
	return m.phys
}

// Process is the id whose frame backs the user window, 0 when none.
func (m *Manager) Process() int {
	return m.process
}

func (m *Manager) Display() Display {
	return m.display
}

func (m *Manager) Flush() {
	m.tlbValid = false
	m.Flushes++
}

// ActivateProcessRegion points the user window at process id's frame.
func (m *Manager) ActivateProcessRegion(id int) {
	e := &m.dir[userDir]
	*e = 0
	e.SetFlags(FlagPresent | FlagRW | FlagUser | FlagHugePage)
	e.SetFrame(FrameAddr(id))
	m.process = id
	m.Flush()
}

// ActivateDisplayBuffer points the video address, and the user vidmap page,
// at the live display or at a terminal's offscreen page.
func (m *Manager) ActivateDisplayBuffer(target Display) {
	addr := target.Addr()
	m.tables[lowDir][VideoAddr>>12&0x3FF].SetFrame(addr)
	m.tables[vidmapDir][0].SetFrame(addr)
	m.display = target
	m.Flush()
}

// EnableVidmap exposes the user video page at VidmapAddr for the current process.
func (m *Manager) EnableVidmap(on bool) {
	e := &m.dir[vidmapDir]
	if on {
		e.SetFlags(FlagPresent | FlagRW | FlagUser)
	} else {
		e.ClearFlags(FlagPresent)
	}
	m.Flush()
}

func (m *Manager) lookupDir(index uint32) entry {
	if m.tlbValid && m.tlbIndex == index {
		return m.tlbEntry
	}
	e := m.dir[index]
	if e.HasFlags(FlagPresent) {
		m.tlbValid, m.tlbIndex, m.tlbEntry = true, index, e
	}
	return e
}

// Translate walks the directory for virt with the given access rights.
func (m *Manager) Translate(virt uint32, write, user bool) (uint32, error) {
	index := virt >> 22
	pde := m.lookupDir(index)
	if !pde.HasFlags(FlagPresent) {
		return 0, fault(virt, false, write, user)
	}
	if user && !pde.HasFlags(FlagUser) || write && !pde.HasFlags(FlagRW) {
		return 0, fault(virt, true, write, user)
	}
	if pde.HasFlags(FlagHugePage) {
		return pde.Frame() | virt&(LargePageSize-1), nil
	}
	t := m.tables[index]
	if t == nil {
		return 0, fault(virt, false, write, user)
	}
	pte := t[virt>>12&0x3FF]
	if !pte.HasFlags(FlagPresent) {
		return 0, fault(virt, false, write, user)
	}
	if user && !pte.HasFlags(FlagUser) || write && !pte.HasFlags(FlagRW) {
		return 0, fault(virt, true, write, user)
	}
	return pte.Frame() | virt&(PageSize-1), nil
}

// Check verifies that [virt, virt+size) is fully mapped for the access.
func (m *Manager) Check(virt, size uint32, write, user bool) error {
	if size == 0 {
		return nil
	}
	end := uint64(virt) + uint64(size)
	if end > 1<<32 {
		return fault(virt, false, write, user)
	}
	for addr := uint64(virt); addr < end; addr = (addr &^ (PageSize - 1)) + PageSize {
		if _, err := m.Translate(uint32(addr), write, user); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) access(virt uint32, p []byte, write, user bool) error {
	for len(p) > 0 {
		phys, err := m.Translate(virt, write, user)
		if err != nil {
			return err
		}
		n := int(PageSize - virt&(PageSize-1))
		if n > len(p) {
			n = len(p)
		}
		if write {
			err = m.phys.Write(phys, p[:n])
		} else {
			err = m.phys.Read(phys, p[:n])
		}
		if err != nil {
			return err
		}
		virt, p = virt+uint32(n), p[n:]
	}
	return nil
}

func (m *Manager) Read(virt uint32, p []byte, user bool) error {
	return m.access(virt, p, false, user)
}

func (m *Manager) Write(virt uint32, p []byte, user bool) error {
	return m.access(virt, p, true, user)
}

// ReadString reads a NUL-terminated string of at most max bytes.
func (m *Manager) ReadString(virt uint32, max int, user bool) (string, error) {
	var out []byte
	var c [1]byte
	for len(out) < max {
		if err := m.Read(virt+uint32(len(out)), c[:], user); err != nil {
			return "", err
		}
		if c[0] == 0 {
			break
		}
		out = append(out, c[0])
	}
	return string(out), nil
}

func (m *Manager) ReadUint32(virt uint32, user bool) (uint32, error) {
	var buf [4]byte
	if err := m.Read(virt, buf[:], user); err != nil {
		return 0, err
	}
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24, nil
}

func (m *Manager) WriteUint32(virt, val uint32, user bool) error {
	buf := []byte{byte(val), byte(val >> 8), byte(val >> 16), byte(val >> 24)}
	return m.Write(virt, buf, user)
}

// Mapping describes one present translation for display.
type Mapping struct {
	Virt, Phys, Size uint32
	Flags            string
}

func (m Mapping) String() string {
	return fmt.Sprintf("0x%08x-0x%08x -> 0x%08x %s", m.Virt, m.Virt+m.Size, m.Phys, m.Flags)
}

func (m *Manager) Mappings() []Mapping {
	var out []Mapping
	for i, pde := range m.dir {
		if !pde.HasFlags(FlagPresent) {
			continue
		}
		base := uint32(i) << 22
		if pde.HasFlags(FlagHugePage) {
			out = append(out, Mapping{base, pde.Frame(), LargePageSize, pde.flagString()})
			continue
		}
		if t := m.tables[i]; t != nil {
			for j, pte := range t {
				if pte.HasFlags(FlagPresent) {
					flags := pte.flagString()
					if !pde.HasFlags(FlagUser) {
						flags = flags[:2] + "-"
					}
					out = append(out, Mapping{base | uint32(j)<<12, pte.Frame(), PageSize, flags})
				}
			}
		}
	}
	return out
}
