package kernel

import (
	"github.com/tricorn/tricorn/go/driver"
	"github.com/tricorn/tricorn/go/kernel/common"
	"github.com/tricorn/tricorn/go/mmu"
)

func (k *Kernel) descriptor(pcb *PCB, fd common.Fd) (*FileDescriptor, driver.Driver) {
	if fd < 0 || fd >= NumFiles || !pcb.Files[fd].InUse {
		return nil, nil
	}
	desc := &pcb.Files[fd]
	drv, err := k.Drivers.Get(desc.Kind)
	if err != nil {
		return nil, nil
	}
	return desc, drv
}

func (k *Kernel) read(pcb *PCB, fd common.Fd, buf common.Obuf, n common.Len) int32 {
	if fd == 1 {
		return -1
	}
	desc, drv := k.descriptor(pcb, fd)
	if desc == nil {
		return -1
	}
	if err := buf.Check(n); err != nil {
		return -1
	}
	tmp := make([]byte, n)
	count, err := drv.Read(desc.Inode, tmp, desc.Pos)
	if err != nil || count < 0 {
		k.Config.Debugf("syscall", "read fd %d: %v", fd, err)
		return -1
	}
	if err := buf.Write(tmp[:count]); err != nil {
		return -1
	}
	desc.Pos += uint32(count)
	return int32(count)
}

func (k *Kernel) write(pcb *PCB, fd common.Fd, buf common.Buf, n common.Len) int32 {
	if fd == 0 {
		return -1
	}
	desc, drv := k.descriptor(pcb, fd)
	if desc == nil {
		return -1
	}
	p, err := buf.Read(n)
	if err != nil {
		return -1
	}
	count, err := drv.Write(desc.Inode, p)
	if err != nil {
		k.Config.Debugf("syscall", "write fd %d: %v", fd, err)
		return -1
	}
	return int32(count)
}

func (k *Kernel) open(pcb *PCB, name string) int32 {
	dent, err := k.FS.ResolveByName(name)
	if err != nil {
		return -1
	}
	fd := -1
	for i := 2; i < NumFiles; i++ {
		if !pcb.Files[i].InUse {
			fd = i
			break
		}
	}
	if fd < 0 {
		return -1
	}
	kind := driver.KindOf(dent.Type)
	drv, err := k.Drivers.Get(kind)
	if err != nil {
		return -1
	}
	pcb.Files[fd] = FileDescriptor{Kind: kind, Inode: dent.Inode, InUse: true}
	if err := drv.Open(name); err != nil {
		pcb.Files[fd] = FileDescriptor{}
		return -1
	}
	return int32(fd)
}

func (k *Kernel) close(pcb *PCB, fd common.Fd) int32 {
	if fd <= 1 || fd >= NumFiles || !pcb.Files[fd].InUse {
		return -1
	}
	if err := k.release(pcb, int(fd)); err != nil {
		return -1
	}
	return 0
}

// getArguments copies the argument tail with strncpy semantics: at most n
// bytes, NUL padded when shorter.
func (k *Kernel) getArguments(pcb *PCB, buf common.Obuf, n common.Len) int32 {
	if buf.Addr == 0 || n == 0 {
		return -1
	}
	out := make([]byte, n)
	copy(out, pcb.Args)
	if err := buf.Write(out); err != nil {
		return -1
	}
	return 0
}

func (k *Kernel) mapDisplayBuffer(pcb *PCB, out common.Ptr) int32 {
	if uint32(out) < mmu.UserBase || uint32(out) > mmu.UserEnd-4 {
		return -1
	}
	pcb.Vidmap = true
	k.MMU.EnableVidmap(true)
	if err := k.MMU.WriteUint32(uint32(out), mmu.VidmapAddr, true); err != nil {
		return -1
	}
	return 0
}
