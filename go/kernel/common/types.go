package common

import (
	"github.com/pkg/errors"
)

// Memory is the address space a syscall argument points into.
type Memory interface {
	Check(virt, size uint32, write, user bool) error
	Read(virt uint32, p []byte, user bool) error
	Write(virt uint32, p []byte, user bool) error
	ReadString(virt uint32, max int, user bool) (string, error)
}

type (
	// Buf is a user pointer the kernel reads from.
	Buf struct {
		Addr uint32
		K    *KernelBase
	}
	// Obuf is a user pointer the kernel writes to.
	Obuf struct{ Buf }
	Len  uint32
	Fd   int32
	Ptr  uint32
)

// MaxString bounds string arguments.
const MaxString = 1024

var ErrNull = errors.New("null user pointer")

func NewBuf(k Kernel, addr uint32) Buf {
	return Buf{K: k.Base(), Addr: addr}
}

// Read copies n bytes in from user memory after checking the whole range.
func (b Buf) Read(n Len) ([]byte, error) {
	if b.Addr == 0 {
		return nil, ErrNull
	}
	if err := b.K.Mem.Check(b.Addr, uint32(n), false, true); err != nil {
		return nil, err
	}
	p := make([]byte, n)
	return p, b.K.Mem.Read(b.Addr, p, true)
}

// Check validates the buffer for a write of n bytes.
func (b Obuf) Check(n Len) error {
	if b.Addr == 0 {
		return ErrNull
	}
	return b.K.Mem.Check(b.Addr, uint32(n), true, true)
}

func (b Obuf) Write(p []byte) error {
	if err := b.Check(Len(len(p))); err != nil {
		return err
	}
	return b.K.Mem.Write(b.Addr, p, true)
}
