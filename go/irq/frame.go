package irq

import (
	"fmt"
	"io"

	"github.com/tricorn/tricorn/go/models/cpu"
)

// Frame is what an entry stub leaves on the kernel stack: the interrupted
// register state (pushal plus the iret frame) and the vector information.
// Handlers may edit Regs; the edited state is what iret restores.
type Frame struct {
	Vector    uint8
	ErrorCode uint32
	// the interrupted context ran at user privilege
	User bool
	Regs cpu.Context
}

// Return sets the value the interrupted context sees in eax.
func (f *Frame) Return(val uint32) {
	f.Regs[cpu.EAX] = val
}

func (f *Frame) Arg(i int) uint32 {
	return f.Regs[[]int{cpu.EBX, cpu.ECX, cpu.EDX}[i]]
}

func (f *Frame) DumpTo(w io.Writer) {
	fmt.Fprintf(w, "vector %d error %#x user %v\n", f.Vector, f.ErrorCode, f.User)
	for i := 0; i < cpu.NumRegs; i += 4 {
		for j := i; j < i+4 && j < cpu.NumRegs; j++ {
			fmt.Fprintf(w, "%-6s = %08x ", cpu.RegNames[j], f.Regs[j])
		}
		fmt.Fprintln(w)
	}
}
