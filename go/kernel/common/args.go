package common

import (
	"github.com/tricorn/tricorn/go/models/cpu"
)

// ArgRegs is the register order of syscall arguments after eax.
var ArgRegs = []int{cpu.EBX, cpu.ECX, cpu.EDX}

// RegArgs reads the first n syscall arguments out of a saved context.
func RegArgs(ctx cpu.Context, regs []int) func(n int) []uint32 {
	return func(n int) []uint32 {
		out := make([]uint32, n)
		for i := range out {
			out[i] = ctx[regs[i]]
		}
		return out
	}
}
