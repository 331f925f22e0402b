package cpu

import (
	"fmt"
	"strings"
)

// Regs is a fixed i386 register file.
type Regs struct {
	vals [NumRegs]uint32
}

// Context is a saved copy of a register file.
type Context [NumRegs]uint32

func (r *Regs) Get(enum int) uint32 {
	return r.vals[enum]
}

func (r *Regs) Set(enum int, val uint32) {
	r.vals[enum] = val
}

func (r *Regs) ContextSave() Context {
	return Context(r.vals)
}

func (r *Regs) ContextRestore(ctx Context) {
	r.vals = [NumRegs]uint32(ctx)
}

func (r *Regs) String() string {
	var out []string
	for i, name := range RegNames {
		out = append(out, fmt.Sprintf("%s=%08x", name, r.vals[i]))
	}
	return strings.Join(out, " ")
}
