package irq

import (
	"fmt"

	"github.com/tricorn/tricorn/go/models/cpu"
)

type Kind int

const (
	// interrupt gates clear IF on entry, trap gates leave it alone
	InterruptGate Kind = iota
	TrapGate
)

type Handler func(f *Frame)

type Gate struct {
	Name    string
	Kind    Kind
	DPL     int
	Handler Handler
}

// Table is the 256-entry vector table together with the delivery protocol
// of the simulated processor.
type Table struct {
	gates [256]Gate
	cpu   *cpu.CPU
	pic   *PIC

	// Unhandled reports vectors that still have the default gate.
	Unhandled func(vector uint8)
}

// New builds a table whose every entry is the default unhandled stub.
func New(c *cpu.CPU, pic *PIC) *Table {
	t := &Table{cpu: c, pic: pic}
	for i := range t.gates {
		t.gates[i] = Gate{Name: fmt.Sprintf("vector %d", i), Kind: InterruptGate, Handler: t.unhandled}
	}
	return t
}

func (t *Table) unhandled(f *Frame) {
	if t.Unhandled != nil {
		t.Unhandled(f.Vector)
	}
}

func (t *Table) Install(vector uint8, gate Gate) {
	t.gates[vector] = gate
}

func (t *Table) Gate(vector uint8) Gate {
	return t.gates[vector]
}

// InstallExceptions routes vectors 0..18 through one stub each into the
// shared handler, which receives the vector number and its name.
func (t *Table) InstallExceptions(shared func(vector uint8, name string, f *Frame)) {
	for v := 0; v < NumExceptions; v++ {
		vector := uint8(v)
		name := ExceptionNames[v]
		t.Install(vector, Gate{
			Name: name,
			Kind: TrapGate,
			Handler: func(f *Frame) {
				shared(vector, name, f)
			},
		})
	}
}

// enter performs the processor side of delivery: stack switch, frame push,
// handler call and iret.
func (t *Table) enter(vector uint8, code uint32) {
	c := t.cpu
	gate := t.gates[vector]
	f := &Frame{Vector: vector, ErrorCode: code, User: c.CPL() == 3, Regs: c.ContextSave()}

	sp := c.Get(cpu.ESP)
	if f.User {
		sp = c.TSS.ESP0
		c.Set(cpu.SS, uint32(c.TSS.SS0))
		// ss, esp
		sp -= 8
	}
	// eflags, cs, eip
	sp -= 12
	if hasErrorCode[vector] && vector < NumExceptions {
		sp -= 4
	}
	// pushal, then the handler prologue pushes ebp and reserves locals
	sp -= 32 + 4
	c.Set(cpu.EBP, sp)
	c.Set(cpu.ESP, sp-16)
	c.Set(cpu.CS, cpu.KernelCS)
	c.Set(cpu.DS, cpu.KernelDS)
	c.Set(cpu.ES, cpu.KernelDS)
	if gate.Kind == InterruptGate {
		c.Cli()
	}
	c.OnIntr(vector)
	gate.Handler(f)

	// iret
	c.ContextRestore(f.Regs)
}

// Raise delivers a processor exception. It ignores IF.
func (t *Table) Raise(vector uint8, code uint32) {
	t.enter(vector, code)
}

// Int executes a software interrupt instruction. A gate whose privilege is
// below the caller's raises a general protection fault instead.
func (t *Table) Int(vector uint8) {
	if t.gates[vector].DPL < t.cpu.CPL() {
		t.enter(GeneralProtection, uint32(vector)<<3|2)
		return
	}
	t.enter(vector, 0)
}

// Poll delivers pending hardware interrupts while IF is set.
func (t *Table) Poll() {
	for t.cpu.IF() {
		vector, ok := t.pic.Ack()
		if !ok {
			return
		}
		t.enter(vector, 0)
	}
}
