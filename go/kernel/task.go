package kernel

import (
	"github.com/pkg/errors"

	"github.com/tricorn/tricorn/go/irq"
	"github.com/tricorn/tricorn/go/kernel/common"
	"github.com/tricorn/tricorn/go/mmu"
	"github.com/tricorn/tricorn/go/models/cpu"
	"github.com/tricorn/tricorn/go/user"
)

// task is the goroutine of one process incarnation. It implements the user
// mode machine: between calls it runs native code without the CPU lock.
type task struct {
	k     *Kernel
	pcb   *PCB
	entry uint32
	wake  chan int32
	proc  *user.Proc

	// set by exit; later stubs on the unwinding goroutine are no-ops
	halted   bool
	unwind   halt
	inKernel bool
}

func newTask(k *Kernel, pcb *PCB, entry uint32) *task {
	t := &task{k: k, pcb: pcb, entry: entry, wake: make(chan int32, 1)}
	t.proc = user.NewProc(t)
	return t
}

// enter takes the CPU at an instruction boundary and delivers pending interrupts.
func (t *task) enter() bool {
	if t.halted {
		return false
	}
	t.k.mu.Lock()
	t.inKernel = true
	t.k.IVT.Poll()
	return true
}

func (t *task) leave() {
	if t.halted {
		return
	}
	t.inKernel = false
	t.k.mu.Unlock()
}

func (t *task) PID() int {
	return t.pcb.ID
}

func (t *task) Syscall(num uint32, args ...uint32) int32 {
	if !t.enter() {
		return -1
	}
	defer t.leave()
	c := t.k.CPU
	c.Set(cpu.EAX, num)
	for i, reg := range common.ArgRegs {
		var v uint32
		if i < len(args) {
			v = args[i]
		}
		c.Set(reg, v)
	}
	t.k.IVT.Int(irq.Syscall)
	return int32(c.Get(cpu.EAX))
}

func (t *task) Int(vector uint8) {
	if !t.enter() {
		return
	}
	defer t.leave()
	t.k.IVT.Int(vector)
}

func (t *task) Load(addr uint32, p []byte) {
	if !t.enter() {
		return
	}
	defer t.leave()
	if err := t.k.MMU.Read(addr, p, true); err != nil {
		t.k.fault(err)
	}
}

func (t *task) Store(addr uint32, p []byte) {
	if !t.enter() {
		return
	}
	defer t.leave()
	if err := t.k.MMU.Write(addr, p, true); err != nil {
		t.k.fault(err)
	}
}

func (t *task) Spin() {
	if t.enter() {
		t.leave()
	}
}

// fault raises the exception for a failed user memory access.
func (k *Kernel) fault(err error) {
	if pf, ok := errors.Cause(err).(*mmu.PageFault); ok {
		k.CPU.CR2 = pf.Addr
		k.CPU.OnFault(pf.Addr, pf.Code)
		k.IVT.Raise(irq.PageFault, pf.Code)
		return
	}
	k.IVT.Raise(irq.GeneralProtection, 0)
}
