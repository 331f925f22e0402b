package kernel

import (
	"github.com/tricorn/tricorn/go/models/cpu"
	"github.com/tricorn/tricorn/go/models/trace"
)

// Context is a suspended kernel control flow: the stack and frame pointers
// it stopped with and the channel its goroutine is parked on.
type Context struct {
	SP, FP uint32
	resume chan int32
}

func (c Context) Valid() bool {
	return c.resume != nil
}

// capture records the running task's resume point.
func (k *Kernel) capture(t *task) Context {
	return Context{SP: k.CPU.Get(cpu.ESP), FP: k.CPU.Get(cpu.EBP), resume: t.wake}
}

// resume installs c's stack and frame pointers and hands the machine, CPU
// lock included, to c's goroutine. The caller must park or terminate.
func (k *Kernel) resume(c Context, v int32) {
	k.CPU.Set(cpu.ESP, c.SP)
	k.CPU.Set(cpu.EBP, c.FP)
	c.resume <- v
}

// park gives up the machine until the task is resumed and returns the value
// it was resumed with.
func (k *Kernel) park(t *task) int32 {
	v := <-t.wake
	k.emit(trace.Event{Kind: uint8(trace.Resume), PID: uint8(t.pcb.ID), SP: k.CPU.Get(cpu.ESP), FP: k.CPU.Get(cpu.EBP)})
	return v
}

// halt unwinds an exiting task's goroutine. next runs after the unwind and
// passes the machine on.
type halt struct {
	next func()
}
