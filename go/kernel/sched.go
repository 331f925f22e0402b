package kernel

import (
	"github.com/tricorn/tricorn/go/irq"
	"github.com/tricorn/tricorn/go/models/trace"
)

// switchTo suspends the active session's process and runs session next,
// spawning its root if it has none. It returns on the suspended process's
// goroutine once the rotation comes back to it.
func (k *Kernel) switchTo(next int) {
	cur := k.Console.Active()
	if next == cur || next < 0 || next >= len(k.sessions) {
		return
	}
	g := k.CPU.Guard()
	defer g.Release()

	pcb := k.procs[k.sessions[cur].PID]
	t := pcb.task
	pcb.Saved = k.capture(t)
	pcb.ESP0 = k.CPU.TSS.ESP0
	k.emit(trace.Event{Kind: uint8(trace.Suspend), PID: uint8(pcb.ID), SP: pcb.Saved.SP, FP: pcb.Saved.FP})

	k.Config.Debugf("sched", "term %d pid %d -> term %d", cur, pcb.ID, next)
	k.Console.SetActive(next)
	if target := k.sessions[next].PID; target != 0 {
		tp := k.procs[target]
		k.CPU.TSS.ESP0 = tp.ESP0
		k.activate(target)
		k.resume(tp.Saved, 0)
	} else {
		root, err := k.create(k.Config.Shell, 0, next)
		if err != nil {
			k.spawnFailed(err)
			k.Console.SetActive(cur)
			k.CPU.TSS.ESP0 = pcb.ESP0
			k.activate(pcb.ID)
			return
		}
		k.start(root)
	}
	k.park(t)
}

// timer rotates through the sessions once per tick.
func (k *Kernel) timer() {
	k.PIC.EOI(irq.IRQTimer)
	k.ticks++
	if n := len(k.sessions); k.Config.Sched && n > 1 {
		k.switchTo((k.Console.Active() + 1) % n)
	}
}
