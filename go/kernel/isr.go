package kernel

import (
	"fmt"

	"github.com/tricorn/tricorn/go/irq"
	"github.com/tricorn/tricorn/go/models/cpu"
	"github.com/tricorn/tricorn/go/models/trace"
)

func (k *Kernel) installVectors() {
	k.IVT.InstallExceptions(k.exception)
	k.IVT.Install(irq.Timer, irq.Gate{Name: "timer", Kind: irq.InterruptGate, Handler: func(*irq.Frame) { k.timer() }})
	k.IVT.Install(irq.Keyboard, irq.Gate{Name: "keyboard", Kind: irq.InterruptGate, Handler: func(*irq.Frame) { k.keyboard() }})
	k.IVT.Install(irq.RTC, irq.Gate{Name: "rtc", Kind: irq.InterruptGate, Handler: func(*irq.Frame) { k.clock() }})
	k.IVT.Install(irq.Syscall, irq.Gate{Name: "syscall", Kind: irq.TrapGate, DPL: 3, Handler: k.syscall})
	k.IVT.Unhandled = func(vector uint8) {
		k.Config.Warnf("irq", "Undefined interrupt #%d", vector)
	}
}

func (k *Kernel) keyboard() {
	code, ok := k.Keyboard.Next()
	k.PIC.EOI(irq.IRQKeyboard)
	if !ok {
		return
	}
	key := k.Keyboard.Decode(code)
	if key.Byte == 0 {
		return
	}
	target, err := k.Console.HandleKey(key)
	if err != nil {
		k.Config.Warnf("tty", "%v", err)
		return
	}
	// with the scheduler on, the active session follows the timer instead
	if target >= 0 && !k.Config.Sched {
		k.switchTo(target)
	}
}

func (k *Kernel) clock() {
	k.rtc.Interrupt()
	k.PIC.EOI(irq.IRQRTC)
}

// exception reports the fault on the active terminal and kills the process
// that caused it.
func (k *Kernel) exception(vector uint8, name string, f *irq.Frame) {
	pcb := k.Current()
	if pcb == nil {
		panic(fmt.Sprintf("exception %d (%s) with no process", vector, name))
	}
	k.Console.Print(fmt.Sprintf("EXCEPTION\nVector #%d: %s\n", vector, name))
	k.Config.Warnf("kernel", "pid %d (%s): exception %d %s error %#x eip %#x", pcb.ID, pcb.Name, vector, name, f.ErrorCode, f.Regs[cpu.EIP])
	if vector == irq.PageFault {
		k.Config.Warnf("kernel", "cr2 = %#x", k.CPU.CR2)
	}
	if k.Config.Verbose && k.Config.Output != nil {
		f.DumpTo(k.Config.Output)
	}
	k.emit(trace.Event{Kind: uint8(trace.Exception), PID: uint8(pcb.ID), Vector: vector, Name: name})
	k.exit(pcb.task, ExceptionStatus)
}
