// Package kernel runs processes on the simulated machine: spawn and exit,
// the scheduler, the interrupt service routines and the system calls.
package kernel

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/tricorn/tricorn/go/device"
	"github.com/tricorn/tricorn/go/driver"
	"github.com/tricorn/tricorn/go/fs"
	"github.com/tricorn/tricorn/go/irq"
	"github.com/tricorn/tricorn/go/mmu"
	"github.com/tricorn/tricorn/go/models"
	"github.com/tricorn/tricorn/go/models/cpu"
	"github.com/tricorn/tricorn/go/models/trace"
)

// Kernel owns the machine. Exactly one goroutine holds mu at a time; that
// goroutine is the processor. Processes drop it while running user code and
// while the processor is halted.
type Kernel struct {
	mu sync.Mutex

	Config *models.Config
	CPU    *cpu.CPU
	Phys   *cpu.Phys
	MMU    *mmu.Manager
	PIC    *irq.PIC
	IVT    *irq.Table
	FS     fs.FileSystem

	PIT      *device.PIT
	RTC      *device.RTC
	Keyboard *device.Keyboard

	Console *driver.Console
	Drivers driver.Table
	rtc     *driver.RTCDriver
	sys     *Syscalls

	procs    [NumProcesses]*PCB
	sessions []Session

	// status of the most recent exit
	LastStatus int32
	ticks      uint64

	observers []func(trace.Event)
	tracer    *trace.TraceWriter

	err  error
	dead chan struct{}
}

// New builds a machine around fsys. Nothing runs until Boot.
func New(config *models.Config, fsys fs.FileSystem) (*Kernel, error) {
	config.Init()
	k := &Kernel{
		Config:   config,
		CPU:      cpu.New(),
		Phys:     cpu.NewPhys(),
		PIC:      irq.NewPIC(),
		FS:       fsys,
		sessions: make([]Session, config.Terminals),
		dead:     make(chan struct{}),
	}
	var err error
	if k.MMU, err = mmu.New(k.Phys, NumProcesses-1); err != nil {
		return nil, err
	}
	k.IVT = irq.New(k.CPU, k.PIC)
	k.PIT = device.NewPIT(k.PIC)
	k.RTC = device.NewRTC(k.PIC)
	k.Keyboard = device.NewKeyboard(k.PIC)

	if k.Console, err = driver.NewConsole(config.Terminals, k.MMU, k); err != nil {
		return nil, err
	}
	k.rtc = &driver.RTCDriver{Dev: k.RTC, Wait: k}
	k.Drivers = driver.Table{
		driver.Terminal: &driver.TermDriver{Console: k.Console},
		driver.RTC:      k.rtc,
		driver.File:     &driver.FileDriver{FS: fsys},
		driver.Dir:      &driver.DirDriver{FS: fsys},
	}
	for id := range k.procs {
		k.procs[id] = &PCB{ID: id}
	}
	if k.sys, err = newSyscalls(k); err != nil {
		return nil, err
	}
	k.installVectors()
	if config.Trace != nil {
		if k.tracer, err = trace.NewWriter(models.NewAsyncStream(config.Trace), config.Terminals, config.Shell); err != nil {
			return nil, err
		}
		tw := k.tracer
		k.Observe(func(e trace.Event) {
			if err := tw.Pack(&e); err != nil {
				k.Config.Debugf("trace", "%v", err)
			}
		})
	}
	return k, nil
}

// Boot unmasks the interrupt lines, starts the host tickers and spawns the
// root of the first session. The machine keeps running on process
// goroutines after Boot returns.
func (k *Kernel) Boot() error {
	k.mu.Lock()
	for _, line := range []int{irq.IRQTimer, irq.IRQKeyboard, irq.IRQRTC} {
		k.PIC.Enable(line)
	}
	if k.Config.TimerHz > 0 {
		if err := k.PIT.SetRate(k.Config.TimerHz); err != nil {
			k.mu.Unlock()
			return err
		}
		k.PIT.Start()
	}
	if k.Config.RealRTC {
		k.RTC.Start()
	}
	k.Console.SetActive(0)
	pcb, err := k.create(k.Config.Shell, 0, 0)
	if err != nil {
		k.mu.Unlock()
		return errors.Wrap(err, "spawning first shell")
	}
	k.start(pcb)
	return nil
}

// Shutdown stops the host tickers, masks the device lines and flushes the
// trace. Process goroutines stay parked.
func (k *Kernel) Shutdown() error {
	k.PIT.Stop()
	k.RTC.Stop()
	var err error
	k.Inspect(func() {
		for _, line := range []int{irq.IRQTimer, irq.IRQKeyboard, irq.IRQRTC} {
			k.PIC.Disable(line)
		}
		if k.tracer != nil {
			err = k.tracer.Close()
			k.tracer = nil
		}
	})
	return err
}

// Inspect runs fn while the machine is stopped at a boundary.
func (k *Kernel) Inspect(fn func()) {
	k.mu.Lock()
	defer k.mu.Unlock()
	fn()
}

// Done is closed when the kernel can no longer run anything.
func (k *Kernel) Done() <-chan struct{} {
	return k.dead
}

func (k *Kernel) Err() error {
	var err error
	k.Inspect(func() { err = k.err })
	return err
}

// fatal stops the machine for good. It releases the CPU lock.
func (k *Kernel) fatal(err error) {
	k.Config.Warnf("kernel", "%v", err)
	k.err = err
	close(k.dead)
	k.mu.Unlock()
}

// Wait implements driver.Waiter: it enables interrupts and halts until cond
// holds. Interrupt service routines run on the waiting goroutine.
func (k *Kernel) Wait(cond func() bool) {
	g := k.CPU.Guard()
	k.CPU.Sti()
	defer g.Release()
	for {
		k.IVT.Poll()
		if cond() {
			return
		}
		k.halt()
	}
}

// halt sleeps until an interrupt request is latched.
func (k *Kernel) halt() {
	for !k.PIC.Pending() {
		k.mu.Unlock()
		<-k.PIC.Wake()
		k.mu.Lock()
	}
}

// Observe registers fn for every kernel event. Call before Boot or inside
// Inspect.
func (k *Kernel) Observe(fn func(trace.Event)) {
	k.observers = append(k.observers, fn)
}

func (k *Kernel) emit(e trace.Event) {
	e.Tick = k.ticks
	e.Session = uint8(k.Console.Active())
	if len(e.Name) > trace.NameLen {
		e.Name = e.Name[:trace.NameLen]
	}
	for _, fn := range k.observers {
		fn(e)
	}
}

// Process returns a copy of slot id's control block.
func (k *Kernel) Process(id int) PCB {
	return *k.procs[id]
}

func (k *Kernel) Sessions() []Session {
	return append([]Session(nil), k.sessions...)
}

// Current is the process running on the active session, nil before boot.
func (k *Kernel) Current() *PCB {
	pid := k.sessions[k.Console.Active()].PID
	if pid == 0 {
		return nil
	}
	return k.procs[pid]
}

func (k *Kernel) Ticks() uint64 {
	return k.ticks
}

func (k *Kernel) Syscalls() *Syscalls {
	return k.sys
}

func (k *Kernel) RTCDriver() *driver.RTCDriver {
	return k.rtc
}
