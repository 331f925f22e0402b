package kernel

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/pkg/errors"

	"github.com/tricorn/tricorn/go/driver"
	"github.com/tricorn/tricorn/go/irq"
	"github.com/tricorn/tricorn/go/loader"
	"github.com/tricorn/tricorn/go/models/cpu"
	"github.com/tricorn/tricorn/go/models/trace"
	"github.com/tricorn/tricorn/go/user"
)

func (k *Kernel) freeID() int {
	for id := 1; id < NumProcesses; id++ {
		if !k.procs[id].InUse {
			return id
		}
	}
	return 0
}

// create validates command, loads its image into a free slot and binds the
// new process to session. Control is not transferred; see start.
func (k *Kernel) create(command string, parent, session int) (*PCB, error) {
	name, args, err := parseCommand(command)
	if err != nil {
		return nil, err
	}
	dent, err := k.FS.ResolveByName(name)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	hdr, err := loader.ReadHeader(k.FS, dent)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	id := k.freeID()
	if id == 0 {
		return nil, ErrNoFreeSlot
	}

	g := k.CPU.Guard()
	defer g.Release()
	prev := k.MMU.Process()
	k.MMU.ActivateProcessRegion(id)
	k.MMU.EnableVidmap(false)
	if err := loader.Load(k.FS, dent, k.MMU); err != nil {
		k.activate(prev)
		return nil, errors.Wrap(err, name)
	}

	pcb := k.procs[id]
	*pcb = PCB{
		ID:             id,
		InUse:          true,
		ParentID:       parent,
		Session:        session,
		Name:           name,
		KernelStackTop: kernelStackTop(id),
		ESP0:           kernelStackTop(id) - 4,
		Args:           args,
	}
	for fd := 0; fd < 2; fd++ {
		pcb.Files[fd] = FileDescriptor{Kind: driver.Terminal, InUse: true}
	}
	pcb.task = newTask(k, pcb, hdr.Entry)
	k.CPU.TSS.ESP0 = pcb.ESP0
	k.CPU.TSS.SS0 = cpu.KernelDS
	k.sessions[session].PID = id
	k.emit(trace.Event{Kind: uint8(trace.Spawn), PID: uint8(id), Parent: uint8(parent), Name: name})
	k.Config.Debugf("kernel", "spawned %q pid %d parent %d term %d", command, id, parent, session)
	return pcb, nil
}

// activate maps the address space of process id, or leaves the current
// mapping alone for id 0.
func (k *Kernel) activate(id int) {
	if id == 0 {
		return
	}
	k.MMU.ActivateProcessRegion(id)
	k.MMU.EnableVidmap(k.procs[id].Vidmap)
}

// start hands the machine to a freshly created process.
func (k *Kernel) start(pcb *PCB) {
	go k.run(pcb.task)
	pcb.task.wake <- 0
}

// spawnFailed reports a spawn failure on the active terminal.
func (k *Kernel) spawnFailed(err error) {
	msg := reason(err)
	k.Console.Print(msg + "\nExecution failed.\n")
	k.Config.Debugf("kernel", "spawn: %v", err)
	k.emit(trace.Event{Kind: uint8(trace.Fail), Name: msg})
}

// spawn runs command as a child of t and returns its exit status.
func (k *Kernel) spawn(t *task, command string) int32 {
	session := k.Console.Active()
	child, err := k.create(command, k.sessions[session].PID, session)
	if err != nil {
		k.spawnFailed(err)
		return -1
	}
	child.ReturnPoint = k.capture(t)
	k.start(child)
	return k.park(t)
}

// respawn restarts the root of session after its last process exited.
func (k *Kernel) respawn(session int) {
	pcb, err := k.create(k.Config.Shell, 0, session)
	if err != nil {
		k.fatal(errors.Wrapf(err, "respawning root of terminal %d", session))
		return
	}
	k.start(pcb)
}

// run is the body of a process goroutine. Whatever the process ends with,
// the machine is passed on once its stack has unwound.
func (k *Kernel) run(t *task) {
	if next := k.execute(t); next != nil {
		next()
	}
}

func (k *Kernel) execute(t *task) (next func()) {
	defer func() {
		if r := recover(); r != nil {
			h, ok := r.(halt)
			if !ok {
				panic(r)
			}
			next = h.next
		}
	}()
	<-t.wake
	k.iret(t.entry)
	prog, ok := user.Lookup(t.entry)
	if !ok {
		k.IVT.Raise(irq.InvalidOpcode, 0)
	}
	status, vector, faulted := k.userMode(t, prog.Main)
	if faulted {
		k.IVT.Raise(vector, 0)
	}
	k.exit(t, status)
	return nil
}

// iret drops the processor to user privilege at the program entry point.
func (k *Kernel) iret(entry uint32) {
	c := k.CPU
	c.Set(cpu.CS, cpu.UserCS)
	c.Set(cpu.DS, cpu.UserDS)
	c.Set(cpu.ES, cpu.UserDS)
	c.Set(cpu.SS, cpu.UserDS)
	c.Set(cpu.ESP, UserStackTop)
	c.Set(cpu.EBP, 0)
	c.Set(cpu.EIP, entry)
	c.Set(cpu.EFLAGS, cpu.FlagReserved|cpu.FlagIF)
}

// userMode runs the program without the CPU lock. A runtime panic in the
// program comes back as the exception vector it corresponds to.
func (k *Kernel) userMode(t *task, main user.Program) (status int32, vector uint8, faulted bool) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if _, ok := r.(halt); ok {
			panic(r)
		}
		if t.halted {
			panic(t.unwind)
		}
		if !t.inKernel {
			k.mu.Lock()
			t.inKernel = true
		}
		vector, faulted = faultVector(r), true
		k.Config.Debugf("kernel", "pid %d: %v", t.pcb.ID, r)
	}()
	t.inKernel = false
	k.mu.Unlock()
	status = main(t.proc)
	if t.halted {
		// the program swallowed its own exit; the machine is already handed off
		panic(t.unwind)
	}
	k.mu.Lock()
	t.inKernel = true
	return status, 0, false
}

func faultVector(r interface{}) uint8 {
	switch v := r.(type) {
	case user.Fault:
		return v.Vector
	case *user.Fault:
		return v.Vector
	case runtime.Error:
		msg := v.Error()
		switch {
		case strings.Contains(msg, "divide by zero"):
			return irq.DivideError
		case strings.Contains(msg, "nil pointer"), strings.Contains(msg, "invalid memory address"):
			return irq.PageFault
		case strings.Contains(msg, "index out of range"), strings.Contains(msg, "slice bounds"):
			return irq.BoundRange
		}
	}
	return irq.AssertionFailure
}

// exit tears down the process of t and transfers control to its parent's
// spawn, or to a fresh root for its session. It does not return.
func (k *Kernel) exit(t *task, status int32) {
	status &= 0xFF
	k.CPU.Cli()
	pcb := t.pcb
	k.LastStatus = status
	for fd := range pcb.Files {
		if pcb.Files[fd].InUse {
			k.release(pcb, fd)
		}
	}
	pcb.InUse = false
	parent := pcb.ParentID
	pcb.ParentID = 0
	session := pcb.Session
	k.sessions[session].PID = parent
	t.halted = true
	k.emit(trace.Event{Kind: uint8(trace.Exit), PID: uint8(pcb.ID), Parent: uint8(parent), Status: status, Name: pcb.Name})
	k.Config.Debugf("kernel", "pid %d exited %d", pcb.ID, status)

	if parent == 0 {
		t.unwind = halt{func() { k.respawn(session) }}
		panic(t.unwind)
	}
	pp := k.procs[parent]
	k.activate(parent)
	k.CPU.TSS.ESP0 = pp.ESP0
	ret := pcb.ReturnPoint
	t.unwind = halt{func() { k.resume(ret, status) }}
	panic(t.unwind)
}

// release frees descriptor fd and closes it in its driver.
func (k *Kernel) release(pcb *PCB, fd int) error {
	desc := pcb.Files[fd]
	pcb.Files[fd] = FileDescriptor{}
	drv, err := k.Drivers.Get(desc.Kind)
	if err != nil {
		return err
	}
	return drv.Close(desc.Inode)
}

// Processes is a table of the slots in use.
func (k *Kernel) Processes() []PCB {
	var out []PCB
	for _, pcb := range k.procs[1:] {
		if pcb.InUse {
			out = append(out, *pcb)
		}
	}
	return out
}

func (p PCB) String() string {
	return fmt.Sprintf("pid %d %-12s parent %d term %d esp0 %#x", p.ID, p.Name, p.ParentID, p.Session, p.ESP0)
}
