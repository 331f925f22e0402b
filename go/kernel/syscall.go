package kernel

import (
	"github.com/tricorn/tricorn/go/irq"
	"github.com/tricorn/tricorn/go/kernel/common"
	"github.com/tricorn/tricorn/go/models/cpu"
	"github.com/tricorn/tricorn/go/models/trace"
)

// SyscallNames binds the int 0x80 numbers to receiver methods.
var SyscallNames = map[uint32]string{
	1:  "exit",
	2:  "spawn",
	3:  "read",
	4:  "write",
	5:  "open",
	6:  "close",
	7:  "get_arguments",
	8:  "map_display_buffer",
	9:  "set_handler",
	10: "sigreturn",
}

// Syscalls is the system call receiver. Each method acts on the process
// running on the active session.
type Syscalls struct {
	common.KernelBase
	k *Kernel
}

func newSyscalls(k *Kernel) (*Syscalls, error) {
	s := &Syscalls{k: k}
	s.Mem = k.MMU
	s.Config = k.Config
	if err := common.Init(s, SyscallNames); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Syscalls) cur() *PCB {
	return s.k.Current()
}

func (s *Syscalls) Exit(status int32) int32 {
	s.k.exit(s.cur().task, status)
	return 0
}

func (s *Syscalls) Spawn(command string) int32 {
	return s.k.spawn(s.cur().task, command)
}

func (s *Syscalls) Read(fd common.Fd, buf common.Obuf, n common.Len) int32 {
	return s.k.read(s.cur(), fd, buf, n)
}

func (s *Syscalls) Write(fd common.Fd, buf common.Buf, n common.Len) int32 {
	return s.k.write(s.cur(), fd, buf, n)
}

func (s *Syscalls) Open(name string) int32 {
	return s.k.open(s.cur(), name)
}

func (s *Syscalls) Close(fd common.Fd) int32 {
	return s.k.close(s.cur(), fd)
}

func (s *Syscalls) GetArguments(buf common.Obuf, n common.Len) int32 {
	return s.k.getArguments(s.cur(), buf, n)
}

func (s *Syscalls) MapDisplayBuffer(out common.Ptr) int32 {
	return s.k.mapDisplayBuffer(s.cur(), out)
}

// signals are not delivered
func (s *Syscalls) SetHandler(signum, handler common.Ptr) int32 {
	return -1
}

func (s *Syscalls) Sigreturn() int32 {
	return -1
}

// syscall is the int 0x80 service routine: eax selects the call, ebx ecx
// edx carry the arguments and the result goes back in eax.
func (k *Kernel) syscall(f *irq.Frame) {
	num := f.Regs[cpu.EAX]
	sys := k.sys.Lookup(num)
	if sys == nil {
		k.Config.Debugf("syscall", "%v %d", common.ErrUnknownSyscall, num)
		f.Return(^uint32(0))
		return
	}
	args := common.RegArgs(f.Regs, common.ArgRegs)(len(common.ArgRegs))
	pid := k.Current().ID
	if k.Config.TraceSys {
		k.Config.Logf("strace", "[%d] %s", pid, sys.Trace(args))
	}
	ret, err := sys.Call(args)
	if err != nil {
		k.Config.Debugf("syscall", "%v", err)
		ret = -1
	}
	if k.Config.TraceSys {
		k.Config.Logf("strace", "[%d] %s%s", pid, sys.Name, sys.TraceRet(args, ret))
	}
	k.emit(trace.Event{Kind: uint8(trace.Syscall), PID: uint8(pid), Status: ret, Name: sys.Name})
	f.Return(uint32(ret))
}
