// Package user is the user mode side of the machine: the syscall stubs a
// program links against and the registry of native programs.
package user

import (
	"encoding/binary"
	"fmt"
)

// syscall numbers
const (
	SysExit = iota + 1
	SysSpawn
	SysRead
	SysWrite
	SysOpen
	SysClose
	SysGetArguments
	SysMapDisplayBuffer
	SysSetHandler
	SysSigreturn
)

const (
	// staging area for syscall buffers, below the user stack
	Scratch     = 0x083E0000
	ScratchSize = 0x10000

	Stdin  = 0
	Stdout = 1

	// longest argument string the kernel keeps, terminator included
	ArgsLen = 128
)

// Machine is the kernel side of a running process. Every call is an
// instruction boundary at which pending interrupts are delivered.
type Machine interface {
	// Syscall executes int 0x80 with eax=num and ebx, ecx, edx from args.
	Syscall(num uint32, args ...uint32) int32
	// Int executes a software interrupt instruction.
	Int(vector uint8)
	// Load and Store access memory with user privilege. A fault kills the process.
	Load(addr uint32, p []byte)
	Store(addr uint32, p []byte)
	// Spin is an instruction boundary with no other effect.
	Spin()
	PID() int
}

// Fault is raised with panic to report a processor exception from user code.
type Fault struct {
	Vector uint8
}

func (f Fault) Error() string {
	return fmt.Sprintf("fault vector %d", f.Vector)
}

// Proc is a process as seen from user mode.
type Proc struct {
	Machine
}

func NewProc(m Machine) *Proc {
	return &Proc{Machine: m}
}

func (p *Proc) stage(b []byte) (uint32, uint32) {
	if len(b) > ScratchSize {
		b = b[:ScratchSize]
	}
	p.Store(Scratch, b)
	return Scratch, uint32(len(b))
}

func (p *Proc) stageString(s string) uint32 {
	addr, _ := p.stage(append([]byte(s), 0))
	return addr
}

// Exit does not return unless the process is already exiting.
func (p *Proc) Exit(status int32) int32 {
	return p.Syscall(SysExit, uint32(status))
}

// Spawn runs command and returns its exit status, or -1 if it could not start.
func (p *Proc) Spawn(command string) int32 {
	return p.Syscall(SysSpawn, p.stageString(command))
}

func (p *Proc) Read(fd int32, buf []byte) int32 {
	n := len(buf)
	if n > ScratchSize {
		n = ScratchSize
	}
	ret := p.Syscall(SysRead, uint32(fd), Scratch, uint32(n))
	if ret > 0 {
		p.Load(Scratch, buf[:ret])
	}
	return ret
}

func (p *Proc) Write(fd int32, buf []byte) int32 {
	addr, n := p.stage(buf)
	return p.Syscall(SysWrite, uint32(fd), addr, n)
}

func (p *Proc) Open(name string) int32 {
	return p.Syscall(SysOpen, p.stageString(name))
}

func (p *Proc) Close(fd int32) int32 {
	return p.Syscall(SysClose, uint32(fd))
}

// GetArgs fetches the argument string into an n byte buffer.
func (p *Proc) GetArgs(n int) (string, int32) {
	if n > ScratchSize {
		n = ScratchSize
	}
	ret := p.Syscall(SysGetArguments, Scratch, uint32(n))
	if ret < 0 {
		return "", ret
	}
	buf := make([]byte, n)
	p.Load(Scratch, buf)
	for i, c := range buf {
		if c == 0 {
			return string(buf[:i]), ret
		}
	}
	return string(buf), ret
}

// MapDisplayBuffer returns the user address of the video page.
func (p *Proc) MapDisplayBuffer() (uint32, int32) {
	ret := p.Syscall(SysMapDisplayBuffer, Scratch)
	if ret < 0 {
		return 0, ret
	}
	var b [4]byte
	p.Load(Scratch, b[:])
	return binary.LittleEndian.Uint32(b[:]), ret
}

func (p *Proc) SetHandler(signum, handler uint32) int32 {
	return p.Syscall(SysSetHandler, signum, handler)
}

func (p *Proc) Sigreturn() int32 {
	return p.Syscall(SysSigreturn)
}

// Print writes s to standard output.
func (p *Proc) Print(s string) int32 {
	return p.Write(Stdout, []byte(s))
}

func (p *Proc) Printf(format string, a ...interface{}) int32 {
	return p.Print(fmt.Sprintf(format, a...))
}

// ReadLine reads one line from standard input without the newline.
func (p *Proc) ReadLine() (string, int32) {
	buf := make([]byte, 128)
	n := p.Read(Stdin, buf)
	if n < 0 {
		return "", n
	}
	line := buf[:n]
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return string(line), n
}
