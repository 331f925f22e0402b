package kernel

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/tricorn/tricorn/go/driver"
)

const (
	// ids 1..NumProcesses-1 are usable, 0 means no process
	NumProcesses = 7
	NumFiles     = 8
	NumTerminals = 3
	ArgsLen      = 128

	KernelAreaBottom = 0x800000
	KernelStackSize  = 0x2000
	UserStackTop     = 0x083FFFFC

	// exit status of a process killed by an exception
	ExceptionStatus = 255
)

type FileDescriptor struct {
	Kind  driver.Kind
	Inode uint32
	Pos   uint32
	InUse bool
}

// PCB is the control block of process ID. Slots are reused; a free slot
// keeps its last contents until the next spawn overwrites them.
type PCB struct {
	ID       int
	InUse    bool
	ParentID int
	Session  int
	Name     string

	KernelStackTop uint32
	// privileged stack pointer restored into the TSS when scheduled back in
	ESP0 uint32

	// where the parent's spawn resumes when this process exits
	ReturnPoint Context
	// where the scheduler last suspended this process
	Saved Context

	Args   string
	Files  [NumFiles]FileDescriptor
	Vidmap bool

	task *task
}

func kernelStackTop(id int) uint32 {
	return KernelAreaBottom - uint32(id)*KernelStackSize
}

// Session binds a terminal to the process currently running on it.
type Session struct {
	PID int
}

// parseCommand splits a command line into the program name and the
// argument tail.
func parseCommand(command string) (name, args string, err error) {
	command = strings.TrimLeft(command, " ")
	if i := strings.IndexByte(command, ' '); i >= 0 {
		name, args = command[:i], strings.Trim(command[i:], " ")
	} else {
		name = command
	}
	if name == "" {
		return "", "", errors.Wrap(ErrBadCommand, "empty command")
	}
	if len(args) > ArgsLen-1 {
		args = args[:ArgsLen-1]
	}
	return name, args, nil
}
