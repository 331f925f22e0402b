// Package trace records kernel events into a compressed binary stream.
package trace

import (
	"fmt"
	"strings"
)

type Kind uint8

const (
	Spawn Kind = iota + 1
	Exit
	Suspend
	Resume
	Exception
	Syscall
	Fail
)

var kindNames = map[Kind]string{
	Spawn:     "spawn",
	Exit:      "exit",
	Suspend:   "suspend",
	Resume:    "resume",
	Exception: "exception",
	Syscall:   "syscall",
	Fail:      "fail",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// NameLen is the size of the name field in a packed event.
const NameLen = 32

// Event is one fixed-size trace record.
type Event struct {
	Kind    uint8
	Session uint8
	PID     uint8
	Parent  uint8
	Vector  uint8
	Pad     []byte `struc:"[3]pad"`
	Status  int32
	SP, FP  uint32
	Tick    uint64
	// program name, syscall name or failure reason, right-null-padded
	Name string `struc:"[32]byte"`
}

func (e *Event) String() string {
	name := strings.TrimRight(e.Name, "\x00")
	head := fmt.Sprintf("%8d term%d pid %d", e.Tick, e.Session, e.PID)
	switch Kind(e.Kind) {
	case Spawn:
		return fmt.Sprintf("%s spawn %q parent %d", head, name, e.Parent)
	case Exit:
		return fmt.Sprintf("%s exit %d -> pid %d", head, e.Status, e.Parent)
	case Suspend, Resume:
		return fmt.Sprintf("%s %s sp=%#x fp=%#x", head, Kind(e.Kind), e.SP, e.FP)
	case Exception:
		return fmt.Sprintf("%s exception %d %s", head, e.Vector, name)
	case Syscall:
		return fmt.Sprintf("%s %s = %d", head, name, e.Status)
	case Fail:
		return fmt.Sprintf("%s spawn failed: %s", head, name)
	}
	return fmt.Sprintf("%s %s", head, Kind(e.Kind))
}
