// Package driver holds the four file operation backends the kernel
// dispatches open, read, write and close to.
package driver

import (
	"github.com/pkg/errors"

	"github.com/tricorn/tricorn/go/fs"
)

// Kind tags a descriptor with the driver that serves it.
type Kind int

const (
	Terminal Kind = iota
	RTC
	File
	Dir

	NumKinds
)

var kindNames = [NumKinds]string{"terminal", "rtc", "file", "dir"}

func (k Kind) String() string {
	if k < 0 || k >= NumKinds {
		return "invalid"
	}
	return kindNames[k]
}

// KindOf picks the driver for a directory entry's type tag.
func KindOf(t fs.FileType) Kind {
	switch t {
	case fs.TypeRTC:
		return RTC
	case fs.TypeDir:
		return Dir
	case fs.TypeRegular:
		return File
	}
	return Terminal
}

var ErrUnsupported = errors.New("operation not supported")

// Driver is the capability set every backend implements. The handle is the
// inode stored in the descriptor; drivers without one ignore it.
type Driver interface {
	Open(name string) error
	// Read fills buf starting at the descriptor cursor off. A zero count
	// means end of file.
	Read(h uint32, buf []byte, off uint32) (int, error)
	Write(h uint32, buf []byte) (int, error)
	Close(h uint32) error
}

// Table is the closed dispatch table indexed by Kind.
type Table [NumKinds]Driver

func (t *Table) Get(k Kind) (Driver, error) {
	if k < 0 || k >= NumKinds || t[k] == nil {
		return nil, errors.Errorf("no driver for kind %d", k)
	}
	return t[k], nil
}

// Waiter blocks with interrupts enabled until cond holds. cond is only
// evaluated by the goroutine that owns the machine.
type Waiter interface {
	Wait(cond func() bool)
}
