// Package fs is the read/write file system image the kernel resolves
// programs and data files from.
package fs

import (
	"github.com/pkg/errors"
)

type FileType uint32

const (
	TypeRTC FileType = iota
	TypeDir
	TypeRegular
)

func (t FileType) String() string {
	switch t {
	case TypeRTC:
		return "rtc"
	case TypeDir:
		return "dir"
	case TypeRegular:
		return "file"
	}
	return "unknown"
}

const (
	BlockSize  = 4096
	NameLen    = 32
	MaxEntries = 63
	MaxBlocks  = 1023
	// upper bound on data blocks an image may grow to
	MaxDataBlocks = 4096
)

var (
	ErrNotFound  = errors.New("file not found")
	ErrBadInode  = errors.New("invalid inode")
	ErrBadBlock  = errors.New("invalid data block")
	ErrNoSpace   = errors.New("no space left in image")
	ErrTruncated = errors.New("image truncated")
)

type Dentry struct {
	Name  string
	Type  FileType
	Inode uint32
}

// FileSystem is the contract the kernel consumes.
type FileSystem interface {
	ResolveByName(name string) (Dentry, error)
	ResolveByIndex(i int) (Dentry, error)
	// ReadBytes returns 0 at end of file.
	ReadBytes(inode, offset uint32, p []byte) (int, error)
	WriteBytes(inode, offset uint32, p []byte) (int, error)
	Truncate(inode, size uint32) error
	Len(inode uint32) (uint32, error)
	Count() int
}
