package kernel

import (
	"github.com/pkg/errors"

	"github.com/tricorn/tricorn/go/fs"
	"github.com/tricorn/tricorn/go/loader"
)

// spawn failures, compared with errors.Cause
var (
	ErrNotFound      = fs.ErrNotFound
	ErrNotExecutable = loader.ErrNotExecutable
	ErrTruncated     = loader.ErrTruncated
	ErrNoFreeSlot    = errors.New("no free process slot")
	ErrBadCommand    = errors.New("bad command")
)

// reason is the one-line diagnostic printed for a failed spawn.
func reason(err error) string {
	switch errors.Cause(err) {
	case ErrBadCommand:
		return "Failed to parse command."
	case ErrNotFound:
		return "Executable file does not exist."
	case ErrNotExecutable:
		return "File is not an executable."
	case ErrTruncated:
		return "Executable header is truncated."
	case ErrNoFreeSlot:
		return "Can't allocate a PID for the process."
	}
	return err.Error()
}
