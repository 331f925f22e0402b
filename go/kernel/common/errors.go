package common

import "github.com/pkg/errors"

var ErrUnknownSyscall = errors.New("unknown syscall")
