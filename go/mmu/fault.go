package mmu

import "fmt"

// page fault error code bits, as pushed by the processor
const (
	FaultProtection = 1 << 0
	FaultWrite      = 1 << 1
	FaultUser       = 1 << 2
)

type PageFault struct {
	Addr uint32
	Code uint32
}

func (f *PageFault) Error() string {
	what := "read"
	if f.Code&FaultWrite != 0 {
		what = "write"
	}
	mode := "kernel"
	if f.Code&FaultUser != 0 {
		mode = "user"
	}
	reason := "not present"
	if f.Code&FaultProtection != 0 {
		reason = "protection violation"
	}
	return fmt.Sprintf("page fault: %s %s at %#x (%s)", mode, what, f.Addr, reason)
}

func fault(addr uint32, present, write, user bool) *PageFault {
	f := &PageFault{Addr: addr}
	if present {
		f.Code |= FaultProtection
	}
	if write {
		f.Code |= FaultWrite
	}
	if user {
		f.Code |= FaultUser
	}
	return f
}
