package programs

import (
	"github.com/tricorn/tricorn/go/user"
)

type check struct {
	name string
	run  func(p *user.Proc) bool
}

var syserrChecks = []check{
	{"write to stdin", func(p *user.Proc) bool { return p.Write(user.Stdin, []byte("x")) == -1 }},
	{"read from stdout", func(p *user.Proc) bool { return p.Read(user.Stdout, make([]byte, 4)) == -1 }},
	{"close stdin and stdout", func(p *user.Proc) bool { return p.Close(0) == -1 && p.Close(1) == -1 }},
	{"close unopened", func(p *user.Proc) bool { return p.Close(2) == -1 && p.Close(7) == -1 }},
	{"out of range fd", func(p *user.Proc) bool {
		return p.Read(8, make([]byte, 4)) == -1 && p.Write(-1, []byte("x")) == -1 && p.Close(100) == -1
	}},
	{"open missing", func(p *user.Proc) bool { return p.Open("nonexistent.txt") == -1 }},
	{"double close", func(p *user.Proc) bool {
		fd := p.Open(".")
		return fd >= 2 && p.Close(fd) == 0 && p.Close(fd) == -1
	}},
	{"descriptor table full", func(p *user.Proc) bool {
		var fds []int32
		for {
			fd := p.Open(".")
			if fd < 0 {
				break
			}
			fds = append(fds, fd)
		}
		for _, fd := range fds {
			p.Close(fd)
		}
		return len(fds) == 6
	}},
	{"bad buffers", func(p *user.Proc) bool {
		return p.Syscall(user.SysWrite, user.Stdout, 0, 4) == -1 &&
			p.Syscall(user.SysWrite, user.Stdout, 0x400000, 4) == -1 &&
			p.Syscall(user.SysOpen, 0) == -1
	}},
	{"bad arguments", func(p *user.Proc) bool {
		return p.Syscall(user.SysGetArguments, 0, 16) == -1 &&
			p.Syscall(user.SysGetArguments, user.Scratch, 0) == -1
	}},
	{"vidmap outside user memory", func(p *user.Proc) bool {
		return p.Syscall(user.SysMapDisplayBuffer, 0x400000) == -1
	}},
	{"unknown syscalls", func(p *user.Proc) bool { return p.Syscall(0) == -1 && p.Syscall(11) == -1 }},
	{"spawn missing", func(p *user.Proc) bool { return p.Spawn("nonexistent") == -1 }},
}

// Syserr runs the syscall error path checks.
func Syserr(p *user.Proc) int32 {
	var failed int32
	for _, c := range syserrChecks {
		result := "PASS"
		if !c.run(p) {
			result = "FAIL"
			failed++
		}
		p.Printf("%s: %s\n", c.name, result)
	}
	return failed
}

func Sigtest(p *user.Proc) int32 {
	set := p.SetHandler(2, user.Scratch)
	ret := p.Sigreturn()
	p.Printf("set_handler: %d\nsigreturn: %d\n", set, ret)
	if set != -1 || ret != -1 {
		return 1
	}
	return 0
}
