// Package programs holds the user programs of the built-in file system.
package programs

import (
	"bytes"
	"encoding/binary"
	"strconv"

	"github.com/tricorn/tricorn/go/user"
)

func init() {
	for name, main := range map[string]user.Program{
		"shell":     Shell,
		"ls":        Ls,
		"cat":       Cat,
		"grep":      Grep,
		"hello":     Hello,
		"counter":   Counter,
		"pingpong":  Pingpong,
		"testprint": Testprint,
		"syserr":    Syserr,
		"fish":      Fish,
		"sigtest":   Sigtest,
	} {
		user.Register(name, main)
	}
}

// readAll reads fd until end of file.
func readAll(p *user.Proc, fd int32) ([]byte, bool) {
	var out []byte
	buf := make([]byte, 1024)
	for {
		n := p.Read(fd, buf)
		if n < 0 {
			return out, false
		}
		if n == 0 {
			return out, true
		}
		out = append(out, buf[:n]...)
	}
}

// readFile opens, reads and closes name.
func readFile(p *user.Proc, name string) ([]byte, bool) {
	fd := p.Open(name)
	if fd < 0 {
		return nil, false
	}
	defer p.Close(fd)
	return readAll(p, fd)
}

// listDir returns the names in the directory.
func listDir(p *user.Proc) ([]string, bool) {
	fd := p.Open(".")
	if fd < 0 {
		return nil, false
	}
	defer p.Close(fd)
	var names []string
	buf := make([]byte, 32)
	for {
		n := p.Read(fd, buf)
		if n < 0 {
			return names, false
		}
		if n == 0 {
			return names, true
		}
		name := buf[:n]
		if i := bytes.IndexByte(name, 0); i >= 0 {
			name = name[:i]
		}
		names = append(names, string(name))
	}
}

// openClock opens the rtc at hz.
func openClock(p *user.Proc, hz uint32) int32 {
	fd := p.Open("rtc")
	if fd < 0 {
		return fd
	}
	var rate [4]byte
	binary.LittleEndian.PutUint32(rate[:], hz)
	if p.Write(fd, rate[:]) != 4 {
		p.Close(fd)
		return -1
	}
	return fd
}

func sleep(p *user.Proc, clock int32) {
	var b [4]byte
	p.Read(clock, b[:])
}

// countArg parses the argument as a repeat count.
func countArg(p *user.Proc, def int) int {
	args, ret := p.GetArgs(user.ArgsLen)
	if ret < 0 || args == "" {
		return def
	}
	n, err := strconv.Atoi(args)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
