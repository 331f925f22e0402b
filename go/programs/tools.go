package programs

import (
	"bytes"

	"github.com/tricorn/tricorn/go/user"
)

func Ls(p *user.Proc) int32 {
	names, ok := listDir(p)
	for _, name := range names {
		p.Print(name + "\n")
	}
	if !ok {
		p.Print("directory read failed\n")
		return 3
	}
	return 0
}

func Cat(p *user.Proc) int32 {
	name, ret := p.GetArgs(user.ArgsLen)
	if ret < 0 || name == "" {
		p.Print("could not read arguments\n")
		return 3
	}
	fd := p.Open(name)
	if fd < 0 {
		p.Print("file not found\n")
		return 2
	}
	defer p.Close(fd)
	buf := make([]byte, 1024)
	for {
		n := p.Read(fd, buf)
		if n < 0 {
			p.Print("file read failed\n")
			return 3
		}
		if n == 0 {
			return 0
		}
		p.Write(user.Stdout, buf[:n])
	}
}

// Grep prints every line of every file that contains the pattern, prefixed
// with the file name.
func Grep(p *user.Proc) int32 {
	pattern, ret := p.GetArgs(user.ArgsLen)
	if ret < 0 || pattern == "" {
		p.Print("usage: grep <pattern>\n")
		return 3
	}
	names, ok := listDir(p)
	if !ok {
		p.Print("directory read failed\n")
		return 3
	}
	for _, name := range names {
		if name == "." || name == "rtc" {
			continue
		}
		data, ok := readFile(p, name)
		if !ok {
			continue
		}
		for _, line := range bytes.Split(data, []byte("\n")) {
			if bytes.Contains(line, []byte(pattern)) {
				p.Printf("%s:%s\n", name, line)
			}
		}
	}
	return 0
}
