package user

import (
	"bytes"
	"testing"

	"github.com/tricorn/tricorn/go/loader"
)

// fakeMachine keeps user memory in a map and records syscalls.
type fakeMachine struct {
	mem   map[uint32]byte
	calls [][]uint32
	ret   func(num uint32, args []uint32) int32
}

func (m *fakeMachine) Syscall(num uint32, args ...uint32) int32 {
	m.calls = append(m.calls, append([]uint32{num}, args...))
	return m.ret(num, args)
}

func (m *fakeMachine) Int(uint8) {}
func (m *fakeMachine) Spin()     {}
func (m *fakeMachine) PID() int  { return 1 }

func (m *fakeMachine) Load(addr uint32, p []byte) {
	for i := range p {
		p[i] = m.mem[addr+uint32(i)]
	}
}

func (m *fakeMachine) Store(addr uint32, p []byte) {
	for i, c := range p {
		m.mem[addr+uint32(i)] = c
	}
}

func (m *fakeMachine) str(addr uint32) string {
	var out []byte
	for m.mem[addr] != 0 {
		out = append(out, m.mem[addr])
		addr++
	}
	return string(out)
}

func TestStubsStageBuffers(t *testing.T) {
	m := &fakeMachine{mem: make(map[uint32]byte)}
	m.ret = func(num uint32, args []uint32) int32 {
		switch num {
		case SysOpen:
			if m.str(args[0]) != "frame0.txt" {
				return -1
			}
			return 2
		case SysRead:
			data := []byte("fish\n")
			for i, c := range data {
				m.mem[args[1]+uint32(i)] = c
			}
			return int32(len(data))
		case SysWrite:
			return int32(args[2])
		case SysGetArguments:
			for i, c := range []byte("arg\x00") {
				m.mem[args[0]+uint32(i)] = c
			}
			return 0
		}
		return -1
	}
	p := NewProc(m)
	if fd := p.Open("frame0.txt"); fd != 2 {
		t.Fatalf("open returned %d", fd)
	}
	buf := make([]byte, 32)
	n := p.Read(2, buf)
	if string(buf[:n]) != "fish\n" {
		t.Fatalf("read %q", buf[:n])
	}
	if n := p.Print("hello"); n != 5 {
		t.Fatalf("print returned %d", n)
	}
	last := m.calls[len(m.calls)-1]
	if last[0] != SysWrite || last[1] != Stdout || last[2] != Scratch || last[3] != 5 {
		t.Fatalf("write call %v", last)
	}
	if args, ret := p.GetArgs(16); ret != 0 || args != "arg" {
		t.Fatalf("args %q %d", args, ret)
	}
	if ret := p.SetHandler(1, 0); ret != -1 {
		t.Fatal("set_handler")
	}
}

func TestRegistry(t *testing.T) {
	main := func(p *Proc) int32 { return 7 }
	a := Register("registry-test-a", main)
	b := Register("registry-test-b", main)
	if a == b || a&0xF != 0 || a < loader.LoadAddr {
		t.Fatalf("entries %#x %#x", a, b)
	}
	if again := Register("registry-test-a", main); again != a {
		t.Fatal("entry changed on re-register")
	}
	e, ok := Lookup(a)
	if !ok || e.Name != "registry-test-a" || e.Main(nil) != 7 {
		t.Fatal("lookup by entry")
	}
	img, err := Image("registry-test-b")
	if err != nil {
		t.Fatal(err)
	}
	h, err := loader.ParseHeader(img)
	if err != nil || h.Entry != b {
		t.Fatalf("image header %+v %v", h, err)
	}
	if !bytes.HasSuffix(img, []byte("registry-test-b")) {
		t.Fatal("image body")
	}
	if _, err := Image("registry-test-missing"); err == nil {
		t.Fatal("image of unknown program")
	}
}
