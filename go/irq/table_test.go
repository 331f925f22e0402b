package irq

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tricorn/tricorn/go/models/cpu"
)

func userCPU() *cpu.CPU {
	c := cpu.New()
	c.TSS.ESP0 = 0x7fdffc
	c.Set(cpu.CS, cpu.UserCS)
	c.Set(cpu.SS, cpu.UserDS)
	c.Set(cpu.ESP, 0x083ffffc)
	c.Set(cpu.EBP, 0x083ffff0)
	c.Sti()
	return c
}

func TestDefaultsReportUnhandled(t *testing.T) {
	c := cpu.New()
	tab := New(c, NewPIC())
	var seen []uint8
	tab.Unhandled = func(v uint8) { seen = append(seen, v) }
	tab.Raise(0x42, 0)
	tab.Raise(0xff, 0)
	if len(seen) != 2 || seen[0] != 0x42 || seen[1] != 0xff {
		t.Fatalf("unhandled saw %v", seen)
	}
}

func TestExceptionStubsForwardVector(t *testing.T) {
	tab := New(cpu.New(), NewPIC())
	var got []uint8
	tab.InstallExceptions(func(v uint8, name string, f *Frame) {
		if name != ExceptionNames[v] || f.Vector != v {
			t.Errorf("vector %d: name %q frame %d", v, name, f.Vector)
		}
		got = append(got, v)
	})
	for v := 0; v < NumExceptions; v++ {
		tab.Raise(uint8(v), 0)
	}
	if len(got) != NumExceptions {
		t.Fatalf("shared handler ran %d times", len(got))
	}
	if tab.Gate(PageFault).Name != "Page Fault" {
		t.Fatalf("gate name %q", tab.Gate(PageFault).Name)
	}
}

func TestUserIntChecksPrivilege(t *testing.T) {
	c := userCPU()
	tab := New(c, NewPIC())
	var faults []uint32
	tab.InstallExceptions(func(v uint8, _ string, f *Frame) {
		if v == GeneralProtection {
			faults = append(faults, f.ErrorCode)
		}
	})
	var calls int
	tab.Install(Syscall, Gate{Name: "syscall", Kind: TrapGate, DPL: 3, Handler: func(f *Frame) {
		calls++
		if !f.User {
			t.Error("syscall frame not marked user")
		}
		if c.Get(cpu.ESP) >= c.TSS.ESP0 || c.CPL() != 0 {
			t.Error("handler not running on the kernel stack")
		}
		f.Return(0xffffffff)
	}})
	tab.Install(Keyboard, Gate{Name: "keyboard", Handler: func(*Frame) { t.Error("keyboard reached from user int") }})

	c.Set(cpu.EAX, 4)
	tab.Int(Syscall)
	if calls != 1 || c.Get(cpu.EAX) != 0xffffffff {
		t.Fatalf("syscall calls=%d eax=%#x", calls, c.Get(cpu.EAX))
	}
	if c.CPL() != 3 || c.Get(cpu.ESP) != 0x083ffffc || c.Get(cpu.EBP) != 0x083ffff0 {
		t.Fatalf("iret did not restore user state: %s", c.String())
	}
	tab.Int(Keyboard)
	if len(faults) != 1 || faults[0] != Keyboard<<3|2 {
		t.Fatalf("gp faults %v", faults)
	}
}

func TestPollHonorsIF(t *testing.T) {
	c := userCPU()
	pic := NewPIC()
	tab := New(c, pic)
	var ticks int
	tab.Install(Timer, Gate{Name: "timer", Handler: func(f *Frame) {
		ticks++
		if c.IF() {
			t.Error("interrupt gate left IF set")
		}
		pic.EOI(IRQTimer)
	}})
	pic.Enable(IRQTimer)
	pic.Raise(IRQTimer)
	c.Cli()
	tab.Poll()
	if ticks != 0 {
		t.Fatal("delivered with IF clear")
	}
	c.Sti()
	tab.Poll()
	if ticks != 1 || !c.IF() {
		t.Fatalf("ticks=%d if=%v", ticks, c.IF())
	}
}

func TestPICPriorityAndEOI(t *testing.T) {
	p := NewPIC()
	p.Raise(IRQRTC)
	if p.Pending() {
		t.Fatal("masked line pending")
	}
	p.Enable(IRQRTC)
	p.Enable(IRQTimer)
	p.Enable(IRQKeyboard)
	p.Raise(IRQKeyboard)
	p.Raise(IRQTimer)
	want := []uint8{Timer, Keyboard, RTC}
	for _, w := range want {
		v, ok := p.Ack()
		if !ok || v != w {
			t.Fatalf("ack = %#x, %v; want %#x", v, ok, w)
		}
		if _, ok := p.Ack(); ok {
			t.Fatal("lower priority delivered before EOI")
		}
		line := int(w - 0x20)
		if w == RTC {
			line = IRQRTC
		}
		p.EOI(line)
	}
	if p.Pending() {
		t.Fatal("requests left over")
	}
}

func TestPICDisableMasks(t *testing.T) {
	p := NewPIC()
	p.Enable(IRQTimer)
	p.Raise(IRQTimer)
	p.Disable(IRQTimer)
	if p.Pending() {
		t.Fatal("disabled line still pending")
	}
	if _, _, imr := p.State(); imr&(1<<IRQTimer) == 0 {
		t.Fatalf("imr = %#x, timer bit clear", imr)
	}
	p.Enable(IRQTimer)
	if v, ok := p.Ack(); !ok || v != Timer {
		t.Fatalf("latched request lost: %#x, %v", v, ok)
	}
}

func TestFrameDump(t *testing.T) {
	f := &Frame{Vector: 14, ErrorCode: 4, User: true}
	f.Regs[cpu.EAX] = 0xdeadbeef
	var buf bytes.Buffer
	f.DumpTo(&buf)
	out := buf.String()
	for _, want := range []string{"vector 14 error 0x4 user true", cpu.RegNames[cpu.EAX], "deadbeef", cpu.RegNames[cpu.ESP]} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}
