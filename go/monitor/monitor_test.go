package monitor

import (
	"bytes"
	"io/ioutil"
	"strings"
	"testing"
	"time"

	"github.com/tricorn/tricorn/go/kernel"
	"github.com/tricorn/tricorn/go/models"
	"github.com/tricorn/tricorn/go/programs"
)

func setup(t *testing.T) (*Context, *bytes.Buffer) {
	img, err := programs.Image()
	if err != nil {
		t.Fatal(err)
	}
	config := models.NewConfig()
	config.Output = ioutil.Discard
	config.Terminals = 2
	config.Sched = false
	k, err := kernel.New(config, img)
	if err != nil {
		t.Fatal(err)
	}
	log := NewEventLog(k, 100)
	stats, err := NewStats(k)
	if err != nil {
		t.Fatal(err)
	}
	if err := k.Boot(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { k.Shutdown() })
	var buf bytes.Buffer
	return &Context{ReadWriter: &buf, K: k, Log: log, Stats: stats}, &buf
}

// run executes line and returns its output.
func run(t *testing.T, c *Context, buf *bytes.Buffer, line string) string {
	buf.Reset()
	if err := Run(c, line); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

// eventually reruns line until its output contains want.
func eventually(t *testing.T, c *Context, buf *bytes.Buffer, line, want string) string {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		out := run(t, c, buf, line)
		if strings.Contains(out, want) {
			return out
		}
		if time.Now().After(deadline) {
			t.Fatalf("%s never showed %q:\n%s", line, want, out)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestCommands(t *testing.T) {
	c, buf := setup(t)
	if out := run(t, c, buf, "help"); !strings.Contains(out, "ps") || !strings.Contains(out, "Show registers") {
		t.Errorf("help:\n%s", out)
	}
	if out := run(t, c, buf, "frobnicate"); out != "command not found.\n" {
		t.Errorf("unknown command: %q", out)
	}
	if out := run(t, c, buf, `keys "unterminated`); !strings.Contains(out, "parse error") {
		t.Errorf("bad quoting: %q", out)
	}
	eventually(t, c, buf, "term", "391OS> ")
	eventually(t, c, buf, "ps", "* pid 1 shell")

	run(t, c, buf, `keys hello\n`)
	eventually(t, c, buf, "term 0", "Hi, what's your name?")
	run(t, c, buf, `keys Bob\n`)
	eventually(t, c, buf, "term", "Hello, Bob")

	run(t, c, buf, "alt 2")
	eventually(t, c, buf, "ps", "term 1: pid 2")
	if out := run(t, c, buf, "alt x"); !strings.Contains(out, "error: bad function key") {
		t.Errorf("alt x: %q", out)
	}

	if out := run(t, c, buf, "ls"); !strings.Contains(out, "frame0.txt") || !strings.Contains(out, "rtc") {
		t.Errorf("ls:\n%s", out)
	}
	if out := run(t, c, buf, "syscalls"); !strings.Contains(out, " 2 spawn") || !strings.Contains(out, "10 sigreturn") {
		t.Errorf("syscalls:\n%s", out)
	}
	if out := run(t, c, buf, "sched off"); out != "scheduler off\n" {
		t.Errorf("sched: %q", out)
	}
	if out := run(t, c, buf, "sched maybe"); !strings.Contains(out, "error:") {
		t.Errorf("sched maybe: %q", out)
	}
	if out := run(t, c, buf, "trace 50"); !strings.Contains(out, `spawn "shell"`) {
		t.Errorf("trace:\n%s", out)
	}
	if out := run(t, c, buf, "regs"); !strings.Contains(out, "esp0") || !strings.Contains(out, "eflags") {
		t.Errorf("regs:\n%s", out)
	}
	if out := run(t, c, buf, "mem 0x400000 16"); !strings.Contains(out, "400000") {
		t.Errorf("mem:\n%s", out)
	}
	if out := run(t, c, buf, "mem 0x10"); !strings.Contains(out, "error:") {
		t.Errorf("unmapped mem: %q", out)
	}
	if out := run(t, c, buf, "maps"); !strings.Contains(out, "process") {
		t.Errorf("maps:\n%s", out)
	}
	if out := run(t, c, buf, "rtc"); !strings.Contains(out, "rate") || !strings.Contains(out, "host ticker off") {
		t.Errorf("rtc: %q", out)
	}
	if out := run(t, c, buf, "pic"); !strings.Contains(out, "imr") {
		t.Errorf("pic: %q", out)
	}
	if out := run(t, c, buf, "tick 0"); !strings.Contains(out, "0 ticks, host ticker off") {
		t.Errorf("tick: %q", out)
	}
	// syscalls and keyboard interrupts have been delivered by now
	if out := run(t, c, buf, "irqs"); !strings.Contains(out, "0x80 syscall") || !strings.Contains(out, "0x21 keyboard") {
		t.Errorf("irqs:\n%s", out)
	}
}

func TestStatsRecordFaults(t *testing.T) {
	c, buf := setup(t)
	eventually(t, c, buf, "term", "391OS> ")
	c.K.Inspect(func() {
		c.K.CPU.OnFault(0x400000, 4)
		c.K.CPU.OnIntr(0x20)
	})
	out := run(t, c, buf, "irqs")
	if !strings.Contains(out, "fault at 0x00400000 code 0x4") || !strings.Contains(out, "0x20 timer") {
		t.Errorf("irqs:\n%s", out)
	}
	c.Stats.Close()
	var before uint64
	c.K.Inspect(func() {
		before = c.Stats.counts[0x20]
		c.K.CPU.OnIntr(0x20)
	})
	c.K.Inspect(func() {
		if c.Stats.counts[0x20] != before {
			t.Error("closed stats still counting")
		}
	})
	c.Stats = nil
	if out := run(t, c, buf, "irqs"); out != "no interrupt stats attached\n" {
		t.Errorf("detached irqs: %q", out)
	}
}
