package kernel

import (
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tricorn/tricorn/go/mmu"
	"github.com/tricorn/tricorn/go/user"
)

func TestFileDescriptorRules(t *testing.T) {
	shell, data := unique("fds"), unique("data")
	results := make(chan []int32, 1)
	texts := make(chan string, 2)
	boot(t, setup{
		shell: shell,
		files: map[string][]byte{data: []byte("hello world")},
		progs: map[string]user.Program{
			shell: func(p *user.Proc) int32 {
				var got []int32
				rec := func(v int32) { got = append(got, v) }
				buf := make([]byte, 64)

				rec(p.Write(0, []byte("x")))
				rec(p.Read(1, buf[:4]))
				rec(p.Close(0))
				rec(p.Close(1))
				rec(p.Close(-1))
				rec(p.Close(8))
				rec(p.Close(5))
				rec(p.Read(5, buf[:4]))
				rec(p.Write(9, []byte("x")))
				rec(p.Open("missing"))

				fd := p.Open(data)
				rec(fd)
				n := p.Read(fd, buf)
				rec(n)
				texts <- string(buf[:n])
				rec(p.Read(fd, buf))
				rec(p.Write(fd, []byte("rewritten")))
				rec(p.Close(fd))
				rec(p.Close(fd))
				fd = p.Open(data)
				n = p.Read(fd, buf)
				texts <- string(buf[:n])

				rec(p.Open("rtc"))
				dir := p.Open(".")
				rec(dir)
				rec(p.Read(dir, buf[:32]))
				rec(p.Open(data))
				rec(p.Open(data))
				rec(p.Open(data))
				rec(p.Open(data))

				rec(p.Syscall(user.SysWrite, 1, 0, 4))
				rec(p.Syscall(user.SysWrite, 1, 0x400000, 4))
				rec(p.Syscall(user.SysRead, 2, 0x400000, 4))
				rec(p.Syscall(user.SysOpen, 0))
				rec(p.Syscall(0))
				rec(p.Syscall(11))
				rec(p.SetHandler(1, user.Scratch))
				rec(p.Sigreturn())
				rec(p.Write(1, []byte("ok\x00ignored")))
				results <- got
				select {}
			},
		},
	})
	want := []int32{
		-1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
		2, 11, 0, 9, 0, -1,
		3, 4, 32, 5, 6, 7, -1,
		-1, -1, -1, -1, -1, -1, -1, -1, 2,
	}
	var got []int32
	select {
	case got = <-results:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out")
	}
	if len(got) != len(want) {
		t.Fatalf("got %d results, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("result %d: %d, want %d", i, got[i], want[i])
		}
	}
	if s := <-texts; s != "hello world" {
		t.Errorf("first read %q", s)
	}
	if s := <-texts; s != "rewritten" {
		t.Errorf("read after write %q", s)
	}
}

func TestMapDisplayBuffer(t *testing.T) {
	shell := unique("vid")
	rets := make(chan int32, 4)
	h := boot(t, setup{shell: shell, progs: map[string]user.Program{
		shell: func(p *user.Proc) int32 {
			rets <- p.Syscall(user.SysMapDisplayBuffer, 0x400000)
			rets <- p.Syscall(user.SysMapDisplayBuffer, 0)
			addr, ret := p.MapDisplayBuffer()
			rets <- ret
			rets <- int32(addr - mmu.VidmapAddr)
			p.Print("hi")
			p.Store(addr, []byte{'Z', 7})
			select {}
		},
	}})
	for i, want := range []int32{-1, -1, 0, 0} {
		if got := recv(t, rets); got != want {
			t.Errorf("step %d: %d, want %d", i, got, want)
		}
	}
	h.until("store", func() bool {
		rows, err := h.k.Console.Screen(0)
		return err == nil && strings.HasPrefix(rows[0], "Zi")
	})
	h.inspect(func() {
		if !h.k.procs[1].Vidmap {
			t.Error("vidmap flag not recorded")
		}
	})
}

func TestVidmapBackgroundStore(t *testing.T) {
	shell := unique("vid")
	var stop int32
	stored := make(chan int32, 1)
	h := boot(t, setup{terms: 2, sched: true, shell: shell, progs: map[string]user.Program{
		shell: func(p *user.Proc) int32 {
			if p.PID() == 2 {
				addr, ret := p.MapDisplayBuffer()
				if ret == 0 {
					p.Store(addr, []byte{'Q', 7, 'R', 7})
				}
				stored <- ret
			}
			for atomic.LoadInt32(&stop) == 0 {
				p.Spin()
			}
			select {}
		},
	}})
	defer atomic.StoreInt32(&stop, 1)

	h.until("first shell", func() bool { return h.k.sessions[0].PID == 1 })
	h.k.PIT.Tick()
	if ret := recv(t, stored); ret != 0 {
		t.Fatalf("vidmap in background session returned %d", ret)
	}
	h.inspect(func() {
		if fg := h.k.Console.Foreground(); fg != 0 {
			t.Fatalf("foreground moved to %d", fg)
		}
		var off, live [4]byte
		phys := h.k.MMU.Phys()
		if err := phys.Read(mmu.Offscreen(1).Addr(), off[:]); err != nil {
			t.Fatal(err)
		}
		if err := phys.Read(mmu.VideoAddr, live[:]); err != nil {
			t.Fatal(err)
		}
		if string(off[:]) != "Q\x07R\x07" {
			t.Errorf("offscreen page holds %q", off)
		}
		if live[0] == 'Q' && live[2] == 'R' {
			t.Errorf("store reached the live page: %q", live)
		}
	})
	if screen := h.screen(1); !strings.HasPrefix(screen, "QR") {
		t.Errorf("term 1 screen:\n%s", screen)
	}
	if screen := h.screen(0); strings.HasPrefix(screen, "QR") {
		t.Errorf("term 0 screen:\n%s", screen)
	}
}
