package kernel

import (
	"fmt"
	"io/ioutil"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tricorn/tricorn/go/fs"
	"github.com/tricorn/tricorn/go/models"
	"github.com/tricorn/tricorn/go/models/trace"
	"github.com/tricorn/tricorn/go/user"
)

var nameSeq int32

// unique returns a program name no other test registers.
func unique(base string) string {
	return fmt.Sprintf("%s%d", base, atomic.AddInt32(&nameSeq, 1))
}

type setup struct {
	terms int
	sched bool
	shell string
	progs map[string]user.Program
	files map[string][]byte
}

type harness struct {
	t      *testing.T
	k      *Kernel
	events []trace.Event
}

func boot(t *testing.T, s setup) *harness {
	b := fs.NewBuilder()
	if err := b.Add("rtc", fs.TypeRTC, nil); err != nil {
		t.Fatal(err)
	}
	for name, main := range s.progs {
		user.Register(name, main)
		img, err := user.Image(name)
		if err != nil {
			t.Fatal(err)
		}
		if err := b.AddFile(name, img); err != nil {
			t.Fatal(err)
		}
	}
	for name, data := range s.files {
		if err := b.AddFile(name, data); err != nil {
			t.Fatal(err)
		}
	}
	img, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	config := models.NewConfig()
	config.Output = ioutil.Discard
	config.Terminals = 1
	if s.terms > 0 {
		config.Terminals = s.terms
	}
	config.Sched = s.sched
	config.Shell = s.shell
	k, err := New(config, img)
	if err != nil {
		t.Fatal(err)
	}
	h := &harness{t: t, k: k}
	k.Observe(func(e trace.Event) { h.events = append(h.events, e) })
	if err := k.Boot(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { k.Shutdown() })
	return h
}

func (h *harness) inspect(fn func()) {
	h.k.Inspect(fn)
}

// until polls cond with the machine stopped.
func (h *harness) until(what string, cond func() bool) {
	h.t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		var ok bool
		h.k.Inspect(func() { ok = cond() })
		if ok {
			return
		}
		if time.Now().After(deadline) {
			h.t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func (h *harness) eventsOf(kind trace.Kind) []trace.Event {
	var out []trace.Event
	h.inspect(func() {
		for _, e := range h.events {
			if trace.Kind(e.Kind) == kind {
				out = append(out, e)
			}
		}
	})
	return out
}

func (h *harness) screen(term int) string {
	var rows []string
	var err error
	h.inspect(func() { rows, err = h.k.Console.Screen(term) })
	if err != nil {
		h.t.Fatal(err)
	}
	return strings.Join(rows, "\n")
}

func recv(t *testing.T, ch <-chan int32) int32 {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a process")
	}
	return 0
}
